package repository

import "github.com/eslsoft/depictor/pkg/filterexpr"

var stringOps = []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpNE, filterexpr.OpIN, filterexpr.OpPrefix}

var listStatementsSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.Field{
		"item_id":        {Kind: filterexpr.KindString, Ops: stringOps},
		"username":       {Kind: filterexpr.KindString, Ops: stringOps},
		"property_id":    {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpIN}},
		"value_id":       {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpIN}},
		"snaktype":       {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpNE, filterexpr.OpIN}},
		"reference_type": {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpNE}},
		"statement_id": {
			Kind: filterexpr.KindInt,
			Ops: []filterexpr.Op{
				filterexpr.OpEQ, filterexpr.OpIN,
				filterexpr.OpLT, filterexpr.OpLTE, filterexpr.OpGT, filterexpr.OpGTE,
			},
		},
	},
	Order: filterexpr.OrderSchema{
		Keys: map[string]string{
			"statement_id": "statement_id",
			"item_id":      "item_id",
			"username":     "username",
			"property_id":  "property_id",
		},
		Default:  []filterexpr.OrderTerm{{Key: "statement_id"}},
		Tiebreak: "statement_id",
	},
}

package filterexpr

import (
	"strings"
)

var sqlOps = map[Op]string{
	OpEQ:  "=",
	OpNE:  "<>",
	OpLT:  "<",
	OpLTE: "<=",
	OpGT:  ">",
	OpGTE: ">=",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Query is a WHERE condition list and ORDER BY clause using "?" placeholders.
type Query struct {
	conds   []string
	args    []any
	orderBy string
}

// Compile parses the filter and order_by of msg. Errors are *Error values naming the rejected parameter.
func Compile(msg Msg, schema Schema) (*Query, error) {
	preds, err := ParseFilter(msg.GetFilter(), schema.Fields)
	if err != nil {
		return nil, &Error{Param: "filter", Err: err}
	}
	terms, err := ParseOrder(msg.GetOrderBy(), schema.Order)
	if err != nil {
		return nil, &Error{Param: "order_by", Err: err}
	}
	orderBy, err := schema.Order.Clause(terms)
	if err != nil {
		return nil, &Error{Param: "order_by", Err: err}
	}

	q := &Query{orderBy: orderBy}
	for _, p := range preds {
		q.add(schema.Fields[p.Field].column(p.Field), p)
	}
	return q, nil
}

func (q *Query) add(column string, p Predicate) {
	switch p.Op {
	case OpIN:
		values := p.Value.([]any)
		if len(values) == 0 {
			q.Where("1 = 0")
			return
		}
		q.Where(column+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")+")", values...)
	case OpPrefix:
		q.Where(column+` LIKE ? ESCAPE '\'`, likeEscaper.Replace(p.Value.(string))+"%")
	default:
		q.Where(column+" "+sqlOps[p.Op]+" ?", p.Value)
	}
}

// Where adds a condition. All conditions are joined with AND.
func (q *Query) Where(cond string, args ...any) {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
}

// WhereClause is " WHERE ..." or empty when there are no conditions.
func (q *Query) WhereClause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

// Args returns the placeholder values in condition order.
func (q *Query) Args() []any {
	return append([]any(nil), q.args...)
}

func (q *Query) OrderBy() string {
	return q.orderBy
}

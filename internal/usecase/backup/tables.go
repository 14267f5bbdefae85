package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// ColumnType is the JSON representation a column is dumped with.
type ColumnType int

const (
	ColumnText ColumnType = iota + 1
	ColumnInt
	ColumnBool
)

// Column describes one dumped column. Serial columns are filled by the database on insert.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	Serial   bool
}

// Table describes one table of the annotation store. Every table has a single-column key.
type Table struct {
	Name    string
	Key     string
	Columns []Column
}

// Tables lists the annotation store in dependency order.
// It must match the migrations in internal/infrastructure/database.
var Tables = []*Table{
	{
		Name: "users",
		Key:  "username",
		Columns: []Column{
			{Name: "username", Type: ColumnText},
			{Name: "is_project_lead", Type: ColumnBool},
			{Name: "requested_lead_status", Type: ColumnBool},
		},
	},
	{
		Name: "statements",
		Key:  "statement_id",
		Columns: []Column{
			{Name: "statement_id", Type: ColumnInt, Serial: true},
			{Name: "item_id", Type: ColumnText},
			{Name: "property_id", Type: ColumnText},
			{Name: "value_id", Type: ColumnText, Nullable: true},
			{Name: "snaktype", Type: ColumnText},
			{Name: "username", Type: ColumnText},
			{Name: "reference_type", Type: ColumnText, Nullable: true},
			{Name: "reference_value", Type: ColumnText, Nullable: true},
			{Name: "pages_value", Type: ColumnText, Nullable: true},
		},
	},
	{
		Name: "qualifiers",
		Key:  "statement_id",
		Columns: []Column{
			{Name: "statement_id", Type: ColumnText},
			{Name: "iiif_region", Type: ColumnText},
			{Name: "qualifier_hash", Type: ColumnText},
		},
	},
	{
		Name: "comments",
		Key:  "comment_id",
		Columns: []Column{
			{Name: "comment_id", Type: ColumnInt, Serial: true},
			{Name: "statement_id", Type: ColumnText},
			{Name: "comment", Type: ColumnText},
			{Name: "project_lead_username", Type: ColumnText},
			{Name: "item_id", Type: ColumnText},
			{Name: "username", Type: ColumnText},
		},
	},
	{
		Name: "approvals",
		Key:  "approval_id",
		Columns: []Column{
			{Name: "approval_id", Type: ColumnInt, Serial: true},
			{Name: "username", Type: ColumnText},
			{Name: "item_id", Type: ColumnText},
			{Name: "approved", Type: ColumnBool},
		},
	},
}

func tableName(t *Table, _ int) string { return t.Name }

func (t *Table) columnNames() []string {
	return lo.Map(t.Columns, func(c Column, _ int) string { return c.Name })
}

func (t *Table) column(name string) (Column, bool) {
	return lo.Find(t.Columns, func(c Column) bool { return c.Name == name })
}

// encodeRow turns scanned driver values into a JSON-ready payload.
func (t *Table) encodeRow(raw []any) (map[string]any, error) {
	payload := make(map[string]any, len(t.Columns))
	for i, col := range t.Columns {
		v, err := col.fromDriver(raw[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, col.Name, err)
		}
		payload[col.Name] = v
	}
	return payload, nil
}

// decodeRow maps a payload object onto insert columns and arguments.
// Columns absent from the payload are left to their database default.
func (t *Table) decodeRow(payload gjson.Result) ([]string, []any, error) {
	var (
		cols []string
		args []any
		err  error
	)
	payload.ForEach(func(key, value gjson.Result) bool {
		col, ok := t.column(key.String())
		if !ok {
			err = fmt.Errorf("unknown column %s.%s", t.Name, key.String())
			return false
		}
		cols = append(cols, col.Name)
		args = append(args, col.fromJSON(value))
		return true
	})
	return cols, args, err
}

func (c Column) fromJSON(v gjson.Result) any {
	if v.Type == gjson.Null {
		if c.Nullable {
			return nil
		}
		v = gjson.Result{}
	}
	switch c.Type {
	case ColumnBool:
		return v.Bool()
	case ColumnInt:
		return v.Int()
	default:
		return v.String()
	}
}

func (c Column) fromDriver(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch c.Type {
	case ColumnBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case int64:
			return x != 0, nil
		case string:
			return gjson.Parse(x).Bool() || x == "t", nil
		}
	case ColumnInt:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int32:
			return int64(x), nil
		case string:
			return gjson.Parse(x).Int(), nil
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("unexpected driver value %T", v)
}

// Fingerprint identifies the table layout a dump was taken with.
func Fingerprint(tables []*Table) string {
	h := sha256.New()
	for _, t := range tables {
		fmt.Fprintf(h, "%s(%s)", t.Name, t.Key)
		for _, c := range t.Columns {
			fmt.Fprintf(h, " %s:%d:%t:%t", c.Name, c.Type, c.Nullable, c.Serial)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

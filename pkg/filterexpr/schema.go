// Package filterexpr compiles the filter and order_by parameters of list requests into SQL fragments.
//
// A filter is a CEL expression made of comparisons between a whitelisted field and a literal, joined
// with &&. An order_by is a comma separated list of "key [asc|desc]" terms.
package filterexpr

import "github.com/samber/lo"

// Msg is implemented by list requests that carry raw filter and order_by inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// Kind is the literal type a field is compared against.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
)

// Op is a comparison allowed in filters.
type Op string

const (
	OpEQ     Op = "=="
	OpNE     Op = "!="
	OpLT     Op = "<"
	OpLTE    Op = "<="
	OpGT     Op = ">"
	OpGTE    Op = ">="
	OpIN     Op = "in"
	OpPrefix Op = "startsWith"
)

// Field describes one filterable field.
type Field struct {
	// Column is the SQL expression compared; defaults to the field name.
	Column string
	Kind   Kind
	Ops    []Op
}

func (f Field) allows(op Op) bool {
	return lo.Contains(f.Ops, op)
}

func (f Field) column(name string) string {
	if f.Column == "" {
		return name
	}
	return f.Column
}

// Schema whitelists the fields and order keys of one resource.
type Schema struct {
	Fields map[string]Field
	Order  OrderSchema
}

// Error reports which request parameter was rejected.
type Error struct {
	Param string
	Err   error
}

func (e *Error) Error() string { return e.Param + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

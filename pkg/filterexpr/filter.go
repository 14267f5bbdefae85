package filterexpr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Predicate is one comparison of a filter. Value is a string, an int64 or, for OpIN, a []any of those.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

var comparisonOps = map[string]Op{
	"_==_": OpEQ,
	"_!=_": OpNE,
	"_<_":  OpLT,
	"_<=_": OpLTE,
	"_>_":  OpGT,
	"_>=_": OpGTE,
	"@in":  OpIN,
}

// ParseFilter type-checks filter against fields and splits it into its comparisons.
// An empty filter yields no predicates.
func ParseFilter(filter string, fields map[string]Field) ([]Predicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}

	env, err := newEnv(fields)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(filter)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, err
	}

	var preds []Predicate
	for _, term := range conjuncts(parsed.GetExpr(), nil) {
		p, err := predicate(term)
		if err != nil {
			return nil, err
		}
		field, ok := fields[p.Field]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", p.Field)
		}
		if !field.allows(p.Op) {
			return nil, fmt.Errorf("%s is not allowed on %s", p.Op, p.Field)
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func newEnv(fields map[string]Field) (*cel.Env, error) {
	if len(fields) == 0 {
		return nil, errors.New("resource has no filterable fields")
	}
	opts := make([]cel.EnvOption, 0, len(fields))
	for name, field := range fields {
		switch field.Kind {
		case KindString:
			opts = append(opts, cel.Variable(name, cel.StringType))
		case KindInt:
			opts = append(opts, cel.Variable(name, cel.IntType))
		default:
			return nil, fmt.Errorf("field %q has no kind", name)
		}
	}
	return cel.NewEnv(opts...)
}

// conjuncts flattens nested && calls.
func conjuncts(e *exprpb.Expr, acc []*exprpb.Expr) []*exprpb.Expr {
	if call := e.GetCallExpr(); call != nil && call.GetFunction() == "_&&_" {
		for _, arg := range call.GetArgs() {
			acc = conjuncts(arg, acc)
		}
		return acc
	}
	return append(acc, e)
}

func predicate(e *exprpb.Expr) (Predicate, error) {
	call := e.GetCallExpr()
	if call == nil {
		return Predicate{}, errors.New("expected a comparison")
	}
	fn := call.GetFunction()
	if op, ok := comparisonOps[fn]; ok && len(call.GetArgs()) == 2 {
		return comparison(op, call.GetArgs()[0], call.GetArgs()[1])
	}
	if fn == "startsWith" && call.GetTarget() != nil && len(call.GetArgs()) == 1 {
		return comparison(OpPrefix, call.GetTarget(), call.GetArgs()[0])
	}
	return Predicate{}, fmt.Errorf("%q is not supported, join comparisons with &&", strings.Trim(fn, "_@"))
}

func comparison(op Op, lhs, rhs *exprpb.Expr) (Predicate, error) {
	ident := lhs.GetIdentExpr()
	if ident == nil {
		return Predicate{}, fmt.Errorf("left side of %s must be a field", op)
	}
	value, err := literal(rhs)
	if err != nil {
		return Predicate{}, fmt.Errorf("%s %s: %w", ident.GetName(), op, err)
	}
	if _, isList := value.([]any); isList != (op == OpIN) {
		return Predicate{}, fmt.Errorf("%s %s: unexpected operand", ident.GetName(), op)
	}
	return Predicate{Field: ident.GetName(), Op: op, Value: value}, nil
}

func literal(e *exprpb.Expr) (any, error) {
	if c := e.GetConstExpr(); c != nil {
		switch v := c.GetConstantKind().(type) {
		case *exprpb.Constant_StringValue:
			return v.StringValue, nil
		case *exprpb.Constant_Int64Value:
			return v.Int64Value, nil
		default:
			return nil, fmt.Errorf("unsupported literal %T", v)
		}
	}
	if list := e.GetListExpr(); list != nil {
		values := make([]any, 0, len(list.GetElements()))
		for _, elem := range list.GetElements() {
			v, err := literal(elem)
			if err != nil {
				return nil, err
			}
			if _, nested := v.([]any); nested {
				return nil, errors.New("nested lists are not supported")
			}
			values = append(values, v)
		}
		return values, nil
	}
	return nil, errors.New("right side must be a literal")
}

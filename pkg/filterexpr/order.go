package filterexpr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const _defaultMaxOrderTerms = 2

// OrderTerm is one key of an order_by.
type OrderTerm struct {
	Key  string
	Desc bool
}

// OrderSchema whitelists order keys.
type OrderSchema struct {
	// Keys maps an order key to its SQL expression.
	Keys map[string]string
	// Default applies when order_by is empty.
	Default []OrderTerm
	// Tiebreak is a unique key appended when missing so that pages are stable.
	Tiebreak string
	MaxTerms int
}

func (s OrderSchema) maxTerms() int {
	if s.MaxTerms <= 0 {
		return _defaultMaxOrderTerms
	}
	return s.MaxTerms
}

// ParseOrder parses "key [asc|desc], ..." against the schema.
func ParseOrder(raw string, schema OrderSchema) ([]OrderTerm, error) {
	var terms []OrderTerm
	if strings.TrimSpace(raw) == "" {
		terms = append(terms, schema.Default...)
	}
	for _, segment := range strings.Split(raw, ",") {
		parts := strings.Fields(segment)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, fmt.Errorf("invalid term %q", strings.TrimSpace(segment))
		}
		term := OrderTerm{Key: parts[0]}
		if _, ok := schema.Keys[term.Key]; !ok {
			return nil, fmt.Errorf("cannot order by %q", term.Key)
		}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				term.Desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for %q", parts[1], term.Key)
			}
		}
		if hasKey(terms, term.Key) {
			return nil, fmt.Errorf("duplicate order key %q", term.Key)
		}
		terms = append(terms, term)
	}
	if len(terms) > schema.maxTerms() {
		return nil, fmt.Errorf("at most %d order keys are supported", schema.maxTerms())
	}
	if schema.Tiebreak != "" && !hasKey(terms, schema.Tiebreak) {
		terms = append(terms, OrderTerm{Key: schema.Tiebreak})
	}
	return terms, nil
}

// Clause renders terms as an ORDER BY clause. Only whitelisted keys are accepted, so the result is safe
// to concatenate into a query.
func (s OrderSchema) Clause(terms []OrderTerm) (string, error) {
	if len(terms) == 0 {
		return "", errors.New("no order keys")
	}
	rendered := make([]string, 0, len(terms))
	for _, term := range terms {
		expr, ok := s.Keys[term.Key]
		if !ok {
			return "", fmt.Errorf("cannot order by %q", term.Key)
		}
		dir := " ASC"
		if term.Desc {
			dir = " DESC"
		}
		rendered = append(rendered, expr+dir)
	}
	return "ORDER BY " + strings.Join(rendered, ", "), nil
}

func hasKey(terms []OrderTerm, key string) bool {
	return lo.ContainsBy(terms, func(t OrderTerm) bool { return t.Key == key })
}

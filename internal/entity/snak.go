package entity

import (
	"strings"

	"github.com/samber/lo"
)

// Well-known properties used by the annotation workflow.
const (
	PropertyDepicts      = "P180"
	PropertyImage        = "P18"
	PropertyIIIFRegion   = "P2677"
	PropertyStatedIn     = "P248"
	PropertyReferenceURL = "P854"
	PropertyPages        = "P304"
)

// SnakType is the kind of value a claim carries.
type SnakType string

const (
	SnakTypeValue     SnakType = "value"
	SnakTypeSomeValue SnakType = "somevalue"
	SnakTypeNoValue   SnakType = "novalue"
)

// ParseSnakType validates a raw snaktype.
func ParseSnakType(raw string) (SnakType, error) {
	switch t := SnakType(strings.TrimSpace(raw)); t {
	case SnakTypeValue, SnakTypeSomeValue, SnakTypeNoValue:
		return t, nil
	case "":
		return "", NewValidationError("snaktype", "is required")
	default:
		return "", NewValidationError("snaktype", "bad snaktype %q", raw)
	}
}

// Snak is the main value of a claim: an entity id for value snaks, nothing otherwise.
type Snak struct {
	Type    SnakType
	ValueID string
}

func ValueSnak(valueID string) Snak { return Snak{Type: SnakTypeValue, ValueID: valueID} }

func SomeValueSnak() Snak { return Snak{Type: SnakTypeSomeValue} }

func NoValueSnak() Snak { return Snak{Type: SnakTypeNoValue} }

// NewSnak builds a snak, enforcing that a value id is present iff the type is value.
func NewSnak(rawType, valueID string) (Snak, error) {
	t, err := ParseSnakType(rawType)
	if err != nil {
		return Snak{}, err
	}
	s := Snak{Type: t, ValueID: strings.TrimSpace(valueID)}
	if err := s.Validate(); err != nil {
		return Snak{}, err
	}
	return s, nil
}

// Validate checks the value/snaktype consistency.
func (s Snak) Validate() error {
	switch s.Type {
	case SnakTypeValue:
		if s.ValueID == "" {
			return NewValidationError("value", "a value snak requires an entity id")
		}
		if !IsEntityID(s.ValueID) {
			return NewValidationError("value", "%q is not an entity id", s.ValueID)
		}
	case SnakTypeSomeValue, SnakTypeNoValue:
		if s.ValueID != "" {
			return NewValidationError("value", "%s snak must not carry a value", s.Type)
		}
	default:
		return NewValidationError("snaktype", "bad snaktype %q", string(s.Type))
	}
	return nil
}

// HasValue reports whether the snak references an entity.
func (s Snak) HasValue() bool { return s.Type == SnakTypeValue }

// PropertySet is the allow-list of depicting properties.
type PropertySet []string

// Contains reports whether id is allow-listed.
func (p PropertySet) Contains(id string) bool {
	return lo.Contains(p, id)
}

// Default returns the first allow-listed property, or P180.
func (p PropertySet) Default() string {
	if len(p) == 0 {
		return PropertyDepicts
	}
	return p[0]
}

package entity

import "strings"

// ReferenceKind distinguishes a "stated in" source item from a literal source.
type ReferenceKind int

const (
	ReferenceStatedIn ReferenceKind = iota + 1
	ReferenceLiteral
)

// Reference is the source attached to a staged statement.
// StatedIn references point at an entity (P248) and may cite pages (P304);
// literal references hold a URL or free text under their own property.
type Reference struct {
	Kind     ReferenceKind
	Property string
	Value    string
	Pages    string
}

// StatedIn builds a P248 reference to the given entity.
func StatedIn(entityID, pages string) Reference {
	return Reference{Kind: ReferenceStatedIn, Property: PropertyStatedIn, Value: entityID, Pages: pages}
}

// LiteralReference builds a string reference, e.g. a P854 reference URL.
func LiteralReference(property, value string) Reference {
	return Reference{Kind: ReferenceLiteral, Property: property, Value: value}
}

// NewReference validates raw reference inputs. It returns nil when no reference was supplied.
func NewReference(refType, refValue, pages string) (*Reference, error) {
	refType = strings.TrimSpace(refType)
	refValue = strings.TrimSpace(refValue)
	pages = strings.TrimSpace(pages)

	if refType == "" && refValue == "" {
		if pages != "" {
			return nil, NewValidationError("pages_value", "pages require a stated-in reference")
		}
		return nil, nil
	}
	if refType == "" || refValue == "" {
		return nil, NewValidationError("reference", "reference type and value must be given together")
	}
	if !entityIDPattern.MatchString(refType) || refType[0] != 'P' {
		return nil, NewValidationError("reference_type", "%q is not a property id", refType)
	}

	if refType == PropertyStatedIn {
		id, err := ParseEntityID(refValue)
		if err != nil {
			return nil, NewValidationError("reference_value", "stated in requires an entity id, got %q", refValue)
		}
		ref := StatedIn(id, pages)
		return &ref, nil
	}
	if pages != "" {
		return nil, NewValidationError("pages_value", "pages require a stated-in reference")
	}
	ref := LiteralReference(refType, refValue)
	return &ref, nil
}

// SnakOrder lists the reference snak properties in the order the remote API must store them.
func (r Reference) SnakOrder() []string {
	if r.Pages != "" {
		return []string{r.Property, PropertyPages}
	}
	return []string{r.Property}
}

package entity

import (
	"strconv"
	"strings"
)

// Statement is a claim staged locally until it is promoted to the knowledge base.
// Statements are never updated in place; edits are delete and recreate.
type Statement struct {
	ID         int64
	ItemID     string
	PropertyID string
	Snak       Snak
	Username   string
	Reference  *Reference
}

// StatementDraft carries raw, unvalidated statement inputs.
type StatementDraft struct {
	ItemID         string
	PropertyID     string
	ValueID        string
	SnakType       string
	ReferenceType  string
	ReferenceValue string
	PagesValue     string
}

// Build validates the draft and produces a statement authored by username.
func (d StatementDraft) Build(username string, allowed PropertySet) (*Statement, error) {
	itemID, err := ParseEntityID(d.ItemID)
	if err != nil {
		return nil, NewValidationError("item_id", "cannot parse an entity ID from %q", d.ItemID)
	}
	propertyID := strings.TrimSpace(d.PropertyID)
	if propertyID == "" {
		propertyID = allowed.Default()
	}
	snak, err := NewSnak(d.SnakType, d.ValueID)
	if err != nil {
		return nil, err
	}
	ref, err := NewReference(d.ReferenceType, d.ReferenceValue, d.PagesValue)
	if err != nil {
		return nil, err
	}

	stmt := &Statement{
		ItemID:     itemID,
		PropertyID: propertyID,
		Snak:       snak,
		Username:   strings.TrimSpace(username),
		Reference:  ref,
	}
	if err := stmt.Validate(allowed); err != nil {
		return nil, err
	}
	return stmt, nil
}

// Validate checks the statement invariants against the property allow-list.
func (s *Statement) Validate(allowed PropertySet) error {
	if s.Username == "" {
		return ErrInvalidUserName
	}
	if !IsEntityID(s.ItemID) {
		return NewValidationError("item_id", "%q is not an entity id", s.ItemID)
	}
	if !allowed.Contains(s.PropertyID) {
		return NewValidationError("property_id", "bad property ID %q", s.PropertyID)
	}
	return s.Snak.Validate()
}

// Ref is the key qualifiers and comments use for this statement.
func (s *Statement) Ref() string {
	return FormatStatementID(s.ID)
}

// FormatStatementID renders a local statement id as a statement reference.
func FormatStatementID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseStatementID parses a local statement reference. Remote claim GUIDs are rejected.
func ParseStatementID(ref string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidStatementID
	}
	return id, nil
}

// Qualifier is a staged IIIF region for one statement, local or remote.
// A statement has at most one staged region; setting it again overwrites region and hash.
type Qualifier struct {
	StatementRef string
	Region       Region
	Hash         string
}

// NewQualifier validates raw qualifier inputs.
func NewQualifier(statementRef, rawRegion, hash string) (*Qualifier, error) {
	statementRef = strings.TrimSpace(statementRef)
	if statementRef == "" {
		return nil, NewValidationError("statement_id", "is required")
	}
	region, err := ParseRegion(rawRegion)
	if err != nil {
		return nil, err
	}
	return &Qualifier{StatementRef: statementRef, Region: region, Hash: strings.TrimSpace(hash)}, nil
}

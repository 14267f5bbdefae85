package entity

import (
	"errors"
	"testing"
)

var depictsOnly = PropertySet{PropertyDepicts}

func TestStatementDraftBuild(t *testing.T) {
	stmt, err := StatementDraft{
		ItemID:         "https://www.wikidata.org/wiki/Q100",
		ValueID:        "Q42",
		SnakType:       "value",
		ReferenceType:  "P248",
		ReferenceValue: "Q5",
		PagesValue:     "12",
	}.Build("alice", depictsOnly)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stmt.ItemID != "Q100" || stmt.PropertyID != PropertyDepicts {
		t.Fatalf("unexpected statement %+v", stmt)
	}
	if stmt.Reference == nil || stmt.Reference.Kind != ReferenceStatedIn || stmt.Reference.Pages != "12" {
		t.Fatalf("unexpected reference %+v", stmt.Reference)
	}
}

func TestStatementDraftBuildRejects(t *testing.T) {
	cases := map[string]StatementDraft{
		"value without id":     {ItemID: "Q100", SnakType: "value"},
		"novalue with id":      {ItemID: "Q100", SnakType: "novalue", ValueID: "Q42"},
		"unknown snaktype":     {ItemID: "Q100", SnakType: "maybe"},
		"property not allowed": {ItemID: "Q100", PropertyID: "P31", SnakType: "somevalue"},
		"bad item":             {ItemID: "Berlin", SnakType: "somevalue"},
		"pages on literal":     {ItemID: "Q100", SnakType: "somevalue", ReferenceType: "P854", ReferenceValue: "https://example.org", PagesValue: "3"},
		"stated in a string":   {ItemID: "Q100", SnakType: "somevalue", ReferenceType: "P248", ReferenceValue: "a book"},
	}
	for name, draft := range cases {
		_, err := draft.Build("alice", depictsOnly)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", name, err)
		}
	}
	if _, err := (StatementDraft{ItemID: "Q100", SnakType: "novalue"}).Build(" ", depictsOnly); !errors.Is(err, ErrInvalidUserName) {
		t.Fatalf("expected ErrInvalidUserName, got %v", err)
	}
}

func TestNewReference(t *testing.T) {
	ref, err := NewReference("", "", "")
	if err != nil || ref != nil {
		t.Fatalf("expected no reference, got %+v %v", ref, err)
	}
	ref, err = NewReference("P854", "https://example.org/src", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ref.Kind != ReferenceLiteral || len(ref.SnakOrder()) != 1 {
		t.Fatalf("unexpected literal reference %+v", ref)
	}
	ref, _ = NewReference("P248", "Q5", "4-5")
	if order := ref.SnakOrder(); len(order) != 2 || order[0] != PropertyStatedIn || order[1] != PropertyPages {
		t.Fatalf("unexpected snak order %v", order)
	}
}

func TestParseStatementID(t *testing.T) {
	if id, err := ParseStatementID("17"); err != nil || id != 17 {
		t.Fatalf("got %d %v", id, err)
	}
	for _, ref := range []string{"Q100$5A2F", "0", "-3", ""} {
		if _, err := ParseStatementID(ref); !errors.Is(err, ErrInvalidStatementID) {
			t.Fatalf("%q: expected ErrInvalidStatementID, got %v", ref, err)
		}
	}
}

func TestEntityIDParsing(t *testing.T) {
	cases := map[string]string{
		"Q42":                                    "Q42",
		"http://www.wikidata.org/entity/Q42":     "Q42",
		"https://www.wikidata.org/wiki/Q42#P180": "Q42",
		"https://www.wikidata.org/w/index.php?title=Property:P180": "P180",
		"L7-F2": "L7-F2",
	}
	for in, want := range cases {
		got, err := ParseEntityID(in)
		if err != nil || got != want {
			t.Fatalf("ParseEntityID(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseEntityID("Q0"); err == nil {
		t.Fatalf("expected error for Q0")
	}
}

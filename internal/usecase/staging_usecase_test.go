package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
)

var alice = &entity.Identity{Username: "alice", AccessToken: "alice-token"}

func newStagingFixture() (StagingUsecase, *fakeStore) {
	store := newFakeStore()
	asm, _ := newTestAssembler(map[string]entity.Label{"Q42": {Language: "en", Value: "Douglas Adams"}})
	uc := NewStagingUsecase(store.Statements(), store.Qualifiers(), store.Users(), asm, Settings{Properties: entity.PropertySet{"P180"}})
	return uc, store
}

func TestAddStatementReturnsGeneratedID(t *testing.T) {
	uc, store := newStagingFixture()
	ctx := context.Background()

	first, err := uc.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", PropertyID: "P180", ValueID: "Q42", SnakType: "value"}, entity.Languages{"en"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if first.StatementID != "1" || first.Label.Value != "Douglas Adams" || !first.Local {
		t.Fatalf("unexpected depicted %+v", first)
	}
	second, err := uc.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", SnakType: "novalue"}, entity.Languages{"en"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if second.StatementID != "2" || second.Label.Value != "no value" {
		t.Fatalf("unexpected depicted %+v", second)
	}
	if _, err := store.Users().Get(ctx, "alice"); err != nil {
		t.Fatalf("user should be created lazily: %v", err)
	}
}

func TestAddStatementValidatesBeforeWriting(t *testing.T) {
	uc, store := newStagingFixture()
	ctx := context.Background()
	drafts := []entity.StatementDraft{
		{ItemID: "Q100", SnakType: "value"},
		{ItemID: "Q100", SnakType: "somevalue", ValueID: "Q42"},
		{ItemID: "Q100", SnakType: "value", ValueID: "Q42", PropertyID: "P31"},
		{ItemID: "Q100", SnakType: "bogus"},
	}
	for _, draft := range drafts {
		_, err := uc.AddStatement(ctx, alice, draft, nil)
		var verr *entity.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%+v: expected ValidationError, got %v", draft, err)
		}
	}
	if store.statementCount() != 0 {
		t.Fatalf("no rows may be written, got %d", store.statementCount())
	}

	_, err := uc.AddStatement(ctx, nil, entity.StatementDraft{ItemID: "Q100", SnakType: "novalue"}, nil)
	if !errors.Is(err, entity.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestAddQualifierUpserts(t *testing.T) {
	uc, store := newStagingFixture()
	ctx := context.Background()
	d, _ := uc.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", ValueID: "Q42", SnakType: "value"}, nil)

	if _, err := uc.AddQualifier(ctx, alice, d.StatementID, "pct:0,0,50,50", ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := uc.AddQualifier(ctx, alice, d.StatementID, "pct:10,10,20,20", "h2"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.qualifierCount() != 1 {
		t.Fatalf("expected exactly one qualifier, got %d", store.qualifierCount())
	}
	q, _ := store.Qualifiers().Find(ctx, d.StatementID)
	if q.Region.String() != "pct:10,10,20,20" || q.Hash != "h2" {
		t.Fatalf("unexpected qualifier %+v", q)
	}

	if _, err := uc.AddQualifier(ctx, alice, d.StatementID, " ", ""); err == nil {
		t.Fatalf("expected validation error for empty region")
	}
	// Remote claims can carry staged regions too.
	if _, err := uc.AddQualifier(ctx, alice, "Q100$5A2F-1", "full", "oldhash"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAddQualifierRequiresOwner(t *testing.T) {
	uc, _ := newStagingFixture()
	ctx := context.Background()
	d, _ := uc.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", SnakType: "novalue"}, nil)

	_, err := uc.AddQualifier(ctx, &entity.Identity{Username: "bob"}, d.StatementID, "full", "")
	if !errors.Is(err, entity.ErrNotStatementOwner) {
		t.Fatalf("expected ErrNotStatementOwner, got %v", err)
	}
}

func TestDeleteStatementIsIdempotent(t *testing.T) {
	uc, store := newStagingFixture()
	ctx := context.Background()
	d, _ := uc.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", SnakType: "novalue"}, nil)
	_, _ = uc.AddQualifier(ctx, alice, d.StatementID, "full", "")
	id, _ := entity.ParseStatementID(d.StatementID)

	if err := uc.DeleteStatement(ctx, alice, 999); err != nil {
		t.Fatalf("missing id must be a no-op: %v", err)
	}
	if store.statementCount() != 1 {
		t.Fatalf("store changed by no-op delete")
	}
	if err := uc.DeleteStatement(ctx, alice, id); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := uc.DeleteStatement(ctx, alice, id); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
	if store.statementCount() != 0 || store.qualifierCount() != 0 {
		t.Fatalf("statement and qualifier should be gone")
	}
}

func TestDeleteQualifierReturnsBareRow(t *testing.T) {
	uc, store := newStagingFixture()
	ctx := context.Background()
	d, _ := uc.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", ValueID: "Q42", SnakType: "value"}, nil)
	_, _ = uc.AddQualifier(ctx, alice, d.StatementID, "pct:1,1,5,5", "")
	id, _ := entity.ParseStatementID(d.StatementID)

	row, err := uc.DeleteQualifier(ctx, alice, id, entity.Languages{"en"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if row.HasRegion() || row.Label.Value != "Douglas Adams" {
		t.Fatalf("unexpected row %+v", row)
	}
	if store.qualifierCount() != 0 {
		t.Fatalf("qualifier should be deleted")
	}
}

func TestListAppliesDefaultPageSize(t *testing.T) {
	uc, _ := newStagingFixture()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, _ = uc.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", SnakType: "somevalue"}, nil)
	}
	items, total, err := uc.List(ctx, &repository.ListStatementQuery{ItemID: "Q100"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 12 || len(items) != 10 {
		t.Fatalf("expected 10 of 12, got %d of %d", len(items), total)
	}
}

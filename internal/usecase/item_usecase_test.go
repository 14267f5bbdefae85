package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/eslsoft/depictor/internal/entity"
)

func testDocument() *entity.EntityDocument {
	return &entity.EntityDocument{
		ID: "Q100",
		Claims: map[string][]entity.RemoteClaim{
			"P18": {{ID: "Q100$img", PropertyID: "P18", SnakType: entity.SnakTypeValue, Rank: entity.RankNormal,
				Value: entity.DataValue{Type: entity.DataValueString, String: "Fresco.jpg"}}},
			"P180": {{ID: "Q100$a", PropertyID: "P180", SnakType: entity.SnakTypeValue, Rank: entity.RankNormal,
				Value: entity.DataValue{Type: entity.DataValueEntityID, EntityID: "Q42"}, Region: "pct:1,2,3,4", QualifierHash: "h1"}},
		},
		Descriptions: map[string]entity.Label{"en": {Language: "en", Value: "wall painting"}},
	}
}

type itemFixture struct {
	items     ItemUsecase
	depicteds DepictedUsecase
	staging   StagingUsecase
	store     *fakeStore
	labels    *fakeLabels
}

func newItemFixture() *itemFixture {
	store := newFakeStore()
	settings := Settings{Properties: entity.PropertySet{"P180"}}
	labels := &fakeLabels{labels: map[string]entity.Label{
		"Q100": {Language: "en", Value: "Fresco"},
		"Q42":  {Language: "en", Value: "Douglas Adams"},
	}}
	asm := NewAssembler(labels, settings)
	entities := &fakeEntities{docs: map[string]*entity.EntityDocument{"Q100": testDocument()}}
	media := &fakeMedia{
		info:        &entity.ImageInfo{Width: 4000, Height: 3000, ThumbWidth: 4000, ThumbHeight: 3000},
		attribution: &entity.Attribution{Text: "Marsyas, CC BY-SA 3.0"},
	}
	return &itemFixture{
		items:     NewItemUsecase(entities, store.Statements(), store.Qualifiers(), store.Users(), media, asm, settings),
		depicteds: NewDepictedUsecase(entities, store.Statements(), store.Qualifiers(), store.Users(), asm, settings),
		staging:   NewStagingUsecase(store.Statements(), store.Qualifiers(), store.Users(), asm, settings),
		store:     store,
		labels:    labels,
	}
}

func TestItemView(t *testing.T) {
	f := newItemFixture()
	ctx := context.Background()
	_, _ = f.staging.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", SnakType: "novalue"}, nil)

	item, err := f.items.Get(ctx, DepictedQuery{ItemID: "Q100", Identity: alice, Languages: entity.Languages{"en"}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if item.Label.Value != "Fresco" || item.ImageTitle != "Fresco.jpg" || item.Image.ThumbWidth != 4000 {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.Description == nil || item.Description.Value != "wall painting" || item.Attribution == nil {
		t.Fatalf("missing description or attribution: %+v", item)
	}
	if len(item.Depicteds) != 2 || item.Depicteds[0].IIIFRegion != "pct:1,2,3,4" || !item.Depicteds[1].Local {
		t.Fatalf("unexpected depicteds %+v", item.Depicteds)
	}
	if len(f.labels.lookups) != 1 {
		t.Fatalf("item and depicted labels should share one lookup, got %d", len(f.labels.lookups))
	}
}

func TestDepictedsArePrivateToTheirAuthor(t *testing.T) {
	f := newItemFixture()
	ctx := context.Background()
	_, _ = f.staging.AddStatement(ctx, alice, entity.StatementDraft{ItemID: "Q100", SnakType: "novalue"}, nil)

	anon, err := f.depicteds.List(ctx, DepictedQuery{ItemID: "Q100"})
	if err != nil || len(anon) != 1 {
		t.Fatalf("anonymous view should only show remote claims, got %+v %v", anon, err)
	}
	bob := &entity.Identity{Username: "bob"}
	if rows, _ := f.depicteds.List(ctx, DepictedQuery{ItemID: "Q100", Identity: bob}); len(rows) != 1 {
		t.Fatalf("bob must not see alice's staged rows, got %+v", rows)
	}
	_, err = f.depicteds.List(ctx, DepictedQuery{ItemID: "Q100", Identity: bob, LocalOnly: true, Username: "alice"})
	if !errors.Is(err, entity.ErrProjectLeadRequired) {
		t.Fatalf("expected ErrProjectLeadRequired, got %v", err)
	}

	_ = f.store.Users().Create(ctx, &entity.User{Username: "lead", IsProjectLead: true})
	rows, err := f.depicteds.List(ctx, DepictedQuery{ItemID: "Q100", Identity: lead, LocalOnly: true, Username: "alice"})
	if err != nil || len(rows) != 1 || !rows[0].Local {
		t.Fatalf("review view should show only alice's staged rows, got %+v %v", rows, err)
	}
}

func TestItemViewMissingEntity(t *testing.T) {
	f := newItemFixture()
	_, err := f.items.Get(context.Background(), DepictedQuery{ItemID: "Q999"})
	if !errors.Is(err, entity.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}

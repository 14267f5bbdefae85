package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/repository"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	raw, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { raw.Close() })

	db := database.Wrap(raw, database.DialectSQLite)
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, repo repository.StatementRepository, stmt entity.Statement) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &stmt)
	if err != nil {
		t.Fatalf("create statement: %v", err)
	}
	return id
}

func TestStatementCreateReturnsGeneratedID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatementRepository(db)
	ctx := context.Background()

	ref := entity.StatedIn("Q5", "12-14")
	first := mustCreate(t, repo, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.ValueSnak("Q42"), Username: "alice", Reference: &ref})
	second := mustCreate(t, repo, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.NoValueSnak(), Username: "alice"})
	if second <= first {
		t.Fatalf("expected monotonic ids, got %d then %d", first, second)
	}

	got, err := repo.Get(ctx, first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Snak != entity.ValueSnak("Q42") {
		t.Fatalf("unexpected snak %+v", got.Snak)
	}
	if got.Reference == nil || got.Reference.Kind != entity.ReferenceStatedIn || got.Reference.Pages != "12-14" {
		t.Fatalf("unexpected reference %+v", got.Reference)
	}

	novalue, err := repo.Get(ctx, second)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if novalue.Snak.ValueID != "" || novalue.Reference != nil {
		t.Fatalf("expected bare novalue statement, got %+v", novalue)
	}

	if _, err := repo.Get(ctx, 999); !errors.Is(err, entity.ErrStatementNotFound) {
		t.Fatalf("expected ErrStatementNotFound, got %v", err)
	}
}

func TestQualifierUpsertKeepsSingleRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQualifierRepository(db)
	ctx := context.Background()

	first, _ := entity.NewQualifier("7", "pct:1,2,3,4", "")
	second, _ := entity.NewQualifier("7", "10,20,30,40", "abc")
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qualifiers WHERE statement_id = '7'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one qualifier row, got %d", count)
	}

	got, err := repo.Find(ctx, "7")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.Region.String() != "10,20,30,40" || got.Hash != "abc" {
		t.Fatalf("unexpected qualifier %+v", got)
	}

	missing, err := repo.Find(ctx, "8")
	if err != nil || missing != nil {
		t.Fatalf("expected nil qualifier, got %+v, %v", missing, err)
	}
}

func TestStatementDeleteIsIdempotentAndCascades(t *testing.T) {
	db := setupTestDB(t)
	statements := NewStatementRepository(db)
	qualifiers := NewQualifierRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	id := mustCreate(t, statements, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.SomeValueSnak(), Username: "bob"})
	ref := entity.FormatStatementID(id)
	q, _ := entity.NewQualifier(ref, "full", "")
	if err := qualifiers.Upsert(ctx, q); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := comments.Create(ctx, &entity.Comment{StatementID: ref, Comment: "check", ProjectLeadUsername: "lead", ItemID: "Q100", Username: "bob"}); err != nil {
		t.Fatalf("comment: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := statements.Delete(ctx, id); err != nil {
			t.Fatalf("delete run %d: %v", i+1, err)
		}
	}
	if got, _ := qualifiers.Find(ctx, ref); got != nil {
		t.Fatalf("expected qualifier to be removed")
	}
	if list, _ := comments.List(ctx, "Q100", "bob"); len(list) != 0 {
		t.Fatalf("expected comments to be removed, got %d", len(list))
	}
}

func TestStatementPurgeSparesLaterRows(t *testing.T) {
	db := setupTestDB(t)
	statements := NewStatementRepository(db)
	approvals := NewApprovalRepository(db)
	ctx := context.Background()

	a := mustCreate(t, statements, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.ValueSnak("Q1"), Username: "alice"})
	b := mustCreate(t, statements, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.ValueSnak("Q2"), Username: "alice"})
	late := mustCreate(t, statements, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.ValueSnak("Q3"), Username: "alice"})
	if _, err := approvals.Create(ctx, &entity.Approval{Username: "alice", ItemID: "Q100", Approved: true}); err != nil {
		t.Fatalf("approval: %v", err)
	}

	if err := statements.Purge(ctx, "Q100", "alice", []int64{a, b}); err != nil {
		t.Fatalf("purge: %v", err)
	}
	left, err := statements.ListByItemUser(ctx, "Q100", "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 1 || left[0].ID != late {
		t.Fatalf("expected only statement %d to survive, got %+v", late, left)
	}
	if latest, _ := approvals.Latest(ctx, "Q100", "alice"); latest != nil {
		t.Fatalf("expected approvals to be purged")
	}
}

func TestStatementListWithFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatementRepository(db)
	ctx := context.Background()

	mustCreate(t, repo, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.ValueSnak("Q1"), Username: "alice"})
	mustCreate(t, repo, entity.Statement{ItemID: "Q200", PropertyID: "P180", Snak: entity.NoValueSnak(), Username: "alice"})
	mustCreate(t, repo, entity.Statement{ItemID: "Q200", PropertyID: "P180", Snak: entity.ValueSnak("Q2"), Username: "bob"})

	items, total, err := repo.List(ctx, &repository.ListStatementQuery{
		Pagination:  repository.Pagination{PageNo: 1, PageSize: 10},
		FilterOrder: repository.FilterOrder{Filter: "item_id == 'Q200'", OrderBy: "statement_id desc"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 statements, got %d/%d", len(items), total)
	}
	if items[0].Username != "bob" {
		t.Fatalf("expected descending order, got %+v", items)
	}

	items, total, err = repo.List(ctx, &repository.ListStatementQuery{
		FilterOrder: repository.FilterOrder{Filter: "username.startsWith('b') && statement_id >= 2 && snaktype in ['value', 'novalue']"},
		ItemID:      "Q200",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Username != "bob" {
		t.Fatalf("expected only bob's statement, got %+v (total %d)", items, total)
	}

	_, _, err = repo.List(ctx, &repository.ListStatementQuery{FilterOrder: repository.FilterOrder{Filter: "comment == 'x'"}})
	var verr *entity.ValidationError
	if !errors.As(err, &verr) || verr.Field != "filter" {
		t.Fatalf("expected ValidationError for unknown filter field, got %v", err)
	}

	_, _, err = repo.List(ctx, &repository.ListStatementQuery{FilterOrder: repository.FilterOrder{OrderBy: "comment"}})
	if !errors.As(err, &verr) || verr.Field != "order_by" {
		t.Fatalf("expected ValidationError for unknown order key, got %v", err)
	}
}

func TestAnnotatedObjects(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatementRepository(db)
	ctx := context.Background()

	mustCreate(t, repo, entity.Statement{ItemID: "Q200", PropertyID: "P180", Snak: entity.ValueSnak("Q1"), Username: "bob"})
	mustCreate(t, repo, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.ValueSnak("Q1"), Username: "alice"})
	mustCreate(t, repo, entity.Statement{ItemID: "Q100", PropertyID: "P180", Snak: entity.ValueSnak("Q2"), Username: "bob"})

	objects, total, err := repo.AnnotatedObjects(ctx, repository.Pagination{PageNo: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("annotated objects: %v", err)
	}
	if total != 2 || len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %+v (total %d)", objects, total)
	}
	if objects[0].ItemID != "Q100" || len(objects[0].Contributors) != 2 {
		t.Fatalf("unexpected first object %+v", objects[0])
	}

	mine, total, err := repo.AnnotatedObjectsByUser(ctx, "alice", repository.Pagination{})
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if total != 1 || len(mine) != 1 || mine[0] != "Q100" {
		t.Fatalf("unexpected user objects %v (total %d)", mine, total)
	}
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	u, err := users.Ensure(ctx, "carol")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if u.IsProjectLead {
		t.Fatalf("new users must not be project leads")
	}
	if err := users.Create(ctx, &entity.User{Username: "carol"}); !errors.Is(err, entity.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	if err := users.RequestLead(ctx, "carol"); err != nil {
		t.Fatalf("request: %v", err)
	}
	pending, err := users.ListLeadRequests(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending request, got %v, %v", pending, err)
	}

	if err := users.GrantLead(ctx, "carol"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	u, _ = users.Get(ctx, "carol")
	if !u.IsProjectLead || u.RequestedLeadStatus {
		t.Fatalf("expected lead without pending request, got %+v", u)
	}
	if err := users.GrantLead(ctx, "nobody"); !errors.Is(err, entity.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestApprovalLatestWins(t *testing.T) {
	db := setupTestDB(t)
	approvals := NewApprovalRepository(db)
	ctx := context.Background()

	for _, approved := range []bool{true, false} {
		if _, err := approvals.Create(ctx, &entity.Approval{Username: "alice", ItemID: "Q100", Approved: approved}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	latest, err := approvals.Latest(ctx, "Q100", "alice")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.Approved {
		t.Fatalf("expected latest row to be unapproved, got %+v", latest)
	}
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eslsoft/depictor/internal/entity"
)

var lead = &entity.Identity{Username: "lead", AccessToken: "lead-token"}

func newReviewFixture(t *testing.T) (ReviewUsecase, *fakeStore, *fakeKB) {
	t.Helper()
	store := newFakeStore()
	if err := store.Users().Create(context.Background(), &entity.User{Username: "lead", IsProjectLead: true}); err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	kb := newFakeKB()
	uc := NewReviewUsecase(store.Users(), store.Comments(), store.Approvals(), store.Statements(), kb,
		Settings{BaseURL: "https://depictor.example.org/"}, nil)
	return uc, store, kb
}

func TestSetApprovalNotifies(t *testing.T) {
	uc, store, kb := newReviewFixture(t)
	ctx := context.Background()
	_, _ = store.Comments().Create(ctx, &entity.Comment{StatementID: "1", Comment: "fix", ItemID: "Q100", Username: "alice"})

	res, err := uc.SetApproval(ctx, lead, "alice", "Q100", true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Notified || res.Approval.ID == 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(kb.messages) != 1 || !strings.Contains(kb.messages[0], "Annotations for object Q100 approved") ||
		!strings.Contains(kb.messages[0], "https://depictor.example.org/item/Q100") {
		t.Fatalf("unexpected message %v", kb.messages)
	}
	comments, _ := store.Comments().List(ctx, "Q100", "alice")
	if len(comments) != 0 {
		t.Fatalf("approval should settle the pair's comments")
	}
}

func TestSetApprovalSurvivesNotificationFailure(t *testing.T) {
	uc, _, kb := newReviewFixture(t)
	ctx := context.Background()
	kb.failOn, kb.failAt, kb.failWith = "message", 1, errBoom

	res, err := uc.SetApproval(ctx, lead, "alice", "Q100", true)
	if err != nil {
		t.Fatalf("notification failure must not fail the approval: %v", err)
	}
	if res.Notified || res.NotificationError == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	approved, err := uc.Approved(ctx, &entity.Identity{Username: "alice"}, "", "Q100")
	if err != nil || !approved {
		t.Fatalf("approval should be persisted, got %v %v", approved, err)
	}
}

func TestSetApprovalSurvivesCommentCleanupFailure(t *testing.T) {
	uc, store, kb := newReviewFixture(t)
	ctx := context.Background()
	_, _ = store.Comments().Create(ctx, &entity.Comment{StatementID: "1", Comment: "fix", ItemID: "Q100", Username: "alice"})
	store.commentDeleteErr = errBoom

	res, err := uc.SetApproval(ctx, lead, "alice", "Q100", true)
	if err != nil {
		t.Fatalf("a stored approval must not be reported as failed: %v", err)
	}
	if res.CleanupError == "" || res.Approval.ID == 0 || !res.Notified || len(kb.messages) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	approved, err := uc.Approved(ctx, &entity.Identity{Username: "alice"}, "", "Q100")
	if err != nil || !approved {
		t.Fatalf("approval should be persisted, got %v %v", approved, err)
	}
}

func TestLatestApprovalWins(t *testing.T) {
	uc, _, kb := newReviewFixture(t)
	ctx := context.Background()
	_, _ = uc.SetApproval(ctx, lead, "alice", "Q100", true)
	_, _ = uc.SetApproval(ctx, lead, "alice", "Q100", false)

	approved, err := uc.Approved(ctx, lead, "alice", "Q100")
	if err != nil || approved {
		t.Fatalf("expected the withdrawal to win, got %v %v", approved, err)
	}
	if len(kb.messages) != 1 {
		t.Fatalf("only approvals notify, got %d messages", len(kb.messages))
	}
}

func TestLeadOnlyActions(t *testing.T) {
	uc, _, _ := newReviewFixture(t)
	ctx := context.Background()
	bob := &entity.Identity{Username: "bob"}

	if _, err := uc.SetApproval(ctx, bob, "alice", "Q100", true); !errors.Is(err, entity.ErrProjectLeadRequired) {
		t.Fatalf("expected ErrProjectLeadRequired, got %v", err)
	}
	if _, err := uc.AddComment(ctx, bob, &entity.Comment{StatementID: "1", Comment: "x", ItemID: "Q100", Username: "alice"}); !errors.Is(err, entity.ErrProjectLeadRequired) {
		t.Fatalf("expected ErrProjectLeadRequired, got %v", err)
	}
	if _, err := uc.ListComments(ctx, bob, "Q100", "alice"); !errors.Is(err, entity.ErrProjectLeadRequired) {
		t.Fatalf("reading another user's comments needs the lead role, got %v", err)
	}
	var authErr *entity.AuthorizationError
	if _, _, err := uc.AnnotatedObjects(ctx, bob, 1); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestCommentsRoundTrip(t *testing.T) {
	uc, _, _ := newReviewFixture(t)
	ctx := context.Background()
	c, err := uc.AddComment(ctx, lead, &entity.Comment{StatementID: "3", Comment: "  wrong region ", ItemID: "Q100", Username: "alice"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.ProjectLeadUsername != "lead" || c.Comment != "wrong region" {
		t.Fatalf("unexpected comment %+v", c)
	}
	own, err := uc.ListComments(ctx, &entity.Identity{Username: "alice"}, "Q100", "")
	if err != nil || len(own) != 1 {
		t.Fatalf("expected own comment, got %v %v", own, err)
	}
}

func TestLeadRequestLifecycle(t *testing.T) {
	uc, store, _ := newReviewFixture(t)
	ctx := context.Background()
	carol := &entity.Identity{Username: "carol"}

	if err := uc.RequestLead(ctx, carol); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	perms, err := uc.Permissions(ctx, lead)
	if err != nil || len(perms.LeadRequests) != 1 || perms.LeadRequests[0].Username != "carol" {
		t.Fatalf("unexpected permissions %+v %v", perms, err)
	}
	if err := uc.ApproveLead(ctx, lead, "carol"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	user, _ := store.Users().Get(ctx, "carol")
	if !user.IsProjectLead || user.RequestedLeadStatus {
		t.Fatalf("approval must set lead and clear the request, got %+v", user)
	}
	if err := uc.ApproveLead(ctx, lead, "nobody"); !errors.Is(err, entity.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDashboards(t *testing.T) {
	uc, store, _ := newReviewFixture(t)
	ctx := context.Background()
	for _, s := range []entity.Statement{
		{ItemID: "Q2", PropertyID: "P180", Snak: entity.NoValueSnak(), Username: "alice"},
		{ItemID: "Q1", PropertyID: "P180", Snak: entity.NoValueSnak(), Username: "bob"},
		{ItemID: "Q1", PropertyID: "P180", Snak: entity.NoValueSnak(), Username: "alice"},
	} {
		stmt := s
		_, _ = store.Statements().Create(ctx, &stmt)
	}
	_, _ = store.Approvals().Create(ctx, &entity.Approval{Username: "alice", ItemID: "Q2", Approved: true})

	objects, total, err := uc.AnnotatedObjects(ctx, lead, 1)
	if err != nil || total != 2 || objects[0].ItemID != "Q1" || len(objects[0].Contributors) != 2 {
		t.Fatalf("unexpected objects %+v %d %v", objects, total, err)
	}
	mine, _, err := uc.UserAnnotations(ctx, &entity.Identity{Username: "alice"}, 1)
	if err != nil || len(mine) != 2 || mine[0].Approved || !mine[1].Approved {
		t.Fatalf("unexpected annotations %+v %v", mine, err)
	}
}

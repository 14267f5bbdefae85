package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/sirupsen/logrus"
)

// Permissions is what the permissions page shows to a user.
type Permissions struct {
	User *entity.User `json:"user"`
	// LeadRequests lists pending requests; only project leads see them.
	LeadRequests []entity.User `json:"lead_requests,omitempty"`
}

// ApprovalResult reports a stored approval and whether the contributor was told about it.
type ApprovalResult struct {
	Approval          *entity.Approval `json:"approval"`
	Notified          bool             `json:"notified"`
	NotificationError string           `json:"notification_error,omitempty"`
	// CleanupError is set when the approval was stored but the pair's comments could not be cleared.
	CleanupError string `json:"cleanup_error,omitempty"`
}

// ReviewUsecase covers the project lead workflow: comments, approvals, roles and dashboards.
type ReviewUsecase interface {
	EnsureUser(ctx context.Context, identity *entity.Identity) (*entity.User, error)
	Permissions(ctx context.Context, identity *entity.Identity) (*Permissions, error)
	RequestLead(ctx context.Context, identity *entity.Identity) error
	ApproveLead(ctx context.Context, identity *entity.Identity, username string) error

	AddComment(ctx context.Context, identity *entity.Identity, comment *entity.Comment) (*entity.Comment, error)
	// ListComments lists the comments on username's statements for itemID; an empty username means the caller.
	ListComments(ctx context.Context, identity *entity.Identity, itemID, username string) ([]entity.Comment, error)

	// SetApproval stores the review state first and then notifies the contributor. A failed notification
	// is reported in the result and never undoes the approval.
	SetApproval(ctx context.Context, identity *entity.Identity, username, itemID string, approved bool) (*ApprovalResult, error)
	Approved(ctx context.Context, identity *entity.Identity, username, itemID string) (bool, error)

	AnnotatedObjects(ctx context.Context, identity *entity.Identity, page int32) ([]entity.AnnotatedObject, int64, error)
	UserAnnotations(ctx context.Context, identity *entity.Identity, page int32) ([]entity.UserAnnotation, int64, error)
}

type reviewUsecase struct {
	users      repository.UserRepository
	comments   repository.CommentRepository
	approvals  repository.ApprovalRepository
	statements repository.StatementRepository
	kb         repository.KnowledgeBase
	settings   Settings
	logger     *logrus.Logger
}

func NewReviewUsecase(users repository.UserRepository, comments repository.CommentRepository,
	approvals repository.ApprovalRepository, statements repository.StatementRepository,
	kb repository.KnowledgeBase, settings Settings, logger *logrus.Logger) ReviewUsecase {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &reviewUsecase{
		users:      users,
		comments:   comments,
		approvals:  approvals,
		statements: statements,
		kb:         kb,
		settings:   settings,
		logger:     logger,
	}
}

func (u *reviewUsecase) EnsureUser(ctx context.Context, identity *entity.Identity) (*entity.User, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	return u.users.Ensure(ctx, identity.Username)
}

func (u *reviewUsecase) Permissions(ctx context.Context, identity *entity.Identity) (*Permissions, error) {
	user, err := u.EnsureUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	out := &Permissions{User: user}
	if user.IsProjectLead {
		if out.LeadRequests, err = u.users.ListLeadRequests(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (u *reviewUsecase) RequestLead(ctx context.Context, identity *entity.Identity) error {
	user, err := u.EnsureUser(ctx, identity)
	if err != nil {
		return err
	}
	if user.IsProjectLead {
		return nil
	}
	return u.users.RequestLead(ctx, user.Username)
}

func (u *reviewUsecase) ApproveLead(ctx context.Context, identity *entity.Identity, username string) error {
	if err := requireLead(ctx, u.users, identity); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return entity.ErrInvalidUserName
	}
	return u.users.GrantLead(ctx, username)
}

func (u *reviewUsecase) AddComment(ctx context.Context, identity *entity.Identity, comment *entity.Comment) (*entity.Comment, error) {
	if err := requireLead(ctx, u.users, identity); err != nil {
		return nil, err
	}
	if comment == nil || strings.TrimSpace(comment.Comment) == "" {
		return nil, entity.NewValidationError("comment", "is required")
	}
	out := *comment
	out.Comment = strings.TrimSpace(out.Comment)
	out.StatementID = strings.TrimSpace(out.StatementID)
	out.Username = strings.TrimSpace(out.Username)
	out.ProjectLeadUsername = identity.Username
	if out.StatementID == "" {
		return nil, entity.NewValidationError("statement_id", "is required")
	}
	if out.Username == "" {
		return nil, entity.ErrInvalidUserName
	}
	itemID, err := entity.ParseEntityID(out.ItemID)
	if err != nil {
		return nil, err
	}
	out.ItemID = itemID

	if out.ID, err = u.comments.Create(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *reviewUsecase) ListComments(ctx context.Context, identity *entity.Identity, itemID, username string) ([]entity.Comment, error) {
	username, err := u.subject(ctx, identity, username)
	if err != nil {
		return nil, err
	}
	if itemID, err = entity.ParseEntityID(itemID); err != nil {
		return nil, err
	}
	return u.comments.List(ctx, itemID, username)
}

func (u *reviewUsecase) SetApproval(ctx context.Context, identity *entity.Identity, username, itemID string, approved bool) (*ApprovalResult, error) {
	if err := requireLead(ctx, u.users, identity); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, entity.ErrInvalidUserName
	}
	itemID, err := entity.ParseEntityID(itemID)
	if err != nil {
		return nil, err
	}

	approval := &entity.Approval{Username: username, ItemID: itemID, Approved: approved}
	if approval.ID, err = u.approvals.Create(ctx, approval); err != nil {
		return nil, err
	}
	result := &ApprovalResult{Approval: approval}
	if !approved {
		return result, nil
	}
	log := u.logger.WithFields(logrus.Fields{
		"item_id":  itemID,
		"username": username,
		"lead":     identity.Username,
	})
	// Review comments are settled by the approval.
	if err := u.comments.DeleteByItemUser(ctx, itemID, username); err != nil {
		log.WithError(err).Error("clearing review comments after approval failed")
		result.CleanupError = err.Error()
	}

	if err := u.notify(ctx, identity, username, itemID); err != nil {
		log.WithError(err).Warn("approval notification failed")
		result.NotificationError = err.Error()
		return result, nil
	}
	result.Notified = true
	return result, nil
}

func (u *reviewUsecase) notify(ctx context.Context, identity *entity.Identity, username, itemID string) error {
	session, err := u.kb.Session(identity)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Annotations for object %s approved", itemID)
	body := fmt.Sprintf("Your annotations for object %s have been approved on the Dura Europos Wikidata Annotation Tool. "+
		"Please navigate to %s or type in %s into the lookup bar when you visit the homepage at %s/",
		itemID, u.settings.ItemURL(itemID), itemID, strings.TrimRight(u.settings.BaseURL, "/"))
	return session.SendMessage(ctx, username, subject, body)
}

func (u *reviewUsecase) Approved(ctx context.Context, identity *entity.Identity, username, itemID string) (bool, error) {
	username, err := u.subject(ctx, identity, username)
	if err != nil {
		return false, err
	}
	if itemID, err = entity.ParseEntityID(itemID); err != nil {
		return false, err
	}
	approval, err := u.approvals.Latest(ctx, itemID, username)
	if err != nil || approval == nil {
		return false, err
	}
	return approval.Approved, nil
}

func (u *reviewUsecase) AnnotatedObjects(ctx context.Context, identity *entity.Identity, page int32) ([]entity.AnnotatedObject, int64, error) {
	if err := requireLead(ctx, u.users, identity); err != nil {
		return nil, 0, err
	}
	return u.statements.AnnotatedObjects(ctx, u.page(page))
}

func (u *reviewUsecase) UserAnnotations(ctx context.Context, identity *entity.Identity, page int32) ([]entity.UserAnnotation, int64, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, 0, err
	}
	items, total, err := u.statements.AnnotatedObjectsByUser(ctx, identity.Username, u.page(page))
	if err != nil {
		return nil, 0, err
	}
	out := make([]entity.UserAnnotation, 0, len(items))
	for _, itemID := range items {
		approval, err := u.approvals.Latest(ctx, itemID, identity.Username)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, entity.UserAnnotation{ItemID: itemID, Approved: approval != nil && approval.Approved})
	}
	return out, total, nil
}

func (u *reviewUsecase) page(page int32) repository.Pagination {
	return repository.Pagination{PageNo: page}.WithDefaults(int32(u.settings.pageSize()))
}

// subject resolves whose review data is read: the caller's own, or anybody's for a project lead.
func (u *reviewUsecase) subject(ctx context.Context, identity *entity.Identity, username string) (string, error) {
	if err := requireIdentity(identity); err != nil {
		return "", err
	}
	username = strings.TrimSpace(username)
	if username == "" || username == identity.Username {
		return identity.Username, nil
	}
	if err := requireLead(ctx, u.users, identity); err != nil {
		return "", err
	}
	return username, nil
}

func requireLead(ctx context.Context, users repository.UserRepository, identity *entity.Identity) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	user, err := users.Get(ctx, identity.Username)
	if errors.Is(err, entity.ErrUserNotFound) {
		return entity.Unauthorized(entity.ErrProjectLeadRequired, "")
	}
	if err != nil {
		return err
	}
	if !user.IsProjectLead {
		return entity.Unauthorized(entity.ErrProjectLeadRequired, "")
	}
	return nil
}

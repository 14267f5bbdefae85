package repository

import (
	"context"

	"github.com/eslsoft/depictor/internal/entity"
)

// UserRepository stores users and their project lead flags.
type UserRepository interface {
	Get(ctx context.Context, username string) (*entity.User, error)
	// Ensure creates a non-lead user on first sight and returns the stored row.
	Ensure(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	RequestLead(ctx context.Context, username string) error
	// GrantLead marks the user as project lead and clears a pending request atomically.
	GrantLead(ctx context.Context, username string) error
	ListLeadRequests(ctx context.Context) ([]entity.User, error)
}

// CommentRepository stores project lead comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) (int64, error)
	List(ctx context.Context, itemID, username string) ([]entity.Comment, error)
	DeleteByItemUser(ctx context.Context, itemID, username string) error
}

// ApprovalRepository keeps the approval history of (item, user) pairs.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *entity.Approval) (int64, error)
	// Latest returns nil when the pair was never reviewed.
	Latest(ctx context.Context, itemID, username string) (*entity.Approval, error)
	DeleteByItemUser(ctx context.Context, itemID, username string) error
}

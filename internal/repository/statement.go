package repository

import (
	"context"

	"github.com/eslsoft/depictor/internal/entity"
)

// ListStatementQuery holds parameters for listing staged statements.
type ListStatementQuery struct {
	Pagination
	FilterOrder

	ItemID   string
	Username string
}

// StatementRepository persists statements staged for later promotion.
type StatementRepository interface {
	// Create inserts the statement and returns the store-generated id.
	Create(ctx context.Context, stmt *entity.Statement) (int64, error)
	Get(ctx context.Context, id int64) (*entity.Statement, error)
	// ListByItemUser returns the pair's statements in insertion order.
	ListByItemUser(ctx context.Context, itemID, username string) ([]entity.Statement, error)
	List(ctx context.Context, query *ListStatementQuery) ([]entity.Statement, int64, error)
	// Delete removes the statement together with its qualifier and comments. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	// Purge removes the given statements and their qualifiers plus every comment and approval of the pair.
	Purge(ctx context.Context, itemID, username string, ids []int64) error
	AnnotatedObjects(ctx context.Context, page Pagination) ([]entity.AnnotatedObject, int64, error)
	AnnotatedObjectsByUser(ctx context.Context, username string, page Pagination) ([]string, int64, error)
}

// QualifierRepository persists staged regions keyed by statement reference.
type QualifierRepository interface {
	// Upsert overwrites region and hash when the statement already has a qualifier.
	Upsert(ctx context.Context, q *entity.Qualifier) error
	// Find returns nil when the statement has no staged region.
	Find(ctx context.Context, statementRef string) (*entity.Qualifier, error)
	FindMany(ctx context.Context, statementRefs []string) (map[string]entity.Qualifier, error)
	Delete(ctx context.Context, statementRef string) error
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/repository"
)

// CommentRepository stores project lead comments in SQL.
type CommentRepository struct {
	db *database.DB
}

// NewCommentRepository constructs a database/sql backed repository.
func NewCommentRepository(db *database.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) (int64, error) {
	const q = `INSERT INTO comments (statement_id, comment, project_lead_username, item_id, username)
		VALUES (?, ?, ?, ?, ?) RETURNING comment_id`
	var id int64
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(q), c.StatementID, c.Comment, c.ProjectLeadUsername, c.ItemID, c.Username).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	return id, nil
}

func (r *CommentRepository) List(ctx context.Context, itemID, username string) ([]entity.Comment, error) {
	const q = `SELECT comment_id, statement_id, comment, project_lead_username, item_id, username
		FROM comments WHERE item_id = ? AND username = ? ORDER BY comment_id`
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), itemID, username)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.StatementID, &c.Comment, &c.ProjectLeadUsername, &c.ItemID, &c.Username); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) DeleteByItemUser(ctx context.Context, itemID, username string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM comments WHERE item_id = ? AND username = ?`), itemID, username); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}

// ApprovalRepository stores approval history in SQL.
type ApprovalRepository struct {
	db *database.DB
}

// NewApprovalRepository constructs a database/sql backed repository.
func NewApprovalRepository(db *database.DB) repository.ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) Create(ctx context.Context, a *entity.Approval) (int64, error) {
	const q = `INSERT INTO approvals (username, item_id, approved) VALUES (?, ?, ?) RETURNING approval_id`
	var id int64
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(q), a.Username, a.ItemID, a.Approved).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert approval: %w", err)
	}
	return id, nil
}

func (r *ApprovalRepository) Latest(ctx context.Context, itemID, username string) (*entity.Approval, error) {
	const q = `SELECT approval_id, username, item_id, approved FROM approvals
		WHERE item_id = ? AND username = ? ORDER BY approval_id DESC LIMIT 1`
	var a entity.Approval
	err := r.db.QueryRowContext(ctx, r.db.Rebind(q), itemID, username).Scan(&a.ID, &a.Username, &a.ItemID, &a.Approved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest approval: %w", err)
	}
	return &a, nil
}

func (r *ApprovalRepository) DeleteByItemUser(ctx context.Context, itemID, username string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM approvals WHERE item_id = ? AND username = ?`), itemID, username); err != nil {
		return fmt.Errorf("delete approvals: %w", err)
	}
	return nil
}

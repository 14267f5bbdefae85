package repository

import (
	"context"
	"fmt"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/repository"
)

// UserRepository stores users in SQL.
type UserRepository struct {
	db *database.DB
}

// NewUserRepository constructs a database/sql backed repository.
func NewUserRepository(db *database.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind(`SELECT username, is_project_lead, requested_lead_status FROM users WHERE username = ?`), username,
	).Scan(&u.Username, &u.IsProjectLead, &u.RequestedLeadStatus)
	if err != nil {
		return nil, translateError(err, entity.ErrUserNotFound, nil)
	}
	return &u, nil
}

func (r *UserRepository) Ensure(ctx context.Context, username string) (*entity.User, error) {
	const q = `INSERT INTO users (username, is_project_lead, requested_lead_status) VALUES (?, ?, ?)
		ON CONFLICT(username) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(q), username, false, false); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return r.Get(ctx, username)
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	const q = `INSERT INTO users (username, is_project_lead, requested_lead_status) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q), user.Username, user.IsProjectLead, user.RequestedLeadStatus)
	if err != nil {
		return translateError(err, nil, entity.ErrUserAlreadyExists)
	}
	return nil
}

func (r *UserRepository) RequestLead(ctx context.Context, username string) error {
	return r.update(ctx, `UPDATE users SET requested_lead_status = ? WHERE username = ?`, true, username)
}

func (r *UserRepository) GrantLead(ctx context.Context, username string) error {
	return r.update(ctx, `UPDATE users SET is_project_lead = ?, requested_lead_status = ? WHERE username = ?`, true, false, username)
}

func (r *UserRepository) ListLeadRequests(ctx context.Context) ([]entity.User, error) {
	const q = `SELECT username, is_project_lead, requested_lead_status FROM users
		WHERE requested_lead_status = ? AND is_project_lead = ? ORDER BY username`
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), true, false)
	if err != nil {
		return nil, fmt.Errorf("list lead requests: %w", err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.Username, &u.IsProjectLead, &u.RequestedLeadStatus); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) update(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

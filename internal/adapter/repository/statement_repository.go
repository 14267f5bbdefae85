package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/eslsoft/depictor/pkg/filterexpr"
	"github.com/samber/lo"
)

const statementColumns = `statement_id, item_id, property_id, value_id, snaktype, username, reference_type, reference_value, pages_value`

// StatementRepository stores staged statements in SQL.
type StatementRepository struct {
	db *database.DB
}

// NewStatementRepository constructs a database/sql backed repository.
func NewStatementRepository(db *database.DB) repository.StatementRepository {
	return &StatementRepository{db: db}
}

func (r *StatementRepository) Create(ctx context.Context, stmt *entity.Statement) (int64, error) {
	var refType, refValue, pages string
	if stmt.Reference != nil {
		refType, refValue, pages = stmt.Reference.Property, stmt.Reference.Value, stmt.Reference.Pages
	}

	const q = `INSERT INTO statements (item_id, property_id, value_id, snaktype, username, reference_type, reference_value, pages_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING statement_id`
	var id int64
	err := r.db.QueryRowContext(ctx, r.db.Rebind(q),
		stmt.ItemID, stmt.PropertyID, nullString(stmt.Snak.ValueID), string(stmt.Snak.Type), stmt.Username,
		nullString(refType), nullString(refValue), nullString(pages),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert statement: %w", err)
	}
	return id, nil
}

func (r *StatementRepository) Get(ctx context.Context, id int64) (*entity.Statement, error) {
	q := `SELECT ` + statementColumns + ` FROM statements WHERE statement_id = ?`
	stmt, err := scanStatement(r.db.QueryRowContext(ctx, r.db.Rebind(q), id))
	if err != nil {
		return nil, translateError(err, entity.ErrStatementNotFound, nil)
	}
	return stmt, nil
}

func (r *StatementRepository) ListByItemUser(ctx context.Context, itemID, username string) ([]entity.Statement, error) {
	q := `SELECT ` + statementColumns + ` FROM statements WHERE item_id = ? AND username = ? ORDER BY statement_id`
	return r.query(ctx, q, itemID, username)
}

func (r *StatementRepository) List(ctx context.Context, query *repository.ListStatementQuery) ([]entity.Statement, int64, error) {
	if query == nil {
		query = &repository.ListStatementQuery{}
	}
	q, err := filterexpr.Compile(query, listStatementsSchema)
	if err != nil {
		var ferr *filterexpr.Error
		if errors.As(err, &ferr) {
			return nil, 0, entity.NewValidationError(ferr.Param, "%v", ferr.Err)
		}
		return nil, 0, err
	}
	if query.ItemID != "" {
		q.Where("item_id = ?", query.ItemID)
	}
	if query.Username != "" {
		q.Where("username = ?", query.Username)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM statements`+q.WhereClause()), q.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count statements: %w", err)
	}

	page := query.Pagination.WithDefaults(defaultPageSize)
	sel := `SELECT ` + statementColumns + ` FROM statements` + q.WhereClause() + ` ` + q.OrderBy() + ` LIMIT ? OFFSET ?`
	items, err := r.query(ctx, sel, append(q.Args(), page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *StatementRepository) Delete(ctx context.Context, id int64) error {
	ref := entity.FormatStatementID(id)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM statements WHERE statement_id = ?`), id); err != nil {
			return fmt.Errorf("delete statement: %w", err)
		}
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM qualifiers WHERE statement_id = ?`), ref); err != nil {
			return fmt.Errorf("delete qualifier: %w", err)
		}
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM comments WHERE statement_id = ?`), ref); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		return nil
	})
}

func (r *StatementRepository) Purge(ctx context.Context, itemID, username string, ids []int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if len(ids) > 0 {
			cond, args := inClause("statement_id", ids)
			if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM statements WHERE `+cond), args...); err != nil {
				return fmt.Errorf("delete statements: %w", err)
			}
			cond, args = inClause("statement_id", lo.Map(ids, func(id int64, _ int) string { return entity.FormatStatementID(id) }))
			if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM qualifiers WHERE `+cond), args...); err != nil {
				return fmt.Errorf("delete qualifiers: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM comments WHERE item_id = ? AND username = ?`), itemID, username); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM approvals WHERE item_id = ? AND username = ?`), itemID, username); err != nil {
			return fmt.Errorf("delete approvals: %w", err)
		}
		return nil
	})
}

func (r *StatementRepository) AnnotatedObjects(ctx context.Context, page repository.Pagination) ([]entity.AnnotatedObject, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT item_id) FROM statements`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count annotated objects: %w", err)
	}

	page = page.WithDefaults(defaultPageSize)
	itemIDs, err := r.column(ctx, `SELECT DISTINCT item_id FROM statements ORDER BY item_id LIMIT ? OFFSET ?`, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	if len(itemIDs) == 0 {
		return nil, total, nil
	}

	cond, args := inClause("item_id", itemIDs)
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`SELECT DISTINCT item_id, username FROM statements WHERE `+cond+` ORDER BY item_id, username`), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contributors: %w", err)
	}
	defer rows.Close()

	contributors := make(map[string][]string, len(itemIDs))
	for rows.Next() {
		var itemID, username string
		if err := rows.Scan(&itemID, &username); err != nil {
			return nil, 0, err
		}
		contributors[itemID] = append(contributors[itemID], username)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	objects := lo.Map(itemIDs, func(id string, _ int) entity.AnnotatedObject {
		return entity.AnnotatedObject{ItemID: id, Contributors: contributors[id]}
	})
	return objects, total, nil
}

func (r *StatementRepository) AnnotatedObjectsByUser(ctx context.Context, username string, page repository.Pagination) ([]string, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(DISTINCT item_id) FROM statements WHERE username = ?`), username).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user objects: %w", err)
	}
	page = page.WithDefaults(defaultPageSize)
	itemIDs, err := r.column(ctx, `SELECT DISTINCT item_id FROM statements WHERE username = ? ORDER BY item_id LIMIT ? OFFSET ?`,
		username, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return itemIDs, total, nil
}

func (r *StatementRepository) query(ctx context.Context, q string, args ...any) ([]entity.Statement, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var items []entity.Statement
	for rows.Next() {
		stmt, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *stmt)
	}
	return items, rows.Err()
}

func (r *StatementRepository) column(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatement(row rowScanner) (*entity.Statement, error) {
	var (
		stmt                             entity.Statement
		snaktype                         string
		valueID, refType, refValue, page sql.NullString
	)
	if err := row.Scan(&stmt.ID, &stmt.ItemID, &stmt.PropertyID, &valueID, &snaktype, &stmt.Username, &refType, &refValue, &page); err != nil {
		return nil, err
	}
	stmt.Snak = entity.Snak{Type: entity.SnakType(snaktype), ValueID: valueID.String}
	if refType.Valid && refType.String != "" {
		var ref entity.Reference
		if refType.String == entity.PropertyStatedIn {
			ref = entity.StatedIn(refValue.String, page.String)
		} else {
			ref = entity.LiteralReference(refType.String, refValue.String)
		}
		stmt.Reference = &ref
	}
	return &stmt, nil
}

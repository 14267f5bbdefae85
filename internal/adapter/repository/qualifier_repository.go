package repository

import (
	"context"
	"fmt"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/repository"
)

// QualifierRepository stores staged regions in SQL.
type QualifierRepository struct {
	db *database.DB
}

// NewQualifierRepository constructs a database/sql backed repository.
func NewQualifierRepository(db *database.DB) repository.QualifierRepository {
	return &QualifierRepository{db: db}
}

func (r *QualifierRepository) Upsert(ctx context.Context, q *entity.Qualifier) error {
	const stmt = `INSERT INTO qualifiers (statement_id, iiif_region, qualifier_hash) VALUES (?, ?, ?)
		ON CONFLICT(statement_id) DO UPDATE
		SET iiif_region = excluded.iiif_region,
		    qualifier_hash = excluded.qualifier_hash`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(stmt), q.StatementRef, q.Region.String(), q.Hash); err != nil {
		return fmt.Errorf("upsert qualifier: %w", err)
	}
	return nil
}

func (r *QualifierRepository) Find(ctx context.Context, statementRef string) (*entity.Qualifier, error) {
	found, err := r.FindMany(ctx, []string{statementRef})
	if err != nil {
		return nil, err
	}
	q, ok := found[statementRef]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *QualifierRepository) FindMany(ctx context.Context, statementRefs []string) (map[string]entity.Qualifier, error) {
	result := make(map[string]entity.Qualifier, len(statementRefs))
	if len(statementRefs) == 0 {
		return result, nil
	}

	cond, args := inClause("statement_id", statementRefs)
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`SELECT statement_id, iiif_region, qualifier_hash FROM qualifiers WHERE `+cond), args...)
	if err != nil {
		return nil, fmt.Errorf("query qualifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref, raw, hash string
		if err := rows.Scan(&ref, &raw, &hash); err != nil {
			return nil, err
		}
		region, err := entity.ParseRegion(raw)
		if err != nil {
			return nil, fmt.Errorf("stored region for statement %s: %w", ref, err)
		}
		result[ref] = entity.Qualifier{StatementRef: ref, Region: region, Hash: hash}
	}
	return result, rows.Err()
}

func (r *QualifierRepository) Delete(ctx context.Context, statementRef string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM qualifiers WHERE statement_id = ?`), statementRef); err != nil {
		return fmt.Errorf("delete qualifier: %w", err)
	}
	return nil
}

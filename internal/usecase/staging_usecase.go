package usecase

import (
	"context"
	"errors"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
)

// StagingUsecase records and retracts locally staged annotations. It never talks to the knowledge base.
type StagingUsecase interface {
	// AddStatement validates and stores a statement, returning its depicted row with the new statement id.
	AddStatement(ctx context.Context, identity *entity.Identity, draft entity.StatementDraft, langs entity.Languages) (*entity.Depicted, error)
	// AddQualifier stages a region for a staged statement or a remote claim GUID.
	AddQualifier(ctx context.Context, identity *entity.Identity, statementRef, region, hash string) (*entity.Qualifier, error)
	DeleteStatement(ctx context.Context, identity *entity.Identity, id int64) error
	// DeleteQualifier removes the staged region and returns the statement's row without it.
	DeleteQualifier(ctx context.Context, identity *entity.Identity, id int64, langs entity.Languages) (*entity.Depicted, error)
	List(ctx context.Context, query *repository.ListStatementQuery) ([]entity.Statement, int64, error)
}

type stagingUsecase struct {
	statements repository.StatementRepository
	qualifiers repository.QualifierRepository
	users      repository.UserRepository
	assembler  *Assembler
	settings   Settings
}

func NewStagingUsecase(statements repository.StatementRepository, qualifiers repository.QualifierRepository,
	users repository.UserRepository, assembler *Assembler, settings Settings) StagingUsecase {
	return &stagingUsecase{
		statements: statements,
		qualifiers: qualifiers,
		users:      users,
		assembler:  assembler,
		settings:   settings,
	}
}

func (u *stagingUsecase) AddStatement(ctx context.Context, identity *entity.Identity, draft entity.StatementDraft, langs entity.Languages) (*entity.Depicted, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	stmt, err := draft.Build(identity.Username, u.settings.properties())
	if err != nil {
		return nil, err
	}
	if _, err := u.users.Ensure(ctx, identity.Username); err != nil {
		return nil, err
	}

	if stmt.ID, err = u.statements.Create(ctx, stmt); err != nil {
		return nil, err
	}
	return u.depicted(ctx, stmt, langs)
}

func (u *stagingUsecase) AddQualifier(ctx context.Context, identity *entity.Identity, statementRef, region, hash string) (*entity.Qualifier, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	q, err := entity.NewQualifier(statementRef, region, hash)
	if err != nil {
		return nil, err
	}
	// Local statements must belong to the caller; remote claim GUIDs are staged as given.
	if id, perr := entity.ParseStatementID(q.StatementRef); perr == nil {
		if _, err := u.owned(ctx, identity, id); err != nil {
			return nil, err
		}
		q.StatementRef = entity.FormatStatementID(id)
	}
	if err := u.qualifiers.Upsert(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (u *stagingUsecase) DeleteStatement(ctx context.Context, identity *entity.Identity, id int64) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if id <= 0 {
		return entity.ErrInvalidStatementID
	}
	if _, err := u.owned(ctx, identity, id); err != nil {
		if errors.Is(err, entity.ErrStatementNotFound) {
			return nil
		}
		return err
	}
	return u.statements.Delete(ctx, id)
}

func (u *stagingUsecase) DeleteQualifier(ctx context.Context, identity *entity.Identity, id int64, langs entity.Languages) (*entity.Depicted, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, entity.ErrInvalidStatementID
	}
	stmt, err := u.owned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if err := u.qualifiers.Delete(ctx, stmt.Ref()); err != nil {
		return nil, err
	}
	return u.depicted(ctx, stmt, langs)
}

func (u *stagingUsecase) List(ctx context.Context, query *repository.ListStatementQuery) ([]entity.Statement, int64, error) {
	if query == nil {
		query = &repository.ListStatementQuery{}
	}
	query.Pagination = query.Pagination.WithDefaults(int32(u.settings.pageSize()))
	return u.statements.List(ctx, query)
}

func (u *stagingUsecase) owned(ctx context.Context, identity *entity.Identity, id int64) (*entity.Statement, error) {
	stmt, err := u.statements.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if stmt.Username != identity.Username {
		return nil, entity.Unauthorized(entity.ErrNotStatementOwner, "")
	}
	return stmt, nil
}

// depicted renders one statement without its region.
func (u *stagingUsecase) depicted(ctx context.Context, stmt *entity.Statement, langs entity.Languages) (*entity.Depicted, error) {
	rows, err := u.assembler.Assemble(ctx, nil, []entity.Statement{*stmt}, nil, langs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, entity.NewValidationError("property_id", "bad property ID %q", stmt.PropertyID)
	}
	return &rows[0], nil
}

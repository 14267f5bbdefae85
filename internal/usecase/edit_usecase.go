package usecase

import (
	"context"
	"strings"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
)

// EditUsecase writes annotations straight to the knowledge base, bypassing the staging area.
type EditUsecase interface {
	AddRemoteStatement(ctx context.Context, identity *entity.Identity, draft entity.StatementDraft, langs entity.Languages) (*entity.Depicted, error)
	// SetRemoteQualifier sets the region on a remote claim and returns the new qualifier hash.
	SetRemoteQualifier(ctx context.Context, identity *entity.Identity, claimID, region, hash string) (string, error)
}

type editUsecase struct {
	kb        repository.KnowledgeBase
	assembler *Assembler
	settings  Settings
}

func NewEditUsecase(kb repository.KnowledgeBase, assembler *Assembler, settings Settings) EditUsecase {
	return &editUsecase{kb: kb, assembler: assembler, settings: settings}
}

func (u *editUsecase) AddRemoteStatement(ctx context.Context, identity *entity.Identity, draft entity.StatementDraft, langs entity.Languages) (*entity.Depicted, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(draft.ReferenceType) != "" || strings.TrimSpace(draft.PagesValue) != "" {
		return nil, entity.NewValidationError("reference", "references are only supported for staged statements")
	}
	stmt, err := draft.Build(identity.Username, u.settings.properties())
	if err != nil {
		return nil, err
	}
	session, err := u.kb.Session(identity)
	if err != nil {
		return nil, err
	}
	claimID, err := session.CreateClaim(ctx, stmt.ItemID, stmt.PropertyID, stmt.Snak)
	if err != nil {
		return nil, err
	}

	rows := []entity.Depicted{{
		StatementID: claimID,
		PropertyID:  stmt.PropertyID,
		SnakType:    stmt.Snak.Type,
		ItemID:      stmt.Snak.ValueID,
	}}
	if _, err := u.assembler.Label(ctx, rows, langs); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (u *editUsecase) SetRemoteQualifier(ctx context.Context, identity *entity.Identity, claimID, region, hash string) (string, error) {
	if err := requireIdentity(identity); err != nil {
		return "", err
	}
	q, err := entity.NewQualifier(claimID, region, hash)
	if err != nil {
		return "", err
	}
	if _, perr := entity.ParseStatementID(q.StatementRef); perr == nil {
		return "", entity.NewValidationError("statement_id", "%q is a staged statement, not a remote claim", q.StatementRef)
	}
	session, err := u.kb.Session(identity)
	if err != nil {
		return "", err
	}
	return session.SetQualifier(ctx, q.StatementRef, q.Region, q.Hash)
}

package usecase

import (
	"context"
	"strings"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/samber/lo"
)

// DepictedQuery selects the depicted rows of one item.
type DepictedQuery struct {
	ItemID    string
	Identity  *entity.Identity
	Languages entity.Languages
	// LocalOnly shows only the staged statements of Username, as a reviewer sees them.
	LocalOnly bool
	Username  string
}

// DepictedUsecase assembles the "depicted items" view of an item.
type DepictedUsecase interface {
	List(ctx context.Context, query DepictedQuery) ([]entity.Depicted, error)
}

type depictedUsecase struct {
	viewer
}

func NewDepictedUsecase(entities repository.EntityRepository, statements repository.StatementRepository,
	qualifiers repository.QualifierRepository, users repository.UserRepository, assembler *Assembler, settings Settings) DepictedUsecase {
	return &depictedUsecase{viewer: viewer{
		entities:   entities,
		statements: statements,
		qualifiers: qualifiers,
		users:      users,
		assembler:  assembler,
		settings:   settings,
	}}
}

func (u *depictedUsecase) List(ctx context.Context, query DepictedQuery) ([]entity.Depicted, error) {
	itemID, err := entity.ParseEntityID(query.ItemID)
	if err != nil {
		return nil, err
	}
	query.ItemID = itemID

	var doc *entity.EntityDocument
	if !query.LocalOnly {
		if doc, err = u.entities.GetEntity(ctx, itemID, query.Languages); err != nil {
			return nil, err
		}
	}
	depicteds, err := u.collect(ctx, doc, query)
	if err != nil {
		return nil, err
	}
	if _, err := u.assembler.Label(ctx, depicteds, query.Languages); err != nil {
		return nil, err
	}
	return depicteds, nil
}

// viewer holds what both the item and depicted views read.
type viewer struct {
	entities   repository.EntityRepository
	statements repository.StatementRepository
	qualifiers repository.QualifierRepository
	users      repository.UserRepository
	assembler  *Assembler
	settings   Settings
}

// collect gathers remote claims from doc (nil in local-only views) and the staged statements visible to the caller.
func (v *viewer) collect(ctx context.Context, doc *entity.EntityDocument, query DepictedQuery) ([]entity.Depicted, error) {
	var remote []entity.RemoteClaim
	if doc != nil {
		remote = doc.ClaimsFor(v.settings.properties())
	}

	owner, err := v.localOwner(ctx, query)
	if err != nil {
		return nil, err
	}
	var local []entity.Statement
	var qualifiers map[string]entity.Qualifier
	if owner != "" {
		if local, err = v.statements.ListByItemUser(ctx, query.ItemID, owner); err != nil {
			return nil, err
		}
		refs := lo.Map(local, func(s entity.Statement, _ int) string { return s.Ref() })
		if qualifiers, err = v.qualifiers.FindMany(ctx, refs); err != nil {
			return nil, err
		}
	}
	return v.assembler.Collect(remote, local, qualifiers)
}

// localOwner decides whose staged statements are shown. Staged statements are private to their author
// until promoted; project leads may look at anybody's in the local-only review view.
func (v *viewer) localOwner(ctx context.Context, query DepictedQuery) (string, error) {
	if !query.LocalOnly {
		if !query.Identity.LoggedIn() {
			return "", nil
		}
		return query.Identity.Username, nil
	}

	if err := requireIdentity(query.Identity); err != nil {
		return "", err
	}
	username := strings.TrimSpace(query.Username)
	if username == "" || username == query.Identity.Username {
		return query.Identity.Username, nil
	}
	if err := requireLead(ctx, v.users, query.Identity); err != nil {
		return "", err
	}
	return username, nil
}

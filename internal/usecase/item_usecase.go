package usecase

import (
	"context"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
)

// ItemUsecase loads the annotated view of an object: label, image and depicteds.
type ItemUsecase interface {
	Get(ctx context.Context, query DepictedQuery) (*entity.Item, error)
}

type itemUsecase struct {
	viewer
	media repository.MediaRepository
}

func NewItemUsecase(entities repository.EntityRepository, statements repository.StatementRepository,
	qualifiers repository.QualifierRepository, users repository.UserRepository, media repository.MediaRepository,
	assembler *Assembler, settings Settings) ItemUsecase {
	return &itemUsecase{
		viewer: viewer{
			entities:   entities,
			statements: statements,
			qualifiers: qualifiers,
			users:      users,
			assembler:  assembler,
			settings:   settings,
		},
		media: media,
	}
}

func (u *itemUsecase) Get(ctx context.Context, query DepictedQuery) (*entity.Item, error) {
	itemID, err := entity.ParseEntityID(query.ItemID)
	if err != nil {
		return nil, err
	}
	query.ItemID = itemID

	doc, err := u.entities.GetEntity(ctx, itemID, query.Languages)
	if err != nil {
		return nil, err
	}
	item := &entity.Item{EntityID: itemID}
	if desc, ok := doc.Description(query.Languages); ok {
		item.Description = &desc
	}

	if item.ImageTitle, err = doc.ImageTitle(entity.PropertyImage); err != nil {
		return nil, err
	}
	if item.ImageTitle != "" {
		if item.Image, err = u.media.ImageInfo(ctx, item.ImageTitle, u.settings.thumbWidth()); err != nil {
			return nil, err
		}
		if item.Attribution, err = u.media.Attribution(ctx, item.ImageTitle, query.Languages.Primary()); err != nil {
			return nil, err
		}
	}

	remote := doc
	if query.LocalOnly {
		remote = nil
	}
	if item.Depicteds, err = u.collect(ctx, remote, query); err != nil {
		return nil, err
	}
	labels, err := u.assembler.Label(ctx, item.Depicteds, query.Languages, itemID)
	if err != nil {
		return nil, err
	}
	item.Label = labels[itemID]
	return item, nil
}

package repository

import (
	"context"

	"github.com/eslsoft/depictor/internal/entity"
)

// EntityRepository reads entities from the remote knowledge base.
type EntityRepository interface {
	GetEntity(ctx context.Context, id string, langs entity.Languages) (*entity.EntityDocument, error)
}

// LabelRepository resolves display labels. Ids without a label in any of the languages are absent from the result.
type LabelRepository interface {
	ResolveLabels(ctx context.Context, ids []string, langs entity.Languages) (map[string]entity.Label, error)
}

// KnowledgeBase opens write sessions on behalf of an authenticated user.
type KnowledgeBase interface {
	Session(identity *entity.Identity) (KnowledgeSession, error)
}

// KnowledgeSession performs remote writes for one user.
type KnowledgeSession interface {
	CreateClaim(ctx context.Context, itemID, propertyID string, snak entity.Snak) (string, error)
	// SetQualifier sets the region qualifier on a claim, replacing the one identified by hash when given,
	// and returns the hash of the stored qualifier.
	SetQualifier(ctx context.Context, claimID string, region entity.Region, hash string) (string, error)
	SetReference(ctx context.Context, claimID string, ref entity.Reference) error
	SendMessage(ctx context.Context, username, subject, body string) error
}

// MediaRepository reads file metadata from the media repository.
type MediaRepository interface {
	ImageInfo(ctx context.Context, title string, thumbWidth int) (*entity.ImageInfo, error)
	// Attribution returns nil when the file's license does not require attribution.
	Attribution(ctx context.Context, title, language string) (*entity.Attribution, error)
}

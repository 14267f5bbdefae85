//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/depictor/internal/adapter/commons"
	adapterrepo "github.com/eslsoft/depictor/internal/adapter/repository"
	"github.com/eslsoft/depictor/internal/adapter/rest"
	"github.com/eslsoft/depictor/internal/adapter/wikibase"
	"github.com/eslsoft/depictor/internal/infrastructure/config"
	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/infrastructure/server"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/eslsoft/depictor/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
	ProvideSettings,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
)

var repositorySet = wire.NewSet(
	adapterrepo.NewUserRepository,
	adapterrepo.NewStatementRepository,
	adapterrepo.NewQualifierRepository,
	adapterrepo.NewCommentRepository,
	adapterrepo.NewApprovalRepository,
)

var remoteSet = wire.NewSet(
	ProvideWikibase,
	ProvideCommons,
	wire.Bind(new(repository.EntityRepository), new(*wikibase.Client)),
	wire.Bind(new(repository.LabelRepository), new(*wikibase.Client)),
	wire.Bind(new(repository.KnowledgeBase), new(*wikibase.Client)),
	wire.Bind(new(repository.MediaRepository), new(*commons.Client)),
)

var usecaseSet = wire.NewSet(
	usecase.NewAssembler,
	usecase.NewDepictedUsecase,
	usecase.NewItemUsecase,
	usecase.NewStagingUsecase,
	usecase.NewEditUsecase,
	usecase.NewPromotionUsecase,
	usecase.NewReviewUsecase,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	ProvideAuthenticator,
	rest.NewHandler,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		remoteSet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}

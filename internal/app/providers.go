package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/depictor/internal/adapter/commons"
	"github.com/eslsoft/depictor/internal/adapter/mwapi"
	"github.com/eslsoft/depictor/internal/adapter/rest"
	"github.com/eslsoft/depictor/internal/adapter/wikibase"
	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/infrastructure/config"
	"github.com/eslsoft/depictor/internal/usecase"
)

func apiOptions(cfg *config.Config, endpoint string) mwapi.Options {
	return mwapi.Options{
		Endpoint:  endpoint,
		UserAgent: cfg.HTTP.UserAgent,
		RetryMax:  cfg.HTTP.RetryMax,
		Timeout:   cfg.HTTP.Timeout,
	}
}

// ProvideWikibase connects to the knowledge base Action API.
func ProvideWikibase(cfg *config.Config) *wikibase.Client {
	return wikibase.NewClient(mwapi.New(apiOptions(cfg, cfg.Wikibase.APIURL)))
}

// ProvideCommons connects to the media repository Action API.
func ProvideCommons(cfg *config.Config) *commons.Client {
	return commons.NewClient(mwapi.New(apiOptions(cfg, cfg.Commons.APIURL)))
}

// ProvideSettings extracts the workflow settings from config.
func ProvideSettings(cfg *config.Config) usecase.Settings {
	return usecase.Settings{
		Properties: entity.PropertySet(cfg.Annotation.Properties),
		PageSize:   cfg.Annotation.PageSize,
		ThumbWidth: cfg.Commons.ThumbWidth,
		BaseURL:    cfg.Server.BaseURL,
	}
}

// ProvideAuthenticator builds the session verifier.
func ProvideAuthenticator(cfg *config.Config, logger *logrus.Logger) *rest.Authenticator {
	return rest.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Server.BaseURL, logger)
}

package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/infrastructure/server"
	"github.com/eslsoft/depictor/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Logger  *logrus.Logger
	Server  *server.Server
	DB      *database.DB
	Staging usecase.StagingUsecase
}

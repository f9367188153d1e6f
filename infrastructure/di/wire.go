//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"learnpath-backend/application/ports"
	"learnpath-backend/application/services"
	"learnpath-backend/infrastructure/config"
	"learnpath-backend/pkg/auth"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        ports.DocumentStore
	PathRepo     ports.PathRepository
	FeedbackRepo ports.FeedbackRepository
	Service      *services.ProgressService
	JWTValidator *auth.JWTValidator
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideDocumentStore,
	ProvidePathRepository,
	ProvideFeedbackRepository,
	ProvideProgressService,
	ProvideJWTValidator,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}

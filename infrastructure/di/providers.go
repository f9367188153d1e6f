package di

import (
	"context"

	"learnpath-backend/application/ports"
	"learnpath-backend/application/services"
	"learnpath-backend/infrastructure/config"
	"learnpath-backend/infrastructure/persistence/docstore"
	dynamostore "learnpath-backend/infrastructure/persistence/dynamodb"
	"learnpath-backend/infrastructure/persistence/memory"
	"learnpath-backend/pkg/auth"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideDocumentStore selects the document store implementation
func ProvideDocumentStore(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.DocumentStore {
	if cfg.UseMemoryStore {
		logger.Warn("Using in-memory document store; data will not survive a restart")
		return memory.NewStore()
	}
	return dynamostore.NewStore(client, cfg.DynamoDBTable, logger)
}

// ProvidePathRepository creates the tree repository
func ProvidePathRepository(store ports.DocumentStore, logger *zap.Logger) ports.PathRepository {
	return docstore.NewPathRepository(store, logger)
}

// ProvideFeedbackRepository creates the feedback repository
func ProvideFeedbackRepository(store ports.DocumentStore, logger *zap.Logger) ports.FeedbackRepository {
	return docstore.NewFeedbackRepository(store, logger)
}

// ProvideProgressService creates the progress service
func ProvideProgressService(
	paths ports.PathRepository,
	feedback ports.FeedbackRepository,
	logger *zap.Logger,
) *services.ProgressService {
	return services.NewProgressService(paths, feedback, logger)
}

// ProvideJWTValidator creates the bearer-token validator. Development falls
// back to a fixed secret so the API runs without any token infrastructure.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDevelopment() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

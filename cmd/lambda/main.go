package main

import (
	"context"
	"log"

	"tablescout-backend/internal/config"
	"tablescout-backend/internal/infrastructure/aurora"
	ddb "tablescout-backend/internal/infrastructure/dynamodb"
	appEventbridge "tablescout-backend/internal/infrastructure/eventbridge"
	"tablescout-backend/internal/interfaces/http/rest"
	"tablescout-backend/internal/service/discovery"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsEventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

var chiLambda *chiadapter.ChiLambdaV2

func init() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(cfg.Region))
	if err != nil {
		log.Fatalf("unable to load SDK config: %v", err)
	}

	store := ddb.NewStore(awsDynamodb.NewFromConfig(awsCfg), logger)
	relational := aurora.NewClient(rdsdata.NewFromConfig(awsCfg), aurora.Connection{
		ResourceARN: cfg.AuroraClusterARN,
		SecretARN:   cfg.AuroraSecretARN,
		Database:    cfg.AuroraDatabase,
	}, logger)
	dispatcher := appEventbridge.NewDispatcher(awsEventbridge.NewFromConfig(awsCfg), "tablescout.discovery", logger)

	svc := discovery.NewService(store, relational, dispatcher, discovery.Config{
		TableName:     cfg.TableName,
		CityIndexName: cfg.CityIndexName,
		EventBusName:  cfg.EventBusName,
		ReviewsTable:  cfg.ReviewsTable,
	}, logger)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		rest.NewHandler(svc, logger).Routes(r)
	})

	chiLambda = chiadapter.NewV2(r)

	logger.Info("service initialized",
		zap.String("table", cfg.TableName),
		zap.String("eventBus", cfg.EventBusName),
	)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}

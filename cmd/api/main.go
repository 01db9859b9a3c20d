// Command api runs the discovery service as a plain HTTP server for local
// development.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tablescout-backend/internal/config"
	"tablescout-backend/internal/infrastructure/aurora"
	ddb "tablescout-backend/internal/infrastructure/dynamodb"
	appEventbridge "tablescout-backend/internal/infrastructure/eventbridge"
	"tablescout-backend/internal/interfaces/http/rest"
	"tablescout-backend/internal/service/discovery"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsEventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}
	defer logger.Sync()

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Fatal("unable to load SDK config", zap.Error(err))
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
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/api", func(r chi.Router) {
		rest.NewHandler(svc, logger).Routes(r)
	})

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

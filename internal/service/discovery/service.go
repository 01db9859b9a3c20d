// Package discovery provides business logic for the restaurant catalog:
// lookups, city listings, rating updates, bulk imports, and reviews.
package discovery

import (
	"context"
	"time"

	"tablescout-backend/internal/domain/restaurant"
	ddb "tablescout-backend/internal/infrastructure/dynamodb"
	"tablescout-backend/internal/infrastructure/eventbridge"

	"go.uber.org/zap"
)

const (
	maxRetries = 3
	baseDelay  = 100 * time.Millisecond
)

// KeyValueStore is the slice of the DynamoDB adapter the service uses.
type KeyValueStore interface {
	Get(ctx context.Context, table string, key ddb.Key) (ddb.Item, error)
	Query(ctx context.Context, spec ddb.QuerySpec) ([]ddb.Item, ddb.Key, error)
	Put(ctx context.Context, table string, item ddb.Item, cond *ddb.Condition) error
	Update(ctx context.Context, table string, key ddb.Key, updateExpr string, values ddb.Item, cond *ddb.Condition) error
	Delete(ctx context.Context, table string, key ddb.Key, cond *ddb.Condition) error
	BatchWrite(ctx context.Context, table string, op ddb.BatchOp, items []ddb.Item) error
	TransactWrite(ctx context.Context, items []ddb.TransactItem) error
}

// RelationalStore is the slice of the Aurora adapter the service uses.
type RelationalStore interface {
	ExecuteQuery(ctx context.Context, sql string, params map[string]any) ([]Record, error)
	FindByID(ctx context.Context, table, idColumn string, id any) (Record, error)
	Insert(ctx context.Context, table string, item Record) (int64, error)
	Delete(ctx context.Context, table, idColumn string, id any) (int64, error)
}

// Record mirrors the Aurora adapter's row shape.
type Record = map[string]any

// EventDispatcher publishes domain events.
type EventDispatcher interface {
	SendEvent(ctx context.Context, event eventbridge.Event, busName string, maxRetries int) error
}

// Service defines the restaurant discovery operations.
type Service interface {
	// GetRestaurant retrieves a restaurant by id; nil when it does not exist.
	GetRestaurant(ctx context.Context, id string) (*restaurant.Restaurant, error)

	// ListByCity returns the city's restaurants ordered by name, with a
	// cursor for the next page.
	ListByCity(ctx context.Context, city string, limit int32, cursor ddb.Key) ([]restaurant.Restaurant, ddb.Key, error)

	// CreateRestaurant stores a new restaurant, rejecting duplicate ids.
	CreateRestaurant(ctx context.Context, r restaurant.Restaurant) (*restaurant.Restaurant, error)

	// UpdateRating folds a new review score into the restaurant's average,
	// retrying on concurrent modification.
	UpdateRating(ctx context.Context, id string, reviewRating int) (*restaurant.Restaurant, error)

	// ImportRestaurants bulk-loads a catalog slice.
	ImportRestaurants(ctx context.Context, restaurants []restaurant.Restaurant) (int, error)

	// ArchiveRestaurant atomically marks a restaurant archived and records
	// the archival.
	ArchiveRestaurant(ctx context.Context, id string) error

	// AddReview stores a review and publishes the change.
	AddReview(ctx context.Context, review restaurant.Review) (*restaurant.Review, error)

	// ListReviews returns a restaurant's reviews, newest first.
	ListReviews(ctx context.Context, restaurantID string) ([]restaurant.Review, error)

	// DeleteReview removes a review; missing reviews are not an error.
	DeleteReview(ctx context.Context, reviewID string) error
}

// Config carries the resource names the service operates on.
type Config struct {
	TableName     string
	CityIndexName string
	EventBusName  string
	ReviewsTable  string
}

type service struct {
	store      KeyValueStore
	relational RelationalStore
	dispatcher EventDispatcher
	config     Config
	logger     *zap.Logger
}

// NewService creates the discovery service with its injected adapters.
func NewService(store KeyValueStore, relational RelationalStore, dispatcher EventDispatcher, config Config, logger *zap.Logger) Service {
	return &service{
		store:      store,
		relational: relational,
		dispatcher: dispatcher,
		config:     config,
		logger:     logger,
	}
}

// publishEvent dispatches fire-and-forget: a failed publish is logged and
// never fails the data operation that triggered it.
func (s *service) publishEvent(ctx context.Context, eventType string, detail map[string]any) {
	err := s.dispatcher.SendEvent(ctx, eventbridge.Event{
		Type:   eventType,
		Source: restaurant.SourceDiscovery,
		Detail: detail,
	}, s.config.EventBusName, eventbridge.DefaultMaxRetries)
	if err != nil {
		s.logger.Warn("event publish failed",
			zap.String("detailType", eventType),
			zap.Error(err),
		)
	}
}

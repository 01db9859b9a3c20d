package discovery

import (
	"context"
	"fmt"
	"time"

	"tablescout-backend/internal/domain/restaurant"
	ddb "tablescout-backend/internal/infrastructure/dynamodb"
	appErrors "tablescout-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

func (s *service) GetRestaurant(ctx context.Context, id string) (*restaurant.Restaurant, error) {
	item, err := s.store.Get(ctx, s.config.TableName, restaurantKey(id))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return unmarshalRestaurant(item)
}

func (s *service) ListByCity(ctx context.Context, city string, limit int32, cursor ddb.Key) ([]restaurant.Restaurant, ddb.Key, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(restaurant.CityPartitionKey(city)))
	filter := expression.Name("Archived").Equal(expression.Value(false))
	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building city query expression: %w", err)
	}

	items, lastKey, err := s.store.Query(ctx, ddb.QuerySpec{
		Table:        s.config.TableName,
		Index:        s.config.CityIndexName,
		KeyCondition: *expr.KeyCondition(),
		Filter:       *expr.Filter(),
		Names:        expr.Names(),
		Values:       expr.Values(),
		Limit:        limit,
		StartKey:     cursor,
	})
	if err != nil {
		return nil, nil, err
	}

	restaurants := make([]restaurant.Restaurant, 0, len(items))
	for _, item := range items {
		r, err := unmarshalRestaurant(item)
		if err != nil {
			return nil, nil, err
		}
		restaurants = append(restaurants, *r)
	}
	return restaurants, lastKey, nil
}

func (s *service) CreateRestaurant(ctx context.Context, r restaurant.Restaurant) (*restaurant.Restaurant, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 0

	item, err := marshalRestaurant(r)
	if err != nil {
		return nil, err
	}

	err = s.store.Put(ctx, s.config.TableName, item, &ddb.Condition{
		Expression: "attribute_not_exists(PK)",
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, restaurant.TypeRestaurantCreated, map[string]any{
		restaurant.DetailRestaurantID: r.ID,
		restaurant.DetailCity:         r.City,
	})
	return &r, nil
}

// UpdateRating folds reviewRating into the running average under optimistic
// concurrency: read the current version, write conditionally on it, and on
// a version conflict back off (100ms, 200ms) and retry from the read.
func (s *service) UpdateRating(ctx context.Context, id string, reviewRating int) (*restaurant.Restaurant, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		current, err := s.GetRestaurant(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, nil
		}

		updated := *current
		total := current.Rating*float64(current.ReviewCount) + float64(reviewRating)
		updated.ReviewCount = current.ReviewCount + 1
		updated.Rating = total / float64(updated.ReviewCount)
		updated.UpdatedAt = time.Now().UTC()
		updated.Version = current.Version + 1

		err = s.store.Update(ctx, s.config.TableName, restaurantKey(id),
			"SET Rating = :rating, ReviewCount = :reviewCount, UpdatedAt = :updatedAt, Version = :version",
			ddb.Item{
				":rating":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", updated.Rating)},
				":reviewCount": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", updated.ReviewCount)},
				":updatedAt":   &types.AttributeValueMemberS{Value: updated.UpdatedAt.Format(time.RFC3339Nano)},
				":version":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", updated.Version)},
			},
			&ddb.Condition{
				Expression: "Version = :expectedVersion",
				Values: ddb.Item{
					":expectedVersion": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", current.Version)},
				},
			},
		)
		if err == nil {
			s.publishEvent(ctx, restaurant.TypeRestaurantUpdated, map[string]any{
				restaurant.DetailRestaurantID: id,
				restaurant.DetailRating:       updated.Rating,
			})
			return &updated, nil
		}

		if appErrors.IsConditionFailed(err) && attempt < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<attempt)
			s.logger.Warn("rating update version conflict, retrying",
				zap.String("restaurantId", id),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("rating update for %s exceeded %d attempts: %w", id, maxRetries, lastErr)
}

func (s *service) ImportRestaurants(ctx context.Context, restaurants []restaurant.Restaurant) (int, error) {
	now := time.Now().UTC()
	items := make([]ddb.Item, 0, len(restaurants))
	for _, r := range restaurants {
		if err := r.Validate(); err != nil {
			return 0, err
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		r.UpdatedAt = now

		item, err := marshalRestaurant(r)
		if err != nil {
			return 0, err
		}
		items = append(items, item)
	}

	if err := s.store.BatchWrite(ctx, s.config.TableName, ddb.BatchPut, items); err != nil {
		return 0, err
	}

	s.publishEvent(ctx, restaurant.TypeImportCompleted, map[string]any{
		restaurant.DetailImportCount: len(items),
	})
	return len(items), nil
}

// ArchiveRestaurant flips the archived flag and writes the archival record
// in one transaction, so a restaurant is never archived without its audit
// entry.
func (s *service) ArchiveRestaurant(ctx context.Context, id string) error {
	now := time.Now().UTC()
	err := s.store.TransactWrite(ctx, []ddb.TransactItem{
		{
			Kind:             ddb.TransactUpdate,
			Table:            s.config.TableName,
			Key:              restaurantKey(id),
			UpdateExpression: "SET Archived = :archived, UpdatedAt = :updatedAt",
			Values: ddb.Item{
				":archived":  &types.AttributeValueMemberBOOL{Value: true},
				":updatedAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			},
			Condition: &ddb.Condition{Expression: "attribute_exists(PK)"},
		},
		{
			Kind:  ddb.TransactPut,
			Table: s.config.TableName,
			Item: ddb.Item{
				"PK":         &types.AttributeValueMemberS{Value: restaurant.PartitionKey(id)},
				"SK":         &types.AttributeValueMemberS{Value: fmt.Sprintf("ARCHIVE#%s", now.Format(time.RFC3339Nano))},
				"ArchivedAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			},
		},
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, restaurant.TypeRestaurantArchived, map[string]any{
		restaurant.DetailRestaurantID: id,
	})
	return nil
}

func restaurantKey(id string) ddb.Key {
	return ddb.Key{
		"PK": &types.AttributeValueMemberS{Value: restaurant.PartitionKey(id)},
		"SK": &types.AttributeValueMemberS{Value: restaurant.SortKeyMetadata},
	}
}

// marshalRestaurant builds the stored item: the model's attributes plus the
// table and city-index key attributes.
func marshalRestaurant(r restaurant.Restaurant) (ddb.Item, error) {
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return nil, fmt.Errorf("marshaling restaurant %s: %w", r.ID, err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: restaurant.PartitionKey(r.ID)}
	item["SK"] = &types.AttributeValueMemberS{Value: restaurant.SortKeyMetadata}
	item["GSI1PK"] = &types.AttributeValueMemberS{Value: restaurant.CityPartitionKey(r.City)}
	item["GSI1SK"] = &types.AttributeValueMemberS{Value: r.Name}
	return item, nil
}

func unmarshalRestaurant(item ddb.Item) (*restaurant.Restaurant, error) {
	var r restaurant.Restaurant
	if err := attributevalue.UnmarshalMap(item, &r); err != nil {
		return nil, fmt.Errorf("unmarshaling restaurant item: %w", err)
	}
	return &r, nil
}

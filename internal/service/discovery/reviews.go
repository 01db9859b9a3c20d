package discovery

import (
	"context"
	"fmt"
	"time"

	"tablescout-backend/internal/domain/restaurant"

	"github.com/google/uuid"
)

const defaultReviewsTable = "reviews"

func (s *service) reviewsTable() string {
	if s.config.ReviewsTable != "" {
		return s.config.ReviewsTable
	}
	return defaultReviewsTable
}

func (s *service) AddReview(ctx context.Context, review restaurant.Review) (*restaurant.Review, error) {
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	_, err := s.relational.Insert(ctx, s.reviewsTable(), Record{
		"id":            review.ID,
		"restaurant_id": review.RestaurantID,
		"author":        review.Author,
		"rating":        review.Rating,
		"comment":       review.Comment,
		"created_at":    review.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, restaurant.TypeReviewAdded, map[string]any{
		restaurant.DetailReviewID:     review.ID,
		restaurant.DetailRestaurantID: review.RestaurantID,
		restaurant.DetailRating:       review.Rating,
	})
	return &review, nil
}

func (s *service) ListReviews(ctx context.Context, restaurantID string) ([]restaurant.Review, error) {
	sql := fmt.Sprintf(
		"SELECT id, restaurant_id, author, rating, comment, created_at FROM %s WHERE restaurant_id = :restaurant_id ORDER BY created_at DESC",
		s.reviewsTable(),
	)
	records, err := s.relational.ExecuteQuery(ctx, sql, map[string]any{
		"restaurant_id": restaurantID,
	})
	if err != nil {
		return nil, err
	}

	reviews := make([]restaurant.Review, 0, len(records))
	for _, record := range records {
		review, err := reviewFromRecord(record)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

func (s *service) DeleteReview(ctx context.Context, reviewID string) error {
	affected, err := s.relational.Delete(ctx, s.reviewsTable(), "id", reviewID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}

	s.publishEvent(ctx, restaurant.TypeReviewDeleted, map[string]any{
		restaurant.DetailReviewID: reviewID,
	})
	return nil
}

// reviewFromRecord maps a relational row onto the domain model. Nullable
// columns come back as nil and are left at their zero values.
func reviewFromRecord(record Record) (restaurant.Review, error) {
	review := restaurant.Review{}

	if v, ok := record["id"].(string); ok {
		review.ID = v
	}
	if v, ok := record["restaurant_id"].(string); ok {
		review.RestaurantID = v
	}
	if v, ok := record["author"].(string); ok {
		review.Author = v
	}
	if v, ok := record["rating"].(int64); ok {
		review.Rating = int(v)
	}
	if v, ok := record["comment"].(string); ok {
		review.Comment = v
	}
	if v, ok := record["created_at"].(string); ok {
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			// Aurora returns timestamps without a zone designator.
			parsed, err = time.Parse("2006-01-02 15:04:05", v)
			if err != nil {
				return restaurant.Review{}, fmt.Errorf("parsing review created_at %q: %w", v, err)
			}
		}
		review.CreatedAt = parsed.UTC()
	}
	return review, nil
}

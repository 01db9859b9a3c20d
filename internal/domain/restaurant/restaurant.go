// Package restaurant holds the core domain model for the discovery catalog.
package restaurant

import (
	"fmt"
	"strings"
	"time"
)

// Restaurant is a venue in the discovery catalog. Version supports
// optimistic concurrency on rating updates.
type Restaurant struct {
	ID          string    `json:"id" dynamodbav:"ID"`
	Name        string    `json:"name" dynamodbav:"Name"`
	City        string    `json:"city" dynamodbav:"City"`
	Cuisine     string    `json:"cuisine" dynamodbav:"Cuisine"`
	PriceRange  int       `json:"priceRange" dynamodbav:"PriceRange"`
	Rating      float64   `json:"rating" dynamodbav:"Rating"`
	ReviewCount int       `json:"reviewCount" dynamodbav:"ReviewCount"`
	Archived    bool      `json:"archived" dynamodbav:"Archived"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"UpdatedAt"`
	Version     int       `json:"version" dynamodbav:"Version"`
}

// Review is a diner's review of a restaurant, stored relationally.
type Review struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	Author       string    `json:"author"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate checks the fields callers must supply before a restaurant is
// persisted.
func (r Restaurant) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("restaurant id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("restaurant name is required")
	}
	if strings.TrimSpace(r.City) == "" {
		return fmt.Errorf("restaurant city is required")
	}
	if r.PriceRange < 0 || r.PriceRange > 4 {
		return fmt.Errorf("price range must be between 0 and 4, got %d", r.PriceRange)
	}
	return nil
}

// Validate checks the fields callers must supply before a review is stored.
func (r Review) Validate() error {
	if strings.TrimSpace(r.RestaurantID) == "" {
		return fmt.Errorf("review restaurant id is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("review rating must be between 1 and 5, got %d", r.Rating)
	}
	return nil
}

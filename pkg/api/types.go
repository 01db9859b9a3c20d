// Package api defines the contracts for API requests and responses.
// It decouples the API structure from the internal domain models.
package api

// CreateRestaurantRequest is the expected body for POST /restaurants.
type CreateRestaurantRequest struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	City       string `json:"city" validate:"required"`
	Cuisine    string `json:"cuisine"`
	PriceRange int    `json:"priceRange" validate:"gte=0,lte=4"`
}

// ImportRestaurantsRequest is the expected body for POST /restaurants/import.
type ImportRestaurantsRequest struct {
	Restaurants []CreateRestaurantRequest `json:"restaurants" validate:"required,min=1,dive"`
}

// RateRestaurantRequest is the expected body for POST /restaurants/{id}/rating.
type RateRestaurantRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

// CreateReviewRequest is the expected body for POST /restaurants/{id}/reviews.
type CreateReviewRequest struct {
	Author  string `json:"author" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// RestaurantResponse is the API representation of a restaurant.
type RestaurantResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Cuisine     string  `json:"cuisine,omitempty"`
	PriceRange  int     `json:"priceRange"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Archived    bool    `json:"archived,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// RestaurantListResponse is a page of restaurants with a pagination cursor.
type RestaurantListResponse struct {
	Restaurants []RestaurantResponse `json:"restaurants"`
	NextCursor  string               `json:"nextCursor,omitempty"`
}

// ReviewResponse is the API representation of a review.
type ReviewResponse struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurantId"`
	Author       string `json:"author"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// ReviewListResponse wraps a restaurant's reviews.
type ReviewListResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
}

// ImportResponse reports how many restaurants a bulk import stored.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ErrorResponse is a standardized error message for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Package rest exposes the discovery service over HTTP.
package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tablescout-backend/internal/domain/restaurant"
	"tablescout-backend/internal/service/discovery"
	"tablescout-backend/pkg/api"
	appErrors "tablescout-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const defaultPageSize = 20

// Handler serves the restaurant discovery API.
type Handler struct {
	service  discovery.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates the HTTP handler for the discovery service.
func NewHandler(service discovery.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes mounts the API routes onto r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/restaurants", func(r chi.Router) {
		r.Get("/", h.listByCity)
		r.Post("/", h.createRestaurant)
		r.Post("/import", h.importRestaurants)
		r.Route("/{restaurantId}", func(r chi.Router) {
			r.Get("/", h.getRestaurant)
			r.Delete("/", h.archiveRestaurant)
			r.Post("/rating", h.rateRestaurant)
			r.Get("/reviews", h.listReviews)
			r.Post("/reviews", h.createReview)
		})
	})
	r.Delete("/reviews/{reviewId}", h.deleteReview)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "restaurantId")

	found, err := h.service.GetRestaurant(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if found == nil {
		api.Error(w, http.StatusNotFound, "restaurant not found")
		return
	}

	api.Success(w, http.StatusOK, toRestaurantResponse(*found))
}

func (h *Handler) listByCity(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		api.Error(w, http.StatusBadRequest, "city query parameter is required")
		return
	}

	limit := int32(defaultPageSize)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 || parsed > 100 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = int32(parsed)
	}

	cursor, err := decodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	restaurants, nextKey, err := h.service.ListByCity(r.Context(), city, limit, cursor)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response := api.RestaurantListResponse{
		Restaurants: make([]api.RestaurantResponse, 0, len(restaurants)),
	}
	for _, found := range restaurants {
		response.Restaurants = append(response.Restaurants, toRestaurantResponse(found))
	}
	if nextKey != nil {
		encoded, err := encodeCursor(nextKey)
		if err != nil {
			h.serviceError(w, err)
			return
		}
		response.NextCursor = encoded
	}

	api.Success(w, http.StatusOK, response)
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var req api.CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateRestaurant(r.Context(), restaurant.Restaurant{
		ID:         req.ID,
		Name:       req.Name,
		City:       req.City,
		Cuisine:    req.Cuisine,
		PriceRange: req.PriceRange,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, toRestaurantResponse(*created))
}

func (h *Handler) importRestaurants(w http.ResponseWriter, r *http.Request) {
	var req api.ImportRestaurantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	batch := make([]restaurant.Restaurant, 0, len(req.Restaurants))
	for _, item := range req.Restaurants {
		batch = append(batch, restaurant.Restaurant{
			ID:         item.ID,
			Name:       item.Name,
			City:       item.City,
			Cuisine:    item.Cuisine,
			PriceRange: item.PriceRange,
		})
	}

	count, err := h.service.ImportRestaurants(r.Context(), batch)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	api.Success(w, http.StatusOK, api.ImportResponse{Imported: count})
}

func (h *Handler) rateRestaurant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "restaurantId")

	var req api.RateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateRating(r.Context(), id, req.Rating)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if updated == nil {
		api.Error(w, http.StatusNotFound, "restaurant not found")
		return
	}

	api.Success(w, http.StatusOK, toRestaurantResponse(*updated))
}

func (h *Handler) archiveRestaurant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "restaurantId")

	if err := h.service.ArchiveRestaurant(r.Context(), id); err != nil {
		if appErrors.IsConditionFailed(err) {
			api.Error(w, http.StatusNotFound, "restaurant not found")
			return
		}
		h.serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "restaurantId")

	var req api.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.service.AddReview(r.Context(), restaurant.Review{
		RestaurantID: id,
		Author:       req.Author,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, toReviewResponse(*review))
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "restaurantId")

	reviews, err := h.service.ListReviews(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response := api.ReviewListResponse{Reviews: make([]api.ReviewResponse, 0, len(reviews))}
	for _, review := range reviews {
		response.Reviews = append(response.Reviews, toReviewResponse(review))
	}
	api.Success(w, http.StatusOK, response)
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reviewId")

	if err := h.service.DeleteReview(r.Context(), id); err != nil {
		h.serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// serviceError maps adapter failures onto HTTP statuses: condition failures
// are concurrent-modification conflicts, everything else is internal.
func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case appErrors.IsConditionFailed(err):
		api.Error(w, http.StatusConflict, "resource was modified concurrently, retry the request")
	case appErrors.IsKeyValueStore(err), appErrors.IsRelationalStore(err), appErrors.IsEventDispatch(err):
		h.logger.Error("storage operation failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal server error")
	default:
		h.logger.Error("request failed", zap.Error(err))
		api.Error(w, http.StatusBadRequest, err.Error())
	}
}

func toRestaurantResponse(r restaurant.Restaurant) api.RestaurantResponse {
	return api.RestaurantResponse{
		ID:          r.ID,
		Name:        r.Name,
		City:        r.City,
		Cuisine:     r.Cuisine,
		PriceRange:  r.PriceRange,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Archived:    r.Archived,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}

func toReviewResponse(r restaurant.Review) api.ReviewResponse {
	return api.ReviewResponse{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		Author:       r.Author,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

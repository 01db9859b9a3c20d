package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccess_WritesJSONPayload(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, http.StatusCreated, RestaurantResponse{ID: "r-1", Name: "Taberna Sal"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"r-1","name":"Taberna Sal","city":"","priceRange":0,"rating":0,"reviewCount":0,"createdAt":"","updatedAt":""}`, rec.Body.String())
}

func TestSuccess_NilPayloadHasEmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestError_WrapsMessage(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, http.StatusConflict, "restaurant already exists")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"restaurant already exists"}`, rec.Body.String())
}

// Package handlers implements the HTTP API handlers. They are thin I/O
// wrappers: parameter parsing and response serialization only, with the
// interesting behavior delegated to the assistant and catalog.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/poochpalace/adoptions/internal/llm"
	"github.com/poochpalace/adoptions/pkg/models"
	"github.com/rs/zerolog/log"
)

// Inquirer answers a user's question.
type Inquirer interface {
	Answer(ctx context.Context, userKey, question string) (string, error)
}

// Handlers holds the API handler dependencies.
type Handlers struct {
	Assistant Inquirer
	Catalog   DogReader
}

// DogReader is the catalog read interface the API needs.
type DogReader interface {
	List(ctx context.Context) ([]models.Dog, error)
	Get(ctx context.Context, id int) (*models.Dog, error)
}

// New creates a Handlers instance with all dependencies.
func New(assistant Inquirer, catalog DogReader) *Handlers {
	return &Handlers{Assistant: assistant, Catalog: catalog}
}

// Inquire handles GET /{user}/inquire?question=...
// The answer is returned as plain text.
func (h *Handlers) Inquire(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	question := r.URL.Query().Get("question")
	if question == "" {
		respondError(w, http.StatusBadRequest, "question query parameter is required")
		return
	}

	answer, err := h.Assistant.Answer(r.Context(), user, question)
	if err != nil {
		log.Error().Err(err).Str("user", user).Msg("Inquiry failed")
		if errors.Is(err, llm.ErrBackendUnavailable) {
			respondError(w, http.StatusBadGateway, "assistant backend unavailable")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(answer))
}

// ListDogs handles GET /dogs
func (h *Handlers) ListDogs(w http.ResponseWriter, r *http.Request) {
	dogs, err := h.Catalog.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Listing dogs failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, dogs)
}

// GetDog handles GET /dogs/{dogId}
func (h *Handlers) GetDog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "dogId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "dogId must be an integer")
		return
	}

	dog, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, dog)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

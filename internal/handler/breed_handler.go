package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/furcode/internal/model"
)

// BreedServiceInterface は犬種ハンドラーが必要とするサービスインターフェース。
type BreedServiceInterface interface {
	ByID(ctx context.Context, id string) (*model.DogBreed, error)
	ByName(ctx context.Context, name string) (*model.DogBreed, error)
	AllNames(ctx context.Context) ([]string, error)
}

// BreedHandler は外部犬種APIの参照ハンドラー。
type BreedHandler struct {
	service BreedServiceInterface
}

// NewBreedHandler はBreedHandlerを生成する。
func NewBreedHandler(service BreedServiceInterface) *BreedHandler {
	return &BreedHandler{service: service}
}

// Routes は /api/v1/breed 以下のルートを登録する。
func (h *BreedHandler) Routes(r chi.Router) {
	r.Get("/all", h.AllNames)
	r.Get("/name/{name}", h.ByName)
	r.Get("/{id}", h.ByID)
}

// AllNames は全犬種名を返す。
// GET /api/v1/breed/all
func (h *BreedHandler) AllNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.AllNames(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// ByID はIDで犬種を返す。
// GET /api/v1/breed/{id}
func (h *BreedHandler) ByID(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBreedResponse(b))
}

// ByName は名前で犬種を返す。
// GET /api/v1/breed/name/{name}
func (h *BreedHandler) ByName(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.ByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBreedResponse(b))
}

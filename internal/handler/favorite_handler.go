package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/furcode/internal/model"
)

// FavoriteServiceInterface はお気に入りハンドラーが必要とするサービスインターフェース。
type FavoriteServiceInterface interface {
	Add(ctx context.Context, performedBy string, personID, petID int64) (*model.Favorite, error)
	Get(ctx context.Context, personID, petID int64) (*model.Favorite, error)
	ListByPerson(ctx context.Context, personID int64) ([]*model.Favorite, error)
	Remove(ctx context.Context, performedBy string, personID, petID int64) error
}

// FavoriteHandler はお気に入りのHTTPハンドラー。
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler はFavoriteHandlerを生成する。
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// Routes は /api/v1/favorite 以下のルートを登録する。
func (h *FavoriteHandler) Routes(r chi.Router) {
	r.Post("/add", h.Add)
	r.Get("/person/{id}", h.ListByPerson)
	r.Delete("/delete/{personId}/{petId}", h.Remove)
	r.Get("/{personId}/{petId}", h.Get)
}

// Add はお気に入りを登録する。
// POST /api/v1/favorite/add
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	fav, err := h.service.Add(r.Context(), performedBy(r), req.PersonID, req.PetID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFavoriteResponse(fav))
}

// Get はお気に入りを返す。
// GET /api/v1/favorite/{personId}/{petId}
func (h *FavoriteHandler) Get(w http.ResponseWriter, r *http.Request) {
	personID, petID, err := pairParams(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	fav, err := h.service.Get(r.Context(), personID, petID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFavoriteResponse(fav))
}

// ListByPerson は人物のお気に入り一覧を返す。
// GET /api/v1/favorite/person/{id}
func (h *FavoriteHandler) ListByPerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	list, err := h.service.ListByPerson(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	out := make([]favoriteResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFavoriteResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// Remove はお気に入りを削除する。
// DELETE /api/v1/favorite/delete/{personId}/{petId}
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	personID, petID, err := pairParams(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.service.Remove(r.Context(), performedBy(r), personID, petID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pairParams(r *http.Request) (int64, int64, error) {
	personID, err := idParam(r, "personId")
	if err != nil {
		return 0, 0, err
	}
	petID, err := idParam(r, "petId")
	if err != nil {
		return 0, 0, err
	}
	return personID, petID, nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/furcode/internal/adoption"
	"github.com/hitoshi/furcode/internal/model"
)

// AdoptionServiceInterface は譲渡申請ハンドラーが必要とするサービスインターフェース。
type AdoptionServiceInterface interface {
	Create(ctx context.Context, performedBy string, in adoption.CreateInput) (*model.AdoptionRequest, error)
	UpdateState(ctx context.Context, performedBy string, id int64, next model.AdoptionState) (*model.AdoptionRequest, error)
	Get(ctx context.Context, id int64) (*model.AdoptionRequest, error)
	List(ctx context.Context) ([]*model.AdoptionRequest, error)
	Delete(ctx context.Context, performedBy string, id int64) error
}

// AdoptionHandler は譲渡申請のHTTPハンドラー。
type AdoptionHandler struct {
	service AdoptionServiceInterface
}

// NewAdoptionHandler はAdoptionHandlerを生成する。
func NewAdoptionHandler(service AdoptionServiceInterface) *AdoptionHandler {
	return &AdoptionHandler{service: service}
}

// Routes は /api/v1/adoption-request 以下のルートを登録する。
func (h *AdoptionHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/all", h.List)
	r.Patch("/update/{id}", h.UpdateState)
	r.Delete("/delete/{id}", h.Delete)
	r.Get("/{id}", h.Get)
}

// Create は譲渡申請を作成する。
// POST /api/v1/adoption-request
func (h *AdoptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdoptionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), performedBy(r), adoption.CreateInput{
		ShelterID: req.ShelterID,
		PersonID:  req.PersonID,
		PetID:     req.PetID,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdoptionResponse(created))
}

// UpdateState は譲渡申請の状態を変更する。
// PATCH /api/v1/adoption-request/update/{id}
func (h *AdoptionHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	var req updateAdoptionStateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	updated, err := h.service.UpdateState(r.Context(), performedBy(r), id, model.AdoptionState(req.State))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdoptionResponse(updated))
}

// List は全譲渡申請を返す。
// GET /api/v1/adoption-request/all
func (h *AdoptionHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	out := make([]adoptionResponse, 0, len(list))
	for _, req := range list {
		out = append(out, toAdoptionResponse(req))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get は譲渡申請を返す。
// GET /api/v1/adoption-request/{id}
func (h *AdoptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdoptionResponse(req))
}

// Delete は譲渡申請を論理削除する。
// DELETE /api/v1/adoption-request/delete/{id}
func (h *AdoptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), performedBy(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/furcode/internal/model"
)

// ShelterServiceInterface はシェルターハンドラーが必要とするサービスインターフェース。
type ShelterServiceInterface interface {
	Create(ctx context.Context, performedBy string, sh *model.Shelter) (*model.Shelter, error)
	Get(ctx context.Context, id int64) (*model.Shelter, error)
	List(ctx context.Context) ([]*model.Shelter, error)
	Update(ctx context.Context, performedBy string, id int64, sh *model.Shelter) (*model.Shelter, error)
	Delete(ctx context.Context, performedBy string, id int64) error
	ListDonations(ctx context.Context, id int64) ([]*model.Donation, error)
}

// ShelterHandler はシェルター管理のHTTPハンドラー。
type ShelterHandler struct {
	service ShelterServiceInterface
}

// NewShelterHandler はShelterHandlerを生成する。
func NewShelterHandler(service ShelterServiceInterface) *ShelterHandler {
	return &ShelterHandler{service: service}
}

// Routes は /api/v1/shelter 以下のルートを登録する。
func (h *ShelterHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/all", h.List)
	r.Put("/update/{id}", h.Update)
	r.Delete("/delete/{id}", h.Delete)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/get-all-donations", h.ListDonations)
}

// Create はシェルターを登録する。
// POST /api/v1/shelter
func (h *ShelterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shelterRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	sh, err := h.service.Create(r.Context(), performedBy(r), req.toModel())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShelterResponse(sh))
}

// List は全シェルターを返す。
// GET /api/v1/shelter/all
func (h *ShelterHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShelterResponses(list))
}

// Get はシェルターを返す。
// GET /api/v1/shelter/{id}
func (h *ShelterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	sh, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShelterResponse(sh))
}

// Update はシェルターを上書き更新する。
// PUT /api/v1/shelter/update/{id}
func (h *ShelterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	var req shelterRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	sh, err := h.service.Update(r.Context(), performedBy(r), id, req.toModel())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShelterResponse(sh))
}

// Delete はシェルターを論理削除する。
// DELETE /api/v1/shelter/delete/{id}
func (h *ShelterHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// ListDonations はシェルターへの寄付一覧を返す。
// GET /api/v1/shelter/{id}/get-all-donations
func (h *ShelterHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	list, err := h.service.ListDonations(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponses(list))
}

package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/furcode/internal/donation"
	"github.com/hitoshi/furcode/internal/model"
)

// DonationServiceInterface は寄付ハンドラーが必要とするサービスインターフェース。
type DonationServiceInterface interface {
	Create(ctx context.Context, performedBy string, in donation.CreateInput) (*model.Donation, error)
	Get(ctx context.Context, id int64) (*model.Donation, error)
}

// DonationHandler は寄付のHTTPハンドラー。
type DonationHandler struct {
	service DonationServiceInterface
}

// NewDonationHandler はDonationHandlerを生成する。
func NewDonationHandler(service DonationServiceInterface) *DonationHandler {
	return &DonationHandler{service: service}
}

// Routes は /api/v1/donation 以下のルートを登録する。
func (h *DonationHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
}

// Create は寄付を記録する。
// POST /api/v1/donation
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	in := donation.CreateInput{
		PersonID:  req.PersonID,
		ShelterID: req.ShelterID,
		Total:     req.Total,
	}
	if req.DonationDate != "" {
		in.DonationDate = parseDate(req.DonationDate)
	}
	d, err := h.service.Create(r.Context(), performedBy(r), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDonationResponse(d))
}

// Get は寄付を返す。
// GET /api/v1/donation/{id}
func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponse(d))
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/pet"
)

// PetServiceInterface はペットハンドラーが必要とするサービスインターフェース。
type PetServiceInterface interface {
	Get(ctx context.Context, id int64) (*model.Pet, error)
	List(ctx context.Context) ([]*model.Pet, error)
	ListDeleted(ctx context.Context) ([]*model.Pet, error)
	GetDeleted(ctx context.Context, id int64) (*model.Pet, error)
	Create(ctx context.Context, performedBy string, p *model.Pet) (*model.Pet, error)
	Update(ctx context.Context, performedBy string, id int64, in pet.UpdateInput) (*model.Pet, error)
	Delete(ctx context.Context, performedBy string, id int64) error
	Restore(ctx context.Context, performedBy string, id int64) error
	CreateRecord(ctx context.Context, performedBy string, petID int64, in pet.RecordInput) (*model.PetRecord, error)
	ListRecords(ctx context.Context, petID int64) ([]*model.PetRecord, error)
	ListDeletedPetRecords(ctx context.Context, petID int64) ([]*model.PetRecord, error)
}

// PetTypeServiceInterface はペット種別の作成インターフェース。
type PetTypeServiceInterface interface {
	Create(ctx context.Context, performedBy string, species model.Species, breedName *string) (*model.PetType, error)
}

// PetHandler はペット管理のHTTPハンドラー。
type PetHandler struct {
	service PetServiceInterface
	types   PetTypeServiceInterface
}

// NewPetHandler はPetHandlerを生成する。
func NewPetHandler(service PetServiceInterface, types PetTypeServiceInterface) *PetHandler {
	return &PetHandler{service: service, types: types}
}

// Routes は /api/v1/pet 以下のルートを登録する。
func (h *PetHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/all", h.List)
	r.Get("/deleted", h.ListDeleted)
	r.Get("/deleted/{id}", h.GetDeleted)
	r.Patch("/update/{id}", h.Update)
	r.Delete("/delete/{id}", h.Delete)
	r.Post("/restore/{id}", h.Restore)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/create-record", h.CreateRecord)
		r.Get("/record", h.ListRecords)
		r.Get("/records/deleted", h.ListDeletedPetRecords)
	})
}

// Create はペットを登録する。
// POST /api/v1/pet
func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPetRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.Create(r.Context(), performedBy(r), req.toModel())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPetResponse(p))
}

// List は全ペットを返す。
// GET /api/v1/pet/all
func (h *PetHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPetResponses(list))
}

// Get はペットを返す。
// GET /api/v1/pet/{id}
func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id int64) (any, error) {
		p, err := h.service.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toPetResponse(p), nil
	})
}

// ListDeleted は論理削除済みペットを返す。
// GET /api/v1/pet/deleted
func (h *PetHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDeleted(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPetResponses(list))
}

// GetDeleted は論理削除済みペットを返す。
// GET /api/v1/pet/deleted/{id}
func (h *PetHandler) GetDeleted(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id int64) (any, error) {
		p, err := h.service.GetDeleted(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toPetResponse(p), nil
	})
}

// Update はペットを部分更新する。
// PATCH /api/v1/pet/update/{id}
func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	var req updatePetRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	in := pet.UpdateInput{
		Name:         req.Name,
		PetTypeID:    req.PetTypeID,
		ShelterID:    req.ShelterID,
		IsAdopted:    req.IsAdopted,
		IsVaccinated: req.IsVaccinated,
		Weight:       req.Weight,
		Color:        req.Color,
		DateOfBirth:  parseDatePtr(req.DateOfBirth),
		Observations: req.Observations,
	}
	if req.Size != nil {
		size := model.PetSize(*req.Size)
		in.Size = &size
	}
	p, err := h.service.Update(r.Context(), performedBy(r), id, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPetResponse(p))
}

// Delete はペットを論理削除する。
// DELETE /api/v1/pet/delete/{id}
func (h *PetHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Restore は論理削除済みペットを復元する。
// POST /api/v1/pet/restore/{id}
func (h *PetHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.service.Restore(r.Context(), performedBy(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateRecord はペット記録を作成する。
// POST /api/v1/pet/{id}/create-record
func (h *PetHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	var req createRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	var date time.Time
	if req.Date != "" {
		date = parseDate(req.Date)
	}
	rec, err := h.service.CreateRecord(r.Context(), performedBy(r), id, pet.RecordInput{
		IsVaccinated: req.IsVaccinated,
		Intervention: req.Intervention,
		Observation:  req.Observation,
		Date:         date,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

// ListRecords はペットの記録一覧を返す。
// GET /api/v1/pet/{id}/record
func (h *PetHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id int64) (any, error) {
		list, err := h.service.ListRecords(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toRecordResponses(list), nil
	})
}

// ListDeletedPetRecords は論理削除済みペットの記録一覧を返す。
// GET /api/v1/pet/{id}/records/deleted
func (h *PetHandler) ListDeletedPetRecords(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id int64) (any, error) {
		list, err := h.service.ListDeletedPetRecords(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toRecordResponses(list), nil
	})
}

// CreateType はペット種別を作成する。
// POST /api/v1/pet-type
func (h *PetHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req createPetTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	pt, err := h.types.Create(r.Context(), performedBy(r), model.Species(req.Species), req.BreedName)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, petTypeResponse{ID: pt.ID, Species: string(pt.Species), BreedID: pt.BreedID})
}

// withID は{id}を取り出してfnを呼び、結果を200で返す。
func (h *PetHandler) withID(w http.ResponseWriter, r *http.Request, fn func(id int64) (any, error)) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	v, err := fn(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

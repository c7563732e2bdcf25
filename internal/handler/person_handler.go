package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/person"
)

// PersonServiceInterface は人物ハンドラーが必要とするサービスインターフェース。
type PersonServiceInterface interface {
	Register(ctx context.Context, in person.RegisterInput) (*model.Person, error)
	Get(ctx context.Context, id int64) (*model.Person, error)
	List(ctx context.Context) ([]*model.Person, error)
	Update(ctx context.Context, performedBy string, id int64, in person.UpdateInput) (*model.Person, error)
	SetRole(ctx context.Context, performedBy string, id int64, role model.Role) (*model.Person, error)
	Delete(ctx context.Context, performedBy string, id int64) error
	CreateShelter(ctx context.Context, performedBy string, personID int64, sh *model.Shelter) (*model.Shelter, error)
	AddToShelter(ctx context.Context, performedBy string, personID, shelterID int64) (*model.Person, error)
	ListDonations(ctx context.Context, personID int64) ([]*model.Donation, error)
	ListInShelter(ctx context.Context, shelterID int64) ([]*model.Person, error)
}

// PersonHandler は人物管理のHTTPハンドラー。
type PersonHandler struct {
	service PersonServiceInterface
}

// NewPersonHandler はPersonHandlerを生成する。
func NewPersonHandler(service PersonServiceInterface) *PersonHandler {
	return &PersonHandler{service: service}
}

// Routes は /api/v1/person 以下のルートを登録する。
func (h *PersonHandler) Routes(r chi.Router) {
	r.Post("/", h.Register)
	r.Get("/all", h.List)
	r.Get("/get-all-persons-in-shelter/{id}", h.ListInShelter)
	r.Patch("/update/{id}", h.Update)
	r.Patch("/set-person-role/{id}", h.SetRole)
	r.Delete("/delete/{id}", h.Delete)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/create-shelter", h.CreateShelter)
		r.Post("/add-person-to-shelter", h.AddToShelter)
		r.Get("/get-all-donations", h.ListDonations)
	})
}

// Register は人物を登録する。
// POST /api/v1/person
func (h *PersonHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerPersonRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.Register(r.Context(), person.RegisterInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NIF:        req.NIF,
		Email:      req.Email,
		Password:   req.Password,
		Address1:   req.Address1,
		Address2:   req.Address2,
		PostalCode: req.PostalCode,
		CellPhone:  req.CellPhone,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonResponse(p))
}

// List は全人物を返す。
// GET /api/v1/person/all
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponses(list))
}

// Get は人物を返す。
// GET /api/v1/person/{id}
func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// Update はプロフィールを部分更新する。
// PATCH /api/v1/person/update/{id}
func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	var req updatePersonRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.Update(r.Context(), performedBy(r), id, person.UpdateInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NIF:        req.NIF,
		Address1:   req.Address1,
		Address2:   req.Address2,
		PostalCode: req.PostalCode,
		CellPhone:  req.CellPhone,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// SetRole はロールを変更する。
// PATCH /api/v1/person/set-person-role/{id}
func (h *PersonHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.SetRole(r.Context(), performedBy(r), id, model.Role(req.Role))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// Delete は人物を論理削除する。
// DELETE /api/v1/person/delete/{id}
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// CreateShelter はシェルターを作成して人物を所属させる。
// POST /api/v1/person/{id}/create-shelter
func (h *PersonHandler) CreateShelter(w http.ResponseWriter, r *http.Request) {
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
	sh, err := h.service.CreateShelter(r.Context(), performedBy(r), id, req.toModel())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShelterResponse(sh))
}

// AddToShelter は人物を既存シェルターに所属させる。
// POST /api/v1/person/{id}/add-person-to-shelter
func (h *PersonHandler) AddToShelter(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	var req addToShelterRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.AddToShelter(r.Context(), performedBy(r), id, req.ShelterID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

// ListDonations は人物の寄付一覧を返す。
// GET /api/v1/person/{id}/get-all-donations
func (h *PersonHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
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

// ListInShelter はシェルター所属の人物一覧を返す。
// GET /api/v1/person/get-all-persons-in-shelter/{id}
func (h *PersonHandler) ListInShelter(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	list, err := h.service.ListInShelter(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponses(list))
}

package handler

import (
	"time"

	"github.com/hitoshi/furcode/internal/model"
)

// dateLayout は日付項目（生年月日、記録日）のフォーマット。
const dateLayout = "2006-01-02"

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseDate(*s)
	return &t
}

// --- 認証 ---

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// --- 人物 ---

type registerPersonRequest struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	NIF        *int64 `json:"nif" validate:"omitempty,gt=0"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Address1   string `json:"address1" validate:"required,max=255"`
	Address2   string `json:"address2" validate:"max=255"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	CellPhone  *int64 `json:"cellPhone" validate:"omitempty,gt=0"`
}

type updatePersonRequest struct {
	FirstName  *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	NIF        *int64  `json:"nif" validate:"omitempty,gt=0"`
	Address1   *string `json:"address1" validate:"omitempty,min=1,max=255"`
	Address2   *string `json:"address2" validate:"omitempty,max=255"`
	PostalCode *string `json:"postalCode" validate:"omitempty,min=1,max=20"`
	CellPhone  *int64  `json:"cellPhone" validate:"omitempty,gt=0"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER MANAGER ADMIN"`
}

type addToShelterRequest struct {
	ShelterID int64 `json:"shelterId" validate:"required,gt=0"`
}

type personResponse struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	NIF        *int64    `json:"nif,omitempty"`
	Email      string    `json:"email"`
	Address1   string    `json:"address1"`
	Address2   string    `json:"address2,omitempty"`
	PostalCode string    `json:"postalCode"`
	CellPhone  *int64    `json:"cellPhone,omitempty"`
	Role       string    `json:"role"`
	ShelterID  *int64    `json:"shelterId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toPersonResponse(p *model.Person) personResponse {
	return personResponse{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		NIF:        p.NIF,
		Email:      p.Email,
		Address1:   p.Address1,
		Address2:   p.Address2,
		PostalCode: p.PostalCode,
		CellPhone:  p.CellPhone,
		Role:       string(p.Role),
		ShelterID:  p.ShelterID,
		CreatedAt:  p.CreatedAt,
	}
}

func toPersonResponses(list []*model.Person) []personResponse {
	out := make([]personResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPersonResponse(p))
	}
	return out
}

// --- シェルター ---

type shelterRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	VAT          string `json:"vat" validate:"required,max=50"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Address1     string `json:"address1" validate:"required,max=255"`
	Address2     string `json:"address2" validate:"max=255"`
	PostalCode   string `json:"postalCode" validate:"required,max=20"`
	Phone        string `json:"phone" validate:"required,max=30"`
	Size         string `json:"size" validate:"required,max=30"`
	IsActive     bool   `json:"isActive"`
	CreationDate string `json:"creationDate" validate:"omitempty,datetime=2006-01-02"`
	Description  string `json:"description" validate:"max=2000"`
	FacebookURL  string `json:"facebookUrl" validate:"omitempty,url"`
	InstagramURL string `json:"instagramUrl" validate:"omitempty,url"`
	WebPageURL   string `json:"webPageUrl" validate:"omitempty,url"`
}

func (req *shelterRequest) toModel() *model.Shelter {
	sh := &model.Shelter{
		Name:         req.Name,
		VAT:          req.VAT,
		Email:        req.Email,
		Address1:     req.Address1,
		Address2:     req.Address2,
		PostalCode:   req.PostalCode,
		Phone:        req.Phone,
		Size:         req.Size,
		IsActive:     req.IsActive,
		Description:  req.Description,
		FacebookURL:  req.FacebookURL,
		InstagramURL: req.InstagramURL,
		WebPageURL:   req.WebPageURL,
	}
	if req.CreationDate != "" {
		sh.CreationDate = parseDate(req.CreationDate)
	}
	return sh
}

type shelterResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	VAT          string    `json:"vat"`
	Email        string    `json:"email"`
	Address1     string    `json:"address1"`
	Address2     string    `json:"address2,omitempty"`
	PostalCode   string    `json:"postalCode"`
	Phone        string    `json:"phone"`
	Size         string    `json:"size"`
	IsActive     bool      `json:"isActive"`
	CreationDate time.Time `json:"creationDate"`
	Description  string    `json:"description,omitempty"`
	FacebookURL  string    `json:"facebookUrl,omitempty"`
	InstagramURL string    `json:"instagramUrl,omitempty"`
	WebPageURL   string    `json:"webPageUrl,omitempty"`
}

func toShelterResponse(sh *model.Shelter) shelterResponse {
	return shelterResponse{
		ID:           sh.ID,
		Name:         sh.Name,
		VAT:          sh.VAT,
		Email:        sh.Email,
		Address1:     sh.Address1,
		Address2:     sh.Address2,
		PostalCode:   sh.PostalCode,
		Phone:        sh.Phone,
		Size:         sh.Size,
		IsActive:     sh.IsActive,
		CreationDate: sh.CreationDate,
		Description:  sh.Description,
		FacebookURL:  sh.FacebookURL,
		InstagramURL: sh.InstagramURL,
		WebPageURL:   sh.WebPageURL,
	}
}

func toShelterResponses(list []*model.Shelter) []shelterResponse {
	out := make([]shelterResponse, 0, len(list))
	for _, sh := range list {
		out = append(out, toShelterResponse(sh))
	}
	return out
}

// --- ペット ---

type createPetRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	PetTypeID    int64   `json:"petTypeId" validate:"required,gt=0"`
	ShelterID    int64   `json:"shelterId" validate:"required,gt=0"`
	IsAdopted    bool    `json:"isAdopted"`
	IsVaccinated bool    `json:"isVaccinated"`
	Size         string  `json:"size" validate:"required,oneof=SMALL MEDIUM LARGE"`
	Weight       float64 `json:"weight" validate:"required,gte=0.01,lte=999.99"`
	Color        string  `json:"color" validate:"required,max=50"`
	DateOfBirth  string  `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Observations string  `json:"observations" validate:"max=2000"`
}

func (req *createPetRequest) toModel() *model.Pet {
	return &model.Pet{
		Name:         req.Name,
		PetTypeID:    req.PetTypeID,
		ShelterID:    req.ShelterID,
		IsAdopted:    req.IsAdopted,
		IsVaccinated: req.IsVaccinated,
		Size:         model.PetSize(req.Size),
		Weight:       req.Weight,
		Color:        req.Color,
		DateOfBirth:  parseDate(req.DateOfBirth),
		Observations: req.Observations,
	}
}

type updatePetRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=100"`
	PetTypeID    *int64   `json:"petTypeId" validate:"omitempty,gt=0"`
	ShelterID    *int64   `json:"shelterId" validate:"omitempty,gt=0"`
	IsAdopted    *bool    `json:"isAdopted"`
	IsVaccinated *bool    `json:"isVaccinated"`
	Size         *string  `json:"size" validate:"omitempty,oneof=SMALL MEDIUM LARGE"`
	Weight       *float64 `json:"weight" validate:"omitempty,gte=0.01,lte=999.99"`
	Color        *string  `json:"color" validate:"omitempty,min=1,max=50"`
	DateOfBirth  *string  `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Observations *string  `json:"observations" validate:"omitempty,max=2000"`
}

type petResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	PetTypeID    int64      `json:"petTypeId"`
	ShelterID    int64      `json:"shelterId"`
	IsAdopted    bool       `json:"isAdopted"`
	IsVaccinated bool       `json:"isVaccinated"`
	Size         string     `json:"size"`
	Weight       float64    `json:"weight"`
	Color        string     `json:"color"`
	DateOfBirth  string     `json:"dateOfBirth"`
	Observations string     `json:"observations"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

func toPetResponse(p *model.Pet) petResponse {
	return petResponse{
		ID:           p.ID,
		Name:         p.Name,
		PetTypeID:    p.PetTypeID,
		ShelterID:    p.ShelterID,
		IsAdopted:    p.IsAdopted,
		IsVaccinated: p.IsVaccinated,
		Size:         string(p.Size),
		Weight:       p.Weight,
		Color:        p.Color,
		DateOfBirth:  p.DateOfBirth.Format(dateLayout),
		Observations: p.Observations,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		DeletedAt:    p.DeletedAt,
	}
}

func toPetResponses(list []*model.Pet) []petResponse {
	out := make([]petResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPetResponse(p))
	}
	return out
}

type createRecordRequest struct {
	IsVaccinated bool   `json:"isVaccinated"`
	Intervention string `json:"intervention" validate:"required,max=255"`
	Observation  string `json:"observation" validate:"max=2000"`
	Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type recordResponse struct {
	ID           int64     `json:"id"`
	PetID        int64     `json:"petId"`
	IsVaccinated bool      `json:"isVaccinated"`
	Intervention string    `json:"intervention"`
	Observation  string    `json:"observation"`
	Date         string    `json:"date"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toRecordResponse(rec *model.PetRecord) recordResponse {
	return recordResponse{
		ID:           rec.ID,
		PetID:        rec.PetID,
		IsVaccinated: rec.IsVaccinated,
		Intervention: rec.Intervention,
		Observation:  rec.Observation,
		Date:         rec.Date.Format(dateLayout),
		CreatedBy:    rec.CreatedBy,
		CreatedAt:    rec.CreatedAt,
	}
}

func toRecordResponses(list []*model.PetRecord) []recordResponse {
	out := make([]recordResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, toRecordResponse(rec))
	}
	return out
}

type createPetTypeRequest struct {
	Species   string  `json:"species" validate:"required,oneof=DOG CAT OTHER"`
	BreedName *string `json:"breedName" validate:"omitempty,min=1,max=100"`
}

type petTypeResponse struct {
	ID      int64  `json:"id"`
	Species string `json:"species"`
	BreedID *int64 `json:"breedId,omitempty"`
}

type breedResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	LifeMin        int    `json:"lifeMin"`
	LifeMax        int    `json:"lifeMax"`
	Hypoallergenic bool   `json:"hypoallergenic"`
}

func toBreedResponse(b *model.DogBreed) breedResponse {
	return breedResponse{
		ID:             b.ID,
		Name:           b.Name,
		Description:    b.Description,
		LifeMin:        b.LifeMin,
		LifeMax:        b.LifeMax,
		Hypoallergenic: b.Hypoallergenic,
	}
}

// --- 譲渡申請 ---

type createAdoptionRequest struct {
	ShelterID int64 `json:"shelterId" validate:"required,gt=0"`
	PersonID  int64 `json:"personId" validate:"required,gt=0"`
	PetID     int64 `json:"petId" validate:"required,gt=0"`
}

type updateAdoptionStateRequest struct {
	State string `json:"state" validate:"required,oneof=SENT RECEIVED REVIEWING APPROVED REJECTED"`
}

type adoptionResponse struct {
	ID        int64     `json:"id"`
	ShelterID int64     `json:"shelterId"`
	PersonID  int64     `json:"personId"`
	PetID     int64     `json:"petId"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAdoptionResponse(req *model.AdoptionRequest) adoptionResponse {
	return adoptionResponse{
		ID:        req.ID,
		ShelterID: req.ShelterID,
		PersonID:  req.PersonID,
		PetID:     req.PetID,
		State:     string(req.State),
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
}

// --- お気に入り・寄付 ---

type addFavoriteRequest struct {
	PersonID int64 `json:"personId" validate:"required,gt=0"`
	PetID    int64 `json:"petId" validate:"required,gt=0"`
}

type favoriteResponse struct {
	PersonID  int64     `json:"personId"`
	PetID     int64     `json:"petId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFavoriteResponse(f *model.Favorite) favoriteResponse {
	return favoriteResponse{PersonID: f.PersonID, PetID: f.PetID, CreatedAt: f.CreatedAt}
}

type createDonationRequest struct {
	PersonID     int64   `json:"personId" validate:"required,gt=0"`
	ShelterID    int64   `json:"shelterId" validate:"required,gt=0"`
	Total        float64 `json:"total" validate:"required,gt=0"`
	DonationDate string  `json:"donationDate" validate:"omitempty,datetime=2006-01-02"`
}

type donationResponse struct {
	ID           int64     `json:"id"`
	PersonID     int64     `json:"personId"`
	ShelterID    int64     `json:"shelterId"`
	Total        float64   `json:"total"`
	DonationDate time.Time `json:"donationDate"`
}

func toDonationResponse(d *model.Donation) donationResponse {
	return donationResponse{
		ID:           d.ID,
		PersonID:     d.PersonID,
		ShelterID:    d.ShelterID,
		Total:        d.Total,
		DonationDate: d.DonationDate,
	}
}

func toDonationResponses(list []*model.Donation) []donationResponse {
	out := make([]donationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDonationResponse(d))
	}
	return out
}

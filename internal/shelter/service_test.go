package shelter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
	"github.com/hitoshi/furcode/internal/security"
)

// --- モック ---

type mockShelterRepo struct {
	findByIDFn   func(ctx context.Context, id int64) (*model.Shelter, error)
	createFn     func(ctx context.Context, sh *model.Shelter) error
	updateFn     func(ctx context.Context, sh *model.Shelter) error
	softDeleteFn func(ctx context.Context, id int64) error
}

func (m *mockShelterRepo) FindByID(ctx context.Context, id int64) (*model.Shelter, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockShelterRepo) List(ctx context.Context) ([]*model.Shelter, error) {
	return nil, nil
}
func (m *mockShelterRepo) Create(ctx context.Context, sh *model.Shelter) error {
	return m.createFn(ctx, sh)
}
func (m *mockShelterRepo) Update(ctx context.Context, sh *model.Shelter) error {
	return m.updateFn(ctx, sh)
}
func (m *mockShelterRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.softDeleteFn(ctx, id)
}

type mockDonationRepo struct {
	repository.DonationRepository
	listByShelterFn func(ctx context.Context, shelterID int64) ([]*model.Donation, error)
}

func (m *mockDonationRepo) ListByShelter(ctx context.Context, shelterID int64) ([]*model.Donation, error) {
	return m.listByShelterFn(ctx, shelterID)
}

func newShelter() *model.Shelter {
	return &model.Shelter{
		Name:        " Happy Paws ",
		VAT:         "PT123",
		Email:       "Contact@HappyPaws.example",
		Address1:    "Rua 1",
		Description: "<b>Open</b> daily",
		IsActive:    true,
	}
}

func errorCode(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func TestCreate_NormalizesAndStores(t *testing.T) {
	var stored *model.Shelter
	repo := &mockShelterRepo{createFn: func(_ context.Context, sh *model.Shelter) error {
		sh.ID = 3
		stored = sh
		return nil
	}}
	svc := NewService(repo, &mockDonationRepo{}, security.NewTextSanitizer(), nil)

	sh, err := svc.Create(context.Background(), "user@example.com", newShelter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("shelter was not stored")
	}
	if sh.Name != "Happy Paws" {
		t.Errorf("Name = %q, want %q", sh.Name, "Happy Paws")
	}
	if sh.Email != "contact@happypaws.example" {
		t.Errorf("Email = %q", sh.Email)
	}
	if sh.Description != "Open daily" {
		t.Errorf("Description = %q, want markup stripped", sh.Description)
	}
	if sh.CreationDate.IsZero() {
		t.Error("CreationDate should default to now")
	}
}

func TestCreate_Validation(t *testing.T) {
	repo := &mockShelterRepo{createFn: func(context.Context, *model.Shelter) error {
		t.Fatal("invalid shelter must not be stored")
		return nil
	}}
	svc := NewService(repo, &mockDonationRepo{}, security.NewTextSanitizer(), nil)

	sh := newShelter()
	sh.Name = "  "
	_, err := svc.Create(context.Background(), "user@example.com", sh)
	if got := errorCode(err); got != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeValidation)
	}
}

func TestUpdate_KeepsCreationDate(t *testing.T) {
	created := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockShelterRepo{
		findByIDFn: func(_ context.Context, id int64) (*model.Shelter, error) {
			return &model.Shelter{ID: id, Name: "Old", CreationDate: created}, nil
		},
		updateFn: func(context.Context, *model.Shelter) error { return nil },
	}
	svc := NewService(repo, &mockDonationRepo{}, security.NewTextSanitizer(), nil)

	sh, err := svc.Update(context.Background(), "manager@example.com", 4, newShelter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sh.ID != 4 {
		t.Errorf("ID = %d, want 4", sh.ID)
	}
	if !sh.CreationDate.Equal(created) {
		t.Errorf("CreationDate = %v, want %v", sh.CreationDate, created)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockShelterRepo{findByIDFn: func(context.Context, int64) (*model.Shelter, error) {
		return nil, nil
	}}
	svc := NewService(repo, &mockDonationRepo{}, security.NewTextSanitizer(), nil)

	_, err := svc.Update(context.Background(), "manager@example.com", 4, newShelter())
	if got := errorCode(err); got != model.ErrCodeShelterNotFound {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeShelterNotFound)
	}
}

func TestDelete_MapsNotFound(t *testing.T) {
	repo := &mockShelterRepo{softDeleteFn: func(context.Context, int64) error {
		return repository.ErrNotFound
	}}
	svc := NewService(repo, &mockDonationRepo{}, security.NewTextSanitizer(), nil)

	err := svc.Delete(context.Background(), "manager@example.com", 8)
	if got := errorCode(err); got != model.ErrCodeShelterNotFound {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeShelterNotFound)
	}
}

func TestListDonations(t *testing.T) {
	repo := &mockShelterRepo{findByIDFn: func(_ context.Context, id int64) (*model.Shelter, error) {
		return &model.Shelter{ID: id}, nil
	}}
	donations := &mockDonationRepo{listByShelterFn: func(_ context.Context, shelterID int64) ([]*model.Donation, error) {
		return []*model.Donation{{ID: 1, ShelterID: shelterID, Total: 25}}, nil
	}}
	svc := NewService(repo, donations, security.NewTextSanitizer(), nil)

	got, err := svc.ListDonations(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ShelterID != 2 {
		t.Errorf("ListDonations() = %+v", got)
	}
}

package person

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// --- モック ---

type mockPersonRepo struct {
	findByIDFn      func(ctx context.Context, id int64) (*model.Person, error)
	findByEmailFn   func(ctx context.Context, email string) (*model.Person, error)
	listByShelterFn func(ctx context.Context, shelterID int64) ([]*model.Person, error)
	createFn        func(ctx context.Context, p *model.Person) error
	updateFn        func(ctx context.Context, p *model.Person) error
	updateRoleFn    func(ctx context.Context, id int64, role model.Role) error
	updateShelterFn func(ctx context.Context, id, shelterID int64) error
	softDeleteFn    func(ctx context.Context, id int64) error
}

func (m *mockPersonRepo) FindByID(ctx context.Context, id int64) (*model.Person, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockPersonRepo) FindByEmail(ctx context.Context, email string) (*model.Person, error) {
	return m.findByEmailFn(ctx, email)
}
func (m *mockPersonRepo) List(ctx context.Context) ([]*model.Person, error) {
	return nil, nil
}
func (m *mockPersonRepo) ListByShelter(ctx context.Context, shelterID int64) ([]*model.Person, error) {
	return m.listByShelterFn(ctx, shelterID)
}
func (m *mockPersonRepo) Create(ctx context.Context, p *model.Person) error {
	return m.createFn(ctx, p)
}
func (m *mockPersonRepo) Update(ctx context.Context, p *model.Person) error {
	return m.updateFn(ctx, p)
}
func (m *mockPersonRepo) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	return m.updateRoleFn(ctx, id, role)
}
func (m *mockPersonRepo) UpdateShelter(ctx context.Context, id, shelterID int64) error {
	return m.updateShelterFn(ctx, id, shelterID)
}
func (m *mockPersonRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.softDeleteFn(ctx, id)
}

type mockShelterRepo struct {
	repository.ShelterRepository
	findByIDFn func(ctx context.Context, id int64) (*model.Shelter, error)
}

func (m *mockShelterRepo) FindByID(ctx context.Context, id int64) (*model.Shelter, error) {
	return m.findByIDFn(ctx, id)
}

type mockDonationRepo struct {
	repository.DonationRepository
	listByPersonFn func(ctx context.Context, personID int64) ([]*model.Donation, error)
}

func (m *mockDonationRepo) ListByPerson(ctx context.Context, personID int64) ([]*model.Donation, error) {
	return m.listByPersonFn(ctx, personID)
}

type mockShelterCreator struct {
	createFn func(ctx context.Context, by string, sh *model.Shelter) (*model.Shelter, error)
}

func (m *mockShelterCreator) Create(ctx context.Context, by string, sh *model.Shelter) (*model.Shelter, error) {
	return m.createFn(ctx, by, sh)
}

type recordingTx struct {
	rollbacks int
}

func (tx *recordingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		tx.rollbacks++
		return err
	}
	return nil
}

func fakeHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestService(persons *mockPersonRepo, shelters *mockShelterRepo, donations *mockDonationRepo, creator ShelterCreator, tx *recordingTx) *Service {
	if tx == nil {
		tx = &recordingTx{}
	}
	svc := NewService(persons, shelters, donations, creator, tx, nil)
	svc.hash = fakeHash
	return svc
}

func activePerson(id int64) *model.Person {
	return &model.Person{ID: id, FirstName: "Ana", LastName: "Silva", Email: "ana@example.com", Role: model.RoleUser}
}

func errorCode(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// --- Register ---

func TestRegister_StoresUserWithHashedPassword(t *testing.T) {
	var stored *model.Person
	repo := &mockPersonRepo{
		findByEmailFn: func(context.Context, string) (*model.Person, error) { return nil, nil },
		createFn: func(_ context.Context, p *model.Person) error {
			p.ID = 1
			stored = p
			return nil
		},
	}
	svc := newTestService(repo, nil, nil, nil, nil)

	p, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana",
		LastName:  "Silva",
		Email:     "  Ana@Example.COM ",
		Password:  "s3cret-pass",
		Address1:  "Rua 1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("person was not stored")
	}
	if p.Email != "ana@example.com" {
		t.Errorf("Email = %q, want %q", p.Email, "ana@example.com")
	}
	if p.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", p.Role, model.RoleUser)
	}
	if p.PasswordHash != "hashed:s3cret-pass" {
		t.Errorf("PasswordHash = %q", p.PasswordHash)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockPersonRepo{
		findByEmailFn: func(context.Context, string) (*model.Person, error) { return activePerson(1), nil },
		createFn: func(context.Context, *model.Person) error {
			t.Fatal("duplicate must not be stored")
			return nil
		},
	}
	svc := newTestService(repo, nil, nil, nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: "s3cret-pass"})
	if got := errorCode(err); got != model.ErrCodeDuplicateEmail {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeDuplicateEmail)
	}
}

func TestRegister_DuplicateDetectedOnInsert(t *testing.T) {
	repo := &mockPersonRepo{
		findByEmailFn: func(context.Context, string) (*model.Person, error) { return nil, nil },
		createFn: func(context.Context, *model.Person) error {
			return model.NewDuplicateEmailError()
		},
	}
	svc := newTestService(repo, nil, nil, nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: "s3cret-pass"})
	if got := errorCode(err); got != model.ErrCodeDuplicateEmail {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeDuplicateEmail)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestService(&mockPersonRepo{}, nil, nil, nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: "short"})
	if got := errorCode(err); got != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeValidation)
	}
}

func TestRegister_PasswordLongerThan72Bytes(t *testing.T) {
	hashCalled := false
	svc := newTestService(&mockPersonRepo{
		findByEmailFn: func(context.Context, string) (*model.Person, error) { return nil, nil },
	}, nil, nil, nil, nil)
	svc.hash = func(string) (string, error) {
		hashCalled = true
		return "hashed", nil
	}

	// 40文字だが80バイト
	_, err := svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: strings.Repeat("é", 40)})
	if got := errorCode(err); got != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeValidation)
	}
	if hashCalled {
		t.Error("password must be rejected before hashing")
	}
}

// --- Update / SetRole / Delete ---

func TestUpdate_PartialFields(t *testing.T) {
	repo := &mockPersonRepo{
		findByIDFn: func(_ context.Context, id int64) (*model.Person, error) { return activePerson(id), nil },
		updateFn:   func(context.Context, *model.Person) error { return nil },
	}
	svc := newTestService(repo, nil, nil, nil, nil)
	postal := " 1000-001 "

	p, err := svc.Update(context.Background(), "ana@example.com", 1, UpdateInput{PostalCode: &postal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PostalCode != "1000-001" {
		t.Errorf("PostalCode = %q", p.PostalCode)
	}
	if p.FirstName != "Ana" {
		t.Errorf("FirstName = %q, want unchanged", p.FirstName)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockPersonRepo{
		findByIDFn: func(context.Context, int64) (*model.Person, error) { return nil, nil },
	}
	svc := newTestService(repo, nil, nil, nil, nil)

	_, err := svc.Update(context.Background(), "ana@example.com", 1, UpdateInput{})
	if got := errorCode(err); got != model.ErrCodePersonNotFound {
		t.Errorf("error code = %q, want %q", got, model.ErrCodePersonNotFound)
	}
}

func TestSetRole(t *testing.T) {
	var gotRole model.Role
	repo := &mockPersonRepo{
		updateRoleFn: func(_ context.Context, _ int64, role model.Role) error {
			gotRole = role
			return nil
		},
		findByIDFn: func(_ context.Context, id int64) (*model.Person, error) {
			p := activePerson(id)
			p.Role = gotRole
			return p, nil
		},
	}
	svc := newTestService(repo, nil, nil, nil, nil)

	p, err := svc.SetRole(context.Background(), "boss@example.com", 1, model.RoleManager)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Role != model.RoleManager {
		t.Errorf("Role = %q, want MANAGER", p.Role)
	}

	_, err = svc.SetRole(context.Background(), "boss@example.com", 1, "OWNER")
	if got := errorCode(err); got != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeValidation)
	}
}

func TestDelete_MapsNotFound(t *testing.T) {
	repo := &mockPersonRepo{softDeleteFn: func(context.Context, int64) error { return repository.ErrNotFound }}
	svc := newTestService(repo, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "boss@example.com", 3)
	if got := errorCode(err); got != model.ErrCodePersonNotFound {
		t.Errorf("error code = %q, want %q", got, model.ErrCodePersonNotFound)
	}
}

// --- Shelter membership ---

func TestCreateShelter_LinksPersonWithoutChangingRole(t *testing.T) {
	var linked int64
	repo := &mockPersonRepo{
		findByIDFn: func(_ context.Context, id int64) (*model.Person, error) { return activePerson(id), nil },
		updateShelterFn: func(_ context.Context, _ int64, shelterID int64) error {
			linked = shelterID
			return nil
		},
		updateRoleFn: func(context.Context, int64, model.Role) error {
			t.Fatal("role must not change")
			return nil
		},
	}
	creator := &mockShelterCreator{createFn: func(_ context.Context, _ string, sh *model.Shelter) (*model.Shelter, error) {
		sh.ID = 12
		return sh, nil
	}}
	svc := newTestService(repo, nil, nil, creator, nil)

	sh, err := svc.CreateShelter(context.Background(), "ana@example.com", 1, &model.Shelter{Name: "Paws"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sh.ID != 12 || linked != 12 {
		t.Errorf("shelter = %d, linked = %d, want 12", sh.ID, linked)
	}
}

func TestCreateShelter_RollsBackWhenLinkFails(t *testing.T) {
	repo := &mockPersonRepo{
		findByIDFn:      func(_ context.Context, id int64) (*model.Person, error) { return activePerson(id), nil },
		updateShelterFn: func(context.Context, int64, int64) error { return errors.New("db down") },
	}
	creator := &mockShelterCreator{createFn: func(_ context.Context, _ string, sh *model.Shelter) (*model.Shelter, error) {
		sh.ID = 12
		return sh, nil
	}}
	tx := &recordingTx{}
	svc := newTestService(repo, nil, nil, creator, tx)

	if _, err := svc.CreateShelter(context.Background(), "ana@example.com", 1, &model.Shelter{Name: "Paws"}); err == nil {
		t.Fatal("expected error")
	}
	if tx.rollbacks != 1 {
		t.Errorf("rollbacks = %d, want 1", tx.rollbacks)
	}
}

func TestAddToShelter_UnknownShelter(t *testing.T) {
	shelters := &mockShelterRepo{findByIDFn: func(context.Context, int64) (*model.Shelter, error) { return nil, nil }}
	svc := newTestService(&mockPersonRepo{}, shelters, nil, nil, nil)

	_, err := svc.AddToShelter(context.Background(), "boss@example.com", 1, 9)
	if got := errorCode(err); got != model.ErrCodeShelterNotFound {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeShelterNotFound)
	}
}

func TestAddToShelter(t *testing.T) {
	shelters := &mockShelterRepo{findByIDFn: func(_ context.Context, id int64) (*model.Shelter, error) {
		return &model.Shelter{ID: id}, nil
	}}
	var shelterID int64
	repo := &mockPersonRepo{
		updateShelterFn: func(_ context.Context, _ int64, sid int64) error {
			shelterID = sid
			return nil
		},
		findByIDFn: func(_ context.Context, id int64) (*model.Person, error) {
			p := activePerson(id)
			p.ShelterID = &shelterID
			return p, nil
		},
	}
	svc := newTestService(repo, shelters, nil, nil, nil)

	p, err := svc.AddToShelter(context.Background(), "boss@example.com", 1, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ShelterID == nil || *p.ShelterID != 9 {
		t.Errorf("ShelterID = %v, want 9", p.ShelterID)
	}
}

func TestListDonations_EmptyIsNotNil(t *testing.T) {
	repo := &mockPersonRepo{
		findByIDFn: func(_ context.Context, id int64) (*model.Person, error) { return activePerson(id), nil },
	}
	donations := &mockDonationRepo{listByPersonFn: func(context.Context, int64) ([]*model.Donation, error) {
		return nil, nil
	}}
	svc := newTestService(repo, nil, donations, nil, nil)

	got, err := svc.ListDonations(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Error("expected empty non-nil slice")
	}
}

func TestListInShelter(t *testing.T) {
	shelters := &mockShelterRepo{findByIDFn: func(_ context.Context, id int64) (*model.Shelter, error) {
		return &model.Shelter{ID: id}, nil
	}}
	repo := &mockPersonRepo{listByShelterFn: func(context.Context, int64) ([]*model.Person, error) {
		return []*model.Person{activePerson(1), activePerson(2)}, nil
	}}
	svc := newTestService(repo, shelters, nil, nil, nil)

	got, err := svc.ListInShelter(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

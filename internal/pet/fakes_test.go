package pet

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/furcode/internal/cache"
	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// --- フェイク ---

// snapshotter はトランザクション開始時の状態を保存し、ロールバックで戻す。
type snapshotter interface {
	snapshot() func()
}

// fakeTx はfnのエラー時に登録されたリポジトリの状態を巻き戻す。
type fakeTx struct {
	mu        sync.Mutex
	repos     []snapshotter
	commits   int
	rollbacks int
}

func (tx *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	restores := make([]func(), 0, len(tx.repos))
	for _, r := range tx.repos {
		restores = append(restores, r.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		tx.mu.Lock()
		tx.rollbacks++
		tx.mu.Unlock()
		return err
	}
	tx.mu.Lock()
	tx.commits++
	tx.mu.Unlock()
	return nil
}

type fakePetRepo struct {
	mu        sync.Mutex
	pets      map[int64]model.Pet
	nextID    int64
	findCalls int
	listCalls int
	updateErr error
}

func newFakePetRepo(pets ...model.Pet) *fakePetRepo {
	r := &fakePetRepo{pets: map[int64]model.Pet{}}
	for _, p := range pets {
		r.pets[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *fakePetRepo) snapshot() func() {
	r.mu.Lock()
	saved := make(map[int64]model.Pet, len(r.pets))
	for k, v := range r.pets {
		saved[k] = v
	}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.pets = saved
		r.mu.Unlock()
	}
}

func (r *fakePetRepo) FindByID(_ context.Context, id int64) (*model.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	p, ok := r.pets[id]
	if !ok || p.DeletedAt != nil {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePetRepo) FindDeletedByID(_ context.Context, id int64) (*model.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok || p.DeletedAt == nil {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePetRepo) FindForUpdate(_ context.Context, id int64) (*model.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePetRepo) list(deleted bool) []*model.Pet {
	var out []*model.Pet
	for _, p := range r.pets {
		if (p.DeletedAt != nil) == deleted {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakePetRepo) ListActive(context.Context) ([]*model.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	return r.list(false), nil
}

func (r *fakePetRepo) ListDeleted(context.Context) ([]*model.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(true), nil
}

func (r *fakePetRepo) Create(_ context.Context, p *model.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.pets[p.ID] = *p
	return nil
}

func (r *fakePetRepo) Update(_ context.Context, p *model.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.pets[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.pets[p.ID] = *p
	return nil
}

func (r *fakePetRepo) SoftDelete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok || p.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	r.pets[id] = p
	return nil
}

func (r *fakePetRepo) Restore(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok || p.DeletedAt == nil {
		return repository.ErrNotFound
	}
	p.DeletedAt = nil
	r.pets[id] = p
	return nil
}

type fakeRecordRepo struct {
	mu        sync.Mutex
	records   []model.PetRecord
	listCalls int
}

func (r *fakeRecordRepo) snapshot() func() {
	r.mu.Lock()
	saved := append([]model.PetRecord(nil), r.records...)
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.records = saved
		r.mu.Unlock()
	}
}

func (r *fakeRecordRepo) Create(_ context.Context, rec *model.PetRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeRecordRepo) ListByPetID(_ context.Context, petID int64) ([]*model.PetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []*model.PetRecord
	for _, rec := range r.records {
		if rec.PetID == petID {
			rec := rec
			out = append(out, &rec)
		}
	}
	return out, nil
}

type mockPetTypeRepo struct {
	findByIDFn    func(ctx context.Context, id int64) (*model.PetType, error)
	createFn      func(ctx context.Context, pt *model.PetType) error
	upsertBreedFn func(ctx context.Context, b *model.PetBreed) error
}

func (m *mockPetTypeRepo) FindByID(ctx context.Context, id int64) (*model.PetType, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.PetType{ID: id, Species: model.SpeciesDog}, nil
}
func (m *mockPetTypeRepo) Create(ctx context.Context, pt *model.PetType) error {
	if m.createFn != nil {
		return m.createFn(ctx, pt)
	}
	pt.ID = 1
	return nil
}
func (m *mockPetTypeRepo) UpsertBreed(ctx context.Context, b *model.PetBreed) error {
	if m.upsertBreedFn != nil {
		return m.upsertBreedFn(ctx, b)
	}
	b.ID = 1
	return nil
}

type mockShelterRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Shelter, error)
}

func (m *mockShelterRepo) FindByID(ctx context.Context, id int64) (*model.Shelter, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.Shelter{ID: id, Name: "Shelter"}, nil
}
func (m *mockShelterRepo) List(context.Context) ([]*model.Shelter, error) { return nil, nil }
func (m *mockShelterRepo) Create(context.Context, *model.Shelter) error   { return nil }
func (m *mockShelterRepo) Update(context.Context, *model.Shelter) error   { return nil }
func (m *mockShelterRepo) SoftDelete(context.Context, int64) error        { return nil }

// flakyStore はfailDeleteが立っている間Deleteを失敗させる。
type flakyStore struct {
	*cache.MemoryStore
	mu         sync.Mutex
	failDelete bool
}

var errStoreDown = errors.New("store unavailable")

func (s *flakyStore) setFailDelete(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete = v
}

func (s *flakyStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	fail := s.failDelete
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.MemoryStore.Delete(ctx, keys...)
}

type identitySanitizer struct{}

func (identitySanitizer) Sanitize(s string) string { return s }

// Package pet はペット、ペット記録、ペット種別、犬種のドメインロジックを提供する。
//
// 単一ペット、ペット一覧、ペットごとの記録一覧は読み取り時にキャッシュへ充填される。
// 書き込みは影響するキーの書きロックを取得してからトランザクションを開始し、
// コミット前に同期的にキャッシュを破棄する。破棄に失敗した書き込みはロールバックされる。
package pet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/furcode/internal/cache"
	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// Sanitizer は自由記述欄からマークアップを除去する。
type Sanitizer interface {
	Sanitize(text string) string
}

// UpdateInput はペットの部分更新の入力。nilの項目は変更しない。
type UpdateInput struct {
	Name         *string
	PetTypeID    *int64
	ShelterID    *int64
	IsAdopted    *bool
	IsVaccinated *bool
	Size         *model.PetSize
	Weight       *float64
	Color        *string
	DateOfBirth  *time.Time
	Observations *string
}

// RecordInput はペット記録作成の入力。
type RecordInput struct {
	IsVaccinated bool
	Intervention string
	Observation  string
	Date         time.Time
}

// Service はペットのサービス層。
type Service struct {
	pets      repository.PetRepository
	records   repository.PetRecordRepository
	petTypes  repository.PetTypeRepository
	shelters  repository.ShelterRepository
	tx        database.Transactor
	cache     *cache.Manager
	sanitizer Sanitizer
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(
	pets repository.PetRepository,
	records repository.PetRecordRepository,
	petTypes repository.PetTypeRepository,
	shelters repository.ShelterRepository,
	tx database.Transactor,
	cacheManager *cache.Manager,
	sanitizer Sanitizer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pets:      pets,
		records:   records,
		petTypes:  petTypes,
		shelters:  shelters,
		tx:        tx,
		cache:     cacheManager,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

func petRef(id int64) cache.Ref {
	return cache.Ref{Region: cache.RegionPet, Key: strconv.FormatInt(id, 10)}
}

func recordsRef(petID int64) cache.Ref {
	return cache.Ref{Region: cache.RegionPetRecords, Key: strconv.FormatInt(petID, 10)}
}

var petsRef = cache.Ref{Region: cache.RegionPets, Key: cache.KeyAll}

// Get は論理削除されていないペットを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Pet, error) {
	return cache.Fetch(ctx, s.cache, petRef(id), func(ctx context.Context) (*model.Pet, error) {
		p, err := s.pets.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("ペットの取得に失敗しました: %w", err)
		}
		if p == nil {
			return nil, model.NewPetNotFoundError(id)
		}
		return p, nil
	})
}

// List は論理削除されていない全ペットを返す。
func (s *Service) List(ctx context.Context) ([]*model.Pet, error) {
	return cache.Fetch(ctx, s.cache, petsRef, func(ctx context.Context) ([]*model.Pet, error) {
		pets, err := s.pets.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("ペット一覧の取得に失敗しました: %w", err)
		}
		if pets == nil {
			pets = []*model.Pet{}
		}
		return pets, nil
	})
}

// ListDeleted は論理削除済みのペットを返す。キャッシュしない。
func (s *Service) ListDeleted(ctx context.Context) ([]*model.Pet, error) {
	pets, err := s.pets.ListDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("削除済みペット一覧の取得に失敗しました: %w", err)
	}
	if pets == nil {
		pets = []*model.Pet{}
	}
	return pets, nil
}

// GetDeleted は論理削除済みのペットを返す。
func (s *Service) GetDeleted(ctx context.Context, id int64) (*model.Pet, error) {
	p, err := s.pets.FindDeletedByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("削除済みペットの取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPetNotFoundError(id)
	}
	return p, nil
}

// Create はペットを登録し、ペット一覧のキャッシュを破棄する。
func (s *Service) Create(ctx context.Context, performedBy string, p *model.Pet) (*model.Pet, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Color = strings.TrimSpace(p.Color)
	p.Observations = s.sanitizer.Sanitize(p.Observations)
	if err := validatePet(p); err != nil {
		return nil, err
	}

	unlock := s.cache.Lock(petsRef)
	defer unlock()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, p.PetTypeID, p.ShelterID); err != nil {
			return err
		}
		if err := s.pets.Create(ctx, p); err != nil {
			return fmt.Errorf("ペットの登録に失敗しました: %w", err)
		}
		return s.cache.Evict(ctx, petsRef)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pet created",
		slog.Int64("pet_id", p.ID),
		slog.String("performed_by", performedBy),
	)
	return p, nil
}

// Update はペットを部分更新し、そのペットとペット一覧のキャッシュを破棄する。
func (s *Service) Update(ctx context.Context, performedBy string, id int64, in UpdateInput) (*model.Pet, error) {
	unlock := s.cache.Lock(petRef(id), petsRef)
	defer unlock()

	var updated *model.Pet
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.pets.FindForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("ペットの取得に失敗しました: %w", err)
		}
		if p == nil || p.DeletedAt != nil {
			return model.NewPetNotFoundError(id)
		}

		s.apply(p, in)
		if err := validatePet(p); err != nil {
			return err
		}
		if in.PetTypeID != nil || in.ShelterID != nil {
			if err := s.checkReferences(ctx, p.PetTypeID, p.ShelterID); err != nil {
				return err
			}
		}
		if err := s.pets.Update(ctx, p); err != nil {
			return fmt.Errorf("ペットの更新に失敗しました: %w", err)
		}
		if err := s.cache.Evict(ctx, petRef(id), petsRef); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pet updated",
		slog.Int64("pet_id", id),
		slog.String("performed_by", performedBy),
	)
	return updated, nil
}

// Delete はペットを論理削除し、関連するキャッシュを破棄する。
func (s *Service) Delete(ctx context.Context, performedBy string, id int64) error {
	return s.changeDeletion(ctx, performedBy, id, "pet deleted", s.pets.SoftDelete)
}

// Restore は論理削除済みのペットを復元し、関連するキャッシュを破棄する。
func (s *Service) Restore(ctx context.Context, performedBy string, id int64) error {
	return s.changeDeletion(ctx, performedBy, id, "pet restored", s.pets.Restore)
}

func (s *Service) changeDeletion(ctx context.Context, performedBy string, id int64, msg string, op func(ctx context.Context, id int64) error) error {
	refs := []cache.Ref{petRef(id), petsRef, recordsRef(id)}
	unlock := s.cache.Lock(refs...)
	defer unlock()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := op(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.NewPetNotFoundError(id)
			}
			return fmt.Errorf("ペットの削除状態の変更に失敗しました: %w", err)
		}
		return s.cache.Evict(ctx, refs...)
	})
	if err != nil {
		return err
	}

	s.logger.Info(msg,
		slog.Int64("pet_id", id),
		slog.String("performed_by", performedBy),
	)
	return nil
}

// MarkAdopted はペットを譲渡済みにする。alongsideは同じトランザクション内で実行され、
// エラーを返すとペットの更新ごとロールバックされる。
// 既に譲渡済みの場合はPET_ALREADY_ADOPTEDを返す。
func (s *Service) MarkAdopted(ctx context.Context, performedBy string, id int64, alongside func(ctx context.Context) error) error {
	unlock := s.cache.Lock(petRef(id), petsRef)
	defer unlock()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.pets.FindForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("ペットの取得に失敗しました: %w", err)
		}
		if p == nil || p.DeletedAt != nil {
			return model.NewPetNotFoundError(id)
		}
		if p.IsAdopted {
			return model.NewPetAlreadyAdoptedError(id)
		}
		if alongside != nil {
			if err := alongside(ctx); err != nil {
				return err
			}
		}
		p.IsAdopted = true
		if err := s.pets.Update(ctx, p); err != nil {
			return fmt.Errorf("ペットの更新に失敗しました: %w", err)
		}
		return s.cache.Evict(ctx, petRef(id), petsRef)
	})
	if err != nil {
		return err
	}

	s.logger.Info("pet adopted",
		slog.Int64("pet_id", id),
		slog.String("performed_by", performedBy),
	)
	return nil
}

// CreateRecord はペット記録を作成し、そのペットの記録一覧キャッシュを破棄する。
func (s *Service) CreateRecord(ctx context.Context, performedBy string, petID int64, in RecordInput) (*model.PetRecord, error) {
	rec := &model.PetRecord{
		PetID:        petID,
		IsVaccinated: in.IsVaccinated,
		Intervention: s.sanitizer.Sanitize(in.Intervention),
		Observation:  s.sanitizer.Sanitize(in.Observation),
		Date:         in.Date,
		CreatedBy:    performedBy,
	}
	if rec.Intervention == "" {
		return nil, model.NewValidationError("intervention is required")
	}
	if rec.Date.IsZero() {
		rec.Date = time.Now().UTC()
	}

	ref := recordsRef(petID)
	unlock := s.cache.Lock(ref)
	defer unlock()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.pets.FindByID(ctx, petID)
		if err != nil {
			return fmt.Errorf("ペットの取得に失敗しました: %w", err)
		}
		if p == nil {
			return model.NewPetNotFoundError(petID)
		}
		if err := s.records.Create(ctx, rec); err != nil {
			return fmt.Errorf("ペット記録の作成に失敗しました: %w", err)
		}
		return s.cache.Evict(ctx, ref)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pet record created",
		slog.Int64("pet_id", petID),
		slog.Int64("record_id", rec.ID),
		slog.String("performed_by", performedBy),
	)
	return rec, nil
}

// ListRecords は論理削除されていないペットの記録一覧を返す。
func (s *Service) ListRecords(ctx context.Context, petID int64) ([]*model.PetRecord, error) {
	return cache.Fetch(ctx, s.cache, recordsRef(petID), func(ctx context.Context) ([]*model.PetRecord, error) {
		p, err := s.pets.FindByID(ctx, petID)
		if err != nil {
			return nil, fmt.Errorf("ペットの取得に失敗しました: %w", err)
		}
		if p == nil {
			return nil, model.NewPetNotFoundError(petID)
		}
		return s.listRecords(ctx, petID)
	})
}

// ListDeletedPetRecords は論理削除済みペットの記録一覧を返す。キャッシュしない。
func (s *Service) ListDeletedPetRecords(ctx context.Context, petID int64) ([]*model.PetRecord, error) {
	if _, err := s.GetDeleted(ctx, petID); err != nil {
		return nil, err
	}
	return s.listRecords(ctx, petID)
}

func (s *Service) listRecords(ctx context.Context, petID int64) ([]*model.PetRecord, error) {
	records, err := s.records.ListByPetID(ctx, petID)
	if err != nil {
		return nil, fmt.Errorf("ペット記録の取得に失敗しました: %w", err)
	}
	if records == nil {
		records = []*model.PetRecord{}
	}
	return records, nil
}

func (s *Service) apply(p *model.Pet, in UpdateInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.PetTypeID != nil {
		p.PetTypeID = *in.PetTypeID
	}
	if in.ShelterID != nil {
		p.ShelterID = *in.ShelterID
	}
	if in.IsAdopted != nil {
		p.IsAdopted = *in.IsAdopted
	}
	if in.IsVaccinated != nil {
		p.IsVaccinated = *in.IsVaccinated
	}
	if in.Size != nil {
		p.Size = *in.Size
	}
	if in.Weight != nil {
		p.Weight = *in.Weight
	}
	if in.Color != nil {
		p.Color = strings.TrimSpace(*in.Color)
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = *in.DateOfBirth
	}
	if in.Observations != nil {
		p.Observations = s.sanitizer.Sanitize(*in.Observations)
	}
}

func (s *Service) checkReferences(ctx context.Context, petTypeID, shelterID int64) error {
	pt, err := s.petTypes.FindByID(ctx, petTypeID)
	if err != nil {
		return fmt.Errorf("ペット種別の取得に失敗しました: %w", err)
	}
	if pt == nil {
		return model.NewPetTypeNotFoundError(petTypeID)
	}
	sh, err := s.shelters.FindByID(ctx, shelterID)
	if err != nil {
		return fmt.Errorf("シェルターの取得に失敗しました: %w", err)
	}
	if sh == nil {
		return model.NewShelterNotFoundError(shelterID)
	}
	return nil
}

func validatePet(p *model.Pet) error {
	switch {
	case p.Name == "":
		return model.NewValidationError("name is required")
	case p.Color == "":
		return model.NewValidationError("color is required")
	case p.Weight < model.MinPetWeight || p.Weight > model.MaxPetWeight:
		return model.NewValidationError(fmt.Sprintf("weight must be between %.2f and %.2f", model.MinPetWeight, model.MaxPetWeight))
	case p.DateOfBirth.IsZero() || p.DateOfBirth.After(time.Now()):
		return model.NewValidationError("dateOfBirth must be in the past")
	}
	switch p.Size {
	case model.PetSizeSmall, model.PetSizeMedium, model.PetSizeLarge:
	default:
		return model.NewValidationError(fmt.Sprintf("unknown size: %q", p.Size))
	}
	return nil
}

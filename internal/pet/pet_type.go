package pet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// BreedResolver は犬種名から犬種を解決する。
type BreedResolver interface {
	ByName(ctx context.Context, name string) (*model.DogBreed, error)
}

// TypeService はペット種別のサービス層。
type TypeService struct {
	petTypes repository.PetTypeRepository
	breeds   BreedResolver
	tx       database.Transactor
	logger   *slog.Logger
}

// NewTypeService はTypeServiceを生成する。
func NewTypeService(petTypes repository.PetTypeRepository, breeds BreedResolver, tx database.Transactor, logger *slog.Logger) *TypeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TypeService{petTypes: petTypes, breeds: breeds, tx: tx, logger: logger}
}

// Create はペット種別を作成する。犬種名が指定された場合は外部APIで解決し、
// 犬種テーブルへ取り込んでから紐づける。犬種を指定できるのはDOGのみ。
func (s *TypeService) Create(ctx context.Context, performedBy string, species model.Species, breedName *string) (*model.PetType, error) {
	switch species {
	case model.SpeciesDog, model.SpeciesCat, model.SpeciesOther:
	default:
		return nil, model.NewValidationError(fmt.Sprintf("unknown species: %q", species))
	}

	var breed *model.PetBreed
	if breedName != nil && strings.TrimSpace(*breedName) != "" {
		if species != model.SpeciesDog {
			return nil, model.NewValidationError("breedName is only allowed for DOG")
		}
		// 外部API呼び出しはトランザクションの外で行う
		dog, err := s.breeds.ByName(ctx, *breedName)
		if err != nil {
			return nil, err
		}
		breed = &model.PetBreed{
			ExternalAPIID: dog.ID,
			Name:          dog.Name,
			Description:   dog.Description,
		}
	}

	pt := &model.PetType{Species: species}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if breed != nil {
			if err := s.petTypes.UpsertBreed(ctx, breed); err != nil {
				return fmt.Errorf("犬種の登録に失敗しました: %w", err)
			}
			pt.BreedID = &breed.ID
		}
		if err := s.petTypes.Create(ctx, pt); err != nil {
			return fmt.Errorf("ペット種別の登録に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pet type created",
		slog.Int64("pet_type_id", pt.ID),
		slog.String("species", string(species)),
		slog.String("performed_by", performedBy),
	)
	return pt, nil
}

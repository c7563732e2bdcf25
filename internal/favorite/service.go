// Package favorite は人物のお気に入りペットを管理する。
package favorite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// Service はお気に入りのサービス層。
type Service struct {
	favorites repository.FavoriteRepository
	persons   repository.PersonRepository
	pets      repository.PetRepository
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(favorites repository.FavoriteRepository, persons repository.PersonRepository, pets repository.PetRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{favorites: favorites, persons: persons, pets: pets, logger: logger}
}

// Add はペットを人物のお気に入りに登録する。
func (s *Service) Add(ctx context.Context, performedBy string, personID, petID int64) (*model.Favorite, error) {
	person, err := s.persons.FindByID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("人物の取得に失敗しました: %w", err)
	}
	if person == nil {
		return nil, model.NewPersonNotFoundError(personID)
	}
	pet, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		return nil, fmt.Errorf("ペットの取得に失敗しました: %w", err)
	}
	if pet == nil {
		return nil, model.NewPetNotFoundError(petID)
	}

	fav := &model.Favorite{PersonID: personID, PetID: petID}
	if err := s.favorites.Create(ctx, fav); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, fmt.Errorf("お気に入りの登録に失敗しました: %w", err)
	}

	s.logger.Info("favorite added",
		slog.Int64("person_id", personID),
		slog.Int64("pet_id", petID),
		slog.String("performed_by", performedBy),
	)
	return fav, nil
}

// Get は人物とペットの組のお気に入りを返す。
func (s *Service) Get(ctx context.Context, personID, petID int64) (*model.Favorite, error) {
	fav, err := s.favorites.Find(ctx, personID, petID)
	if err != nil {
		return nil, fmt.Errorf("お気に入りの取得に失敗しました: %w", err)
	}
	if fav == nil {
		return nil, model.NewFavoriteNotFoundError(personID, petID)
	}
	return fav, nil
}

// ListByPerson は人物のお気に入り一覧を返す。
func (s *Service) ListByPerson(ctx context.Context, personID int64) ([]*model.Favorite, error) {
	favs, err := s.favorites.ListByPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("お気に入り一覧の取得に失敗しました: %w", err)
	}
	if favs == nil {
		favs = []*model.Favorite{}
	}
	return favs, nil
}

// Remove はお気に入りを削除する。
func (s *Service) Remove(ctx context.Context, performedBy string, personID, petID int64) error {
	if err := s.favorites.Delete(ctx, personID, petID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewFavoriteNotFoundError(personID, petID)
		}
		return fmt.Errorf("お気に入りの削除に失敗しました: %w", err)
	}
	s.logger.Info("favorite removed",
		slog.Int64("person_id", personID),
		slog.Int64("pet_id", petID),
		slog.String("performed_by", performedBy),
	)
	return nil
}

// Package shelter はシェルターと寄付のサービス層を提供する。
package shelter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// Sanitizer は自由記述欄からマークアップを除去する。
type Sanitizer interface {
	Sanitize(text string) string
}

// Service はシェルターのサービス層。
type Service struct {
	shelters  repository.ShelterRepository
	donations repository.DonationRepository
	sanitizer Sanitizer
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(shelters repository.ShelterRepository, donations repository.DonationRepository, sanitizer Sanitizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{shelters: shelters, donations: donations, sanitizer: sanitizer, logger: logger}
}

// Create はシェルターを登録する。creationDateが未指定の場合は現在時刻を使う。
func (s *Service) Create(ctx context.Context, performedBy string, sh *model.Shelter) (*model.Shelter, error) {
	s.normalize(sh)
	if err := validate(sh); err != nil {
		return nil, err
	}
	if sh.CreationDate.IsZero() {
		sh.CreationDate = time.Now().UTC()
	}
	if err := s.shelters.Create(ctx, sh); err != nil {
		return nil, fmt.Errorf("シェルターの登録に失敗しました: %w", err)
	}

	s.logger.Info("shelter created",
		slog.Int64("shelter_id", sh.ID),
		slog.String("performed_by", performedBy),
	)
	return sh, nil
}

// Get はシェルターを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Shelter, error) {
	sh, err := s.shelters.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("シェルターの取得に失敗しました: %w", err)
	}
	if sh == nil {
		return nil, model.NewShelterNotFoundError(id)
	}
	return sh, nil
}

// List は全シェルターを返す。
func (s *Service) List(ctx context.Context) ([]*model.Shelter, error) {
	list, err := s.shelters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("シェルター一覧の取得に失敗しました: %w", err)
	}
	if list == nil {
		list = []*model.Shelter{}
	}
	return list, nil
}

// Update はシェルター情報を上書きする。
func (s *Service) Update(ctx context.Context, performedBy string, id int64, sh *model.Shelter) (*model.Shelter, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sh.ID = id
	s.normalize(sh)
	if err := validate(sh); err != nil {
		return nil, err
	}
	if sh.CreationDate.IsZero() {
		sh.CreationDate = current.CreationDate
	}
	if err := s.shelters.Update(ctx, sh); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewShelterNotFoundError(id)
		}
		return nil, fmt.Errorf("シェルターの更新に失敗しました: %w", err)
	}

	s.logger.Info("shelter updated",
		slog.Int64("shelter_id", id),
		slog.String("performed_by", performedBy),
	)
	return sh, nil
}

// Delete はシェルターを論理削除する。
func (s *Service) Delete(ctx context.Context, performedBy string, id int64) error {
	if err := s.shelters.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewShelterNotFoundError(id)
		}
		return fmt.Errorf("シェルターの削除に失敗しました: %w", err)
	}
	s.logger.Info("shelter deleted",
		slog.Int64("shelter_id", id),
		slog.String("performed_by", performedBy),
	)
	return nil
}

// ListDonations はシェルターへの寄付一覧を返す。
func (s *Service) ListDonations(ctx context.Context, id int64) ([]*model.Donation, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	donations, err := s.donations.ListByShelter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("寄付一覧の取得に失敗しました: %w", err)
	}
	if donations == nil {
		donations = []*model.Donation{}
	}
	return donations, nil
}

func (s *Service) normalize(sh *model.Shelter) {
	sh.Name = strings.TrimSpace(sh.Name)
	sh.Email = strings.ToLower(strings.TrimSpace(sh.Email))
	sh.VAT = strings.TrimSpace(sh.VAT)
	sh.Description = s.sanitizer.Sanitize(sh.Description)
}

func validate(sh *model.Shelter) error {
	switch {
	case sh.Name == "":
		return model.NewValidationError("name is required")
	case sh.Email == "":
		return model.NewValidationError("email is required")
	case sh.Address1 == "":
		return model.NewValidationError("address1 is required")
	}
	return nil
}

// Package donation は人物からシェルターへの寄付を記録する。
package donation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// CreateInput は寄付作成の入力。
type CreateInput struct {
	PersonID     int64
	ShelterID    int64
	Total        float64
	DonationDate time.Time
}

// Service は寄付のサービス層。
type Service struct {
	donations repository.DonationRepository
	persons   repository.PersonRepository
	shelters  repository.ShelterRepository
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(donations repository.DonationRepository, persons repository.PersonRepository, shelters repository.ShelterRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{donations: donations, persons: persons, shelters: shelters, logger: logger}
}

// Create は寄付を記録する。donationDateが未指定の場合は現在時刻を使う。
func (s *Service) Create(ctx context.Context, performedBy string, in CreateInput) (*model.Donation, error) {
	if in.Total <= 0 {
		return nil, model.NewValidationError("total must be greater than zero")
	}
	person, err := s.persons.FindByID(ctx, in.PersonID)
	if err != nil {
		return nil, fmt.Errorf("人物の取得に失敗しました: %w", err)
	}
	if person == nil {
		return nil, model.NewPersonNotFoundError(in.PersonID)
	}
	sh, err := s.shelters.FindByID(ctx, in.ShelterID)
	if err != nil {
		return nil, fmt.Errorf("シェルターの取得に失敗しました: %w", err)
	}
	if sh == nil {
		return nil, model.NewShelterNotFoundError(in.ShelterID)
	}

	d := &model.Donation{
		PersonID:     in.PersonID,
		ShelterID:    in.ShelterID,
		Total:        in.Total,
		DonationDate: in.DonationDate,
	}
	if d.DonationDate.IsZero() {
		d.DonationDate = time.Now().UTC()
	}
	if err := s.donations.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("寄付の登録に失敗しました: %w", err)
	}

	s.logger.Info("donation created",
		slog.Int64("donation_id", d.ID),
		slog.Int64("shelter_id", d.ShelterID),
		slog.String("performed_by", performedBy),
	)
	return d, nil
}

// Get は寄付を返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Donation, error) {
	d, err := s.donations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("寄付の取得に失敗しました: %w", err)
	}
	if d == nil {
		return nil, model.NewDonationNotFoundError(id)
	}
	return d, nil
}

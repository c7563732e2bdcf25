// Package adoption は譲渡申請のワークフローを提供する。
//
// 状態は SENT → RECEIVED → REVIEWING → APPROVED の順に進み、終端前ならいつでもREJECTEDにできる。
// APPROVEDへの遷移はペットの譲渡済み更新と同じトランザクションで確定する。
package adoption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// PetAdopter はペットを譲渡済みにする。
type PetAdopter interface {
	MarkAdopted(ctx context.Context, performedBy string, petID int64, alongside func(ctx context.Context) error) error
}

// CreateInput は譲渡申請作成の入力。
type CreateInput struct {
	ShelterID int64
	PersonID  int64
	PetID     int64
}

// Service は譲渡申請のサービス層。
type Service struct {
	requests repository.AdoptionRequestRepository
	persons  repository.PersonRepository
	shelters repository.ShelterRepository
	pets     repository.PetRepository
	adopter  PetAdopter
	tx       database.Transactor
	logger   *slog.Logger
}

// NewService はServiceを生成する。
func NewService(
	requests repository.AdoptionRequestRepository,
	persons repository.PersonRepository,
	shelters repository.ShelterRepository,
	pets repository.PetRepository,
	adopter PetAdopter,
	tx database.Transactor,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		requests: requests,
		persons:  persons,
		shelters: shelters,
		pets:     pets,
		adopter:  adopter,
		tx:       tx,
		logger:   logger,
	}
}

// Create は譲渡申請をSENT状態で作成する。
// ペットは申請先シェルターに所属し、未譲渡である必要がある。
func (s *Service) Create(ctx context.Context, performedBy string, in CreateInput) (*model.AdoptionRequest, error) {
	person, err := s.persons.FindByID(ctx, in.PersonID)
	if err != nil {
		return nil, fmt.Errorf("人物の取得に失敗しました: %w", err)
	}
	if person == nil {
		return nil, model.NewPersonNotFoundError(in.PersonID)
	}

	shelter, err := s.shelters.FindByID(ctx, in.ShelterID)
	if err != nil {
		return nil, fmt.Errorf("シェルターの取得に失敗しました: %w", err)
	}
	if shelter == nil {
		return nil, model.NewShelterNotFoundError(in.ShelterID)
	}

	pet, err := s.pets.FindByID(ctx, in.PetID)
	if err != nil {
		return nil, fmt.Errorf("ペットの取得に失敗しました: %w", err)
	}
	if pet == nil {
		return nil, model.NewPetNotFoundError(in.PetID)
	}
	if pet.IsAdopted {
		return nil, model.NewPetAlreadyAdoptedError(pet.ID)
	}
	if pet.ShelterID != shelter.ID {
		return nil, model.NewValidationError(fmt.Sprintf("pet %d does not belong to shelter %d", pet.ID, shelter.ID))
	}

	req := &model.AdoptionRequest{
		ShelterID: in.ShelterID,
		PersonID:  in.PersonID,
		PetID:     in.PetID,
		State:     model.AdoptionStateSent,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("譲渡申請の作成に失敗しました: %w", err)
	}

	s.logger.Info("adoption request created",
		slog.Int64("adoption_request_id", req.ID),
		slog.Int64("pet_id", req.PetID),
		slog.String("performed_by", performedBy),
	)
	return req, nil
}

// UpdateState は譲渡申請の状態を遷移させる。
// APPROVEDへの遷移ではペットを譲渡済みにする。同じペットへの他の申請は変更しない。
func (s *Service) UpdateState(ctx context.Context, performedBy string, id int64, next model.AdoptionState) (*model.AdoptionRequest, error) {
	if !next.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("unknown state: %q", next))
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := req.State
	if !from.CanTransitionTo(next) {
		return nil, model.NewInvalidStateTransitionError(from, next)
	}

	transition := func(ctx context.Context) error {
		if err := s.requests.UpdateState(ctx, id, from, next); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return s.lostRace(ctx, id, from, next)
			}
			return fmt.Errorf("譲渡申請の更新に失敗しました: %w", err)
		}
		return nil
	}

	if next == model.AdoptionStateApproved {
		err = s.adopter.MarkAdopted(ctx, performedBy, req.PetID, transition)
	} else {
		err = s.tx.WithinTx(ctx, transition)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("adoption request state changed",
		slog.Int64("adoption_request_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(next)),
		slog.String("performed_by", performedBy),
	)
	req.State = next
	return req, nil
}

// lostRace は条件付き更新が0件だった理由を判定する。
func (s *Service) lostRace(ctx context.Context, id int64, from, next model.AdoptionState) error {
	current, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("譲渡申請の取得に失敗しました: %w", err)
	}
	if current == nil {
		return model.NewAdoptionRequestNotFoundError(id)
	}
	if current.State != from {
		return model.NewInvalidStateTransitionError(current.State, next)
	}
	return model.NewAdoptionRequestNotFoundError(id)
}

// Get は譲渡申請を返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.AdoptionRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("譲渡申請の取得に失敗しました: %w", err)
	}
	if req == nil {
		return nil, model.NewAdoptionRequestNotFoundError(id)
	}
	return req, nil
}

// List は全譲渡申請を返す。
func (s *Service) List(ctx context.Context) ([]*model.AdoptionRequest, error) {
	reqs, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("譲渡申請一覧の取得に失敗しました: %w", err)
	}
	if reqs == nil {
		reqs = []*model.AdoptionRequest{}
	}
	return reqs, nil
}

// Delete は譲渡申請を論理削除する。
func (s *Service) Delete(ctx context.Context, performedBy string, id int64) error {
	if err := s.requests.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewAdoptionRequestNotFoundError(id)
		}
		return fmt.Errorf("譲渡申請の削除に失敗しました: %w", err)
	}
	s.logger.Info("adoption request deleted",
		slog.Int64("adoption_request_id", id),
		slog.String("performed_by", performedBy),
	)
	return nil
}

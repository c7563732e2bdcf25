// Package person は人物の登録、プロフィール管理、ロール変更、シェルター所属を扱う。
package person

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/furcode/internal/auth"
	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/repository"
)

// ShelterCreator はシェルターを登録する。
type ShelterCreator interface {
	Create(ctx context.Context, performedBy string, sh *model.Shelter) (*model.Shelter, error)
}

// RegisterInput は人物登録の入力。
type RegisterInput struct {
	FirstName  string
	LastName   string
	NIF        *int64
	Email      string
	Password   string
	Address1   string
	Address2   string
	PostalCode string
	CellPhone  *int64
}

// UpdateInput はプロフィールの部分更新の入力。nilの項目は変更しない。
// メールアドレスはトークンのsubjectのため変更できない。
type UpdateInput struct {
	FirstName  *string
	LastName   *string
	NIF        *int64
	Address1   *string
	Address2   *string
	PostalCode *string
	CellPhone  *int64
}

// Service は人物のサービス層。
type Service struct {
	persons   repository.PersonRepository
	shelters  repository.ShelterRepository
	donations repository.DonationRepository
	creator   ShelterCreator
	tx        database.Transactor
	hash      func(password string) (string, error)
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(
	persons repository.PersonRepository,
	shelters repository.ShelterRepository,
	donations repository.DonationRepository,
	creator ShelterCreator,
	tx database.Transactor,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		persons:   persons,
		shelters:  shelters,
		donations: donations,
		creator:   creator,
		tx:        tx,
		hash:      auth.HashPassword,
		logger:    logger,
	}
}

// Register は人物をUSERロールで登録する。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Person, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, model.NewValidationError("email is required")
	}
	if len(in.Password) < 8 {
		return nil, model.NewValidationError("password must be at least 8 characters")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, model.NewValidationError(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	existing, err := s.persons.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("人物の検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError()
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	p := &model.Person{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		NIF:          in.NIF,
		Email:        email,
		PasswordHash: hash,
		Address1:     strings.TrimSpace(in.Address1),
		Address2:     strings.TrimSpace(in.Address2),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		CellPhone:    in.CellPhone,
		Role:         model.RoleUser,
	}
	// 同時登録はリポジトリの一意制約でDUPLICATE_EMAILになる
	if err := s.persons.Create(ctx, p); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, fmt.Errorf("人物の登録に失敗しました: %w", err)
	}

	s.logger.Info("person registered", slog.Int64("person_id", p.ID))
	return p, nil
}

// Get は人物を返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Person, error) {
	p, err := s.persons.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("人物の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPersonNotFoundError(id)
	}
	return p, nil
}

// List は全人物を返す。
func (s *Service) List(ctx context.Context) ([]*model.Person, error) {
	list, err := s.persons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("人物一覧の取得に失敗しました: %w", err)
	}
	if list == nil {
		list = []*model.Person{}
	}
	return list, nil
}

// Update はプロフィールを部分更新する。
func (s *Service) Update(ctx context.Context, performedBy string, id int64, in UpdateInput) (*model.Person, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		p.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		p.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.NIF != nil {
		p.NIF = in.NIF
	}
	if in.Address1 != nil {
		p.Address1 = strings.TrimSpace(*in.Address1)
	}
	if in.Address2 != nil {
		p.Address2 = strings.TrimSpace(*in.Address2)
	}
	if in.PostalCode != nil {
		p.PostalCode = strings.TrimSpace(*in.PostalCode)
	}
	if in.CellPhone != nil {
		p.CellPhone = in.CellPhone
	}
	if p.FirstName == "" || p.LastName == "" {
		return nil, model.NewValidationError("firstName and lastName must not be empty")
	}

	if err := s.persons.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewPersonNotFoundError(id)
		}
		return nil, fmt.Errorf("人物の更新に失敗しました: %w", err)
	}
	s.logger.Info("person updated",
		slog.Int64("person_id", id),
		slog.String("performed_by", performedBy),
	)
	return p, nil
}

// SetRole は人物のロールを変更する。
func (s *Service) SetRole(ctx context.Context, performedBy string, id int64, role model.Role) (*model.Person, error) {
	if !role.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("unknown role: %q", role))
	}
	if err := s.persons.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewPersonNotFoundError(id)
		}
		return nil, fmt.Errorf("ロールの変更に失敗しました: %w", err)
	}
	s.logger.Info("person role changed",
		slog.Int64("person_id", id),
		slog.String("role", string(role)),
		slog.String("performed_by", performedBy),
	)
	return s.Get(ctx, id)
}

// Delete は人物を論理削除する。削除された人物のトークンは以後匿名として扱われる。
func (s *Service) Delete(ctx context.Context, performedBy string, id int64) error {
	if err := s.persons.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewPersonNotFoundError(id)
		}
		return fmt.Errorf("人物の削除に失敗しました: %w", err)
	}
	s.logger.Info("person deleted",
		slog.Int64("person_id", id),
		slog.String("performed_by", performedBy),
	)
	return nil
}

// CreateShelter はシェルターを登録し、人物をその所属にする。ロールは変更しない。
func (s *Service) CreateShelter(ctx context.Context, performedBy string, personID int64, sh *model.Shelter) (*model.Shelter, error) {
	var created *model.Shelter
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Get(ctx, personID); err != nil {
			return err
		}
		var err error
		created, err = s.creator.Create(ctx, performedBy, sh)
		if err != nil {
			return err
		}
		if err := s.persons.UpdateShelter(ctx, personID, created.ID); err != nil {
			return fmt.Errorf("所属シェルターの更新に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddToShelter は人物を既存シェルターの所属にする。
func (s *Service) AddToShelter(ctx context.Context, performedBy string, personID, shelterID int64) (*model.Person, error) {
	sh, err := s.shelters.FindByID(ctx, shelterID)
	if err != nil {
		return nil, fmt.Errorf("シェルターの取得に失敗しました: %w", err)
	}
	if sh == nil {
		return nil, model.NewShelterNotFoundError(shelterID)
	}
	if err := s.persons.UpdateShelter(ctx, personID, shelterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewPersonNotFoundError(personID)
		}
		return nil, fmt.Errorf("所属シェルターの更新に失敗しました: %w", err)
	}
	s.logger.Info("person added to shelter",
		slog.Int64("person_id", personID),
		slog.Int64("shelter_id", shelterID),
		slog.String("performed_by", performedBy),
	)
	return s.Get(ctx, personID)
}

// ListDonations は人物の寄付一覧を返す。
func (s *Service) ListDonations(ctx context.Context, personID int64) ([]*model.Donation, error) {
	if _, err := s.Get(ctx, personID); err != nil {
		return nil, err
	}
	donations, err := s.donations.ListByPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("寄付一覧の取得に失敗しました: %w", err)
	}
	if donations == nil {
		donations = []*model.Donation{}
	}
	return donations, nil
}

// ListInShelter はシェルターに所属する人物を返す。
func (s *Service) ListInShelter(ctx context.Context, shelterID int64) ([]*model.Person, error) {
	sh, err := s.shelters.FindByID(ctx, shelterID)
	if err != nil {
		return nil, fmt.Errorf("シェルターの取得に失敗しました: %w", err)
	}
	if sh == nil {
		return nil, model.NewShelterNotFoundError(shelterID)
	}
	list, err := s.persons.ListByShelter(ctx, shelterID)
	if err != nil {
		return nil, fmt.Errorf("人物一覧の取得に失敗しました: %w", err)
	}
	if list == nil {
		list = []*model.Person{}
	}
	return list, nil
}

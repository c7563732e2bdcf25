package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
)

const petColumns = `id, name, pet_type_id, shelter_id, is_adopted, is_vaccinated, size, weight,
	color, date_of_birth, observations, created_at, updated_at, deleted_at`

// PostgresPetRepo はPostgreSQLを使用したペットリポジトリ。
type PostgresPetRepo struct {
	db *sql.DB
}

// NewPostgresPetRepo はPostgresPetRepoを生成する。
func NewPostgresPetRepo(db *sql.DB) *PostgresPetRepo {
	return &PostgresPetRepo{db: db}
}

func scanPet(row rowScanner) (*model.Pet, error) {
	p := &model.Pet{}
	var deletedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.Name, &p.PetTypeID, &p.ShelterID, &p.IsAdopted, &p.IsVaccinated,
		&p.Size, &p.Weight, &p.Color, &p.DateOfBirth, &p.Observations,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.DeletedAt = timePtr(deletedAt)
	return p, nil
}

func (r *PostgresPetRepo) findOne(ctx context.Context, q string, id int64) (*model.Pet, error) {
	p, err := scanPet(database.Conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pet: %w", err)
	}
	return p, nil
}

// FindByID は論理削除されていないペットを取得する。見つからない場合はnilを返す。
func (r *PostgresPetRepo) FindByID(ctx context.Context, id int64) (*model.Pet, error) {
	return r.findOne(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1 AND deleted_at IS NULL`, id)
}

// FindDeletedByID は論理削除済みのペットを取得する。見つからない場合はnilを返す。
func (r *PostgresPetRepo) FindDeletedByID(ctx context.Context, id int64) (*model.Pet, error) {
	return r.findOne(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1 AND deleted_at IS NOT NULL`, id)
}

// FindForUpdate は削除状態に関わらずペットを取得し、行ロックを取得する。
func (r *PostgresPetRepo) FindForUpdate(ctx context.Context, id int64) (*model.Pet, error) {
	return r.findOne(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1 FOR UPDATE`, id)
}

// ListActive は論理削除されていない全ペットをID昇順で返す。
func (r *PostgresPetRepo) ListActive(ctx context.Context) ([]*model.Pet, error) {
	return r.list(ctx, `SELECT `+petColumns+` FROM pets WHERE deleted_at IS NULL ORDER BY id`)
}

// ListDeleted は論理削除済みの全ペットを返す。
func (r *PostgresPetRepo) ListDeleted(ctx context.Context) ([]*model.Pet, error) {
	return r.list(ctx, `SELECT `+petColumns+` FROM pets WHERE deleted_at IS NOT NULL ORDER BY id`)
}

func (r *PostgresPetRepo) list(ctx context.Context, q string) ([]*model.Pet, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	defer rows.Close()

	var pets []*model.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pets: %w", err)
	}
	return pets, nil
}

// Create はペットを作成し、採番されたIDとタイムスタンプを設定する。
func (r *PostgresPetRepo) Create(ctx context.Context, p *model.Pet) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO pets (name, pet_type_id, shelter_id, is_adopted, is_vaccinated, size, weight,
		                   color, date_of_birth, observations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.PetTypeID, p.ShelterID, p.IsAdopted, p.IsVaccinated, p.Size, p.Weight,
		p.Color, p.DateOfBirth, p.Observations,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pet: %w", err)
	}
	return nil
}

// Update はペット情報を上書き更新する。
func (r *PostgresPetRepo) Update(ctx context.Context, p *model.Pet) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`UPDATE pets SET
		    name = $2, pet_type_id = $3, shelter_id = $4, is_adopted = $5, is_vaccinated = $6,
		    size = $7, weight = $8, color = $9, date_of_birth = $10, observations = $11,
		    updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING updated_at`,
		p.ID, p.Name, p.PetTypeID, p.ShelterID, p.IsAdopted, p.IsVaccinated,
		p.Size, p.Weight, p.Color, p.DateOfBirth, p.Observations,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	return nil
}

// SoftDelete はペットを論理削除する。
func (r *PostgresPetRepo) SoftDelete(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE pets SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	return requireAffected(result)
}

// Restore は論理削除済みのペットを復元する。
func (r *PostgresPetRepo) Restore(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE pets SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to restore pet: %w", err)
	}
	return requireAffected(result)
}

// compile-time interface check
var _ PetRepository = (*PostgresPetRepo)(nil)

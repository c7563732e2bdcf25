package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
)

// PostgresPetTypeRepo はPostgreSQLを使用したペット種別リポジトリ。
type PostgresPetTypeRepo struct {
	db *sql.DB
}

// NewPostgresPetTypeRepo はPostgresPetTypeRepoを生成する。
func NewPostgresPetTypeRepo(db *sql.DB) *PostgresPetTypeRepo {
	return &PostgresPetTypeRepo{db: db}
}

// FindByID は指定IDのペット種別を取得する。見つからない場合はnilを返す。
func (r *PostgresPetTypeRepo) FindByID(ctx context.Context, id int64) (*model.PetType, error) {
	pt := &model.PetType{}
	var breedID sql.NullInt64
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, species, breed_id FROM pet_types WHERE id = $1`, id,
	).Scan(&pt.ID, &pt.Species, &breedID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pet type: %w", err)
	}
	pt.BreedID = int64Ptr(breedID)
	return pt, nil
}

// Create はペット種別を作成する。
func (r *PostgresPetTypeRepo) Create(ctx context.Context, pt *model.PetType) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO pet_types (species, breed_id) VALUES ($1, $2) RETURNING id`,
		pt.Species, nullInt64(pt.BreedID),
	).Scan(&pt.ID)
	if err != nil {
		return fmt.Errorf("failed to insert pet type: %w", err)
	}
	return nil
}

// UpsertBreed は外部APIの犬種IDをキーに犬種をUPSERTし、IDを設定する。
func (r *PostgresPetTypeRepo) UpsertBreed(ctx context.Context, b *model.PetBreed) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO pet_breeds (external_api_id, name, description)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (external_api_id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
		 RETURNING id`,
		b.ExternalAPIID, b.Name, b.Description,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert pet breed: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PetTypeRepository = (*PostgresPetTypeRepo)(nil)

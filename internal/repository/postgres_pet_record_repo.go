package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
)

// PostgresPetRecordRepo はPostgreSQLを使用したペット記録リポジトリ。
type PostgresPetRecordRepo struct {
	db *sql.DB
}

// NewPostgresPetRecordRepo はPostgresPetRecordRepoを生成する。
func NewPostgresPetRecordRepo(db *sql.DB) *PostgresPetRecordRepo {
	return &PostgresPetRecordRepo{db: db}
}

// Create は記録を作成し、採番されたIDを設定する。
func (r *PostgresPetRecordRepo) Create(ctx context.Context, rec *model.PetRecord) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO pet_records (pet_id, is_vaccinated, intervention, observation, record_date, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		rec.PetID, rec.IsVaccinated, rec.Intervention, rec.Observation, rec.Date, rec.CreatedBy,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pet record: %w", err)
	}
	return nil
}

// ListByPetID は指定ペットの記録を日付昇順で返す。
func (r *PostgresPetRecordRepo) ListByPetID(ctx context.Context, petID int64) ([]*model.PetRecord, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, pet_id, is_vaccinated, intervention, observation, record_date, created_by, created_at, deleted_at
		 FROM pet_records WHERE pet_id = $1 AND deleted_at IS NULL
		 ORDER BY record_date, id`,
		petID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pet records: %w", err)
	}
	defer rows.Close()

	var records []*model.PetRecord
	for rows.Next() {
		rec := &model.PetRecord{}
		var deletedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.PetID, &rec.IsVaccinated, &rec.Intervention,
			&rec.Observation, &rec.Date, &rec.CreatedBy, &rec.CreatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pet record: %w", err)
		}
		rec.DeletedAt = timePtr(deletedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pet records: %w", err)
	}
	return records, nil
}

// compile-time interface check
var _ PetRecordRepository = (*PostgresPetRecordRepo)(nil)

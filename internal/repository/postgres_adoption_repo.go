package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
)

const adoptionColumns = `id, shelter_id, person_id, pet_id, state, created_at, updated_at, deleted_at`

// PostgresAdoptionRequestRepo はPostgreSQLを使用した譲渡申請リポジトリ。
type PostgresAdoptionRequestRepo struct {
	db *sql.DB
}

// NewPostgresAdoptionRequestRepo はPostgresAdoptionRequestRepoを生成する。
func NewPostgresAdoptionRequestRepo(db *sql.DB) *PostgresAdoptionRequestRepo {
	return &PostgresAdoptionRequestRepo{db: db}
}

func scanAdoptionRequest(row rowScanner) (*model.AdoptionRequest, error) {
	a := &model.AdoptionRequest{}
	var deletedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.ShelterID, &a.PersonID, &a.PetID, &a.State,
		&a.CreatedAt, &a.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	a.DeletedAt = timePtr(deletedAt)
	return a, nil
}

// FindByID は指定IDの譲渡申請を取得する。見つからない場合はnilを返す。
func (r *PostgresAdoptionRequestRepo) FindByID(ctx context.Context, id int64) (*model.AdoptionRequest, error) {
	a, err := scanAdoptionRequest(database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+adoptionColumns+` FROM adoption_requests WHERE id = $1 AND deleted_at IS NULL`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find adoption request: %w", err)
	}
	return a, nil
}

// List は論理削除されていない全譲渡申請を返す。
func (r *PostgresAdoptionRequestRepo) List(ctx context.Context) ([]*model.AdoptionRequest, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+adoptionColumns+` FROM adoption_requests WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list adoption requests: %w", err)
	}
	defer rows.Close()

	var reqs []*model.AdoptionRequest
	for rows.Next() {
		a, err := scanAdoptionRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adoption request: %w", err)
		}
		reqs = append(reqs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate adoption requests: %w", err)
	}
	return reqs, nil
}

// Create は譲渡申請を作成する。
func (r *PostgresAdoptionRequestRepo) Create(ctx context.Context, a *model.AdoptionRequest) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO adoption_requests (shelter_id, person_id, pet_id, state)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.ShelterID, a.PersonID, a.PetID, a.State,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert adoption request: %w", err)
	}
	return nil
}

// UpdateState は現在の状態がfromである場合に限り、譲渡申請の状態をtoに更新する。
func (r *PostgresAdoptionRequestRepo) UpdateState(ctx context.Context, id int64, from, to model.AdoptionState) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE adoption_requests SET state = $3, updated_at = NOW()
		 WHERE id = $1 AND state = $2 AND deleted_at IS NULL`,
		id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update adoption request state: %w", err)
	}
	return requireAffected(result)
}

// SoftDelete は譲渡申請を論理削除する。
func (r *PostgresAdoptionRequestRepo) SoftDelete(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE adoption_requests SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete adoption request: %w", err)
	}
	return requireAffected(result)
}

// compile-time interface check
var _ AdoptionRequestRepository = (*PostgresAdoptionRequestRepo)(nil)

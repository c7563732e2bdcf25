package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
)

// PostgresFavoriteRepo はPostgreSQLを使用したお気に入りリポジトリ。
type PostgresFavoriteRepo struct {
	db *sql.DB
}

// NewPostgresFavoriteRepo はPostgresFavoriteRepoを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresFavoriteRepo {
	return &PostgresFavoriteRepo{db: db}
}

// Find は人物とペットの組でお気に入りを取得する。見つからない場合はnilを返す。
func (r *PostgresFavoriteRepo) Find(ctx context.Context, personID, petID int64) (*model.Favorite, error) {
	f := &model.Favorite{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT person_id, pet_id, created_at FROM favorites WHERE person_id = $1 AND pet_id = $2`,
		personID, petID,
	).Scan(&f.PersonID, &f.PetID, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find favorite: %w", err)
	}
	return f, nil
}

// ListByPerson は人物のお気に入りを登録日時の新しい順に返す。
func (r *PostgresFavoriteRepo) ListByPerson(ctx context.Context, personID int64) ([]*model.Favorite, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT person_id, pet_id, created_at FROM favorites WHERE person_id = $1 ORDER BY created_at DESC`,
		personID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favs []*model.Favorite
	for rows.Next() {
		f := &model.Favorite{}
		if err := rows.Scan(&f.PersonID, &f.PetID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return favs, nil
}

// Create はお気に入りを登録する。
func (r *PostgresFavoriteRepo) Create(ctx context.Context, f *model.Favorite) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO favorites (person_id, pet_id) VALUES ($1, $2) RETURNING created_at`,
		f.PersonID, f.PetID,
	).Scan(&f.CreatedAt)
	if isUniqueViolation(err) {
		return model.NewDuplicateFavoriteError()
	}
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// Delete はお気に入りを削除する。
func (r *PostgresFavoriteRepo) Delete(ctx context.Context, personID, petID int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM favorites WHERE person_id = $1 AND pet_id = $2`, personID, petID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return requireAffected(result)
}

// compile-time interface check
var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
)

const shelterColumns = `id, name, vat, email, address1, address2, postal_code, phone, size,
	is_active, creation_date, description, facebook_url, instagram_url, web_page_url, deleted_at`

// PostgresShelterRepo はPostgreSQLを使用したシェルターリポジトリ。
type PostgresShelterRepo struct {
	db *sql.DB
}

// NewPostgresShelterRepo はPostgresShelterRepoを生成する。
func NewPostgresShelterRepo(db *sql.DB) *PostgresShelterRepo {
	return &PostgresShelterRepo{db: db}
}

func scanShelter(row rowScanner) (*model.Shelter, error) {
	s := &model.Shelter{}
	var description, facebook, instagram, webPage sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.Name, &s.VAT, &s.Email, &s.Address1, &s.Address2, &s.PostalCode,
		&s.Phone, &s.Size, &s.IsActive, &s.CreationDate,
		&description, &facebook, &instagram, &webPage, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Description = nullStringValue(description)
	s.FacebookURL = nullStringValue(facebook)
	s.InstagramURL = nullStringValue(instagram)
	s.WebPageURL = nullStringValue(webPage)
	s.DeletedAt = timePtr(deletedAt)
	return s, nil
}

// FindByID は指定IDのシェルターを取得する。見つからない場合はnilを返す。
func (r *PostgresShelterRepo) FindByID(ctx context.Context, id int64) (*model.Shelter, error) {
	s, err := scanShelter(database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+shelterColumns+` FROM shelters WHERE id = $1 AND deleted_at IS NULL`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shelter by ID: %w", err)
	}
	return s, nil
}

// List は論理削除されていない全シェルターを返す。
func (r *PostgresShelterRepo) List(ctx context.Context) ([]*model.Shelter, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+shelterColumns+` FROM shelters WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shelters: %w", err)
	}
	defer rows.Close()

	var shelters []*model.Shelter
	for rows.Next() {
		s, err := scanShelter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shelter: %w", err)
		}
		shelters = append(shelters, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shelters: %w", err)
	}
	return shelters, nil
}

// Create はシェルターを作成し、採番されたIDを設定する。
func (r *PostgresShelterRepo) Create(ctx context.Context, s *model.Shelter) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO shelters (name, vat, email, address1, address2, postal_code, phone, size,
		                       is_active, creation_date, description, facebook_url, instagram_url, web_page_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		s.Name, s.VAT, s.Email, s.Address1, s.Address2, s.PostalCode, s.Phone, s.Size,
		s.IsActive, s.CreationDate, nullString(s.Description), nullString(s.FacebookURL),
		nullString(s.InstagramURL), nullString(s.WebPageURL),
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to insert shelter: %w", err)
	}
	return nil
}

// Update はシェルター情報を上書き更新する。
func (r *PostgresShelterRepo) Update(ctx context.Context, s *model.Shelter) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE shelters SET
		    name = $2, vat = $3, email = $4, address1 = $5, address2 = $6, postal_code = $7,
		    phone = $8, size = $9, is_active = $10, creation_date = $11, description = $12,
		    facebook_url = $13, instagram_url = $14, web_page_url = $15
		 WHERE id = $1 AND deleted_at IS NULL`,
		s.ID, s.Name, s.VAT, s.Email, s.Address1, s.Address2, s.PostalCode, s.Phone, s.Size,
		s.IsActive, s.CreationDate, nullString(s.Description), nullString(s.FacebookURL),
		nullString(s.InstagramURL), nullString(s.WebPageURL),
	)
	if err != nil {
		return fmt.Errorf("failed to update shelter: %w", err)
	}
	return requireAffected(result)
}

// SoftDelete はシェルターを論理削除する。
func (r *PostgresShelterRepo) SoftDelete(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE shelters SET deleted_at = NOW(), is_active = FALSE WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shelter: %w", err)
	}
	return requireAffected(result)
}

// compile-time interface check
var _ ShelterRepository = (*PostgresShelterRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
)

// PostgresDonationRepo はPostgreSQLを使用した寄付リポジトリ。
type PostgresDonationRepo struct {
	db *sql.DB
}

// NewPostgresDonationRepo はPostgresDonationRepoを生成する。
func NewPostgresDonationRepo(db *sql.DB) *PostgresDonationRepo {
	return &PostgresDonationRepo{db: db}
}

// FindByID は指定IDの寄付を取得する。見つからない場合はnilを返す。
func (r *PostgresDonationRepo) FindByID(ctx context.Context, id int64) (*model.Donation, error) {
	d := &model.Donation{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, person_id, shelter_id, total, donation_date FROM donations WHERE id = $1`, id,
	).Scan(&d.ID, &d.PersonID, &d.ShelterID, &d.Total, &d.DonationDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find donation: %w", err)
	}
	return d, nil
}

// Create は寄付を作成する。
func (r *PostgresDonationRepo) Create(ctx context.Context, d *model.Donation) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO donations (person_id, shelter_id, total) VALUES ($1, $2, $3)
		 RETURNING id, donation_date`,
		d.PersonID, d.ShelterID, d.Total,
	).Scan(&d.ID, &d.DonationDate)
	if err != nil {
		return fmt.Errorf("failed to insert donation: %w", err)
	}
	return nil
}

// ListByPerson は人物の寄付を返す。
func (r *PostgresDonationRepo) ListByPerson(ctx context.Context, personID int64) ([]*model.Donation, error) {
	return r.list(ctx, `WHERE person_id = $1`, personID)
}

// ListByShelter はシェルターへの寄付を返す。
func (r *PostgresDonationRepo) ListByShelter(ctx context.Context, shelterID int64) ([]*model.Donation, error) {
	return r.list(ctx, `WHERE shelter_id = $1`, shelterID)
}

func (r *PostgresDonationRepo) list(ctx context.Context, where string, id int64) ([]*model.Donation, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, person_id, shelter_id, total, donation_date FROM donations `+where+` ORDER BY donation_date DESC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []*model.Donation
	for rows.Next() {
		d := &model.Donation{}
		if err := rows.Scan(&d.ID, &d.PersonID, &d.ShelterID, &d.Total, &d.DonationDate); err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate donations: %w", err)
	}
	return donations, nil
}

// compile-time interface check
var _ DonationRepository = (*PostgresDonationRepo)(nil)

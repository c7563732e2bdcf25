package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/model"
)

const personColumns = `id, first_name, last_name, nif, email, password_hash, address1, address2,
	postal_code, cell_phone, role, shelter_id, created_at, deleted_at`

// PostgresPersonRepo はPostgreSQLを使用した人物リポジトリ。
type PostgresPersonRepo struct {
	db *sql.DB
}

// NewPostgresPersonRepo はPostgresPersonRepoを生成する。
func NewPostgresPersonRepo(db *sql.DB) *PostgresPersonRepo {
	return &PostgresPersonRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*model.Person, error) {
	p := &model.Person{}
	var nif, cellPhone, shelterID sql.NullInt64
	var address2 sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &nif, &p.Email, &p.PasswordHash,
		&p.Address1, &address2, &p.PostalCode, &cellPhone, &p.Role, &shelterID,
		&p.CreatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.NIF = int64Ptr(nif)
	p.CellPhone = int64Ptr(cellPhone)
	p.ShelterID = int64Ptr(shelterID)
	p.Address2 = nullStringValue(address2)
	p.DeletedAt = timePtr(deletedAt)
	return p, nil
}

// FindByID は指定IDの人物を取得する。見つからない場合はnilを返す。
func (r *PostgresPersonRepo) FindByID(ctx context.Context, id int64) (*model.Person, error) {
	p, err := scanPerson(database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1 AND deleted_at IS NULL`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find person by ID: %w", err)
	}
	return p, nil
}

// FindByEmail はメールアドレスで人物を検索する。見つからない場合はnilを返す。
func (r *PostgresPersonRepo) FindByEmail(ctx context.Context, email string) (*model.Person, error) {
	p, err := scanPerson(database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find person by email: %w", err)
	}
	return p, nil
}

// List は全人物をID昇順で返す。
func (r *PostgresPersonRepo) List(ctx context.Context) ([]*model.Person, error) {
	return r.query(ctx, `SELECT `+personColumns+` FROM persons WHERE deleted_at IS NULL ORDER BY id`)
}

// ListByShelter は指定シェルターに所属する人物を返す。
func (r *PostgresPersonRepo) ListByShelter(ctx context.Context, shelterID int64) ([]*model.Person, error) {
	return r.query(ctx,
		`SELECT `+personColumns+` FROM persons WHERE shelter_id = $1 AND deleted_at IS NULL ORDER BY id`,
		shelterID)
}

func (r *PostgresPersonRepo) query(ctx context.Context, q string, args ...any) ([]*model.Person, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []*model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}
	return persons, nil
}

// Create は人物を作成し、採番されたIDとcreated_atを設定する。
func (r *PostgresPersonRepo) Create(ctx context.Context, p *model.Person) error {
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO persons (first_name, last_name, nif, email, password_hash, address1, address2,
		                      postal_code, cell_phone, role, shelter_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		p.FirstName, p.LastName, nullInt64(p.NIF), p.Email, p.PasswordHash, p.Address1,
		p.Address2, p.PostalCode, nullInt64(p.CellPhone), p.Role, nullInt64(p.ShelterID),
	).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err) {
		return model.NewDuplicateEmailError()
	}
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// Update は人物のプロフィール項目を更新する。
func (r *PostgresPersonRepo) Update(ctx context.Context, p *model.Person) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE persons SET
		    first_name = $2, last_name = $3, nif = $4, email = $5, password_hash = $6,
		    address1 = $7, address2 = $8, postal_code = $9, cell_phone = $10
		 WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.FirstName, p.LastName, nullInt64(p.NIF), p.Email, p.PasswordHash,
		p.Address1, p.Address2, p.PostalCode, nullInt64(p.CellPhone),
	)
	if isUniqueViolation(err) {
		return model.NewDuplicateEmailError()
	}
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return requireAffected(result)
}

// UpdateRole は人物のロールを更新する。
func (r *PostgresPersonRepo) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE persons SET role = $2 WHERE id = $1 AND deleted_at IS NULL`, id, role)
	if err != nil {
		return fmt.Errorf("failed to update person role: %w", err)
	}
	return requireAffected(result)
}

// UpdateShelter は人物の所属シェルターを更新する。
func (r *PostgresPersonRepo) UpdateShelter(ctx context.Context, id, shelterID int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE persons SET shelter_id = $2 WHERE id = $1 AND deleted_at IS NULL`, id, shelterID)
	if err != nil {
		return fmt.Errorf("failed to update person shelter: %w", err)
	}
	return requireAffected(result)
}

// SoftDelete は人物を論理削除する。
func (r *PostgresPersonRepo) SoftDelete(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE persons SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return requireAffected(result)
}

// compile-time interface check
var _ PersonRepository = (*PostgresPersonRepo)(nil)

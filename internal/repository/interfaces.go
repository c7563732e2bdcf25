// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/furcode/internal/model"
)

// ErrNotFound は更新・削除対象の行が存在しない場合に返される。
var ErrNotFound = errors.New("repository: row not found")

// PersonRepository は人物データの永続化インターフェース。
// 検索系メソッドは論理削除済みの人物を返さない。
type PersonRepository interface {
	// FindByID は指定IDの人物を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Person, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）で人物を検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Person, error)

	// List は全人物をID昇順で返す。
	List(ctx context.Context) ([]*model.Person, error)

	// ListByShelter は指定シェルターに所属する人物を返す。
	ListByShelter(ctx context.Context, shelterID int64) ([]*model.Person, error)

	// Create は人物を作成し、採番されたIDとcreated_atを設定する。
	// メールアドレスが重複している場合は*model.APIError（DUPLICATE_EMAIL）を返す。
	Create(ctx context.Context, person *model.Person) error

	// Update は人物のプロフィール項目を更新する。ロールと所属は変更しない。
	Update(ctx context.Context, person *model.Person) error

	// UpdateRole は人物のロールを更新する。
	UpdateRole(ctx context.Context, id int64, role model.Role) error

	// UpdateShelter は人物の所属シェルターを更新する。
	UpdateShelter(ctx context.Context, id, shelterID int64) error

	// SoftDelete は人物を論理削除する。
	SoftDelete(ctx context.Context, id int64) error
}

// ShelterRepository はシェルターデータの永続化インターフェース。
type ShelterRepository interface {
	// FindByID は指定IDのシェルターを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Shelter, error)

	// List は論理削除されていない全シェルターを返す。
	List(ctx context.Context) ([]*model.Shelter, error)

	// Create はシェルターを作成し、採番されたIDを設定する。
	Create(ctx context.Context, shelter *model.Shelter) error

	// Update はシェルター情報を上書き更新する。
	Update(ctx context.Context, shelter *model.Shelter) error

	// SoftDelete はシェルターを論理削除する。
	SoftDelete(ctx context.Context, id int64) error
}

// PetRepository はペットデータの永続化インターフェース。
type PetRepository interface {
	// FindByID は論理削除されていないペットを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Pet, error)

	// FindDeletedByID は論理削除済みのペットを取得する。見つからない場合はnilを返す。
	FindDeletedByID(ctx context.Context, id int64) (*model.Pet, error)

	// FindForUpdate は削除状態に関わらずペットを取得し、トランザクション終了まで行ロックを保持する。
	// 見つからない場合はnilを返す。トランザクション内で呼び出すこと。
	FindForUpdate(ctx context.Context, id int64) (*model.Pet, error)

	// ListActive は論理削除されていない全ペットをID昇順で返す。
	ListActive(ctx context.Context) ([]*model.Pet, error)

	// ListDeleted は論理削除済みの全ペットを返す。
	ListDeleted(ctx context.Context) ([]*model.Pet, error)

	// Create はペットを作成し、採番されたIDとタイムスタンプを設定する。
	Create(ctx context.Context, pet *model.Pet) error

	// Update はペット情報を上書き更新する。
	Update(ctx context.Context, pet *model.Pet) error

	// SoftDelete はペットを論理削除する。
	SoftDelete(ctx context.Context, id int64) error

	// Restore は論理削除済みのペットを復元する。
	Restore(ctx context.Context, id int64) error
}

// PetRecordRepository はペット記録の永続化インターフェース。
type PetRecordRepository interface {
	// Create は記録を作成し、採番されたIDを設定する。
	Create(ctx context.Context, record *model.PetRecord) error

	// ListByPetID は指定ペットの記録を日付昇順で返す。
	ListByPetID(ctx context.Context, petID int64) ([]*model.PetRecord, error)
}

// PetTypeRepository はペット種別と犬種の永続化インターフェース。
type PetTypeRepository interface {
	// FindByID は指定IDのペット種別を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.PetType, error)

	// Create はペット種別を作成する。
	Create(ctx context.Context, petType *model.PetType) error

	// UpsertBreed は外部APIの犬種IDをキーに犬種をUPSERTし、IDを設定する。
	UpsertBreed(ctx context.Context, breed *model.PetBreed) error
}

// AdoptionRequestRepository は譲渡申請の永続化インターフェース。
type AdoptionRequestRepository interface {
	// FindByID は指定IDの譲渡申請を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.AdoptionRequest, error)

	// List は論理削除されていない全譲渡申請を返す。
	List(ctx context.Context) ([]*model.AdoptionRequest, error)

	// Create は譲渡申請を作成する。
	Create(ctx context.Context, req *model.AdoptionRequest) error

	// UpdateState は現在の状態がfromの場合に限りtoへ更新する。
	// 該当行が無い（削除済み、または他の更新が先行した）場合はErrNotFoundを返す。
	UpdateState(ctx context.Context, id int64, from, to model.AdoptionState) error

	// SoftDelete は譲渡申請を論理削除する。
	SoftDelete(ctx context.Context, id int64) error
}

// FavoriteRepository はお気に入りの永続化インターフェース。
type FavoriteRepository interface {
	// Find は人物とペットの組でお気に入りを取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, personID, petID int64) (*model.Favorite, error)

	// ListByPerson は人物のお気に入りを登録日時の新しい順に返す。
	ListByPerson(ctx context.Context, personID int64) ([]*model.Favorite, error)

	// Create はお気に入りを登録する。登録済みの場合は*model.APIError（DUPLICATE_FAVORITE）を返す。
	Create(ctx context.Context, fav *model.Favorite) error

	// Delete はお気に入りを削除する。
	Delete(ctx context.Context, personID, petID int64) error
}

// DonationRepository は寄付の永続化インターフェース。
type DonationRepository interface {
	// FindByID は指定IDの寄付を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Donation, error)

	// Create は寄付を作成する。
	Create(ctx context.Context, donation *model.Donation) error

	// ListByPerson は人物の寄付を返す。
	ListByPerson(ctx context.Context, personID int64) ([]*model.Donation, error)

	// ListByShelter はシェルターへの寄付を返す。
	ListByShelter(ctx context.Context, shelterID int64) ([]*model.Donation, error)
}

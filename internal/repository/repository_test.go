package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

// 各PostgreSQLリポジトリがインターフェースを満たすことを検証
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ PersonRepository = (*PostgresPersonRepo)(nil)
	var _ ShelterRepository = (*PostgresShelterRepo)(nil)
	var _ PetRepository = (*PostgresPetRepo)(nil)
	var _ PetRecordRepository = (*PostgresPetRecordRepo)(nil)
	var _ PetTypeRepository = (*PostgresPetTypeRepo)(nil)
	var _ AdoptionRequestRepository = (*PostgresAdoptionRequestRepo)(nil)
	var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
	var _ DonationRepository = (*PostgresDonationRepo)(nil)
}

// NewPostgresPersonRepoが正しく初期化されることを検証
func TestNewPostgresPersonRepo_Initializes(t *testing.T) {
	if repo := NewPostgresPersonRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", errors.Join(errors.New("insert"), &pq.Error{Code: "23505"}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNullHelpers(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("空文字列はNULLになるべき")
	}
	if got := nullStringValue(nullString("x")); got != "x" {
		t.Errorf("nullStringValue = %q, want %q", got, "x")
	}
	if n := nullInt64(nil); n.Valid {
		t.Error("nilはNULLになるべき")
	}
	v := int64(5)
	if p := int64Ptr(nullInt64(&v)); p == nil || *p != 5 {
		t.Errorf("int64Ptr roundtrip = %v", p)
	}
}

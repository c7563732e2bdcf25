package model

import (
	"fmt"
	"strings"
	"time"
)

// Role は人物のロールを表す。
// 階層を持たないフラットな列挙で、MANAGERはUSERの上位集合ではない。
type Role string

const (
	// RoleUser は一般利用者。
	RoleUser Role = "USER"
	// RoleManager はシェルター管理者。
	RoleManager Role = "MANAGER"
	// RoleAdmin はシステム管理者。
	RoleAdmin Role = "ADMIN"
)

// Valid は定義済みのロールかどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// ParseRole は文字列をロールに変換する。大文字小文字は区別しない。
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// Principal はリクエストに紐づく認証済みの主体を表す。
type Principal struct {
	PersonID int64
	Email    string
	Role     Role
}

// Person はシステムに登録された人物を表す。
// 認証情報（メールアドレス、パスワードハッシュ、ロール）を兼ねる。
type Person struct {
	ID           int64
	FirstName    string
	LastName     string
	NIF          *int64
	Email        string
	PasswordHash string
	Address1     string
	Address2     string
	PostalCode   string
	CellPhone    *int64
	Role         Role
	ShelterID    *int64
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// Principal は人物から認証主体を生成する。
func (p *Person) Principal() *Principal {
	return &Principal{PersonID: p.ID, Email: p.Email, Role: p.Role}
}

// IsDeleted は論理削除済みかどうかを返す。
func (p *Person) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Package auth はパスワードによるログインと、ベアラートークンからの認証主体の解決を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/token"
)

// ErrUnknownSubject はトークンのsubjectに対応する有効な人物が存在しないことを表す。
var ErrUnknownSubject = errors.New("auth: token subject does not match an active person")

// PersonFinder は認証に必要な人物検索のインターフェース。
// 論理削除済みの人物は返さないこと。
type PersonFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.Person, error)
}

// TokenService はトークンの発行と検証のインターフェース。
type TokenService interface {
	Issue(subject string) (*token.Token, error)
	Validate(tokenString string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	persons PersonFinder
	tokens  TokenService
}

// NewService はServiceを生成する。
func NewService(persons PersonFinder, tokens TokenService) *Service {
	return &Service{persons: persons, tokens: tokens}
}

// Login はメールアドレスとパスワードを検証し、トークンを発行する。
// 未登録・論理削除済み・パスワード不一致はいずれもINVALID_CREDENTIALSを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*token.Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.NewInvalidCredentialsError()
	}

	person, err := s.persons.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find person: %w", err)
	}
	if person == nil {
		// 登録有無でレスポンス時間が変わらないようにダミーハッシュと比較する
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed: password mismatch", slog.Int64("person_id", person.ID))
		return nil, model.NewInvalidCredentialsError()
	}

	tok, err := s.tokens.Issue(person.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("person logged in",
		slog.Int64("person_id", person.ID),
		slog.String("role", string(person.Role)),
	)
	return tok, nil
}

// Authenticate はトークンを検証し、subjectに対応する認証主体を返す。
// トークンが不正な場合はtoken.ErrInvalidTokenを、人物が存在しない場合はErrUnknownSubjectを返す。
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*model.Principal, error) {
	email, err := s.tokens.Validate(rawToken)
	if err != nil {
		return nil, err
	}

	person, err := s.persons.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	if person == nil || person.IsDeleted() {
		return nil, ErrUnknownSubject
	}
	return person.Principal(), nil
}

// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト数。
const MaxPasswordBytes = 72

// HashPassword はパスワードをbcryptでハッシュ化する。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue []byte
)

func dummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHashValue, _ = bcrypt.GenerateFromPassword([]byte("furcode-dummy-password"), bcrypt.DefaultCost)
	})
	return dummyHashValue
}

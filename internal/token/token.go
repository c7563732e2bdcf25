// Package token は署名付きの期限付きベアラートークンの発行と検証を提供する。
// トークンはステートレスで、署名と有効期限のみで有効性が決まる。
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken は署名不正・形式不正・期限切れのトークンを表す。
var ErrInvalidToken = errors.New("token: invalid token")

// DefaultTTL はトークンの既定の有効期間。
const DefaultTTL = 2 * time.Hour

// minSecretLength はHS256署名鍵の最小長（バイト）。
const minSecretLength = 32

// Config はトークンサービスの設定。
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Token は発行済みトークンを表す。
type Token struct {
	Value     string
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service はHS256署名のJWTを発行・検証する。
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewService はServiceを生成する。
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes", minSecretLength)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue はsubject（メールアドレス）を埋め込んだトークンを発行する。
func (s *Service) Issue(subject string) (*Token, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, errors.New("token subject must not be empty")
	}

	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)
	id := uuid.NewString()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{
		Value:     signed,
		Subject:   subject,
		ID:        id,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate はトークンの署名と有効期限を検証し、subjectを返す。
// 検証に失敗した場合はErrInvalidTokenをラップしたエラーを返す。
func (s *Service) Validate(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// TTL はトークンの有効期間を返す。
func (s *Service) TTL() time.Duration {
	return s.ttl
}

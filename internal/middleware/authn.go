// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/furcode/internal/auth"
	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/token"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var principalContextKey = contextKey("principal")

// Authenticator はBearerトークンからプリンシパルを解決するインターフェース。
// auth.Serviceの部分集合として定義する。
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*model.Principal, error)
}

// NewAuthenticationMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// プリンシパルをリクエストコンテキストに注入するミドルウェアを返す。
// トークンが無い、または無効な場合はリクエストを拒否せず匿名として処理を続ける。
// 拒否するかどうかは後段の認可ミドルウェアが判断する。
func NewAuthenticationMiddleware(authenticator Authenticator, logger *slog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := authenticator.Authenticate(r.Context(), raw)
			if err != nil {
				level := slog.LevelWarn
				reason := "invalid_token"
				switch {
				case errors.Is(err, auth.ErrUnknownSubject):
					reason = "unknown_subject"
				case !errors.Is(err, token.ErrInvalidToken):
					level = slog.LevelError
					reason = "lookup_failed"
				}
				logger.Log(r.Context(), level, "authentication degraded to anonymous",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// bearerToken はAuthorizationヘッダーからトークン文字列を取り出す。
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	raw := strings.TrimSpace(h[len(bearerPrefix):])
	return raw, raw != ""
}

// PrincipalFromContext はリクエストコンテキストからプリンシパルを取得する。
// 匿名リクエストの場合はnil, falseを返す。
func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*model.Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// ContextWithPrincipal はコンテキストにプリンシパルを注入する。
func ContextWithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/furcode/internal/authz"
	"github.com/hitoshi/furcode/internal/model"
)

// Decider は (method, path, principal) に対する認可判定を返す。
type Decider interface {
	Decide(method, path string, principal *model.Principal) authz.Decision
}

// DecisionRecorder は認可判定の結果を記録する。
type DecisionRecorder interface {
	RecordAuthzDecision(decision string)
}

// NewAuthorizationMiddleware は認証ミドルウェアの後段で認可ポリシーを適用する。
// 拒否時はハンドラーに到達させず、匿名なら401、ロール不足なら403を返す。
func NewAuthorizationMiddleware(policy Decider, recorder DecisionRecorder, logger *slog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFromContext(r.Context())
			decision := policy.Decide(r.Method, routingPath(r), principal)
			if recorder != nil {
				recorder.RecordAuthzDecision(decision.String())
			}

			switch decision {
			case authz.Permit:
				next.ServeHTTP(w, r)
			case authz.DenyUnauthenticated:
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
			default:
				logger.Warn("access denied",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("principal", principalEmail(principal)),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
			}
		})
	}
}

// routingPath はルーターがルーティングに使うのと同じパスを返す。
// エスケープ表現が既定と異なる場合、chiはRawPathでルーティングする。
func routingPath(r *http.Request) string {
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	return r.URL.Path
}

func principalEmail(p *model.Principal) string {
	if p == nil {
		return ""
	}
	return p.Email
}

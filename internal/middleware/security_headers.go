package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecurityHeadersConfig はセキュリティヘッダーミドルウェアの設定。
type SecurityHeadersConfig struct {
	// SSLRedirect はHTTPリクエストをHTTPSへリダイレクトするかどうか。本番環境でのみ有効にする。
	SSLRedirect bool
	// IsDevelopment がtrueの場合、AllowedHosts等の検査を無効化する。
	IsDevelopment bool
}

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware(cfg SecurityHeadersConfig) func(next http.Handler) http.Handler {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=()",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           cfg.SSLRedirect,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:            31536000,
		IsDevelopment:         cfg.IsDevelopment,
	})
	return s.Handler
}

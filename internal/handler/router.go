package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/furcode/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	Authenticator     middleware.Authenticator
	Policy            middleware.Decider
	DecisionRecorder  middleware.DecisionRecorder
	HTTPRecorder      middleware.HTTPRecorder
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	SecurityHeaders   middleware.SecurityHeadersConfig

	// 運用
	DB             Pinger
	MetricsHandler http.Handler

	// サービス
	AuthService     AuthServiceInterface
	PersonService   PersonServiceInterface
	ShelterService  ShelterServiceInterface
	PetService      PetServiceInterface
	PetTypeService  PetTypeServiceInterface
	BreedService    BreedServiceInterface
	AdoptionService AdoptionServiceInterface
	FavoriteService FavoriteServiceInterface
	DonationService DonationServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → CORS → Authentication → Logging
//	→ RateLimit(General) → Authorization
//
// 認可はルーティング前にパスとメソッドだけで判定する。
// ログインにはIP単位のレート制限を追加で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.SecurityHeaders))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewAuthenticationMiddleware(deps.Authenticator, logger))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.HTTPRecorder))
	r.Use(deps.RateLimiter.GeneralMiddleware())
	r.Use(middleware.NewAuthorizationMiddleware(deps.Policy, deps.DecisionRecorder, logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "ROUTE_NOT_FOUND", "message": "no route for " + r.URL.Path})
	})

	// --- 運用エンドポイント ---
	if deps.DB != nil {
		r.Get("/health", HealthHandler(deps.DB))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authHandler := NewAuthHandler(deps.AuthService)
	petHandler := NewPetHandler(deps.PetService, deps.PetTypeService)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/auth/login", authHandler.Login)

		r.Route("/person", NewPersonHandler(deps.PersonService).Routes)
		r.Route("/shelter", NewShelterHandler(deps.ShelterService).Routes)
		r.Route("/pet", petHandler.Routes)
		r.Post("/pet-type", petHandler.CreateType)
		r.Route("/breed", NewBreedHandler(deps.BreedService).Routes)
		r.Route("/adoption-request", NewAdoptionHandler(deps.AdoptionService).Routes)
		r.Route("/favorite", NewFavoriteHandler(deps.FavoriteService).Routes)
		r.Route("/donation", NewDonationHandler(deps.DonationService).Routes)
	})

	return r
}

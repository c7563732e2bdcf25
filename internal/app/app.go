package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/furcode/internal/adoption"
	"github.com/hitoshi/furcode/internal/auth"
	"github.com/hitoshi/furcode/internal/authz"
	"github.com/hitoshi/furcode/internal/cache"
	"github.com/hitoshi/furcode/internal/config"
	"github.com/hitoshi/furcode/internal/database"
	"github.com/hitoshi/furcode/internal/dogapi"
	"github.com/hitoshi/furcode/internal/donation"
	"github.com/hitoshi/furcode/internal/favorite"
	"github.com/hitoshi/furcode/internal/handler"
	"github.com/hitoshi/furcode/internal/logger"
	"github.com/hitoshi/furcode/internal/metrics"
	"github.com/hitoshi/furcode/internal/middleware"
	"github.com/hitoshi/furcode/internal/person"
	"github.com/hitoshi/furcode/internal/pet"
	"github.com/hitoshi/furcode/internal/repository"
	"github.com/hitoshi/furcode/internal/security"
	"github.com/hitoshi/furcode/internal/shelter"
	"github.com/hitoshi/furcode/internal/token"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再構成する
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetupDefault(w, level)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("env", cfg.AppEnv),
		slog.String("cache_backend", cfg.CacheBackend),
		slog.String("authz_default", cfg.AuthzDefault),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(context.Background(), db, 5*time.Second); err != nil {
		return err
	}

	slog.Info("database connection established")

	// 2. キャッシュストア
	store, closeStore, err := newCacheStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin))
	defer rl.Stop()

	router, err := buildRouter(cfg, db, store, rl, slog.Default())
	if err != nil {
		return err
	}

	// 3. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// buildRouter はリポジトリからハンドラーまでの依存関係を組み立てる。
func buildRouter(cfg *config.Config, db *sql.DB, store cache.Store, rl *middleware.RateLimiter, log *slog.Logger) (http.Handler, error) {
	if log == nil {
		log = slog.Default()
	}

	// 1. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// 2. リポジトリの初期化
	tx := database.NewTxManager(db)
	personRepo := repository.NewPostgresPersonRepo(db)
	shelterRepo := repository.NewPostgresShelterRepo(db)
	petRepo := repository.NewPostgresPetRepo(db)
	recordRepo := repository.NewPostgresPetRecordRepo(db)
	petTypeRepo := repository.NewPostgresPetTypeRepo(db)
	adoptionRepo := repository.NewPostgresAdoptionRequestRepo(db)
	favoriteRepo := repository.NewPostgresFavoriteRepo(db)
	donationRepo := repository.NewPostgresDonationRepo(db)

	// 3. キャッシュ
	cacheManager := cache.NewManager(store, cache.WithRecorder(collector), cache.WithLogger(log))

	// 4. 認証・認可
	tokens, err := token.NewService(token.Config{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	authService := auth.NewService(personRepo, tokens)

	def, err := authz.ParseDefaultDecision(cfg.AuthzDefault)
	if err != nil {
		return nil, err
	}
	policy, err := authz.NewPolicy(authz.DefaultRules(), def)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization policy: %w", err)
	}

	// 5. 外部犬種API
	guard := security.NewSSRFGuard()
	dogClient, err := dogapi.NewClient(cfg.DogAPIBaseURL,
		&http.Client{Timeout: cfg.DogAPITimeout},
		log,
		dogapi.WithSSRFGuard(guard, guard.NewSafeClient(cfg.DogAPITimeout)),
		dogapi.WithRecorder(collector),
	)
	if err != nil {
		return nil, err
	}

	// 6. ドメインサービスの初期化
	sanitizer := security.NewTextSanitizer()
	breedService := pet.NewBreedService(dogClient, cacheManager)
	petService := pet.NewService(petRepo, recordRepo, petTypeRepo, shelterRepo, tx, cacheManager, sanitizer, log)
	petTypeService := pet.NewTypeService(petTypeRepo, breedService, tx, log)
	shelterService := shelter.NewService(shelterRepo, donationRepo, sanitizer, log)
	personService := person.NewService(personRepo, shelterRepo, donationRepo, shelterService, tx, log)
	adoptionService := adoption.NewService(adoptionRepo, personRepo, shelterRepo, petRepo, petService, tx, log)
	favoriteService := favorite.NewService(favoriteRepo, personRepo, petRepo, log)
	donationService := donation.NewService(donationRepo, personRepo, shelterRepo, log)

	// 7. ルーターの構築
	return handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		Authenticator:     authService,
		Policy:            policy,
		DecisionRecorder:  collector,
		HTTPRecorder:      collector,
		RateLimiter:       rl,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		SecurityHeaders: middleware.SecurityHeadersConfig{
			SSLRedirect:   cfg.IsProduction(),
			IsDevelopment: !cfg.IsProduction(),
		},
		DB:             db,
		MetricsHandler: metrics.Handler(registry),

		AuthService:     authService,
		PersonService:   personService,
		ShelterService:  shelterService,
		PetService:      petService,
		PetTypeService:  petTypeService,
		BreedService:    breedService,
		AdoptionService: adoptionService,
		FavoriteService: favoriteService,
		DonationService: donationService,
	}), nil
}

// newCacheStore は設定に応じたキャッシュストアを生成する。
// Redisは複数プロセスで共有されるため、起動時に前回のエントリを破棄する。
func newCacheStore(cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store := cache.NewRedisStore(client, "")
		if err := store.Clear(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reset cache: %w", err)
		}
		slog.Info("redis cache connected", slog.String("addr", cfg.RedisAddr))
		return store, func() { client.Close() }, nil
	default:
		store, err := cache.NewMemoryStore(cfg.CacheSize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create cache: %w", err)
		}
		return store, func() {}, nil
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

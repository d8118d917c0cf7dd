package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/feedbackboard/internal/metrics"
	"github.com/hitoshi/feedbackboard/internal/middleware"
)

// Pinger はヘルスチェックに必要なデータベース接続インターフェース。
// sql.DBが実装する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はルーター構築に必要な依存をまとめる。
type RouterDeps struct {
	Users    UserServiceInterface
	Feedback FeedbackServiceInterface
	Sessions SessionServiceInterface

	SessionFinder middleware.SessionFinder
	Cookie        CookieConfig

	CORSAllowedOrigin string

	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
	DB          Pinger
}

// NewRouter はアプリケーション全体のルーターを構築する。
//
// ミドルウェアの順序:
//  1. Recovery（パニック回復）
//  2. SecurityHeaders
//  3. CORS
//  4. Logging / Metrics
//  5. Session（Cookieからセッションを解決。後続のレート制限とガードが参照する）
//  6. CSRF
//  7. RateLimiter（全般）。/registerと/loginは追加で認証系レート制限を適用する。
func NewRouter(deps RouterDeps) chi.Router {
	authHandler := NewAuthHandler(deps.Users, deps.Sessions, deps.Cookie)
	userHandler := NewUserHandler(deps.Users, deps.Feedback, deps.Sessions, deps.Cookie)
	feedbackHandler := NewFeedbackHandler(deps.Feedback, deps.Sessions, deps.Cookie)

	csrfConfig := middleware.CSRFConfig{
		CookieSecure: deps.Cookie.Secure,
		CookieDomain: deps.Cookie.Domain,
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.Cookie.Secret))
	r.Use(middleware.NewCSRFMiddleware(csrfConfig))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.GeneralMiddleware())
	}

	// 運用エンドポイント
	r.Get("/health", newHealthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(csrfConfig))

	// 認証
	r.Get("/", authHandler.Home)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.AuthMiddleware())
		}
		r.Get("/register", authHandler.ShowRegister)
		r.Post("/register", authHandler.Register)
		r.Get("/login", authHandler.ShowLogin)
		r.Post("/login", authHandler.Login)
	})
	r.Get("/logout", authHandler.Logout)

	// ユーザー
	r.Get("/users/{username}", userHandler.Show)
	r.Post("/users/{username}/delete", userHandler.Delete)

	// フィードバック
	r.Get("/users/{username}/feedback/add", feedbackHandler.ShowAdd)
	r.Post("/users/{username}/feedback/add", feedbackHandler.Add)
	r.Get("/feedback/{id}/update", feedbackHandler.ShowUpdate)
	r.Post("/feedback/{id}/update", feedbackHandler.Update)
	r.Post("/feedback/{id}/delete", feedbackHandler.Delete)

	return r
}

// newHealthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := "ok"
		statusCode := http.StatusOK
		if db == nil {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if err := db.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
		})
	}
}

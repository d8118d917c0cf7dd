package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/feedbackboard/internal/auth"
	"github.com/hitoshi/feedbackboard/internal/middleware"
	"github.com/hitoshi/feedbackboard/internal/model"
)

// SessionServiceInterface はハンドラーが必要とするセッションサービスインターフェース。
// auth.Serviceが実装する。
type SessionServiceInterface interface {
	// Login は新しいセッションを発行する。oldSessionIDが空でなければ旧セッションを破棄する。
	Login(ctx context.Context, username, oldSessionID string) (*model.Session, error)
	// BeginAnonymous は匿名セッションを発行する。
	BeginAnonymous(ctx context.Context) (*model.Session, error)
	// Logout はセッションを破棄する。sessionIDが空の場合は何もしない。
	Logout(ctx context.Context, sessionID string) error
	// PushFlash はフラッシュキューに通知を追加する。
	PushFlash(ctx context.Context, sessionID, severity, message string) error
	// DrainFlashes はフラッシュキューの全通知を取り出してキューを空にする。
	DrainFlashes(ctx context.Context, sessionID string) ([]model.Flash, error)
}

// CookieConfig はセッションCookieの設定。
type CookieConfig struct {
	Secret string
	Domain string
	Secure bool
	MaxAge int // セッションCookieの有効期間（秒）
}

// sessionManager はセッションCookieとフラッシュのハンドラー共通処理。
type sessionManager struct {
	sessions SessionServiceInterface
	cookie   CookieConfig
}

// setSessionCookie は署名付きセッションCookieを設定する（HTTP Only）。
func (m *sessionManager) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    auth.SignSessionID(m.cookie.Secret, sessionID),
		Path:     "/",
		Domain:   m.cookie.Domain,
		MaxAge:   m.cookie.MaxAge,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (m *sessionManager) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// flash はクライアントのセッションにフラッシュ通知を積む。
// セッションがない匿名クライアントには新しい匿名セッションを発行してCookieを設定する。
// フラッシュは通知のベストエフォートであり、失敗してもリクエストは継続する。
func (m *sessionManager) flash(w http.ResponseWriter, r *http.Request, severity, message string) {
	ctx := r.Context()
	session := middleware.SessionFromContext(ctx)

	if session == nil {
		anonymous, err := m.sessions.BeginAnonymous(ctx)
		if err != nil {
			slog.Error("failed to begin anonymous session",
				slog.String("error", err.Error()),
			)
			return
		}
		m.setSessionCookie(w, anonymous.ID)
		session = anonymous
	}

	if err := m.sessions.PushFlash(ctx, session.ID, severity, message); err != nil {
		slog.Error("failed to push flash",
			slog.String("error", err.Error()),
		)
	}
}

// drainFlashes は現在のセッションのフラッシュキューを取り出す。
// 匿名クライアントや取得失敗時は空を返す（レンダリングは継続する）。
func (m *sessionManager) drainFlashes(r *http.Request) []model.Flash {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		return nil
	}
	flashes, err := m.sessions.DrainFlashes(r.Context(), session.ID)
	if err != nil {
		slog.Error("failed to drain flashes",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return flashes
}

// currentSessionID は現在のセッションIDを返す。セッションがなければ空文字列。
func currentSessionID(r *http.Request) string {
	if session := middleware.SessionFromContext(r.Context()); session != nil {
		return session.ID
	}
	return ""
}

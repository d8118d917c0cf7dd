package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/feedbackboard/internal/middleware"
	"github.com/hitoshi/feedbackboard/internal/model"
	"github.com/hitoshi/feedbackboard/internal/user"
)

// UserServiceInterface はハンドラーが必要とするユーザーサービスインターフェース。
// user.Serviceが実装する。
type UserServiceInterface interface {
	// Register はユーザーを作成する。重複時はmodel.DuplicateKeyErrorを返す。
	Register(ctx context.Context, params user.RegisterParams) (*model.User, error)
	// Authenticate は資格情報を検証する。不一致はエラーではなくnilで表す。
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	// Get はユーザーを取得する。見つからない場合はmodel.NotFoundErrorを返す。
	Get(ctx context.Context, username string) (*model.User, error)
	// Delete は退会処理を実行する。
	Delete(ctx context.Context, username string) error
}

// FeedbackServiceInterface はハンドラーが必要とするフィードバックサービスインターフェース。
// feedback.Serviceが実装する。
type FeedbackServiceInterface interface {
	Create(ctx context.Context, title, content, ownerUsername string) (*model.Feedback, error)
	Get(ctx context.Context, id int64) (*model.Feedback, error)
	ListByOwner(ctx context.Context, username string) ([]*model.Feedback, error)
	Update(ctx context.Context, id int64, title, content string) (*model.Feedback, error)
	Delete(ctx context.Context, id int64) error
}

// UserHandler はユーザーページと退会のHTTPハンドラー。
type UserHandler struct {
	sessionManager
	users    UserServiceInterface
	feedback FeedbackServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(
	users UserServiceInterface,
	feedback FeedbackServiceInterface,
	sessions SessionServiceInterface,
	cookie CookieConfig,
) *UserHandler {
	return &UserHandler{
		sessionManager: sessionManager{sessions: sessions, cookie: cookie},
		users:          users,
		feedback:       feedback,
	}
}

// userView はビューに渡すユーザー表現。パスワードハッシュは含めない。
func userView(u *model.User) map[string]any {
	return map[string]any{
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"created_at": u.CreatedAt,
	}
}

// feedbackView はビューに渡すフィードバック表現。
func feedbackView(f *model.Feedback) map[string]any {
	return map[string]any{
		"id":         f.ID,
		"title":      f.Title,
		"content":    f.Content,
		"username":   f.OwnerUsername,
		"created_at": f.CreatedAt,
		"updated_at": f.UpdatedAt,
	}
}

// Show はユーザーページを表示する。
// GET /users/{username}
// 本人のみ閲覧可能。他人のページへのアクセスはホームへリダイレクトする。
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	session := middleware.SessionFromContext(r.Context())
	if !requireSelf(session, username) {
		h.deny(w, r)
		return
	}

	target, err := h.users.Get(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	list, err := h.feedback.ListByOwner(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	views := make([]map[string]any, 0, len(list))
	for _, f := range list {
		views = append(views, feedbackView(f))
	}

	renderView(w, http.StatusOK, "user_detail", map[string]any{
		"user":     userView(target),
		"feedback": views,
	}, h.drainFlashes(r))
}

// Delete は退会処理を実行する。
// POST /users/{username}/delete
// 本人のみ実行可能。完了後はセッションCookieを破棄してホームへリダイレクトする。
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	session := middleware.SessionFromContext(r.Context())
	if !requireSelf(session, username) {
		h.deny(w, r)
		return
	}

	if err := h.users.Delete(r.Context(), username); err != nil {
		handleServiceError(w, err)
		return
	}
	h.clearSessionCookie(w)

	// 退会後の通知のため新しい匿名セッションを発行する
	anonymous, err := h.sessions.BeginAnonymous(r.Context())
	if err != nil {
		slog.Error("failed to begin anonymous session", slog.String("error", err.Error()))
		redirect(w, r, "/")
		return
	}
	h.setSessionCookie(w, anonymous.ID)
	if err := h.sessions.PushFlash(r.Context(), anonymous.ID, model.FlashDanger,
		"アカウントを削除しました。"); err != nil {
		slog.Error("failed to push flash", slog.String("error", err.Error()))
	}

	redirect(w, r, "/")
}

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/feedbackboard/internal/form"
	"github.com/hitoshi/feedbackboard/internal/middleware"
	"github.com/hitoshi/feedbackboard/internal/model"
	"github.com/hitoshi/feedbackboard/internal/user"
)

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	sessionManager
	users UserServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(users UserServiceInterface, sessions SessionServiceInterface, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		sessionManager: sessionManager{sessions: sessions, cookie: cookie},
		users:          users,
	}
}

// Home はホームページへのアクセスを登録フォームへリダイレクトする。
// GET /
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/register")
}

// ShowRegister は登録フォームを表示する。
// GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	renderView(w, http.StatusOK, "register", map[string]any{
		"values": map[string]string{},
		"errors": form.Errors{},
	}, h.drainFlashes(r))
}

// Register は登録フォームの送信を処理する。
// POST /register
// 入力が有効ならユーザーを作成し、セッションを発行してユーザーページへリダイレクトする。
// username/emailが既に使われている場合は該当フィールドのエラーとして再表示する。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderFormErrors(w, "register", map[string]string{}, form.Errors{
			"form": {"フォームの解析に失敗しました。"},
		}, h.drainFlashes(r))
		return
	}

	schema := form.RegisterSchema()
	values, errs := schema.Validate(formValues(r, schema))
	if errs.Any() {
		renderFormErrors(w, "register", values, errs, h.drainFlashes(r))
		return
	}

	created, err := h.users.Register(r.Context(), user.RegisterParams{
		Username:  values["username"],
		Password:  values["password"],
		Email:     values["email"],
		FirstName: values["first_name"],
		LastName:  values["last_name"],
	})
	if err != nil {
		var dup *model.DuplicateKeyError
		if errors.As(err, &dup) {
			message := "このユーザー名は既に使われています。別の名前を選んでください。"
			if dup.Field == "email" {
				message = "このメールアドレスは既に登録されています。"
			}
			renderFormErrors(w, "register", values, form.Errors{
				dup.Field: {message},
			}, h.drainFlashes(r))
			return
		}
		slog.Error("registration failed", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}

	session, err := h.sessions.Login(r.Context(), created.Username, currentSessionID(r))
	if err != nil {
		slog.Error("failed to start session", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}
	h.setSessionCookie(w, session.ID)

	if err := h.sessions.PushFlash(r.Context(), session.ID, model.FlashSuccess,
		"アカウントを作成しました。ようこそ！"); err != nil {
		slog.Error("failed to push flash", slog.String("error", err.Error()))
	}

	redirect(w, r, "/users/"+created.Username)
}

// ShowLogin はログインフォームを表示する。
// GET /login
// 既にログイン済みの場合は自分のユーザーページへリダイレクトする。
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if session := middleware.SessionFromContext(r.Context()); session.IsAuthenticated() {
		redirect(w, r, "/users/"+session.Username)
		return
	}

	renderView(w, http.StatusOK, "login", map[string]any{
		"values": map[string]string{},
		"errors": form.Errors{},
	}, h.drainFlashes(r))
}

// Login はログインフォームの送信を処理する。
// POST /login
// 資格情報の不一致は正常系として扱い、フォームを汎用エラー付きで再表示する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if session := middleware.SessionFromContext(r.Context()); session.IsAuthenticated() {
		redirect(w, r, "/users/"+session.Username)
		return
	}

	if err := r.ParseForm(); err != nil {
		renderFormErrors(w, "login", map[string]string{}, form.Errors{
			"form": {"フォームの解析に失敗しました。"},
		}, h.drainFlashes(r))
		return
	}

	schema := form.LoginSchema()
	values, errs := schema.Validate(formValues(r, schema))
	if errs.Any() {
		renderFormErrors(w, "login", values, errs, h.drainFlashes(r))
		return
	}

	authenticated, err := h.users.Authenticate(r.Context(), values["username"], values["password"])
	if err != nil {
		slog.Error("authentication failed", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}
	if authenticated == nil {
		// どちらが誤っていたかは明かさない
		renderFormErrors(w, "login", values, form.Errors{
			"username": {"ユーザー名またはパスワードが正しくありません。"},
		}, h.drainFlashes(r))
		return
	}

	session, err := h.sessions.Login(r.Context(), authenticated.Username, currentSessionID(r))
	if err != nil {
		slog.Error("failed to start session", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}
	h.setSessionCookie(w, session.ID)

	if err := h.sessions.PushFlash(r.Context(), session.ID, model.FlashPrimary,
		fmt.Sprintf("おかえりなさい、%sさん！", authenticated.Username)); err != nil {
		slog.Error("failed to push flash", slog.String("error", err.Error()))
	}

	redirect(w, r, "/users/"+authenticated.Username)
}

// Logout はセッションを破棄してホームへリダイレクトする。
// GET /logout
// 匿名クライアントからの呼び出しは何もせずリダイレクトのみ行う。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), currentSessionID(r)); err != nil {
		slog.Error("failed to logout", slog.String("error", err.Error()))
		// ログアウト失敗してもCookieはクリアする
	}
	h.clearSessionCookie(w)

	redirect(w, r, "/")
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/feedbackboard/internal/middleware"
	"github.com/hitoshi/feedbackboard/internal/model"
	"github.com/hitoshi/feedbackboard/internal/user"
)

// --- モック ---

type mockUserService struct {
	registerFn     func(ctx context.Context, params user.RegisterParams) (*model.User, error)
	authenticateFn func(ctx context.Context, username, password string) (*model.User, error)
	getFn          func(ctx context.Context, username string) (*model.User, error)
	deleteFn       func(ctx context.Context, username string) error
}

func (m *mockUserService) Register(ctx context.Context, params user.RegisterParams) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, params)
	}
	return &model.User{Username: params.Username, Email: params.Email}, nil
}
func (m *mockUserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, username, password)
	}
	return nil, nil
}
func (m *mockUserService) Get(ctx context.Context, username string) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, username)
	}
	return &model.User{Username: username}, nil
}
func (m *mockUserService) Delete(ctx context.Context, username string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, username)
	}
	return nil
}

type mockFeedbackService struct {
	createFn      func(ctx context.Context, title, content, ownerUsername string) (*model.Feedback, error)
	getFn         func(ctx context.Context, id int64) (*model.Feedback, error)
	listByOwnerFn func(ctx context.Context, username string) ([]*model.Feedback, error)
	updateFn      func(ctx context.Context, id int64, title, content string) (*model.Feedback, error)
	deleteFn      func(ctx context.Context, id int64) error
}

func (m *mockFeedbackService) Create(ctx context.Context, title, content, ownerUsername string) (*model.Feedback, error) {
	if m.createFn != nil {
		return m.createFn(ctx, title, content, ownerUsername)
	}
	return &model.Feedback{ID: 1, Title: title, Content: content, OwnerUsername: ownerUsername}, nil
}
func (m *mockFeedbackService) Get(ctx context.Context, id int64) (*model.Feedback, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, &model.NotFoundError{Resource: "feedback", Key: "0"}
}
func (m *mockFeedbackService) ListByOwner(ctx context.Context, username string) ([]*model.Feedback, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, username)
	}
	return nil, nil
}
func (m *mockFeedbackService) Update(ctx context.Context, id int64, title, content string) (*model.Feedback, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, title, content)
	}
	return &model.Feedback{ID: id, Title: title, Content: content}, nil
}
func (m *mockFeedbackService) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockSessionService はSessionServiceInterfaceのモック。
// 積まれたフラッシュをpushedに記録する。
type mockSessionService struct {
	loginFn  func(ctx context.Context, username, oldSessionID string) (*model.Session, error)
	logoutFn func(ctx context.Context, sessionID string) error

	pushed  []model.Flash
	drained []model.Flash
}

func (m *mockSessionService) Login(ctx context.Context, username, oldSessionID string) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, oldSessionID)
	}
	return &model.Session{ID: "new-session", Username: username}, nil
}
func (m *mockSessionService) BeginAnonymous(ctx context.Context) (*model.Session, error) {
	return &model.Session{ID: "anon-session"}, nil
}
func (m *mockSessionService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}
func (m *mockSessionService) PushFlash(ctx context.Context, sessionID, severity, message string) error {
	m.pushed = append(m.pushed, model.Flash{Severity: severity, Message: message})
	return nil
}
func (m *mockSessionService) DrainFlashes(ctx context.Context, sessionID string) ([]model.Flash, error) {
	flashes := m.drained
	m.drained = nil
	return flashes, nil
}

// --- ヘルパー ---

var testCookieConfig = CookieConfig{
	Secret: "test-secret",
	MaxAge: 3600,
}

// postFormRequest はフォーム送信のPOSTリクエストを生成する。
func postFormRequest(t *testing.T, path string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// withSession はリクエストに認証済みセッションを付与する。
func withSession(r *http.Request, session *model.Session) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), session))
}

// withURLParam はchiのパスパラメータをリクエストに注入する。
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// sessionCookie はレスポンスからセッションCookieを探す。見つからなければnil。
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

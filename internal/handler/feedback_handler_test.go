package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/hitoshi/feedbackboard/internal/model"
)

// 投稿フォームの送信で所有者がセッションから確定することを検証
func TestFeedbackHandler_Add_Success(t *testing.T) {
	var gotTitle, gotContent, gotOwner string
	sessions := &mockSessionService{}
	h := NewFeedbackHandler(&mockFeedbackService{
		createFn: func(ctx context.Context, title, content, ownerUsername string) (*model.Feedback, error) {
			gotTitle, gotContent, gotOwner = title, content, ownerUsername
			return &model.Feedback{ID: 1, Title: title, Content: content, OwnerUsername: ownerUsername}, nil
		},
	}, sessions, testCookieConfig)

	form := url.Values{"title": {"改善案"}, "content": {"本文です。"}}
	req := postFormRequest(t, "/users/alice/feedback/add", form)
	req = withURLParam(req, "username", "alice")
	req = withSession(req, &model.Session{ID: "s1", Username: "alice"})

	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/users/alice" {
		t.Errorf("Location = %q, want /users/alice", loc)
	}
	if gotTitle != "改善案" || gotContent != "本文です。" {
		t.Errorf("title/content = %q/%q", gotTitle, gotContent)
	}
	if gotOwner != "alice" {
		t.Errorf("owner = %q, want alice (セッションから確定)", gotOwner)
	}
	if len(sessions.pushed) != 1 || sessions.pushed[0].Severity != model.FlashSuccess {
		t.Errorf("a success flash should be queued, got %+v", sessions.pushed)
	}
}

// 他人の投稿フォームへのアクセスが拒否されることを検証
func TestFeedbackHandler_Add_OtherUserDenied(t *testing.T) {
	h := NewFeedbackHandler(&mockFeedbackService{
		createFn: func(ctx context.Context, title, content, ownerUsername string) (*model.Feedback, error) {
			t.Fatal("Create should not be called when access is denied")
			return nil, nil
		},
	}, &mockSessionService{}, testCookieConfig)

	form := url.Values{"title": {"t"}, "content": {"c"}}
	req := postFormRequest(t, "/users/alice/feedback/add", form)
	req = withURLParam(req, "username", "alice")
	req = withSession(req, &model.Session{ID: "s1", Username: "bob"})

	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (guard redirect)", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

// タイトル超過のバリデーションエラーで400が返ることを検証
func TestFeedbackHandler_Add_ValidationError(t *testing.T) {
	h := NewFeedbackHandler(&mockFeedbackService{}, &mockSessionService{}, testCookieConfig)

	longTitle := make([]byte, 101)
	for i := range longTitle {
		longTitle[i] = 'x'
	}
	form := url.Values{"title": {string(longTitle)}, "content": {"本文"}}
	req := postFormRequest(t, "/users/alice/feedback/add", form)
	req = withURLParam(req, "username", "alice")
	req = withSession(req, &model.Session{ID: "s1", Username: "alice"})

	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var doc struct {
		Data struct {
			Errors map[string][]string `json:"errors"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if len(doc.Data.Errors["title"]) == 0 {
		t.Errorf("title error expected, got %v", doc.Data.Errors)
	}
}

// 編集フォームが既存の値を埋めて返すことを検証
func TestFeedbackHandler_ShowUpdate_PrefillsValues(t *testing.T) {
	h := NewFeedbackHandler(&mockFeedbackService{
		getFn: func(ctx context.Context, id int64) (*model.Feedback, error) {
			return &model.Feedback{ID: id, Title: "元のタイトル", Content: "元の本文", OwnerUsername: "alice"}, nil
		},
	}, &mockSessionService{}, testCookieConfig)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/feedback/7/update", nil), "id", "7")
	req = withSession(req, &model.Session{ID: "s1", Username: "alice"})

	rec := httptest.NewRecorder()
	h.ShowUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var doc struct {
		View string `json:"view"`
		Data struct {
			Values map[string]string `json:"values"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if doc.View != "feedback_update" {
		t.Errorf("view = %q, want feedback_update", doc.View)
	}
	if doc.Data.Values["title"] != "元のタイトル" || doc.Data.Values["content"] != "元の本文" {
		t.Errorf("values = %v", doc.Data.Values)
	}
}

// 存在しないIDの編集が404になることを検証
func TestFeedbackHandler_Update_NotFound(t *testing.T) {
	h := NewFeedbackHandler(&mockFeedbackService{
		getFn: func(ctx context.Context, id int64) (*model.Feedback, error) {
			return nil, &model.NotFoundError{Resource: "feedback", Key: "999"}
		},
	}, &mockSessionService{}, testCookieConfig)

	form := url.Values{"title": {"t"}, "content": {"c"}}
	req := postFormRequest(t, "/feedback/999/update", form)
	req = withURLParam(req, "id", "999")
	req = withSession(req, &model.Session{ID: "s1", Username: "alice"})

	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if body["code"] != model.ErrCodeFeedbackNotFound {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeFeedbackNotFound)
	}
}

// 数値でないIDが404になることを検証
func TestFeedbackHandler_Update_NonNumericID(t *testing.T) {
	h := NewFeedbackHandler(&mockFeedbackService{}, &mockSessionService{}, testCookieConfig)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/feedback/abc/update", nil), "id", "abc")
	req = withSession(req, &model.Session{ID: "s1", Username: "alice"})

	rec := httptest.NewRecorder()
	h.ShowUpdate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// 他人の投稿の編集が拒否されることを検証（404ではなくガード転送）
func TestFeedbackHandler_Update_OtherOwnerDenied(t *testing.T) {
	h := NewFeedbackHandler(&mockFeedbackService{
		getFn: func(ctx context.Context, id int64) (*model.Feedback, error) {
			return &model.Feedback{ID: id, OwnerUsername: "alice"}, nil
		},
		updateFn: func(ctx context.Context, id int64, title, content string) (*model.Feedback, error) {
			t.Fatal("Update should not be called for another owner's feedback")
			return nil, nil
		},
	}, &mockSessionService{}, testCookieConfig)

	form := url.Values{"title": {"t"}, "content": {"c"}}
	req := postFormRequest(t, "/feedback/7/update", form)
	req = withURLParam(req, "id", "7")
	req = withSession(req, &model.Session{ID: "s1", Username: "mallory"})

	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (guard redirect)", rec.Code)
	}
}

// 更新成功で所有者のユーザーページへリダイレクトすることを検証
func TestFeedbackHandler_Update_Success(t *testing.T) {
	var updatedID int64
	sessions := &mockSessionService{}
	h := NewFeedbackHandler(&mockFeedbackService{
		getFn: func(ctx context.Context, id int64) (*model.Feedback, error) {
			return &model.Feedback{ID: id, Title: "旧", Content: "旧", OwnerUsername: "alice"}, nil
		},
		updateFn: func(ctx context.Context, id int64, title, content string) (*model.Feedback, error) {
			updatedID = id
			return &model.Feedback{ID: id, Title: title, Content: content, OwnerUsername: "alice"}, nil
		},
	}, sessions, testCookieConfig)

	form := url.Values{"title": {"新タイトル"}, "content": {"新本文"}}
	req := postFormRequest(t, "/feedback/7/update", form)
	req = withURLParam(req, "id", "7")
	req = withSession(req, &model.Session{ID: "s1", Username: "alice"})

	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/users/alice" {
		t.Errorf("Location = %q, want /users/alice", loc)
	}
	if updatedID != 7 {
		t.Errorf("updatedID = %d, want 7", updatedID)
	}
	if len(sessions.pushed) != 1 || sessions.pushed[0].Severity != model.FlashSuccess {
		t.Errorf("a success flash should be queued, got %+v", sessions.pushed)
	}
}

// 削除成功で危険度フラッシュが積まれることを検証
func TestFeedbackHandler_Delete_Success(t *testing.T) {
	var deletedID int64
	sessions := &mockSessionService{}
	h := NewFeedbackHandler(&mockFeedbackService{
		getFn: func(ctx context.Context, id int64) (*model.Feedback, error) {
			return &model.Feedback{ID: id, OwnerUsername: "alice"}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}, sessions, testCookieConfig)

	req := postFormRequest(t, "/feedback/7/delete", url.Values{})
	req = withURLParam(req, "id", "7")
	req = withSession(req, &model.Session{ID: "s1", Username: "alice"})

	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if deletedID != 7 {
		t.Errorf("deletedID = %d, want 7", deletedID)
	}
	if len(sessions.pushed) != 1 || sessions.pushed[0].Severity != model.FlashDanger {
		t.Errorf("a danger flash should be queued, got %+v", sessions.pushed)
	}
}

// 未ログインでの削除が拒否されることを検証
func TestFeedbackHandler_Delete_AnonymousDenied(t *testing.T) {
	h := NewFeedbackHandler(&mockFeedbackService{
		getFn: func(ctx context.Context, id int64) (*model.Feedback, error) {
			t.Fatal("Get should not be called for anonymous clients")
			return nil, nil
		},
	}, &mockSessionService{}, testCookieConfig)

	req := postFormRequest(t, "/feedback/7/delete", url.Values{})
	req = withURLParam(req, "id", "7")

	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (guard redirect)", rec.Code)
	}
}

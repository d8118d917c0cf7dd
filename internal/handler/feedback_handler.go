package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/feedbackboard/internal/form"
	"github.com/hitoshi/feedbackboard/internal/middleware"
	"github.com/hitoshi/feedbackboard/internal/model"
)

// FeedbackHandler はフィードバック投稿・編集・削除のHTTPハンドラー。
type FeedbackHandler struct {
	sessionManager
	feedback FeedbackServiceInterface
}

// NewFeedbackHandler はFeedbackHandlerを生成する。
func NewFeedbackHandler(
	feedback FeedbackServiceInterface,
	sessions SessionServiceInterface,
	cookie CookieConfig,
) *FeedbackHandler {
	return &FeedbackHandler{
		sessionManager: sessionManager{sessions: sessions, cookie: cookie},
		feedback:       feedback,
	}
}

// parseFeedbackID はパスパラメータからフィードバックIDを取り出す。
func parseFeedbackID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// writeFeedbackNotFound は存在しないフィードバックへの404レスポンスを書き込む。
func writeFeedbackNotFound(w http.ResponseWriter, raw string) {
	writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
		Code:     model.ErrCodeFeedbackNotFound,
		Message:  "指定されたフィードバックが見つかりません: " + raw,
		Category: "feedback",
		Action:   "フィードバックIDを確認してください。",
	})
}

// loadOwnedFeedback はIDのフィードバックを取得し、アクセス制御を適用する。
// 未ログインはリダイレクト、存在しないIDは404、他人の投稿はリダイレクトで拒否する。
// 拒否時はレスポンスを書き込み済みとしてnilを返す。
func (h *FeedbackHandler) loadOwnedFeedback(w http.ResponseWriter, r *http.Request) *model.Feedback {
	session := middleware.SessionFromContext(r.Context())
	if !requireAuthenticated(session) {
		h.deny(w, r)
		return nil
	}

	id, ok := parseFeedbackID(r)
	if !ok {
		writeFeedbackNotFound(w, chi.URLParam(r, "id"))
		return nil
	}

	target, err := h.feedback.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return nil
	}

	if !requireSelf(session, target.OwnerUsername) {
		h.deny(w, r)
		return nil
	}

	return target
}

// ShowAdd はフィードバック投稿フォームを表示する。
// GET /users/{username}/feedback/add
// 本人のみアクセス可能。
func (h *FeedbackHandler) ShowAdd(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	session := middleware.SessionFromContext(r.Context())
	if !requireSelf(session, username) {
		h.deny(w, r)
		return
	}

	renderView(w, http.StatusOK, "feedback_add", map[string]any{
		"username": username,
		"values":   map[string]string{},
		"errors":   form.Errors{},
	}, h.drainFlashes(r))
}

// Add はフィードバック投稿フォームの送信を処理する。
// POST /users/{username}/feedback/add
// 所有者はURLではなくセッションの識別情報から確定する。
func (h *FeedbackHandler) Add(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	session := middleware.SessionFromContext(r.Context())
	if !requireSelf(session, username) {
		h.deny(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		renderFormErrors(w, "feedback_add", map[string]string{}, form.Errors{
			"form": {"フォームの解析に失敗しました。"},
		}, h.drainFlashes(r))
		return
	}

	schema := form.FeedbackSchema()
	values, errs := schema.Validate(formValues(r, schema))
	if errs.Any() {
		renderFormErrors(w, "feedback_add", values, errs, h.drainFlashes(r))
		return
	}

	if _, err := h.feedback.Create(r.Context(), values["title"], values["content"], session.Username); err != nil {
		handleServiceError(w, err)
		return
	}

	h.flash(w, r, model.FlashSuccess, "フィードバックを作成しました。")
	redirect(w, r, "/users/"+session.Username)
}

// ShowUpdate はフィードバック編集フォームを表示する。
// GET /feedback/{id}/update
// 投稿の所有者のみアクセス可能。既存の値をフォームに埋めて返す。
func (h *FeedbackHandler) ShowUpdate(w http.ResponseWriter, r *http.Request) {
	target := h.loadOwnedFeedback(w, r)
	if target == nil {
		return
	}

	renderView(w, http.StatusOK, "feedback_update", map[string]any{
		"feedback": feedbackView(target),
		"values": map[string]string{
			"title":   target.Title,
			"content": target.Content,
		},
		"errors": form.Errors{},
	}, h.drainFlashes(r))
}

// Update はフィードバック編集フォームの送信を処理する。
// POST /feedback/{id}/update
// タイトルと本文のみ更新し、所有者は変更しない。
func (h *FeedbackHandler) Update(w http.ResponseWriter, r *http.Request) {
	target := h.loadOwnedFeedback(w, r)
	if target == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		renderFormErrors(w, "feedback_update", map[string]string{}, form.Errors{
			"form": {"フォームの解析に失敗しました。"},
		}, h.drainFlashes(r))
		return
	}

	schema := form.FeedbackSchema()
	values, errs := schema.Validate(formValues(r, schema))
	if errs.Any() {
		renderFormErrors(w, "feedback_update", values, errs, h.drainFlashes(r))
		return
	}

	if _, err := h.feedback.Update(r.Context(), target.ID, values["title"], values["content"]); err != nil {
		handleServiceError(w, err)
		return
	}

	h.flash(w, r, model.FlashSuccess, "フィードバックを更新しました。")
	redirect(w, r, "/users/"+target.OwnerUsername)
}

// Delete はフィードバックを削除する。
// POST /feedback/{id}/delete
// 投稿の所有者のみ実行可能。
func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	target := h.loadOwnedFeedback(w, r)
	if target == nil {
		return
	}

	if err := h.feedback.Delete(r.Context(), target.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.flash(w, r, model.FlashDanger, "フィードバックを削除しました。")
	redirect(w, r, "/users/"+target.OwnerUsername)
}

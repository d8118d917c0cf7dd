// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/feedbackboard/internal/form"
	"github.com/hitoshi/feedbackboard/internal/model"
)

// viewDocument はレンダリング層に渡すビュー記述ドキュメント。
// プレゼンテーションは外部コラボレータであり、このドキュメントをJSONで受け渡す。
type viewDocument struct {
	View    string         `json:"view"`
	Data    map[string]any `json:"data"`
	Flashes []model.Flash  `json:"flashes"`
}

// renderView はビュー記述ドキュメントを書き込む。
// flashesがnilの場合は空配列として出力する。
func renderView(w http.ResponseWriter, statusCode int, view string, data map[string]any, flashes []model.Flash) {
	if flashes == nil {
		flashes = []model.Flash{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(viewDocument{
		View:    view,
		Data:    data,
		Flashes: flashes,
	}); err != nil {
		slog.Error("failed to encode view document", slog.String("error", err.Error()))
	}
}

// renderFormErrors はバリデーションエラー付きでフォームビューを再表示する。
// 送信値は再入力の手間を省くためエコーバックするが、パスワードは返さない。
// 滞留中のフラッシュもエラー再表示で配信する（フラッシュは次のレンダリングで
// 必ず消費される）。
func renderFormErrors(w http.ResponseWriter, view string, values map[string]string, errs form.Errors, flashes []model.Flash) {
	delete(values, "password")
	renderView(w, http.StatusBadRequest, view, map[string]any{
		"values": values,
		"errors": errs,
	}, flashes)
}

// redirect は303 See Otherリダイレクトを書き込む。
// POST後のリダイレクトでメソッドがGETに変わることを保証する。
func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// writeAPIErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"code":     apiErr.Code,
		"message":  apiErr.Message,
		"category": apiErr.Category,
		"action":   apiErr.Action,
	}); err != nil {
		slog.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}

// writeInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func writeInternalServerError(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// NotFoundErrorは404、それ以外はログに記録して500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var notFound *model.NotFoundError
	if errors.As(err, &notFound) {
		apiErr := model.NewUserNotFoundError(notFound.Key)
		if notFound.Resource == "feedback" {
			apiErr = &model.APIError{
				Code:     model.ErrCodeFeedbackNotFound,
				Message:  "指定されたフィードバックが見つかりません: " + notFound.Key,
				Category: "feedback",
				Action:   "フィードバックIDを確認してください。",
			}
		}
		writeAPIErrorResponse(w, http.StatusNotFound, apiErr)
		return
	}

	slog.Error("service error", slog.String("error", err.Error()))
	writeInternalServerError(w)
}

// formValues はリクエストからスキーマのフィールド値を取り出す。
func formValues(r *http.Request, schema form.Schema) map[string]string {
	values := make(map[string]string)
	for _, name := range schema.FieldNames() {
		values[name] = r.PostFormValue(name)
	}
	return values
}

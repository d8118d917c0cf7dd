// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, feedback, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeDuplicateKey     = "DUPLICATE_KEY"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeFeedbackNotFound = "FEEDBACK_NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeCSRFMismatch     = "CSRF_TOKEN_MISMATCH"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// DuplicateKeyError は一意制約違反を表す。
// Fieldには実際に衝突したカラム（username または email）が入る。
type DuplicateKeyError struct {
	Field string
}

// Error はerrorインターフェースを実装する。
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key on field %q", e.Field)
}

// NotFoundError は対象エンティティが存在しないことを表す。
type NotFoundError struct {
	Resource string // users, feedback
	Key      string
}

// Error はerrorインターフェースを実装する。
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// NewUserNotFoundError はユーザーが見つからない場合のAPIErrorを生成する。
func NewUserNotFoundError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", username),
		Category: "auth",
		Action:   "ユーザー名を確認してください。",
	}
}

// NewFeedbackNotFoundError はフィードバックが見つからない場合のAPIErrorを生成する。
func NewFeedbackNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeFeedbackNotFound,
		Message:  fmt.Sprintf("指定されたフィードバックが見つかりません: %d", id),
		Category: "feedback",
		Action:   "フィードバックIDを確認してください。",
	}
}

// NewInternalError は予期しないサーバー内部エラーのAPIErrorを生成する。
// 原因の詳細はログにのみ残し、レスポンスには含めない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "サーバー内部でエラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUnauthorizedError は認可拒否のAPIErrorを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "このページを表示するにはログインが必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

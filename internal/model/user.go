// Package model はドメインモデルを定義する。
package model

import "time"

// User はフィードバックボードの利用ユーザーを表す。
// Usernameが主キーであり、作成後に変更されることはない。
type User struct {
	Username     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はクライアントごとのログインセッションを表す。
// Usernameが空文字列の場合は匿名セッション（フラッシュ保持専用）を意味する。
type Session struct {
	ID        string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsAuthenticated はセッションにログイン済みの識別情報があるかを返す。
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Username != ""
}

// Flash は次回レンダリング時に一度だけ表示される通知を表す。
type Flash struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// フラッシュの重要度。Bootstrapのアラートカテゴリに対応する。
const (
	FlashSuccess = "success"
	FlashPrimary = "primary"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Package model はドメインモデルを定義する。
package model

import "time"

// Feedback はユーザーが投稿したフィードバックを表す。
// OwnerUsernameは作成後に変更されることはない。
type Feedback struct {
	ID            int64
	Title         string
	Content       string
	OwnerUsername string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

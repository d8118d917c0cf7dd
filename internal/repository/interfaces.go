// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/feedbackboard/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// usernameまたはemailの一意制約違反の場合はmodel.DuplicateKeyErrorを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// DeleteByUsername は指定ユーザー名のユーザーを削除する。
	// 関連するfeedback、sessionsはCASCADE削除される。
	// 対象が存在しない場合はmodel.NotFoundErrorを返す。
	DeleteByUsername(ctx context.Context, username string) error
}

// FeedbackRepository はフィードバックデータの永続化インターフェース。
type FeedbackRepository interface {
	// Create はフィードバックを作成し、採番されたIDをfeedback.IDに書き戻す。
	Create(ctx context.Context, feedback *model.Feedback) error

	// FindByID は指定IDのフィードバックを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Feedback, error)

	// ListByOwner は指定ユーザーのフィードバック一覧を作成日時昇順で返す。
	ListByOwner(ctx context.Context, username string) ([]*model.Feedback, error)

	// Update はタイトルと本文を更新する。owner_usernameは変更しない。
	// 対象が存在しない場合はmodel.NotFoundErrorを返す。
	Update(ctx context.Context, id int64, title, content string) (*model.Feedback, error)

	// DeleteByID は指定IDのフィードバックを削除する。
	// 対象が存在しない場合はmodel.NotFoundErrorを返す。
	DeleteByID(ctx context.Context, id int64) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。Usernameが空の場合は匿名セッションとして保存する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。期限切れまたは不存在の場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。対象がなくてもエラーにしない。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUsername は指定ユーザーの全セッションを削除する。
	DeleteByUsername(ctx context.Context, username string) error

	// AppendFlash はセッションのフラッシュキュー末尾に通知を追加する。
	AppendFlash(ctx context.Context, sessionID string, flash model.Flash) error

	// DrainFlashes はフラッシュキューの全通知を取得し、同時にキューを空にする。
	// read-once: 同一セッションに対する2回目の呼び出しは空を返す。
	DrainFlashes(ctx context.Context, sessionID string) ([]model.Flash, error)

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

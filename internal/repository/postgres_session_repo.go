package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/feedbackboard/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
// dataカラム（jsonb）にフラッシュキューを保持する。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。Usernameが空の場合は匿名セッションとして保存する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	username := sql.NullString{String: session.Username, Valid: session.Username != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, username, data, expires_at, created_at)
		 VALUES ($1, $2, '[]', $3, $4)`,
		session.ID, username, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れまたは不存在の場合はnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	var username sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, expires_at, created_at
		 FROM sessions
		 WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&session.ID, &username, &session.ExpiresAt, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	session.Username = username.String
	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。対象がなくてもエラーにしない。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUsername は指定ユーザーの全セッションを削除する。
func (r *PostgresSessionRepo) DeleteByUsername(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE username = $1`,
		username,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// AppendFlash はセッションのフラッシュキュー末尾に通知を追加する。
// jsonbの連結演算子で単一文にして、並行リクエスト間の追加消失を防ぐ。
func (r *PostgresSessionRepo) AppendFlash(ctx context.Context, sessionID string, flash model.Flash) error {
	payload, err := json.Marshal([]model.Flash{flash})
	if err != nil {
		return fmt.Errorf("failed to marshal flash: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE sessions SET data = data || $2::jsonb WHERE id = $1`,
		sessionID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to append flash: %w", err)
	}
	return nil
}

// DrainFlashes はフラッシュキューの全通知を取得し、同時にキューを空にする。
// 取得と初期化を単一のUPDATE ... RETURNINGで行い、read-onceを保証する。
func (r *PostgresSessionRepo) DrainFlashes(ctx context.Context, sessionID string) ([]model.Flash, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`UPDATE sessions SET data = '[]'
		 WHERE id = $1 AND expires_at > now()
		 RETURNING (SELECT data FROM sessions WHERE id = $1)`,
		sessionID,
	).Scan(&raw)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to drain flashes: %w", err)
	}

	var flashes []model.Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flashes: %w", err)
	}
	return flashes, nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)

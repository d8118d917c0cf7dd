package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/hitoshi/feedbackboard/internal/model"
)

// PostgresFeedbackRepo はPostgreSQLを使用したフィードバックリポジトリ。
type PostgresFeedbackRepo struct {
	db *sql.DB
}

// NewPostgresFeedbackRepo はPostgresFeedbackRepoを生成する。
func NewPostgresFeedbackRepo(db *sql.DB) *PostgresFeedbackRepo {
	return &PostgresFeedbackRepo{db: db}
}

// Create はフィードバックを作成し、採番されたIDをfeedback.IDに書き戻す。
func (r *PostgresFeedbackRepo) Create(ctx context.Context, feedback *model.Feedback) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO feedback (title, content, username, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		feedback.Title, feedback.Content, feedback.OwnerUsername,
		feedback.CreatedAt, feedback.UpdatedAt,
	).Scan(&feedback.ID)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// FindByID は指定IDのフィードバックを取得する。見つからない場合はnilを返す。
func (r *PostgresFeedbackRepo) FindByID(ctx context.Context, id int64) (*model.Feedback, error) {
	feedback := &model.Feedback{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, username, created_at, updated_at
		 FROM feedback WHERE id = $1`,
		id,
	).Scan(&feedback.ID, &feedback.Title, &feedback.Content, &feedback.OwnerUsername,
		&feedback.CreatedAt, &feedback.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find feedback by ID: %w", err)
	}

	return feedback, nil
}

// ListByOwner は指定ユーザーのフィードバック一覧を作成日時昇順で返す。
func (r *PostgresFeedbackRepo) ListByOwner(ctx context.Context, username string) ([]*model.Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, username, created_at, updated_at
		 FROM feedback WHERE username = $1
		 ORDER BY created_at, id`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var results []*model.Feedback
	for rows.Next() {
		feedback := &model.Feedback{}
		if err := rows.Scan(&feedback.ID, &feedback.Title, &feedback.Content,
			&feedback.OwnerUsername, &feedback.CreatedAt, &feedback.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		results = append(results, feedback)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback rows: %w", err)
	}

	return results, nil
}

// Update はタイトルと本文を更新する。owner_usernameは変更しない。
func (r *PostgresFeedbackRepo) Update(ctx context.Context, id int64, title, content string) (*model.Feedback, error) {
	feedback := &model.Feedback{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE feedback SET title = $2, content = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, title, content, username, created_at, updated_at`,
		id, title, content,
	).Scan(&feedback.ID, &feedback.Title, &feedback.Content, &feedback.OwnerUsername,
		&feedback.CreatedAt, &feedback.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, &model.NotFoundError{Resource: "feedback", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}

	return feedback, nil
}

// DeleteByID は指定IDのフィードバックを削除する。
func (r *PostgresFeedbackRepo) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM feedback WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &model.NotFoundError{Resource: "feedback", Key: strconv.FormatInt(id, 10)}
	}
	return nil
}

// compile-time interface check
var _ FeedbackRepository = (*PostgresFeedbackRepo)(nil)

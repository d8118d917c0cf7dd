// Package feedback はフィードバック投稿のドメインロジックを提供する。
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/feedbackboard/internal/model"
	"github.com/hitoshi/feedbackboard/internal/repository"
	"github.com/hitoshi/feedbackboard/internal/security"
)

// MetricsRecorder はフィードバック関連のドメインメトリクス収集インターフェース。
type MetricsRecorder interface {
	RecordFeedbackCreated()
}

// Service はフィードバック管理のサービス層。
// 保存前に本文をサニタイズし、タイトルからはマークアップを除去する。
type Service struct {
	feedbackRepo repository.FeedbackRepository
	sanitizer    security.ContentSanitizerService
	metrics      MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil可。
func NewService(
	feedbackRepo repository.FeedbackRepository,
	sanitizer security.ContentSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		feedbackRepo: feedbackRepo,
		sanitizer:    sanitizer,
		metrics:      metrics,
	}
}

// Create はフィードバックを作成する。
// 所有者は作成時に確定し、以後変更されない。
func (s *Service) Create(ctx context.Context, title, content, ownerUsername string) (*model.Feedback, error) {
	now := time.Now()
	feedback := &model.Feedback{
		Title:         s.sanitizer.SanitizeText(title),
		Content:       s.sanitizer.Sanitize(content),
		OwnerUsername: ownerUsername,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("フィードバックの作成に失敗しました: %w", err)
	}

	slog.Info("フィードバックを作成しました",
		slog.Int64("feedback_id", feedback.ID),
		slog.String("username", ownerUsername),
	)
	if s.metrics != nil {
		s.metrics.RecordFeedbackCreated()
	}

	return feedback, nil
}

// Get は指定IDのフィードバックを取得する。
// 見つからない場合はmodel.NotFoundErrorを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Feedback, error) {
	feedback, err := s.feedbackRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("フィードバックの取得に失敗しました: %w", err)
	}
	if feedback == nil {
		return nil, &model.NotFoundError{Resource: "feedback", Key: fmt.Sprintf("%d", id)}
	}
	return feedback, nil
}

// ListByOwner は指定ユーザーのフィードバック一覧を返す。
func (s *Service) ListByOwner(ctx context.Context, username string) ([]*model.Feedback, error) {
	results, err := s.feedbackRepo.ListByOwner(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("フィードバック一覧の取得に失敗しました: %w", err)
	}
	return results, nil
}

// Update はタイトルと本文を更新する。所有者は変更しない。
// 見つからない場合はmodel.NotFoundErrorを返す。
func (s *Service) Update(ctx context.Context, id int64, title, content string) (*model.Feedback, error) {
	feedback, err := s.feedbackRepo.Update(ctx, id,
		s.sanitizer.SanitizeText(title),
		s.sanitizer.Sanitize(content),
	)
	if err != nil {
		return nil, err
	}

	slog.Info("フィードバックを更新しました",
		slog.Int64("feedback_id", id),
	)
	return feedback, nil
}

// Delete は指定IDのフィードバックを削除する。
// 見つからない場合はmodel.NotFoundErrorを返す。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.feedbackRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	slog.Info("フィードバックを削除しました",
		slog.Int64("feedback_id", id),
	)
	return nil
}

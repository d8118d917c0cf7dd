package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/feedbackboard/internal/model"
	"github.com/hitoshi/feedbackboard/internal/repository"
)

// ServiceConfig はセッションサービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッションの有効期間（秒）
}

// Service はセッションのライフサイクルとフラッシュキューを管理するサービス層。
type Service struct {
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(sessionRepo repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// Login は指定ユーザーの新しいセッションを発行する。
// セッション固定化攻撃を防ぐため、既存セッションを引き継がず必ず新しいIDを採番する。
// oldSessionIDが空でない場合は旧セッションを破棄する。
func (s *Service) Login(ctx context.Context, username, oldSessionID string) (*model.Session, error) {
	if oldSessionID != "" {
		if err := s.sessionRepo.DeleteByID(ctx, oldSessionID); err != nil {
			return nil, fmt.Errorf("旧セッションの破棄に失敗しました: %w", err)
		}
	}

	session := &model.Session{
		ID:        uuid.NewString(),
		Username:  username,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}
	return session, nil
}

// BeginAnonymous は識別情報を持たない匿名セッションを発行する。
// 未ログインクライアントへのフラッシュ通知の保持に使う。
func (s *Service) BeginAnonymous(ctx context.Context) (*model.Session, error) {
	session := &model.Session{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("匿名セッションの作成に失敗しました: %w", err)
	}
	return session, nil
}

// Logout はセッションを破棄する。
// sessionIDが空（匿名クライアント）の場合は何もしない。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("セッションの破棄に失敗しました: %w", err)
	}
	return nil
}

// PushFlash はセッションのフラッシュキューに通知を追加する。
func (s *Service) PushFlash(ctx context.Context, sessionID, severity, message string) error {
	if err := s.sessionRepo.AppendFlash(ctx, sessionID, model.Flash{
		Severity: severity,
		Message:  message,
	}); err != nil {
		return fmt.Errorf("フラッシュの追加に失敗しました: %w", err)
	}
	return nil
}

// DrainFlashes はフラッシュキューの全通知を取り出してキューを空にする。
// sessionIDが空の場合は空のスライスを返す。
func (s *Service) DrainFlashes(ctx context.Context, sessionID string) ([]model.Flash, error) {
	if sessionID == "" {
		return nil, nil
	}
	flashes, err := s.sessionRepo.DrainFlashes(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("フラッシュの取得に失敗しました: %w", err)
	}
	return flashes, nil
}

// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/feedbackboard/internal/auth"
	"github.com/hitoshi/feedbackboard/internal/model"
	"github.com/hitoshi/feedbackboard/internal/repository"
)

// MetricsRecorder はユーザー関連のドメインメトリクス収集インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordLogin()
}

// RegisterParams はユーザー登録の入力値。Passwordは平文で受け取り、保存前にハッシュ化する。
type RegisterParams struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// Service はユーザー管理のサービス層。
// 登録・認証・取得・退会のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      auth.PasswordHasher
	metrics     MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil可（テストなど収集不要の場合）。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher auth.PasswordHasher,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		metrics:     metrics,
	}
}

// Register はパスワードをハッシュ化してユーザーを作成する。
// usernameまたはemailが既に使われている場合はmodel.DuplicateKeyErrorを返す。
// 一意性はDBの制約のみで保証するため、事前の存在チェックは行わない。
func (s *Service) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Username:     params.Username,
		PasswordHash: hash,
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("ユーザーを登録しました",
		slog.String("username", user.Username),
	)
	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}

	return user, nil
}

// Authenticate はユーザー名とパスワードを検証する。
// ユーザーが存在しない、またはパスワードが一致しない場合はエラーではなくnilを返す。
// 認証失敗は正常系の結果であり、呼び出し側で「不正な資格情報」として扱う。
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	if !s.hasher.Check(user.PasswordHash, password) {
		return nil, nil
	}

	if s.metrics != nil {
		s.metrics.RecordLogin()
	}
	return user, nil
}

// Get は指定ユーザー名のユーザーを取得する。
// 見つからない場合はmodel.NotFoundErrorを返す。
func (s *Service) Get(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, &model.NotFoundError{Resource: "users", Key: username}
	}
	return user, nil
}

// Delete はユーザーの退会処理を実行する。
// セッションを明示的に削除した後、ユーザーを削除する。
// feedbackはDBのON DELETE CASCADEにより自動的に削除される。
func (s *Service) Delete(ctx context.Context, username string) error {
	slog.Info("退会処理を開始します",
		slog.String("username", username),
	)

	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUsername(ctx, username); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	if err := s.userRepo.DeleteByUsername(ctx, username); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("username", username),
	)

	return nil
}

// Package logger はJSON構造化ログのセットアップを提供する。
// 全サブコマンド（serve/worker/migrate）で同一のログ形式を使う。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup は指定writerへJSON形式で出力するslog.Loggerを生成して返す。
// ログレベルはInfo固定。Debugログは収集コストに見合わないため出力しない。
func Setup(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// SetupDefault はSetupで生成したロガーをslogのグローバルロガーとして設定する。
// writerがnilの場合はos.Stdoutに出力する（本番のコンテナログ収集を想定）。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w))
}

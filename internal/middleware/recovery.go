package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hitoshi/feedbackboard/internal/model"
)

// NewRecoveryMiddleware はハンドラーのpanicを捕捉してプロセスクラッシュを防ぐミドルウェアを返す。
// panicの内容とスタックトレースはログにのみ記録し、
// クライアントには統一エラーフォーマットの500を返す。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				slog.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				apiErr := model.NewInternalError()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":     apiErr.Code,
					"message":  apiErr.Message,
					"category": apiErr.Category,
					"action":   apiErr.Action,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package handler

import (
	"net/http"

	"github.com/hitoshi/feedbackboard/internal/model"
)

// 認可ガード。拒否は常にフラッシュ＋ホームへのリダイレクトで表現し、
// ハードエラーにはしない。

// loginRequiredMessage はガード拒否時のフラッシュメッセージ。
const loginRequiredMessage = "このページを表示するにはログインが必要です。"

// requireAuthenticated はセッションに識別情報があるときのみ許可する。
func requireAuthenticated(session *model.Session) bool {
	return session.IsAuthenticated()
}

// requireSelf はセッションの識別情報が対象ユーザー名と一致するときのみ許可する。
// 未ログインは常に拒否。
func requireSelf(session *model.Session, targetUsername string) bool {
	return session.IsAuthenticated() && session.Username == targetUsername
}

// deny はガード拒否の共通処理。フラッシュを積んでホームへリダイレクトする。
func (m *sessionManager) deny(w http.ResponseWriter, r *http.Request) {
	m.flash(w, r, model.FlashInfo, loginRequiredMessage)
	redirect(w, r, "/")
}

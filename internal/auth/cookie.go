package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignSessionID はセッションIDにHMAC-SHA256署名を付けたCookie値を生成する。
// 形式: "<sessionID>.<hex署名>"
func SignSessionID(secret, sessionID string) string {
	return sessionID + "." + signature(secret, sessionID)
}

// VerifySessionID は署名付きCookie値を検証し、セッションIDを取り出す。
// 署名が一致しない場合や形式が不正な場合はok=falseを返す。
func VerifySessionID(secret, cookieValue string) (string, bool) {
	sessionID, sig, found := strings.Cut(cookieValue, ".")
	if !found || sessionID == "" {
		return "", false
	}
	expected := signature(secret, sessionID)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return sessionID, true
}

func signature(secret, sessionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

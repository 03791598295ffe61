package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// LoginPath はログインページのパス。未認証リダイレクトの宛先。
const LoginPath = "/auth/login/"

// RequireLogin は認証済みユーザーのみを通すガードミドルウェアを返す。
// 未認証リクエストはログインページへリダイレクトし、元のパスをnextクエリ
// パラメータで引き継ぐ。エラーページは表示しない。
// SessionMiddlewareの後に配置すること。
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			target := LoginPath + "?next=" + escapeNext(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// escapeNext はnextパラメータ用にパスをエスケープする。
// パス区切りの/はそのまま残す（/auth/login/?next=/new/の形を保つ）。
func escapeNext(uri string) string {
	return strings.ReplaceAll(url.QueryEscape(uri), "%2F", "/")
}

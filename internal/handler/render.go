// Package handler はHTMLページのHTTPハンドラーを提供する。
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/nikki/internal/middleware"
	"github.com/hitoshi/nikki/internal/model"
	"github.com/hitoshi/nikki/internal/view"
)

// Renderer はテンプレートレンダリングのインターフェース。
// view.Registryの部分集合として定義する。
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// nav はリクエストコンテキストから共通ナビゲーション状態を組み立てる。
func nav(r *http.Request) view.Nav {
	return view.Nav{
		CurrentUser: middleware.UserFromContext(r.Context()),
		CSRFToken:   middleware.CSRFTokenFromContext(r.Context()),
	}
}

// renderPage はテンプレートを描画する。描画失敗時は500を返す。
// テンプレートの書き込み途中で失敗した場合はヘッダー変更できないためログのみ残す。
func renderPage(w http.ResponseWriter, r *http.Request, renderer Renderer, name string, data any) {
	if err := renderer.Render(w, name, data); err != nil {
		slog.Error("failed to render page",
			slog.String("template", name),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// renderNotFound は404ページを描画する。
func renderNotFound(w http.ResponseWriter, r *http.Request, renderer Renderer) {
	w.WriteHeader(http.StatusNotFound)
	data := view.NotFoundPage{Nav: nav(r), Path: r.URL.Path}
	if err := renderer.Render(w, "notfound.html", data); err != nil {
		slog.Error("failed to render not-found page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// not_foundカテゴリは404ページ、それ以外は500を返す。
func handleServiceError(w http.ResponseWriter, r *http.Request, renderer Renderer, err error) {
	if model.IsNotFound(err) {
		renderNotFound(w, r, renderer)
		return
	}
	slog.Error("unexpected service error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

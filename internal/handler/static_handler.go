package handler

import (
	"net/http"

	"github.com/hitoshi/nikki/internal/view"
)

// StaticHandler は固定コンテンツページのHTTPハンドラー。
type StaticHandler struct {
	renderer Renderer
}

// NewStaticHandler はStaticHandlerを生成する。
func NewStaticHandler(renderer Renderer) *StaticHandler {
	return &StaticHandler{renderer: renderer}
}

// Author は作者紹介ページを表示する。
// GET /about/author/
func (h *StaticHandler) Author(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "author.html", view.StaticPage{Nav: nav(r)})
}

// Tech は技術スタック紹介ページを表示する。
// GET /about/tech/
func (h *StaticHandler) Tech(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "tech.html", view.StaticPage{Nav: nav(r)})
}

// NotFound は未定義ルートの404ページを表示する。
func (h *StaticHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, r, h.renderer)
}

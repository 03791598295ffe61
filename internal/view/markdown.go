// Package view はテンプレートレンダリングとルートごとのビューモデルを提供する。
package view

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// sanitizer はユーザー投稿のHTML出力に適用するポリシー。
// UGCPolicyはリンクや強調などの表示用タグのみを許可する。
var sanitizer = bluemonday.UGCPolicy()

// RenderMarkdown は投稿本文のMarkdownをサニタイズ済みHTMLに変換する。
// 出力はbluemondayを通すためテンプレートに直接埋め込める。
func RenderMarkdown(text string) template.HTML {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(text))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})
	rendered := markdown.Render(doc, renderer)

	return template.HTML(sanitizer.SanitizeBytes(rendered))
}

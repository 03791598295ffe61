package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pageTemplates はbase.htmlと組み合わせて描画するページテンプレートの一覧。
var pageTemplates = []string{
	"index.html",
	"group.html",
	"profile.html",
	"post.html",
	"new.html",
	"login.html",
	"signup.html",
	"author.html",
	"tech.html",
	"notfound.html",
}

// Registry は埋め込みテンプレートを名前で引けるレンダラー。
// 各ページテンプレートはbase.htmlのレイアウトに埋め込んで描画する。
type Registry struct {
	templates map[string]*template.Template
}

// NewRegistry は全ページテンプレートをパースしてRegistryを生成する。
func NewRegistry() (*Registry, error) {
	templates := make(map[string]*template.Template, len(pageTemplates))

	for _, name := range pageTemplates {
		tmpl, err := template.New(name).ParseFS(templatesFS,
			"templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &Registry{templates: templates}, nil
}

// Render は指定テンプレートをbase.htmlレイアウトで描画する。
func (r *Registry) Render(w io.Writer, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

package view

import (
	"html/template"
	"time"

	"github.com/hitoshi/nikki/internal/form"
	"github.com/hitoshi/nikki/internal/model"
	"github.com/hitoshi/nikki/internal/pagination"
)

// Nav は全ページ共通のナビゲーション状態。
// CSRFTokenはフォームを含むすべてのページで隠しフィールドに埋め込む。
type Nav struct {
	CurrentUser *model.User
	CSRFToken   string
}

// PostItem は一覧・詳細表示用の投稿ビュー。
// HTMLはMarkdown変換とサニタイズ済みの本文。
type PostItem struct {
	ID             int64
	Text           string
	HTML           template.HTML
	Preview        string
	AuthorUsername string
	GroupTitle     string
	GroupSlug      string
	PublishedAt    time.Time
}

// NewPostItem はリポジトリの投稿レコードから表示用ビューを構築する。
func NewPostItem(post *model.PostWithAuthor) PostItem {
	return PostItem{
		ID:             post.ID,
		Text:           post.Text,
		HTML:           RenderMarkdown(post.Text),
		Preview:        post.Preview(),
		AuthorUsername: post.AuthorUsername,
		GroupTitle:     post.GroupTitle,
		GroupSlug:      post.GroupSlug,
		PublishedAt:    post.PublishedAt,
	}
}

// NewPostItems は投稿レコードのスライスを表示用ビューに変換する。
func NewPostItems(posts []model.PostWithAuthor) []PostItem {
	items := make([]PostItem, len(posts))
	for i := range posts {
		items[i] = NewPostItem(&posts[i])
	}
	return items
}

// IndexPage は最新投稿一覧（index.html）のビューモデル。
type IndexPage struct {
	Nav
	Posts []PostItem
	Page  pagination.Page
}

// GroupPage はグループ別一覧（group.html）のビューモデル。
type GroupPage struct {
	Nav
	Group *model.Group
	Posts []PostItem
	Page  pagination.Page
}

// ProfilePage は著者プロフィール（profile.html）のビューモデル。
type ProfilePage struct {
	Nav
	Author     *model.User
	PostsCount int
	Posts      []PostItem
	Page       pagination.Page
}

// PostDetailPage は投稿詳細（post.html）のビューモデル。
type PostDetailPage struct {
	Nav
	Post       PostItem
	PostsCount int
}

// PostFormPage は投稿フォーム（new.html）のビューモデル。
// Editフラグで新規作成と編集の文言を切り替える。
type PostFormPage struct {
	Nav
	Form   *form.PostForm
	Groups []*model.Group
	Edit   bool
	Action string // フォームのPOST先パス
}

// LoginPage はログインフォーム（login.html）のビューモデル。
type LoginPage struct {
	Nav
	Username string
	Next     string
	ErrorMsg string
}

// SignupPage はユーザー登録フォーム（signup.html）のビューモデル。
type SignupPage struct {
	Nav
	Username string
	ErrorMsg string
}

// StaticPage は静的ページ（author.html / tech.html）のビューモデル。
type StaticPage struct {
	Nav
}

// NotFoundPage は404ページのビューモデル。
type NotFoundPage struct {
	Nav
	Path string
}

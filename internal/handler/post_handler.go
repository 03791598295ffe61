package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nikki/internal/form"
	"github.com/hitoshi/nikki/internal/middleware"
	"github.com/hitoshi/nikki/internal/model"
	"github.com/hitoshi/nikki/internal/post"
	"github.com/hitoshi/nikki/internal/view"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// Latest は全投稿の新着順一覧をページ指定付きで返す。
	Latest(ctx context.Context, rawPage string) (*post.Listing, error)
	// ByGroup は指定slugのグループの投稿一覧を返す。
	ByGroup(ctx context.Context, slug, rawPage string) (*post.GroupListing, error)
	// ByAuthor は指定ユーザー名の著者の投稿一覧を返す。
	ByAuthor(ctx context.Context, username, rawPage string) (*post.AuthorListing, error)
	// DetailByAuthor は投稿IDと著者ユーザー名の組で投稿詳細を返す。
	DetailByAuthor(ctx context.Context, username string, postID int64) (*post.Detail, error)
	// Create は検証済みフォームから新しい投稿を作成する。
	Create(ctx context.Context, author *model.User, f *form.PostForm) (*model.Post, error)
	// ForEdit は編集対象の投稿を所有権チェック付きで返す。
	ForEdit(ctx context.Context, user *model.User, username string, postID int64) (*model.PostWithAuthor, error)
	// Update は検証済みフォームの値で投稿を更新する。
	Update(ctx context.Context, user *model.User, username string, postID int64, f *form.PostForm) (*model.Post, error)
}

// GroupListerFinder は投稿フォームのグループ選択肢と存在確認に必要なインターフェース。
// repository.GroupRepositoryの部分集合として定義する。
type GroupListerFinder interface {
	ListAll(ctx context.Context) ([]*model.Group, error)
	FindByID(ctx context.Context, id string) (*model.Group, error)
}

// PostHandler は投稿表示・作成・編集のHTTPハンドラー。
type PostHandler struct {
	service  PostServiceInterface
	groups   GroupListerFinder
	renderer Renderer
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface, groups GroupListerFinder, renderer Renderer) *PostHandler {
	return &PostHandler{
		service:  service,
		groups:   groups,
		renderer: renderer,
	}
}

// Index は新着順の投稿一覧を表示する。
// GET /?page=N
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.Latest(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		handleServiceError(w, r, h.renderer, err)
		return
	}

	data := view.IndexPage{
		Nav:   nav(r),
		Posts: view.NewPostItems(listing.Posts),
		Page:  listing.Page,
	}
	renderPage(w, r, h.renderer, "index.html", data)
}

// GroupPosts はグループ別の投稿一覧を表示する。
// GET /group/{slug}/?page=N
func (h *PostHandler) GroupPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	listing, err := h.service.ByGroup(r.Context(), slug, r.URL.Query().Get("page"))
	if err != nil {
		handleServiceError(w, r, h.renderer, err)
		return
	}

	data := view.GroupPage{
		Nav:   nav(r),
		Group: listing.Group,
		Posts: view.NewPostItems(listing.Posts),
		Page:  listing.Page,
	}
	renderPage(w, r, h.renderer, "group.html", data)
}

// Profile は著者のプロフィールと投稿一覧を表示する。
// GET /{username}/?page=N
func (h *PostHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	listing, err := h.service.ByAuthor(r.Context(), username, r.URL.Query().Get("page"))
	if err != nil {
		handleServiceError(w, r, h.renderer, err)
		return
	}

	data := view.ProfilePage{
		Nav:        nav(r),
		Author:     listing.Author,
		PostsCount: listing.Total,
		Posts:      view.NewPostItems(listing.Posts),
		Page:       listing.Page,
	}
	renderPage(w, r, h.renderer, "profile.html", data)
}

// PostDetail は投稿詳細を表示する。
// GET /{username}/{postID}/
func (h *PostHandler) PostDetail(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	postID, ok := parsePostID(r)
	if !ok {
		renderNotFound(w, r, h.renderer)
		return
	}

	detail, err := h.service.DetailByAuthor(r.Context(), username, postID)
	if err != nil {
		handleServiceError(w, r, h.renderer, err)
		return
	}

	data := view.PostDetailPage{
		Nav:        nav(r),
		Post:       view.NewPostItem(detail.Post),
		PostsCount: detail.AuthorPostCount,
	}
	renderPage(w, r, h.renderer, "post.html", data)
}

// NewPost は新規投稿フォームを表示する。
// GET /new/
func (h *PostHandler) NewPost(w http.ResponseWriter, r *http.Request) {
	h.renderPostForm(w, r, form.NewPostForm(), false, "/new/")
}

// CreatePost はフォーム送信から新しい投稿を作成する。
// POST /new/
// バリデーション失敗時は入力値を保持したままフォームを再描画する。
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	f := form.ParsePostForm(r.PostForm)
	valid, err := f.Validate(r.Context(), h.groups)
	if err != nil {
		handleServiceError(w, r, h.renderer, err)
		return
	}
	if !valid {
		h.renderPostForm(w, r, f, false, "/new/")
		return
	}

	if _, err := h.service.Create(r.Context(), user, f); err != nil {
		handleServiceError(w, r, h.renderer, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// EditPost は投稿編集フォームを表示する。
// GET /{username}/{postID}/edit/
// 著者以外がアクセスした場合は投稿詳細へリダイレクトする。
func (h *PostHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	username := chi.URLParam(r, "username")
	postID, ok := parsePostID(r)
	if !ok {
		renderNotFound(w, r, h.renderer)
		return
	}

	found, err := h.service.ForEdit(r.Context(), user, username, postID)
	if err != nil {
		if model.IsNotAuthor(err) {
			http.Redirect(w, r, postDetailPath(username, postID), http.StatusFound)
			return
		}
		handleServiceError(w, r, h.renderer, err)
		return
	}

	h.renderPostForm(w, r, form.FromPost(&found.Post), true, postEditPath(username, postID))
}

// UpdatePost はフォーム送信から投稿を更新する。
// POST /{username}/{postID}/edit/
// 著者以外の送信は投稿詳細へリダイレクトする。
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	username := chi.URLParam(r, "username")
	postID, ok := parsePostID(r)
	if !ok {
		renderNotFound(w, r, h.renderer)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	f := form.ParsePostForm(r.PostForm)
	valid, err := f.Validate(r.Context(), h.groups)
	if err != nil {
		handleServiceError(w, r, h.renderer, err)
		return
	}
	if !valid {
		h.renderPostForm(w, r, f, true, postEditPath(username, postID))
		return
	}

	if _, err := h.service.Update(r.Context(), user, username, postID, f); err != nil {
		if model.IsNotAuthor(err) {
			http.Redirect(w, r, postDetailPath(username, postID), http.StatusFound)
			return
		}
		handleServiceError(w, r, h.renderer, err)
		return
	}

	http.Redirect(w, r, postDetailPath(username, postID), http.StatusFound)
}

// renderPostForm は新規・編集共通の投稿フォームを描画する。
func (h *PostHandler) renderPostForm(w http.ResponseWriter, r *http.Request, f *form.PostForm, edit bool, action string) {
	groups, err := h.groups.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, r, h.renderer, err)
		return
	}

	data := view.PostFormPage{
		Nav:    nav(r),
		Form:   f,
		Groups: groups,
		Edit:   edit,
		Action: action,
	}
	renderPage(w, r, h.renderer, "new.html", data)
}

// parsePostID はURLパラメータから投稿IDを読み取る。
func parsePostID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func postDetailPath(username string, postID int64) string {
	return fmt.Sprintf("/%s/%d/", username, postID)
}

func postEditPath(username string, postID int64) string {
	return fmt.Sprintf("/%s/%d/edit/", username, postID)
}

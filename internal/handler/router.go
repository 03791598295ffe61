package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/nikki/internal/metrics"
	"github.com/hitoshi/nikki/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionProvider middleware.CurrentUserProvider
	RateLimiter     *middleware.RateLimiter
	CSRFConfig      middleware.CSRFConfig
	Logger          *slog.Logger

	// メトリクス
	Recorder metrics.Recorder
	Gatherer prometheus.Gatherer

	// サービス
	PostService PostServiceInterface
	GroupRepo   GroupListerFinder
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ヘルスチェック
	DB Pinger

	// テンプレート
	Renderer Renderer
}

// NewRouter は全ページのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Metrics → Session → Logging → CSRF → RateLimit(General)
//
// SessionはLoggingより先に適用し、アクセスログにユーザー名が載るようにする。
// /metricsと/healthzはページ用ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	postHandler := NewPostHandler(deps.PostService, deps.GroupRepo, deps.Renderer)
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Recorder, deps.Renderer)
	staticHandler := NewStaticHandler(deps.Renderer)

	// --- 運用エンドポイント ---

	r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	r.Get("/healthz", NewHealthHandler(deps.DB))

	// --- ページルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRecoveryMiddleware())
		r.Use(middleware.NewSecurityHeadersMiddleware())
		if deps.Recorder != nil {
			r.Use(metrics.NewHTTPMiddleware(deps.Recorder))
		}
		r.Use(middleware.NewSessionMiddleware(deps.SessionProvider))
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.NotFound(staticHandler.NotFound)

		// 投稿一覧
		r.Get("/", postHandler.Index)
		r.Get("/group/{slug}/", postHandler.GroupPosts)

		// 固定ページ
		r.Get("/about/author/", staticHandler.Author)
		r.Get("/about/tech/", staticHandler.Tech)

		// 認証
		r.Route("/auth", func(r chi.Router) {
			r.Get("/signup/", authHandler.SignupForm)
			r.Post("/signup/", authHandler.Signup)
			r.Get("/login/", authHandler.LoginForm)
			r.Post("/login/", authHandler.Login)
			r.Post("/logout/", authHandler.Logout)
		})

		// 投稿作成（要ログイン、作成専用レート制限を追加）
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.PostCreateMiddleware())
			}
			r.Get("/new/", postHandler.NewPost)
			r.Post("/new/", postHandler.CreatePost)
		})

		// プロフィールと投稿詳細。固定パスに一致しないパスの受け皿になる。
		r.Get("/{username}/", postHandler.Profile)
		r.Route("/{username}/{postID}", func(r chi.Router) {
			r.Get("/", postHandler.PostDetail)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireLogin)
				r.Get("/edit/", postHandler.EditPost)
				r.Post("/edit/", postHandler.UpdatePost)
			})
		})
	})

	return r
}

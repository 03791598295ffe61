package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // 全ページ共通のレート（req/sec）
	GeneralBurst    int           // 全ページ共通のバーストサイズ
	PostCreateRate  rate.Limit    // 投稿作成のレート（req/sec）
	PostCreateBurst int           // 投稿作成のバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 全ページ 300 req/min/クライアント、投稿作成 10 req/min/ユーザー。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(300.0 / 60.0), // 5 req/sec
		GeneralBurst:    300,
		PostCreateRate:  rate.Limit(10.0 / 60.0), // ~0.167 req/sec
		PostCreateBurst: 10,
		CleanupInterval: 5 * time.Minute,
	}
}

// clientLimiter はクライアントごとのレートリミッターとアクセス時刻を保持する。
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter はクライアントごとのレート制限を管理する。
// 閲覧は匿名でもできるため、全ページ共通の制限は認証済みならユーザーID、
// 匿名ならリモートIPをキーにする。投稿作成の制限はユーザーIDをキーにする。
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[string]*clientLimiter

	postCreateMu       sync.RWMutex
	postCreateLimiters map[string]*clientLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:             config,
		generalLimiters:    make(map[string]*clientLimiter),
		postCreateLimiters: make(map[string]*clientLimiter),
		stopCh:             make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware は全ページ共通のレート制限ミドルウェアを返す。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			limiter := rl.getOrCreateLimiter(
				&rl.generalMu, rl.generalLimiters, key,
				rl.config.GeneralRate, rl.config.GeneralBurst,
			)

			if !limiter.Allow() {
				slog.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("limit_type", "general"),
				)
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PostCreateMiddleware は投稿作成専用のレート制限ミドルウェアを返す。
// 全ページ共通のレート制限とは独立に動作する。
// RequireLoginの後に配置すること。
func (rl *RateLimiter) PostCreateMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// フォームのGET表示は制限しない
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			user := UserFromContext(r.Context())
			if user == nil {
				http.Redirect(w, r, LoginPath+"?next="+escapeNext(r.URL.RequestURI()), http.StatusFound)
				return
			}

			limiter := rl.getOrCreateLimiter(
				&rl.postCreateMu, rl.postCreateLimiters, user.ID,
				rl.config.PostCreateRate, rl.config.PostCreateBurst,
			)

			if !limiter.Allow() {
				slog.Warn("rate limit exceeded",
					slog.String("user_id", user.ID),
					slog.String("limit_type", "post_create"),
				)
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されている全ページ共通リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// PostCreateLimiterCount は現在管理されている投稿作成リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) PostCreateLimiterCount() int {
	rl.postCreateMu.RLock()
	defer rl.postCreateMu.RUnlock()
	return len(rl.postCreateLimiters)
}

// clientKey はレート制限のキーを返す。認証済みならユーザーID、匿名ならリモートIP。
func clientKey(r *http.Request) string {
	if user := UserFromContext(r.Context()); user != nil {
		return "user:" + user.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// getOrCreateLimiter は指定キーのリミッターを取得または作成する。
func (rl *RateLimiter) getOrCreateLimiter(
	mu *sync.RWMutex, limiters map[string]*clientLimiter, key string,
	limit rate.Limit, burst int,
) *rate.Limiter {
	mu.RLock()
	cl, exists := limiters[key]
	mu.RUnlock()

	if exists {
		mu.Lock()
		cl.lastAccess = time.Now()
		mu.Unlock()
		return cl.limiter
	}

	mu.Lock()
	defer mu.Unlock()

	// ダブルチェック
	if cl, exists := limiters[key]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(limit, burst)
	limiters[key] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup はクリーンアップ間隔の2倍を超えてアクセスのないエントリを削除する。
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-2 * rl.config.CleanupInterval)

	rl.generalMu.Lock()
	for key, cl := range rl.generalLimiters {
		if cl.lastAccess.Before(cutoff) {
			delete(rl.generalLimiters, key)
		}
	}
	rl.generalMu.Unlock()

	rl.postCreateMu.Lock()
	for key, cl := range rl.postCreateLimiters {
		if cl.lastAccess.Before(cutoff) {
			delete(rl.postCreateLimiters, key)
		}
	}
	rl.postCreateMu.Unlock()
}

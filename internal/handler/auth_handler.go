package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/nikki/internal/middleware"
	"github.com/hitoshi/nikki/internal/model"
	"github.com/hitoshi/nikki/internal/view"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register はユーザーを新規作成する。
	// ユーザー名重複はconflict、入力不正はvalidationカテゴリのAppErrorを返す。
	Register(ctx context.Context, username, password string) (*model.User, error)
	// Login は認証に成功した場合に新しいセッションを返す。
	Login(ctx context.Context, username, password string) (*model.Session, error)
	// Logout はセッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
}

// LoginFailureRecorder はログイン失敗メトリクスの記録に必要なインターフェース。
// metrics.Recorderの部分集合として定義する。
type LoginFailureRecorder interface {
	RecordLoginFailure()
}

type nopFailureRecorder struct{}

func (nopFailureRecorder) RecordLoginFailure() {}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure  bool
	SignupEnabled bool
}

// AuthHandler はユーザー登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	config   AuthHandlerConfig
	recorder LoginFailureRecorder
	renderer Renderer
}

// NewAuthHandler はAuthHandlerを生成する。
// recorderがnilの場合はメトリクスを記録しない。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, recorder LoginFailureRecorder, renderer Renderer) *AuthHandler {
	if recorder == nil {
		recorder = nopFailureRecorder{}
	}
	return &AuthHandler{
		service:  service,
		config:   config,
		recorder: recorder,
		renderer: renderer,
	}
}

// SignupForm はユーザー登録フォームを表示する。
// GET /auth/signup/
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if !h.config.SignupEnabled {
		renderNotFound(w, r, h.renderer)
		return
	}
	renderPage(w, r, h.renderer, "signup.html", view.SignupPage{Nav: nav(r)})
}

// Signup はフォーム送信からユーザーを新規作成する。
// POST /auth/signup/
// 作成後はログインページへリダイレクトする。
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.config.SignupEnabled {
		renderNotFound(w, r, h.renderer)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if _, err := h.service.Register(r.Context(), username, password); err != nil {
		var appErr *model.AppError
		if ok := asAppError(err, &appErr); ok {
			data := view.SignupPage{
				Nav:      nav(r),
				Username: username,
				ErrorMsg: appErr.Message,
			}
			renderPage(w, r, h.renderer, "signup.html", data)
			return
		}
		handleServiceError(w, r, h.renderer, err)
		return
	}

	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
}

// LoginForm はログインフォームを表示する。
// GET /auth/login/?next=/new/
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := view.LoginPage{
		Nav:  nav(r),
		Next: safeNextPath(r.URL.Query().Get("next")),
	}
	renderPage(w, r, h.renderer, "login.html", data)
}

// Login はフォーム送信から認証しセッションCookieを発行する。
// POST /auth/login/
// 成功時はnextパラメータのパス、未指定ならトップへリダイレクトする。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := safeNextPath(r.PostFormValue("next"))

	session, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		var appErr *model.AppError
		if ok := asAppError(err, &appErr); ok {
			h.recorder.RecordLoginFailure()
			w.WriteHeader(http.StatusUnauthorized)
			data := view.LoginPage{
				Nav:      nav(r),
				Username: username,
				Next:     next,
				ErrorMsg: appErr.Message,
			}
			renderPage(w, r, h.renderer, "login.html", data)
			return
		}
		handleServiceError(w, r, h.renderer, err)
		return
	}

	h.setSessionCookie(w, session)

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout はセッションを破棄してCookieを削除する。
// POST /auth/logout/
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			handleServiceError(w, r, h.renderer, err)
			return
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// setSessionCookie はセッションIDをHTTP Only Cookieに設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNextPath はリダイレクト先をサイト内の絶対パスに制限する。
// オープンリダイレクトを防ぐため、"//"や外部URLは破棄する。
func safeNextPath(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

// asAppError はエラーがAppErrorの場合にtargetへ格納する。
func asAppError(err error, target **model.AppError) bool {
	appErr, ok := err.(*model.AppError)
	if ok {
		*target = appErr
	}
	return ok
}

// Package handler はローカルWebクライアントのHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/teamfinder/internal/guard"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/oauth"
	"github.com/hitoshi/teamfinder/internal/session"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	LoginRedirect() session.ExternalRedirect
	Login(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Logout(ctx context.Context) error
	// Verify はトークンが現在もコラボレーターに受け入れられるかを確認する。セッションは変更しない。
	Verify(ctx context.Context, token string) error
}

// CallbackCompleter はOAuthコールバックのクエリからセッションを確立する。
type CallbackCompleter interface {
	Complete(ctx context.Context, params url.Values) (*oauth.Result, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	// SuccessDelay はログイン完了画面からトップへ戻るまでの時間。
	SuccessDelay time.Duration
	// ErrorDelay はログイン失敗画面からトップへ戻るまでの時間。
	ErrorDelay time.Duration
}

// AuthHandler はログイン・登録・OAuthコールバックのHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	completer CallbackCompleter
	users     SessionSource[model.User]
	render    *Renderer
	config    AuthHandlerConfig
	logger    *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, completer CallbackCompleter, users SessionSource[model.User], render *Renderer, config AuthHandlerConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		completer: completer,
		users:     users,
		render:    render,
		config:    config,
		logger:    logger,
	}
}

type credentialsForm struct {
	Name  string
	Email string
}

// Home はトップページを表示する。認証済みの場合はガードが一覧へ遷移させる。
// GET /
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "home", View{Title: "Halı Saha Takım Bul"})
}

// LoginPage はログインフォームを表示する。
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "login", View{Title: "Giriş Yap", Data: credentialsForm{}})
}

// Login はメールアドレスとパスワードでログインする。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := credentialsForm{Email: strings.TrimSpace(r.PostFormValue("email"))}
	if _, err := h.service.Login(r.Context(), form.Email, r.PostFormValue("password")); err != nil {
		handleServiceError(w, r, h.render, "login", View{Title: "Giriş Yap", Data: form}, err)
		return
	}
	http.Redirect(w, r, guard.ListingsPath, http.StatusSeeOther)
}

// RegisterPage は登録フォームを表示する。
// GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "register", View{Title: "Kayıt Ol", Data: credentialsForm{}})
}

// Register はアカウントを作成してログインする。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := credentialsForm{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Email: strings.TrimSpace(r.PostFormValue("email")),
	}
	if _, err := h.service.Register(r.Context(), form.Name, form.Email, r.PostFormValue("password")); err != nil {
		handleServiceError(w, r, h.render, "register", View{Title: "Kayıt Ol", Data: form}, err)
		return
	}
	http.Redirect(w, r, guard.ListingsPath, http.StatusSeeOther)
}

// GoogleLogin はコラボレーターのGoogle OAuth開始エンドポイントへ遷移させる。
// GET /auth/google/login
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	redirect := h.service.LoginRedirect()
	http.Redirect(w, r, redirect.URL, http.StatusSeeOther)
}

type callbackData struct {
	Name string
}

// Callback はOAuthコールバックを処理する。
// 成功・失敗どちらの場合も結果画面を表示し、一定時間後にトップへ戻す。
// GET /auth-success?user=...&token=...
// GET /auth/callback?user=...&token=...
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	result, err := h.completer.Complete(r.Context(), r.URL.Query())
	if err != nil {
		v := View{
			Title:   "Giriş Başarısız",
			Refresh: refreshAfter(h.config.ErrorDelay, guard.HomePath),
		}
		handleServiceError(w, r, h.render, "callback", v, err)
		return
	}

	name := result.User.Name
	if name == "" {
		name = result.User.Email
	}
	h.render.Render(w, r, http.StatusOK, "callback", View{
		Title:   "Giriş Başarılı",
		Notice:  "Giriş başarılı! Yönlendiriliyorsunuz...",
		Refresh: refreshAfter(h.config.SuccessDelay, guard.HomePath),
		Data:    callbackData{Name: name},
	})
}

// Logout は通常セッションをローカルで破棄する。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, guard.HomePath, http.StatusSeeOther)
}

type debugData struct {
	Identity    *model.User
	Token       string
	TokenLength int
	Loading     bool
	Checked     bool
	CheckError  string
}

// Debug は保存されているセッションの内容を表示する。トークンは伏せる。
// ?check=1 の場合はトークンがコラボレーターに受け入れられるかも確認する。
// GET /debug
func (h *AuthHandler) Debug(w http.ResponseWriter, r *http.Request) {
	snap := h.users.Current()
	data := debugData{
		Identity:    snap.Identity,
		Token:       snap.Credential,
		TokenLength: len(snap.Credential),
		Loading:     snap.Loading,
	}

	if r.URL.Query().Get("check") == "1" && snap.Credential != "" {
		data.Checked = true
		if err := h.service.Verify(r.Context(), snap.Credential); err != nil {
			data.CheckError = err.Error()
		}
	}

	h.render.Render(w, r, http.StatusOK, "debug", View{Title: "Debug", Data: data})
}

// ClearSession は保存されているセッションを削除してデバッグ画面に戻る。
// POST /debug/clear
func (h *AuthHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/debug", http.StatusSeeOther)
}

type testAuthData struct {
	HasUserParam  bool
	HasTokenParam bool
	HasIdentity   bool
	HasToken      bool
}

// testAuthDelay はテスト画面からコールバックへ転送するまでの時間。
const testAuthDelay = 2 * time.Second

// TestAuth はOAuthのパラメータと保存状態を確認する画面を表示する。
// user と token の両方があれば、コールバックへそのまま転送する。
// GET /test-auth
func (h *AuthHandler) TestAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap := h.users.Current()
	data := testAuthData{
		HasUserParam:  q.Get("user") != "",
		HasTokenParam: q.Get("token") != "",
		HasIdentity:   snap.Identity != nil,
		HasToken:      snap.Credential != "",
	}

	v := View{Title: "Auth Test", Data: data}
	if data.HasUserParam && data.HasTokenParam {
		v.Refresh = refreshAfter(testAuthDelay, "/auth-success?"+r.URL.RawQuery)
	}
	h.render.Render(w, r, http.StatusOK, "test_auth", v)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamfinder/internal/guard"
	"github.com/hitoshi/teamfinder/internal/middleware"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/security"
)

// AccountService は通常ユーザー向けハンドラーが必要とするサービスをまとめたもの。
// *account.Service が満たす。
type AccountService interface {
	AuthServiceInterface
	ProfileServiceInterface
	PostServiceInterface
	LineupServiceInterface
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// セッション
	Users  SessionSource[model.User]
	Admins SessionSource[model.AdminUser]

	// ルートガード
	Guard  *guard.Guard
	States guard.StateSource

	// サービス
	Accounts  AccountService
	Completer CallbackCompleter
	Admin     AdminServiceInterface
	Sanitizer *security.ListingSanitizer

	AuthConfig AuthHandlerConfig

	// Metrics はnilの場合 /metrics を公開しない。
	Metrics http.Handler
}

// NewRouter は全ページのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders → CSRF → RouteGuard
//
// /health と /metrics はCSRFとルートガードの外に配置する。
func NewRouter(deps *RouterDeps) (http.Handler, error) {
	render, err := NewRenderer(deps.Users, deps.Admins, deps.Logger)
	if err != nil {
		return nil, err
	}

	authHandler := NewAuthHandler(deps.Accounts, deps.Completer, deps.Users, render, deps.AuthConfig, deps.Logger)
	profileHandler := NewProfileHandler(deps.Accounts, deps.Sanitizer, render)
	postHandler := NewPostHandler(deps.Accounts, deps.Sanitizer, render)
	lineupHandler := NewLineupHandler(deps.Accounts, deps.Sanitizer, render)
	adminHandler := NewAdminHandler(deps.Admin, deps.Sanitizer, render, deps.Logger)
	healthHandler := NewHealthHandler(deps.Users, deps.Admins)

	r := chi.NewRouter()
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	r.Get("/health", healthHandler.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.Logger))
		r.Use(guard.Middleware(deps.Guard, deps.States, deps.Logger))

		// 入口・認証
		r.Get("/", authHandler.Home)
		r.Get("/login", authHandler.LoginPage)
		r.Post("/login", authHandler.Login)
		r.Get("/register", authHandler.RegisterPage)
		r.Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)
		r.Get("/auth/google/login", authHandler.GoogleLogin)
		r.Get("/auth-success", authHandler.Callback)
		r.Get("/auth/callback", authHandler.Callback)
		r.Get("/debug", authHandler.Debug)
		r.Post("/debug/clear", authHandler.ClearSession)
		r.Get("/test-auth", authHandler.TestAuth)

		// プロフィール
		r.Get("/profile", profileHandler.Profile)
		r.Post("/profile", profileHandler.UpdateProfile)

		// 募集
		r.Get("/posts", postHandler.ListPosts)
		r.Get("/create-post", postHandler.CreatePostPage)
		r.Post("/create-post", postHandler.CreatePost)
		r.Get("/posts/{id}/edit", postHandler.EditPostPage)
		r.Post("/posts/{id}/edit", postHandler.UpdatePost)
		r.Get("/my-posts", postHandler.MyPosts)
		r.Post("/my-posts/{id}/delete", postHandler.DeletePost)

		// スタメン図
		r.Get("/lineup", lineupHandler.Builder)
		r.Post("/lineup", lineupHandler.CreateLineup)
		r.Get("/lineups", lineupHandler.ListLineups)
		r.Get("/lineups/{id}", lineupHandler.GetLineup)
		r.Post("/lineups/{id}", lineupHandler.UpdateLineup)
		r.Post("/lineups/{id}/delete", lineupHandler.DeleteLineup)

		// 管理者
		r.Route("/admin", func(r chi.Router) {
			r.Get("/", adminHandler.Dashboard)
			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/login", adminHandler.LoginPage)
			r.Post("/login", adminHandler.Login)
			r.Post("/logout", adminHandler.Logout)
			r.Post("/users/{id}/delete", adminHandler.DeleteUser)
			r.Post("/posts/{id}/delete", adminHandler.DeletePost)
		})
	})

	return r, nil
}

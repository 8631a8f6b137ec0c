package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/teamfinder/internal/admin"
	"github.com/hitoshi/teamfinder/internal/guard"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/security"
)

// AdminServiceInterface は管理者ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	Login(ctx context.Context, email, password string) (*model.AdminUser, error)
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) (*admin.Dashboard, error)
	DeleteUser(ctx context.Context, id int64) error
	DeletePost(ctx context.Context, id int64) error
}

// AdminHandler は管理者画面のHTTPハンドラー。
type AdminHandler struct {
	service   AdminServiceInterface
	sanitizer *security.ListingSanitizer
	render    *Renderer
	logger    *slog.Logger
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface, sanitizer *security.ListingSanitizer, render *Renderer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: service, sanitizer: sanitizer, render: render, logger: logger}
}

// LoginPage は管理者ログインフォームを表示する。
// GET /admin/login
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "admin_login", View{Title: "Admin Girişi", Data: credentialsForm{}})
}

// Login は管理者としてログインする。
// POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := credentialsForm{Email: strings.TrimSpace(r.PostFormValue("email"))}
	if _, err := h.service.Login(r.Context(), form.Email, r.PostFormValue("password")); err != nil {
		handleServiceError(w, r, h.render, "admin_login", View{Title: "Admin Girişi", Data: form}, err)
		return
	}
	http.Redirect(w, r, guard.AdminDashboardPath, http.StatusSeeOther)
}

// Logout は管理者セッションをローカルで破棄する。通常セッションには触れない。
// POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear admin session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, guard.AdminLoginPath, http.StatusSeeOther)
}

// Dashboard は集計値・ユーザー・募集を表示する。
// GET /admin
// GET /admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	v := View{Title: "Admin Paneli"}
	switch r.URL.Query().Get("deleted") {
	case "user":
		v.Notice = "Kullanıcı silindi."
	case "post":
		v.Notice = "İlan silindi."
	}

	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		handleServiceError(w, r, h.render, "admin_dashboard", v, err)
		return
	}
	users := make([]model.User, len(d.Users))
	for i, u := range d.Users {
		users[i] = h.sanitizer.User(u)
	}
	d.Users = users
	d.Posts = h.sanitizer.Posts(d.Posts)
	v.Data = d

	h.render.Render(w, r, http.StatusOK, "admin_dashboard", v)
}

// DeleteUser はユーザーを削除する。
// POST /admin/users/{id}/delete
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		handleServiceError(w, r, h.render, "admin_dashboard", View{Title: "Admin Paneli"}, err)
		return
	}
	http.Redirect(w, r, guard.AdminDashboardPath+"?deleted=user", http.StatusSeeOther)
}

// DeletePost は募集を削除する。
// POST /admin/posts/{id}/delete
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.service.DeletePost(r.Context(), id); err != nil {
		handleServiceError(w, r, h.render, "admin_dashboard", View{Title: "Admin Paneli"}, err)
		return
	}
	http.Redirect(w, r, guard.AdminDashboardPath+"?deleted=post", http.StatusSeeOther)
}

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/teamfinder/internal/api"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
	"github.com/hitoshi/teamfinder/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc    *Service
	admins *session.Store[model.AdminUser]
	users  *session.Store[model.User]
	kv     storage.KV
}

// newFixture はhttptestのコラボレーターに接続したServiceを生成する。
// 通常セッションと管理者セッションは同じKVを共有する。
func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ctx := context.Background()
	kv := storage.NewMemoryKV()
	admins := session.NewStore[model.AdminUser](kv, session.AdminNamespace(), discardLogger(), nil)
	users := session.NewStore[model.User](kv, session.UserNamespace(server.URL), discardLogger(), nil)
	admins.Initialize(ctx)
	users.Initialize(ctx)

	client := api.NewClient(api.Options{BaseURL: server.URL, HTTPClient: server.Client()}, discardLogger(), nil)
	return &fixture{
		svc:    NewService(client, admins, discardLogger()),
		admins: admins,
		users:  users,
		kv:     kv,
	}
}

func (f *fixture) signInBoth(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := f.users.Commit(ctx, model.User{ID: 1, Email: "u@b.com"}, "user-tok"); err != nil {
		t.Fatal(err)
	}
	if err := f.admins.Commit(ctx, model.AdminUser{ID: 9, Email: "admin@b.com"}, "admin-tok"); err != nil {
		t.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestAdminCall_Unauthorized_ClearsAdminAndRedirectsToLogin(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})
	f.signInBoth(t)

	_, err := f.svc.Stats(context.Background())

	var expired *session.ExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("error = %v, want ExpiredError", err)
	}
	if expired.RedirectTo != "/admin/login" {
		t.Errorf("RedirectTo = %q, want /admin/login", expired.RedirectTo)
	}
	if f.admins.Current().Authenticated() {
		t.Error("admin session should be cleared")
	}
	for _, key := range []string{"admin_user", "admin_token"} {
		if _, err := f.kv.Get(context.Background(), key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("%s should be removed", key)
		}
	}
	// 通常セッションは影響を受けない
	if !f.users.Current().Authenticated() {
		t.Error("regular session must not be touched")
	}
	if got, _ := f.kv.Get(context.Background(), "access_token"); got != "user-tok" {
		t.Errorf("access_token = %q, want user-tok", got)
	}
}

func TestAdminCall_Forbidden_AlsoExpires(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Admin yetkisi gerekli"})
	})
	f.signInBoth(t)

	err := f.svc.DeletePost(context.Background(), 4)

	var expired *session.ExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("error = %v, want ExpiredError", err)
	}
}

func TestAdminCall_NotFound_KeepsSession(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Kullanıcı bulunamadı"})
	})
	f.signInBoth(t)

	err := f.svc.DeleteUser(context.Background(), 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Kullanıcı bulunamadı" {
		t.Fatalf("error = %v", err)
	}
	if !f.admins.Current().Authenticated() {
		t.Error("admin session should remain")
	}
}

func TestLogin_CommitsAdminNamespaceOnly(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/auth/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "admin-tok",
			"token_type":   "bearer",
			"user":         map[string]any{"id": 9, "email": "admin@b.com", "is_admin": true, "role": "admin"},
		})
	})

	a, err := f.svc.Login(context.Background(), "admin@b.com", "master")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if a.ID != 9 {
		t.Errorf("admin id = %d", a.ID)
	}
	if !f.admins.Current().Authenticated() {
		t.Error("admin session should be authenticated")
	}
	for _, key := range []string{"user", "access_token"} {
		if _, err := f.kv.Get(context.Background(), key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("admin login must not write %s", key)
		}
	}
}

func TestLogin_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, status, map[string]string{"detail": "Geçersiz kimlik bilgisi"})
		})

		_, err := f.svc.Login(context.Background(), "x@b.com", "bad")

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAuthRejected {
			t.Errorf("status %d: error = %v, want auth rejection", status, err)
		}
	}
}

func TestDashboard_CollectsEverything(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer admin-tok" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Path {
		case "/admin/stats":
			writeJSON(w, http.StatusOK, model.AdminStats{TotalUsers: 3, TotalPosts: 2})
		case "/admin/users":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "email": "u@b.com", "is_verified": true}})
		case "/admin/posts":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 5, "title": "Forvet aranıyor"}})
		default:
			http.NotFound(w, r)
		}
	})
	f.signInBoth(t)

	d, err := f.svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if d.Stats.TotalUsers != 3 || len(d.Users) != 1 || len(d.Posts) != 1 {
		t.Errorf("dashboard = %+v", d)
	}
}

func TestLogout_LeavesRegularSession(t *testing.T) {
	f := newFixture(t, func(http.ResponseWriter, *http.Request) {})
	f.signInBoth(t)

	if err := f.svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if f.admins.Current().Authenticated() {
		t.Error("admin session should be cleared")
	}
	if !f.users.Current().Authenticated() {
		t.Error("regular session must survive admin logout")
	}
}

func TestVerify_UsesStatsEndpoint(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/stats" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{})
	})

	if err := f.svc.Verify(context.Background(), "stale"); !api.IsUnauthorized(err) {
		t.Errorf("Verify error = %v, want 401", err)
	}
}

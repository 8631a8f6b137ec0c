package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/teamfinder/internal/guard"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/security"
	"github.com/hitoshi/teamfinder/internal/session"
	"github.com/hitoshi/teamfinder/internal/storage"
)

const (
	testCSRFCookie = "teamfinder_csrf"
	testCSRFToken  = "test-csrf-token"
	testUserToken  = "user-token-abcdefghijklmnopqrstuvwxyz"
	testAdminToken = "admin-token-abcdefghijklmnopqrstuvwxyz"
)

type fixture struct {
	accounts  *mockAccount
	completer *mockCompleter
	admin     *mockAdmin
	users     *session.Store[model.User]
	admins    *session.Store[model.AdminUser]
	handler   http.Handler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newFixture は読み込み済み（未認証）のセッションでルーターを構成する。
func newFixture(t *testing.T) *fixture {
	return buildFixture(t, true)
}

func buildFixture(t *testing.T, initialize bool) *fixture {
	t.Helper()
	logger := discardLogger()
	kv := storage.NewMemoryKV()

	f := &fixture{
		accounts:  &mockAccount{},
		completer: &mockCompleter{},
		admin:     &mockAdmin{},
		users:     session.NewStore[model.User](kv, session.UserNamespace("http://api.test"), logger, nil),
		admins:    session.NewStore[model.AdminUser](kv, session.AdminNamespace(), logger, nil),
	}
	if initialize {
		f.users.Initialize(context.Background())
		f.admins.Initialize(context.Background())
	}

	tracker := guard.NewTracker(f.users, f.admins)
	t.Cleanup(tracker.Close)

	h, err := NewRouter(&RouterDeps{
		Logger:     logger,
		Users:      f.users,
		Admins:     f.admins,
		Guard:      guard.New(guard.DefaultRoutes),
		States:     tracker,
		Accounts:   f.accounts,
		Completer:  f.completer,
		Admin:      f.admin,
		Sanitizer:  security.NewListingSanitizer(),
		AuthConfig: AuthHandlerConfig{SuccessDelay: 2 * time.Second, ErrorDelay: 3 * time.Second},
		Metrics:    http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "metrics") }),
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	f.handler = h
	return f
}

func (f *fixture) loginUser(t *testing.T) {
	t.Helper()
	u := model.User{ID: 1, Email: "ali@example.com", Name: "Ali"}
	if err := f.users.Commit(context.Background(), u, testUserToken); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func (f *fixture) loginAdmin(t *testing.T) {
	t.Helper()
	a := model.AdminUser{ID: 9, Email: "admin@example.com"}
	if err := f.admins.Commit(context.Background(), a, testAdminToken); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// post はCSRFトークン付きでフォームを送信する。
func (f *fixture) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: testCSRFCookie, Value: testCSRFToken})

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, http.StatusSeeOther, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != want {
		t.Errorf("Location = %q, want %q", loc, want)
	}
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, want, w.Body.String())
	}
}

func assertBodyContains(t *testing.T, w *httptest.ResponseRecorder, subs ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range subs {
		if !strings.Contains(body, s) {
			t.Errorf("body does not contain %q\nbody: %s", s, body)
		}
	}
}

func assertBodyExcludes(t *testing.T, w *httptest.ResponseRecorder, subs ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range subs {
		if strings.Contains(body, s) {
			t.Errorf("body should not contain %q", s)
		}
	}
}

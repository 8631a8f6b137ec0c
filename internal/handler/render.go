package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/hitoshi/teamfinder/internal/middleware"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// SessionSource は現在のセッションを返す。*session.Store が満たす。
type SessionSource[I session.Principal] interface {
	Current() session.Snapshot[I]
}

// Refresh は描画したページを一定時間後に別のパスへ遷移させる。
type Refresh struct {
	Seconds int
	URL     string
}

// View はページテンプレートに渡す値。
// CSRF・User・AdminはRenderが埋める。
type View struct {
	Title   string
	CSRF    string
	User    *model.User
	Admin   *model.AdminUser
	Error   *model.APIError
	Notice  string
	Refresh *Refresh
	Data    any
}

// Renderer はレイアウトと各ページのテンプレートを描画する。
type Renderer struct {
	pages  map[string]*template.Template
	users  SessionSource[model.User]
	admins SessionSource[model.AdminUser]
	logger *slog.Logger
}

var templateFuncs = template.FuncMap{
	"mask": maskToken,
	"date": func(ts model.Timestamp) string {
		if ts.IsZero() {
			return ""
		}
		return ts.Local().Format("02.01.2006 15:04")
	},
	"join":   strings.Join,
	"roster": roster,
	"has": func(list []string, v string) bool {
		return slices.Contains(list, v)
	},
	"postTypeLabel": func(t model.PostType) string {
		switch t {
		case model.PostTypeTeam:
			return "Takım arıyorum"
		case model.PostTypePlayer:
			return "Oyuncu arıyorum"
		default:
			return string(t)
		}
	},
}

// NewRenderer は埋め込みテンプレートを読み込んでRendererを生成する。
func NewRenderer(users SessionSource[model.User], admins SessionSource[model.AdminUser], logger *slog.Logger) (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == "layout" {
			continue
		}
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		t, err := clone.ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, users: users, admins: admins, logger: logger}, nil
}

// Render はpageをレイアウトに埋め込んで書き込む。
func (rr *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, v View) {
	t, ok := rr.pages[page]
	if !ok {
		rr.logger.Error("template not found", slog.String("page", page))
		middleware.WriteInternalServerError(w, r)
		return
	}

	v.CSRF = middleware.CSRFTokenFromContext(r.Context())
	if snap := rr.users.Current(); snap.Authenticated() {
		v.User = snap.Identity
	}
	if snap := rr.admins.Current(); snap.Authenticated() {
		v.Admin = snap.Identity
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		rr.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(buf.Bytes())
	}
}

// refreshAfter は遅延を秒単位に切り上げたRefreshを返す。
func refreshAfter(d time.Duration, url string) *Refresh {
	return &Refresh{Seconds: int(math.Ceil(d.Seconds())), URL: url}
}

// maskToken はトークンの先頭のみを残して伏せる。
// 短いトークンは半分までしか表示しない。
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	n := min(20, len(token)/2)
	return token[:n] + "..."
}

// Package guard はページ遷移の可否を判定する。
//
// 判定は純粋関数で、セッション状態は呼び出し側が渡す。
// 通常ページは通常セッションのみ、管理者ページは管理者セッションのみを参照する。
package guard

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Access はルートのアクセス区分。
type Access int

const (
	// Public は常に表示できるページ。
	Public Access = iota
	// Landing はトップページ。認証済みユーザーは一覧へ進める。
	Landing
	// Protected は通常セッションが必要なページ。
	Protected
	// AdminLogin は管理者ログインページ。管理者セッションがあればダッシュボードへ進める。
	AdminLogin
	// AdminOnly は管理者セッションが必要なページ。
	AdminOnly
)

// Kind は判定結果の種類。
type Kind int

const (
	// Unmatched はどのルートにも一致しないパス。判定対象外でnot foundに委ねる。
	Unmatched Kind = iota
	// Allow は表示してよい。
	Allow
	// Redirect はToへ遷移させる。
	Redirect
	// Loading はセッション読み込み中のため判定を保留する。
	Loading
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Loading:
		return "loading"
	default:
		return "unmatched"
	}
}

// Decision は1つのパスに対する判定結果。
type Decision struct {
	Kind Kind
	To   string
}

// State は判定に必要なセッションの状態。
type State struct {
	Loading       bool
	Authenticated bool
}

// Route はパスパターンとアクセス区分の組。パターンはchiの記法に従う。
type Route struct {
	Pattern string
	Access  Access
}

// 遷移先
const (
	HomePath           = "/"
	ListingsPath       = "/posts"
	AdminLoginPath     = "/admin/login"
	AdminDashboardPath = "/admin/dashboard"
)

// DefaultRoutes はアプリのルート表。
var DefaultRoutes = []Route{
	{"/", Landing},

	{"/auth-success", Public},
	{"/auth/callback", Public},
	{"/auth/google/login", Public},
	{"/login", Public},
	{"/register", Public},
	{"/debug", Public},
	{"/test-auth", Public},

	{"/profile", Protected},
	{"/create-post", Protected},
	{"/posts", Protected},
	{"/posts/{id}/edit", Protected},
	{"/my-posts", Protected},
	{"/lineup", Protected},
	{"/lineups", Protected},
	{"/lineups/{id}", Protected},

	{"/admin/login", AdminLogin},
	{"/admin", AdminOnly},
	{"/admin/dashboard", AdminOnly},
}

// Guard はルート表に基づいて遷移を判定する。
type Guard struct {
	mux    *chi.Mux
	access map[string]Access
}

// New はルート表からGuardを生成する。
func New(routes []Route) *Guard {
	g := &Guard{
		mux:    chi.NewRouter(),
		access: make(map[string]Access, len(routes)),
	}
	noop := func(http.ResponseWriter, *http.Request) {}
	for _, r := range routes {
		g.mux.Get(r.Pattern, noop)
		g.access[r.Pattern] = r.Access
	}
	return g
}

// Decide はpathへの遷移を判定する。
// 対象の名前空間が読み込み中の間はリダイレクトせずLoadingを返す。
func (g *Guard) Decide(path string, user, admin State) Decision {
	access, ok := g.lookup(path)
	if !ok {
		return Decision{Kind: Unmatched}
	}

	switch access {
	case AdminLogin:
		if admin.Loading {
			return Decision{Kind: Loading}
		}
		if admin.Authenticated {
			return Decision{Kind: Redirect, To: AdminDashboardPath}
		}
		return Decision{Kind: Allow}

	case AdminOnly:
		if admin.Loading {
			return Decision{Kind: Loading}
		}
		if !admin.Authenticated {
			return Decision{Kind: Redirect, To: AdminLoginPath}
		}
		return Decision{Kind: Allow}
	}

	if user.Loading {
		return Decision{Kind: Loading}
	}

	switch access {
	case Landing:
		if user.Authenticated {
			return Decision{Kind: Redirect, To: ListingsPath}
		}
	case Protected:
		if !user.Authenticated {
			return Decision{Kind: Redirect, To: HomePath}
		}
	}
	return Decision{Kind: Allow}
}

func (g *Guard) lookup(path string) (Access, bool) {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	rctx := chi.NewRouteContext()
	if !g.mux.Match(rctx, http.MethodGet, path) {
		return 0, false
	}
	access, ok := g.access[rctx.RoutePattern()]
	return access, ok
}

package guard

import (
	"log/slog"
	"net/http"
)

// StateSource は判定時点のセッション状態を返す。
type StateSource interface {
	States() (user, admin State)
}

const loadingPage = `<!DOCTYPE html>
<html lang="tr">
<head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Yükleniyor...</title></head>
<body><p>Yükleniyor...</p></body>
</html>
`

// Middleware はページ遷移リクエストに判定を適用するミドルウェアを返す。
// GET/HEAD以外とルート表にないパスはそのまま次のハンドラーに渡す。
func Middleware(g *Guard, states StateSource, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			user, admin := states.States()
			d := g.Decide(r.URL.Path, user, admin)

			switch d.Kind {
			case Loading:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				w.WriteHeader(http.StatusOK)
				if r.Method == http.MethodGet {
					w.Write([]byte(loadingPage))
				}
			case Redirect:
				logger.Debug("route guard redirect",
					slog.String("path", r.URL.Path),
					slog.String("to", d.To),
				)
				http.Redirect(w, r, d.To, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

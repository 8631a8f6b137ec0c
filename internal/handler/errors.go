package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/teamfinder/internal/api"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
)

// handleServiceError はサービスのエラーを処理する。
// セッション切れは入口への303リダイレクトにし、それ以外はpageにエラーを埋め込んで描画する。
func handleServiceError(w http.ResponseWriter, r *http.Request, rr *Renderer, page string, v View, err error) {
	var expired *session.ExpiredError
	if errors.As(err, &expired) {
		rr.logger.Info("session expired, redirecting",
			slog.String("namespace", expired.Namespace),
			slog.String("path", r.URL.Path),
			slog.String("to", expired.RedirectTo),
		)
		http.Redirect(w, r, expired.RedirectTo, http.StatusSeeOther)
		return
	}

	apiErr := api.AsAPIError(err)
	if apiErr.Category == "system" || apiErr.Category == "network" {
		rr.logger.Warn("request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", apiErr.Code),
			slog.String("error", err.Error()),
		)
	}
	v.Error = apiErr
	rr.Render(w, r, mapAPIErrorToHTTPStatus(apiErr), page, v)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeAuthRejected, model.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case model.ErrCodeOAuthProvider, model.ErrCodeOAuthMissingToken, model.ErrCodeOAuthInvalidUser:
		return http.StatusBadRequest
	case model.ErrCodeNetwork, model.ErrCodeOAuthProfileFailed, model.ErrCodeRequestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// idParam はURLパラメータのidを解析する。
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/teamfinder/internal/model"
)

// HealthHandler はプロセスの状態を返す。
type HealthHandler struct {
	users  SessionSource[model.User]
	admins SessionSource[model.AdminUser]
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(users SessionSource[model.User], admins SessionSource[model.AdminUser]) *HealthHandler {
	return &HealthHandler{users: users, admins: admins}
}

type healthResponse struct {
	Status       string `json:"status"`
	UserSession  string `json:"user_session"`
	AdminSession string `json:"admin_session"`
}

// Health はヘルスチェックに応答する。セッションの有無のみを返し、内容は含めない。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	user, adm := h.users.Current(), h.admins.Current()
	resp := healthResponse{
		Status:       "ok",
		UserSession:  sessionState(user.Loading, user.Authenticated()),
		AdminSession: sessionState(adm.Loading, adm.Authenticated()),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func sessionState(loading, authenticated bool) string {
	switch {
	case loading:
		return "loading"
	case authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

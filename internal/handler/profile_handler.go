package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/security"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	Profile(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error)
	SearchUsers(ctx context.Context, city, position string) ([]model.User, error)
}

// ProfileHandler はプロフィールとプレイヤー検索のHTTPハンドラー。
type ProfileHandler struct {
	service   ProfileServiceInterface
	sanitizer *security.ListingSanitizer
	render    *Renderer
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface, sanitizer *security.ListingSanitizer, render *Renderer) *ProfileHandler {
	return &ProfileHandler{service: service, sanitizer: sanitizer, render: render}
}

type profileData struct {
	Profile        *model.User
	Positions      []string
	Players        []model.User
	Searched       bool
	SearchCity     string
	SearchPosition string
}

// Profile はプロフィールを表示する。city/position が指定されていればプレイヤーも検索する。
// GET /profile
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := profileData{
		Positions:      model.Positions,
		SearchCity:     strings.TrimSpace(q.Get("city")),
		SearchPosition: q.Get("position"),
	}
	v := View{Title: "Profilim", Data: &data}
	if q.Get("saved") == "1" {
		v.Notice = "Profil güncellendi."
	}

	u, err := h.service.Profile(r.Context())
	if err != nil {
		handleServiceError(w, r, h.render, "profile", v, err)
		return
	}
	data.Profile = u

	if q.Has("city") || q.Has("position") {
		players, err := h.service.SearchUsers(r.Context(), data.SearchCity, data.SearchPosition)
		if err != nil {
			handleServiceError(w, r, h.render, "profile", v, err)
			return
		}
		data.Searched = true
		data.Players = make([]model.User, len(players))
		for i, p := range players {
			data.Players[i] = h.sanitizer.User(p)
		}
	}

	h.render.Render(w, r, http.StatusOK, "profile", v)
}

// UpdateProfile はプロフィールを更新する。
// POST /profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	update, err := parseProfileForm(r)
	if err == nil {
		_, err = h.service.UpdateProfile(r.Context(), update)
	}
	if err != nil {
		// 入力内容を残して再表示する
		current := &model.User{
			Name:      r.PostFormValue("name"),
			Phone:     r.PostFormValue("phone"),
			City:      r.PostFormValue("city"),
			Positions: r.PostForm["positions"],
		}
		current.Age, _ = strconv.Atoi(r.PostFormValue("age"))
		v := View{Title: "Profilim", Data: &profileData{Profile: current, Positions: model.Positions}}
		handleServiceError(w, r, h.render, "profile", v, err)
		return
	}
	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}

// parseProfileForm はフォームを部分更新に変換する。空欄の項目は送信しない。
func parseProfileForm(r *http.Request) (model.ProfileUpdate, error) {
	if err := r.ParseForm(); err != nil {
		return model.ProfileUpdate{}, model.NewValidationError("form", "Form okunamadı.")
	}

	var update model.ProfileUpdate
	if v := strings.TrimSpace(r.PostFormValue("name")); v != "" {
		update.Name = &v
	}
	if v := strings.TrimSpace(r.PostFormValue("phone")); v != "" {
		update.Phone = &v
	}
	if v := strings.TrimSpace(r.PostFormValue("city")); v != "" {
		update.City = &v
	}
	if v := strings.TrimSpace(r.PostFormValue("age")); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return model.ProfileUpdate{}, model.NewValidationError("age", "Yaş sayı olmalı.")
		}
		update.Age = &age
	}
	update.Positions = r.PostForm["positions"]
	return update, nil
}

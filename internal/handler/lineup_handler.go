package handler

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/security"
)

// LineupServiceInterface はスタメン図ハンドラーが必要とするサービスインターフェース。
type LineupServiceInterface interface {
	Lineups(ctx context.Context) (*model.LineupList, error)
	Lineup(ctx context.Context, id int64) (*model.Lineup, error)
	CreateLineup(ctx context.Context, in model.LineupInput) (*model.Lineup, error)
	UpdateLineup(ctx context.Context, id int64, in model.LineupInput) (*model.Lineup, error)
	DeleteLineup(ctx context.Context, id int64) error
}

// LineupHandler はスタメン図のHTTPハンドラー。
type LineupHandler struct {
	service   LineupServiceInterface
	sanitizer *security.ListingSanitizer
	render    *Renderer
}

// NewLineupHandler はLineupHandlerを生成する。
func NewLineupHandler(service LineupServiceInterface, sanitizer *security.ListingSanitizer, render *Renderer) *LineupHandler {
	return &LineupHandler{service: service, sanitizer: sanitizer, render: render}
}

// Slot はスタメン図の1枠。
type Slot struct {
	Key    string
	Player string
}

type lineupFormData struct {
	Action   string
	ID       int64
	Name     string
	Notes    string
	Home     string
	Away     string
	Editing  bool
	Saved    []model.Lineup
	Existing *model.Lineup
}

// Builder はスタメン図の作成フォームと保存済み一覧を表示する。
// GET /lineup
func (h *LineupHandler) Builder(w http.ResponseWriter, r *http.Request) {
	data := &lineupFormData{Action: "/lineup"}
	v := View{Title: "Kadro Kur", Data: data}

	list, err := h.service.Lineups(r.Context())
	if err != nil {
		handleServiceError(w, r, h.render, "lineup", v, err)
		return
	}
	data.Saved = h.sanitizeAll(list.Lineups)
	h.render.Render(w, r, http.StatusOK, "lineup", v)
}

// CreateLineup はスタメン図を作成する。
// POST /lineup
func (h *LineupHandler) CreateLineup(w http.ResponseWriter, r *http.Request) {
	data, in := parseLineupForm(r)
	data.Action = "/lineup"

	l, err := h.service.CreateLineup(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, h.render, "lineup", View{Title: "Kadro Kur", Data: data}, err)
		return
	}
	http.Redirect(w, r, lineupPath(l.ID)+"?saved=1", http.StatusSeeOther)
}

// ListLineups は保存済みのスタメン図を一覧表示する。
// GET /lineups
func (h *LineupHandler) ListLineups(w http.ResponseWriter, r *http.Request) {
	v := View{Title: "Kadrolarım"}
	if r.URL.Query().Get("deleted") == "1" {
		v.Notice = "Kadro silindi."
	}

	list, err := h.service.Lineups(r.Context())
	if err != nil {
		handleServiceError(w, r, h.render, "lineups", v, err)
		return
	}
	v.Data = h.sanitizeAll(list.Lineups)
	h.render.Render(w, r, http.StatusOK, "lineups", v)
}

// GetLineup はスタメン図を表示し、編集フォームを出す。
// GET /lineups/{id}
func (h *LineupHandler) GetLineup(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := &lineupFormData{Action: lineupPath(id), ID: id, Editing: true}
	v := View{Title: "Kadro", Data: data}
	if r.URL.Query().Get("saved") == "1" {
		v.Notice = "Kadro kaydedildi."
	}

	l, err := h.service.Lineup(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.render, "lineup", v, err)
		return
	}
	clean := h.sanitizer.Lineup(*l)
	data.Existing = &clean
	data.Name = clean.Name
	data.Notes = clean.Notes
	data.Home = rosterText(clean.HomeTeam)
	data.Away = rosterText(clean.AwayTeam)

	h.render.Render(w, r, http.StatusOK, "lineup", v)
}

// UpdateLineup はスタメン図を更新する。
// POST /lineups/{id}
func (h *LineupHandler) UpdateLineup(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, in := parseLineupForm(r)
	data.Action = lineupPath(id)
	data.ID = id
	data.Editing = true

	if _, err := h.service.UpdateLineup(r.Context(), id, in); err != nil {
		handleServiceError(w, r, h.render, "lineup", View{Title: "Kadro", Data: data}, err)
		return
	}
	http.Redirect(w, r, lineupPath(id)+"?saved=1", http.StatusSeeOther)
}

// DeleteLineup はスタメン図を削除する。
// POST /lineups/{id}/delete
func (h *LineupHandler) DeleteLineup(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.service.DeleteLineup(r.Context(), id); err != nil {
		handleServiceError(w, r, h.render, "lineups", View{Title: "Kadrolarım"}, err)
		return
	}
	http.Redirect(w, r, "/lineups?deleted=1", http.StatusSeeOther)
}

func (h *LineupHandler) sanitizeAll(lineups []model.Lineup) []model.Lineup {
	out := make([]model.Lineup, len(lineups))
	for i, l := range lineups {
		out[i] = h.sanitizer.Lineup(l)
	}
	return out
}

func lineupPath(id int64) string {
	return "/lineups/" + strconv.FormatInt(id, 10)
}

// parseLineupForm はフォームの値をスタメン図の入力に変換する。
// 各チームは1行に1人のプレイヤー名を書き、行番号が枠番号になる。
func parseLineupForm(r *http.Request) (*lineupFormData, model.LineupInput) {
	r.ParseForm()
	data := &lineupFormData{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Notes: strings.TrimSpace(r.PostFormValue("notes")),
		Home:  r.PostFormValue("home_team"),
		Away:  r.PostFormValue("away_team"),
	}
	in := model.LineupInput{
		Name:      data.Name,
		Formation: strings.TrimSpace(r.PostFormValue("formation")),
		HomeTeam:  parseRoster(data.Home),
		AwayTeam:  parseRoster(data.Away),
		Notes:     data.Notes,
	}
	return data, in
}

// parseRoster は1行1人のテキストを枠番号からプレイヤー名へのマップに変換する。空行は詰める。
func parseRoster(text string) map[string]string {
	var roster map[string]string
	n := 0
	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if roster == nil {
			roster = make(map[string]string)
		}
		n++
		roster[strconv.Itoa(n)] = name
	}
	return roster
}

// roster はマップを枠番号順のスライスに変換する。数値でない枠は名前順で末尾に並べる。
func roster(team map[string]string) []Slot {
	slots := make([]Slot, 0, len(team))
	for k, v := range team {
		slots = append(slots, Slot{Key: k, Player: v})
	}
	slices.SortFunc(slots, func(a, b Slot) int {
		ai, aerr := strconv.Atoi(a.Key)
		bi, berr := strconv.Atoi(b.Key)
		switch {
		case aerr == nil && berr == nil:
			return cmp.Compare(ai, bi)
		case aerr == nil:
			return -1
		case berr == nil:
			return 1
		default:
			return cmp.Compare(a.Key, b.Key)
		}
	})
	return slots
}

func rosterText(team map[string]string) string {
	slots := roster(team)
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.Player
	}
	return strings.Join(names, "\n")
}

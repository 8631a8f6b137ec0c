package handler

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"testing"

	"github.com/hitoshi/teamfinder/internal/model"
)

func TestParseRoster(t *testing.T) {
	got := parseRoster("Ali\n\n  Veli  \r\nCan\n")
	want := map[string]string{"1": "Ali", "2": "Veli", "3": "Can"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseRoster() = %v, want %v", got, want)
	}
	if parseRoster("  \n") != nil {
		t.Error("empty roster should be nil")
	}
}

func TestRoster_OrdersSlots(t *testing.T) {
	got := roster(map[string]string{"10": "J", "2": "B", "GK": "K", "1": "A"})
	want := []Slot{{"1", "A"}, {"2", "B"}, {"10", "J"}, {"GK", "K"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("roster() = %v, want %v", got, want)
	}
	if rosterText(map[string]string{"2": "Veli", "1": "Ali"}) != "Ali\nVeli" {
		t.Error("rosterText should follow slot order")
	}
}

func TestLineupHandler_CreateLineup(t *testing.T) {
	f := newFixture(t)
	f.loginUser(t)
	var got model.LineupInput
	f.accounts.createLineupFn = func(ctx context.Context, in model.LineupInput) (*model.Lineup, error) {
		got = in
		return &model.Lineup{ID: 7}, nil
	}

	w := f.post("/lineup", url.Values{
		"name":      {"Perşembe maçı"},
		"home_team": {"Ali\nVeli"},
		"notes":     {"Saat 21:00"},
	})

	assertRedirect(t, w, "/lineups/7?saved=1")
	if got.Name != "Perşembe maçı" || got.Notes != "Saat 21:00" {
		t.Errorf("CreateLineup() input = %+v", got)
	}
	if !reflect.DeepEqual(got.HomeTeam, map[string]string{"1": "Ali", "2": "Veli"}) {
		t.Errorf("HomeTeam = %v", got.HomeTeam)
	}
	if got.AwayTeam != nil {
		t.Errorf("AwayTeam = %v, want nil", got.AwayTeam)
	}
}

func TestLineupHandler_GetLineup_RendersRoster(t *testing.T) {
	f := newFixture(t)
	f.loginUser(t)
	f.accounts.lineupFn = func(ctx context.Context, id int64) (*model.Lineup, error) {
		return &model.Lineup{
			ID:        id,
			Name:      "Cuma",
			Formation: "3-3-1",
			HomeTeam:  map[string]string{"2": "Veli", "1": "Ali"},
		}, nil
	}

	w := f.get("/lineups/3?saved=1")

	assertStatus(t, w, http.StatusOK)
	assertBodyContains(t, w, "1. Ali", "2. Veli", "Kadro kaydedildi.", `action="/lineups/3/delete"`)
}

func TestLineupHandler_Builder_ListsSaved(t *testing.T) {
	f := newFixture(t)
	f.loginUser(t)
	f.accounts.lineupsFn = func(ctx context.Context) (*model.LineupList, error) {
		return &model.LineupList{Lineups: []model.Lineup{{ID: 4, Name: "Salı"}}, Total: 1}, nil
	}

	w := f.get("/lineup")

	assertStatus(t, w, http.StatusOK)
	assertBodyContains(t, w, `href="/lineups/4"`, "Salı")
}

func TestLineupHandler_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	f.loginUser(t)
	var updated, deleted int64
	f.accounts.updateLineupFn = func(ctx context.Context, id int64, in model.LineupInput) (*model.Lineup, error) {
		updated = id
		return &model.Lineup{ID: id}, nil
	}
	f.accounts.deleteLineupFn = func(ctx context.Context, id int64) error {
		deleted = id
		return nil
	}

	assertRedirect(t, f.post("/lineups/3", url.Values{"name": {"Cuma"}}), "/lineups/3?saved=1")
	assertRedirect(t, f.post("/lineups/3/delete", nil), "/lineups?deleted=1")
	if updated != 3 || deleted != 3 {
		t.Errorf("updated = %d, deleted = %d", updated, deleted)
	}
}

func TestLineupHandler_ValidationError(t *testing.T) {
	f := newFixture(t)
	f.loginUser(t)
	f.accounts.createLineupFn = func(ctx context.Context, in model.LineupInput) (*model.Lineup, error) {
		return nil, model.NewValidationError("name", "Kadro adı gerekli.")
	}

	w := f.post("/lineup", url.Values{"home_team": {"Ali"}})

	assertStatus(t, w, http.StatusBadRequest)
	assertBodyContains(t, w, "Kadro adı gerekli.", "Ali")
}

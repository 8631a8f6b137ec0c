package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestUser_Valid(t *testing.T) {
	if (User{}).Valid() {
		t.Error("zero User should be invalid")
	}
	if !(User{ID: 1}).Valid() {
		t.Error("User with ID should be valid")
	}
	if (AdminUser{Email: "a@b.com"}).Valid() {
		t.Error("AdminUser without ID should be invalid")
	}
}

func TestUser_Partial(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		user User
		want bool
	}{
		{"id only", User{ID: 1}, true},
		{"missing created_at", User{ID: 1, Email: "a@b.com"}, true},
		{"missing email", User{ID: 1, CreatedAt: Timestamp{Time: created}}, true},
		{"complete", User{ID: 1, Email: "a@b.com", CreatedAt: Timestamp{Time: created}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Partial(); got != tt.want {
				t.Errorf("Partial() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_Merge_RichFieldsWin(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	base := User{ID: 1, Name: "Ali", Picture: "https://example.com/a.png", IsVerified: true}
	rich := User{
		ID:        1,
		Email:     "ali@example.com",
		City:      "İstanbul",
		Age:       28,
		Positions: []string{"Forvet"},
		CreatedAt: Timestamp{Time: created},
	}

	got := base.Merge(rich)
	want := User{
		ID:         1,
		Email:      "ali@example.com",
		Name:       "Ali",
		City:       "İstanbul",
		Age:        28,
		Positions:  []string{"Forvet"},
		Picture:    "https://example.com/a.png",
		IsVerified: true,
		CreatedAt:  Timestamp{Time: created},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %+v, want %+v", got, want)
	}
}

func TestUser_Merge_DoesNotAliasPositions(t *testing.T) {
	rich := User{ID: 1, Positions: []string{"Kaleci"}}
	got := User{ID: 1}.Merge(rich)
	got.Positions[0] = "Defans"
	if rich.Positions[0] != "Kaleci" {
		t.Error("Merge should copy positions")
	}
}

func TestPostType_Valid(t *testing.T) {
	for _, pt := range []PostType{PostTypeTeam, PostTypePlayer} {
		if !pt.Valid() {
			t.Errorf("%q should be valid", pt)
		}
	}
	if PostType("coach").Valid() {
		t.Error("unknown post type should be invalid")
	}
}

func TestAPIError_Error(t *testing.T) {
	err := NewOAuthMissingTokenError()
	if got := err.Error(); got != "[OAUTH_MISSING_TOKEN] Giriş bilgisi bulunamadı." {
		t.Errorf("Error() = %q", got)
	}
	if NewAuthRejectedError("").Message == "" {
		t.Error("rejection without detail should fall back to default message")
	}
}

func TestUser_EmptyPositions_SurvivesJSON(t *testing.T) {
	data, err := json.Marshal(User{ID: 1, Positions: []string{}})
	if err != nil {
		t.Fatal(err)
	}
	var got User
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	// 空のポジションは「未設定」と区別して保持する
	if got.Positions == nil || len(got.Positions) != 0 {
		t.Errorf("Positions = %#v, want empty non-nil slice (json %s)", got.Positions, data)
	}
}

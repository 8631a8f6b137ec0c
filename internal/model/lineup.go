package model

// DefaultFormation はコラボレーターが既定とするフォーメーション。
const DefaultFormation = "3-3-1"

// Lineup はユーザーが作成した簡易的なスタメン図を表す。
// home_team / away_team はスロット名からプレイヤー名へのマップ。
type Lineup struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Name      string            `json:"name"`
	Formation string            `json:"formation"`
	HomeTeam  map[string]string `json:"home_team"`
	AwayTeam  map[string]string `json:"away_team,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt Timestamp         `json:"created_at"`
	UpdatedAt *Timestamp        `json:"updated_at,omitempty"`
}

// LineupInput はスタメン図の作成・更新リクエスト。
type LineupInput struct {
	Name      string            `json:"name,omitempty"`
	Formation string            `json:"formation,omitempty"`
	HomeTeam  map[string]string `json:"home_team,omitempty"`
	AwayTeam  map[string]string `json:"away_team,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

// LineupList はGET /lineups/ のレスポンス。
type LineupList struct {
	Lineups []Lineup `json:"lineups"`
	Total   int      `json:"total"`
}

// AdminStats はGET /admin/stats のレスポンス。
type AdminStats struct {
	TotalUsers   int `json:"total_users"`
	ActiveUsers  int `json:"active_users"`
	TotalPosts   int `json:"total_posts"`
	TotalLineups int `json:"total_lineups"`
}

package model

// PostType は募集の種類を表す。
type PostType string

const (
	// PostTypeTeam はチームを探しているプレイヤーの募集。
	PostTypeTeam PostType = "team"
	// PostTypePlayer はプレイヤーを探しているチームの募集。
	PostTypePlayer PostType = "player"
)

// Valid は既知の募集種類かどうかを返す。
func (t PostType) Valid() bool {
	return t == PostTypeTeam || t == PostTypePlayer
}

// Post はコラボレーターが所有する募集（ilan）を表す。
// クライアントは直近の取得結果の一時的なコピーのみを保持する。
type Post struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	PostType        PostType          `json:"post_type"`
	City            string            `json:"city"`
	PositionsNeeded []string          `json:"positions_needed,omitempty"`
	ContactInfo     map[string]string `json:"contact_info"`
	Status          string            `json:"status"`
	ViewsCount      int               `json:"views_count"`
	UserName        string            `json:"user_name,omitempty"`
	CreatedAt       Timestamp         `json:"created_at"`
}

// PostInput は募集の作成・更新リクエスト。
type PostInput struct {
	Title           string            `json:"title,omitempty"`
	Description     string            `json:"description,omitempty"`
	PostType        PostType          `json:"post_type,omitempty"`
	City            string            `json:"city,omitempty"`
	PositionsNeeded []string          `json:"positions_needed,omitempty"`
	ContactInfo     map[string]string `json:"contact_info,omitempty"`
	Status          string            `json:"status,omitempty"`
}

// PostFilter は募集一覧の絞り込み条件。
type PostFilter struct {
	City     string
	PostType PostType
	Position string
	Skip     int
	Limit    int
}

// PostList はGET /posts/ のレスポンス。
type PostList struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
}

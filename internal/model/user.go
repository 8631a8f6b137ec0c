// Package model はドメインモデルを定義する。
package model

// User は通常セッションの認証済みユーザー（Identity）を表す。
// コラボレーターの /users/profile レスポンスと同じJSON形状で永続化される。
// プロフィール項目はすべて任意で、プロフィール取得時に遅延して埋まる。
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	City       string    `json:"city,omitempty"`
	Age        int       `json:"age,omitempty"`
	Positions  []string  `json:"positions,omitzero"`
	Picture    string    `json:"picture,omitempty"`
	IsVerified bool      `json:"is_verified"`
	IsAdmin    bool      `json:"is_admin,omitempty"`
	Role       string    `json:"role,omitempty"`
	CreatedAt  Timestamp `json:"created_at,omitzero"`
}

// Valid は永続化データから復元したユーザーが最低限の形状を満たすかを返す。
func (u User) Valid() bool {
	return u.ID != 0
}

// Partial はOAuthコールバックで受け取ったユーザー情報が不完全かどうかを返す。
// メールアドレスまたは作成日時が欠けている場合は不完全とみなす。
func (u User) Partial() bool {
	return u.Email == "" || u.CreatedAt.IsZero()
}

// Merge はrichの非ゼロ値でuを上書きしたユーザーを返す。
// uのフィールドはrichに値がない場合のみ残る。
func (u User) Merge(rich User) User {
	merged := u
	if rich.Email != "" {
		merged.Email = rich.Email
	}
	if rich.Name != "" {
		merged.Name = rich.Name
	}
	if rich.Phone != "" {
		merged.Phone = rich.Phone
	}
	if rich.City != "" {
		merged.City = rich.City
	}
	if rich.Age != 0 {
		merged.Age = rich.Age
	}
	if len(rich.Positions) > 0 {
		merged.Positions = append([]string(nil), rich.Positions...)
	}
	if rich.Picture != "" {
		merged.Picture = rich.Picture
	}
	if rich.Role != "" {
		merged.Role = rich.Role
	}
	if !rich.CreatedAt.IsZero() {
		merged.CreatedAt = rich.CreatedAt
	}
	merged.IsVerified = u.IsVerified || rich.IsVerified
	merged.IsAdmin = u.IsAdmin || rich.IsAdmin
	return merged
}

// AdminUser は管理者セッションのIdentityを表す。
// 管理者フラグは持たない。管理者セッションに存在すること自体が管理者権限を意味する。
type AdminUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Valid は永続化データから復元した管理者が最低限の形状を満たすかを返す。
func (a AdminUser) Valid() bool {
	return a.ID != 0
}

// ProfileUpdate はPUT /users/profile に送る部分更新。
// nilのフィールドは送信しない。
type ProfileUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	City      *string  `json:"city,omitempty"`
	Age       *int     `json:"age,omitempty"`
	Positions []string `json:"positions"`
}

// AuthResponse はパスワードログイン・登録・管理者ログインのレスポンス。
type AuthResponse[I any] struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        I      `json:"user"`
}

// Positions はプレイヤーのポジション候補。
var Positions = []string{"Kaleci", "Defans", "Orta Saha", "Forvet"}

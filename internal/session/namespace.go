// Package session はクライアント側の認証セッション（IdentityとCredentialの組）を管理する。
//
// 通常ユーザーと管理者は同じStore実装を別々の名前空間でインスタンス化して使う。
// 2つの名前空間は永続化キーを共有せず、互いのストアを読むこともない。
package session

import "strings"

// Namespace はセッションの永続化キーと遷移先を定義する。
type Namespace struct {
	// Name はログやメトリクスで使う名前空間名（"user" / "admin"）。
	Name string
	// IdentityKey はシリアライズ済みIdentityを保存するキー。
	IdentityKey string
	// CredentialKey は生のBearerトークンを保存するキー。
	CredentialKey string
	// EntryPath はセッション切れ時に戻すアプリ内パス。
	EntryPath string
	// LoginURL はログイン開始時の外部リダイレクト先。空の場合はEntryPathを使う。
	LoginURL string
}

// UserNamespace は通常ユーザー用の名前空間を返す。
// ログインはコラボレーターのGoogle OAuth開始エンドポイントへの外部リダイレクトになる。
func UserNamespace(apiBaseURL string) Namespace {
	return Namespace{
		Name:          "user",
		IdentityKey:   "user",
		CredentialKey: "access_token",
		EntryPath:     "/",
		LoginURL:      strings.TrimRight(apiBaseURL, "/") + "/auth/google/login",
	}
}

// AdminNamespace は管理者用の名前空間を返す。
func AdminNamespace() Namespace {
	return Namespace{
		Name:          "admin",
		IdentityKey:   "admin_user",
		CredentialKey: "admin_token",
		EntryPath:     "/admin/login",
	}
}

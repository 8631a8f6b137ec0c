// Package security はコラボレーターから受け取った表示用テキストの無害化を提供する。
//
// 募集のタイトルや説明は他のユーザーが自由に入力した文字列で、
// HTMLタグが混入していることがある。ListingSanitizerはタグをすべて取り除いたプレーンテキストを返す。
// エスケープはテンプレート側で行うため、ここではエンティティを戻しておく。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/teamfinder/internal/model"
)

// ListingSanitizer は募集・ユーザー・スタメン図の表示用テキストを無害化する。
// bluemondayのポリシーはスレッドセーフなので、1つのインスタンスを共有してよい。
type ListingSanitizer struct {
	policy *bluemonday.Policy
}

// NewListingSanitizer はすべてのタグを除去するポリシーでListingSanitizerを生成する。
func NewListingSanitizer() *ListingSanitizer {
	return &ListingSanitizer{policy: bluemonday.StrictPolicy()}
}

// Text はタグを除去したプレーンテキストを返す。
func (s *ListingSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// Post は表示用に無害化した募集のコピーを返す。
func (s *ListingSanitizer) Post(p model.Post) model.Post {
	p.Title = s.Text(p.Title)
	p.Description = s.Text(p.Description)
	p.City = s.Text(p.City)
	p.UserName = s.Text(p.UserName)
	p.PositionsNeeded = s.texts(p.PositionsNeeded)
	if p.ContactInfo != nil {
		contact := make(map[string]string, len(p.ContactInfo))
		for k, v := range p.ContactInfo {
			contact[s.Text(k)] = s.Text(v)
		}
		p.ContactInfo = contact
	}
	return p
}

// Posts は募集の一覧を無害化する。
func (s *ListingSanitizer) Posts(posts []model.Post) []model.Post {
	out := make([]model.Post, len(posts))
	for i, p := range posts {
		out[i] = s.Post(p)
	}
	return out
}

// User は表示用に無害化したユーザーのコピーを返す。
func (s *ListingSanitizer) User(u model.User) model.User {
	u.Name = s.Text(u.Name)
	u.City = s.Text(u.City)
	u.Phone = s.Text(u.Phone)
	u.Positions = s.texts(u.Positions)
	return u
}

// Lineup は表示用に無害化したスタメン図のコピーを返す。
func (s *ListingSanitizer) Lineup(l model.Lineup) model.Lineup {
	l.Name = s.Text(l.Name)
	l.Notes = s.Text(l.Notes)
	l.HomeTeam = s.slots(l.HomeTeam)
	l.AwayTeam = s.slots(l.AwayTeam)
	return l
}

func (s *ListingSanitizer) texts(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = s.Text(v)
	}
	return out
}

func (s *ListingSanitizer) slots(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = s.Text(v)
	}
	return out
}

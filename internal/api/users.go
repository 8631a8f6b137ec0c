package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hitoshi/teamfinder/internal/model"
)

// Profile はトークンの持ち主のプロフィールを取得する。
func (c *Client) Profile(ctx context.Context, token string) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/profile", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile はプロフィールを部分更新し、更新後のプロフィールを返す。
func (c *Client) UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (*model.User, error) {
	var out model.User
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/users/profile",
		token:  token,
		body:   update,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchUsers は都市・ポジションでプレイヤーを検索する。
func (c *Client) SearchUsers(ctx context.Context, token, city, position string) ([]model.User, error) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	if position != "" {
		q.Set("position", position)
	}

	var out []model.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/users/search", query: q, token: token}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

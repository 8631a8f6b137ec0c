package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hitoshi/teamfinder/internal/model"
)

// AdminStats は管理者向けの集計値を取得する。
func (c *Client) AdminStats(ctx context.Context, token string) (*model.AdminStats, error) {
	var out model.AdminStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/stats", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminUsers は全ユーザーを取得する。
func (c *Client) AdminUsers(ctx context.Context, token string) ([]model.User, error) {
	var out []model.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/users", token: token}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminDeleteUser はユーザーを削除する。
func (c *Client) AdminDeleteUser(ctx context.Context, token string, id int64) error {
	path := "/admin/users/" + strconv.FormatInt(id, 10)
	return c.do(ctx, request{method: http.MethodDelete, path: path, token: token}, nil)
}

// AdminPosts は全募集を取得する。
func (c *Client) AdminPosts(ctx context.Context, token string) ([]model.Post, error) {
	var out []model.Post
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/posts", token: token}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminDeletePost は募集を削除する。
func (c *Client) AdminDeletePost(ctx context.Context, token string, id int64) error {
	path := "/admin/posts/" + strconv.FormatInt(id, 10)
	return c.do(ctx, request{method: http.MethodDelete, path: path, token: token}, nil)
}

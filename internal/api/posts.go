package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/teamfinder/internal/model"
)

// ListPosts は募集一覧を取得する。認証は不要。
func (c *Client) ListPosts(ctx context.Context, f model.PostFilter) (*model.PostList, error) {
	q := url.Values{}
	if f.City != "" {
		q.Set("city", f.City)
	}
	if f.PostType != "" {
		q.Set("post_type", string(f.PostType))
	}
	if f.Position != "" {
		q.Set("position", f.Position)
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var out model.PostList
	if err := c.do(ctx, request{method: http.MethodGet, path: "/posts/", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyPosts はトークンの持ち主の募集を取得する。
func (c *Client) MyPosts(ctx context.Context, token string) ([]model.Post, error) {
	var out []model.Post
	if err := c.do(ctx, request{method: http.MethodGet, path: "/posts/my", token: token}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePost は募集を作成する。
func (c *Client) CreatePost(ctx context.Context, token string, in model.PostInput) (*model.Post, error) {
	var out model.Post
	err := c.do(ctx, request{method: http.MethodPost, path: "/posts/", token: token, body: in}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost は募集を更新する。
func (c *Client) UpdatePost(ctx context.Context, token string, id int64, in model.PostInput) (*model.Post, error) {
	var out model.Post
	err := c.do(ctx, request{method: http.MethodPut, path: postPath(id), token: token, body: in}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost は募集を削除する。
func (c *Client) DeletePost(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: postPath(id), token: token}, nil)
}

func postPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}

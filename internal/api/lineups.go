package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hitoshi/teamfinder/internal/model"
)

// Lineups はトークンの持ち主のスタメン図一覧を取得する。
func (c *Client) Lineups(ctx context.Context, token string) (*model.LineupList, error) {
	var out model.LineupList
	if err := c.do(ctx, request{method: http.MethodGet, path: "/lineups/", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lineup はスタメン図を1件取得する。
func (c *Client) Lineup(ctx context.Context, token string, id int64) (*model.Lineup, error) {
	var out model.Lineup
	if err := c.do(ctx, request{method: http.MethodGet, path: lineupPath(id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLineup はスタメン図を作成する。
func (c *Client) CreateLineup(ctx context.Context, token string, in model.LineupInput) (*model.Lineup, error) {
	var out model.Lineup
	err := c.do(ctx, request{method: http.MethodPost, path: "/lineups/", token: token, body: in}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLineup はスタメン図を更新する。
func (c *Client) UpdateLineup(ctx context.Context, token string, id int64, in model.LineupInput) (*model.Lineup, error) {
	var out model.Lineup
	err := c.do(ctx, request{method: http.MethodPut, path: lineupPath(id), token: token, body: in}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLineup はスタメン図を削除する。
func (c *Client) DeleteLineup(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: lineupPath(id), token: token}, nil)
}

func lineupPath(id int64) string {
	return "/lineups/" + strconv.FormatInt(id, 10)
}

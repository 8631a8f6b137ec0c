package account

import (
	"context"
	"strings"

	"github.com/hitoshi/teamfinder/internal/api"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
)

// Lineups は自分のスタメン図一覧を取得する。
func (s *Service) Lineups(ctx context.Context) (*model.LineupList, error) {
	list, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (*model.LineupList, error) {
		return s.client.Lineups(ctx, token)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return list, nil
}

// Lineup はスタメン図を1件取得する。
func (s *Service) Lineup(ctx context.Context, id int64) (*model.Lineup, error) {
	l, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (*model.Lineup, error) {
		return s.client.Lineup(ctx, token, id)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return l, nil
}

// CreateLineup はスタメン図を作成する。フォーメーション未指定の場合は既定値を使う。
func (s *Service) CreateLineup(ctx context.Context, in model.LineupInput) (*model.Lineup, error) {
	in, err := normalizeLineup(in)
	if err != nil {
		return nil, err
	}
	l, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (*model.Lineup, error) {
		return s.client.CreateLineup(ctx, token, in)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return l, nil
}

// UpdateLineup はスタメン図を更新する。
func (s *Service) UpdateLineup(ctx context.Context, id int64, in model.LineupInput) (*model.Lineup, error) {
	in, err := normalizeLineup(in)
	if err != nil {
		return nil, err
	}
	l, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (*model.Lineup, error) {
		return s.client.UpdateLineup(ctx, token, id, in)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return l, nil
}

// DeleteLineup はスタメン図を削除する。
func (s *Service) DeleteLineup(ctx context.Context, id int64) error {
	_, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (struct{}, error) {
		return struct{}{}, s.client.DeleteLineup(ctx, token, id)
	})
	return s.translate(err)
}

func normalizeLineup(in model.LineupInput) (model.LineupInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, model.NewValidationError("name", "Kadro adı gerekli.")
	}
	if in.Formation == "" {
		in.Formation = model.DefaultFormation
	}
	if in.HomeTeam == nil {
		in.HomeTeam = map[string]string{}
	}
	return in, nil
}

package account

import (
	"context"
	"slices"
	"strings"

	"github.com/hitoshi/teamfinder/internal/api"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
)

// maxPostsPerPage は一覧の1ページあたりの上限。
const maxPostsPerPage = 100

// Posts は募集一覧を取得する。認証は不要でセッションには影響しない。
func (s *Service) Posts(ctx context.Context, f model.PostFilter) (*model.PostList, error) {
	if f.PostType != "" && !f.PostType.Valid() {
		return nil, model.NewValidationError("post_type", "Geçersiz ilan türü.")
	}
	if f.Limit <= 0 || f.Limit > maxPostsPerPage {
		f.Limit = maxPostsPerPage
	}
	if f.Skip < 0 {
		f.Skip = 0
	}

	list, err := s.client.ListPosts(ctx, f)
	if err != nil {
		return nil, api.AsAPIError(err)
	}
	return list, nil
}

// MyPosts は自分の募集を取得する。
func (s *Service) MyPosts(ctx context.Context) ([]model.Post, error) {
	posts, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) ([]model.Post, error) {
		return s.client.MyPosts(ctx, token)
	})
	return posts, s.translate(err)
}

// Post は自分の募集から1件を探す。コラボレーターに単体取得のエンドポイントはない。
func (s *Service) Post(ctx context.Context, id int64) (*model.Post, error) {
	posts, err := s.MyPosts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, model.NewRequestFailedError("İlan bulunamadı.")
}

// CreatePost は募集を作成する。
func (s *Service) CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error) {
	if err := validatePost(in); err != nil {
		return nil, err
	}
	p, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (*model.Post, error) {
		return s.client.CreatePost(ctx, token, in)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return p, nil
}

// UpdatePost は募集を更新する。
func (s *Service) UpdatePost(ctx context.Context, id int64, in model.PostInput) (*model.Post, error) {
	if err := validatePost(in); err != nil {
		return nil, err
	}
	p, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (*model.Post, error) {
		return s.client.UpdatePost(ctx, token, id, in)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return p, nil
}

// DeletePost は募集を削除する。
func (s *Service) DeletePost(ctx context.Context, id int64) error {
	_, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (struct{}, error) {
		return struct{}{}, s.client.DeletePost(ctx, token, id)
	})
	return s.translate(err)
}

func validatePost(in model.PostInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return model.NewValidationError("title", "Başlık gerekli.")
	}
	if !in.PostType.Valid() {
		return model.NewValidationError("post_type", "İlan türü seçin.")
	}
	if strings.TrimSpace(in.City) == "" {
		return model.NewValidationError("city", "Şehir gerekli.")
	}
	for _, p := range in.PositionsNeeded {
		if !slices.Contains(model.Positions, p) {
			return model.NewValidationError("positions_needed", "Geçersiz pozisyon: "+p)
		}
	}
	return nil
}

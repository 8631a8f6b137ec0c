// Package admin は管理者セッションと管理者向け操作を提供する。
//
// 管理者の呼び出しで401または403が返った場合は管理者セッションのみを破棄し、
// /admin/login へ戻す *session.ExpiredError を返す。通常セッションには触れない。
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hitoshi/teamfinder/internal/api"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
)

// Client はサービスが利用するコラボレーターAPI。
type Client interface {
	AdminLogin(ctx context.Context, email, password string) (*model.AuthResponse[model.AdminUser], error)
	AdminStats(ctx context.Context, token string) (*model.AdminStats, error)
	AdminUsers(ctx context.Context, token string) ([]model.User, error)
	AdminDeleteUser(ctx context.Context, token string, id int64) error
	AdminPosts(ctx context.Context, token string) ([]model.Post, error)
	AdminDeletePost(ctx context.Context, token string, id int64) error
}

// Dashboard はダッシュボードに表示する内容。
type Dashboard struct {
	Stats model.AdminStats
	Users []model.User
	Posts []model.Post
}

// Service は管理者向けの操作を提供する。
type Service struct {
	client Client
	store  *session.Store[model.AdminUser]
	logger *slog.Logger
}

// NewService はServiceを生成する。
func NewService(client Client, store *session.Store[model.AdminUser], logger *slog.Logger) *Service {
	return &Service{client: client, store: store, logger: logger}
}

// Session は現在の管理者セッションを返す。
func (s *Service) Session() session.Snapshot[model.AdminUser] {
	return s.store.Current()
}

// Login は管理者としてログインし、管理者セッションを確立する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.AdminUser, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("email", "E-posta ve şifre gerekli.")
	}

	resp, err := s.client.AdminLogin(ctx, email, password)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && (se.StatusCode == 401 || se.StatusCode == 403) {
			return nil, model.NewAuthRejectedError(se.Detail)
		}
		return nil, api.AsAPIError(err)
	}

	if err := s.store.Commit(ctx, resp.User, resp.AccessToken); err != nil {
		s.logger.Error("failed to persist admin session", slog.String("error", err.Error()))
		return nil, model.NewRequestFailedError("Oturum kaydedilemedi.")
	}
	s.logger.Info("admin logged in", slog.Int64("admin_id", resp.User.ID))
	return &resp.User, nil
}

// Logout は管理者セッションをローカルで破棄する。
func (s *Service) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Stats は集計値を取得する。
func (s *Service) Stats(ctx context.Context) (*model.AdminStats, error) {
	stats, err := session.Authorized(ctx, s.store, api.IsAuthFailure, func(token string) (*model.AdminStats, error) {
		return s.client.AdminStats(ctx, token)
	})
	if err != nil {
		return nil, translate(err)
	}
	return stats, nil
}

// Users は全ユーザーを取得する。
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	users, err := session.Authorized(ctx, s.store, api.IsAuthFailure, func(token string) ([]model.User, error) {
		return s.client.AdminUsers(ctx, token)
	})
	return users, translate(err)
}

// DeleteUser はユーザーを削除する。
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	_, err := session.Authorized(ctx, s.store, api.IsAuthFailure, func(token string) (struct{}, error) {
		return struct{}{}, s.client.AdminDeleteUser(ctx, token, id)
	})
	if err == nil {
		s.logger.Info("admin deleted user", slog.Int64("user_id", id))
	}
	return translate(err)
}

// Posts は全募集を取得する。
func (s *Service) Posts(ctx context.Context) ([]model.Post, error) {
	posts, err := session.Authorized(ctx, s.store, api.IsAuthFailure, func(token string) ([]model.Post, error) {
		return s.client.AdminPosts(ctx, token)
	})
	return posts, translate(err)
}

// DeletePost は募集を削除する。
func (s *Service) DeletePost(ctx context.Context, id int64) error {
	_, err := session.Authorized(ctx, s.store, api.IsAuthFailure, func(token string) (struct{}, error) {
		return struct{}{}, s.client.AdminDeletePost(ctx, token, id)
	})
	if err == nil {
		s.logger.Info("admin deleted post", slog.Int64("post_id", id))
	}
	return translate(err)
}

// Dashboard は集計値・ユーザー・募集をまとめて取得する。
// 途中でセッションが切れた場合はそこで打ち切る。
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.Posts(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Stats: *stats, Users: users, Posts: posts}, nil
}

// Verify は起動時の検証に使う。集計値の取得に成功すればトークンは有効とみなす。
func (s *Service) Verify(ctx context.Context, token string) error {
	_, err := s.client.AdminStats(ctx, token)
	return err
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var expired *session.ExpiredError
	if errors.As(err, &expired) {
		return expired
	}
	return api.AsAPIError(err)
}

// Package account は通常ユーザーのログイン・プロフィール・募集・スタメン図の操作を提供する。
//
// 認証が必要な呼び出しで401が返った場合は通常セッションを破棄し、
// *session.ExpiredError を返す。それ以外の失敗は *model.APIError になる。
package account

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/hitoshi/teamfinder/internal/api"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
)

// Client はサービスが利用するコラボレーターAPI。
type Client interface {
	Login(ctx context.Context, email, password string) (*model.AuthResponse[model.User], error)
	Register(ctx context.Context, name, email, password string) (*model.AuthResponse[model.User], error)
	Profile(ctx context.Context, token string) (*model.User, error)
	UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (*model.User, error)
	SearchUsers(ctx context.Context, token, city, position string) ([]model.User, error)

	ListPosts(ctx context.Context, f model.PostFilter) (*model.PostList, error)
	MyPosts(ctx context.Context, token string) ([]model.Post, error)
	CreatePost(ctx context.Context, token string, in model.PostInput) (*model.Post, error)
	UpdatePost(ctx context.Context, token string, id int64, in model.PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, token string, id int64) error

	Lineups(ctx context.Context, token string) (*model.LineupList, error)
	Lineup(ctx context.Context, token string, id int64) (*model.Lineup, error)
	CreateLineup(ctx context.Context, token string, in model.LineupInput) (*model.Lineup, error)
	UpdateLineup(ctx context.Context, token string, id int64, in model.LineupInput) (*model.Lineup, error)
	DeleteLineup(ctx context.Context, token string, id int64) error
}

// Service は通常ユーザー向けの操作を提供する。
type Service struct {
	client Client
	store  *session.Store[model.User]
	logger *slog.Logger
}

// NewService はServiceを生成する。
func NewService(client Client, store *session.Store[model.User], logger *slog.Logger) *Service {
	return &Service{client: client, store: store, logger: logger}
}

// Session は現在の通常セッションを返す。
func (s *Service) Session() session.Snapshot[model.User] {
	return s.store.Current()
}

// LoginRedirect はGoogleログイン開始のための外部リダイレクトを返す。
func (s *Service) LoginRedirect() session.ExternalRedirect {
	return s.store.Login()
}

// Login はメールアドレスとパスワードでログインし、セッションを確立する。
// 認証情報の拒否はセッション切れではなく、入力エラーとして扱う。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("email", "E-posta ve şifre gerekli.")
	}

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, rejection(err, "Giriş başarısız oldu.")
	}
	return s.commit(ctx, resp)
}

// Register はアカウントを作成し、セッションを確立する。
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, model.NewValidationError("name", "Ad soyad gerekli.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, model.NewValidationError("email", "Geçerli bir e-posta adresi girin.")
	}
	if len(password) < 6 {
		return nil, model.NewValidationError("password", "Şifre en az 6 karakter olmalı.")
	}

	resp, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, rejection(err, "Kayıt başarısız oldu.")
	}
	return s.commit(ctx, resp)
}

// Logout は通常セッションをローカルで破棄する。コラボレーターは呼ばない。
func (s *Service) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Profile はプロフィールを取得し、保存済みIdentityを最新の内容で上書きする。
func (s *Service) Profile(ctx context.Context) (*model.User, error) {
	var used string
	u, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (*model.User, error) {
		used = token
		return s.client.Profile(ctx, token)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	s.refreshIdentity(ctx, used, *u)
	return u, nil
}

// UpdateProfile はプロフィールを部分更新し、保存済みIdentityを更新後の内容で上書きする。
func (s *Service) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.User, error) {
	if update.Age != nil && (*update.Age < 0 || *update.Age > 120) {
		return nil, model.NewValidationError("age", "Geçerli bir yaş girin.")
	}

	var used string
	u, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) (*model.User, error) {
		used = token
		return s.client.UpdateProfile(ctx, token, update)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	s.refreshIdentity(ctx, used, *u)
	return u, nil
}

// SearchUsers は都市・ポジションでプレイヤーを検索する。
func (s *Service) SearchUsers(ctx context.Context, city, position string) ([]model.User, error) {
	users, err := session.Authorized(ctx, s.store, api.IsUnauthorized, func(token string) ([]model.User, error) {
		return s.client.SearchUsers(ctx, token, city, position)
	})
	return users, s.translate(err)
}

func (s *Service) commit(ctx context.Context, resp *model.AuthResponse[model.User]) (*model.User, error) {
	if err := s.store.Commit(ctx, resp.User, resp.AccessToken); err != nil {
		s.logger.Error("failed to persist session", slog.String("error", err.Error()))
		return nil, model.NewRequestFailedError("Oturum kaydedilemedi.")
	}
	s.logger.Info("user logged in", slog.Int64("user_id", resp.User.ID))
	return &resp.User, nil
}

// refreshIdentity は取得したプロフィールで保存済みIdentityを上書きする。失敗はログのみ。
// 取得に使ったtokenがすでに置き換わっていれば書き込まない。
func (s *Service) refreshIdentity(ctx context.Context, token string, u model.User) {
	err := s.store.SetIdentityFor(ctx, token, u)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrStaleCredential):
		s.logger.Debug("skipping identity refresh for a replaced session")
	default:
		s.logger.Warn("failed to refresh stored identity", slog.String("error", err.Error()))
	}
}

// translate はExpiredError以外のエラーを画面表示用のエラーに変換する。
func (s *Service) translate(err error) error {
	if err == nil {
		return nil
	}
	var expired *session.ExpiredError
	if errors.As(err, &expired) {
		return expired
	}
	return api.AsAPIError(err)
}

// rejection はログイン・登録の失敗を変換する。401/403/400はセッション切れではなく拒否として扱う。
func rejection(err error, fallback string) error {
	var se *api.StatusError
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != 422 {
		detail := se.Detail
		if detail == "" {
			detail = fallback
		}
		return model.NewAuthRejectedError(detail)
	}
	return api.AsAPIError(err)
}

// Verify は起動時の検証に使う。プロフィールの取得に成功すればトークンは有効とみなす。
func (s *Service) Verify(ctx context.Context, token string) error {
	_, err := s.client.Profile(ctx, token)
	return err
}

package api

import (
	"context"
	"net/http"

	"github.com/hitoshi/teamfinder/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginURL はGoogle OAuthを開始するエンドポイントのURLを返す。
func (c *Client) GoogleLoginURL() string {
	return c.baseURL + "/auth/google/login"
}

// Login はメールアドレスとパスワードでログインする。
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse[model.User], error) {
	var out model.AuthResponse[model.User]
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register はアカウントを作成する。成功時はログイン済みのトークンが返る。
func (c *Client) Register(ctx context.Context, name, email, password string) (*model.AuthResponse[model.User], error) {
	var out model.AuthResponse[model.User]
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   registerRequest{Name: name, Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminLogin は管理者としてログインする。
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*model.AuthResponse[model.AdminUser], error) {
	var out model.AuthResponse[model.AdminUser]
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/admin/auth/login",
		body:   loginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Package oauth はリダイレクト型のGoogleログインの完了処理を提供する。
//
// コラボレーターはOAuth完了後に user（URLエンコードされたIdentityのJSON）と
// token（Bearerトークン）をクエリに付けてアプリのコールバックへリダイレクトする。
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/hitoshi/teamfinder/internal/metrics"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
)

// 結果ラベル
const (
	ResultSuccess        = "success"
	ResultProviderError  = "provider_error"
	ResultMissingToken   = "missing_token"
	ResultInvalidPayload = "invalid_payload"
	ResultProfileFailed  = "profile_failed"
	ResultStorageError   = "storage_error"
)

// ProfileFetcher はトークンの持ち主のプロフィールを取得する。
type ProfileFetcher interface {
	Profile(ctx context.Context, token string) (*model.User, error)
}

// Result はログイン完了時の結果。
type Result struct {
	User     model.User
	Enriched bool
}

// Completer はコールバックのクエリからセッションを確立する。
type Completer struct {
	store    *session.Store[model.User]
	profiles ProfileFetcher
	enrich   bool
	logger   *slog.Logger
	metrics  metrics.MetricsCollector

	mu sync.Mutex
}

// NewCompleter はCompleterを生成する。
// enrichがtrueの場合、不完全なIdentityを受け取ったときにプロフィールを1回だけ取得して補完する。
func NewCompleter(store *session.Store[model.User], profiles ProfileFetcher, enrich bool, logger *slog.Logger, mc metrics.MetricsCollector) *Completer {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Completer{
		store:    store,
		profiles: profiles,
		enrich:   enrich && profiles != nil,
		logger:   logger,
		metrics:  mc,
	}
}

// Complete はコールバックのクエリを処理する。
// 失敗時は*model.APIErrorを返し、セッションは処理前の状態に戻っている。
// 成功時はIdentityとCredentialが組として永続化されている。
func (c *Completer) Complete(ctx context.Context, params url.Values) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reason := params.Get("error"); reason != "" {
		c.logger.Warn("oauth provider returned an error", slog.String("reason", reason))
		c.metrics.RecordOAuthCompletion(ResultProviderError)
		return nil, model.NewOAuthProviderError(reason)
	}

	token := params.Get("token")
	if token == "" {
		c.logger.Warn("oauth callback without token")
		c.metrics.RecordOAuthCompletion(ResultMissingToken)
		return nil, model.NewOAuthMissingTokenError()
	}

	prev := c.store.Current()

	if err := c.store.SetCredential(ctx, token); err != nil {
		return nil, c.fail(ctx, prev, ResultStorageError, err, model.NewRequestFailedError("Oturum kaydedilemedi."))
	}

	user, err := decodeUser(params.Get("user"))
	if err != nil {
		return nil, c.fail(ctx, prev, ResultInvalidPayload, err, model.NewOAuthInvalidUserError(err.Error()))
	}

	enriched := false
	if c.enrich && user.Partial() {
		rich, err := c.profiles.Profile(ctx, token)
		if err != nil {
			return nil, c.fail(ctx, prev, ResultProfileFailed, err, model.NewOAuthProfileFailedError())
		}
		if rich.ID != user.ID {
			err := fmt.Errorf("profile id %d does not match callback id %d", rich.ID, user.ID)
			return nil, c.fail(ctx, prev, ResultProfileFailed, err, model.NewOAuthProfileFailedError())
		}
		user = user.Merge(*rich)
		enriched = true
	}

	if err := c.store.Commit(ctx, user, token); err != nil {
		return nil, c.fail(ctx, prev, ResultStorageError, err, model.NewRequestFailedError("Oturum kaydedilemedi."))
	}

	c.metrics.RecordOAuthCompletion(ResultSuccess)
	c.logger.Info("oauth login completed",
		slog.Int64("user_id", user.ID),
		slog.Bool("enriched", enriched),
	)
	return &Result{User: user, Enriched: enriched}, nil
}

// fail はセッションを処理前の状態に戻し、表示用のエラーを返す。
// リクエストが中断されていても巻き戻しは完了させる。
func (c *Completer) fail(ctx context.Context, prev session.Snapshot[model.User], result string, cause error, apiErr *model.APIError) error {
	c.logger.Warn("oauth login failed, rolling back",
		slog.String("result", result),
		slog.String("error", cause.Error()),
	)
	if err := c.store.Restore(context.WithoutCancel(ctx), prev); err != nil {
		c.logger.Error("failed to roll back session", slog.String("error", err.Error()))
	}
	c.metrics.RecordOAuthCompletion(result)
	return apiErr
}

var errMissingUser = errors.New("user payload is missing")

// decodeUser はuserパラメータを解析する。
// クエリの値はすでに1回デコードされているが、二重にエンコードされた値も受け付ける。
func decodeUser(raw string) (model.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.User{}, errMissingUser
	}

	user, err := parseUser(raw)
	if err == nil {
		return user, nil
	}
	unescaped, uerr := url.QueryUnescape(raw)
	if uerr != nil || unescaped == raw {
		return model.User{}, err
	}
	return parseUser(unescaped)
}

func parseUser(s string) (model.User, error) {
	var user model.User
	if err := json.Unmarshal([]byte(s), &user); err != nil {
		return model.User{}, fmt.Errorf("invalid user json: %w", err)
	}
	if !user.Valid() {
		return model.User{}, errors.New("user payload has no id")
	}
	return user, nil
}

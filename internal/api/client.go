// Package api はリモートコラボレーター（FastAPIバックエンド）のHTTPクライアントを提供する。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/teamfinder/internal/metrics"
)

const (
	// defaultTimeout は1リクエストあたりのデフォルトのタイムアウト。
	defaultTimeout = 10 * time.Second
	// maxResponseSize はレスポンスボディの読み取り上限。
	maxResponseSize = 1 << 20
	userAgent       = "Teamfinder/1.0"
)

// ErrUnavailable はコラボレーターに到達できなかった場合に返される。
var ErrUnavailable = errors.New("api: collaborator unavailable")

// ErrResponseTooLarge はレスポンスボディがmaxResponseSizeを超えた場合に返される。
var ErrResponseTooLarge = errors.New("api: response body too large")

// StatusError はコラボレーターが2xx以外を返した場合のエラー。
// DetailにはFastAPIのエラーボディのdetailが入る。
type StatusError struct {
	StatusCode int
	Detail     string
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Detail)
}

// IsUnauthorized はerrが401応答かどうかを返す。
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden はerrが403応答かどうかを返す。
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsAuthFailure はerrが401または403応答かどうかを返す。
func IsAuthFailure(err error) bool {
	return IsUnauthorized(err) || IsForbidden(err)
}

func hasStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Options はClientの設定。
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit は1秒あたりの送信リクエスト数の上限。0以下の場合は無制限。
	RateLimit float64
	RateBurst int
	// HTTPClient はテスト用に差し替え可能。nilの場合はTimeoutを設定したクライアントを使う。
	HTTPClient *http.Client
}

// Client はコラボレーターのAPIクライアント。
// 認証が必要な呼び出しはBearerトークンを引数で受け取り、セッションを直接参照しない。
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(opts Options, logger *slog.Logger, mc metrics.MetricsCollector) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	if mc == nil {
		mc = metrics.Nop{}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
		metrics:    mc,
	}
}

// BaseURL はコラボレーターのベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request は1回のAPI呼び出しを表す。
type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// do はリクエストを送信し、2xxの場合はレスポンスをoutにデコードする。
// outがnilの場合はボディを読み捨てる。
func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("api: rate limiter: %w", err)
	}

	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("api: failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, body)
	if err != nil {
		return fmt.Errorf("api: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordAPILatency(time.Since(start))
	if err != nil {
		c.metrics.RecordAPIStatus(0)
		c.logger.Error("collaborator request failed",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, r.method, r.path, err)
	}
	defer resp.Body.Close()
	c.metrics.RecordAPIStatus(resp.StatusCode)

	// 上限を1バイト超えて読み、切り詰めと区別する
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return fmt.Errorf("api: failed to read response body: %w", err)
	}
	if len(data) > maxResponseSize {
		c.logger.Warn("collaborator response exceeded size limit",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.Int("limit_bytes", maxResponseSize),
		)
		return fmt.Errorf("%w: %s %s", ErrResponseTooLarge, r.method, r.path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{StatusCode: resp.StatusCode, Detail: parseDetail(data)}
		c.logger.Warn("collaborator returned error status",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.Int("http_status", resp.StatusCode),
		)
		return se
	}

	c.logger.Debug("collaborator request completed",
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("http_status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: failed to decode %s %s response: %w", r.method, r.path, err)
	}
	return nil
}

// parseDetail はFastAPIのエラーボディからdetailを取り出す。
// detailが文字列でない場合（バリデーションエラーの配列など）は空文字を返す。
func parseDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

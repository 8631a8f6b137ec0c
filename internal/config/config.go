// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/hitoshi/teamfinder/internal/session"
)

// ストレージバックエンド
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Collaborator
	APIBaseURL   string        `env:"API_BASE_URL,required"`
	APITimeout   time.Duration `env:"API_TIMEOUT"    envDefault:"10s"`
	APIRateLimit float64       `env:"API_RATE_LIMIT" envDefault:"10"`
	APIRateBurst int           `env:"API_RATE_BURST" envDefault:"20"`

	// Server
	// セッショントークンを扱うため、既定ではループバックにのみバインドする
	ServerHost string `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	ServerPort string `env:"SERVER_PORT" envDefault:"3002"`
	BaseURL    string `env:"BASE_URL"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND"  envDefault:"file"`
	StoragePath    string `env:"STORAGE_PATH"`
	RedisURL       string `env:"REDIS_URL"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"teamfinder:"`

	// Session
	SessionBootstrap string        `env:"SESSION_BOOTSTRAP" envDefault:"optimistic"`
	BootstrapTimeout time.Duration `env:"BOOTSTRAP_TIMEOUT" envDefault:"5s"`

	// OAuth
	OAuthEnrichProfile bool          `env:"OAUTH_ENRICH_PROFILE" envDefault:"true"`
	OAuthSuccessDelay  time.Duration `env:"OAUTH_SUCCESS_DELAY"  envDefault:"2s"`
	OAuthErrorDelay    time.Duration `env:"OAUTH_ERROR_DELAY"    envDefault:"3s"`

	// Observability
	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.ServerPort
	}
	if cfg.StorageBackend == StorageFile && cfg.StoragePath == "" {
		cfg.StoragePath = defaultStoragePath()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile はdotenvファイルを読み込んでからLoadする。
// すでに設定されている環境変数はファイルの値で上書きしない。
// pathが空の場合はカレントディレクトリの.envを探し、存在しなければ無視する。
func LoadFile(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(".env"); err == nil {
			path = ".env"
		}
	}
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("config: failed to load env file %s: %w", path, err)
		}
	}
	return Load()
}

// ListenAddr はHTTPサーバーが待ち受けるアドレスを返す。
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// Strategy は起動時のセッション復元方式を返す。
func (c *Config) Strategy() session.Strategy {
	s, err := session.ParseStrategy(c.SessionBootstrap)
	if err != nil {
		return session.StrategyOptimistic
	}
	return s
}

func (c *Config) validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute URL: %q", c.APIBaseURL))
	}

	switch c.StorageBackend {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORAGE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be one of file, redis, memory: %q", c.StorageBackend))
	}

	if _, err := session.ParseStrategy(c.SessionBootstrap); err != nil {
		errs = append(errs, fmt.Errorf("SESSION_BOOTSTRAP must be optimistic or verified: %q", c.SessionBootstrap))
	}
	if c.BootstrapTimeout <= 0 {
		errs = append(errs, errors.New("BOOTSTRAP_TIMEOUT must be positive"))
	}
	if c.APIRateBurst < 0 || c.APIRateLimit < 0 {
		errs = append(errs, errors.New("API_RATE_LIMIT and API_RATE_BURST must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// defaultStoragePath はユーザー設定ディレクトリ配下のセッションファイルのパスを返す。
func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "teamfinder", "session.json")
}

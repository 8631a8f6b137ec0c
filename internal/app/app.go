package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/hitoshi/teamfinder/internal/account"
	"github.com/hitoshi/teamfinder/internal/admin"
	"github.com/hitoshi/teamfinder/internal/api"
	"github.com/hitoshi/teamfinder/internal/config"
	"github.com/hitoshi/teamfinder/internal/guard"
	"github.com/hitoshi/teamfinder/internal/handler"
	"github.com/hitoshi/teamfinder/internal/logger"
	"github.com/hitoshi/teamfinder/internal/metrics"
	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/oauth"
	"github.com/hitoshi/teamfinder/internal/security"
	"github.com/hitoshi/teamfinder/internal/session"
	"github.com/hitoshi/teamfinder/internal/storage"
)

const defaultPort = "3002"

// Init はアプリケーションの初期化を行う。
// dotenvファイルと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer, envFile string) (*config.Config, *slog.Logger, error) {
	// 設定読み込み前にログを使えるようにする
	log := logger.SetupDefault(w, slog.LevelInfo)

	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn("invalid LOG_LEVEL, falling back to info", slog.String("value", cfg.LogLevel))
	}
	if level != slog.LevelInfo {
		log = logger.SetupDefault(w, level)
	}

	return cfg, log, nil
}

// Run はアプリケーションのメインエントリーポイント。
// フラグとサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	flags := pflag.NewFlagSet("teamfinder", pflag.ContinueOnError)
	flags.SetOutput(w)
	envFile := flags.String("env-file", "", "path to a dotenv file (defaults to ./.env when present)")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	cmd := ParseCommand(flags.Args())

	if cmd == CommandVersion {
		fmt.Fprintf(w, "teamfinder %s\n", Version)
		return nil
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = defaultPort
		}
		return runHealthcheck(port)
	}

	cfg, log, err := Init(w, *envFile)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	log.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("addr", cfg.ListenAddr()),
		slog.String("base_url", cfg.BaseURL),
		slog.String("storage", cfg.StorageBackend),
		slog.String("bootstrap", string(cfg.Strategy())),
	)

	return runServe(cfg, log)
}

// runServe はWebクライアントを起動する。
// セッションを復元してから全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer srv.close()

	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("web client starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down web client...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("web client stopped gracefully")
	return nil
}

// wiring はワイヤリング済みのHTTPハンドラーと後始末を保持する。
type wiring struct {
	handler http.Handler
	users   *session.Store[model.User]
	admins  *session.Store[model.AdminUser]
	closers []func()
}

func (w *wiring) close() {
	for i := len(w.closers) - 1; i >= 0; i-- {
		w.closers[i]()
	}
}

// build はストレージからルーターまでの依存関係を組み立てる。
// 両名前空間のセッション復元（ブートストラップ）はリクエスト受付前に完了させる。
func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*wiring, error) {
	w := &wiring{}

	// 1. ストレージ
	kv, closeKV, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if closeKV != nil {
		w.closers = append(w.closers, closeKV)
	}

	// 2. メトリクス
	var (
		mc             metrics.MetricsCollector = metrics.Nop{}
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		mc = metrics.NewCollector(registry)
		metricsHandler = metrics.Handler(registry)
	}

	// 3. コラボレーターAPIクライアント
	client := api.NewClient(api.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
	}, log, mc)

	// 4. セッションストア
	w.users = session.NewStore[model.User](kv, session.UserNamespace(cfg.APIBaseURL), log, mc)
	w.admins = session.NewStore[model.AdminUser](kv, session.AdminNamespace(), log, mc)

	// 5. ドメインサービス
	accounts := account.NewService(client, w.users, log)
	adminSvc := admin.NewService(client, w.admins, log)
	completer := oauth.NewCompleter(w.users, client, cfg.OAuthEnrichProfile, log, mc)

	// 6. セッション復元
	strategy := cfg.Strategy()
	userSnap := session.NewBootstrapper(w.users, strategy, session.VerifierFunc(accounts.Verify), cfg.BootstrapTimeout).Run(ctx)
	adminSnap := session.NewBootstrapper(w.admins, strategy, session.VerifierFunc(adminSvc.Verify), cfg.BootstrapTimeout).Run(ctx)
	log.Info("sessions restored",
		slog.Bool("user_authenticated", userSnap.Authenticated()),
		slog.Bool("admin_authenticated", adminSnap.Authenticated()),
	)

	// 7. ルーター
	tracker := guard.NewTracker(w.users, w.admins)
	w.closers = append(w.closers, tracker.Close)

	router, err := handler.NewRouter(&handler.RouterDeps{
		Logger:    log,
		Users:     w.users,
		Admins:    w.admins,
		Guard:     guard.New(guard.DefaultRoutes),
		States:    tracker,
		Accounts:  accounts,
		Completer: completer,
		Admin:     adminSvc,
		Sanitizer: security.NewListingSanitizer(),
		AuthConfig: handler.AuthHandlerConfig{
			SuccessDelay: cfg.OAuthSuccessDelay,
			ErrorDelay:   cfg.OAuthErrorDelay,
		},
		Metrics: metricsHandler,
	})
	if err != nil {
		w.close()
		return nil, fmt.Errorf("failed to build router: %w", err)
	}
	w.handler = router

	return w, nil
}

// openStorage はSTORAGE_BACKENDに応じたKVを開く。
// 後始末が必要なバックエンドはclose関数を返す。
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.KV, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		client, err := storage.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis storage: %w", err)
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}
		return storage.NewRedisKV(client, cfg.RedisKeyPrefix), closeFn, nil
	case config.StorageMemory:
		log.Warn("memory storage selected, sessions will not survive a restart")
		return storage.NewMemoryKV(), nil, nil
	default:
		kv, err := storage.NewFileKV(cfg.StoragePath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		log.Info("file storage opened", slog.String("path", cfg.StoragePath))
		return kv, nil, nil
	}
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	return checkHealth(fmt.Sprintf("http://localhost:%s/health", port))
}

func checkHealth(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

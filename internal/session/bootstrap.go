package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Strategy は起動時のセッション復元方式。
type Strategy string

const (
	// StrategyOptimistic は永続化済みIdentityをネットワーク確認なしで信頼する。
	StrategyOptimistic Strategy = "optimistic"
	// StrategyVerified は永続化済みCredentialをコラボレーターに1回だけ確認してから信頼する。
	StrategyVerified Strategy = "verified"
)

// DefaultVerifyTimeout は検証呼び出しのデフォルトのタイムアウト。
const DefaultVerifyTimeout = 5 * time.Second

// ParseStrategy は文字列からStrategyを解析する。
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyOptimistic, StrategyVerified:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("session: unknown bootstrap strategy %q", s)
	}
}

// Verifier はCredentialがまだ有効かをコラボレーターに問い合わせる。
// nilを返した場合のみ肯定応答とみなす。
type Verifier interface {
	Verify(ctx context.Context, credential string) error
}

// VerifierFunc は関数をVerifierとして使うためのアダプタ。
type VerifierFunc func(ctx context.Context, credential string) error

// Verify はVerifierを実装する。
func (f VerifierFunc) Verify(ctx context.Context, credential string) error {
	return f(ctx, credential)
}

// Bootstrapper はプロセス起動時に1回だけセッションを復元する。
// どの経路でも最終的にLoading=falseの状態を生成する。
type Bootstrapper[I Principal] struct {
	store    *Store[I]
	strategy Strategy
	verifier Verifier
	timeout  time.Duration

	once sync.Once
}

// NewBootstrapper はBootstrapperを生成する。
// verifierがnilの場合はStrategyに関わらず楽観的に復元する。
func NewBootstrapper[I Principal](store *Store[I], strategy Strategy, verifier Verifier, timeout time.Duration) *Bootstrapper[I] {
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	return &Bootstrapper[I]{
		store:    store,
		strategy: strategy,
		verifier: verifier,
		timeout:  timeout,
	}
}

// Run はセッションを復元して結果を返す。2回目以降の呼び出しは何もせず現在の状態を返す。
func (b *Bootstrapper[I]) Run(ctx context.Context) Snapshot[I] {
	b.once.Do(func() {
		if b.strategy != StrategyVerified || b.verifier == nil {
			b.store.Initialize(ctx)
			return
		}
		b.runVerified(ctx)
	})
	return b.store.Current()
}

// runVerified はIdentityとCredentialが両方ある場合のみ1回だけ検証呼び出しを行う。
// 否定応答・エラー・タイムアウトの場合はIdentityとCredentialを両方破棄する。
// 呼び出し元のctxがキャンセルされた場合は未認証として公開するが、永続化データには触れない。
func (b *Bootstrapper[I]) runVerified(ctx context.Context) {
	s := b.store

	identity, credential := s.restore(ctx)
	if identity == nil || credential == "" {
		s.publish(Snapshot[I]{})
		return
	}

	start := time.Now()
	if err := b.verify(ctx, credential); err != nil {
		if ctx.Err() != nil {
			// 起動自体が中断された場合は判定がついていないため、永続化データは残す
			s.logger.Info("session verification interrupted, keeping persisted session",
				slog.String("error", err.Error()),
			)
			s.publish(Snapshot[I]{})
			return
		}
		s.logger.Warn("persisted session rejected",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		s.discard(ctx, "verify_rejected")
		s.publish(Snapshot[I]{})
		return
	}

	s.events.RecordSessionEvent(s.ns.Name, "verified")
	s.publish(Snapshot[I]{Identity: identity, Credential: credential})
}

// verify はタイムアウト付きで検証を実行する。
// Verifierがコンテキストを無視してブロックしても、タイムアウトで打ち切る。
func (b *Bootstrapper[I]) verify(ctx context.Context, credential string) error {
	vctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("session: verifier panicked: %v", rec)
			}
		}()
		done <- b.verifier.Verify(vctx, credential)
	}()

	select {
	case err := <-done:
		return err
	case <-vctx.Done():
		return fmt.Errorf("session: verification timed out: %w", vctx.Err())
	}
}

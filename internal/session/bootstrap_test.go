package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/storage"
)

func seedUserSession(t *testing.T, kv storage.KV) {
	t.Helper()
	ctx := context.Background()
	if err := kv.Set(ctx, "user", `{"id":1,"email":"a@b.com"}`); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := kv.Set(ctx, "access_token", "tok"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"optimistic", StrategyOptimistic, false},
		{"verified", StrategyVerified, false},
		{"", "", true},
		{"strict", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBootstrapper_Optimistic_NoNetworkCall(t *testing.T) {
	kv := storage.NewMemoryKV()
	seedUserSession(t, kv)

	var calls int32
	verifier := VerifierFunc(func(ctx context.Context, credential string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	b := NewBootstrapper(newUserStore(kv), StrategyOptimistic, verifier, time.Second)
	snap := b.Run(context.Background())

	if !snap.Authenticated() {
		t.Errorf("expected authenticated session, got %+v", snap)
	}
	if calls != 0 {
		t.Errorf("verifier calls = %d, want 0", calls)
	}
}

func TestBootstrapper_Verified_AffirmativeKeepsSession(t *testing.T) {
	kv := storage.NewMemoryKV()
	seedUserSession(t, kv)

	var calls int32
	var gotCredential string
	verifier := VerifierFunc(func(ctx context.Context, credential string) error {
		atomic.AddInt32(&calls, 1)
		gotCredential = credential
		return nil
	})

	b := NewBootstrapper(newUserStore(kv), StrategyVerified, verifier, time.Second)
	snap := b.Run(context.Background())

	if !snap.Authenticated() {
		t.Fatalf("expected authenticated session, got %+v", snap)
	}
	if calls != 1 {
		t.Errorf("verifier calls = %d, want 1", calls)
	}
	if gotCredential != "tok" {
		t.Errorf("verified credential = %q, want %q", gotCredential, "tok")
	}
}

func TestBootstrapper_Verified_NegativeDiscardsBoth(t *testing.T) {
	kv := storage.NewMemoryKV()
	seedUserSession(t, kv)

	verifier := VerifierFunc(func(ctx context.Context, credential string) error {
		return errors.New("401 unauthorized")
	})

	b := NewBootstrapper(newUserStore(kv), StrategyVerified, verifier, time.Second)
	snap := b.Run(context.Background())

	if snap.Loading {
		t.Error("Loading should be false")
	}
	if snap.Identity != nil || snap.Credential != "" {
		t.Errorf("expected empty session, got %+v", snap)
	}
	assertMissing(t, kv, "user", "access_token")
}

func TestBootstrapper_Verified_NoCredential_NoNetworkCall(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.Set(context.Background(), "user", `{"id":1}`)

	var calls int32
	verifier := VerifierFunc(func(ctx context.Context, credential string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	b := NewBootstrapper(newUserStore(kv), StrategyVerified, verifier, time.Second)
	snap := b.Run(context.Background())

	if calls != 0 {
		t.Errorf("verifier calls = %d, want 0", calls)
	}
	if snap.Loading || snap.Identity != nil {
		t.Errorf("expected loaded empty session, got %+v", snap)
	}
}

func TestBootstrapper_Verified_HangingVerifier_TimesOut(t *testing.T) {
	kv := storage.NewMemoryKV()
	seedUserSession(t, kv)

	release := make(chan struct{})
	defer close(release)
	verifier := VerifierFunc(func(ctx context.Context, credential string) error {
		// コンテキストを無視してブロックする
		<-release
		return nil
	})

	b := NewBootstrapper(newUserStore(kv), StrategyVerified, verifier, 20*time.Millisecond)

	done := make(chan Snapshot[model.User], 1)
	go func() { done <- b.Run(context.Background()) }()

	select {
	case snap := <-done:
		if snap.Loading {
			t.Error("Loading should be false after timeout")
		}
		if snap.Identity != nil {
			t.Error("identity should be discarded after timeout")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bootstrap did not terminate")
	}
}

func TestBootstrapper_Verified_PanickingVerifier_Resolves(t *testing.T) {
	kv := storage.NewMemoryKV()
	seedUserSession(t, kv)

	verifier := VerifierFunc(func(ctx context.Context, credential string) error {
		panic("boom")
	})

	b := NewBootstrapper(newUserStore(kv), StrategyVerified, verifier, time.Second)
	snap := b.Run(context.Background())

	if snap.Loading || snap.Identity != nil {
		t.Errorf("expected loaded empty session, got %+v", snap)
	}
}

func TestBootstrapper_RunsOnce(t *testing.T) {
	kv := storage.NewMemoryKV()
	seedUserSession(t, kv)

	var calls int32
	verifier := VerifierFunc(func(ctx context.Context, credential string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	store := newUserStore(kv)
	b := NewBootstrapper(store, StrategyVerified, verifier, time.Second)
	b.Run(context.Background())

	// 初回実行後のログアウトは2回目のRunで巻き戻らない
	store.Clear(context.Background())
	snap := b.Run(context.Background())

	if calls != 1 {
		t.Errorf("verifier calls = %d, want 1", calls)
	}
	if snap.Authenticated() {
		t.Error("second Run should not restore the session again")
	}
}

func TestBootstrapper_NilVerifier_FallsBackToOptimistic(t *testing.T) {
	kv := storage.NewMemoryKV()
	seedUserSession(t, kv)

	b := NewBootstrapper(newUserStore(kv), StrategyVerified, nil, 0)
	if snap := b.Run(context.Background()); !snap.Authenticated() {
		t.Errorf("expected authenticated session, got %+v", snap)
	}
}

func TestBootstrapper_Verified_ParentCanceled_KeepsPersistedSession(t *testing.T) {
	kv := storage.NewMemoryKV()
	seedUserSession(t, kv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	verifier := VerifierFunc(func(vctx context.Context, credential string) error {
		// 検証中にシャットダウンのシグナルを受けた状態
		cancel()
		<-vctx.Done()
		return vctx.Err()
	})

	snap := NewBootstrapper(newUserStore(kv), StrategyVerified, verifier, time.Second).Run(ctx)

	if snap.Loading || snap.Authenticated() {
		t.Errorf("snapshot = %+v, want resolved and unauthenticated", snap)
	}
	if got := mustGet(t, kv, "access_token"); got != "tok" {
		t.Errorf("access_token = %q, want tok", got)
	}
	if got := mustGet(t, kv, "user"); got != `{"id":1,"email":"a@b.com"}` {
		t.Errorf("user = %q, want persisted identity", got)
	}

	// 次回起動時には同じセッションを検証できる
	next := NewBootstrapper(newUserStore(kv), StrategyVerified, VerifierFunc(func(context.Context, string) error { return nil }), time.Second).Run(context.Background())
	if !next.Authenticated() {
		t.Error("session should verify on the next start")
	}
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitoshi/teamfinder/internal/storage"
)

var (
	// ErrNoCredential はCredentialを保持していない状態でIdentityを設定しようとした場合に返される。
	ErrNoCredential = errors.New("session: no credential held")
	// ErrInvalidIdentity は形状が不正なIdentityを保存しようとした場合に返される。
	ErrInvalidIdentity = errors.New("session: invalid identity")
	// ErrEmptyCredential は空のトークンを保存しようとした場合に返される。
	ErrEmptyCredential = errors.New("session: empty credential")
	// ErrStaleCredential は呼び出し中にCredentialが別のものに置き換わった場合に返される。
	ErrStaleCredential = errors.New("session: credential replaced during call")
)

// Principal はセッションが保持するIdentityの制約。
// 永続化データから復元した値がValidを満たさない場合は存在しないものとして扱う。
type Principal interface {
	Valid() bool
}

// Snapshot はある時点のセッション状態。
type Snapshot[I Principal] struct {
	Identity   *I
	Credential string
	Loading    bool
	// Version はストアの状態が変わるたびに増える。
	// 通知はロック外で行うため、購読者は自分が持つものより古い通知を捨てること。
	Version uint64
}

// Authenticated はセッションが認証済みとして扱えるかを返す。
// Credentialを伴わないIdentityは認証済みとみなさない。
func (s Snapshot[I]) Authenticated() bool {
	return !s.Loading && s.Identity != nil && s.Credential != ""
}

// ExternalRedirect はアプリ外へのフルナビゲーションを表す。
// これを発行した後、現在のリクエスト処理では何も実行されない。
type ExternalRedirect struct {
	URL string
}

// EventRecorder はセッションイベントを記録するインターフェース。
type EventRecorder interface {
	RecordSessionEvent(namespace, event string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSessionEvent(string, string) {}

// Store は1つの名前空間のセッションを保持する唯一の情報源。
// メモリ上の状態と永続化ストアの両方を管理し、変更を購読者に通知する。
type Store[I Principal] struct {
	kv     storage.KV
	ns     Namespace
	logger *slog.Logger
	events EventRecorder

	mu      sync.Mutex
	current Snapshot[I]
	version uint64
	subs    map[uint64]func(Snapshot[I])
	nextSub uint64
}

// NewStore はStoreを生成する。初期状態はLoading=true、Identityなし。
// eventsがnilの場合はイベントを記録しない。
func NewStore[I Principal](kv storage.KV, ns Namespace, logger *slog.Logger, events EventRecorder) *Store[I] {
	if events == nil {
		events = nopRecorder{}
	}
	return &Store[I]{
		kv:      kv,
		ns:      ns,
		logger:  logger.With(slog.String("namespace", ns.Name)),
		events:  events,
		current: Snapshot[I]{Loading: true},
		subs:    make(map[uint64]func(Snapshot[I])),
	}
}

// Namespace はストアの名前空間を返す。
func (s *Store[I]) Namespace() Namespace {
	return s.ns
}

// Current は現在のセッション状態のコピーを返す。
func (s *Store[I]) Current() Snapshot[I] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Subscribe はセッション変更時に呼ばれる関数を登録し、登録解除関数を返す。
// 通知はロック外で同期的に行われる。
func (s *Store[I]) Subscribe(fn func(Snapshot[I])) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Initialize は永続化済みのIdentityとCredentialを読み込み、ネットワーク確認なしで信頼する。
// 読み込みに失敗したデータは破棄され、セッションは未認証になる。
// 結果に関わらずLoadingはfalseになる。
func (s *Store[I]) Initialize(ctx context.Context) Snapshot[I] {
	identity, credential := s.restore(ctx)
	if identity != nil {
		s.events.RecordSessionEvent(s.ns.Name, "restored")
	}
	return s.publish(Snapshot[I]{Identity: identity, Credential: credential})
}

// SetIdentity はIdentityを上書きし、既存のCredentialと並べて永続化する。
// 形状の検証以外は行わない（呼び出し側を信頼する）。
func (s *Store[I]) SetIdentity(ctx context.Context, identity I) error {
	return s.setIdentity(ctx, identity, "")
}

// SetIdentityFor はcredentialがまだ現在のCredentialである場合に限りIdentityを上書きする。
// credentialで取得したIdentityを書き戻す場合に使う。
// 取得中に再ログインなどでCredentialが置き換わっていればErrStaleCredentialを返し、何も書かない。
func (s *Store[I]) SetIdentityFor(ctx context.Context, credential string, identity I) error {
	if credential == "" {
		return ErrEmptyCredential
	}
	return s.setIdentity(ctx, identity, credential)
}

// setIdentity はexpectedが空でなければ現在のCredentialとの一致を確認してから書き込む。
func (s *Store[I]) setIdentity(ctx context.Context, identity I, expected string) error {
	if !identity.Valid() {
		return ErrInvalidIdentity
	}

	s.mu.Lock()
	credential := s.current.Credential
	if credential == "" {
		s.mu.Unlock()
		return ErrNoCredential
	}
	if expected != "" && credential != expected {
		s.mu.Unlock()
		return ErrStaleCredential
	}
	if err := s.writeIdentity(ctx, identity); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.setLocked(Snapshot[I]{Identity: &identity, Credential: credential})
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// SetCredential はCredentialを置き換える。
// 以前のIdentityは新しいCredentialで再検証されるまで信頼できないため、メモリと永続化の両方から除去する。
func (s *Store[I]) SetCredential(ctx context.Context, credential string) error {
	if credential == "" {
		return ErrEmptyCredential
	}

	s.mu.Lock()
	if err := s.kv.Delete(ctx, s.ns.IdentityKey); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session: failed to drop identity: %w", err)
	}
	if err := s.kv.Set(ctx, s.ns.CredentialKey, credential); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session: failed to persist credential: %w", err)
	}
	snap := s.setLocked(Snapshot[I]{Credential: credential})
	s.mu.Unlock()

	s.events.RecordSessionEvent(s.ns.Name, "credential_replaced")
	s.notify(snap)
	return nil
}

// Commit はIdentityとCredentialを組として永続化する。
// Identityの書き込みに失敗した場合はCredentialも取り除き、片方だけが残る状態を作らない。
func (s *Store[I]) Commit(ctx context.Context, identity I, credential string) error {
	if !identity.Valid() {
		return ErrInvalidIdentity
	}
	if credential == "" {
		return ErrEmptyCredential
	}

	s.mu.Lock()
	if err := s.kv.Set(ctx, s.ns.CredentialKey, credential); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session: failed to persist credential: %w", err)
	}
	if err := s.writeIdentity(ctx, identity); err != nil {
		// 書き込み失敗の原因がキャンセルでも取り消しは完了させる
		if delErr := s.kv.Delete(context.WithoutCancel(ctx), s.ns.IdentityKey, s.ns.CredentialKey); delErr != nil {
			s.logger.Error("failed to roll back credential",
				slog.String("error", delErr.Error()),
			)
		}
		snap := s.setLocked(Snapshot[I]{})
		s.mu.Unlock()
		s.notify(snap)
		return err
	}
	snap := s.setLocked(Snapshot[I]{Identity: &identity, Credential: credential})
	s.mu.Unlock()

	s.events.RecordSessionEvent(s.ns.Name, "committed")
	s.notify(snap)
	return nil
}

// Restore は以前のスナップショットの状態に戻す。
// 認証済みのスナップショットならCommitし直し、それ以外はClearする。
// 失敗した操作の後始末として呼ばれるため、ctxのキャンセルは引き継がない。
func (s *Store[I]) Restore(ctx context.Context, prev Snapshot[I]) error {
	ctx = context.WithoutCancel(ctx)
	if prev.Identity != nil && prev.Credential != "" {
		return s.Commit(ctx, *prev.Identity, prev.Credential)
	}
	return s.Clear(ctx)
}

// Clear はメモリと永続化の両方からIdentityとCredentialを削除する（ログアウト）。
// コラボレーター側のトークン失効は行わない。
// 永続化の削除に失敗してもメモリ上の状態は未認証にする。
func (s *Store[I]) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.kv.Delete(ctx, s.ns.IdentityKey, s.ns.CredentialKey)
	snap := s.setLocked(Snapshot[I]{})
	s.mu.Unlock()

	s.events.RecordSessionEvent(s.ns.Name, "cleared")
	s.notify(snap)

	if err != nil {
		return fmt.Errorf("session: failed to clear persisted session: %w", err)
	}
	return nil
}

// Login はログイン開始のための外部リダイレクトを返す。
// 呼び出し側はこれを発行した時点で処理を終えること。メモリ上の状態は引き継がれない。
func (s *Store[I]) Login() ExternalRedirect {
	if s.ns.LoginURL != "" {
		return ExternalRedirect{URL: s.ns.LoginURL}
	}
	return ExternalRedirect{URL: s.ns.EntryPath}
}

// restore は永続化データを読み込み、検証を通ったIdentityとCredentialを返す。
// 壊れたIdentity、Credentialを伴わないIdentity、Identityを伴わないCredentialは破棄する。
func (s *Store[I]) restore(ctx context.Context) (*I, string) {
	rawIdentity, err := s.kv.Get(ctx, s.ns.IdentityKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("failed to read persisted identity", slog.String("error", err.Error()))
		return nil, ""
	}
	credential, err := s.kv.Get(ctx, s.ns.CredentialKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("failed to read persisted credential", slog.String("error", err.Error()))
		return nil, ""
	}

	if rawIdentity == "" && credential == "" {
		return nil, ""
	}

	var identity *I
	if rawIdentity != "" {
		identity, err = decodeIdentity[I](rawIdentity)
		if err != nil {
			s.logger.Warn("discarding malformed persisted identity", slog.String("error", err.Error()))
			s.discard(ctx, "corrupt_discarded")
			return nil, ""
		}
	}

	if identity == nil || credential == "" {
		s.logger.Warn("discarding incomplete persisted session",
			slog.Bool("has_identity", identity != nil),
			slog.Bool("has_credential", credential != ""),
		)
		s.discard(ctx, "incomplete_discarded")
		return nil, ""
	}

	return identity, credential
}

// discard は永続化済みのセッションを削除する。失敗はログのみ。
func (s *Store[I]) discard(ctx context.Context, event string) {
	if err := s.kv.Delete(ctx, s.ns.IdentityKey, s.ns.CredentialKey); err != nil {
		s.logger.Error("failed to discard persisted session", slog.String("error", err.Error()))
	}
	s.events.RecordSessionEvent(s.ns.Name, event)
}

// publish は読み込み完了状態を設定し、購読者に通知する。
func (s *Store[I]) publish(snap Snapshot[I]) Snapshot[I] {
	snap.Loading = false
	s.mu.Lock()
	out := s.setLocked(snap)
	s.mu.Unlock()

	s.notify(out)
	return out
}

// setLocked は状態を置き換えてバージョンを進め、通知用のコピーを返す。
// 呼び出し側でロックを保持すること。
func (s *Store[I]) setLocked(snap Snapshot[I]) Snapshot[I] {
	s.version++
	snap.Version = s.version
	s.current = snap
	return s.current.clone()
}

// writeIdentity はIdentityをJSONで永続化する。呼び出し側でロックを保持すること。
func (s *Store[I]) writeIdentity(ctx context.Context, identity I) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("session: failed to encode identity: %w", err)
	}
	if err := s.kv.Set(ctx, s.ns.IdentityKey, string(data)); err != nil {
		return fmt.Errorf("session: failed to persist identity: %w", err)
	}
	return nil
}

// notify は購読者を同期的に呼ぶ。並行する変更の通知は順不同で届き得る。
func (s *Store[I]) notify(snap Snapshot[I]) {
	s.mu.Lock()
	fns := make([]func(Snapshot[I]), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// decodeIdentity は永続化されたJSONを厳密に解析する。
// 型の不一致やValidを満たさない値はエラーとする。
func decodeIdentity[I Principal](raw string) (*I, error) {
	var identity I
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("invalid identity json: %w", err)
	}
	if !identity.Valid() {
		return nil, ErrInvalidIdentity
	}
	return &identity, nil
}

func (s Snapshot[I]) clone() Snapshot[I] {
	if s.Identity != nil {
		identity := *s.Identity
		s.Identity = &identity
	}
	return s
}

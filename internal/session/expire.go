package session

import (
	"context"
	"fmt"
	"log/slog"
)

// ExpiredError はコラボレーターが認証を拒否したためにセッションを破棄したことを表す。
// 呼び出し側はRedirectToへ遷移させる。
type ExpiredError struct {
	Namespace  string
	RedirectTo string
	Cause      error
}

// Error はerrorインターフェースを実装する。
func (e *ExpiredError) Error() string {
	return fmt.Sprintf("session %s expired: %v", e.Namespace, e.Cause)
}

// Unwrap は元のエラーを返す。
func (e *ExpiredError) Unwrap() error {
	return e.Cause
}

// Expire は認証済みAPI呼び出しのエラーを検査する。
// matchがtrueを返すエラーの場合、この名前空間のセッションを即座に破棄してExpiredErrorを返す。
// ただし拒否されたcredentialがすでに別のCredentialに置き換わっている場合は
// 新しいセッションに触れず、元のエラーをそのまま返す。
// それ以外のエラー（nilを含む）もそのまま返す。
func (s *Store[I]) Expire(ctx context.Context, credential string, err error, match func(error) bool) error {
	if err == nil || !match(err) {
		return err
	}

	replaced, clearErr := s.clearIfCurrent(ctx, credential)
	if clearErr != nil {
		s.logger.Error("failed to clear expired session", slog.String("error", clearErr.Error()))
	}
	if replaced {
		s.logger.Info("ignoring rejection of a replaced credential")
		return err
	}
	s.events.RecordSessionEvent(s.ns.Name, "expired")
	s.logger.Info("session expired by collaborator", slog.String("redirect_to", s.ns.EntryPath))

	return &ExpiredError{
		Namespace:  s.ns.Name,
		RedirectTo: s.ns.EntryPath,
		Cause:      err,
	}
}

// clearIfCurrent は現在のCredentialがcredentialと一致する場合だけセッションを破棄する。
// 比較と破棄は同じロックの中で行う。
// 別のCredentialに置き換わっていた場合はreplaced=trueを返す。すでに未認証なら何もしない。
func (s *Store[I]) clearIfCurrent(ctx context.Context, credential string) (replaced bool, err error) {
	s.mu.Lock()
	switch s.current.Credential {
	case "":
		s.mu.Unlock()
		return false, nil
	case credential:
	default:
		s.mu.Unlock()
		return true, nil
	}
	err = s.kv.Delete(context.WithoutCancel(ctx), s.ns.IdentityKey, s.ns.CredentialKey)
	snap := s.setLocked(Snapshot[I]{})
	s.mu.Unlock()

	s.events.RecordSessionEvent(s.ns.Name, "cleared")
	s.notify(snap)
	return false, err
}

// RequireCredential は認証済みの場合にCredentialを返す。
// 未認証の場合はこの名前空間の入口へ戻すExpiredErrorを返す。
func (s *Store[I]) RequireCredential() (string, error) {
	snap := s.Current()
	if !snap.Authenticated() {
		return "", &ExpiredError{
			Namespace:  s.ns.Name,
			RedirectTo: s.ns.EntryPath,
			Cause:      ErrNoCredential,
		}
	}
	return snap.Credential, nil
}

// Authorized はこの名前空間のCredentialでfnを実行し、エラーにExpireを適用する。
func Authorized[I Principal, T any](ctx context.Context, s *Store[I], match func(error) bool, fn func(credential string) (T, error)) (T, error) {
	var zero T
	credential, err := s.RequireCredential()
	if err != nil {
		return zero, err
	}
	out, err := fn(credential)
	if err != nil {
		return zero, s.Expire(ctx, credential, err, match)
	}
	return out, nil
}

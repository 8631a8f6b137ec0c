package guard

import (
	"sync"

	"github.com/hitoshi/teamfinder/internal/model"
	"github.com/hitoshi/teamfinder/internal/session"
)

// StateOf はセッションのスナップショットを判定用の状態に変換する。
func StateOf[I session.Principal](snap session.Snapshot[I]) State {
	return State{Loading: snap.Loading, Authenticated: snap.Authenticated()}
}

// Tracker は2つのセッションストアを購読し、最新の状態を保持する。
// ストアの通知は順不同で届くため、保持しているものより古いVersionの通知は捨てる。
type Tracker struct {
	mu           sync.RWMutex
	user         State
	admin        State
	userVersion  uint64
	adminVersion uint64

	unsubscribe []func()
}

// NewTracker は通常セッションと管理者セッションを購読するTrackerを生成する。
func NewTracker(users *session.Store[model.User], admins *session.Store[model.AdminUser]) *Tracker {
	t := &Tracker{}

	t.unsubscribe = append(t.unsubscribe, users.Subscribe(t.observeUser))
	t.unsubscribe = append(t.unsubscribe, admins.Subscribe(t.observeAdmin))

	// 購読開始前の変更を取りこぼさないよう、登録後に現在値で初期化する
	t.observeUser(users.Current())
	t.observeAdmin(admins.Current())

	return t
}

func (t *Tracker) observeUser(s session.Snapshot[model.User]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Version < t.userVersion {
		return
	}
	t.user, t.userVersion = StateOf(s), s.Version
}

func (t *Tracker) observeAdmin(s session.Snapshot[model.AdminUser]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Version < t.adminVersion {
		return
	}
	t.admin, t.adminVersion = StateOf(s), s.Version
}

// States は通常セッションと管理者セッションの状態を返す。
func (t *Tracker) States() (user, admin State) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.user, t.admin
}

// Close は購読を解除する。
func (t *Tracker) Close() {
	for _, fn := range t.unsubscribe {
		fn()
	}
	t.unsubscribe = nil
}

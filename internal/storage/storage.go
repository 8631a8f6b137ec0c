// Package storage はセッションの永続化に使うキーバリューストアを提供する。
//
// ブラウザのlocalStorageに相当し、プロセス再起動（リロード）をまたいで値を保持する。
// 名前空間（通常/管理者）ごとのキーの使い分けは呼び出し側のsession.Storeが担う。
package storage

import (
	"context"
	"errors"
)

// ErrNotFound はキーが存在しない場合に返される。
var ErrNotFound = errors.New("storage: key not found")

// KV はセッション永続化のためのキーバリューストアのインターフェース。
type KV interface {
	// Get はキーの値を返す。存在しない場合はErrNotFoundを返す。
	Get(ctx context.Context, key string) (string, error)
	// Set はキーに値を保存する。
	Set(ctx context.Context, key, value string) error
	// Delete は指定したキーを削除する。存在しないキーは無視する。
	Delete(ctx context.Context, keys ...string) error
}

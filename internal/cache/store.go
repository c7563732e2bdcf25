// Package cache は読み取り時に充填し、書き込み時に同期的に破棄するキャッシュを提供する。
//
// 値はJSONで保存される。同一キーに対するget/put/evictはキー単位で線形化され、
// 充填と破棄が競合した場合はキーが必ず空の状態で終わる。
package cache

import "context"

// Store はキャッシュのバックエンドストアのインターフェース。
// TTLは持たず、明示的な削除でのみエントリが消える（容量による追い出しは除く）。
type Store interface {
	// Get はキーの値を返す。存在しない場合はfalseを返す。
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set はキーの値を無条件に上書きする。
	Set(ctx context.Context, key string, value []byte) error
	// Delete は指定キーを削除する。存在しないキーはエラーにしない。
	Delete(ctx context.Context, keys ...string) error
	// Clear は全エントリを削除する。
	Clear(ctx context.Context) error
}

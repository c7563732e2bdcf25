package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// キャッシュリージョン
const (
	RegionPet            = "pet"
	RegionPets           = "pets"
	RegionPetRecords     = "petRecords"
	RegionDogBreeds      = "dogBreeds"
	RegionDogBreedByName = "dogBreedByName"
	RegionAllBreedsNames = "allBreedsNames"
)

// KeyAll は一覧エントリのキー。
const KeyAll = "all"

// stripes はキーロックのストライプ数。
const stripes = 256

// Ref はリージョン内の1エントリを指す。
type Ref struct {
	Region string
	Key    string
}

func (r Ref) String() string {
	return r.Region + ":" + r.Key
}

// Recorder はヒット・ミスを記録するインターフェース。
type Recorder interface {
	CacheHit(region string)
	CacheMiss(region string)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string)  {}
func (nopRecorder) CacheMiss(string) {}

// Manager はStoreの上にキー単位のロックと読み取り時充填を提供する。
//
// 読み取りはキーの読みロックを get → load → put の間保持し、
// 書き込みは変更から破棄、コミットまでの間書きロックを保持する。
// これにより、書き込み前の値による充填が破棄の後に着地することはない。
// 破棄されないリージョンはFetchStableでキーロックを取らずに読む。
type Manager struct {
	store    Store
	locks    [stripes]sync.RWMutex
	group    singleflight.Group
	recorder Recorder
	logger   *slog.Logger
}

// Option はManagerの設定を変更する。
type Option func(*Manager)

// WithRecorder はヒット・ミスの記録先を設定する。
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithLogger はロガーを設定する。
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager はManagerを生成する。
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func stripeOf(ref Ref) int {
	h := fnv.New32a()
	h.Write([]byte(ref.Region))
	h.Write([]byte{0})
	h.Write([]byte(ref.Key))
	return int(h.Sum32() % stripes)
}

// Fetch はrefのキャッシュ値を返す。ミスの場合はloadで取得してキャッシュに格納する。
// 同一キーへの同時ミスはloadを1回に集約する。
// loadの中から同じManagerのFetchやLockを呼んではならない。
func Fetch[T any](ctx context.Context, m *Manager, ref Ref, load func(ctx context.Context) (T, error)) (T, error) {
	mu := &m.locks[stripeOf(ref)]
	mu.RLock()
	defer mu.RUnlock()

	if v, ok := lookup[T](ctx, m, ref); ok {
		return v, nil
	}

	// 充填は読みロックの内側で完了させる
	res, err, _ := m.group.Do(ref.String(), fill(ctx, m, ref, load))
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// FetchStable は書き込みによる破棄が起きないリージョン向けのFetch。
// キーロックを取らないため、遅いloadが同じストライプの書き込みを待たせることはない。
// 呼び出し元のctxが先に終了した場合はctx.Err()を返し、共有のloadはそのまま続行してキャッシュを充填する。
func FetchStable[T any](ctx context.Context, m *Manager, ref Ref, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := lookup[T](ctx, m, ref); ok {
		return v, nil
	}

	ch := m.group.DoChan(ref.String(), fill(ctx, m, ref, load))
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// lookup はキャッシュからrefの値を読み、ヒット・ミスを記録する。
func lookup[T any](ctx context.Context, m *Manager, ref Ref) (T, bool) {
	var zero T

	key := ref.String()
	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn("cache get failed, falling back to store",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		ok = false
	}
	if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			m.recorder.CacheHit(ref.Region)
			return v, true
		}
		m.logger.Warn("cache entry is not decodable, reloading", slog.String("key", key))
	}
	m.recorder.CacheMiss(ref.Region)
	return zero, false
}

// fill はsingleflightで共有されるload → putを返す。
// 共有のloadは先頭の呼び出し元のキャンセルを引き継がない。
func fill[T any](ctx context.Context, m *Manager, ref Ref, load func(ctx context.Context) (T, error)) func() (any, error) {
	shared := context.WithoutCancel(ctx)
	key := ref.String()
	return func() (any, error) {
		v, err := load(shared)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cache value %s: %w", key, err)
		}
		if err := m.store.Set(shared, key, encoded); err != nil {
			m.logger.Warn("cache put failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return v, nil
	}
}

// Lock はrefsの書きロックを取得し、解放関数を返す。
// ロックは固定のストライプ順で取得するため、複数キーの同時書き込みでデッドロックしない。
func (m *Manager) Lock(refs ...Ref) (unlock func()) {
	idx := make([]int, 0, len(refs))
	seen := make(map[int]bool, len(refs))
	for _, r := range refs {
		s := stripeOf(r)
		if !seen[s] {
			seen[s] = true
			idx = append(idx, s)
		}
	}
	sort.Ints(idx)

	for _, i := range idx {
		m.locks[i].Lock()
	}
	return func() {
		for j := len(idx) - 1; j >= 0; j-- {
			m.locks[idx[j]].Unlock()
		}
	}
}

// Evict はrefsのエントリを削除する。呼び出し側がLockで書きロックを保持していること。
// 削除に失敗した場合はエラーを返し、書き込みを確定してはならない。
func (m *Manager) Evict(ctx context.Context, refs ...Ref) error {
	if len(refs) == 0 {
		return nil
	}
	keys := make([]string, len(refs))
	for i, r := range refs {
		keys[i] = r.String()
	}
	if err := m.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to evict cache entries %v: %w", keys, err)
	}
	return nil
}

// EvictAll は全ストライプの書きロックを取得して全エントリを削除する。
func (m *Manager) EvictAll(ctx context.Context) error {
	for i := range m.locks {
		m.locks[i].Lock()
	}
	defer func() {
		for i := len(m.locks) - 1; i >= 0; i-- {
			m.locks[i].Unlock()
		}
	}()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

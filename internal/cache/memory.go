package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore はプロセス内LRUによるStore実装。
type MemoryStore struct {
	lru *lru.Cache[string, []byte]
}

// NewMemoryStore は最大size件を保持するMemoryStoreを生成する。
func NewMemoryStore(size int) (*MemoryStore, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &MemoryStore{lru: c}, nil
}

// Get はキーの値を返す。
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.lru.Get(key)
	return v, ok, nil
}

// Set はキーの値を上書きする。
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.lru.Add(key, value)
	return nil
}

// Delete は指定キーを削除する。
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.lru.Remove(k)
	}
	return nil
}

// Clear は全エントリを削除する。
func (s *MemoryStore) Clear(_ context.Context) error {
	s.lru.Purge()
	return nil
}

// Len は保持しているエントリ数を返す。
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}

var _ Store = (*MemoryStore)(nil)

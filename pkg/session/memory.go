package session

import (
	"context"
	"sync"
)

// MemoryStore はプロセス内でトークンを保持するストア。
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore は初期トークンを持つMemoryStoreを生成する。
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Token は現在のトークンを返す。
func (s *MemoryStore) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// SetToken はトークンを保存する。
func (s *MemoryStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// ClearToken はトークンを破棄する。
func (s *MemoryStore) ClearToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// CompareAndClear は現在のトークンがtokenと一致する場合に限り破棄する。
func (s *MemoryStore) CompareAndClear(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || s.token != token {
		return false, nil
	}
	s.token = ""
	return true, nil
}

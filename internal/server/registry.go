package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/shouni/go-picture-book/pkg/session"

	"github.com/patrickmn/go-cache"
)

// SessionFactory は新しい絵本セッションを生成します。
type SessionFactory func() (*session.Session, error)

// Registry はブラウザのセッション ID ごとに絵本セッションを保持します。
// 一定時間アクセスの無いセッションは破棄されます。
type Registry struct {
	mu      sync.Mutex
	items   *cache.Cache
	factory SessionFactory
}

// NewRegistry は ttl でアイドルセッションを破棄する Registry を生成します。
func NewRegistry(ttl time.Duration, factory SessionFactory) *Registry {
	return &Registry{
		items:   cache.New(ttl, ttl/2),
		factory: factory,
	}
}

// Get は id のセッションを返します。存在しなければ新しく作ります。
// アクセスのたびに有効期限を延長します。
func (r *Registry) Get(id string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, found := r.items.Get(id); found {
		if s, ok := v.(*session.Session); ok {
			r.items.SetDefault(id, s)
			return s, nil
		}
	}

	s, err := r.factory()
	if err != nil {
		return nil, fmt.Errorf("セッションの生成に失敗しました: %w", err)
	}
	r.items.SetDefault(id, s)
	return s, nil
}

// Len は保持しているセッション数を返します。
func (r *Registry) Len() int {
	return r.items.ItemCount()
}

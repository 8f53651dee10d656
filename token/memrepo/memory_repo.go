// Package memrepo keeps token slots in process memory. It is the default
// medium when a client has no cookie jar.
package memrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-ordercloud/token"
)

var _ token.Repo = (*MemoryRepo)(nil)

type MemoryRepo struct {
	tokens map[string]string
	lock   sync.RWMutex
}

func New() *MemoryRepo {
	return &MemoryRepo{
		tokens: make(map[string]string),
	}
}

func (r *MemoryRepo) Get(_ context.Context, key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.tokens[key], nil
}

func (r *MemoryRepo) Upsert(_ context.Context, key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tokens[key] = value
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.tokens, key)
	return nil
}

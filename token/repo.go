package token

import "context"

// Repo is a storage medium for token slots. Get returns "" and a nil error
// when the key is not present.
type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

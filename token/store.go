package token

import (
	"context"

	"github.com/pkg/errors"
)

// Decoder decodes a bearer token into claims.
type Decoder interface {
	Decode(rawToken string) (*Claims, error)
}

// Store holds the TokenSet of one client instance: a single slot per Kind,
// persisted in a Repo under keys from a KeyGenerator. Tokens live until they
// are overwritten or removed.
type Store struct {
	repo    Repo
	keys    KeyGenerator
	decoder Decoder
}

func NewStore(repo Repo, keys KeyGenerator, decoder Decoder) *Store {
	return &Store{
		repo:    repo,
		keys:    keys,
		decoder: decoder,
	}
}

// Get returns the token in the slot, or "" when it is empty.
func (s *Store) Get(ctx context.Context, kind Kind) (string, error) {
	value, err := s.repo.Get(ctx, s.keys.Key(kind))
	if err != nil {
		return "", errors.Wrapf(err, "Store.Get %s", kind)
	}
	return value, nil
}

// Set stores a token. Access and impersonation tokens must decode, otherwise
// a *MalformedTokenError is returned and the slot is left untouched.
func (s *Store) Set(ctx context.Context, kind Kind, rawToken string) error {
	if kind.requiresDecode() {
		if _, err := s.decoder.Decode(rawToken); err != nil {
			return &MalformedTokenError{Kind: kind, Err: err}
		}
	}
	if err := s.repo.Upsert(ctx, s.keys.Key(kind), rawToken); err != nil {
		return errors.Wrapf(err, "Store.Set %s", kind)
	}
	return nil
}

// Remove empties the slot.
func (s *Store) Remove(ctx context.Context, kind Kind) error {
	if err := s.repo.Delete(ctx, s.keys.Key(kind)); err != nil {
		return errors.Wrapf(err, "Store.Remove %s", kind)
	}
	return nil
}

// Clear empties every slot.
func (s *Store) Clear(ctx context.Context) error {
	for _, kind := range Kinds {
		if err := s.Remove(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

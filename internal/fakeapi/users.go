package fakeapi

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type credential struct {
	username string
	password string
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// registerUsers stores a bcrypt hash for each seeded credential.
func (s *Server) registerUsers(credentials []credential) error {
	for _, c := range credentials {
		hash, err := HashPassword(c.password)
		if err != nil {
			return errors.Wrapf(err, "hashing password for %s", c.username)
		}
		s.users[c.username] = hash
	}
	return nil
}

func (s *Server) checkPassword(username, password string) bool {
	s.lock.RLock()
	hash, ok := s.users[username]
	s.lock.RUnlock()
	return ok && CheckPasswordHash(password, hash)
}

// Package localstate is the on-device key-value scope: one JSON blob per
// namespace, private to this installation and never shared across accounts.
package localstate

import (
	"os"
	"path/filepath"
	"sync"
)

type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Get returns the blob stored under the namespace, or nil when the
// namespace has never been written.
func (s *Store) Get(namespace string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(s.path(namespace))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return blob, err
}

func (s *Store) Put(namespace string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(namespace) + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(namespace))
}

func (s *Store) Delete(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(namespace))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) path(namespace string) string {
	return filepath.Join(s.dir, namespace+".json")
}

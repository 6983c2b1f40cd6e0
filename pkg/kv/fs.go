package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FSStore keeps one file per key under <root>/<namespace>/<key>.
type FSStore struct {
	logger *zap.Logger
	lock   *sync.RWMutex
	root   string
}

func NewFSStore(logger *zap.Logger, root string) *FSStore {
	return &FSStore{
		logger: logger.Named("fs-store"),
		lock:   new(sync.RWMutex),
		root:   root,
	}
}

func (s *FSStore) path(ns Namespace, key string) string {
	return filepath.Join(s.root, string(ns), key)
}

func (s *FSStore) Get(ctx context.Context, ns Namespace, key string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	b, err := os.ReadFile(s.path(ns, key))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *FSStore) Set(ctx context.Context, ns Namespace, key string, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	path := s.path(ns, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create namespace dir: %w", err)
	}

	// write then rename, so readers never see a partial value
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	s.logger.Debug("stored value", zap.String("namespace", string(ns)), zap.String("key", key))
	return nil
}

package kv

import (
	"context"
	"sync"
)

type Store interface {
	Get(ctx context.Context, ns Namespace, key string) (string, error)
	Set(ctx context.Context, ns Namespace, key string, value string) error
}

var (
	namespacesLock = new(sync.Mutex)
	namespaces     = make(map[string]struct{})
)

type Namespace string

func RegisterNamespace(ns string) Namespace {
	namespacesLock.Lock()
	defer namespacesLock.Unlock()

	namespaces[ns] = struct{}{}
	return Namespace(ns)
}

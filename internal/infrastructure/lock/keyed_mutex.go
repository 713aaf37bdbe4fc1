package lock

import (
	"context"
	"sync"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
)

var _ inventory.ProductLocker = (*KeyedMutex)(nil)

// KeyedMutex serializa por clave dentro del proceso. Las entradas se liberan cuando nadie las usa.
type KeyedMutex struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex crea el locker en memoria.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{keys: make(map[string]*keyLock)}
}

// Lock adquiere todas las claves en orden. Si el contexto se cancela libera lo ya tomado.
func (k *KeyedMutex) Lock(ctx context.Context, productIDs ...string) (func(), error) {
	keys := normalize(productIDs)
	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := k.acquire(ctx, key); err != nil {
			k.releaseAll(acquired)
			return nil, err
		}
		acquired = append(acquired, key)
	}
	var once sync.Once
	return func() { once.Do(func() { k.releaseAll(acquired) }) }, nil
}

func (k *KeyedMutex) acquire(ctx context.Context, key string) error {
	k.mu.Lock()
	l, ok := k.keys[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.keys[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.unref(key)
		return ctx.Err()
	}
}

func (k *KeyedMutex) releaseAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		k.mu.Lock()
		l := k.keys[keys[i]]
		k.mu.Unlock()
		<-l.ch
		k.unref(keys[i])
	}
}

func (k *KeyedMutex) unref(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l := k.keys[key]
	l.refs--
	if l.refs == 0 {
		delete(k.keys, key)
	}
}

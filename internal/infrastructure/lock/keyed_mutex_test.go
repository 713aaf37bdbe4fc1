package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/infrastructure/lock"
)

func TestKeyedMutex_ExclusionPorClave(t *testing.T) {
	k := lock.NewKeyedMutex()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Lock(ctx, "p1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestKeyedMutex_ClavesDistintasNoSeBloquean(t *testing.T) {
	k := lock.NewKeyedMutex()
	ctx := context.Background()

	release, err := k.Lock(ctx, "p1")
	require.NoError(t, err)
	defer release()

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	release2, err := k.Lock(ctx2, "p2")
	require.NoError(t, err)
	release2()
}

func TestKeyedMutex_ContextoCanceladoLiberaLoTomado(t *testing.T) {
	k := lock.NewKeyedMutex()
	ctx := context.Background()

	held, err := k.Lock(ctx, "b")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(short, "a", "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// "a" quedó libre aunque el intento anterior lo había tomado
	ctx2, cancel2 := context.WithTimeout(ctx, time.Second)
	defer cancel2()
	releaseA, err := k.Lock(ctx2, "a")
	require.NoError(t, err)
	releaseA()
	held()
}

func TestKeyedMutex_OrdenInversoSinDeadlock(t *testing.T) {
	k := lock.NewKeyedMutex()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release, err := k.Lock(ctx, "a", "b")
			if assert.NoError(t, err) {
				release()
			}
		}()
		go func() {
			defer wg.Done()
			release, err := k.Lock(ctx, "b", "a", "b")
			if assert.NoError(t, err) {
				release()
			}
		}()
	}
	wg.Wait()
}

func TestKeyedMutex_ReleaseIdempotente(t *testing.T) {
	k := lock.NewKeyedMutex()
	ctx := context.Background()

	release, err := k.Lock(ctx, "p1")
	require.NoError(t, err)
	release()
	release()

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	again, err := k.Lock(ctx2, "p1")
	require.NoError(t, err)
	again()
}

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Locker = (*LocalLocker)(nil)
	_ Locker = (*RedisLocker)(nil)
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, normalize([]string{"c", "a", "b", "a"}))
	assert.Empty(t, normalize(nil))
}

func TestLocalLocker_ExclusiveAndReleased(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "cards:1")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "cards:1")
	assert.ErrorIs(t, err, ErrBusy)

	release()
	release() // idempotent

	release2, err := l.Acquire(ctx, "cards:1")
	require.NoError(t, err)
	release2()
	assert.Equal(t, 0, l.size(), "idle keys are dropped")
}

func TestLocalLocker_PartialAcquireRollsBack(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)
	ctx := context.Background()

	releaseB, err := l.Acquire(ctx, "b")
	require.NoError(t, err)

	// "a" is free but "b" is held, so nothing may stay locked
	_, err = l.Acquire(ctx, "b", "a")
	assert.ErrorIs(t, err, ErrBusy)

	releaseA, err := l.Acquire(ctx, "a")
	require.NoError(t, err)
	releaseA()
	releaseB()
}

func TestLocalLocker_CancelledContext(t *testing.T) {
	l := NewLocalLocker(time.Second)
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalLocker_OppositeOrderDoesNotDeadlock(t *testing.T) {
	l := NewLocalLocker(2 * time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	var failures int32
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "x", "y")
			if err != nil {
				atomic.AddInt32(&failures, 1)
				return
			}
			release()
		}()
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "y", "x")
			if err != nil {
				atomic.AddInt32(&failures, 1)
				return
			}
			release()
		}()
	}
	wg.Wait()
	assert.Zero(t, failures)
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker(5 * time.Second)
	ctx := context.Background()

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "board:1")
			if err != nil {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxInside) {
				atomic.StoreInt32(&maxInside, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

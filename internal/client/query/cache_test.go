package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_CachesUntilInvalidated(t *testing.T) {
	c := New(0)
	ctx := context.Background()
	var calls int32
	load := func(ctx context.Context) ([]string, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return []string{"Bassa"}, nil
		}
		return []string{"Bassa", "Kpelle"}, nil
	}

	v, err := Fetch(ctx, c, KeyLanguages, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bassa"}, v)

	v, err = Fetch(ctx, c, KeyLanguages, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bassa"}, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	c.Invalidate(KeyLanguages, KeyAdminLanguages)
	v, err = Fetch(ctx, c, KeyLanguages, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bassa", "Kpelle"}, v)
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := New(0)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := Fetch(ctx, c, KeyRoles, func(ctx context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	v, err := Fetch(ctx, c, KeyRoles, func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFetch_ConcurrentCallsShareOneLoad(t *testing.T) {
	c := New(0)
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, c, KeyAdminUsers, func(ctx context.Context) (int, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestFetch_InvalidationDuringLoadDiscardsResult(t *testing.T) {
	c := New(0)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Fetch(ctx, c, KeyBackups, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	c.Invalidate(KeyBackups)
	close(release)
	<-done

	v, err := Fetch(ctx, c, KeyBackups, func(ctx context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestFetch_TTL(t *testing.T) {
	c := New(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	var calls int32
	load := func(ctx context.Context) (int32, error) { return atomic.AddInt32(&calls, 1), nil }

	v, _ := Fetch(ctx, c, KeySnapshots, load)
	assert.Equal(t, int32(1), v)
	now = now.Add(30 * time.Second)
	v, _ = Fetch(ctx, c, KeySnapshots, load)
	assert.Equal(t, int32(1), v)
	now = now.Add(time.Minute)
	v, _ = Fetch(ctx, c, KeySnapshots, load)
	assert.Equal(t, int32(2), v)
}

func TestClear(t *testing.T) {
	c := New(0)
	ctx := context.Background()
	_, _ = Fetch(ctx, c, KeyPermissions, func(ctx context.Context) (int, error) { return 1, nil })
	c.Clear()
	v, _ := Fetch(ctx, c, KeyPermissions, func(ctx context.Context) (int, error) { return 2, nil })
	assert.Equal(t, 2, v)
}

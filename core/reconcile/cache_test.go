package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"asset-reconciler/core/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookCache_Get(t *testing.T) {
	cache := NewBookCache(time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	var loads int32
	loader := func(ctx context.Context) (*rules.Book, error) {
		atomic.AddInt32(&loads, 1)
		return &rules.Book{Source: "rules.xlsx"}, nil
	}

	b1, err := cache.Get(context.Background(), "rules.xlsx", loader)
	require.NoError(t, err)
	b2, err := cache.Get(context.Background(), "rules.xlsx", loader)
	require.NoError(t, err)
	assert.Same(t, b1, b2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	assert.Equal(t, 1, cache.Len())

	// Expired entries are rebuilt
	now = now.Add(2 * time.Minute)
	_, err = cache.Get(context.Background(), "rules.xlsx", loader)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))

	cache.Invalidate("rules.xlsx")
	assert.Equal(t, 0, cache.Len())
}

func TestBookCache_ErrorNotCached(t *testing.T) {
	cache := NewBookCache(time.Minute)
	_, err := cache.Get(context.Background(), "bad", func(ctx context.Context) (*rules.Book, error) {
		return nil, errors.New("sheet missing")
	})
	assert.EqualError(t, err, "sheet missing")
	assert.Equal(t, 0, cache.Len())
}

func TestBookCache_Disabled(t *testing.T) {
	cache := NewBookCache(0)
	var loads int32
	loader := func(ctx context.Context) (*rules.Book, error) {
		atomic.AddInt32(&loads, 1)
		return &rules.Book{}, nil
	}
	for i := 0; i < 3; i++ {
		_, err := cache.Get(context.Background(), "k", loader)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&loads))
	assert.Equal(t, 0, cache.Len())
}

func TestBookCache_Stampede(t *testing.T) {
	cache := NewBookCache(time.Minute)
	var loads int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (*rules.Book, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return &rules.Book{}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), "k", loader)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

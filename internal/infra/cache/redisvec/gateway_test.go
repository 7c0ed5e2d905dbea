package redisvec

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSemanticEnabled_ConcurrentCallersShareOneCheck(t *testing.T) {
	g := New(nil, Config{})
	var checks atomic.Int32
	release := make(chan struct{})
	g.check = func(context.Context) error {
		checks.Add(1)
		<-release
		return nil
	}

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.SemanticEnabled(context.Background())
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), checks.Load())
	for _, ok := range results {
		assert.True(t, ok)
	}
}

func TestSemanticEnabled_CachedValueDoesNotWaitForCheck(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := New(nil, Config{})
	g.now = func() time.Time { return now }
	g.check = func(context.Context) error { return errors.New("unknown command 'FT._LIST'") }

	assert.False(t, g.SemanticEnabled(context.Background()))

	// пока результат свежий, зависшая проверка никого не блокирует
	g.check = func(context.Context) error { select {} }
	done := make(chan bool, 1)
	go func() { done <- g.SemanticEnabled(context.Background()) }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("SemanticEnabled blocked on a cached result")
	}
}

func TestSemanticEnabled_RechecksAfterInterval(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := New(nil, Config{})
	g.now = func() time.Time { return now }
	var checks int
	g.check = func(context.Context) error {
		checks++
		if checks == 1 {
			return errors.New("no search module")
		}
		return nil
	}

	assert.False(t, g.SemanticEnabled(context.Background()))
	now = now.Add(checkInterval - time.Second)
	assert.False(t, g.SemanticEnabled(context.Background()))
	now = now.Add(2 * time.Second)
	assert.True(t, g.SemanticEnabled(context.Background()))
	assert.Equal(t, 2, checks)
}

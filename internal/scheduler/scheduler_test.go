package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ok, failing atomic.Int32
	s := NewScheduler(ctx, nil)
	require.NoError(t, s.Add("@every 1s", "count", func(context.Context) error {
		ok.Add(1)
		return nil
	}))
	require.NoError(t, s.Add("@every 1s", "fail", func(context.Context) error {
		failing.Add(1)
		return errors.New("listing unavailable")
	}))

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return ok.Load() >= 1 && failing.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(context.Background(), nil)
	require.Error(t, s.Add("every five minutes", "bad", func(context.Context) error { return nil }))
}

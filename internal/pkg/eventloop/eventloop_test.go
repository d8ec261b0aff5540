package eventloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()

	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})

	return l, cancel
}

func TestLoop_PostRunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := range 100 {
		require.True(t, l.Post(func() { got = append(got, i) }))
	}

	require.NoError(t, l.Call(context.Background(), func() error { return nil }))

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestLoop_CallReturnsError(t *testing.T) {
	l, _ := startLoop(t)
	errBoom := errors.New("boom")

	err := l.Call(context.Background(), func() error { return errBoom })

	assert.ErrorIs(t, err, errBoom)
}

func TestLoop_PostFromTaskDoesNotBlock(t *testing.T) {
	l, _ := startLoop(t)
	done := make(chan struct{})

	l.Post(func() {
		l.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested post never ran")
	}
}

func TestLoop_ConcurrentPostersAreSerialized(t *testing.T) {
	l, _ := startLoop(t)
	counter := 0

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			for range 50 {
				_ = l.Call(context.Background(), func() error {
					counter++
					return nil
				})
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1000, counter)
}

func TestLoop_PanicIsRecovered(t *testing.T) {
	l, _ := startLoop(t)

	err := l.Call(context.Background(), func() error { panic("kaboom") })
	require.Error(t, err)

	assert.NoError(t, l.Call(context.Background(), func() error { return nil }))
}

func TestLoop_ClosedAfterCancel(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()
	<-l.Done()

	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Call(context.Background(), func() error { return nil }), ErrClosed)
}

func TestLoop_RunTwice(t *testing.T) {
	l, _ := startLoop(t)
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))

	assert.ErrorIs(t, l.Run(context.Background()), ErrRunning)
}

func TestLoop_CallHonoursContext(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Call(ctx, func() error { return nil })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

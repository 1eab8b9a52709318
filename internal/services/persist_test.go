package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_RunsInSubmissionOrder(t *testing.T) {
	w := NewWriter(nil)
	defer w.Close()

	var mu sync.Mutex
	var order []int
	var last *Pending
	for i := 0; i < 50; i++ {
		i := i
		last = w.Submit("op", func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
			return nil
		})
	}
	require.NoError(t, last.Wait(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestWriter_WrapsFailures(t *testing.T) {
	w := NewWriter(nil)
	defer w.Close()

	p := w.Submit("update task t1", func(ctx context.Context) error {
		return errors.New("connection reset")
	})
	err := p.Wait(context.Background())
	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.ErrorContains(t, err, "update task t1")
	assert.ErrorContains(t, err, "connection reset")

	select {
	case <-p.Done():
	default:
		t.Fatal("pending should be done")
	}
}

func TestWriter_SubmitAfterClose(t *testing.T) {
	w := NewWriter(nil)
	w.Close()

	p := w.Submit("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, p.Wait(context.Background()), ErrPersistenceFailed)
}

func TestWriter_CloseDrainsQueue(t *testing.T) {
	w := NewWriter(nil)

	var ran bool
	p := w.Submit("slow", func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		ran = true
		return nil
	})
	w.Close()

	assert.True(t, ran)
	assert.NoError(t, p.Wait(context.Background()))
}

func TestPending_WaitHonorsContext(t *testing.T) {
	w := NewWriter(nil)
	defer w.Close()

	release := make(chan struct{})
	p := w.Submit("blocked", func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)

	close(release)
	assert.NoError(t, p.Wait(context.Background()))
}

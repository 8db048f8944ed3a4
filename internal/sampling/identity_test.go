package sampling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestIdentityResolver_CachesHandle(t *testing.T) {
	var calls atomic.Int32
	r := NewIdentityResolver(func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "mybot", nil
	})

	for i := 0; i < 3; i++ {
		handle, err := r.Handle(context.Background())
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if handle != "mybot" {
			t.Fatalf("Handle() = %q, want %q", handle, "mybot")
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}

func TestIdentityResolver_FailureNotCached(t *testing.T) {
	var calls atomic.Int32
	fail := errors.New("network down")
	r := NewIdentityResolver(func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", fail
		}
		return "mybot", nil
	})

	if _, err := r.Handle(context.Background()); !errors.Is(err, fail) {
		t.Fatalf("Handle() error = %v, want %v", err, fail)
	}
	handle, err := r.Handle(context.Background())
	if err != nil {
		t.Fatalf("Handle() error on retry = %v", err)
	}
	if handle != "mybot" {
		t.Errorf("Handle() = %q after retry, want %q", handle, "mybot")
	}
}

func TestIdentityResolver_ConcurrentSingleFetch(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	r := NewIdentityResolver(func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-gate
		return "mybot", nil
	})

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle, err := r.Handle(context.Background())
			if err != nil {
				t.Errorf("Handle() error = %v", err)
				return
			}
			results[i] = handle
		}(i)
	}
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times under concurrency, want 1", got)
	}
	for i, handle := range results {
		if handle != "mybot" {
			t.Errorf("worker %d got %q, want %q", i, handle, "mybot")
		}
	}
}

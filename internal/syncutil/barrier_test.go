package syncutil

import (
	"testing"
	"time"
)

func TestBarrier_WaitUnblocksOnSet(t *testing.T) {
	b := NewBarrier(false)
	done := make(chan struct{})

	go func() {
		_ = b.Wait(func(v bool) bool { return v })
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Wait returned before predicate was satisfied")
	default:
	}

	if err := b.Set(true); err != nil {
		t.Fatalf("Set: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after Set")
	}
}

func TestBarrier_CloseUnblocksWaiters(t *testing.T) {
	b := NewBarrier(0)
	errs := make(chan error, 1)

	go func() {
		errs <- b.Wait(func(v int) bool { return v > 100 })
	}()

	time.Sleep(10 * time.Millisecond)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-errs:
		if err != ErrClosed {
			t.Errorf("Wait error = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after Close")
	}
}

func TestBarrier_SetAfterCloseReturnsErrClosed(t *testing.T) {
	b := NewBarrier("x")
	b.Close()
	if err := b.Set("y"); err != ErrClosed {
		t.Errorf("Set after close = %v, want ErrClosed", err)
	}
}

func TestBarrier_GetReturnsCurrentValue(t *testing.T) {
	b := NewBarrier(42)
	if got := b.Get(); got != 42 {
		t.Errorf("Get = %d, want 42", got)
	}
	b.Set(7)
	if got := b.Get(); got != 7 {
		t.Errorf("Get after Set = %d, want 7", got)
	}
}

package buffer

import "testing"

func TestLinear_ConsumePartial(t *testing.T) {
	b := NewLinear(4)
	src := []complex64{1, 2, 3, 4, 5}

	n := b.Consume(src)
	if n != 4 {
		t.Fatalf("consumed %d, expected 4", n)
	}
	if !b.IsFull() {
		t.Fatalf("expected buffer to be full")
	}
	if b.Length() != 4 {
		t.Fatalf("length %d, expected 4", b.Length())
	}
	for i, want := range []complex64{1, 2, 3, 4} {
		if got := b.At(i); got != want {
			t.Errorf("At(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestLinear_ResetReusesStorage(t *testing.T) {
	b := NewLinear(2)
	b.Consume([]complex64{1, 2})
	if !b.IsFull() {
		t.Fatalf("expected full")
	}
	b.Reset()
	if b.Length() != 0 || b.IsFull() {
		t.Fatalf("reset did not clear length")
	}
	n := b.Consume([]complex64{9})
	if n != 1 || b.At(0) != 9 {
		t.Fatalf("buffer not reusable after reset")
	}
}

func TestLinear_ConsumeNeverExceedsCapacity(t *testing.T) {
	b := NewLinear(3)
	b.Consume([]complex64{1, 2})
	n := b.Consume([]complex64{3, 4, 5})
	if n != 1 {
		t.Fatalf("consumed %d, expected 1 (only room for one more)", n)
	}
	if b.Length() != 3 || !b.IsFull() {
		t.Fatalf("length invariant violated: length=%d full=%v", b.Length(), b.IsFull())
	}
}

func TestLinear_AtPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on out-of-range access")
		}
	}()
	b := NewLinear(2)
	b.Consume([]complex64{1})
	_ = b.At(1)
}

package buffer

import "testing"

func TestCircular_ConsumeAllOverwritesOldest(t *testing.T) {
	b := NewCircular(3)
	b.Consume([]complex64{1, 2, 3}, true)
	if !b.IsFull() {
		t.Fatalf("expected full")
	}

	n := b.Consume([]complex64{4, 5}, true)
	if n != 2 {
		t.Fatalf("consumed %d, expected 2", n)
	}
	if b.Length() != 3 {
		t.Fatalf("length %d, expected capacity 3 after overwrite", b.Length())
	}

	var got []complex64
	b.Each(func(v complex64) { got = append(got, v) })
	want := []complex64{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %v, want %v (full sequence %v)", i, got[i], want[i], got)
		}
	}
}

func TestCircular_ConsumeStopsWhenNotConsumeAll(t *testing.T) {
	b := NewCircular(2)
	n := b.Consume([]complex64{1, 2, 3}, false)
	if n != 2 {
		t.Fatalf("consumed %d, expected 2 (capped at capacity)", n)
	}
	if !b.IsFull() {
		t.Fatalf("expected full")
	}
}

func TestCircular_IterationOrderBeforeFull(t *testing.T) {
	b := NewCircular(5)
	b.Consume([]complex64{1, 2, 3}, true)

	var got []complex64
	b.Each(func(v complex64) { got = append(got, v) })
	want := []complex64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCircular_ResetDoesNotDeallocate(t *testing.T) {
	b := NewCircular(2)
	b.Consume([]complex64{1, 2}, true)
	b.Reset()
	if b.Length() != 0 || b.IsFull() {
		t.Fatalf("reset did not clear state")
	}
	b.Consume([]complex64{9}, true)
	if b.At(0) != 9 {
		t.Fatalf("buffer not reusable after reset")
	}
}

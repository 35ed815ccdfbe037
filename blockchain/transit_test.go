package blockchain

import "testing"

func TestBlocksInTransit(t *testing.T) {
	hashes := [][]byte{
		[]byte("a123"),
		[]byte("b123"),
		[]byte("c123"),
	}

	transit := NewBlocksInTransit()
	transit.AddBlocks(hashes)

	if transit.Len() != 3 {
		t.Fatalf("expected 3 hashes, got %d", transit.Len())
	}

	first, ok := transit.First()
	if !ok || string(first) != "a123" {
		t.Fatalf("expected first hash a123, got %q (ok=%v)", first, ok)
	}

	transit.Remove([]byte("a123"))
	if transit.Len() != 2 {
		t.Fatalf("expected 2 hashes after remove, got %d", transit.Len())
	}

	first, ok = transit.First()
	if !ok || string(first) != "b123" {
		t.Fatalf("expected first hash b123, got %q (ok=%v)", first, ok)
	}
}

func TestBlocksInTransitEmpty(t *testing.T) {
	transit := NewBlocksInTransit()
	if _, ok := transit.First(); ok {
		t.Fatal("expected First() to report false on an empty tracker")
	}
}

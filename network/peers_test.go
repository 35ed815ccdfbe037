package network

import "testing"

func TestPeersEvictNodeAdvancesFirst(t *testing.T) {
	peers := NewPeers("127.0.0.1:2001")
	peers.AddNode("127.0.0.1:3001")
	peers.AddNode("127.0.0.1:4001")

	if got := peers.First(); got != "127.0.0.1:2001" {
		t.Fatalf("expected first peer 127.0.0.1:2001, got %q", got)
	}

	peers.EvictNode("127.0.0.1:2001")
	if got := peers.First(); got != "127.0.0.1:3001" {
		t.Fatalf("expected first peer 127.0.0.1:3001 after evict, got %q", got)
	}
}

func TestPeersNodeIsKnown(t *testing.T) {
	peers := NewPeers("127.0.0.1:2001")
	peers.AddNode("127.0.0.1:3001")

	if !peers.NodeIsKnown("127.0.0.1:2001") {
		t.Fatal("expected bootstrap peer to be known")
	}
	if !peers.NodeIsKnown("127.0.0.1:3001") {
		t.Fatal("expected added peer to be known")
	}
	if peers.NodeIsKnown("127.0.0.1:4001") {
		t.Fatal("expected unregistered peer to be unknown")
	}
}

func TestPeersAddNodeIdempotent(t *testing.T) {
	peers := NewPeers("127.0.0.1:2001")
	peers.AddNode("127.0.0.1:3001")
	peers.AddNode("127.0.0.1:3001")

	if len(peers.All()) != 2 {
		t.Fatalf("expected duplicate AddNode to be a no-op, got %d peers", len(peers.All()))
	}
}

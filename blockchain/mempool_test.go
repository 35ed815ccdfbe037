package blockchain

import (
	"encoding/hex"
	"testing"
)

func TestMempoolAddGetRemove(t *testing.T) {
	pool := NewMempool()
	tx := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	txidHex := hex.EncodeToString(tx.ID)

	if pool.Contains(txidHex) {
		t.Fatal("mempool should start empty")
	}

	pool.Add(tx)
	if !pool.Contains(txidHex) {
		t.Fatal("expected transaction to be present after Add")
	}

	got, ok := pool.Get(txidHex)
	if !ok || hex.EncodeToString(got.ID) != txidHex {
		t.Fatalf("Get returned %v, ok=%v", got, ok)
	}

	pool.Remove(txidHex)
	if pool.Contains(txidHex) {
		t.Fatal("expected transaction to be gone after Remove")
	}
}

func TestMempoolAllAndLen(t *testing.T) {
	pool := NewMempool()
	pool.Add(CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))
	pool.Add(CoinbaseTx("1BoatSLRHtKNngkdXEeobR76b53LETtpyT"))

	if pool.Len() != 2 {
		t.Fatalf("expected 2 transactions, got %d", pool.Len())
	}
	if len(pool.All()) != 2 {
		t.Fatalf("expected All() to return 2 transactions, got %d", len(pool.All()))
	}
}

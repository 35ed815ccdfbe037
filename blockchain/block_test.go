package blockchain

import (
	"bytes"
	"testing"
)

func TestGenesisBlock(t *testing.T) {
	coinbase := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	genesis := Genesis(coinbase)

	if genesis.Height != 0 {
		t.Fatalf("expected genesis height 0, got %d", genesis.Height)
	}
	if !bytes.Equal(genesis.PreBlockHash, genesisPreHash) {
		t.Fatalf("expected genesis pre-block hash %q, got %q", genesisPreHash, genesis.PreBlockHash)
	}
	if len(genesis.PreBlockHash) != 0 {
		t.Fatalf("genesis PreBlockHash must be length-0 so chain-walk termination checks fire, got %d bytes", len(genesis.PreBlockHash))
	}
	if len(genesis.Transactions) != 1 {
		t.Fatalf("expected exactly one coinbase transaction, got %d", len(genesis.Transactions))
	}
	if !NewProof(genesis).Validate() {
		t.Fatal("genesis block should satisfy its own proof of work")
	}
}

func TestFormatPreBlockHash(t *testing.T) {
	if got := FormatPreBlockHash(nil); got != "None" {
		t.Fatalf("expected None for a nil pre-block hash, got %q", got)
	}
	if got := FormatPreBlockHash([]byte{}); got != "None" {
		t.Fatalf("expected None for an empty pre-block hash, got %q", got)
	}
	if got := FormatPreBlockHash([]byte{0xab, 0xcd}); got != "abcd" {
		t.Fatalf("expected hex rendering for a real pre-block hash, got %q", got)
	}
}

func TestBlockSerializeRoundTrip(t *testing.T) {
	coinbase := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	block := NewBlock([]byte("previous-hash"), []*Transaction{coinbase}, 7)

	decoded := DeserializeBlock(block.Serialize())

	if !bytes.Equal(decoded.Hash, block.Hash) {
		t.Fatalf("hash mismatch after round trip: got %x, want %x", decoded.Hash, block.Hash)
	}
	if decoded.Height != block.Height {
		t.Fatalf("height mismatch after round trip: got %d, want %d", decoded.Height, block.Height)
	}
	if decoded.Nonce != block.Nonce {
		t.Fatalf("nonce mismatch after round trip: got %d, want %d", decoded.Nonce, block.Nonce)
	}
}

func TestHashTransactionsDeterministic(t *testing.T) {
	coinbase := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	block := &Block{Transactions: []*Transaction{coinbase}}

	h1 := block.HashTransactions()
	h2 := block.HashTransactions()
	if !bytes.Equal(h1, h2) {
		t.Fatal("HashTransactions should be deterministic for the same transaction set")
	}
}

package blockchain

import (
	"math/big"
	"testing"
)

func TestProofOfWorkRunProducesHashBelowTarget(t *testing.T) {
	coinbase := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	block := &Block{PreBlockHash: []byte("prev"), Transactions: []*Transaction{coinbase}, Timestamp: 1}

	pow := NewProof(block)
	nonce, hash := pow.Run()
	block.Nonce = nonce
	block.Hash = hash

	var intHash big.Int
	intHash.SetBytes(hash)
	if intHash.Cmp(pow.Target) != -1 {
		t.Fatal("mined hash is not below target")
	}
	if !pow.Validate() {
		t.Fatal("Validate should accept the hash Run just produced")
	}
}

func TestProofOfWorkValidateRejectsTamperedNonce(t *testing.T) {
	coinbase := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	block := &Block{PreBlockHash: []byte("prev"), Transactions: []*Transaction{coinbase}, Timestamp: 1}

	pow := NewProof(block)
	nonce, _ := pow.Run()
	block.Nonce = nonce

	block.Nonce++
	if pow.Validate() {
		t.Fatal("Validate should reject a nonce that was not actually mined")
	}
}

package blockchain

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"time"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
)

// genesisPreHash marks the genesis block's missing predecessor: the empty
// byte slice, so every chain-walk's `len(PreBlockHash) == 0` termination
// check fires on it. "None" is only ever produced by FormatPreBlockHash,
// for display and for the proof-of-work prepared data.
var genesisPreHash = []byte{}

// Block is an immutable record once mined.
type Block struct {
	Timestamp    int64 // milliseconds since epoch
	PreBlockHash []byte
	Hash         []byte
	Transactions []*Transaction
	Nonce        int64
	Height       int
}

// HashTransactions returns SHA-256 of the concatenation of every contained
// transaction's id, in order.
func (b *Block) HashTransactions() []byte {
	var txIDs [][]byte
	for _, tx := range b.Transactions {
		txIDs = append(txIDs, tx.ID)
	}
	hash := sha256.Sum256(bytes.Join(txIDs, []byte{}))
	return hash[:]
}

// NewBlock builds a candidate block at height and runs proof-of-work to fill
// its Nonce and Hash.
func NewBlock(preHash []byte, txs []*Transaction, height int) *Block {
	block := &Block{
		Timestamp:    time.Now().UnixMilli(),
		PreBlockHash: preHash,
		Transactions: txs,
		Height:       height,
	}

	pow := NewProof(block)
	nonce, hash := pow.Run()
	block.Hash = hash
	block.Nonce = nonce

	return block
}

// Genesis produces the height-0 block whose only transaction is coinbase.
func Genesis(coinbase *Transaction) *Block {
	return NewBlock(genesisPreHash, []*Transaction{coinbase}, 0)
}

// FormatPreBlockHash renders a block's PreBlockHash as text: "None" for
// the genesis sentinel, hex otherwise. It is used for display and for the
// pre_block_hash field of the proof-of-work prepared data. This is the one
// place the "None" string from the external hex representation
// (SPEC_FULL.md §3) is produced; internally PreBlockHash stays the empty slice so the
// length-0 termination check used throughout the chain walk keeps working.
func FormatPreBlockHash(preBlockHash []byte) string {
	if len(preBlockHash) == 0 {
		return "None"
	}
	return hex.EncodeToString(preBlockHash)
}

// Serialize gob-encodes the block for persistent storage.
func (b *Block) Serialize() []byte {
	var res bytes.Buffer
	encoder := gob.NewEncoder(&res)
	if err := encoder.Encode(b); err != nil {
		nodelog.Fatal("serialize block", "err", err)
	}
	return res.Bytes()
}

// DeserializeBlock decodes a block previously written by Serialize.
func DeserializeBlock(data []byte) *Block {
	var block Block
	decoder := gob.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&block); err != nil {
		nodelog.Fatal("deserialize block", "err", err)
	}
	return &block
}

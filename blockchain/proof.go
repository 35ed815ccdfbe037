package blockchain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/big"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
)

// TargetBits is the proof-of-work difficulty: the mined hash, read as a
// big-endian unsigned integer, must be strictly below 1<<(256-TargetBits).
const TargetBits = 20

// ProofOfWork mines or validates one Block against Target.
type ProofOfWork struct {
	Block  *Block
	Target *big.Int
}

// NewProof builds a ProofOfWork for b with the fixed-difficulty target.
func NewProof(b *Block) *ProofOfWork {
	target := big.NewInt(1)
	target.Lsh(target, uint(256-TargetBits))
	return &ProofOfWork{Block: b, Target: target}
}

// prepareData builds the exact byte sequence hashed for a trial nonce:
// pre_block_hash || transactions_hash || timestamp(8BE) || TargetBits(4BE) || nonce(8BE),
// where pre_block_hash is the text of FormatPreBlockHash ("None" for genesis,
// lowercase hex otherwise).
func (pow *ProofOfWork) prepareData(nonce int64) []byte {
	return bytes.Join(
		[][]byte{
			[]byte(FormatPreBlockHash(pow.Block.PreBlockHash)),
			pow.Block.HashTransactions(),
			int64ToBigEndianBytes(pow.Block.Timestamp),
			int32ToBigEndianBytes(TargetBits),
			int64ToBigEndianBytes(nonce),
		},
		[]byte{},
	)
}

// Run searches for the first nonce whose hash is strictly below Target.
func (pow *ProofOfWork) Run() (int64, []byte) {
	var intHash big.Int
	var hash [32]byte

	var nonce int64
	for nonce < math.MaxInt64 {
		data := pow.prepareData(nonce)
		hash = sha256.Sum256(data)

		intHash.SetBytes(hash[:])
		if intHash.Cmp(pow.Target) == -1 {
			break
		}
		nonce++
	}
	if nonce == math.MaxInt64 {
		nodelog.Fatal("nonce space exhausted without a hash below target")
	}

	nodelog.Debug("mined block", "nonce", nonce, "hash", hex.EncodeToString(hash[:]))

	return nonce, hash[:]
}

// Validate recomputes the hash at the block's stored nonce and checks it
// against Target; this is the cheap verification side of proof-of-work.
func (pow *ProofOfWork) Validate() bool {
	var intHash big.Int

	data := pow.prepareData(pow.Block.Nonce)
	hash := sha256.Sum256(data)
	intHash.SetBytes(hash[:])

	return intHash.Cmp(pow.Target) == -1
}

func int64ToBigEndianBytes(num int64) []byte {
	buffer := new(bytes.Buffer)
	if err := binary.Write(buffer, binary.BigEndian, num); err != nil {
		nodelog.Fatal("encode int64", "err", err)
	}
	return buffer.Bytes()
}

func int32ToBigEndianBytes(num int32) []byte {
	buffer := new(bytes.Buffer)
	if err := binary.Write(buffer, binary.BigEndian, num); err != nil {
		nodelog.Fatal("encode int32", "err", err)
	}
	return buffer.Bytes()
}

package blockchain

import (
	"bytes"
	"encoding/gob"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
	"github.com/petiibhuzah/golang-blockchain/wallet"
)

// TxOutput is value locked to a public-key hash: > 0 for a normal payment,
// equal to the subsidy for a coinbase output.
type TxOutput struct {
	Value      int
	PubKeyHash []byte
}

// Lock sets PubKeyHash from a base58 address, stripping the version byte
// and checksum.
func (out *TxOutput) Lock(address []byte) {
	pubKeyHash := wallet.Base58Decode(address)
	out.PubKeyHash = pubKeyHash[1 : len(pubKeyHash)-4]
}

// IsLockedWithKey reports whether out is spendable by the holder of pubKeyHash.
func (out *TxOutput) IsLockedWithKey(pubKeyHash []byte) bool {
	return bytes.Equal(out.PubKeyHash, pubKeyHash)
}

// NewTXOutput builds an output of value locked to address.
func NewTXOutput(value int, address string) *TxOutput {
	txo := &TxOutput{Value: value}
	txo.Lock([]byte(address))
	return txo
}

// TxOutputs is the serialized unit stored per transaction in the UTXO index:
// the full, ordered output list of one transaction.
type TxOutputs struct {
	Outputs []TxOutput
}

// Serialize gob-encodes outs for persistence in the UTXO index.
func (outs TxOutputs) Serialize() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(outs); err != nil {
		nodelog.Fatal("serialize tx outputs", "err", err)
	}
	return buf.Bytes()
}

// DeserializeOutputs decodes a value previously written by Serialize.
func DeserializeOutputs(data []byte) TxOutputs {
	var outputs TxOutputs
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&outputs); err != nil {
		nodelog.Fatal("deserialize tx outputs", "err", err)
	}
	return outputs
}

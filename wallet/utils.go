package wallet

import (
	"github.com/mr-tron/base58"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
)

// Base58Encode encodes input using the Bitcoin base58 alphabet.
func Base58Encode(input []byte) []byte {
	return []byte(base58.Encode(input))
}

// Base58Decode decodes a base58-encoded address back to its raw bytes.
func Base58Decode(input []byte) []byte {
	decode, err := base58.Decode(string(input))
	if err != nil {
		nodelog.Fatal("base58 decode", "err", err)
	}
	return decode
}

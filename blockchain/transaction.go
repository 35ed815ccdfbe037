package blockchain

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
	"github.com/petiibhuzah/golang-blockchain/internal/nodeerrors"
	"github.com/petiibhuzah/golang-blockchain/wallet"
)

// subsidy is the fixed coinbase reward paid to the miner of a block.
const subsidy = 10

// TxInput references one output of a previous transaction being spent.
type TxInput struct {
	ID        []byte // id of the transaction holding the referenced output
	Out       int    // index of the referenced output
	Signature []byte
	PubKey    []byte
}

// UsesKey reports whether the input was signed by the holder of pubKeyHash.
func (in *TxInput) UsesKey(pubKeyHash []byte) bool {
	lockingHash := wallet.PublicKeyHash(in.PubKey)
	return bytes.Equal(lockingHash, pubKeyHash)
}

// Transaction is a set of inputs spending existing outputs and a set of new
// outputs; its ID is the hash of its own content.
type Transaction struct {
	ID      []byte
	Inputs  []TxInput
	Outputs []TxOutput
}

// Hash returns the SHA-256 digest of tx with its ID field cleared, the value
// that both becomes the transaction ID and is what signatures are taken over.
func (tx *Transaction) Hash() []byte {
	txCopy := *tx
	txCopy.ID = []byte{}

	hash := sha256.Sum256(txCopy.Serialize())
	return hash[:]
}

// Serialize gob-encodes the transaction.
func (tx Transaction) Serialize() []byte {
	var encoded bytes.Buffer

	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(tx); err != nil {
		nodelog.Fatal("serialize transaction", "err", err)
	}

	return encoded.Bytes()
}

// DeserializeTransaction decodes a transaction previously written by Serialize.
func DeserializeTransaction(data []byte) *Transaction {
	var tx Transaction
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&tx); err != nil {
		nodelog.Fatal("deserialize transaction", "err", err)
	}
	return &tx
}

// SetID sets tx.ID to tx.Hash().
func (tx *Transaction) SetID() {
	tx.ID = tx.Hash()
}

// CoinbaseTx builds the reward transaction credited to a miner: one input
// with no referenced output and a unique per-block nonce in place of a
// signature, and one output paying the fixed subsidy to the given address.
func CoinbaseTx(to string) *Transaction {
	nonce := uuid.New()

	txIn := TxInput{ID: []byte{}, Out: -1, Signature: nonce[:], PubKey: nil}
	txOut := NewTXOutput(subsidy, to)

	tx := Transaction{ID: nil, Inputs: []TxInput{txIn}, Outputs: []TxOutput{*txOut}}
	tx.SetID()

	return &tx
}

// IsCoinbase reports whether tx is a coinbase transaction: exactly one
// input referencing no previous transaction.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 &&
		len(tx.Inputs[0].ID) == 0 &&
		tx.Inputs[0].Out == -1
}

// Sign fills in tx's signatures, one per input, over the trimmed-copy
// digest described for Verify. Coinbase transactions are never signed.
func (tx *Transaction) Sign(privateKey ecdsa.PrivateKey, prevTXs map[string]Transaction) error {
	if tx.IsCoinbase() {
		return nil
	}

	for _, in := range tx.Inputs {
		prevTxID := hex.EncodeToString(in.ID)
		if prevTXs[prevTxID].ID == nil {
			return nodeerrors.Wrap(nodeerrors.MissingReferencedTx, "sign transaction")
		}
	}

	txCopy := tx.TrimmedCopy()

	for inID, in := range txCopy.Inputs {
		prevTxID := hex.EncodeToString(in.ID)
		prevTX := prevTXs[prevTxID]

		txCopy.Inputs[inID].Signature = nil
		txCopy.Inputs[inID].PubKey = prevTX.Outputs[in.Out].PubKeyHash

		txCopy.ID = txCopy.Hash()
		txCopy.Inputs[inID].PubKey = nil

		r, s, err := ecdsa.Sign(rand.Reader, &privateKey, txCopy.ID)
		if err != nil {
			return nodeerrors.Wrap(nodeerrors.SerializationError, "ecdsa sign")
		}

		signature := make([]byte, 64)
		r.FillBytes(signature[:32])
		s.FillBytes(signature[32:])
		tx.Inputs[inID].Signature = signature
	}

	return nil
}

// Verify checks every input's signature against the output it claims to
// spend, recomputing the same trimmed-copy digest Sign signed over.
// Coinbase transactions are always valid.
func (tx *Transaction) Verify(prevTXs map[string]Transaction) bool {
	if tx.IsCoinbase() {
		return true
	}

	for _, in := range tx.Inputs {
		if prevTXs[hex.EncodeToString(in.ID)].ID == nil {
			return false
		}
	}

	txCopy := tx.TrimmedCopy()
	curve := elliptic.P256()

	for inId, in := range tx.Inputs {
		prevTx := prevTXs[hex.EncodeToString(in.ID)]

		txCopy.Inputs[inId].Signature = nil
		txCopy.Inputs[inId].PubKey = prevTx.Outputs[in.Out].PubKeyHash

		txCopy.ID = txCopy.Hash()
		txCopy.Inputs[inId].PubKey = nil

		r := big.Int{}
		s := big.Int{}
		sigLen := len(in.Signature)
		r.SetBytes(in.Signature[:(sigLen / 2)])
		s.SetBytes(in.Signature[(sigLen / 2):])

		x := big.Int{}
		y := big.Int{}
		keyLen := len(in.PubKey)
		x.SetBytes(in.PubKey[:(keyLen / 2)])
		y.SetBytes(in.PubKey[(keyLen / 2):])

		rawPubKey := ecdsa.PublicKey{Curve: curve, X: &x, Y: &y}

		if !ecdsa.Verify(&rawPubKey, txCopy.ID, &r, &s) {
			return false
		}
	}

	return true
}

// NewTransaction builds a signed transaction paying amount from the wallet
// at from to to, drawing on UTXO to select inputs and returning change.
func NewTransaction(from, to string, amount int, UTXO *UTXOSet, walletFile string) (*Transaction, error) {
	var inputs []TxInput
	var outputs []TxOutput

	wallets, err := wallet.CreateWallets(walletFile)
	if err != nil {
		return nil, nodeerrors.Wrap(nodeerrors.IoError, "load wallets")
	}

	w := wallets.GetWallet(from)
	if w.PublicKey == nil {
		return nil, nodeerrors.Wrapf(nodeerrors.UnknownAddress, "wallet not found for address %s", from)
	}

	pubKeyHash := wallet.PublicKeyHash(w.PublicKey)
	acc, validOutputs := UTXO.FindSpendableOutputs(pubKeyHash, amount)

	if acc < amount {
		return nil, nodeerrors.Wrap(nodeerrors.InsufficientFunds, "not enough funds")
	}

	for id, outs := range validOutputs {
		txID, err := hex.DecodeString(id)
		if err != nil {
			return nil, nodeerrors.Wrap(nodeerrors.SerializationError, "decode utxo txid")
		}

		for _, out := range outs {
			inputs = append(inputs, TxInput{
				ID:        txID,
				Out:       out,
				Signature: nil,
				PubKey:    w.PublicKey,
			})
		}
	}

	outputs = append(outputs, *NewTXOutput(amount, to))
	if acc > amount {
		outputs = append(outputs, *NewTXOutput(acc-amount, from))
	}

	tx := Transaction{ID: nil, Inputs: inputs, Outputs: outputs}
	tx.SetID()

	if err := UTXO.Blockchain.SignTransaction(&tx, w.PrivateKey); err != nil {
		return nil, err
	}

	return &tx, nil
}

// TrimmedCopy returns a copy of tx with every input's Signature and PubKey
// cleared — the representation Sign and Verify hash and sign over.
func (tx *Transaction) TrimmedCopy() Transaction {
	var inputs []TxInput
	var outputs []TxOutput

	for _, in := range tx.Inputs {
		inputs = append(inputs, TxInput{
			ID:        in.ID,
			Out:       in.Out,
			Signature: nil,
			PubKey:    nil,
		})
	}

	for _, out := range tx.Outputs {
		outputs = append(outputs, TxOutput{
			Value:      out.Value,
			PubKeyHash: out.PubKeyHash,
		})
	}

	return Transaction{ID: tx.ID, Inputs: inputs, Outputs: outputs}
}

// String returns a multi-line human-readable dump of tx, for logging.
func (tx Transaction) String() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("--- Transaction %x:", tx.ID))
	for i, in := range tx.Inputs {
		lines = append(lines, fmt.Sprintf("     Input %d:", i))
		lines = append(lines, fmt.Sprintf("       TXID:      %x", in.ID))
		lines = append(lines, fmt.Sprintf("       Out:       %d", in.Out))
		lines = append(lines, fmt.Sprintf("       Signature: %x", in.Signature))
		lines = append(lines, fmt.Sprintf("       PubKey:    %x", in.PubKey))
	}

	for i, out := range tx.Outputs {
		lines = append(lines, fmt.Sprintf("     Output %d:", i))
		lines = append(lines, fmt.Sprintf("       Value:      %d", out.Value))
		lines = append(lines, fmt.Sprintf("       PubKeyHash: %x", out.PubKeyHash))
	}

	return strings.Join(lines, "\n")
}

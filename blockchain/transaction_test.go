package blockchain

import (
	"encoding/hex"
	"testing"

	"github.com/petiibhuzah/golang-blockchain/wallet"
)

func TestCoinbaseTxIsCoinbase(t *testing.T) {
	tx := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")

	if !tx.IsCoinbase() {
		t.Fatal("CoinbaseTx output should report IsCoinbase() == true")
	}
	if len(tx.ID) == 0 {
		t.Fatal("expected SetID to populate tx.ID")
	}
	if len(tx.Outputs) != 1 || tx.Outputs[0].Value != subsidy {
		t.Fatalf("expected one output paying the subsidy, got %+v", tx.Outputs)
	}
}

func TestCoinbaseTxNoncesAreUnique(t *testing.T) {
	a := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	b := CoinbaseTx("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")

	if string(a.ID) == string(b.ID) {
		t.Fatal("two coinbase transactions to the same address should not collide on ID")
	}
}

func TestTransactionSignVerifyRoundTrip(t *testing.T) {
	senderWallet := wallet.MakeWallet()
	senderPubKeyHash := wallet.PublicKeyHash(senderWallet.PublicKey)

	prevTx := Transaction{
		ID:      []byte("prev-tx-id"),
		Inputs:  []TxInput{{ID: []byte{}, Out: -1}},
		Outputs: []TxOutput{{Value: 10, PubKeyHash: senderPubKeyHash}},
	}

	tx := Transaction{
		Inputs: []TxInput{{
			ID:     prevTx.ID,
			Out:    0,
			PubKey: senderWallet.PublicKey,
		}},
		Outputs: []TxOutput{*NewTXOutput(10, "1BoatSLRHtKNngkdXEeobR76b53LETtpyT")},
	}
	tx.SetID()

	prevTXs := map[string]Transaction{hex.EncodeToString(prevTx.ID): prevTx}

	if err := tx.Sign(senderWallet.PrivateKey, prevTXs); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !tx.Verify(prevTXs) {
		t.Fatal("expected Verify to accept a correctly signed transaction")
	}

	tx.Inputs[0].Signature[0] ^= 0xFF
	if tx.Verify(prevTXs) {
		t.Fatal("expected Verify to reject a tampered signature")
	}
}

func TestTrimmedCopyClearsSignatureAndPubKey(t *testing.T) {
	tx := Transaction{
		Inputs:  []TxInput{{ID: []byte("x"), Out: 0, Signature: []byte("sig"), PubKey: []byte("key")}},
		Outputs: []TxOutput{{Value: 1, PubKeyHash: []byte("hash")}},
	}

	trimmed := tx.TrimmedCopy()
	if trimmed.Inputs[0].Signature != nil || trimmed.Inputs[0].PubKey != nil {
		t.Fatal("TrimmedCopy should clear Signature and PubKey on every input")
	}
}

package wallet

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/gob"
	"math/big"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
)

const (
	checksumLength = 4
	version        = byte(0x00)
)

// Wallet holds an ECDSA key pair. PrivateKey is the opaque "pkcs8" private
// key material from the external contract; it round-trips through
// GobEncode/GobDecode without ever being interpreted outside this package.
type Wallet struct {
	PrivateKey ecdsa.PrivateKey
	PublicKey  []byte
}

// Address derives the base58 address: version || RIPEMD160(SHA256(pubkey)) || checksum.
func (w Wallet) Address() []byte {
	pubHash := PublicKeyHash(w.PublicKey)
	versionedHash := append([]byte{version}, pubHash...)
	checksum := Checksum(versionedHash)
	fullHash := append(versionedHash, checksum...)
	return Base58Encode(fullHash)
}

// ValidateAddress decodes address, recomputes the checksum and compares.
func ValidateAddress(address string) bool {
	pubKeyHash, err := base58.Decode(address)
	if err != nil || len(pubKeyHash) != 25 {
		return false
	}

	addressVersion := pubKeyHash[0]
	pubKeyHashContent := pubKeyHash[1:21]
	actualChecksum := pubKeyHash[21:]

	payload := append([]byte{addressVersion}, pubKeyHashContent...)
	targetChecksum := Checksum(payload)

	return bytes.Equal(actualChecksum, targetChecksum)
}

// NewKeyPair generates a fresh ECDSA key pair over P-256.
func NewKeyPair() (ecdsa.PrivateKey, []byte) {
	curve := elliptic.P256()

	private, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		nodelog.Fatal("generate key pair", "err", err)
	}

	publicKey := append(private.PublicKey.X.Bytes(), private.PublicKey.Y.Bytes()...)

	return *private, publicKey
}

// MakeWallet constructs a Wallet around a freshly generated key pair.
func MakeWallet() *Wallet {
	privateKey, publicKey := NewKeyPair()
	wallet := Wallet{privateKey, publicKey}
	return &wallet
}

// PublicKeyHash is RIPEMD160(SHA256(pubKey)), i.e. "hash160".
func PublicKeyHash(pubKey []byte) []byte {
	pubHash := sha256.Sum256(pubKey)

	hasher := ripemd160.New()
	if _, err := hasher.Write(pubHash[:]); err != nil {
		nodelog.Fatal("ripemd160 write", "err", err)
	}

	return hasher.Sum(nil)
}

// Checksum is the first checksumLength bytes of double SHA256(payload).
func Checksum(payload []byte) []byte {
	firstHash := sha256.Sum256(payload)
	secondHash := sha256.Sum256(firstHash[:])
	return secondHash[:checksumLength]
}

// GobEncode serializes only the private scalar D; the curve is fixed to
// P256, so the public point is reconstructed from D on decode.
func (w *Wallet) GobEncode() ([]byte, error) {
	data := struct {
		D []byte
	}{
		D: w.PrivateKey.D.Bytes(),
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(&data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores the wallet by reconstructing the public point from D.
func (w *Wallet) GobDecode(b []byte) error {
	var data struct {
		D []byte
	}

	dec := gob.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&data); err != nil {
		return err
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(data.D)
	x, y := curve.ScalarBaseMult(data.D)

	w.PrivateKey = ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}
	w.PublicKey = append(x.Bytes(), y.Bytes()...)

	return nil
}

package wallet

import (
	"bytes"
	"encoding/gob"
	"os"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
)

// DefaultFile is the fixed relative path the external contract specifies
// for the wallet collection.
const DefaultFile = "wallet.dat"

// Wallets is a collection of wallets keyed by base58 address.
type Wallets struct {
	Wallets map[string]*Wallet
}

// CreateWallets loads the wallet collection at path, or returns an empty one
// if the file does not yet exist.
func CreateWallets(path string) (*Wallets, error) {
	wallets := Wallets{Wallets: make(map[string]*Wallet)}
	err := wallets.LoadFile(path)
	return &wallets, err
}

// AddWallet generates a fresh wallet, stores it under its derived address,
// persists the collection to path, and returns the new address.
func (ws *Wallets) AddWallet(path string) string {
	wallet := MakeWallet()
	address := string(wallet.Address())

	ws.Wallets[address] = wallet
	ws.SaveFile(path)

	return address
}

// GetAllAddresses returns every address currently held.
func (ws *Wallets) GetAllAddresses() []string {
	addresses := make([]string, 0, len(ws.Wallets))
	for address := range ws.Wallets {
		addresses = append(addresses, address)
	}
	return addresses
}

// GetWallet looks up a wallet by address. The zero Wallet is returned if
// address is unknown; callers that need to distinguish "not found" should
// check GetAllAddresses or the Wallets map directly.
func (ws *Wallets) GetWallet(address string) Wallet {
	w := ws.Wallets[address]
	if w == nil {
		return Wallet{}
	}
	return *w
}

// LoadFile reads and decodes the wallet collection at path. A missing file
// is tolerated and treated as an empty collection.
func (ws *Wallets) LoadFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	fileContent, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var loaded Wallets
	decoder := gob.NewDecoder(bytes.NewReader(fileContent))
	if err := decoder.Decode(&loaded); err != nil {
		return err
	}

	ws.Wallets = loaded.Wallets
	return nil
}

// SaveFile encodes and writes the wallet collection to path.
func (ws *Wallets) SaveFile(path string) {
	var content bytes.Buffer

	encoder := gob.NewEncoder(&content)
	if err := encoder.Encode(ws); err != nil {
		nodelog.Fatal("encode wallets", "err", err)
	}

	if err := os.WriteFile(path, content.Bytes(), 0644); err != nil {
		nodelog.Fatal("write wallet file", "path", path, "err", err)
	}
}

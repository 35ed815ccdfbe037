package blockchain

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
	"github.com/petiibhuzah/golang-blockchain/internal/nodeerrors"
)

// tipKey is the fixed key under which the current chain tip's hash lives.
var tipKey = []byte("tip_block_hash")

// Blockchain is a hash-linked sequence of blocks persisted in a badger
// store, tracked by the hash of its current tip.
type Blockchain struct {
	LastHash []byte
	Database *badger.DB
}

// DBExists reports whether a badger store already lives at path.
func DBExists(path string) bool {
	if _, err := os.Stat(path + "/MANIFEST"); os.IsNotExist(err) {
		return false
	}
	return true
}

// InitBlockChain creates a fresh chain at path, mining a genesis block
// whose coinbase reward is paid to address. If a chain already exists at
// path, it is loaded instead of recreated.
func InitBlockChain(address, path string) (*Blockchain, error) {
	if DBExists(path) {
		return ContinueBlockChain(path)
	}

	var lastHash []byte

	opts := badger.DefaultOptions(path).WithLogger(nil)
	opts.Dir = path
	opts.ValueDir = path

	db, err := openDB(path, opts)
	if err != nil {
		return nil, nodeerrors.Wrap(nodeerrors.IoError, "open chain database")
	}

	err = db.Update(func(txn *badger.Txn) error {
		cbTXN := CoinbaseTx(address)
		genesis := Genesis(cbTXN)
		nodelog.Info("genesis block mined", "hash", hex.EncodeToString(genesis.Hash))

		if err := txn.Set(genesis.Hash, genesis.Serialize()); err != nil {
			return err
		}
		if err := txn.Set(tipKey, genesis.Hash); err != nil {
			return err
		}
		lastHash = genesis.Hash
		return nil
	})
	if err != nil {
		return nil, nodeerrors.Wrap(nodeerrors.IoError, "write genesis block")
	}

	return &Blockchain{LastHash: lastHash, Database: db}, nil
}

// ContinueBlockChain opens the chain already stored at path. It returns a
// NoChain error if no chain exists there.
func ContinueBlockChain(path string) (*Blockchain, error) {
	if !DBExists(path) {
		return nil, nodeerrors.Wrap(nodeerrors.NoChain, path)
	}

	var lastHash []byte
	opts := badger.DefaultOptions(path).WithLogger(nil)
	opts.Dir = path
	opts.ValueDir = path

	db, err := openDB(path, opts)
	if err != nil {
		return nil, nodeerrors.Wrap(nodeerrors.IoError, "open chain database")
	}

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tipKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			lastHash = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, nodeerrors.Wrap(nodeerrors.IoError, "read chain tip")
	}

	return &Blockchain{LastHash: lastHash, Database: db}, nil
}

// GetBestHeight returns the height of the current chain tip.
func (chain *Blockchain) GetBestHeight() int {
	var lastBlock Block

	err := chain.Database.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tipKey)
		if err != nil {
			return err
		}
		lastHash, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get(lastHash)
		if err != nil {
			return err
		}
		lastBlockData, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		lastBlock = *DeserializeBlock(lastBlockData)
		return nil
	})
	if err != nil {
		nodelog.Fatal("read chain tip height", "err", err)
	}

	return lastBlock.Height
}

// GetBlock looks up a block by hash.
func (chain *Blockchain) GetBlock(blockHash []byte) (Block, error) {
	var block Block

	err := chain.Database.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockHash)
		if err != nil {
			return errors.New("block not found")
		}
		blockData, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		block = *DeserializeBlock(blockData)
		return nil
	})

	if err != nil {
		return block, err
	}
	return block, nil
}

// GetBlockHashes returns every block hash from the tip back to genesis,
// newest first.
func (chain *Blockchain) GetBlockHashes() [][]byte {
	var blocks [][]byte

	iter := chain.Iterator()
	for {
		block := iter.Next()
		if block == nil {
			break
		}
		blocks = append(blocks, block.Hash)

		if len(block.PreBlockHash) == 0 {
			break
		}
	}

	return blocks
}

// MineBlock validates transactions, mines a new block on top of the
// current tip, and persists it as the new tip. An invalid transaction is
// a fatal error. The mempool admits transactions unverified, so the
// network miner filters them through VerifyTransaction before calling this.
func (chain *Blockchain) MineBlock(transactions []*Transaction) *Block {
	var lastHash []byte
	var lastHeight int

	for _, tx := range transactions {
		if !chain.VerifyTransaction(tx) {
			nodelog.Fatal("refusing to mine invalid transaction", "txid", hex.EncodeToString(tx.ID))
		}
	}

	err := chain.Database.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tipKey)
		if err != nil {
			return err
		}
		lastHash, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get(lastHash)
		if err != nil {
			return err
		}
		lastBlockData, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		lastBlock := DeserializeBlock(lastBlockData)
		lastHeight = lastBlock.Height
		return nil
	})
	if err != nil {
		nodelog.Fatal("read chain tip for mining", "err", err)
	}

	newBlock := NewBlock(lastHash, transactions, lastHeight+1)

	err = chain.Database.Update(func(txn *badger.Txn) error {
		if err := txn.Set(newBlock.Hash, newBlock.Serialize()); err != nil {
			return err
		}
		if err := txn.Set(tipKey, newBlock.Hash); err != nil {
			return err
		}
		chain.LastHash = newBlock.Hash
		return nil
	})
	if err != nil {
		nodelog.Fatal("persist mined block", "err", err)
	}

	return newBlock
}

// AddBlock stores a block received from a peer. The chain tip only
// advances if the new block's height exceeds the current tip's: this is
// the longest-height-wins rule, applied without any fork resolution.
func (chain *Blockchain) AddBlock(block *Block) error {
	return chain.Database.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(block.Hash); err == nil {
			return nil
		}

		blockData := block.Serialize()
		if err := txn.Set(block.Hash, blockData); err != nil {
			return err
		}

		item, err := txn.Get(tipKey)
		if err != nil {
			return err
		}
		lastHash, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get(lastHash)
		if err != nil {
			return err
		}
		lastBlockData, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		lastBlock := DeserializeBlock(lastBlockData)

		if lastBlock.Height < block.Height {
			if err := txn.Set(tipKey, block.Hash); err != nil {
				return err
			}
			chain.LastHash = block.Hash
		}

		return nil
	})
}

// FindUTXO scans the full chain, newest block first, and returns every
// output not referenced by a later input: the full unspent set.
func (chain *Blockchain) FindUTXO() map[string]TxOutputs {
	UTXO := make(map[string]TxOutputs)
	spentTXOs := make(map[string][]int)

	iter := chain.Iterator()

	for {
		block := iter.Next()
		if block == nil {
			break
		}

		for _, tx := range block.Transactions {
			txID := hex.EncodeToString(tx.ID)

		Outputs:
			for outIdx, out := range tx.Outputs {
				if spentTXOs[txID] != nil {
					for _, spentOut := range spentTXOs[txID] {
						if spentOut == outIdx {
							continue Outputs
						}
					}
				}

				outs := UTXO[txID]
				outs.Outputs = append(outs.Outputs, out)
				UTXO[txID] = outs
			}

			if !tx.IsCoinbase() {
				for _, in := range tx.Inputs {
					inTxID := hex.EncodeToString(in.ID)
					spentTXOs[inTxID] = append(spentTXOs[inTxID], in.Out)
				}
			}
		}

		if len(block.PreBlockHash) == 0 {
			break
		}
	}

	return UTXO
}

// FindTransaction scans the chain, newest block first, for a transaction
// with the given id.
func (chain *Blockchain) FindTransaction(ID []byte) (Transaction, error) {
	iter := chain.Iterator()

	for {
		block := iter.Next()
		if block == nil {
			break
		}

		for _, tx := range block.Transactions {
			if bytes.Equal(tx.ID, ID) {
				return *tx, nil
			}
		}

		if len(block.PreBlockHash) == 0 {
			break
		}
	}

	return Transaction{}, nodeerrors.Wrapf(nodeerrors.MissingReferencedTx, "transaction %x does not exist", ID)
}

// SignTransaction resolves every input's referenced transaction and signs
// tx against them.
func (chain *Blockchain) SignTransaction(tx *Transaction, privateKey ecdsa.PrivateKey) error {
	prevTXs := make(map[string]Transaction)

	for _, in := range tx.Inputs {
		prevTX, err := chain.FindTransaction(in.ID)
		if err != nil {
			return err
		}
		prevTXs[hex.EncodeToString(in.ID)] = prevTX
	}

	return tx.Sign(privateKey, prevTXs)
}

// VerifyTransaction resolves every input's referenced transaction and
// verifies tx's signatures against them.
func (chain *Blockchain) VerifyTransaction(tx *Transaction) bool {
	if tx.IsCoinbase() {
		return true
	}

	prevTXs := make(map[string]Transaction)

	for _, in := range tx.Inputs {
		prevTX, err := chain.FindTransaction(in.ID)
		if err != nil {
			return false
		}
		prevTXs[hex.EncodeToString(in.ID)] = prevTX
	}

	return tx.Verify(prevTXs)
}

// retry recovers from a stale badger LOCK file left by an unclean shutdown.
func retry(dir string, originalOpts badger.Options) (*badger.DB, error) {
	lockPath := filepath.Join(dir, "LOCK")
	if err := os.Remove(lockPath); err != nil {
		return nil, errors.New("failed to remove lock file: " + err.Error())
	}
	return badger.Open(originalOpts)
}

func openDB(dir string, opts badger.Options) (*badger.DB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "LOCK") {
			if db, err = retry(dir, opts); err == nil {
				nodelog.Info("recovered stale database lock", "dir", dir)
				return db, nil
			}
			nodelog.Error("could not unlock database", "dir", dir, "err", err)
		}
		return nil, err
	}
	return db, nil
}

package blockchain

import (
	"bytes"
	"encoding/hex"

	"github.com/dgraph-io/badger/v4"

	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
)

// utxoPrefix namespaces the UTXO index's keys within the shared block store.
var utxoPrefix = []byte("utxo-")

// UTXOSet is a derived index over Blockchain: for each transaction id, the
// outputs of that transaction not yet spent by any later transaction.
type UTXOSet struct {
	Blockchain *Blockchain
}

// FindSpendableOutputs selects enough unspent outputs locked to pubkeyHash
// to cover amount, returning the total found and which outputs to spend.
func (u UTXOSet) FindSpendableOutputs(pubkeyHash []byte, amount int) (int, map[string][]int) {
	unspentOuts := make(map[string][]int)
	accumulated := 0

	db := u.Blockchain.Database

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(utxoPrefix); it.ValidForPrefix(utxoPrefix); it.Next() {
			item := it.Item()
			k := item.Key()

			outs := TxOutputs{}
			err := item.Value(func(val []byte) error {
				outs = DeserializeOutputs(val)
				return nil
			})
			if err != nil {
				return err
			}

			k = bytes.TrimPrefix(k, utxoPrefix)
			txID := hex.EncodeToString(k)

			for outIdx, out := range outs.Outputs {
				if out.IsLockedWithKey(pubkeyHash) && accumulated < amount {
					accumulated += out.Value
					unspentOuts[txID] = append(unspentOuts[txID], outIdx)
				}
			}
		}
		return nil
	})
	if err != nil {
		nodelog.Fatal("scan utxo set", "err", err)
	}

	return accumulated, unspentOuts
}

// FindUnspentTransactions returns every unspent output locked to pubkeyHash.
func (u UTXOSet) FindUnspentTransactions(pubkeyHash []byte) []TxOutput {
	var UTXOs []TxOutput

	db := u.Blockchain.Database

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(utxoPrefix); it.ValidForPrefix(utxoPrefix); it.Next() {
			item := it.Item()
			outs := TxOutputs{}

			err := item.Value(func(val []byte) error {
				outs = DeserializeOutputs(val)
				return nil
			})
			if err != nil {
				return err
			}

			for _, out := range outs.Outputs {
				if out.IsLockedWithKey(pubkeyHash) {
					UTXOs = append(UTXOs, out)
				}
			}
		}
		return nil
	})
	if err != nil {
		nodelog.Fatal("scan utxo set", "err", err)
	}

	return UTXOs
}

// CountTransactions returns the number of distinct transactions with an
// entry in the UTXO index.
func (u UTXOSet) CountTransactions() int {
	db := u.Blockchain.Database
	counter := 0

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(utxoPrefix); it.ValidForPrefix(utxoPrefix); it.Next() {
			counter++
		}
		return nil
	})
	if err != nil {
		nodelog.Fatal("count utxo set", "err", err)
	}

	return counter
}

// Reindex rebuilds the UTXO index from a full scan of the chain. It is
// idempotent: running it twice in a row leaves the same index.
func (u UTXOSet) Reindex() {
	db := u.Blockchain.Database

	u.DeleteByPrefix(utxoPrefix)

	UTXO := u.Blockchain.FindUTXO()

	err := db.Update(func(txn *badger.Txn) error {
		for txId, outs := range UTXO {
			key, err := hex.DecodeString(txId)
			if err != nil {
				return err
			}

			key = append(utxoPrefix, key...)

			if err := txn.Set(key, outs.Serialize()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		nodelog.Fatal("reindex utxo set", "err", err)
	}
}

// Update incrementally advances the UTXO index for one newly added block:
// inputs spent by the block's transactions remove the outputs they
// reference, and every transaction's outputs are indexed as unspent.
func (u *UTXOSet) Update(block *Block) {
	db := u.Blockchain.Database

	err := db.Update(func(txn *badger.Txn) error {
		for _, tx := range block.Transactions {
			if !tx.IsCoinbase() {
				for _, in := range tx.Inputs {
					updateOuts := TxOutputs{}

					inID := append(utxoPrefix, in.ID...)

					item, err := txn.Get(inID)
					if err != nil {
						return err
					}

					outs := TxOutputs{}
					err = item.Value(func(val []byte) error {
						outs = DeserializeOutputs(val)
						return nil
					})
					if err != nil {
						return err
					}

					for outIdx, out := range outs.Outputs {
						if outIdx != in.Out {
							updateOuts.Outputs = append(updateOuts.Outputs, out)
						}
					}

					if len(updateOuts.Outputs) == 0 {
						if err := txn.Delete(inID); err != nil {
							return err
						}
					} else {
						if err := txn.Set(inID, updateOuts.Serialize()); err != nil {
							return err
						}
					}
				}
			}

			newOutputs := TxOutputs{}
			newOutputs.Outputs = append(newOutputs.Outputs, tx.Outputs...)

			txID := append(utxoPrefix, tx.ID...)
			if err := txn.Set(txID, newOutputs.Serialize()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		nodelog.Fatal("update utxo set", "err", err)
	}
}

// DeleteByPrefix removes every key under prefix, in batches, so a full
// reindex doesn't hold one unbounded transaction open.
func (u *UTXOSet) DeleteByPrefix(prefix []byte) {
	deleteKeys := func(keysForDelete [][]byte) error {
		return u.Blockchain.Database.Update(func(txn *badger.Txn) error {
			for _, key := range keysForDelete {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
			return nil
		})
	}

	collectSize := 100000

	err := u.Blockchain.Database.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		keysForDelete := make([][]byte, 0, collectSize)
		keysCollected := 0

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			keysForDelete = append(keysForDelete, key)
			keysCollected++

			if keysCollected == collectSize {
				if err := deleteKeys(keysForDelete); err != nil {
					return err
				}
				keysForDelete = make([][]byte, 0, collectSize)
				keysCollected = 0
			}
		}

		if keysCollected > 0 {
			if err := deleteKeys(keysForDelete); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		nodelog.Fatal("delete utxo prefix", "err", err)
	}
}

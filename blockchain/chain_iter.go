package blockchain

import "github.com/dgraph-io/badger/v4"

// Iterator walks a Blockchain backward from its tip to genesis.
type Iterator struct {
	CurrentHash []byte
	Database    *badger.DB
}

// Iterator returns an Iterator positioned at chain's current tip.
func (chain *Blockchain) Iterator() *Iterator {
	return &Iterator{CurrentHash: chain.LastHash, Database: chain.Database}
}

// Next returns the block at the iterator's current position and steps it
// back to that block's predecessor. A store read miss ends the iteration:
// it returns nil rather than treating a missing key as fatal, since the
// normal termination condition (walking past genesis) is itself a miss
// once callers stop relying on PreBlockHash alone.
func (iter *Iterator) Next() *Block {
	var block *Block

	err := iter.Database.View(func(txn *badger.Txn) error {
		item, err := txn.Get(iter.CurrentHash)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			block = DeserializeBlock(val)
			return nil
		})
	})
	if err != nil {
		return nil
	}

	iter.CurrentHash = block.PreBlockHash
	return block
}

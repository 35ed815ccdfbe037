package blockchain

import (
	"bytes"
	"sync"
)

// BlocksInTransit tracks block hashes announced by a peer's inventory that
// have not yet been requested, in announcement order; a sync requests them
// one at a time from the announcing peer.
type BlocksInTransit struct {
	mu     sync.RWMutex
	hashes [][]byte
}

// NewBlocksInTransit returns an empty tracker.
func NewBlocksInTransit() *BlocksInTransit {
	return &BlocksInTransit{}
}

// AddBlocks appends hashes to the tracked set.
func (b *BlocksInTransit) AddBlocks(hashes [][]byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hashes = append(b.hashes, hashes...)
}

// First returns the first tracked hash, if any.
func (b *BlocksInTransit) First() ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.hashes) == 0 {
		return nil, false
	}
	return b.hashes[0], true
}

// Remove drops hash from the tracked set once its block has been received.
func (b *BlocksInTransit) Remove(hash []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, h := range b.hashes {
		if bytes.Equal(h, hash) {
			b.hashes = append(b.hashes[:i], b.hashes[i+1:]...)
			return
		}
	}
}

// Len returns the number of tracked hashes.
func (b *BlocksInTransit) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.hashes)
}

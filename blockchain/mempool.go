package blockchain

import (
	"encoding/hex"
	"sync"
)

// Mempool holds transactions received from peers that have not yet been
// mined into a block, keyed by hex-encoded transaction id.
type Mempool struct {
	mu  sync.RWMutex
	txs map[string]*Transaction
}

// NewMempool returns an empty Mempool.
func NewMempool() *Mempool {
	return &Mempool{txs: make(map[string]*Transaction)}
}

// Contains reports whether txidHex is already held.
func (p *Mempool) Contains(txidHex string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.txs[txidHex]
	return ok
}

// Add inserts tx, keyed by its own id.
func (p *Mempool) Add(tx *Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs[hex.EncodeToString(tx.ID)] = tx
}

// Get returns the transaction stored under txidHex, if any.
func (p *Mempool) Get(txidHex string) (*Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tx, ok := p.txs[txidHex]
	return tx, ok
}

// Remove evicts txidHex, e.g. once it has been mined into a block.
func (p *Mempool) Remove(txidHex string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.txs, txidHex)
}

// All returns every held transaction, in no particular order.
func (p *Mempool) All() []*Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	txs := make([]*Transaction, 0, len(p.txs))
	for _, tx := range p.txs {
		txs = append(txs, tx)
	}
	return txs
}

// Len returns the number of held transactions.
func (p *Mempool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}

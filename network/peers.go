package network

import "sync"

// Peers is the process-wide registry of known node addresses, the
// bootstrap entry being the center node itself.
type Peers struct {
	mu    sync.RWMutex
	nodes []string
}

// NewPeers returns a registry seeded with bootstrap.
func NewPeers(bootstrap string) *Peers {
	return &Peers{nodes: []string{bootstrap}}
}

// AddNode records addr if it is not already known.
func (p *Peers) AddNode(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range p.nodes {
		if n == addr {
			return
		}
	}
	p.nodes = append(p.nodes, addr)
}

// EvictNode removes addr from the registry, e.g. after a failed send.
func (p *Peers) EvictNode(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, n := range p.nodes {
		if n == addr {
			p.nodes = append(p.nodes[:i], p.nodes[i+1:]...)
			return
		}
	}
}

// First returns the bootstrap peer.
func (p *Peers) First() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.nodes) == 0 {
		return ""
	}
	return p.nodes[0]
}

// NodeIsKnown reports whether addr is already registered.
func (p *Peers) NodeIsKnown(addr string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, n := range p.nodes {
		if n == addr {
			return true
		}
	}
	return false
}

// All returns a snapshot of every known peer address.
func (p *Peers) All() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	nodes := make([]string, len(p.nodes))
	copy(nodes, p.nodes)
	return nodes
}

package network

import (
	"encoding/json"
	"net"
	"time"

	"github.com/petiibhuzah/golang-blockchain/blockchain"
	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
	"github.com/petiibhuzah/golang-blockchain/internal/nodeerrors"
)

const (
	protocolName = "tcp"

	// ProtocolVersion is exchanged in every Version handshake.
	ProtocolVersion = 1

	// TransactionThreshold is the mempool size at which a miner node
	// stops accumulating transactions and mines a block.
	TransactionThreshold = 2

	writeTimeout = 1000 * time.Millisecond
)

// Item kinds carried by Inv and GetData messages.
const (
	ItemBlock = "block"
	ItemTx    = "tx"
)

// message is the single wire envelope every connection exchanges: one
// self-delimiting JSON value per message, discriminated by Type.
type message struct {
	Type       string   `json:"type"`
	AddrFrom   string   `json:"addr_from"`
	Version    int      `json:"version,omitempty"`
	BestHeight int      `json:"best_height,omitempty"`
	ItemType   string   `json:"item_type,omitempty"`
	Items      [][]byte `json:"items,omitempty"`
	ID         []byte   `json:"id,omitempty"`
	Block      []byte   `json:"block,omitempty"`
	Tx         []byte   `json:"tx,omitempty"`
}

const (
	msgVersion   = "version"
	msgGetBlocks = "getblocks"
	msgInv       = "inv"
	msgGetData   = "getdata"
	msgBlock     = "block"
	msgTx        = "tx"
)

// send dials addr, writes msg as a single JSON value under a write
// deadline, and closes the connection. A dial failure evicts addr from
// peers and the message is dropped silently: no retry.
func (n *Node) send(addr string, msg message) {
	conn, err := net.Dial(protocolName, addr)
	if err != nil {
		nodelog.Warn("peer unreachable", "addr", addr, "err", err)
		n.Peers.EvictNode(addr)
		return
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		nodelog.Warn("set write deadline", "addr", addr, "err", err)
		return
	}

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		nodelog.Warn("send message", "addr", addr, "type", msg.Type, "err", err)
	}
}

func (n *Node) sendVersion(addr string) {
	n.send(addr, message{
		Type:       msgVersion,
		AddrFrom:   n.Address,
		Version:    ProtocolVersion,
		BestHeight: n.Chain.GetBestHeight(),
	})
}

func (n *Node) sendGetBlocks(addr string) {
	n.send(addr, message{Type: msgGetBlocks, AddrFrom: n.Address})
}

func (n *Node) sendInv(addr, itemType string, items [][]byte) {
	n.send(addr, message{Type: msgInv, AddrFrom: n.Address, ItemType: itemType, Items: items})
}

func (n *Node) sendGetData(addr, itemType string, id []byte) {
	n.send(addr, message{Type: msgGetData, AddrFrom: n.Address, ItemType: itemType, ID: id})
}

func (n *Node) sendBlock(addr string, blockBytes []byte) {
	n.send(addr, message{Type: msgBlock, AddrFrom: n.Address, Block: blockBytes})
}

func (n *Node) sendTx(addr string, txBytes []byte) {
	n.send(addr, message{Type: msgTx, AddrFrom: n.Address, Tx: txBytes})
}

// dialAndSend is the Node-independent half of send, used by standalone
// helpers like SendTx that the CLI calls outside of a running node.
func dialAndSend(addr string, msg message) {
	conn, err := net.Dial(protocolName, addr)
	if err != nil {
		nodelog.Warn("peer unreachable", "addr", addr, "err", err)
		return
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		nodelog.Warn("set write deadline", "addr", addr, "err", err)
		return
	}

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		nodelog.Warn("send message", "addr", addr, "type", msg.Type, "err", err)
	}
}

// SendTx broadcasts tx to addr. It is the entry point the CLI uses to hand
// a freshly built transaction to the network without running a node.
func SendTx(addr string, tx *blockchain.Transaction) {
	dialAndSend(addr, message{Type: msgTx, Tx: tx.Serialize()})
}

// handle dispatches one decoded message to its handler.
func (n *Node) handle(msg message) error {
	switch msg.Type {
	case msgVersion:
		return n.handleVersion(msg)
	case msgGetBlocks:
		return n.handleGetBlocks(msg)
	case msgInv:
		return n.handleInv(msg)
	case msgGetData:
		return n.handleGetData(msg)
	case msgBlock:
		return n.handleBlock(msg)
	case msgTx:
		return n.handleTx(msg)
	default:
		return nodeerrors.Wrapf(nodeerrors.SerializationError, "unknown message type %q", msg.Type)
	}
}

package network

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/vrecan/death/v3"

	"github.com/petiibhuzah/golang-blockchain/blockchain"
	"github.com/petiibhuzah/golang-blockchain/internal/config"
	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
)

// Node is a running instance of this protocol: a chain, its UTXO index,
// the in-flight mempool and block-transit tracker, and the peer registry
// all the per-connection workers share.
type Node struct {
	Config  *config.Config
	Address string

	Chain   *blockchain.Blockchain
	UTXO    blockchain.UTXOSet
	Pool    *blockchain.Mempool
	Transit *blockchain.BlocksInTransit
	Peers   *Peers
}

// StartServer brings up the P2P listener for cfg, syncing with the
// network and blocking forever accepting connections.
func StartServer(cfg *config.Config) error {
	chain, err := blockchain.ContinueBlockChain(cfg.StoragePath())
	if err != nil {
		return err
	}

	node := &Node{
		Config:  cfg,
		Address: cfg.NodeAddress,
		Chain:   chain,
		UTXO:    blockchain.UTXOSet{Blockchain: chain},
		Pool:    blockchain.NewMempool(),
		Transit: blockchain.NewBlocksInTransit(),
		Peers:   NewPeers(config.CenterNodeAddress),
	}

	ln, err := net.Listen(protocolName, node.Address)
	if err != nil {
		return err
	}
	defer ln.Close()
	defer chain.Database.Close()

	d := death.NewDeath(syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	go d.WaitForDeathWithFunc(func() {
		nodelog.Info("shutting down, closing chain database")
		chain.Database.Close()
		os.Exit(0)
	})

	if !cfg.IsCenter() {
		node.sendVersion(node.Peers.First())
	}

	nodelog.Info("node listening", "addr", node.Address, "miner", cfg.IsMiner())

	for {
		conn, err := ln.Accept()
		if err != nil {
			nodelog.Error("accept connection", "err", err)
			continue
		}
		go node.handleConnection(conn)
	}
}

// handleConnection decodes the stream of self-delimiting JSON messages
// carried by conn and dispatches each in turn, closing the stream on EOF
// or after the first malformed message.
func (n *Node) handleConnection(conn net.Conn) {
	defer conn.Close()

	dec := json.NewDecoder(conn)
	for {
		var msg message
		if err := dec.Decode(&msg); err != nil {
			if err != io.EOF {
				nodelog.Warn("malformed message, closing connection", "err", err)
			}
			return
		}

		if err := n.handle(msg); err != nil {
			nodelog.Warn("handle message", "type", msg.Type, "err", err)
		}
	}
}

func (n *Node) handleVersion(msg message) error {
	bestHeight := n.Chain.GetBestHeight()

	if bestHeight < msg.BestHeight {
		n.sendGetBlocks(msg.AddrFrom)
	} else if bestHeight > msg.BestHeight {
		n.sendVersion(msg.AddrFrom)
	}

	if !n.Peers.NodeIsKnown(msg.AddrFrom) {
		n.Peers.AddNode(msg.AddrFrom)
	}
	return nil
}

func (n *Node) handleGetBlocks(msg message) error {
	hashes := n.Chain.GetBlockHashes()
	n.sendInv(msg.AddrFrom, ItemBlock, hashes)
	return nil
}

func (n *Node) handleInv(msg message) error {
	if len(msg.Items) == 0 {
		return nil
	}

	switch msg.ItemType {
	case ItemBlock:
		n.Transit.AddBlocks(msg.Items)
		first := msg.Items[0]
		n.sendGetData(msg.AddrFrom, ItemBlock, first)
		n.Transit.Remove(first)

	case ItemTx:
		txID := msg.Items[0]
		if !n.Pool.Contains(hex.EncodeToString(txID)) {
			n.sendGetData(msg.AddrFrom, ItemTx, txID)
		}
	}
	return nil
}

func (n *Node) handleGetData(msg message) error {
	switch msg.ItemType {
	case ItemBlock:
		block, err := n.Chain.GetBlock(msg.ID)
		if err != nil {
			return nil
		}
		n.sendBlock(msg.AddrFrom, block.Serialize())

	case ItemTx:
		tx, ok := n.Pool.Get(hex.EncodeToString(msg.ID))
		if ok {
			n.sendTx(msg.AddrFrom, tx.Serialize())
		}
	}
	return nil
}

func (n *Node) handleBlock(msg message) error {
	block := blockchain.DeserializeBlock(msg.Block)

	if err := n.Chain.AddBlock(block); err != nil {
		return err
	}
	nodelog.Info("added block", "hash", hex.EncodeToString(block.Hash), "height", block.Height)

	if first, ok := n.Transit.First(); ok {
		n.sendGetData(msg.AddrFrom, ItemBlock, first)
		n.Transit.Remove(first)
	} else {
		n.UTXO.Reindex()
	}
	return nil
}

func (n *Node) handleTx(msg message) error {
	tx := blockchain.DeserializeTransaction(msg.Tx)
	n.Pool.Add(tx)

	if n.Config.IsCenter() {
		for _, peer := range n.Peers.All() {
			if peer != n.Address && peer != msg.AddrFrom {
				n.sendInv(peer, ItemTx, [][]byte{tx.ID})
			}
		}
		return nil
	}

	if n.Config.IsMiner() && n.Pool.Len() >= TransactionThreshold {
		n.mine()
	}
	return nil
}

// mine drains every valid mempool transaction into a newly mined block,
// reindexes the UTXO set, and announces the block to every known peer.
func (n *Node) mine() {
	var txs []*blockchain.Transaction
	for _, tx := range n.Pool.All() {
		if n.Chain.VerifyTransaction(tx) {
			txs = append(txs, tx)
		}
	}

	if len(txs) == 0 {
		nodelog.Warn("no valid transactions to mine")
		return
	}

	txs = append(txs, blockchain.CoinbaseTx(n.Config.MiningAddr))

	newBlock := n.Chain.MineBlock(txs)
	n.UTXO.Reindex()

	for _, tx := range txs {
		n.Pool.Remove(hex.EncodeToString(tx.ID))
	}

	nodelog.Info("mined block", "hash", hex.EncodeToString(newBlock.Hash), "height", newBlock.Height)

	for _, peer := range n.Peers.All() {
		if peer != n.Address {
			n.sendInv(peer, ItemBlock, [][]byte{newBlock.Hash})
		}
	}
}

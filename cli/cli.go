package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/petiibhuzah/golang-blockchain/blockchain"
	"github.com/petiibhuzah/golang-blockchain/internal/config"
	nodelog "github.com/petiibhuzah/golang-blockchain/internal/log"
	"github.com/petiibhuzah/golang-blockchain/internal/nodeerrors"
	"github.com/petiibhuzah/golang-blockchain/network"
	"github.com/petiibhuzah/golang-blockchain/wallet"
)

// CommandLine dispatches the positional-argument subcommands below.
type CommandLine struct{}

func (cli *CommandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createblockchain ADDRESS    create the chain, paying the genesis reward to ADDRESS")
	fmt.Println("  createwallet                generate a new wallet and print its address")
	fmt.Println("  getbalance ADDRESS           print the balance of ADDRESS")
	fmt.Println("  listaddresses                print every address held in the wallet file")
	fmt.Println("  send FROM TO AMOUNT MINE     send AMOUNT from FROM to TO; MINE is 0 or 1")
	fmt.Println("  printchain                   print every block from the tip to genesis")
	fmt.Println("  reindexutxo                  rebuild the UTXO index from the chain")
	fmt.Println("  startnode [MINING_ADDRESS]   start the P2P node; mine if MINING_ADDRESS is given")
}

func (cli *CommandLine) fail(err error) {
	nodelog.Error("command failed", "err", err)
	os.Exit(1)
}

// Run parses os.Args and dispatches to the matching subcommand. Any failure
// calls os.Exit with a non-zero status; on success it returns normally.
func (cli *CommandLine) Run() {
	if len(os.Args) < 2 {
		cli.printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "createblockchain":
		if len(os.Args) < 3 {
			cli.printUsage()
			os.Exit(1)
		}
		cli.createBlockChain(os.Args[2])

	case "createwallet":
		cli.createWallet()

	case "getbalance":
		if len(os.Args) < 3 {
			cli.printUsage()
			os.Exit(1)
		}
		cli.getBalance(os.Args[2])

	case "listaddresses":
		cli.listAddresses()

	case "send":
		if len(os.Args) < 6 {
			cli.printUsage()
			os.Exit(1)
		}
		amount, err := strconv.Atoi(os.Args[4])
		if err != nil {
			cli.fail(nodeerrors.Wrap(nodeerrors.SerializationError, "amount must be an integer"))
		}
		cli.send(os.Args[2], os.Args[3], amount, os.Args[5] == "1")

	case "printchain":
		cli.printChain()

	case "reindexutxo":
		cli.reindexUTXO()

	case "startnode":
		miner := ""
		if len(os.Args) >= 3 {
			miner = os.Args[2]
		}
		cli.startNode(miner)

	default:
		cli.printUsage()
		os.Exit(1)
	}
}

func (cli *CommandLine) startNode(minerAddress string) {
	if minerAddress != "" && !wallet.ValidateAddress(minerAddress) {
		cli.fail(nodeerrors.Wrapf(nodeerrors.UnknownAddress, "invalid mining address %s", minerAddress))
	}

	cfg := config.Load(minerAddress)
	nodelog.Info("starting node", "addr", cfg.NodeAddress, "mining", cfg.IsMiner())

	if err := network.StartServer(cfg); err != nil {
		cli.fail(err)
	}
}

func (cli *CommandLine) printChain() {
	cfg := config.Load("")
	chain, err := blockchain.ContinueBlockChain(cfg.StoragePath())
	if err != nil {
		cli.fail(err)
	}
	defer chain.Database.Close()

	iter := chain.Iterator()
	for {
		block := iter.Next()
		if block == nil {
			break
		}

		fmt.Printf("Prev. hash: %s\n", blockchain.FormatPreBlockHash(block.PreBlockHash))
		fmt.Printf("Hash: %x\n", block.Hash)
		pow := blockchain.NewProof(block)
		fmt.Printf("PoW: %s\n", strconv.FormatBool(pow.Validate()))
		for _, tx := range block.Transactions {
			fmt.Printf("%s\n", tx)
		}
		fmt.Println()

		if len(block.PreBlockHash) == 0 {
			break
		}
	}
}

func (cli *CommandLine) createBlockChain(address string) {
	if !wallet.ValidateAddress(address) {
		cli.fail(nodeerrors.Wrapf(nodeerrors.UnknownAddress, "invalid address %s", address))
	}

	cfg := config.Load("")
	chain, err := blockchain.InitBlockChain(address, cfg.StoragePath())
	if err != nil {
		cli.fail(err)
	}
	defer chain.Database.Close()

	UTXOSet := blockchain.UTXOSet{Blockchain: chain}
	UTXOSet.Reindex()

	fmt.Println("Finished creating blockchain!")
}

func (cli *CommandLine) getBalance(address string) {
	if !wallet.ValidateAddress(address) {
		cli.fail(nodeerrors.Wrapf(nodeerrors.UnknownAddress, "invalid address %s", address))
	}

	cfg := config.Load("")
	chain, err := blockchain.ContinueBlockChain(cfg.StoragePath())
	if err != nil {
		cli.fail(err)
	}
	defer chain.Database.Close()

	UTXOSet := blockchain.UTXOSet{Blockchain: chain}

	pubKeyHash := wallet.Base58Decode([]byte(address))
	pubKeyHash = pubKeyHash[1 : len(pubKeyHash)-4]

	balance := 0
	for _, out := range UTXOSet.FindUnspentTransactions(pubKeyHash) {
		balance += out.Value
	}

	fmt.Printf("Balance of %s: %d\n", address, balance)
}

func (cli *CommandLine) send(from, to string, amount int, mineNow bool) {
	if !wallet.ValidateAddress(from) {
		cli.fail(nodeerrors.Wrapf(nodeerrors.UnknownAddress, "invalid from address %s", from))
	}
	if !wallet.ValidateAddress(to) {
		cli.fail(nodeerrors.Wrapf(nodeerrors.UnknownAddress, "invalid to address %s", to))
	}

	cfg := config.Load("")
	chain, err := blockchain.ContinueBlockChain(cfg.StoragePath())
	if err != nil {
		cli.fail(err)
	}
	defer chain.Database.Close()

	UTXOSet := blockchain.UTXOSet{Blockchain: chain}

	tx, err := blockchain.NewTransaction(from, to, amount, &UTXOSet, wallet.DefaultFile)
	if err != nil {
		cli.fail(err)
	}

	if mineNow {
		cbTx := blockchain.CoinbaseTx(from)
		block := chain.MineBlock([]*blockchain.Transaction{cbTx, tx})
		UTXOSet.Update(block)
	} else {
		peers := network.NewPeers(config.CenterNodeAddress)
		network.SendTx(peers.First(), tx)
		fmt.Println("sent transaction")
	}

	fmt.Println("Success!")
}

func (cli *CommandLine) reindexUTXO() {
	cfg := config.Load("")
	chain, err := blockchain.ContinueBlockChain(cfg.StoragePath())
	if err != nil {
		cli.fail(err)
	}
	defer chain.Database.Close()

	UTXOSet := blockchain.UTXOSet{Blockchain: chain}
	UTXOSet.Reindex()

	fmt.Printf("Done! There are %d transactions in the UTXO set.\n", UTXOSet.CountTransactions())
}

func (cli *CommandLine) listAddresses() {
	wallets, err := wallet.CreateWallets(wallet.DefaultFile)
	if err != nil {
		cli.fail(err)
	}

	for _, address := range wallets.GetAllAddresses() {
		fmt.Println(address)
	}
}

func (cli *CommandLine) createWallet() {
	wallets, err := wallet.CreateWallets(wallet.DefaultFile)
	if err != nil {
		cli.fail(err)
	}

	address := wallets.AddWallet(wallet.DefaultFile)
	fmt.Printf("New wallet created with address: %s\n", address)
}

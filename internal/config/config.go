// Package config holds the process-wide configuration for one node: its
// listener address, optional mining address, and derived storage path.
//
// Unlike the reference implementation's global RwLock<HashMap>, this is an
// explicit struct built once at startup and passed into the blockchain and
// network layers, per the dependency-injection preference over package-scope
// globals.
package config

import (
	"os"
	"strings"
)

// DefaultNodeAddress is used when NODE_ADDRESS is unset.
const DefaultNodeAddress = "127.0.0.1:2001"

// CenterNodeAddress is the hard-coded bootstrap/center peer every fresh node
// contacts first.
const CenterNodeAddress = "127.0.0.1:2001"

// Config is the resolved configuration for one running node.
type Config struct {
	NodeAddress string
	MiningAddr  string
}

// Load builds a Config from the environment. NODE_ADDRESS overrides the
// default listener address; miningAddr is supplied separately (it comes from
// a CLI argument, not the environment).
func Load(miningAddr string) *Config {
	addr := os.Getenv("NODE_ADDRESS")
	if addr == "" {
		addr = DefaultNodeAddress
	}
	return &Config{NodeAddress: addr, MiningAddr: miningAddr}
}

// IsMiner reports whether this node has a configured mining address.
func (c *Config) IsMiner() bool {
	return c.MiningAddr != ""
}

// IsCenter reports whether this node's configured address is the hard-coded
// center/bootstrap node.
func (c *Config) IsCenter() bool {
	return c.NodeAddress == CenterNodeAddress
}

// StoragePath returns a filesystem-safe directory name derived from the
// node's address, so multiple local nodes (as used for manual multi-node
// testing) do not collide on a shared "./tmp/blocks" path.
func (c *Config) StoragePath() string {
	return "./tmp/blocks_" + strings.ReplaceAll(c.NodeAddress, ":", "_")
}

// WalletFile returns the path of the wallet collection file for this node.
// The external contract (SPEC_FULL.md §6) fixes this at "wallet.dat" for the
// single-node case; per-node suffixing only matters for local multi-node
// simulation, so callers that need isolation pass an explicit path instead.
func WalletFile() string {
	return "wallet.dat"
}

// Package nodeerrors defines the error kinds surfaced across the node and
// wraps them with call-site context.
package nodeerrors

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Kind identifies one of the node's error categories. Kinds are sentinel
// errors: callers compare with errors.Is against the package-level values
// below, never by string.
type Kind error

var (
	// NoChain means no blockchain exists yet at the configured storage path.
	NoChain Kind = errors.New("no blockchain")
	// InvalidBlock means a block failed a structural or linkage check.
	InvalidBlock Kind = errors.New("invalid block")
	// InvalidTransaction means a transaction failed signature or structural verification.
	InvalidTransaction Kind = errors.New("invalid transaction")
	// InsufficientFunds means a sender's spendable outputs do not cover an amount.
	InsufficientFunds Kind = errors.New("insufficient funds")
	// UnknownAddress means an address is not a wallet this process holds, or fails checksum validation.
	UnknownAddress Kind = errors.New("unknown address")
	// MissingReferencedTx means a signing/verification step could not find the transaction an input references.
	MissingReferencedTx Kind = errors.New("missing referenced transaction")
	// SerializationError means decoding a persisted or wire-format payload failed.
	SerializationError Kind = errors.New("serialization error")
	// IoError means a persistent-store or filesystem operation failed.
	IoError Kind = errors.New("io error")
	// PeerUnreachable means an outbound connection to a peer could not be established or written to.
	PeerUnreachable Kind = errors.New("peer unreachable")
)

// Wrap annotates kind with a message, preserving a stack trace via
// pkg/errors so the kind can be recovered with errors.Is/errors.Unwrap.
func Wrap(kind Kind, message string) error {
	return pkgerrors.Wrap(kind, message)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(kind, format, args...)
}

// Is reports whether err is, or wraps, kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, kind)
}

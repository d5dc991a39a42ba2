package persistence

import (
	"errors"

	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
)

// ErrJournalClosed is returned by every operation after Close.
var ErrJournalClosed = errors.New("signature journal is closed")

// ISignaturePersistence is a journal of every signature a signer produced.
// All implementations must be thread-safe as signing may be concurrent.
//
// Records are keyed by (public key hash, transaction type, nonce). Signing the
// same transaction again replaces the previous record.
type ISignaturePersistence interface {
	// SaveSignedTransaction stores a record, overwriting any record with the
	// same key.
	SaveSignedTransaction(record *SignedTransactionRecord) error

	// LoadSignedTransaction returns nil if no record exists, error only on
	// storage failure.
	LoadSignedTransaction(publicKeyHash string, txType types.TransactionType, nonce uint32) (*SignedTransactionRecord, error)

	// ListSignedTransactions returns every record of one signer sorted by
	// nonce, then transaction type. Returns an empty slice if none exist.
	ListSignedTransactions(publicKeyHash string) ([]*SignedTransactionRecord, error)

	// DeleteSignedTransaction is idempotent.
	DeleteSignedTransaction(publicKeyHash string, txType types.TransactionType, nonce uint32) error

	// Close is idempotent. After Close all other operations return errors.
	Close() error

	// HealthCheck returns nil if the journal is usable.
	HealthCheck() error
}

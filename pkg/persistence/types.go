package persistence

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/google/uuid"
)

// SignedTransactionRecord is one journal entry.
type SignedTransactionRecord struct {
	// Id is a random identifier assigned when the record is created.
	Id string `json:"id"`

	// PublicKeyHash is the signer identity, sync:<hex>.
	PublicKeyHash string `json:"publicKeyHash"`

	TxType types.TransactionType `json:"txType"`
	Nonce  uint32                `json:"nonce"`

	// Message is the hex encoded canonical message that was signed.
	Message string `json:"message"`

	Signature *types.Signature `json:"signature"`

	// Transaction is the signed transaction as JSON.
	Transaction json.RawMessage `json:"transaction"`

	// SignedAt is a unix timestamp in seconds.
	SignedAt int64 `json:"signedAt"`
}

// NewSignedTransactionRecord builds a record for a transaction that has just
// been signed over message.
func NewSignedTransactionRecord(publicKeyHash string, tx types.Transaction, message []byte) (*SignedTransactionRecord, error) {
	if tx == nil {
		return nil, fmt.Errorf("cannot record nil transaction")
	}
	if tx.GetSignature() == nil {
		return nil, fmt.Errorf("cannot record unsigned %s transaction", tx.GetType())
	}

	txJson, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s transaction: %w", tx.GetType(), err)
	}

	sig := *tx.GetSignature()
	return &SignedTransactionRecord{
		Id:            uuid.New().String(),
		PublicKeyHash: publicKeyHash,
		TxType:        tx.GetType(),
		Nonce:         types.GetNonce(tx),
		Message:       hex.EncodeToString(message),
		Signature:     &sig,
		Transaction:   txJson,
		SignedAt:      time.Now().Unix(),
	}, nil
}

// Key returns the storage key of the record.
func (r *SignedTransactionRecord) Key() string {
	return RecordKey(r.PublicKeyHash, r.TxType, r.Nonce)
}

// Clone returns a deep copy of the record.
func (r *SignedTransactionRecord) Clone() *SignedTransactionRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Signature != nil {
		sig := *r.Signature
		c.Signature = &sig
	}
	c.Transaction = slices.Clone(r.Transaction)
	return &c
}

// RecordKey is <publicKeyHash>/<txType>/<nonce>. The nonce is zero padded so
// keys of one signer sort by type then nonce.
func RecordKey(publicKeyHash string, txType types.TransactionType, nonce uint32) string {
	return fmt.Sprintf("%s%s/%010d", SignerKeyPrefix(publicKeyHash), txType, nonce)
}

// SignerKeyPrefix is the common prefix of every record key of one signer.
func SignerKeyPrefix(publicKeyHash string) string {
	return strings.ToLower(publicKeyHash) + "/"
}

// SortRecords orders records by nonce, then transaction type.
func SortRecords(records []*SignedTransactionRecord) {
	slices.SortFunc(records, func(a, b *SignedTransactionRecord) int {
		if a.Nonce != b.Nonce {
			if a.Nonce < b.Nonce {
				return -1
			}
			return 1
		}
		return strings.Compare(string(a.TxType), string(b.TxType))
	})
}

package memory

import (
	"strings"
	"sync"

	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"go.uber.org/zap"
)

// MemoryPersistence is an in-memory implementation of ISignaturePersistence.
//
// All data is lost when the process exits. Records are deep copied on the
// way in and out.
type MemoryPersistence struct {
	mu sync.RWMutex

	// record key -> record
	records map[string]*persistence.SignedTransactionRecord

	closed bool
}

var _ persistence.ISignaturePersistence = (*MemoryPersistence)(nil)

// NewMemoryPersistence creates a new in-memory journal.
func NewMemoryPersistence(logger *zap.Logger) *MemoryPersistence {
	logger.Sugar().Warnw("Using in-memory signature journal, records will be lost on exit")

	return &MemoryPersistence{
		records: make(map[string]*persistence.SignedTransactionRecord),
	}
}

func (m *MemoryPersistence) SaveSignedTransaction(record *persistence.SignedTransactionRecord) error {
	if err := persistence.ValidateRecord(record); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrJournalClosed
	}

	m.records[record.Key()] = record.Clone()
	return nil
}

func (m *MemoryPersistence) LoadSignedTransaction(publicKeyHash string, txType types.TransactionType, nonce uint32) (*persistence.SignedTransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrJournalClosed
	}

	record, exists := m.records[persistence.RecordKey(publicKeyHash, txType, nonce)]
	if !exists {
		return nil, nil // Not found is not an error
	}
	return record.Clone(), nil
}

func (m *MemoryPersistence) ListSignedTransactions(publicKeyHash string) ([]*persistence.SignedTransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrJournalClosed
	}

	prefix := persistence.SignerKeyPrefix(publicKeyHash)
	result := make([]*persistence.SignedTransactionRecord, 0)
	for key, record := range m.records {
		if strings.HasPrefix(key, prefix) {
			result = append(result, record.Clone())
		}
	}
	persistence.SortRecords(result)

	return result, nil
}

func (m *MemoryPersistence) DeleteSignedTransaction(publicKeyHash string, txType types.TransactionType, nonce uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrJournalClosed
	}

	delete(m.records, persistence.RecordKey(publicKeyHash, txType, nonce))
	return nil
}

func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrJournalClosed
	}

	return nil
}

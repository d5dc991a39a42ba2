package badger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

const (
	keyPrefixRecord = "sig:"
	keyJournalMeta  = "journal:version"
	journalVersion  = "v1"

	gcInterval     = 5 * time.Minute
	gcDiscardRatio = 0.5
)

// BadgerPersistence is a durable, disk-based signature journal.
type BadgerPersistence struct {
	db     *badgerdb.DB
	logger *zap.Logger

	stopGC context.CancelFunc
	gcDone sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ persistence.ISignaturePersistence = (*BadgerPersistence)(nil)

// NewBadgerPersistence opens the journal at dataPath with SyncWrites enabled
// and starts a background value log GC.
func NewBadgerPersistence(dataPath string, logger *zap.Logger) (*BadgerPersistence, error) {
	dir, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("invalid journal path %q: %w", dataPath, err)
	}

	opts := badgerdb.DefaultOptions(dir).
		WithLogger(newJournalLogger(logger)).
		WithSyncWrites(true).
		WithCompactL0OnClose(true).
		WithNumVersionsToKeep(1)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal at %s: %w", dir, err)
	}

	if err := checkJournalVersion(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	bp := &BadgerPersistence{
		db:     db,
		logger: logger,
		stopGC: cancel,
	}
	bp.gcDone.Add(1)
	go bp.collectGarbage(ctx)

	logger.Sugar().Infow("Opened badger signature journal", "path", dir)
	return bp, nil
}

// checkJournalVersion stamps a fresh database and refuses one written by an
// incompatible version.
func checkJournalVersion(db *badgerdb.DB) error {
	return db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyJournalMeta))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return txn.Set([]byte(keyJournalMeta), []byte(journalVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read journal version: %w", err)
		}

		version, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("failed to read journal version: %w", err)
		}
		if string(version) != journalVersion {
			return fmt.Errorf("journal version %s is not supported, want %s", version, journalVersion)
		}
		return nil
	})
}

func (b *BadgerPersistence) collectGarbage(ctx context.Context) {
	defer b.gcDone.Done()

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.db.RunValueLogGC(gcDiscardRatio); err != nil && !errors.Is(err, badgerdb.ErrNoRewrite) {
				b.logger.Sugar().Warnw("Journal value log GC failed", "error", err)
			}
		}
	}
}

// view and update run fn under the read lock so Close waits for in-flight
// operations.
func (b *BadgerPersistence) view(fn func(txn *badgerdb.Txn) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return persistence.ErrJournalClosed
	}
	return b.db.View(fn)
}

func (b *BadgerPersistence) update(fn func(txn *badgerdb.Txn) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return persistence.ErrJournalClosed
	}
	return b.db.Update(fn)
}

func recordKey(publicKeyHash string, txType types.TransactionType, nonce uint32) []byte {
	return []byte(keyPrefixRecord + persistence.RecordKey(publicKeyHash, txType, nonce))
}

func (b *BadgerPersistence) SaveSignedTransaction(record *persistence.SignedTransactionRecord) error {
	if err := persistence.ValidateRecord(record); err != nil {
		return err
	}
	data, err := persistence.MarshalSignedTransactionRecord(record)
	if err != nil {
		return err
	}

	key := recordKey(record.PublicKeyHash, record.TxType, record.Nonce)
	if err := b.update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (b *BadgerPersistence) LoadSignedTransaction(publicKeyHash string, txType types.TransactionType, nonce uint32) (*persistence.SignedTransactionRecord, error) {
	key := recordKey(publicKeyHash, txType, nonce)

	var data []byte
	err := b.view(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if data == nil {
		return nil, nil
	}
	return persistence.UnmarshalSignedTransactionRecord(data)
}

func (b *BadgerPersistence) ListSignedTransactions(publicKeyHash string) ([]*persistence.SignedTransactionRecord, error) {
	prefix := []byte(keyPrefixRecord + persistence.SignerKeyPrefix(publicKeyHash))
	records := make([]*persistence.SignedTransactionRecord, 0)

	err := b.view(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         prefix,
		})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", item.Key(), err)
			}

			record, err := persistence.UnmarshalSignedTransactionRecord(data)
			if err != nil {
				b.logger.Sugar().Warnw("Skipping unreadable journal record", "key", string(item.KeyCopy(nil)), "error", err)
				continue
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list journal records for %s: %w", publicKeyHash, err)
	}

	persistence.SortRecords(records)
	return records, nil
}

func (b *BadgerPersistence) DeleteSignedTransaction(publicKeyHash string, txType types.TransactionType, nonce uint32) error {
	key := recordKey(publicKeyHash, txType, nonce)
	return b.update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
}

func (b *BadgerPersistence) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.stopGC()
	b.gcDone.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}
	b.logger.Sugar().Info("Closed badger signature journal")
	return nil
}

func (b *BadgerPersistence) HealthCheck() error {
	return b.view(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get([]byte(keyJournalMeta)); err != nil {
			return fmt.Errorf("journal version missing: %w", err)
		}
		return nil
	})
}

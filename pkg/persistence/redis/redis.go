package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefixRecord      = "zksigner:sig:"
	keyPrefixSignerIndex = "zksigner:sigs:index:"
	keyJournalMeta       = "zksigner:journal:version"
	journalVersion       = "v1"

	operationTimeout = 5 * time.Second
)

// RedisPersistence is a signature journal shared by several signer processes.
// Each signer has a set of its record keys, since Redis has no ordered prefix
// scan.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string

	mu     sync.RWMutex
	closed bool
}

var _ persistence.ISignaturePersistence = (*RedisPersistence)(nil)

type RedisConfig struct {
	Address  string // host:port
	Password string
	DB       int
	// KeyPrefix is prepended to every key, e.g. "team-a:" gives
	// "team-a:zksigner:sig:...".
	KeyPrefix string
}

func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("redis journal requires an address")
	}

	rp := &RedisPersistence{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := rp.client.Ping(ctx).Err(); err != nil {
		_ = rp.client.Close()
		return nil, fmt.Errorf("redis journal at %s is unreachable: %w", cfg.Address, err)
	}
	if err := rp.checkJournalVersion(ctx); err != nil {
		_ = rp.client.Close()
		return nil, err
	}

	logger.Sugar().Infow("Opened redis signature journal",
		"address", cfg.Address,
		"db", cfg.DB,
		"keyPrefix", cfg.KeyPrefix,
	)
	return rp, nil
}

func (r *RedisPersistence) key(parts ...string) string {
	k := r.keyPrefix
	for _, p := range parts {
		k += p
	}
	return k
}

func (r *RedisPersistence) recordKey(publicKeyHash string, txType types.TransactionType, nonce uint32) string {
	return r.key(keyPrefixRecord, persistence.RecordKey(publicKeyHash, txType, nonce))
}

func (r *RedisPersistence) indexKey(publicKeyHash string) string {
	return r.key(keyPrefixSignerIndex, persistence.SignerKeyPrefix(publicKeyHash))
}

func (r *RedisPersistence) checkJournalVersion(ctx context.Context) error {
	// SETNX only stamps a fresh database
	metaKey := r.key(keyJournalMeta)
	if err := r.client.SetNX(ctx, metaKey, journalVersion, 0).Err(); err != nil {
		return fmt.Errorf("failed to stamp journal version: %w", err)
	}
	version, err := r.client.Get(ctx, metaKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read journal version: %w", err)
	}
	if version != journalVersion {
		return fmt.Errorf("journal version %s is not supported, want %s", version, journalVersion)
	}
	return nil
}

// do runs fn with a bounded context while holding the read lock, so Close
// waits for in-flight operations.
func (r *RedisPersistence) do(fn func(ctx context.Context) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return persistence.ErrJournalClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return fn(ctx)
}

func (r *RedisPersistence) SaveSignedTransaction(record *persistence.SignedTransactionRecord) error {
	if err := persistence.ValidateRecord(record); err != nil {
		return err
	}
	data, err := persistence.MarshalSignedTransactionRecord(record)
	if err != nil {
		return err
	}

	key := r.recordKey(record.PublicKeyHash, record.TxType, record.Nonce)
	return r.do(func(ctx context.Context) error {
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, r.indexKey(record.PublicKeyHash), key)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
		return nil
	})
}

func (r *RedisPersistence) LoadSignedTransaction(publicKeyHash string, txType types.TransactionType, nonce uint32) (*persistence.SignedTransactionRecord, error) {
	key := r.recordKey(publicKeyHash, txType, nonce)

	var data []byte
	err := r.do(func(ctx context.Context) error {
		var err error
		data, err = r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			data = nil
			return nil
		}
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

func (r *RedisPersistence) ListSignedTransactions(publicKeyHash string) ([]*persistence.SignedTransactionRecord, error) {
	indexKey := r.indexKey(publicKeyHash)
	records := make([]*persistence.SignedTransactionRecord, 0)

	err := r.do(func(ctx context.Context) error {
		keys, err := r.client.SMembers(ctx, indexKey).Result()
		if err != nil || len(keys) == 0 {
			return err
		}

		values, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}

		var stale []interface{}
		for i, value := range values {
			data, ok := value.(string)
			if !ok {
				// deleted out from under the index
				stale = append(stale, keys[i])
				continue
			}
			record, err := persistence.UnmarshalSignedTransactionRecord([]byte(data))
			if err != nil {
				r.logger.Sugar().Warnw("Skipping unreadable journal record", "key", keys[i], "error", err)
				continue
			}
			records = append(records, record)
		}

		if len(stale) > 0 {
			if err := r.client.SRem(ctx, indexKey, stale...).Err(); err != nil {
				r.logger.Sugar().Warnw("Failed to prune journal index", "index", indexKey, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list journal records for %s: %w", publicKeyHash, err)
	}

	persistence.SortRecords(records)
	return records, nil
}

func (r *RedisPersistence) DeleteSignedTransaction(publicKeyHash string, txType types.TransactionType, nonce uint32) error {
	key := r.recordKey(publicKeyHash, txType, nonce)
	return r.do(func(ctx context.Context) error {
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, r.indexKey(publicKeyHash), key)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	})
}

func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis journal: %w", err)
	}
	r.logger.Sugar().Info("Closed redis signature journal")
	return nil
}

func (r *RedisPersistence) HealthCheck() error {
	return r.do(func(ctx context.Context) error {
		if err := r.client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis journal is unreachable: %w", err)
		}
		if err := r.client.Get(ctx, r.key(keyJournalMeta)).Err(); err != nil {
			return fmt.Errorf("journal version missing: %w", err)
		}
		return nil
	})
}

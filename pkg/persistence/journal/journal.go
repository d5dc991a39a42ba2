package journal

import (
	"fmt"

	"github.com/Layr-Labs/zksync-signer-go/pkg/config"
	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence"
	persistenceBadger "github.com/Layr-Labs/zksync-signer-go/pkg/persistence/badger"
	persistenceMemory "github.com/Layr-Labs/zksync-signer-go/pkg/persistence/memory"
	persistenceRedis "github.com/Layr-Labs/zksync-signer-go/pkg/persistence/redis"
	"go.uber.org/zap"
)

// NewJournal opens the backend selected by cfg. It returns nil with no error
// when journaling is disabled.
func NewJournal(cfg *config.JournalConfig, logger *zap.Logger) (persistence.ISignaturePersistence, error) {
	if cfg == nil {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal config: %w", err)
	}

	switch cfg.Type {
	case "", config.JournalTypeNone:
		return nil, nil
	case config.JournalTypeMemory:
		return persistenceMemory.NewMemoryPersistence(logger), nil
	case config.JournalTypeBadger:
		bp, err := persistenceBadger.NewBadgerPersistence(cfg.DataPath, logger)
		if err != nil {
			return nil, err
		}
		return bp, nil
	case config.JournalTypeRedis:
		rp, err := persistenceRedis.NewRedisPersistence(&persistenceRedis.RedisConfig{
			Address:   cfg.RedisAddress,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return rp, nil
	}
	return nil, fmt.Errorf("unsupported journal type %q", cfg.Type)
}

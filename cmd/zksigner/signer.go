package main

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/zksync-signer-go/internal/aws"
	"github.com/Layr-Labs/zksync-signer-go/pkg/config"
	"github.com/Layr-Labs/zksync-signer-go/pkg/crypto"
	"github.com/Layr-Labs/zksync-signer-go/pkg/ethSigner/awsKmsEthSigner"
	"github.com/Layr-Labs/zksync-signer-go/pkg/ethSigner/privateKeyEthSigner"
	"github.com/Layr-Labs/zksync-signer-go/pkg/keyManager"
	"github.com/Layr-Labs/zksync-signer-go/pkg/keystore"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func parseSignerConfig(c *cli.Context) *config.SignerConfig {
	return &config.SignerConfig{
		ChainID:          config.ChainId(c.Uint64("chain-id")),
		Seed:             c.String("seed"),
		RawPrivateKey:    c.String("raw-private-key"),
		KeystorePath:     c.String("keystore-path"),
		KeystorePassword: c.String("keystore-password"),
		EthPrivateKey:    c.String("eth-private-key"),
		AWSKMSKeyId:      c.String("aws-kms-key-id"),
		AWSRegion:        c.String("aws-region"),
		Debug:            c.Bool("verbose"),
	}
}

func parseJournalConfig(c *cli.Context) *config.JournalConfig {
	return &config.JournalConfig{
		Type:           config.JournalType(c.String("journal")),
		DataPath:       c.String("journal-data-path"),
		RedisAddress:   c.String("journal-redis-address"),
		RedisPassword:  c.String("journal-redis-password"),
		RedisDB:        c.Int("journal-redis-db"),
		RedisKeyPrefix: c.String("journal-redis-prefix"),
	}
}

func decodeHex(value string) ([]byte, error) {
	if len(value) < 2 || value[:2] != "0x" {
		value = "0x" + value
	}
	return hexutil.Decode(value)
}

// loadKeyManager builds the signing identity from whichever key source cfg
// names.
func loadKeyManager(ctx context.Context, cfg *config.SignerConfig, c crypto.ICrypto, l *zap.Logger) (*keyManager.KeyManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signer configuration: %w", err)
	}

	source := cfg.KeySource()
	l.Sugar().Debugw("Loading signing key", "source", source, "chainId", uint64(cfg.ChainID))

	switch source {
	case config.KeySourceSeed:
		seed, err := decodeHex(cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("invalid seed: %w", err)
		}
		return keyManager.NewKeyManagerFromSeed(c, seed, l)

	case config.KeySourceRawPrivateKey:
		raw, err := decodeHex(cfg.RawPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid raw private key: %w", err)
		}
		return keyManager.NewKeyManagerFromRawKey(c, raw, l)

	case config.KeySourceKeystore:
		return keystore.LoadKeyFile(c, cfg.KeystorePath, cfg.KeystorePassword, l)

	case config.KeySourceEthPrivateKey:
		signer, err := privateKeyEthSigner.NewPrivateKeyEthSigner(cfg.EthPrivateKey, l)
		if err != nil {
			return nil, err
		}
		return keyManager.NewKeyManagerFromEthSigner(ctx, c, signer, cfg.ChainID, l)

	case config.KeySourceAWSKMS:
		awsCfg, err := aws.LoadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		aws.LogCallerIdentity(ctx, sts.NewFromConfig(awsCfg), l)

		signer, err := awsKmsEthSigner.NewAWSKMSEthSignerFromConfig(ctx, awsCfg, &awsKmsEthSigner.AWSKMSEthSignerConfig{
			KeyId: cfg.AWSKMSKeyId,
		}, l)
		if err != nil {
			return nil, err
		}
		return keyManager.NewKeyManagerFromEthSigner(ctx, c, signer, cfg.ChainID, l)
	}

	return nil, fmt.Errorf("unsupported key source %q", source)
}

package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the zksigner CLI
const (
	EnvChainID            = "ZKSIGNER_CHAIN_ID"
	EnvSeed               = "ZKSIGNER_SEED"
	EnvRawPrivateKey      = "ZKSIGNER_RAW_PRIVATE_KEY"
	EnvKeystorePath       = "ZKSIGNER_KEYSTORE_PATH"
	EnvKeystorePassword   = "ZKSIGNER_KEYSTORE_PASSWORD"
	EnvEthPrivateKey      = "ZKSIGNER_ETH_PRIVATE_KEY"
	EnvAWSKMSKeyId        = "ZKSIGNER_AWS_KMS_KEY_ID"
	EnvAWSRegion          = "ZKSIGNER_AWS_REGION"
	EnvJournalType        = "ZKSIGNER_JOURNAL_TYPE"
	EnvJournalDataPath    = "ZKSIGNER_JOURNAL_DATA_PATH"
	EnvJournalRedisAddr   = "ZKSIGNER_JOURNAL_REDIS_ADDRESS"
	EnvJournalRedisPass   = "ZKSIGNER_JOURNAL_REDIS_PASSWORD"
	EnvJournalRedisDB     = "ZKSIGNER_JOURNAL_REDIS_DB"
	EnvJournalRedisPrefix = "ZKSIGNER_JOURNAL_REDIS_PREFIX"
	EnvVerbose            = "ZKSIGNER_VERBOSE"
)

type ChainId uint

const (
	ChainId_Mainnet   ChainId = 1
	ChainId_Ropsten   ChainId = 3
	ChainId_Rinkeby   ChainId = 4
	ChainId_Localhost ChainId = 9
	ChainId_Sepolia   ChainId = 11155111
)

type ChainName string

const (
	ChainName_Mainnet   ChainName = "mainnet"
	ChainName_Ropsten   ChainName = "ropsten"
	ChainName_Rinkeby   ChainName = "rinkeby"
	ChainName_Localhost ChainName = "localhost"
	ChainName_Sepolia   ChainName = "sepolia"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_Mainnet:   ChainName_Mainnet,
	ChainId_Ropsten:   ChainName_Ropsten,
	ChainId_Rinkeby:   ChainName_Rinkeby,
	ChainId_Localhost: ChainName_Localhost,
	ChainId_Sepolia:   ChainName_Sepolia,
}
var ChainNameToId = map[ChainName]ChainId{
	ChainName_Mainnet:   ChainId_Mainnet,
	ChainName_Ropsten:   ChainId_Ropsten,
	ChainName_Rinkeby:   ChainId_Rinkeby,
	ChainName_Localhost: ChainId_Localhost,
	ChainName_Sepolia:   ChainId_Sepolia,
}

// IsMainnet reports whether the chain is the primary network. The key
// derivation message carries no chain suffix on mainnet.
func (c ChainId) IsMainnet() bool {
	return c == ChainId_Mainnet
}

// GetSupportedChainIDs returns all supported chain IDs
func GetSupportedChainIDs() []ChainId {
	return []ChainId{
		ChainId_Mainnet,
		ChainId_Ropsten,
		ChainId_Rinkeby,
		ChainId_Localhost,
		ChainId_Sepolia,
	}
}

// GetSupportedChainIDsString returns supported chain IDs as strings for CLI help
func GetSupportedChainIDsString() string {
	return fmt.Sprintf("%d (mainnet), %d (ropsten), %d (rinkeby), %d (localhost), %d (sepolia)",
		ChainId_Mainnet, ChainId_Ropsten, ChainId_Rinkeby, ChainId_Localhost, ChainId_Sepolia)
}

type KeySource string

const (
	KeySourceUnknown       KeySource = "unknown"
	KeySourceSeed          KeySource = "seed"
	KeySourceRawPrivateKey KeySource = "rawPrivateKey"
	KeySourceKeystore      KeySource = "keystore"
	KeySourceEthPrivateKey KeySource = "ethPrivateKey"
	KeySourceAWSKMS        KeySource = "awsKms"
)

func (k KeySource) String() string {
	return string(k)
}

// SignerConfig describes where the signing identity comes from. Exactly one
// key source must be set.
type SignerConfig struct {
	ChainID ChainId `json:"chainId" yaml:"chainId"`

	Seed             string `json:"seed" yaml:"seed"`                   // hex, at least 32 bytes
	RawPrivateKey    string `json:"rawPrivateKey" yaml:"rawPrivateKey"` // hex
	KeystorePath     string `json:"keystorePath" yaml:"keystorePath"`
	KeystorePassword string `json:"keystorePassword" yaml:"keystorePassword"`
	EthPrivateKey    string `json:"ethPrivateKey" yaml:"ethPrivateKey"` // hex secp256k1 key
	AWSKMSKeyId      string `json:"awsKmsKeyId" yaml:"awsKmsKeyId"`
	AWSRegion        string `json:"awsRegion" yaml:"awsRegion"`

	Debug bool `json:"debug" yaml:"debug"`
}

func (sc *SignerConfig) configuredSources() []KeySource {
	var sources []KeySource
	if sc.Seed != "" {
		sources = append(sources, KeySourceSeed)
	}
	if sc.RawPrivateKey != "" {
		sources = append(sources, KeySourceRawPrivateKey)
	}
	if sc.KeystorePath != "" {
		sources = append(sources, KeySourceKeystore)
	}
	if sc.EthPrivateKey != "" {
		sources = append(sources, KeySourceEthPrivateKey)
	}
	if sc.AWSKMSKeyId != "" {
		sources = append(sources, KeySourceAWSKMS)
	}
	return sources
}

// KeySource returns the configured key source, or KeySourceUnknown when none
// or more than one is set.
func (sc *SignerConfig) KeySource() KeySource {
	sources := sc.configuredSources()
	if len(sources) != 1 {
		return KeySourceUnknown
	}
	return sources[0]
}

func (sc *SignerConfig) Validate() error {
	var allErrors field.ErrorList

	if _, ok := ChainIdToName[sc.ChainID]; !ok {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("chainId"), sc.ChainID, supportedChainIdStrings()))
	}

	sources := sc.configuredSources()
	switch {
	case len(sources) == 0:
		allErrors = append(allErrors, field.Required(field.NewPath("keySource"),
			"one of seed, rawPrivateKey, keystorePath, ethPrivateKey or awsKmsKeyId is required"))
	case len(sources) > 1:
		allErrors = append(allErrors, field.Invalid(field.NewPath("keySource"), sources,
			"only one key source may be configured"))
	}

	if sc.Seed != "" {
		if err := validateHex(sc.Seed); err != nil {
			allErrors = append(allErrors, field.Invalid(field.NewPath("seed"), "<redacted>", err.Error()))
		}
	}
	if sc.RawPrivateKey != "" {
		if err := validateHex(sc.RawPrivateKey); err != nil {
			allErrors = append(allErrors, field.Invalid(field.NewPath("rawPrivateKey"), "<redacted>", err.Error()))
		}
	}
	if sc.EthPrivateKey != "" {
		key := strings.TrimPrefix(sc.EthPrivateKey, "0x")
		if len(key) != 64 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("ethPrivateKey"), "<redacted>",
				fmt.Sprintf("must be 32 bytes (64 hex chars), got %d chars", len(key))))
		}
	}
	if sc.KeystorePath != "" && sc.KeystorePassword == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("keystorePassword"), "keystorePassword is required with keystorePath"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func validateHex(value string) error {
	if !strings.HasPrefix(value, "0x") {
		value = "0x" + value
	}
	if _, err := hexutil.Decode(value); err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	return nil
}

func supportedChainIdStrings() []string {
	ids := GetSupportedChainIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, fmt.Sprintf("%d", id))
	}
	return out
}

type JournalType string

const (
	JournalTypeNone   JournalType = "none"
	JournalTypeMemory JournalType = "memory"
	JournalTypeBadger JournalType = "badger"
	JournalTypeRedis  JournalType = "redis"
)

// JournalConfig selects the backend that records produced signatures.
type JournalConfig struct {
	Type           JournalType `json:"type" yaml:"type"`
	DataPath       string      `json:"dataPath" yaml:"dataPath"`
	RedisAddress   string      `json:"redisAddress" yaml:"redisAddress"`
	RedisPassword  string      `json:"redisPassword" yaml:"redisPassword"`
	RedisDB        int         `json:"redisDb" yaml:"redisDb"`
	RedisKeyPrefix string      `json:"redisKeyPrefix" yaml:"redisKeyPrefix"`
}

func (jc *JournalConfig) Validate() error {
	var allErrors field.ErrorList

	switch jc.Type {
	case "", JournalTypeNone, JournalTypeMemory:
	case JournalTypeBadger:
		if jc.DataPath == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("dataPath"), "dataPath is required for the badger journal"))
		}
	case JournalTypeRedis:
		if jc.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redisAddress"), "redisAddress is required for the redis journal"))
		}
		if jc.RedisDB < 0 || jc.RedisDB > 15 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("redisDb"), jc.RedisDB, "must be between 0-15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("type"), jc.Type,
			[]string{string(JournalTypeNone), string(JournalTypeMemory), string(JournalTypeBadger), string(JournalTypeRedis)}))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

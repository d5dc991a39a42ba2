package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Layr-Labs/zksync-signer-go/pkg/crypto"
	"github.com/Layr-Labs/zksync-signer-go/pkg/keyManager"
	"github.com/Layr-Labs/zksync-signer-go/pkg/util"
	ethKeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	keyFileVersion = 1
	keyFileSuffix  = ".json"
)

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrInvalidPassword = errors.New("could not decrypt key with given password")
)

// EncryptedKeyFile is the on-disk form of a zkSync signing key. The raw
// private key is encrypted with the Web3 Secret Storage scheme.
type EncryptedKeyFile struct {
	Id            string                 `json:"id"`
	Version       int                    `json:"version"`
	PublicKeyHash string                 `json:"publicKeyHash"`
	Crypto        ethKeystore.CryptoJSON `json:"crypto"`
}

// EncryptKey encrypts raw with password.
func EncryptKey(raw []byte, publicKeyHash string, password string, scryptN int, scryptP int) (*EncryptedKeyFile, error) {
	cryptoJson, err := ethKeystore.EncryptDataV3(raw, []byte(password), scryptN, scryptP)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt key: %w", err)
	}
	return &EncryptedKeyFile{
		Id:            uuid.New().String(),
		Version:       keyFileVersion,
		PublicKeyHash: publicKeyHash,
		Crypto:        cryptoJson,
	}, nil
}

// DecryptKey returns the raw private key held in file.
func DecryptKey(file *EncryptedKeyFile, password string) ([]byte, error) {
	if file == nil {
		return nil, fmt.Errorf("key file is nil")
	}
	if file.Version != keyFileVersion {
		return nil, fmt.Errorf("unsupported key file version %d", file.Version)
	}
	raw, err := ethKeystore.DecryptDataV3(file.Crypto, password)
	if err != nil {
		if errors.Is(err, ethKeystore.ErrDecrypt) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to decrypt key: %w", err)
	}
	return raw, nil
}

// ReadKeyFile parses an encrypted key file from disk.
func ReadKeyFile(path string) (*EncryptedKeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	var file EncryptedKeyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse key file %s: %w", path, err)
	}
	return &file, nil
}

// LoadKeyFile decrypts the key at path into a KeyManager and checks that it
// matches the public key hash recorded in the file.
func LoadKeyFile(c crypto.ICrypto, path string, password string, logger *zap.Logger) (*keyManager.KeyManager, error) {
	file, err := ReadKeyFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := DecryptKey(file, password)
	if err != nil {
		return nil, err
	}
	km, err := keyManager.NewKeyManagerFromRawKey(c, raw, logger)
	if err != nil {
		return nil, err
	}
	if file.PublicKeyHash != "" && !strings.EqualFold(file.PublicKeyHash, km.GetPublicKeyHash()) {
		return nil, fmt.Errorf("key file %s is for %s but decrypts to %s", path, file.PublicKeyHash, km.GetPublicKeyHash())
	}
	return km, nil
}

type KeyStoreConfig struct {
	Dir string
	// LightScrypt trades encryption strength for speed, for tests and
	// development only.
	LightScrypt bool
}

// KeyStore is a directory of encrypted signing keys indexed by public key
// hash. It is safe for concurrent use.
type KeyStore struct {
	mu sync.RWMutex

	dir     string
	scryptN int
	scryptP int
	logger  *zap.Logger

	// public key hash -> file path
	index map[string]string
}

func NewKeyStore(cfg *KeyStoreConfig, logger *zap.Logger) (*KeyStore, error) {
	if cfg == nil || cfg.Dir == "" {
		return nil, fmt.Errorf("keystore directory cannot be empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create keystore directory: %w", err)
	}

	ks := &KeyStore{
		dir:     cfg.Dir,
		scryptN: ethKeystore.StandardScryptN,
		scryptP: ethKeystore.StandardScryptP,
		logger:  logger,
		index:   make(map[string]string),
	}
	if cfg.LightScrypt {
		ks.scryptN = ethKeystore.LightScryptN
		ks.scryptP = ethKeystore.LightScryptP
	}

	if err := ks.scan(); err != nil {
		return nil, err
	}
	return ks, nil
}

func (ks *KeyStore) scan() error {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return fmt.Errorf("failed to read keystore directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), keyFileSuffix) {
			continue
		}
		path := filepath.Join(ks.dir, entry.Name())
		file, err := ReadKeyFile(path)
		if err != nil {
			ks.logger.Sugar().Warnw("Skipping unreadable key file", "path", path, "error", err)
			continue
		}
		ks.index[strings.ToLower(file.PublicKeyHash)] = path
	}
	return nil
}

// StoreKey encrypts the key of km and writes it to the keystore directory.
// Returns the file path.
func (ks *KeyStore) StoreKey(km *keyManager.KeyManager, password string) (string, error) {
	publicKeyHash := km.GetPublicKeyHash()
	file, err := EncryptKey(km.GetRawPrivateKey(), publicKeyHash, password, ks.scryptN, ks.scryptP)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal key file: %w", err)
	}

	name := strings.TrimPrefix(publicKeyHash, util.PublicKeyHashPrefix) + keyFileSuffix
	path := filepath.Join(ks.dir, name)

	ks.mu.Lock()
	defer ks.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write key file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to write key file: %w", err)
	}

	ks.index[strings.ToLower(publicKeyHash)] = path
	ks.logger.Sugar().Infow("Stored signing key", "publicKeyHash", publicKeyHash, "path", path)
	return path, nil
}

// LoadKey decrypts the key with publicKeyHash.
func (ks *KeyStore) LoadKey(c crypto.ICrypto, publicKeyHash string, password string) (*keyManager.KeyManager, error) {
	ks.mu.RLock()
	path, ok := ks.index[strings.ToLower(publicKeyHash)]
	ks.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, publicKeyHash)
	}
	return LoadKeyFile(c, path, password, ks.logger)
}

// ListKeys returns the public key hashes of every stored key, sorted.
func (ks *KeyStore) ListKeys() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	keys := make([]string, 0, len(ks.index))
	for k := range ks.index {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

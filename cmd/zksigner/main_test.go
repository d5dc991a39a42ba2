package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Layr-Labs/zksync-signer-go/pkg/config"
	"github.com/Layr-Labs/zksync-signer-go/pkg/crypto"
	"github.com/Layr-Labs/zksync-signer-go/pkg/keyManager"
	"github.com/Layr-Labs/zksync-signer-go/pkg/keystore"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSeed   = "0x0101010101010101010101010101010101010101010101010101010101010101"
	testEthKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
)

func Test_ToBaseUnits(t *testing.T) {
	t.Run("Should shift decimals", func(t *testing.T) {
		v := decimal.RequireFromString("1.5")
		got, err := toBaseUnits("amount", &v, 18)
		require.NoError(t, err)
		assert.Equal(t, "1500000000000000000", got.String())
	})

	t.Run("Should reject too many decimal places", func(t *testing.T) {
		v := decimal.RequireFromString("0.0000001")
		_, err := toBaseUnits("fee", &v, 6)
		assert.ErrorContains(t, err, "decimal places")
	})

	t.Run("Should reject negative values", func(t *testing.T) {
		v := decimal.RequireFromString("-1")
		_, err := toBaseUnits("amount", &v, 0)
		assert.Error(t, err)
	})

	t.Run("Should require a value", func(t *testing.T) {
		_, err := toBaseUnits("fee", nil, 18)
		assert.ErrorContains(t, err, "fee is required")
	})

	t.Run("Should format base units back", func(t *testing.T) {
		assert.Equal(t, "1.5", fromBaseUnits(big.NewInt(1500), 3))
	})
}

func Test_TxInput(t *testing.T) {
	in, err := parseTxInput([]byte(`{
		"accountId": 1,
		"from": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"to": "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		"token": 0,
		"amount": "1",
		"fee": "0.001",
		"nonce": 7
	}`))
	require.NoError(t, err)

	t.Run("Should build a transfer", func(t *testing.T) {
		tx, err := in.toTransaction("Transfer", amountOptions{decimals: 18})
		require.NoError(t, err)
		transfer, ok := tx.(*types.Transfer)
		require.True(t, ok)
		assert.Equal(t, uint32(1), transfer.AccountId)
		assert.Equal(t, "1000000000000000000", transfer.Amount.String())
		assert.Equal(t, "1000000000000000", transfer.Fee.String())
		assert.Equal(t, uint32(7), transfer.Nonce)
	})

	t.Run("Should build a withdraw", func(t *testing.T) {
		tx, err := in.toTransaction("withdraw", amountOptions{decimals: 18, round: true})
		require.NoError(t, err)
		assert.Equal(t, types.TransactionType_Withdraw, tx.GetType())
		assert.Equal(t, "1000000000000000000", tx.(*types.Withdraw).Amount.String())
	})

	t.Run("Should round when asked", func(t *testing.T) {
		odd, err := parseTxInput([]byte(`{"amount": "123456789012", "fee": "123456", "nonce": 1}`))
		require.NoError(t, err)
		tx, err := odd.toTransaction("transfer", amountOptions{decimals: 0, round: true})
		require.NoError(t, err)
		transfer := tx.(*types.Transfer)
		assert.True(t, transfer.Amount.Cmp(big.NewInt(123456789012)) <= 0)
		assert.True(t, transfer.Fee.Cmp(big.NewInt(123456)) <= 0)
		assert.Equal(t, "123400", transfer.Fee.String())
	})

	t.Run("Should reject unknown types", func(t *testing.T) {
		_, err := in.toTransaction("swap", amountOptions{decimals: 18})
		assert.ErrorContains(t, err, "unknown transaction type")
	})

	t.Run("Should fail on malformed JSON", func(t *testing.T) {
		_, err := parseTxInput([]byte(`{"amount": `))
		assert.Error(t, err)
	})
}

func Test_LoadKeyManager(t *testing.T) {
	ctx := context.Background()
	c := crypto.NewBn254Eddsa()
	l := zap.NewNop()

	fromSeed, err := loadKeyManager(ctx, &config.SignerConfig{ChainID: config.ChainId_Mainnet, Seed: testSeed}, c, l)
	require.NoError(t, err)

	t.Run("Should load from a seed without 0x prefix", func(t *testing.T) {
		km, err := loadKeyManager(ctx, &config.SignerConfig{
			ChainID: config.ChainId_Mainnet,
			Seed:    strings.TrimPrefix(testSeed, "0x"),
		}, c, l)
		require.NoError(t, err)
		assert.Equal(t, fromSeed.GetPublicKeyHash(), km.GetPublicKeyHash())
	})

	t.Run("Should load from a raw private key", func(t *testing.T) {
		raw := fromSeed.GetRawPrivateKey()
		km, err := loadKeyManager(ctx, &config.SignerConfig{
			ChainID:       config.ChainId_Mainnet,
			RawPrivateKey: hexutil.Encode(raw),
		}, c, l)
		require.NoError(t, err)
		assert.Equal(t, fromSeed.GetPublicKey(), km.GetPublicKey())
	})

	t.Run("Should load from a keystore file", func(t *testing.T) {
		ks, err := keystore.NewKeyStore(&keystore.KeyStoreConfig{Dir: t.TempDir(), LightScrypt: true}, l)
		require.NoError(t, err)
		path, err := ks.StoreKey(fromSeed, "pw")
		require.NoError(t, err)

		km, err := loadKeyManager(ctx, &config.SignerConfig{
			ChainID:          config.ChainId_Mainnet,
			KeystorePath:     path,
			KeystorePassword: "pw",
		}, c, l)
		require.NoError(t, err)
		assert.Equal(t, fromSeed.GetPublicKeyHash(), km.GetPublicKeyHash())
	})

	t.Run("Should derive different keys per chain from an Ethereum key", func(t *testing.T) {
		mainnet, err := loadKeyManager(ctx, &config.SignerConfig{ChainID: config.ChainId_Mainnet, EthPrivateKey: testEthKey}, c, l)
		require.NoError(t, err)
		sepolia, err := loadKeyManager(ctx, &config.SignerConfig{ChainID: config.ChainId_Sepolia, EthPrivateKey: testEthKey}, c, l)
		require.NoError(t, err)
		assert.NotEqual(t, mainnet.GetPublicKeyHash(), sepolia.GetPublicKeyHash())
	})

	t.Run("Should reject missing key sources", func(t *testing.T) {
		_, err := loadKeyManager(ctx, &config.SignerConfig{ChainID: config.ChainId_Mainnet}, c, l)
		assert.ErrorContains(t, err, "invalid signer configuration")
	})

	t.Run("Should reject multiple key sources", func(t *testing.T) {
		_, err := loadKeyManager(ctx, &config.SignerConfig{
			ChainID:       config.ChainId_Mainnet,
			Seed:          testSeed,
			EthPrivateKey: testEthKey,
		}, c, l)
		assert.Error(t, err)
	})

	t.Run("Should reject a short seed", func(t *testing.T) {
		_, err := loadKeyManager(ctx, &config.SignerConfig{ChainID: config.ChainId_Mainnet, Seed: "0x0102"}, c, l)
		assert.ErrorIs(t, err, keyManager.ErrInvalidSeed)
	})
}

func Test_App(t *testing.T) {
	t.Run("Should print the public key", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(&out).Run([]string{"zksigner", "--seed", testSeed, "public-key"})
		require.NoError(t, err)

		var got map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.True(t, strings.HasPrefix(got["publicKeyHash"], "sync:"))
		assert.True(t, strings.HasPrefix(got["publicKey"], "0x"))
	})

	t.Run("Should sign and journal a transfer", func(t *testing.T) {
		dir := t.TempDir()
		txPath := filepath.Join(dir, "tx.json")
		require.NoError(t, os.WriteFile(txPath, []byte(`{
			"accountId": 1,
			"from": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"to": "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			"token": 0,
			"amount": "0.00000032",
			"fee": "0.000000000000002",
			"nonce": 0
		}`), 0o600))
		dataPath := filepath.Join(dir, "journal")

		var out bytes.Buffer
		err := newApp(&out).Run([]string{
			"zksigner", "--seed", testSeed,
			"--journal", "badger", "--journal-data-path", dataPath,
			"sign", "--tx", txPath, "transfer",
		})
		require.NoError(t, err)

		var signed struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &signed))
		assert.Equal(t, types.TransactionType_Transfer.String(), signed.Type)
		assert.True(t, strings.HasPrefix(signed.Message, "0500000001"))

		out.Reset()
		err = newApp(&out).Run([]string{
			"zksigner", "--seed", testSeed,
			"--journal", "badger", "--journal-data-path", dataPath,
			"journal", "list",
		})
		require.NoError(t, err)

		var records []map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &records))
		assert.Len(t, records, 1)
	})

	t.Run("Should reject the memory journal", func(t *testing.T) {
		err := newApp(&bytes.Buffer{}).Run([]string{
			"zksigner", "--seed", testSeed,
			"--journal", "memory",
			"journal", "list",
		})
		assert.ErrorContains(t, err, "does not outlive a single command")
	})

	t.Run("Should require a transaction type", func(t *testing.T) {
		err := newApp(&bytes.Buffer{}).Run([]string{"zksigner", "--seed", testSeed, "sign", "--tx", "missing.json"})
		assert.Error(t, err)
	})

	t.Run("Should create and list keystore entries", func(t *testing.T) {
		dir := t.TempDir()
		var out bytes.Buffer
		err := newApp(&out).Run([]string{"zksigner", "--seed", testSeed, "keystore", "new", "--dir", dir, "--password", "pw", "--light"})
		require.NoError(t, err)

		out.Reset()
		err = newApp(&out).Run([]string{"zksigner", "keystore", "list", "--dir", dir})
		require.NoError(t, err)

		var keys []string
		require.NoError(t, json.Unmarshal(out.Bytes(), &keys))
		assert.Len(t, keys, 1)
	})
}

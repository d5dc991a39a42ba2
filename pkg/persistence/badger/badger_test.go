package badger

import (
	"sync"
	"testing"

	"github.com/Layr-Labs/zksync-signer-go/pkg/logger"
	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPkHash = "sync:1111111111111111111111111111111111111111"

func newRecord(txType types.TransactionType, nonce uint32) *persistence.SignedTransactionRecord {
	return &persistence.SignedTransactionRecord{
		Id:            "record",
		PublicKeyHash: testPkHash,
		TxType:        txType,
		Nonce:         nonce,
		Message:       "05",
		Signature:     &types.Signature{PubKey: "aa", Signature: "bb"},
		Transaction:   []byte(`{"nonce":1}`),
		SignedAt:      1700000000,
	}
}

func newTestPersistence(t *testing.T, dir string) *BadgerPersistence {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	bp, err := NewBadgerPersistence(dir, testLogger)
	require.NoError(t, err)
	return bp
}

func TestBadgerPersistence_SaveAndLoad(t *testing.T) {
	bp := newTestPersistence(t, t.TempDir())
	defer func() { _ = bp.Close() }()

	record := newRecord(types.TransactionType_Transfer, 4)
	require.NoError(t, bp.SaveSignedTransaction(record))

	loaded, err := bp.LoadSignedTransaction(testPkHash, types.TransactionType_Transfer, 4)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.Id, loaded.Id)
	assert.Equal(t, record.Signature, loaded.Signature)
	assert.JSONEq(t, string(record.Transaction), string(loaded.Transaction))

	missing, err := bp.LoadSignedTransaction(testPkHash, types.TransactionType_Transfer, 5)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBadgerPersistence_ListAndDelete(t *testing.T) {
	bp := newTestPersistence(t, t.TempDir())
	defer func() { _ = bp.Close() }()

	require.NoError(t, bp.SaveSignedTransaction(newRecord(types.TransactionType_Withdraw, 10)))
	require.NoError(t, bp.SaveSignedTransaction(newRecord(types.TransactionType_Transfer, 2)))
	require.NoError(t, bp.SaveSignedTransaction(newRecord(types.TransactionType_ChangePubKey, 0)))

	records, err := bp.ListSignedTransactions(testPkHash)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint32(0), records[0].Nonce)
	assert.Equal(t, uint32(2), records[1].Nonce)
	assert.Equal(t, uint32(10), records[2].Nonce)

	require.NoError(t, bp.DeleteSignedTransaction(testPkHash, types.TransactionType_Transfer, 2))
	require.NoError(t, bp.DeleteSignedTransaction(testPkHash, types.TransactionType_Transfer, 2))

	records, err = bp.ListSignedTransactions(testPkHash)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	other, err := bp.ListSignedTransactions("sync:2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestBadgerPersistence_Reopen(t *testing.T) {
	dir := t.TempDir()

	bp := newTestPersistence(t, dir)
	require.NoError(t, bp.SaveSignedTransaction(newRecord(types.TransactionType_ForcedExit, 1)))
	require.NoError(t, bp.Close())

	reopened := newTestPersistence(t, dir)
	defer func() { _ = reopened.Close() }()

	require.NoError(t, reopened.HealthCheck())
	loaded, err := reopened.LoadSignedTransaction(testPkHash, types.TransactionType_ForcedExit, 1)
	require.NoError(t, err)
	require.NotNil(t, loaded)
}

func TestBadgerPersistence_Closed(t *testing.T) {
	bp := newTestPersistence(t, t.TempDir())
	require.NoError(t, bp.Close())
	require.NoError(t, bp.Close())

	assert.ErrorIs(t, bp.HealthCheck(), persistence.ErrJournalClosed)
	assert.Error(t, bp.SaveSignedTransaction(newRecord(types.TransactionType_Transfer, 1)))
	_, err := bp.ListSignedTransactions(testPkHash)
	assert.Error(t, err)
}

func TestBadgerPersistence_Concurrent(t *testing.T) {
	bp := newTestPersistence(t, t.TempDir())
	defer func() { _ = bp.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(nonce uint32) {
			defer wg.Done()
			assert.NoError(t, bp.SaveSignedTransaction(newRecord(types.TransactionType_Transfer, nonce)))
		}(uint32(i))
	}
	wg.Wait()

	records, err := bp.ListSignedTransactions(testPkHash)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

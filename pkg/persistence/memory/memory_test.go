package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPkHash = "sync:1111111111111111111111111111111111111111"

func newRecord(pkHash string, txType types.TransactionType, nonce uint32) *persistence.SignedTransactionRecord {
	return &persistence.SignedTransactionRecord{
		Id:            fmt.Sprintf("id-%d", nonce),
		PublicKeyHash: pkHash,
		TxType:        txType,
		Nonce:         nonce,
		Message:       "05",
		Signature:     &types.Signature{PubKey: "aa", Signature: "bb"},
		Transaction:   []byte(`{"nonce":1}`),
		SignedAt:      1700000000,
	}
}

func TestMemoryPersistence_SaveAndLoad(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	defer func() { _ = mp.Close() }()

	record := newRecord(testPkHash, types.TransactionType_Transfer, 1)
	require.NoError(t, mp.SaveSignedTransaction(record))

	loaded, err := mp.LoadSignedTransaction(testPkHash, types.TransactionType_Transfer, 1)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.Id, loaded.Id)
	assert.Equal(t, record.Signature, loaded.Signature)
}

func TestMemoryPersistence_Load_NotFound(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	defer func() { _ = mp.Close() }()

	loaded, err := mp.LoadSignedTransaction(testPkHash, types.TransactionType_Withdraw, 99)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryPersistence_Save_Invalid(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	defer func() { _ = mp.Close() }()

	assert.Error(t, mp.SaveSignedTransaction(nil))
	assert.Error(t, mp.SaveSignedTransaction(&persistence.SignedTransactionRecord{PublicKeyHash: testPkHash}))
}

func TestMemoryPersistence_Overwrite(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	defer func() { _ = mp.Close() }()

	first := newRecord(testPkHash, types.TransactionType_Transfer, 1)
	second := newRecord(testPkHash, types.TransactionType_Transfer, 1)
	second.Id = "resigned"
	second.Signature = &types.Signature{PubKey: "aa", Signature: "cc"}

	require.NoError(t, mp.SaveSignedTransaction(first))
	require.NoError(t, mp.SaveSignedTransaction(second))

	records, err := mp.ListSignedTransactions(testPkHash)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "resigned", records[0].Id)
}

func TestMemoryPersistence_List(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	defer func() { _ = mp.Close() }()

	other := "sync:2222222222222222222222222222222222222222"
	require.NoError(t, mp.SaveSignedTransaction(newRecord(testPkHash, types.TransactionType_Withdraw, 3)))
	require.NoError(t, mp.SaveSignedTransaction(newRecord(testPkHash, types.TransactionType_Transfer, 1)))
	require.NoError(t, mp.SaveSignedTransaction(newRecord(testPkHash, types.TransactionType_ForcedExit, 2)))
	require.NoError(t, mp.SaveSignedTransaction(newRecord(other, types.TransactionType_Transfer, 0)))

	records, err := mp.ListSignedTransactions(testPkHash)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []uint32{1, 2, 3}, []uint32{records[0].Nonce, records[1].Nonce, records[2].Nonce})

	empty, err := mp.ListSignedTransactions("sync:3333333333333333333333333333333333333333")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryPersistence_Delete(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	defer func() { _ = mp.Close() }()

	require.NoError(t, mp.SaveSignedTransaction(newRecord(testPkHash, types.TransactionType_Transfer, 1)))
	require.NoError(t, mp.DeleteSignedTransaction(testPkHash, types.TransactionType_Transfer, 1))
	require.NoError(t, mp.DeleteSignedTransaction(testPkHash, types.TransactionType_Transfer, 1))

	loaded, err := mp.LoadSignedTransaction(testPkHash, types.TransactionType_Transfer, 1)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryPersistence_DeepCopy(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	defer func() { _ = mp.Close() }()

	record := newRecord(testPkHash, types.TransactionType_Transfer, 1)
	require.NoError(t, mp.SaveSignedTransaction(record))

	record.Signature.Signature = "mutated"
	loaded, err := mp.LoadSignedTransaction(testPkHash, types.TransactionType_Transfer, 1)
	require.NoError(t, err)
	assert.Equal(t, "bb", loaded.Signature.Signature)

	loaded.Signature.Signature = "mutated"
	again, err := mp.LoadSignedTransaction(testPkHash, types.TransactionType_Transfer, 1)
	require.NoError(t, err)
	assert.Equal(t, "bb", again.Signature.Signature)
}

func TestMemoryPersistence_Closed(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	require.NoError(t, mp.HealthCheck())
	require.NoError(t, mp.Close())
	require.NoError(t, mp.Close())

	assert.ErrorIs(t, mp.HealthCheck(), persistence.ErrJournalClosed)
	assert.Error(t, mp.SaveSignedTransaction(newRecord(testPkHash, types.TransactionType_Transfer, 1)))
	_, err := mp.LoadSignedTransaction(testPkHash, types.TransactionType_Transfer, 1)
	assert.Error(t, err)
	_, err = mp.ListSignedTransactions(testPkHash)
	assert.Error(t, err)
	assert.Error(t, mp.DeleteSignedTransaction(testPkHash, types.TransactionType_Transfer, 1))
}

func TestMemoryPersistence_Concurrent(t *testing.T) {
	mp := NewMemoryPersistence(zap.NewNop())
	defer func() { _ = mp.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(nonce uint32) {
			defer wg.Done()
			_ = mp.SaveSignedTransaction(newRecord(testPkHash, types.TransactionType_Transfer, nonce))
			_, _ = mp.ListSignedTransactions(testPkHash)
		}(uint32(i))
	}
	wg.Wait()

	records, err := mp.ListSignedTransactions(testPkHash)
	require.NoError(t, err)
	assert.Len(t, records, 50)
}

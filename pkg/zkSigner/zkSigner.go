package zkSigner

import (
	"fmt"

	"github.com/Layr-Labs/zksync-signer-go/pkg/keyManager"
	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence"
	"github.com/Layr-Labs/zksync-signer-go/pkg/transactionEncoder"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"go.uber.org/zap"
)

// TransactionSigningError is returned by every Sign* method. TxType names the
// variant that failed and Err is the underlying cause.
type TransactionSigningError struct {
	TxType types.TransactionType
	Err    error
}

func (e *TransactionSigningError) Error() string {
	return fmt.Sprintf("failed to sign %s transaction: %v", e.TxType, e.Err)
}

func (e *TransactionSigningError) Unwrap() error {
	return e.Err
}

// ZkSigner encodes transactions into their canonical message and attaches a
// signature from its KeyManager. A transaction is either returned fully
// signed or left untouched.
type ZkSigner struct {
	keyManager *keyManager.KeyManager
	journal    persistence.ISignaturePersistence
	logger     *zap.Logger
}

// NewZkSigner creates a signer. journal may be nil.
func NewZkSigner(km *keyManager.KeyManager, journal persistence.ISignaturePersistence, logger *zap.Logger) *ZkSigner {
	return &ZkSigner{
		keyManager: km,
		journal:    journal,
		logger:     logger,
	}
}

func (s *ZkSigner) GetPublicKeyHash() string {
	return s.keyManager.GetPublicKeyHash()
}

func (s *ZkSigner) GetPublicKey() string {
	return s.keyManager.GetPublicKey()
}

func (s *ZkSigner) SignChangePubKey(tx *types.ChangePubKey) (*types.ChangePubKey, error) {
	return signWith(s, types.TransactionType_ChangePubKey, tx, transactionEncoder.EncodeChangePubKey)
}

func (s *ZkSigner) SignTransfer(tx *types.Transfer) (*types.Transfer, error) {
	return signWith(s, types.TransactionType_Transfer, tx, transactionEncoder.EncodeTransfer)
}

func (s *ZkSigner) SignWithdraw(tx *types.Withdraw) (*types.Withdraw, error) {
	return signWith(s, types.TransactionType_Withdraw, tx, transactionEncoder.EncodeWithdraw)
}

func (s *ZkSigner) SignForcedExit(tx *types.ForcedExit) (*types.ForcedExit, error) {
	return signWith(s, types.TransactionType_ForcedExit, tx, transactionEncoder.EncodeForcedExit)
}

// SignTransaction signs any supported variant in place.
func (s *ZkSigner) SignTransaction(tx types.Transaction) (types.Transaction, error) {
	switch t := tx.(type) {
	case *types.ChangePubKey:
		return s.SignChangePubKey(t)
	case *types.Transfer:
		return s.SignTransfer(t)
	case *types.Withdraw:
		return s.SignWithdraw(t)
	case *types.ForcedExit:
		return s.SignForcedExit(t)
	}
	return nil, &TransactionSigningError{
		TxType: "unknown",
		Err:    fmt.Errorf("unsupported transaction type %T", tx),
	}
}

// VerifyTransaction re-encodes tx and checks its attached signature against
// this signer's key.
func (s *ZkSigner) VerifyTransaction(tx types.Transaction) (bool, error) {
	if tx == nil || tx.GetSignature() == nil {
		return false, fmt.Errorf("transaction is not signed")
	}
	message, err := transactionEncoder.Encode(tx)
	if err != nil {
		return false, err
	}
	return s.keyManager.Verify(message, tx.GetSignature())
}

func signWith[T types.Transaction](s *ZkSigner, txType types.TransactionType, tx T, encode func(T) ([]byte, error)) (T, error) {
	message, err := encode(tx)
	if err != nil {
		return tx, &TransactionSigningError{TxType: txType, Err: err}
	}

	sig, err := s.keyManager.Sign(message)
	if err != nil {
		return tx, &TransactionSigningError{TxType: txType, Err: err}
	}

	// re-signing overwrites any previous signature
	tx.SetSignature(sig)

	s.logger.Sugar().Debugw("Signed transaction",
		"type", txType,
		"nonce", types.GetNonce(tx),
		"publicKeyHash", s.keyManager.GetPublicKeyHash(),
	)

	s.record(tx, message)
	return tx, nil
}

// record writes tx to the journal. Journal failures never fail signing.
func (s *ZkSigner) record(tx types.Transaction, message []byte) {
	if s.journal == nil {
		return
	}

	entry, err := persistence.NewSignedTransactionRecord(s.keyManager.GetPublicKeyHash(), tx, message)
	if err != nil {
		s.logger.Sugar().Warnw("Failed to build journal record", "type", tx.GetType(), "error", err)
		return
	}
	if err := s.journal.SaveSignedTransaction(entry); err != nil {
		s.logger.Sugar().Warnw("Failed to journal signed transaction",
			"type", tx.GetType(),
			"nonce", entry.Nonce,
			"error", err,
		)
	}
}

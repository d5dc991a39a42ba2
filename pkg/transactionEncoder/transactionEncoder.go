package transactionEncoder

import (
	"fmt"
	"math/big"

	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/Layr-Labs/zksync-signer-go/pkg/util"
)

// Opcodes identifying each transaction variant in the signed message.
const (
	OpcodeWithdraw     byte = 0x03
	OpcodeTransfer     byte = 0x05
	OpcodeChangePubKey byte = 0x07
	OpcodeForcedExit   byte = 0x08
)

// fieldEncoder appends one field of a transaction to the message.
type fieldEncoder[T any] struct {
	name   string
	encode func(tx T) ([]byte, error)
}

// layout is the opcode and ordered field list of one variant.
type layout[T any] struct {
	txType types.TransactionType
	opcode byte
	fields []fieldEncoder[T]
}

func (l layout[T]) encode(tx T) ([]byte, error) {
	msg := []byte{l.opcode}
	for _, f := range l.fields {
		b, err := f.encode(tx)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s.%s: %w", l.txType, f.name, err)
		}
		msg = append(msg, b...)
	}
	return msg, nil
}

func accountId[T any](name string, get func(T) uint32) fieldEncoder[T] {
	return fieldEncoder[T]{name, func(tx T) ([]byte, error) { return util.AccountIdToBytes(get(tx)), nil }}
}

func address[T any](name string, get func(T) string) fieldEncoder[T] {
	return fieldEncoder[T]{name, func(tx T) ([]byte, error) { return util.AddressToBytes(get(tx)) }}
}

func pubKeyHash[T any](name string, get func(T) string) fieldEncoder[T] {
	return fieldEncoder[T]{name, func(tx T) ([]byte, error) { return util.PubKeyHashToBytes(get(tx)) }}
}

func tokenId[T any](name string, get func(T) uint16) fieldEncoder[T] {
	return fieldEncoder[T]{name, func(tx T) ([]byte, error) { return util.TokenIdToBytes(get(tx)), nil }}
}

func packedFee[T any](name string, get func(T) *big.Int) fieldEncoder[T] {
	return fieldEncoder[T]{name, func(tx T) ([]byte, error) { return util.PackFee(get(tx)) }}
}

func packedAmount[T any](name string, get func(T) *big.Int) fieldEncoder[T] {
	return fieldEncoder[T]{name, func(tx T) ([]byte, error) { return util.PackAmount(get(tx)) }}
}

func fullAmount[T any](name string, get func(T) *big.Int) fieldEncoder[T] {
	return fieldEncoder[T]{name, func(tx T) ([]byte, error) { return util.AmountFullToBytes(get(tx)) }}
}

func nonce[T any](name string, get func(T) uint32) fieldEncoder[T] {
	return fieldEncoder[T]{name, func(tx T) ([]byte, error) { return util.NonceToBytes(get(tx)), nil }}
}

var changePubKeyLayout = layout[*types.ChangePubKey]{
	txType: types.TransactionType_ChangePubKey,
	opcode: OpcodeChangePubKey,
	fields: []fieldEncoder[*types.ChangePubKey]{
		accountId("accountId", func(tx *types.ChangePubKey) uint32 { return tx.AccountId }),
		address("account", func(tx *types.ChangePubKey) string { return tx.Account }),
		pubKeyHash("newPkHash", func(tx *types.ChangePubKey) string { return tx.NewPkHash }),
		tokenId("feeToken", func(tx *types.ChangePubKey) uint16 { return tx.FeeToken }),
		packedFee("fee", func(tx *types.ChangePubKey) *big.Int { return tx.Fee }),
		nonce("nonce", func(tx *types.ChangePubKey) uint32 { return tx.Nonce }),
	},
}

var transferLayout = layout[*types.Transfer]{
	txType: types.TransactionType_Transfer,
	opcode: OpcodeTransfer,
	fields: []fieldEncoder[*types.Transfer]{
		accountId("accountId", func(tx *types.Transfer) uint32 { return tx.AccountId }),
		address("from", func(tx *types.Transfer) string { return tx.From }),
		address("to", func(tx *types.Transfer) string { return tx.To }),
		tokenId("token", func(tx *types.Transfer) uint16 { return tx.Token }),
		packedAmount("amount", func(tx *types.Transfer) *big.Int { return tx.Amount }),
		packedFee("fee", func(tx *types.Transfer) *big.Int { return tx.Fee }),
		nonce("nonce", func(tx *types.Transfer) uint32 { return tx.Nonce }),
	},
}

var withdrawLayout = layout[*types.Withdraw]{
	txType: types.TransactionType_Withdraw,
	opcode: OpcodeWithdraw,
	fields: []fieldEncoder[*types.Withdraw]{
		accountId("accountId", func(tx *types.Withdraw) uint32 { return tx.AccountId }),
		address("from", func(tx *types.Withdraw) string { return tx.From }),
		address("to", func(tx *types.Withdraw) string { return tx.To }),
		tokenId("token", func(tx *types.Withdraw) uint16 { return tx.Token }),
		fullAmount("amount", func(tx *types.Withdraw) *big.Int { return tx.Amount }),
		packedFee("fee", func(tx *types.Withdraw) *big.Int { return tx.Fee }),
		nonce("nonce", func(tx *types.Withdraw) uint32 { return tx.Nonce }),
	},
}

var forcedExitLayout = layout[*types.ForcedExit]{
	txType: types.TransactionType_ForcedExit,
	opcode: OpcodeForcedExit,
	fields: []fieldEncoder[*types.ForcedExit]{
		accountId("initiatorAccountId", func(tx *types.ForcedExit) uint32 { return tx.InitiatorAccountId }),
		address("target", func(tx *types.ForcedExit) string { return tx.Target }),
		tokenId("token", func(tx *types.ForcedExit) uint16 { return tx.Token }),
		packedFee("fee", func(tx *types.ForcedExit) *big.Int { return tx.Fee }),
		nonce("nonce", func(tx *types.ForcedExit) uint32 { return tx.Nonce }),
	},
}

func EncodeChangePubKey(tx *types.ChangePubKey) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("%s transaction is nil", types.TransactionType_ChangePubKey)
	}
	return changePubKeyLayout.encode(tx)
}

func EncodeTransfer(tx *types.Transfer) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("%s transaction is nil", types.TransactionType_Transfer)
	}
	return transferLayout.encode(tx)
}

func EncodeWithdraw(tx *types.Withdraw) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("%s transaction is nil", types.TransactionType_Withdraw)
	}
	return withdrawLayout.encode(tx)
}

func EncodeForcedExit(tx *types.ForcedExit) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("%s transaction is nil", types.TransactionType_ForcedExit)
	}
	return forcedExitLayout.encode(tx)
}

// Encode returns the canonical message bytes of any supported variant.
func Encode(tx types.Transaction) ([]byte, error) {
	switch t := tx.(type) {
	case *types.ChangePubKey:
		return EncodeChangePubKey(t)
	case *types.Transfer:
		return EncodeTransfer(t)
	case *types.Withdraw:
		return EncodeWithdraw(t)
	case *types.ForcedExit:
		return EncodeForcedExit(t)
	default:
		return nil, fmt.Errorf("unsupported transaction type %T", tx)
	}
}

// Opcode returns the opcode of txType.
func Opcode(txType types.TransactionType) (byte, error) {
	switch txType {
	case types.TransactionType_ChangePubKey:
		return OpcodeChangePubKey, nil
	case types.TransactionType_Transfer:
		return OpcodeTransfer, nil
	case types.TransactionType_Withdraw:
		return OpcodeWithdraw, nil
	case types.TransactionType_ForcedExit:
		return OpcodeForcedExit, nil
	}
	return 0, fmt.Errorf("unknown transaction type %q", txType)
}

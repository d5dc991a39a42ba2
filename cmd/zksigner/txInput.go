package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/Layr-Labs/zksync-signer-go/pkg/util"
	"github.com/shopspring/decimal"
)

// txInput is the JSON file accepted by `zksigner sign`. Amount and fee are
// token units with up to `decimals` fractional digits, e.g. "1.5".
type txInput struct {
	AccountId          uint32           `json:"accountId"`
	InitiatorAccountId uint32           `json:"initiatorAccountId"`
	Account            string           `json:"account"`
	NewPkHash          string           `json:"newPkHash"`
	From               string           `json:"from"`
	To                 string           `json:"to"`
	Target             string           `json:"target"`
	Token              uint16           `json:"token"`
	FeeToken           uint16           `json:"feeToken"`
	Amount             *decimal.Decimal `json:"amount"`
	Fee                *decimal.Decimal `json:"fee"`
	Nonce              uint32           `json:"nonce"`
}

type amountOptions struct {
	decimals int32
	// round applies the closest packable rounding before signing
	round bool
}

func readTxInput(path string) (*txInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction file: %w", err)
	}
	return parseTxInput(data)
}

func parseTxInput(data []byte) (*txInput, error) {
	var in txInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &in, nil
}

// toBaseUnits converts a token amount to integer base units.
func toBaseUnits(name string, value *decimal.Decimal, decimals int32) (*big.Int, error) {
	if value == nil {
		return nil, fmt.Errorf("%s is required", name)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("%s cannot be negative", name)
	}
	shifted := value.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%s %s has more than %d decimal places", name, value.String(), decimals)
	}
	return shifted.BigInt(), nil
}

// fromBaseUnits formats base units as a token amount.
func fromBaseUnits(value *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(value, -decimals).String()
}

func (in *txInput) fee(opts amountOptions) (*big.Int, error) {
	fee, err := toBaseUnits("fee", in.Fee, opts.decimals)
	if err != nil {
		return nil, err
	}
	if opts.round {
		return util.ClosestPackableFee(fee)
	}
	return fee, nil
}

func (in *txInput) packedAmount(opts amountOptions) (*big.Int, error) {
	amount, err := toBaseUnits("amount", in.Amount, opts.decimals)
	if err != nil {
		return nil, err
	}
	if opts.round {
		return util.ClosestPackableAmount(amount)
	}
	return amount, nil
}

// toTransaction builds the variant named by txType.
func (in *txInput) toTransaction(txType string, opts amountOptions) (types.Transaction, error) {
	fee, err := in.fee(opts)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(txType) {
	case "changepubkey":
		return &types.ChangePubKey{
			AccountId: in.AccountId,
			Account:   in.Account,
			NewPkHash: in.NewPkHash,
			FeeToken:  in.FeeToken,
			Fee:       fee,
			Nonce:     in.Nonce,
		}, nil
	case "transfer":
		amount, err := in.packedAmount(opts)
		if err != nil {
			return nil, err
		}
		return &types.Transfer{
			AccountId: in.AccountId,
			From:      in.From,
			To:        in.To,
			Token:     in.Token,
			Amount:    amount,
			Fee:       fee,
			Nonce:     in.Nonce,
		}, nil
	case "withdraw":
		// withdrawals carry the full amount, no rounding
		amount, err := toBaseUnits("amount", in.Amount, opts.decimals)
		if err != nil {
			return nil, err
		}
		return &types.Withdraw{
			AccountId: in.AccountId,
			From:      in.From,
			To:        in.To,
			Token:     in.Token,
			Amount:    amount,
			Fee:       fee,
			Nonce:     in.Nonce,
		}, nil
	case "forcedexit":
		return &types.ForcedExit{
			InitiatorAccountId: in.InitiatorAccountId,
			Target:             in.Target,
			Token:              in.Token,
			Fee:                fee,
			Nonce:              in.Nonce,
		}, nil
	}
	return nil, fmt.Errorf("unknown transaction type %q, expected one of changePubKey, transfer, withdraw, forcedExit", txType)
}

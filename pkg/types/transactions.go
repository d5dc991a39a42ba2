package types

import (
	"math/big"
)

type TransactionType string

const (
	TransactionType_ChangePubKey TransactionType = "ChangePubKey"
	TransactionType_Transfer     TransactionType = "Transfer"
	TransactionType_Withdraw     TransactionType = "Withdraw"
	TransactionType_ForcedExit   TransactionType = "ForcedExit"
)

func (t TransactionType) String() string {
	return string(t)
}

// Signature is the zkSync signature attached to a signed transaction. Both
// fields are hex without a 0x prefix.
type Signature struct {
	PubKey    string `json:"pubKey"`
	Signature string `json:"signature"`
}

// Transaction is implemented by every signable transaction variant.
type Transaction interface {
	GetType() TransactionType
	GetSignature() *Signature
	SetSignature(sig *Signature)
}

type ChangePubKey struct {
	AccountId uint32     `json:"accountId"`
	Account   string     `json:"account"`
	NewPkHash string     `json:"newPkHash"` // sync:<40 hex chars>
	FeeToken  uint16     `json:"feeToken"`
	Fee       *big.Int   `json:"fee"`
	Nonce     uint32     `json:"nonce"`
	Signature *Signature `json:"signature,omitempty"`
}

func (c *ChangePubKey) GetType() TransactionType    { return TransactionType_ChangePubKey }
func (c *ChangePubKey) GetSignature() *Signature    { return c.Signature }
func (c *ChangePubKey) SetSignature(sig *Signature) { c.Signature = sig }

type Transfer struct {
	AccountId uint32     `json:"accountId"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Token     uint16     `json:"token"`
	Amount    *big.Int   `json:"amount"`
	Fee       *big.Int   `json:"fee"`
	Nonce     uint32     `json:"nonce"`
	Signature *Signature `json:"signature,omitempty"`
}

func (t *Transfer) GetType() TransactionType    { return TransactionType_Transfer }
func (t *Transfer) GetSignature() *Signature    { return t.Signature }
func (t *Transfer) SetSignature(sig *Signature) { t.Signature = sig }

type Withdraw struct {
	AccountId uint32     `json:"accountId"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Token     uint16     `json:"token"`
	Amount    *big.Int   `json:"amount"`
	Fee       *big.Int   `json:"fee"`
	Nonce     uint32     `json:"nonce"`
	Signature *Signature `json:"signature,omitempty"`
}

func (w *Withdraw) GetType() TransactionType    { return TransactionType_Withdraw }
func (w *Withdraw) GetSignature() *Signature    { return w.Signature }
func (w *Withdraw) SetSignature(sig *Signature) { w.Signature = sig }

type ForcedExit struct {
	InitiatorAccountId uint32     `json:"initiatorAccountId"`
	Target             string     `json:"target"`
	Token              uint16     `json:"token"`
	Fee                *big.Int   `json:"fee"`
	Nonce              uint32     `json:"nonce"`
	Signature          *Signature `json:"signature,omitempty"`
}

func (f *ForcedExit) GetType() TransactionType    { return TransactionType_ForcedExit }
func (f *ForcedExit) GetSignature() *Signature    { return f.Signature }
func (f *ForcedExit) SetSignature(sig *Signature) { f.Signature = sig }

// GetNonce returns the nonce of any known variant, 0 otherwise.
func GetNonce(tx Transaction) uint32 {
	switch t := tx.(type) {
	case *ChangePubKey:
		return t.Nonce
	case *Transfer:
		return t.Nonce
	case *Withdraw:
		return t.Nonce
	case *ForcedExit:
		return t.Nonce
	}
	return 0
}

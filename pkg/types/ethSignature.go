package types

type SignatureType string

const (
	SignatureType_EthereumSignature SignatureType = "EthereumSignature"
	SignatureType_EIP1271Signature  SignatureType = "EIP1271Signature"
)

// EthSignature is a signature produced by an Ethereum account over a text
// message. Signature is 0x-prefixed hex.
type EthSignature struct {
	Type      SignatureType `json:"type"`
	Signature string        `json:"signature"`
}

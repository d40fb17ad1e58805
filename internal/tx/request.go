// Package tx defines the unsigned-transaction envelope write tools return.
// The adapter never signs or sends anything; it hands the encoded call to an
// external signer and the preview fields to whoever renders the result.
package tx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Request is an unsigned transaction request. Value is a decimal wei string
// and Data is 0x-prefixed calldata, both bit-for-bit what the chain expects.
type Request struct {
	Action  string            `json:"action"`
	Chain   string            `json:"chain"`
	To      string            `json:"to"`
	Value   string            `json:"value"`
	Data    string            `json:"data"`
	Preview map[string]string `json:"preview,omitempty"`
}

// NewRequest builds a request envelope. A nil value means zero.
func NewRequest(action, chain string, to common.Address, value *big.Int, data []byte) *Request {
	if value == nil {
		value = big.NewInt(0)
	}
	return &Request{
		Action:  action,
		Chain:   chain,
		To:      to.Hex(),
		Value:   value.String(),
		Data:    hexutil.Encode(data),
		Preview: make(map[string]string),
	}
}

// WithPreview attaches a human-readable preview field and returns the
// request for chaining.
func (r *Request) WithPreview(key, value string) *Request {
	r.Preview[key] = value
	return r
}

// CallMsg converts the envelope back into a call message for gas estimation.
// From matters when the call's outcome depends on the sender (allowances,
// balances), so callers should pass the address that will sign.
func (r *Request) CallMsg(from common.Address) (ethereum.CallMsg, error) {
	if !common.IsHexAddress(r.To) {
		return ethereum.CallMsg{}, fmt.Errorf("invalid to address: %q", r.To)
	}
	to := common.HexToAddress(r.To)

	value, ok := new(big.Int).SetString(r.Value, 10)
	if !ok || value.Sign() < 0 {
		return ethereum.CallMsg{}, fmt.Errorf("invalid value: %q", r.Value)
	}

	data, err := hexutil.Decode(r.Data)
	if err != nil {
		return ethereum.CallMsg{}, fmt.Errorf("invalid calldata: %w", err)
	}

	return ethereum.CallMsg{From: from, To: &to, Value: value, Data: data}, nil
}

// Describe returns a one-line summary for logs.
func (r *Request) Describe() string {
	return fmt.Sprintf("%s on %s -> %s (value %s wei, %d calldata bytes)",
		r.Action, r.Chain, r.To, r.Value, (len(r.Data)-2)/2)
}

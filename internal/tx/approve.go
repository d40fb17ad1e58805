package tx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yolodolo42/fluidctl/internal/protocol"
)

// EncodeApprove encodes an ERC20 approve so the caller can grant a protocol
// contract an allowance before a deposit, repay or swap. Approving the
// native-token sentinel is rejected: native transfers carry value instead.
func EncodeApprove(chainName string, token, spender common.Address, amount *big.Int) (*Request, error) {
	if protocol.IsNative(token) {
		return nil, fmt.Errorf("native token needs no approval")
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("approve amount must be non-negative")
	}

	data, err := protocol.ERC20ABI.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approve: %w", err)
	}

	return NewRequest("approve_token", chainName, token, nil, data).
		WithPreview("token", token.Hex()).
		WithPreview("spender", spender.Hex()).
		WithPreview("amount_raw", amount.String()), nil
}

package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/fluidctl/internal/protocol"
	"github.com/yolodolo42/fluidctl/internal/tx"
)

const (
	testReceiver = "0x2222222222222222222222222222222222222222"
	testOwner    = "0x3333333333333333333333333333333333333333"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	t.Cleanup(r.Close)
	return r
}

func execute(t *testing.T, r *Registry, tool, input string) (string, error) {
	t.Helper()
	return r.Execute(context.Background(), tool, json.RawMessage(input))
}

func decodeRequest(t *testing.T, result string) *tx.Request {
	t.Helper()
	var req tx.Request
	require.NoError(t, json.Unmarshal([]byte(result), &req))
	return &req
}

func TestRegistryDispatch(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("every tool has a handler", func(t *testing.T) {
		for _, tool := range r.Tools() {
			_, ok := r.handlers[tool.Name]
			assert.True(t, ok, "tool %s has no handler", tool.Name)
		}
		assert.Len(t, r.Tools(), len(r.handlers))
	})

	t.Run("tool names are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, tool := range r.Tools() {
			assert.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
			seen[tool.Name] = true
		}
	})

	t.Run("schemas are valid JSON", func(t *testing.T) {
		for _, tool := range r.Tools() {
			assert.True(t, json.Valid(tool.InputSchema), "tool %s schema", tool.Name)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := execute(t, r, "transfer_everything", `{}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown tool")
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := execute(t, r, "deposit", `{"chain": 12}`)
		assert.Error(t, err)
	})
}

func TestDepositTool(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("returns an unsigned tx request", func(t *testing.T) {
		result, err := execute(t, r, "deposit",
			`{"chain": "ethereum", "market": "fUSDC", "amount": "100", "receiver": "`+testReceiver+`"}`)
		require.NoError(t, err)

		req := decodeRequest(t, result)
		assert.Equal(t, "deposit", req.Action)
		assert.Equal(t, "ethereum", req.Chain)
		assert.Equal(t, "0", req.Value)
		assert.True(t, strings.HasPrefix(req.Data, "0x6e553f65"), "deposit selector, got %s", req.Data[:10])
		assert.Equal(t, "100 USDC", req.Preview["amount"])

		dep, err := protocol.GetDeployment("ethereum")
		require.NoError(t, err)
		market, err := dep.Market("fUSDC")
		require.NoError(t, err)
		assert.Equal(t, market.FToken.Hex(), req.To)
	})

	t.Run("invalid receiver fails before any network call", func(t *testing.T) {
		_, err := execute(t, r, "deposit",
			`{"chain": "ethereum", "market": "fUSDC", "amount": "100", "receiver": "not-an-address"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid receiver address")
	})

	t.Run("unknown market", func(t *testing.T) {
		_, err := execute(t, r, "deposit",
			`{"chain": "ethereum", "market": "fDOGE", "amount": "100", "receiver": "`+testReceiver+`"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown lending market")
	})

	t.Run("undeployed chain", func(t *testing.T) {
		_, err := execute(t, r, "deposit",
			`{"chain": "sepolia", "market": "fUSDC", "amount": "100", "receiver": "`+testReceiver+`"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not deployed")
	})

	t.Run("amount with too many decimals", func(t *testing.T) {
		_, err := execute(t, r, "deposit",
			`{"chain": "ethereum", "market": "fUSDC", "amount": "1.1234567", "receiver": "`+testReceiver+`"}`)
		assert.Error(t, err)
	})
}

func TestWithdrawTool(t *testing.T) {
	r := newTestRegistry(t)

	result, err := execute(t, r, "withdraw",
		`{"chain": "ethereum", "market": "fWETH", "amount": "0.5", "receiver": "`+testReceiver+`", "owner": "`+testOwner+`"}`)
	require.NoError(t, err)

	req := decodeRequest(t, result)
	assert.Equal(t, "withdraw", req.Action)
	assert.True(t, strings.HasPrefix(req.Data, "0xb460af94"))
	assert.Equal(t, "0.5 WETH", req.Preview["amount"])
}

func TestVaultTools(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("supply_collateral with native token sets value", func(t *testing.T) {
		result, err := execute(t, r, "supply_collateral",
			`{"chain": "ethereum", "vault": "ETH/USDC", "amount": "2", "to": "`+testReceiver+`"}`)
		require.NoError(t, err)

		req := decodeRequest(t, result)
		assert.Equal(t, "supply_collateral", req.Action)
		assert.Equal(t, "2000000000000000000", req.Value)
		assert.Equal(t, "0", req.Preview["nft_id"], "missing nft_id defaults to mint")
	})

	t.Run("borrow scales by the borrow token decimals", func(t *testing.T) {
		result, err := execute(t, r, "borrow",
			`{"chain": "ethereum", "vault": "ETH/USDC", "nft_id": "7", "amount": "3000", "to": "`+testReceiver+`"}`)
		require.NoError(t, err)

		req := decodeRequest(t, result)
		assert.Equal(t, "borrow", req.Action)
		assert.Equal(t, "3000 USDC", req.Preview["debt_delta"])
		assert.Equal(t, "7", req.Preview["nft_id"])
	})

	t.Run("withdraw_collateral encodes a negative delta", func(t *testing.T) {
		result, err := execute(t, r, "withdraw_collateral",
			`{"chain": "ethereum", "vault": "ETH/USDC", "nft_id": "7", "amount": "0.5", "to": "`+testReceiver+`"}`)
		require.NoError(t, err)

		req := decodeRequest(t, result)
		assert.Equal(t, "withdraw_collateral", req.Action)
		assert.Equal(t, "-0.5 ETH", req.Preview["collateral_delta"])
		assert.Equal(t, "0", req.Value)
	})

	t.Run("repay", func(t *testing.T) {
		result, err := execute(t, r, "repay",
			`{"chain": "ethereum", "vault": "ETH/USDC", "nft_id": "7", "amount": "1000", "to": "`+testReceiver+`"}`)
		require.NoError(t, err)

		req := decodeRequest(t, result)
		assert.Equal(t, "repay", req.Action)
		assert.Equal(t, "-1000 USDC", req.Preview["debt_delta"])
	})

	t.Run("invalid nft_id", func(t *testing.T) {
		_, err := execute(t, r, "borrow",
			`{"chain": "ethereum", "vault": "ETH/USDC", "nft_id": "seven", "amount": "1", "to": "`+testReceiver+`"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid nft_id")
	})

	t.Run("unknown vault", func(t *testing.T) {
		_, err := execute(t, r, "repay",
			`{"chain": "ethereum", "vault": "DOGE/USDC", "amount": "1", "to": "`+testReceiver+`"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown vault")
	})
}

func TestSwapTool(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("native in-token sets value", func(t *testing.T) {
		result, err := execute(t, r, "swap",
			`{"chain": "ethereum", "pool": "wstETH-ETH", "token_in": "ETH", "amount_in": "1", "to": "`+testReceiver+`"}`)
		require.NoError(t, err)

		req := decodeRequest(t, result)
		assert.Equal(t, "swap", req.Action)
		assert.Equal(t, "1000000000000000000", req.Value)
		assert.Equal(t, "1 ETH", req.Preview["amount_in"])
	})

	t.Run("min_out scales by the out-token decimals", func(t *testing.T) {
		result, err := execute(t, r, "swap",
			`{"chain": "ethereum", "pool": "USDC-USDT", "token_in": "USDC", "amount_in": "100", "min_out": "99.5", "to": "`+testReceiver+`"}`)
		require.NoError(t, err)

		req := decodeRequest(t, result)
		assert.Equal(t, "0", req.Value)
		assert.Equal(t, "99.5 USDT", req.Preview["min_out"])
	})

	t.Run("token_in must be a pool side", func(t *testing.T) {
		_, err := execute(t, r, "swap",
			`{"chain": "ethereum", "pool": "USDC-USDT", "token_in": "DOGE", "amount_in": "1", "to": "`+testReceiver+`"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a side of pool")
	})
}

func TestReadToolValidation(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("get_lending_markets on undeployed chain", func(t *testing.T) {
		_, err := execute(t, r, "get_lending_markets", `{"chain": "sepolia"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not deployed")
	})

	t.Run("get_vault_positions rejects bad address", func(t *testing.T) {
		_, err := execute(t, r, "get_vault_positions", `{"chain": "ethereum", "address": "0x123"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid owner address")
	})

	t.Run("get_token_balance rejects bad token", func(t *testing.T) {
		_, err := execute(t, r, "get_token_balance",
			`{"chain": "ethereum", "address": "`+testReceiver+`", "token": "doge"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token address")
	})

	t.Run("estimate_swap rejects unknown pool before dialing", func(t *testing.T) {
		_, err := execute(t, r, "estimate_swap",
			`{"chain": "ethereum", "pool": "DOGE-USDT", "token_in": "DOGE", "amount_in": "1"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown pool")
	})

	t.Run("approve_token rejects bad spender", func(t *testing.T) {
		_, err := execute(t, r, "approve_token",
			`{"chain": "ethereum", "token": "`+testReceiver+`", "spender": "nope", "amount": "1"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid spender address")
	})
}

func TestChainInfoTools(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("get_chain_info reports deployment", func(t *testing.T) {
		result, err := execute(t, r, "get_chain_info", `{"chain": "ethereum"}`)
		require.NoError(t, err)

		var info struct {
			Chain    string   `json:"chain"`
			ChainID  int64    `json:"chain_id"`
			Deployed bool     `json:"protocol_deployed"`
			Markets  []string `json:"markets"`
		}
		require.NoError(t, json.Unmarshal([]byte(result), &info))
		assert.Equal(t, "ethereum", info.Chain)
		assert.Equal(t, int64(1), info.ChainID)
		assert.True(t, info.Deployed)
		assert.Contains(t, info.Markets, "fUSDC")
	})

	t.Run("sepolia has no deployment", func(t *testing.T) {
		result, err := execute(t, r, "get_chain_info", `{"chain": "sepolia"}`)
		require.NoError(t, err)

		var info struct {
			Deployed bool `json:"protocol_deployed"`
		}
		require.NoError(t, json.Unmarshal([]byte(result), &info))
		assert.False(t, info.Deployed)
	})

	t.Run("list_chains returns every chain in stable order", func(t *testing.T) {
		result, err := execute(t, r, "list_chains", `{}`)
		require.NoError(t, err)

		var infos []struct {
			Chain string `json:"chain"`
		}
		require.NoError(t, json.Unmarshal([]byte(result), &infos))
		require.Len(t, infos, 4)

		names := make([]string, 0, len(infos))
		for _, info := range infos {
			names = append(names, info.Chain)
		}
		assert.Equal(t, []string{"arbitrum", "base", "ethereum", "sepolia"}, names)
	})
}

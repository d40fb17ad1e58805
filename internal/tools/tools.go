package tools

import (
	"context"
	"encoding/json"
)

// Tool represents a tool that can be called by an agent
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Handler is a function that handles a tool call
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// ProtocolTools returns the protocol adapter's tool definitions. Read tools
// query resolver contracts; write tools return unsigned transaction requests
// for an external signer.
func ProtocolTools() []Tool {
	return []Tool{
		{
			Name:        "list_chains",
			Description: "List all supported chains and whether the protocol is deployed on each",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
		{
			Name:        "get_chain_info",
			Description: "Get information about a specific chain (chain ID, native currency, protocol deployment)",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name (e.g., ethereum, arbitrum, base)"
					}
				},
				"required": ["chain"]
			}`),
		},
		{
			Name:        "get_token_balance",
			Description: "Get the balance of an ERC20 token or the native token for an address",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"address": {
						"type": "string",
						"description": "Wallet address to check (0x...)"
					},
					"token": {
						"type": "string",
						"description": "Token contract address, or 'native' for the chain's native token"
					}
				},
				"required": ["chain", "address", "token"]
			}`),
		},
		{
			Name:        "get_lending_markets",
			Description: "List all lending (earn) markets on a chain with exchange prices, supply APR and rewards APR",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					}
				},
				"required": ["chain"]
			}`),
		},
		{
			Name:        "get_lending_position",
			Description: "Get a user's position in a lending market (shares and underlying value)",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"market": {
						"type": "string",
						"description": "Market symbol (e.g., fUSDC, fWETH)"
					},
					"address": {
						"type": "string",
						"description": "User address (0x...)"
					}
				},
				"required": ["chain", "market", "address"]
			}`),
		},
		{
			Name:        "get_vault_data",
			Description: "Get a borrow vault's configuration and rates (collateral factor, liquidation threshold, borrow APR)",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"vault": {
						"type": "string",
						"description": "Vault pair name (e.g., ETH/USDC)"
					}
				},
				"required": ["chain", "vault"]
			}`),
		},
		{
			Name:        "get_vault_positions",
			Description: "List a user's NFT borrow positions with collateral, debt and health factor",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"address": {
						"type": "string",
						"description": "Position owner address (0x...)"
					}
				},
				"required": ["chain", "address"]
			}`),
		},
		{
			Name:        "get_pool_state",
			Description: "Get a dex pool's reserves and fee",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"pool": {
						"type": "string",
						"description": "Pool pair name (e.g., USDC-USDT)"
					}
				},
				"required": ["chain", "pool"]
			}`),
		},
		{
			Name:        "estimate_swap",
			Description: "Get the contract-computed output amount for a swap without executing it",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"pool": {
						"type": "string",
						"description": "Pool pair name"
					},
					"token_in": {
						"type": "string",
						"description": "Symbol of the token being sold (one side of the pool)"
					},
					"amount_in": {
						"type": "string",
						"description": "Amount to sell, in display units (e.g., '100.5')"
					}
				},
				"required": ["chain", "pool", "token_in", "amount_in"]
			}`),
		},
		{
			Name:        "approve_token",
			Description: "Encode an unsigned ERC20 approve so a protocol contract can pull tokens. Returns calldata for an external signer",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"token": {
						"type": "string",
						"description": "Token contract address (0x...)"
					},
					"spender": {
						"type": "string",
						"description": "Contract being approved (0x...)"
					},
					"amount": {
						"type": "string",
						"description": "Allowance in display units"
					}
				},
				"required": ["chain", "token", "spender", "amount"]
			}`),
		},
		{
			Name:        "deposit",
			Description: "Encode an unsigned deposit into a lending market. ERC20 deposits require a prior approve_token of the market's fToken",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"market": {
						"type": "string",
						"description": "Market symbol (e.g., fUSDC)"
					},
					"amount": {
						"type": "string",
						"description": "Amount of underlying to deposit, in display units"
					},
					"receiver": {
						"type": "string",
						"description": "Address that receives the shares (0x...)"
					}
				},
				"required": ["chain", "market", "amount", "receiver"]
			}`),
		},
		{
			Name:        "withdraw",
			Description: "Encode an unsigned withdrawal from a lending market",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"market": {
						"type": "string",
						"description": "Market symbol"
					},
					"amount": {
						"type": "string",
						"description": "Amount of underlying to withdraw, in display units"
					},
					"receiver": {
						"type": "string",
						"description": "Address that receives the tokens (0x...)"
					},
					"owner": {
						"type": "string",
						"description": "Address whose shares are burned (0x...)"
					}
				},
				"required": ["chain", "market", "amount", "receiver", "owner"]
			}`),
		},
		{
			Name:        "supply_collateral",
			Description: "Encode an unsigned collateral supply to a borrow vault. nft_id 0 opens a new position",
			InputSchema: json.RawMessage(vaultOperateSchema("Amount of collateral to add, in display units")),
		},
		{
			Name:        "withdraw_collateral",
			Description: "Encode an unsigned collateral withdrawal from a borrow vault position",
			InputSchema: json.RawMessage(vaultOperateSchema("Amount of collateral to remove, in display units")),
		},
		{
			Name:        "borrow",
			Description: "Encode an unsigned borrow against a vault position. nft_id 0 opens a new position",
			InputSchema: json.RawMessage(vaultOperateSchema("Amount of debt to draw, in display units")),
		},
		{
			Name:        "repay",
			Description: "Encode an unsigned debt repayment on a vault position. ERC20 debt requires a prior approve_token of the vault",
			InputSchema: json.RawMessage(vaultOperateSchema("Amount of debt to repay, in display units")),
		},
		{
			Name:        "swap",
			Description: "Encode an unsigned swap on a dex pool. An ERC20 in-token requires a prior approve_token of the pool",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"chain": {
						"type": "string",
						"description": "Chain name"
					},
					"pool": {
						"type": "string",
						"description": "Pool pair name"
					},
					"token_in": {
						"type": "string",
						"description": "Symbol of the token being sold"
					},
					"amount_in": {
						"type": "string",
						"description": "Amount to sell, in display units"
					},
					"min_out": {
						"type": "string",
						"description": "Minimum acceptable output, in display units (default 0)"
					},
					"to": {
						"type": "string",
						"description": "Address that receives the output (0x...)"
					}
				},
				"required": ["chain", "pool", "token_in", "amount_in", "to"]
			}`),
		},
	}
}

// vaultOperateSchema builds the shared schema for the four vault write
// tools; only the amount description differs.
func vaultOperateSchema(amountDesc string) string {
	return `{
		"type": "object",
		"properties": {
			"chain": {
				"type": "string",
				"description": "Chain name"
			},
			"vault": {
				"type": "string",
				"description": "Vault pair name (e.g., ETH/USDC)"
			},
			"nft_id": {
				"type": "string",
				"description": "Position NFT id; 0 mints a new position"
			},
			"amount": {
				"type": "string",
				"description": "` + amountDesc + `"
			},
			"to": {
				"type": "string",
				"description": "Address that receives withdrawn or borrowed funds (0x...)"
			}
		},
		"required": ["chain", "vault", "amount", "to"]
	}`
}

package protocol

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI fragments for every contract method the adapter touches, parsed once.
// The resolvers return flat tuples so no generated bindings are needed.
var (
	LendingResolverABI = mustABI(lendingResolverJSON)
	VaultResolverABI   = mustABI(vaultResolverJSON)
	DexResolverABI     = mustABI(dexResolverJSON)
	FTokenABI          = mustABI(fTokenJSON)
	VaultABI           = mustABI(vaultJSON)
	DexPoolABI         = mustABI(dexPoolJSON)
	ERC20ABI           = mustABI(erc20JSON)
)

func mustABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

const lendingResolverJSON = `[
	{
		"type": "function", "name": "getFTokenDetails", "stateMutability": "view",
		"inputs": [{"name": "fToken", "type": "address"}],
		"outputs": [
			{"name": "underlying", "type": "address"},
			{"name": "decimals", "type": "uint8"},
			{"name": "totalAssets", "type": "uint256"},
			{"name": "totalSupply", "type": "uint256"},
			{"name": "exchangePrice", "type": "uint256"},
			{"name": "supplyRate", "type": "uint256"},
			{"name": "rewardsRate", "type": "uint256"}
		]
	},
	{
		"type": "function", "name": "getUserLendingPosition", "stateMutability": "view",
		"inputs": [
			{"name": "fToken", "type": "address"},
			{"name": "user", "type": "address"}
		],
		"outputs": [
			{"name": "shares", "type": "uint256"}
		]
	}
]`

const vaultResolverJSON = `[
	{
		"type": "function", "name": "getVaultData", "stateMutability": "view",
		"inputs": [{"name": "vault", "type": "address"}],
		"outputs": [
			{"name": "supplyToken", "type": "address"},
			{"name": "borrowToken", "type": "address"},
			{"name": "collateralFactor", "type": "uint256"},
			{"name": "liquidationThreshold", "type": "uint256"},
			{"name": "oraclePrice", "type": "uint256"},
			{"name": "borrowRate", "type": "uint256"},
			{"name": "supplyRate", "type": "uint256"},
			{"name": "totalSupply", "type": "uint256"},
			{"name": "totalBorrow", "type": "uint256"}
		]
	},
	{
		"type": "function", "name": "positionsNftIdOfUser", "stateMutability": "view",
		"inputs": [{"name": "user", "type": "address"}],
		"outputs": [{"name": "nftIds", "type": "uint256[]"}]
	},
	{
		"type": "function", "name": "positionByNftId", "stateMutability": "view",
		"inputs": [{"name": "nftId", "type": "uint256"}],
		"outputs": [
			{"name": "owner", "type": "address"},
			{"name": "vault", "type": "address"},
			{"name": "supply", "type": "uint256"},
			{"name": "borrow", "type": "uint256"}
		]
	}
]`

const dexResolverJSON = `[
	{
		"type": "function", "name": "getPoolReserves", "stateMutability": "view",
		"inputs": [{"name": "pool", "type": "address"}],
		"outputs": [
			{"name": "token0", "type": "address"},
			{"name": "token1", "type": "address"},
			{"name": "reserve0", "type": "uint256"},
			{"name": "reserve1", "type": "uint256"},
			{"name": "fee", "type": "uint256"}
		]
	},
	{
		"type": "function", "name": "estimateSwapIn", "stateMutability": "view",
		"inputs": [
			{"name": "pool", "type": "address"},
			{"name": "swap0to1", "type": "bool"},
			{"name": "amountIn", "type": "uint256"}
		],
		"outputs": [{"name": "amountOut", "type": "uint256"}]
	}
]`

const fTokenJSON = `[
	{
		"type": "function", "name": "deposit", "stateMutability": "payable",
		"inputs": [
			{"name": "assets", "type": "uint256"},
			{"name": "receiver", "type": "address"}
		],
		"outputs": [{"name": "shares", "type": "uint256"}]
	},
	{
		"type": "function", "name": "withdraw", "stateMutability": "nonpayable",
		"inputs": [
			{"name": "assets", "type": "uint256"},
			{"name": "receiver", "type": "address"},
			{"name": "owner", "type": "address"}
		],
		"outputs": [{"name": "shares", "type": "uint256"}]
	}
]`

const vaultJSON = `[
	{
		"type": "function", "name": "operate", "stateMutability": "payable",
		"inputs": [
			{"name": "nftId", "type": "uint256"},
			{"name": "newCol", "type": "int256"},
			{"name": "newDebt", "type": "int256"},
			{"name": "to", "type": "address"}
		],
		"outputs": [
			{"name": "nftIdOut", "type": "uint256"},
			{"name": "colOut", "type": "int256"},
			{"name": "debtOut", "type": "int256"}
		]
	}
]`

const dexPoolJSON = `[
	{
		"type": "function", "name": "swapIn", "stateMutability": "payable",
		"inputs": [
			{"name": "swap0to1", "type": "bool"},
			{"name": "amountIn", "type": "uint256"},
			{"name": "amountOutMin", "type": "uint256"},
			{"name": "to", "type": "address"}
		],
		"outputs": [{"name": "amountOut", "type": "uint256"}]
	}
]`

const erc20JSON = `[
	{
		"type": "function", "name": "approve", "stateMutability": "nonpayable",
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [{"name": "ok", "type": "bool"}]
	}
]`

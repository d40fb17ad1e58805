// Package protocol holds the per-chain deployment tables and ABI fragments
// for the lending, vault and dex contracts. Everything here is a plain
// lookup table; the only invariant is key uniqueness.
package protocol

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// NativeToken is the sentinel address protocols use for the chain's native
// token in place of an ERC20 contract.
var NativeToken = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// IsNative reports whether a token address is the native-token sentinel.
func IsNative(token common.Address) bool {
	return token == NativeToken
}

// Market is a lending market: an ERC4626-style fToken over one underlying.
type Market struct {
	Symbol           string         `json:"symbol"` // e.g. "fUSDC"
	FToken           common.Address `json:"ftoken"`
	Underlying       common.Address `json:"underlying"`
	UnderlyingSymbol string         `json:"underlying_symbol"`
	Decimals         uint8          `json:"decimals"` // underlying decimals
}

// Vault is a borrow vault: supply one token as collateral, borrow another.
// Positions are NFTs minted by the vault.
type Vault struct {
	Name           string         `json:"name"` // e.g. "ETH/USDC"
	Address        common.Address `json:"address"`
	SupplyToken    common.Address `json:"supply_token"`
	SupplySymbol   string         `json:"supply_symbol"`
	SupplyDecimals uint8          `json:"supply_decimals"`
	BorrowToken    common.Address `json:"borrow_token"`
	BorrowSymbol   string         `json:"borrow_symbol"`
	BorrowDecimals uint8          `json:"borrow_decimals"`
}

// Pool is a two-token dex pool.
type Pool struct {
	Name      string         `json:"name"` // e.g. "USDC-USDT"
	Address   common.Address `json:"address"`
	Token0    common.Address `json:"token0"`
	Symbol0   string         `json:"symbol0"`
	Decimals0 uint8          `json:"decimals0"`
	Token1    common.Address `json:"token1"`
	Symbol1   string         `json:"symbol1"`
	Decimals1 uint8          `json:"decimals1"`
}

// Deployment is everything the adapter needs to talk to the protocol on one
// chain: resolver addresses plus the named markets, vaults and pools.
type Deployment struct {
	LendingResolver common.Address
	VaultResolver   common.Address
	DexResolver     common.Address
	Markets         map[string]*Market
	Vaults          map[string]*Vault
	Pools           map[string]*Pool
}

// Market looks up a lending market by fToken symbol.
func (d *Deployment) Market(symbol string) (*Market, error) {
	m, ok := d.Markets[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown lending market: %s", symbol)
	}
	return m, nil
}

// Vault looks up a borrow vault by pair name.
func (d *Deployment) Vault(name string) (*Vault, error) {
	v, ok := d.Vaults[name]
	if !ok {
		return nil, fmt.Errorf("unknown vault: %s", name)
	}
	return v, nil
}

// Pool looks up a dex pool by pair name.
func (d *Deployment) Pool(name string) (*Pool, error) {
	p, ok := d.Pools[name]
	if !ok {
		return nil, fmt.Errorf("unknown pool: %s", name)
	}
	return p, nil
}

// MarketSymbols returns the market symbols in stable order.
func (d *Deployment) MarketSymbols() []string {
	out := make([]string, 0, len(d.Markets))
	for s := range d.Markets {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// GetDeployment returns the protocol deployment for a chain.
func GetDeployment(chainName string) (*Deployment, error) {
	d, ok := deployments[chainName]
	if !ok {
		return nil, fmt.Errorf("protocol not deployed on chain: %s", chainName)
	}
	return d, nil
}

// DeployedChains returns the chains with a protocol deployment, sorted.
func DeployedChains() []string {
	out := make([]string, 0, len(deployments))
	for name := range deployments {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Well-known underlying tokens, per chain.
var (
	usdcMainnet   = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	usdtMainnet   = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	wethMainnet   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	wstethMainnet = common.HexToAddress("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0")

	usdcArbitrum = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	usdtArbitrum = common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9")
	wethArbitrum = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")

	usdcBase = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	wethBase = common.HexToAddress("0x4200000000000000000000000000000000000006")
)

var deployments = map[string]*Deployment{
	"ethereum": {
		LendingResolver: common.HexToAddress("0xC215485C572365AE87f908ad35233EC2572A3BEC"),
		VaultResolver:   common.HexToAddress("0x56ddF84B2c94BF3361862FcEdB704C382dc4cd32"),
		DexResolver:     common.HexToAddress("0x7af0C11F5c787632e567e6418D74e5832d8FFd4c"),
		Markets: map[string]*Market{
			"fUSDC": {
				Symbol:           "fUSDC",
				FToken:           common.HexToAddress("0x9Fb7b4477576Fe5B32be4C1843aFB1e55F251B33"),
				Underlying:       usdcMainnet,
				UnderlyingSymbol: "USDC",
				Decimals:         6,
			},
			"fUSDT": {
				Symbol:           "fUSDT",
				FToken:           common.HexToAddress("0x5C20B550819128074FD538Edf79791733ccEdd18"),
				Underlying:       usdtMainnet,
				UnderlyingSymbol: "USDT",
				Decimals:         6,
			},
			"fWETH": {
				Symbol:           "fWETH",
				FToken:           common.HexToAddress("0x90551c1795392094FE6D29B758EcCD233cFAa260"),
				Underlying:       wethMainnet,
				UnderlyingSymbol: "WETH",
				Decimals:         18,
			},
			"fwstETH": {
				Symbol:           "fwstETH",
				FToken:           common.HexToAddress("0x2411802D8BEA09be0aF8fD8D08314a63e706b29C"),
				Underlying:       wstethMainnet,
				UnderlyingSymbol: "wstETH",
				Decimals:         18,
			},
		},
		Vaults: map[string]*Vault{
			"ETH/USDC": {
				Name:           "ETH/USDC",
				Address:        common.HexToAddress("0xeAbBfca72F8a8bf14C4ac59e69ECB2eB69F0811C"),
				SupplyToken:    NativeToken,
				SupplySymbol:   "ETH",
				SupplyDecimals: 18,
				BorrowToken:    usdcMainnet,
				BorrowSymbol:   "USDC",
				BorrowDecimals: 6,
			},
			"ETH/USDT": {
				Name:           "ETH/USDT",
				Address:        common.HexToAddress("0xbEC491FeF7B4f666b270F9D5E5C3f443cBf20991"),
				SupplyToken:    NativeToken,
				SupplySymbol:   "ETH",
				SupplyDecimals: 18,
				BorrowToken:    usdtMainnet,
				BorrowSymbol:   "USDT",
				BorrowDecimals: 6,
			},
			"wstETH/ETH": {
				Name:           "wstETH/ETH",
				Address:        common.HexToAddress("0xA0F83Fc5885cEBc0420ce7C7b139Adc80c4F4D91"),
				SupplyToken:    wstethMainnet,
				SupplySymbol:   "wstETH",
				SupplyDecimals: 18,
				BorrowToken:    NativeToken,
				BorrowSymbol:   "ETH",
				BorrowDecimals: 18,
			},
		},
		Pools: map[string]*Pool{
			"USDC-USDT": {
				Name:      "USDC-USDT",
				Address:   common.HexToAddress("0x667701e51B4D1Ca244F17C78F7aB8744B4C99F9B"),
				Token0:    usdcMainnet,
				Symbol0:   "USDC",
				Decimals0: 6,
				Token1:    usdtMainnet,
				Symbol1:   "USDT",
				Decimals1: 6,
			},
			"wstETH-ETH": {
				Name:      "wstETH-ETH",
				Address:   common.HexToAddress("0x0B1a513ee24972DAEf112bC777a5610d4325C9e7"),
				Token0:    wstethMainnet,
				Symbol0:   "wstETH",
				Decimals0: 18,
				Token1:    NativeToken,
				Symbol1:   "ETH",
				Decimals1: 18,
			},
		},
	},
	"arbitrum": {
		LendingResolver: common.HexToAddress("0xdF4d3272FfAE8036d9a2E1626Df2Db5863b87569"),
		VaultResolver:   common.HexToAddress("0x77648D39be25a1422467060e11E5b979463bEA3d"),
		DexResolver:     common.HexToAddress("0x87B7E70D8F1FAcD3d154AF8559D632481724508E"),
		Markets: map[string]*Market{
			"fUSDC": {
				Symbol:           "fUSDC",
				FToken:           common.HexToAddress("0x1A996cb54bb95462040408C06122D45D6Cdb6096"),
				Underlying:       usdcArbitrum,
				UnderlyingSymbol: "USDC",
				Decimals:         6,
			},
			"fUSDT": {
				Symbol:           "fUSDT",
				FToken:           common.HexToAddress("0x4A03F37e7d3fC243e3f99341d36f4b829BEe5E03"),
				Underlying:       usdtArbitrum,
				UnderlyingSymbol: "USDT",
				Decimals:         6,
			},
			"fWETH": {
				Symbol:           "fWETH",
				FToken:           common.HexToAddress("0x45Df0656F8aDf017590009d2f1898eeca4F0a205"),
				Underlying:       wethArbitrum,
				UnderlyingSymbol: "WETH",
				Decimals:         18,
			},
		},
		Vaults: map[string]*Vault{
			"ETH/USDC": {
				Name:           "ETH/USDC",
				Address:        common.HexToAddress("0x0C8C77B7FF4c2aF7F6CEBbe67350A490E3DD6cB3"),
				SupplyToken:    NativeToken,
				SupplySymbol:   "ETH",
				SupplyDecimals: 18,
				BorrowToken:    usdcArbitrum,
				BorrowSymbol:   "USDC",
				BorrowDecimals: 6,
			},
		},
		Pools: map[string]*Pool{
			"USDC-USDT": {
				Name:      "USDC-USDT",
				Address:   common.HexToAddress("0x2886a01a0645390872a9eb99dAe1283664b0c524"),
				Token0:    usdcArbitrum,
				Symbol0:   "USDC",
				Decimals0: 6,
				Token1:    usdtArbitrum,
				Symbol1:   "USDT",
				Decimals1: 6,
			},
		},
	},
	"base": {
		LendingResolver: common.HexToAddress("0x3aF6FBEc4a2FE517F56E402C65e3f4c3e18C1D86"),
		VaultResolver:   common.HexToAddress("0x94695A9d0429aD5eFec0106a467aDEaDf71762F9"),
		DexResolver:     common.HexToAddress("0x1De42938De444d376eBBCA3d40011027358203Ac"),
		Markets: map[string]*Market{
			"fUSDC": {
				Symbol:           "fUSDC",
				FToken:           common.HexToAddress("0xf42f5795D9ac7e9D757dB633D693cD548Cfd9169"),
				Underlying:       usdcBase,
				UnderlyingSymbol: "USDC",
				Decimals:         6,
			},
			"fWETH": {
				Symbol:           "fWETH",
				FToken:           common.HexToAddress("0x9272D6153133175175Bc276512B2336BE3931CE9"),
				Underlying:       wethBase,
				UnderlyingSymbol: "WETH",
				Decimals:         18,
			},
		},
		Vaults: map[string]*Vault{
			"ETH/USDC": {
				Name:           "ETH/USDC",
				Address:        common.HexToAddress("0xdF16AdaC2528A1a72a1a36C3099690419aACC9B6"),
				SupplyToken:    NativeToken,
				SupplySymbol:   "ETH",
				SupplyDecimals: 18,
				BorrowToken:    usdcBase,
				BorrowSymbol:   "USDC",
				BorrowDecimals: 6,
			},
		},
		Pools: map[string]*Pool{},
	},
}

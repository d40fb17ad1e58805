// Package tools exposes the protocol adapter as agent-callable tools: a
// registry mapping tool names to handlers over raw JSON input, returning
// JSON output. Read tools reshape resolver results; write tools return
// unsigned transaction requests.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yolodolo42/fluidctl/internal/chain"
	"github.com/yolodolo42/fluidctl/internal/dex"
	"github.com/yolodolo42/fluidctl/internal/lending"
	"github.com/yolodolo42/fluidctl/internal/protocol"
	"github.com/yolodolo42/fluidctl/internal/tx"
	"github.com/yolodolo42/fluidctl/internal/units"
	"github.com/yolodolo42/fluidctl/internal/vault"
)

// Registry manages available tools and their handlers
type Registry struct {
	tools       []Tool
	handlers    map[string]Handler
	chainClient *chain.Client
	lending     *lending.Service
	vaults      *vault.Service
	dex         *dex.Service
}

// NewRegistry creates a registry with the full protocol tool set.
func NewRegistry() *Registry {
	return NewRegistryWithClient(chain.NewClient())
}

// NewRegistryWithClient creates a registry over an existing chain client so
// callers can inject RPC overrides before any tool runs.
func NewRegistryWithClient(client *chain.Client) *Registry {
	r := &Registry{
		tools:       ProtocolTools(),
		handlers:    make(map[string]Handler),
		chainClient: client,
		lending:     lending.NewService(client),
		vaults:      vault.NewService(client),
		dex:         dex.NewService(client),
	}

	r.handlers["list_chains"] = r.handleListChains
	r.handlers["get_chain_info"] = r.handleGetChainInfo
	r.handlers["get_token_balance"] = r.handleGetTokenBalance
	r.handlers["get_lending_markets"] = r.handleGetLendingMarkets
	r.handlers["get_lending_position"] = r.handleGetLendingPosition
	r.handlers["get_vault_data"] = r.handleGetVaultData
	r.handlers["get_vault_positions"] = r.handleGetVaultPositions
	r.handlers["get_pool_state"] = r.handleGetPoolState
	r.handlers["estimate_swap"] = r.handleEstimateSwap
	r.handlers["approve_token"] = r.handleApproveToken
	r.handlers["deposit"] = r.handleDeposit
	r.handlers["withdraw"] = r.handleWithdraw
	r.handlers["supply_collateral"] = r.handleSupplyCollateral
	r.handlers["withdraw_collateral"] = r.handleWithdrawCollateral
	r.handlers["borrow"] = r.handleBorrow
	r.handlers["repay"] = r.handleRepay
	r.handlers["swap"] = r.handleSwap

	return r
}

// Tools returns all registered tools
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Execute runs a tool by name with the given input
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	return handler(ctx, input)
}

// Close cleans up resources
func (r *Registry) Close() {
	if r.chainClient != nil {
		r.chainClient.Close()
	}
}

func toJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}

func parseAddress(s, field string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s: %q", field, s)
	}
	return common.HexToAddress(s), nil
}

func parseNftID(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid nft_id: %q", s)
	}
	return id, nil
}

// Read tools

type chainInfo struct {
	Chain          string   `json:"chain"`
	Name           string   `json:"name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	ExplorerURL    string   `json:"explorer_url"`
	IsTestnet      bool     `json:"is_testnet"`
	Deployed       bool     `json:"protocol_deployed"`
	Markets        []string `json:"markets,omitempty"`
}

func (r *Registry) chainInfo(name string) (*chainInfo, error) {
	config, err := r.chainClient.GetChainConfig(name)
	if err != nil {
		return nil, err
	}

	info := &chainInfo{
		Chain:          name,
		Name:           config.Name,
		ChainID:        config.ChainIDInt,
		NativeCurrency: config.NativeCurrency,
		ExplorerURL:    config.ExplorerURL,
		IsTestnet:      config.IsTestnet,
	}
	if dep, err := protocol.GetDeployment(name); err == nil {
		info.Deployed = true
		info.Markets = dep.MarketSymbols()
	}
	return info, nil
}

func (r *Registry) handleListChains(ctx context.Context, input json.RawMessage) (string, error) {
	names := r.chainClient.ListChains()

	infos := make([]*chainInfo, 0, len(names))
	for _, name := range names {
		info, err := r.chainInfo(name)
		if err != nil {
			return "", err
		}
		infos = append(infos, info)
	}
	return toJSON(infos)
}

type getChainInfoInput struct {
	Chain string `json:"chain"`
}

func (r *Registry) handleGetChainInfo(ctx context.Context, input json.RawMessage) (string, error) {
	var params getChainInfoInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	info, err := r.chainInfo(params.Chain)
	if err != nil {
		return "", err
	}
	return toJSON(info)
}

type getTokenBalanceInput struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	Token   string `json:"token"`
}

func (r *Registry) handleGetTokenBalance(ctx context.Context, input json.RawMessage) (string, error) {
	var params getTokenBalanceInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	holder, err := parseAddress(params.Address, "wallet address")
	if err != nil {
		return "", err
	}

	if params.Token == "native" {
		balance, err := r.chainClient.GetNativeBalance(ctx, params.Chain, holder)
		if err != nil {
			return "", err
		}
		return toJSON(map[string]string{
			"chain":   balance.Chain,
			"symbol":  balance.Symbol,
			"raw":     balance.Balance.String(),
			"balance": units.FormatUnits(balance.Balance, balance.Decimals),
		})
	}

	token, err := parseAddress(params.Token, "token address")
	if err != nil {
		return "", err
	}

	balance, err := r.chainClient.GetTokenBalance(ctx, params.Chain, token, holder)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]string{
		"chain":   params.Chain,
		"token":   balance.TokenAddress,
		"symbol":  balance.Symbol,
		"name":    balance.Name,
		"raw":     balance.Balance.String(),
		"balance": units.FormatUnits(balance.Balance, balance.Decimals),
	})
}

type chainOnlyInput struct {
	Chain string `json:"chain"`
}

func (r *Registry) handleGetLendingMarkets(ctx context.Context, input json.RawMessage) (string, error) {
	var params chainOnlyInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	markets, err := r.lending.Markets(ctx, params.Chain)
	if err != nil {
		return "", err
	}
	return toJSON(markets)
}

type getLendingPositionInput struct {
	Chain   string `json:"chain"`
	Market  string `json:"market"`
	Address string `json:"address"`
}

func (r *Registry) handleGetLendingPosition(ctx context.Context, input json.RawMessage) (string, error) {
	var params getLendingPositionInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	user, err := parseAddress(params.Address, "user address")
	if err != nil {
		return "", err
	}

	position, err := r.lending.UserPosition(ctx, params.Chain, params.Market, user)
	if err != nil {
		return "", err
	}
	return toJSON(position)
}

type getVaultDataInput struct {
	Chain string `json:"chain"`
	Vault string `json:"vault"`
}

func (r *Registry) handleGetVaultData(ctx context.Context, input json.RawMessage) (string, error) {
	var params getVaultDataInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	state, err := r.vaults.Data(ctx, params.Chain, params.Vault)
	if err != nil {
		return "", err
	}
	return toJSON(state)
}

type getVaultPositionsInput struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
}

func (r *Registry) handleGetVaultPositions(ctx context.Context, input json.RawMessage) (string, error) {
	var params getVaultPositionsInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	owner, err := parseAddress(params.Address, "owner address")
	if err != nil {
		return "", err
	}

	positions, err := r.vaults.Positions(ctx, params.Chain, owner)
	if err != nil {
		return "", err
	}
	return toJSON(positions)
}

type getPoolStateInput struct {
	Chain string `json:"chain"`
	Pool  string `json:"pool"`
}

func (r *Registry) handleGetPoolState(ctx context.Context, input json.RawMessage) (string, error) {
	var params getPoolStateInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	state, err := r.dex.Pool(ctx, params.Chain, params.Pool)
	if err != nil {
		return "", err
	}
	return toJSON(state)
}

type estimateSwapInput struct {
	Chain    string `json:"chain"`
	Pool     string `json:"pool"`
	TokenIn  string `json:"token_in"`
	AmountIn string `json:"amount_in"`
}

// swapSide resolves token_in against the pool's two sides.
func swapSide(pool *protocol.Pool, tokenIn string) (zeroForOne bool, decimals uint8, err error) {
	switch tokenIn {
	case pool.Symbol0:
		return true, pool.Decimals0, nil
	case pool.Symbol1:
		return false, pool.Decimals1, nil
	default:
		return false, 0, fmt.Errorf("token %q is not a side of pool %s", tokenIn, pool.Name)
	}
}

func (r *Registry) handleEstimateSwap(ctx context.Context, input json.RawMessage) (string, error) {
	var params estimateSwapInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	dep, err := protocol.GetDeployment(params.Chain)
	if err != nil {
		return "", err
	}
	pool, err := dep.Pool(params.Pool)
	if err != nil {
		return "", err
	}
	zeroForOne, decimals, err := swapSide(pool, params.TokenIn)
	if err != nil {
		return "", err
	}
	amountIn, err := units.ParseUnits(params.AmountIn, decimals)
	if err != nil {
		return "", err
	}

	estimate, err := r.dex.EstimateSwap(ctx, params.Chain, params.Pool, zeroForOne, amountIn)
	if err != nil {
		return "", err
	}
	return toJSON(estimate)
}

// Write tools: each returns an unsigned transaction request as JSON.

type approveTokenInput struct {
	Chain   string `json:"chain"`
	Token   string `json:"token"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

func (r *Registry) handleApproveToken(ctx context.Context, input json.RawMessage) (string, error) {
	var params approveTokenInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	token, err := parseAddress(params.Token, "token address")
	if err != nil {
		return "", err
	}
	spender, err := parseAddress(params.Spender, "spender address")
	if err != nil {
		return "", err
	}

	decimals, err := r.chainClient.GetTokenDecimals(ctx, params.Chain, token)
	if err != nil {
		return "", fmt.Errorf("failed to read token decimals: %w", err)
	}
	amount, err := units.ParseUnits(params.Amount, decimals)
	if err != nil {
		return "", err
	}

	req, err := tx.EncodeApprove(params.Chain, token, spender, amount)
	if err != nil {
		return "", err
	}
	return toJSON(req)
}

type depositInput struct {
	Chain    string `json:"chain"`
	Market   string `json:"market"`
	Amount   string `json:"amount"`
	Receiver string `json:"receiver"`
}

func (r *Registry) handleDeposit(ctx context.Context, input json.RawMessage) (string, error) {
	var params depositInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	market, err := lookupMarket(params.Chain, params.Market)
	if err != nil {
		return "", err
	}
	receiver, err := parseAddress(params.Receiver, "receiver address")
	if err != nil {
		return "", err
	}
	amount, err := units.ParseUnits(params.Amount, market.Decimals)
	if err != nil {
		return "", err
	}

	req, err := lending.EncodeDeposit(params.Chain, params.Market, amount, receiver)
	if err != nil {
		return "", err
	}
	return toJSON(req)
}

type withdrawInput struct {
	Chain    string `json:"chain"`
	Market   string `json:"market"`
	Amount   string `json:"amount"`
	Receiver string `json:"receiver"`
	Owner    string `json:"owner"`
}

func (r *Registry) handleWithdraw(ctx context.Context, input json.RawMessage) (string, error) {
	var params withdrawInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	market, err := lookupMarket(params.Chain, params.Market)
	if err != nil {
		return "", err
	}
	receiver, err := parseAddress(params.Receiver, "receiver address")
	if err != nil {
		return "", err
	}
	owner, err := parseAddress(params.Owner, "owner address")
	if err != nil {
		return "", err
	}
	amount, err := units.ParseUnits(params.Amount, market.Decimals)
	if err != nil {
		return "", err
	}

	req, err := lending.EncodeWithdraw(params.Chain, params.Market, amount, receiver, owner)
	if err != nil {
		return "", err
	}
	return toJSON(req)
}

func lookupMarket(chainName, symbol string) (*protocol.Market, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	return dep.Market(symbol)
}

func lookupVault(chainName, name string) (*protocol.Vault, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	return dep.Vault(name)
}

type vaultOperateInput struct {
	Chain  string `json:"chain"`
	Vault  string `json:"vault"`
	NftID  string `json:"nft_id"`
	Amount string `json:"amount"`
	To     string `json:"to"`
}

type vaultEncoder func(chainName, vaultName string, nftId, amount *big.Int, to common.Address) (*tx.Request, error)

// handleVaultOperate is the shared path for the four vault write tools;
// collateralSide picks which token's decimals scale the amount.
func (r *Registry) handleVaultOperate(input json.RawMessage, collateralSide bool, encode vaultEncoder) (string, error) {
	var params vaultOperateInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	v, err := lookupVault(params.Chain, params.Vault)
	if err != nil {
		return "", err
	}
	to, err := parseAddress(params.To, "to address")
	if err != nil {
		return "", err
	}
	nftId, err := parseNftID(params.NftID)
	if err != nil {
		return "", err
	}

	decimals := v.BorrowDecimals
	if collateralSide {
		decimals = v.SupplyDecimals
	}
	amount, err := units.ParseUnits(params.Amount, decimals)
	if err != nil {
		return "", err
	}

	req, err := encode(params.Chain, params.Vault, nftId, amount, to)
	if err != nil {
		return "", err
	}
	return toJSON(req)
}

func (r *Registry) handleSupplyCollateral(ctx context.Context, input json.RawMessage) (string, error) {
	return r.handleVaultOperate(input, true, vault.EncodeSupply)
}

func (r *Registry) handleWithdrawCollateral(ctx context.Context, input json.RawMessage) (string, error) {
	return r.handleVaultOperate(input, true, vault.EncodeWithdrawCollateral)
}

func (r *Registry) handleBorrow(ctx context.Context, input json.RawMessage) (string, error) {
	return r.handleVaultOperate(input, false, vault.EncodeBorrow)
}

func (r *Registry) handleRepay(ctx context.Context, input json.RawMessage) (string, error) {
	return r.handleVaultOperate(input, false, vault.EncodeRepay)
}

type swapInput struct {
	Chain    string `json:"chain"`
	Pool     string `json:"pool"`
	TokenIn  string `json:"token_in"`
	AmountIn string `json:"amount_in"`
	MinOut   string `json:"min_out"`
	To       string `json:"to"`
}

func (r *Registry) handleSwap(ctx context.Context, input json.RawMessage) (string, error) {
	var params swapInput
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	dep, err := protocol.GetDeployment(params.Chain)
	if err != nil {
		return "", err
	}
	pool, err := dep.Pool(params.Pool)
	if err != nil {
		return "", err
	}
	to, err := parseAddress(params.To, "to address")
	if err != nil {
		return "", err
	}
	zeroForOne, decIn, err := swapSide(pool, params.TokenIn)
	if err != nil {
		return "", err
	}
	amountIn, err := units.ParseUnits(params.AmountIn, decIn)
	if err != nil {
		return "", err
	}

	decOut := pool.Decimals1
	if !zeroForOne {
		decOut = pool.Decimals0
	}
	minOut := big.NewInt(0)
	if params.MinOut != "" {
		minOut, err = units.ParseUnits(params.MinOut, decOut)
		if err != nil {
			return "", err
		}
	}

	req, err := dex.EncodeSwap(params.Chain, params.Pool, zeroForOne, amountIn, minOut, to)
	if err != nil {
		return "", err
	}
	return toJSON(req)
}

// Package lending reads earn-market state from the lending resolver and
// encodes deposits and withdrawals against fTokens (ERC4626-style wrappers
// over a single underlying).
package lending

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/yolodolo42/fluidctl/internal/chain"
	"github.com/yolodolo42/fluidctl/internal/protocol"
	"github.com/yolodolo42/fluidctl/internal/tx"
	"github.com/yolodolo42/fluidctl/internal/units"
)

// Service wraps the chain client with lending reads and encoders.
type Service struct {
	client *chain.Client
}

// NewService creates a lending service over a chain client.
func NewService(client *chain.Client) *Service {
	return &Service{client: client}
}

// MarketState is the resolver's view of one fToken market, reshaped for
// display. Raw fields keep the exact on-chain words; formatted fields are
// previews.
type MarketState struct {
	Symbol           string `json:"symbol"`
	FToken           string `json:"ftoken"`
	Underlying       string `json:"underlying"`
	UnderlyingSymbol string `json:"underlying_symbol"`
	ExchangePriceRaw string `json:"exchange_price_raw"`
	TotalAssetsRaw   string `json:"total_assets_raw"`
	TotalAssets      string `json:"total_assets"`
	TotalShares      string `json:"total_shares"`
	SupplyAPR        string `json:"supply_apr"`
	RewardsAPR       string `json:"rewards_apr"`
}

// Position is a user's holding in one market. The underlying value is
// shares scaled by the market's current exchange price.
type Position struct {
	Market           string `json:"market"`
	User             string `json:"user"`
	SharesRaw        string `json:"shares_raw"`
	ExchangePriceRaw string `json:"exchange_price_raw"`
	UnderlyingRaw    string `json:"underlying_raw"`
	Underlying       string `json:"underlying"`
	UnderlyingSymbol string `json:"underlying_symbol"`
}

type fTokenDetails struct {
	underlying    common.Address
	decimals      uint8
	totalAssets   *big.Int
	totalSupply   *big.Int
	exchangePrice *big.Int
	supplyRate    *big.Int
	rewardsRate   *big.Int
}

func (s *Service) fTokenDetails(ctx context.Context, chainName string, resolver, fToken common.Address) (*fTokenDetails, error) {
	data, err := protocol.LendingResolverABI.Pack("getFTokenDetails", fToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encode getFTokenDetails: %w", err)
	}

	out, err := s.client.CallContract(ctx, chainName, ethereum.CallMsg{To: &resolver, Data: data})
	if err != nil {
		return nil, fmt.Errorf("lending resolver call failed: %w", err)
	}

	vals, err := protocol.LendingResolverABI.Unpack("getFTokenDetails", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode getFTokenDetails: %w", err)
	}

	return &fTokenDetails{
		underlying:    vals[0].(common.Address),
		decimals:      vals[1].(uint8),
		totalAssets:   vals[2].(*big.Int),
		totalSupply:   vals[3].(*big.Int),
		exchangePrice: vals[4].(*big.Int),
		supplyRate:    vals[5].(*big.Int),
		rewardsRate:   vals[6].(*big.Int),
	}, nil
}

// Market returns the current state of one lending market.
func (s *Service) Market(ctx context.Context, chainName, symbol string) (*MarketState, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	market, err := dep.Market(symbol)
	if err != nil {
		return nil, err
	}

	details, err := s.fTokenDetails(ctx, chainName, dep.LendingResolver, market.FToken)
	if err != nil {
		return nil, err
	}

	return &MarketState{
		Symbol:           market.Symbol,
		FToken:           market.FToken.Hex(),
		Underlying:       details.underlying.Hex(),
		UnderlyingSymbol: market.UnderlyingSymbol,
		ExchangePriceRaw: details.exchangePrice.String(),
		TotalAssetsRaw:   details.totalAssets.String(),
		TotalAssets:      units.FormatUnits(details.totalAssets, details.decimals),
		TotalShares:      units.FormatUnits(details.totalSupply, details.decimals),
		SupplyAPR:        units.AnnualRateFromPerSecond(details.supplyRate),
		RewardsAPR:       units.PercentFromBps(details.rewardsRate),
	}, nil
}

// Markets returns the state of every configured market on a chain. A market
// whose resolver call fails is reported as an error for the whole call;
// partial market lists would hide outages from the agent.
func (s *Service) Markets(ctx context.Context, chainName string) ([]*MarketState, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}

	states := make([]*MarketState, 0, len(dep.Markets))
	for _, symbol := range dep.MarketSymbols() {
		state, err := s.Market(ctx, chainName, symbol)
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", symbol, err)
		}
		states = append(states, state)
	}
	return states, nil
}

// UserPosition returns a user's shares and underlying value in one market.
// The resolver reports shares; the underlying value is shares scaled by the
// exchange price the same resolver reports, so no interest math happens
// client-side.
func (s *Service) UserPosition(ctx context.Context, chainName, symbol string, user common.Address) (*Position, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	market, err := dep.Market(symbol)
	if err != nil {
		return nil, err
	}

	details, err := s.fTokenDetails(ctx, chainName, dep.LendingResolver, market.FToken)
	if err != nil {
		return nil, err
	}

	data, err := protocol.LendingResolverABI.Pack("getUserLendingPosition", market.FToken, user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode getUserLendingPosition: %w", err)
	}

	out, err := s.client.CallContract(ctx, chainName, ethereum.CallMsg{To: &dep.LendingResolver, Data: data})
	if err != nil {
		return nil, fmt.Errorf("lending resolver call failed: %w", err)
	}

	vals, err := protocol.LendingResolverABI.Unpack("getUserLendingPosition", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode getUserLendingPosition: %w", err)
	}
	shares := vals[0].(*big.Int)
	underlying := units.SharesToAssets(shares, details.exchangePrice)

	return &Position{
		Market:           market.Symbol,
		User:             user.Hex(),
		SharesRaw:        shares.String(),
		ExchangePriceRaw: details.exchangePrice.String(),
		UnderlyingRaw:    underlying.String(),
		Underlying:       units.FormatUnits(underlying, market.Decimals),
		UnderlyingSymbol: market.UnderlyingSymbol,
	}, nil
}

// EncodeDeposit encodes fToken.deposit(assets, receiver). Depositing the
// native token carries the amount as tx value; ERC20 deposits need a prior
// approval of the fToken for at least the amount.
func EncodeDeposit(chainName, symbol string, assets *big.Int, receiver common.Address) (*tx.Request, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	market, err := dep.Market(symbol)
	if err != nil {
		return nil, err
	}
	if assets == nil || assets.Sign() <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive")
	}

	data, err := protocol.FTokenABI.Pack("deposit", assets, receiver)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deposit: %w", err)
	}

	var value *big.Int
	if protocol.IsNative(market.Underlying) {
		value = assets
	}

	return tx.NewRequest("deposit", chainName, market.FToken, value, data).
		WithPreview("market", market.Symbol).
		WithPreview("amount", units.FormatUnits(assets, market.Decimals)+" "+market.UnderlyingSymbol).
		WithPreview("receiver", receiver.Hex()), nil
}

// EncodeWithdraw encodes fToken.withdraw(assets, receiver, owner).
func EncodeWithdraw(chainName, symbol string, assets *big.Int, receiver, owner common.Address) (*tx.Request, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	market, err := dep.Market(symbol)
	if err != nil {
		return nil, err
	}
	if assets == nil || assets.Sign() <= 0 {
		return nil, fmt.Errorf("withdraw amount must be positive")
	}

	data, err := protocol.FTokenABI.Pack("withdraw", assets, receiver, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to encode withdraw: %w", err)
	}

	return tx.NewRequest("withdraw", chainName, market.FToken, nil, data).
		WithPreview("market", market.Symbol).
		WithPreview("amount", units.FormatUnits(assets, market.Decimals)+" "+market.UnderlyingSymbol).
		WithPreview("receiver", receiver.Hex()), nil
}

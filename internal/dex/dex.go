// Package dex reads pool state and contract-computed swap quotes from the
// dex resolver and encodes swapIn calls. The estimate never reprices
// client-side: the resolver runs the pool's own pricing and the adapter
// just reshapes the number.
package dex

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

// Service wraps the chain client with dex reads and encoders.
type Service struct {
	client *chain.Client
}

// NewService creates a dex service over a chain client.
func NewService(client *chain.Client) *Service {
	return &Service{client: client}
}

// PoolState is the resolver's view of one pool.
type PoolState struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Token0      string `json:"token0"`
	Symbol0     string `json:"symbol0"`
	Reserve0Raw string `json:"reserve0_raw"`
	Reserve0    string `json:"reserve0"`
	Token1      string `json:"token1"`
	Symbol1     string `json:"symbol1"`
	Reserve1Raw string `json:"reserve1_raw"`
	Reserve1    string `json:"reserve1"`
	Fee         string `json:"fee"`
}

// Estimate is a contract-computed swap quote.
type Estimate struct {
	Pool           string `json:"pool"`
	TokenIn        string `json:"token_in"`
	TokenOut       string `json:"token_out"`
	AmountInRaw    string `json:"amount_in_raw"`
	AmountIn       string `json:"amount_in"`
	AmountOutRaw   string `json:"amount_out_raw"`
	AmountOut      string `json:"amount_out"`
	EffectivePrice string `json:"effective_price"`
}

// Pool returns the current reserves and fee of one pool.
func (s *Service) Pool(ctx context.Context, chainName, name string) (*PoolState, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	pool, err := dep.Pool(name)
	if err != nil {
		return nil, err
	}

	data, err := protocol.DexResolverABI.Pack("getPoolReserves", pool.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to encode getPoolReserves: %w", err)
	}

	out, err := s.client.CallContract(ctx, chainName, ethereum.CallMsg{To: &dep.DexResolver, Data: data})
	if err != nil {
		return nil, fmt.Errorf("dex resolver call failed: %w", err)
	}

	vals, err := protocol.DexResolverABI.Unpack("getPoolReserves", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode getPoolReserves: %w", err)
	}
	token0 := vals[0].(common.Address)
	token1 := vals[1].(common.Address)
	reserve0 := vals[2].(*big.Int)
	reserve1 := vals[3].(*big.Int)
	fee := vals[4].(*big.Int)

	return &PoolState{
		Name:        pool.Name,
		Address:     pool.Address.Hex(),
		Token0:      token0.Hex(),
		Symbol0:     pool.Symbol0,
		Reserve0Raw: reserve0.String(),
		Reserve0:    units.FormatUnits(reserve0, pool.Decimals0),
		Token1:      token1.Hex(),
		Symbol1:     pool.Symbol1,
		Reserve1Raw: reserve1.String(),
		Reserve1:    units.FormatUnits(reserve1, pool.Decimals1),
		Fee:         units.PercentFromBps(fee),
	}, nil
}

// EstimateSwap asks the resolver what the pool would pay out for amountIn.
func (s *Service) EstimateSwap(ctx context.Context, chainName, name string, zeroForOne bool, amountIn *big.Int) (*Estimate, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	pool, err := dep.Pool(name)
	if err != nil {
		return nil, err
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("swap amount must be positive")
	}

	data, err := protocol.DexResolverABI.Pack("estimateSwapIn", pool.Address, zeroForOne, amountIn)
	if err != nil {
		return nil, fmt.Errorf("failed to encode estimateSwapIn: %w", err)
	}

	out, err := s.client.CallContract(ctx, chainName, ethereum.CallMsg{To: &dep.DexResolver, Data: data})
	if err != nil {
		return nil, fmt.Errorf("dex resolver call failed: %w", err)
	}

	vals, err := protocol.DexResolverABI.Unpack("estimateSwapIn", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode estimateSwapIn: %w", err)
	}
	amountOut := vals[0].(*big.Int)

	symbolIn, decIn := pool.Symbol0, pool.Decimals0
	symbolOut, decOut := pool.Symbol1, pool.Decimals1
	if !zeroForOne {
		symbolIn, decIn, symbolOut, decOut = pool.Symbol1, pool.Decimals1, pool.Symbol0, pool.Decimals0
	}

	return &Estimate{
		Pool:           pool.Name,
		TokenIn:        symbolIn,
		TokenOut:       symbolOut,
		AmountInRaw:    amountIn.String(),
		AmountIn:       units.FormatUnits(amountIn, decIn),
		AmountOutRaw:   amountOut.String(),
		AmountOut:      units.FormatUnits(amountOut, decOut),
		EffectivePrice: effectivePrice(amountIn, decIn, amountOut, decOut, symbolIn, symbolOut),
	}, nil
}

// effectivePrice renders amountOut/amountIn in display units.
func effectivePrice(amountIn *big.Int, decIn uint8, amountOut *big.Int, decOut uint8, symbolIn, symbolOut string) string {
	in := scaleToFloat(amountIn, decIn)
	out := scaleToFloat(amountOut, decOut)
	if in == 0 {
		return ""
	}
	return fmt.Sprintf("%.6f %s per %s", out/in, symbolOut, symbolIn)
}

func scaleToFloat(amount *big.Int, decimals uint8) float64 {
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), scale).Float64()
	return f
}

// EncodeSwap encodes pool.swapIn(swap0to1, amountIn, amountOutMin, to).
// A native in-token carries amountIn as tx value; an ERC20 in-token needs a
// prior approval of the pool.
func EncodeSwap(chainName, name string, zeroForOne bool, amountIn, amountOutMin *big.Int, to common.Address) (*tx.Request, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	pool, err := dep.Pool(name)
	if err != nil {
		return nil, err
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("swap amount must be positive")
	}
	if amountOutMin == nil {
		amountOutMin = big.NewInt(0)
	}

	data, err := protocol.DexPoolABI.Pack("swapIn", zeroForOne, amountIn, amountOutMin, to)
	if err != nil {
		return nil, fmt.Errorf("failed to encode swapIn: %w", err)
	}

	tokenIn := pool.Token0
	symbolIn, decIn := pool.Symbol0, pool.Decimals0
	symbolOut, decOut := pool.Symbol1, pool.Decimals1
	if !zeroForOne {
		tokenIn = pool.Token1
		symbolIn, decIn, symbolOut, decOut = pool.Symbol1, pool.Decimals1, pool.Symbol0, pool.Decimals0
	}

	var value *big.Int
	if protocol.IsNative(tokenIn) {
		value = amountIn
	}

	return tx.NewRequest("swap", chainName, pool.Address, value, data).
		WithPreview("pool", pool.Name).
		WithPreview("amount_in", units.FormatUnits(amountIn, decIn)+" "+symbolIn).
		WithPreview("min_out", units.FormatUnits(amountOutMin, decOut)+" "+symbolOut).
		WithPreview("recipient", to.Hex()), nil
}

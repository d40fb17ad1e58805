// Package vault reads NFT borrow positions from the vault resolver and
// encodes operate() calls. Collateral and debt deltas are signed: positive
// adds, negative removes, and the resolver reports position balances as
// two's-complement uint256 words.
package vault

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

// Service wraps the chain client with vault reads and encoders.
type Service struct {
	client *chain.Client
}

// NewService creates a vault service over a chain client.
func NewService(client *chain.Client) *Service {
	return &Service{client: client}
}

// State is the resolver's view of one vault, reshaped for display.
type State struct {
	Name                 string `json:"name"`
	Address              string `json:"address"`
	SupplyToken          string `json:"supply_token"`
	SupplySymbol         string `json:"supply_symbol"`
	BorrowToken          string `json:"borrow_token"`
	BorrowSymbol         string `json:"borrow_symbol"`
	CollateralFactor     string `json:"collateral_factor"`
	LiquidationThreshold string `json:"liquidation_threshold"`
	OraclePriceRaw       string `json:"oracle_price_raw"`
	BorrowAPR            string `json:"borrow_apr"`
	SupplyAPR            string `json:"supply_apr"`
	TotalSupply          string `json:"total_supply"`
	TotalBorrow          string `json:"total_borrow"`
}

// Position is one NFT position with its health against the vault's oracle.
type Position struct {
	NftID         string `json:"nft_id"`
	Owner         string `json:"owner"`
	Vault         string `json:"vault"`
	VaultAddress  string `json:"vault_address"`
	CollateralRaw string `json:"collateral_raw"`
	Collateral    string `json:"collateral"`
	DebtRaw       string `json:"debt_raw"`
	Debt          string `json:"debt"`
	HealthFactor  string `json:"health_factor"`
}

type vaultData struct {
	supplyToken          common.Address
	borrowToken          common.Address
	collateralFactor     *big.Int
	liquidationThreshold *big.Int
	oraclePrice          *big.Int
	borrowRate           *big.Int
	supplyRate           *big.Int
	totalSupply          *big.Int
	totalBorrow          *big.Int
}

func (s *Service) vaultData(ctx context.Context, chainName string, resolver, vaultAddr common.Address) (*vaultData, error) {
	data, err := protocol.VaultResolverABI.Pack("getVaultData", vaultAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode getVaultData: %w", err)
	}

	out, err := s.client.CallContract(ctx, chainName, ethereum.CallMsg{To: &resolver, Data: data})
	if err != nil {
		return nil, fmt.Errorf("vault resolver call failed: %w", err)
	}

	vals, err := protocol.VaultResolverABI.Unpack("getVaultData", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode getVaultData: %w", err)
	}

	return &vaultData{
		supplyToken:          vals[0].(common.Address),
		borrowToken:          vals[1].(common.Address),
		collateralFactor:     vals[2].(*big.Int),
		liquidationThreshold: vals[3].(*big.Int),
		oraclePrice:          vals[4].(*big.Int),
		borrowRate:           vals[5].(*big.Int),
		supplyRate:           vals[6].(*big.Int),
		totalSupply:          vals[7].(*big.Int),
		totalBorrow:          vals[8].(*big.Int),
	}, nil
}

// Data returns the current state of one vault.
func (s *Service) Data(ctx context.Context, chainName, name string) (*State, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	v, err := dep.Vault(name)
	if err != nil {
		return nil, err
	}

	vd, err := s.vaultData(ctx, chainName, dep.VaultResolver, v.Address)
	if err != nil {
		return nil, err
	}

	return &State{
		Name:                 v.Name,
		Address:              v.Address.Hex(),
		SupplyToken:          vd.supplyToken.Hex(),
		SupplySymbol:         v.SupplySymbol,
		BorrowToken:          vd.borrowToken.Hex(),
		BorrowSymbol:         v.BorrowSymbol,
		CollateralFactor:     units.PercentFromBps(vd.collateralFactor),
		LiquidationThreshold: units.PercentFromBps(vd.liquidationThreshold),
		OraclePriceRaw:       vd.oraclePrice.String(),
		BorrowAPR:            units.PercentFromBps(vd.borrowRate),
		SupplyAPR:            units.PercentFromBps(vd.supplyRate),
		TotalSupply:          units.FormatUnits(vd.totalSupply, v.SupplyDecimals),
		TotalBorrow:          units.FormatUnits(vd.totalBorrow, v.BorrowDecimals),
	}, nil
}

// Positions returns every NFT position an owner holds across the chain's
// vaults, with collateral and debt decoded from their two's-complement
// resolver encoding.
func (s *Service) Positions(ctx context.Context, chainName string, owner common.Address) ([]*Position, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}

	data, err := protocol.VaultResolverABI.Pack("positionsNftIdOfUser", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to encode positionsNftIdOfUser: %w", err)
	}

	out, err := s.client.CallContract(ctx, chainName, ethereum.CallMsg{To: &dep.VaultResolver, Data: data})
	if err != nil {
		return nil, fmt.Errorf("vault resolver call failed: %w", err)
	}

	vals, err := protocol.VaultResolverABI.Unpack("positionsNftIdOfUser", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode positionsNftIdOfUser: %w", err)
	}
	nftIds := vals[0].([]*big.Int)

	positions := make([]*Position, 0, len(nftIds))
	for _, nftId := range nftIds {
		pos, err := s.position(ctx, chainName, dep, nftId)
		if err != nil {
			return nil, fmt.Errorf("position %s: %w", nftId.String(), err)
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

func (s *Service) position(ctx context.Context, chainName string, dep *protocol.Deployment, nftId *big.Int) (*Position, error) {
	data, err := protocol.VaultResolverABI.Pack("positionByNftId", nftId)
	if err != nil {
		return nil, fmt.Errorf("failed to encode positionByNftId: %w", err)
	}

	out, err := s.client.CallContract(ctx, chainName, ethereum.CallMsg{To: &dep.VaultResolver, Data: data})
	if err != nil {
		return nil, fmt.Errorf("vault resolver call failed: %w", err)
	}

	vals, err := protocol.VaultResolverABI.Unpack("positionByNftId", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode positionByNftId: %w", err)
	}
	owner := vals[0].(common.Address)
	vaultAddr := vals[1].(common.Address)
	collateral := units.Signed(vals[2].(*big.Int))
	debt := units.Signed(vals[3].(*big.Int))

	// Resolve the vault's pair name and decimals from the registry.
	var v *protocol.Vault
	for _, candidate := range dep.Vaults {
		if candidate.Address == vaultAddr {
			v = candidate
			break
		}
	}
	if v == nil {
		return nil, fmt.Errorf("position references unconfigured vault %s", vaultAddr.Hex())
	}

	vd, err := s.vaultData(ctx, chainName, dep.VaultResolver, vaultAddr)
	if err != nil {
		return nil, err
	}

	return &Position{
		NftID:         nftId.String(),
		Owner:         owner.Hex(),
		Vault:         v.Name,
		VaultAddress:  vaultAddr.Hex(),
		CollateralRaw: collateral.String(),
		Collateral:    units.FormatUnits(collateral, v.SupplyDecimals) + " " + v.SupplySymbol,
		DebtRaw:       debt.String(),
		Debt:          units.FormatUnits(debt, v.BorrowDecimals) + " " + v.BorrowSymbol,
		HealthFactor:  healthFactor(collateral, debt, vd.oraclePrice, vd.liquidationThreshold),
	}, nil
}

// healthFactor computes collateralValue * liquidationThreshold / debt where
// the oracle price converts raw supply units to raw borrow units at 1e27
// scale. Below 1 the position is liquidatable; "none" means no debt.
func healthFactor(collateral, debt, oraclePrice, liquidationThreshold *big.Int) string {
	if debt == nil || debt.Sign() <= 0 {
		return "none"
	}

	oracleScale := new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)
	colValue := new(big.Int).Mul(collateral, oraclePrice)
	colValue.Quo(colValue, oracleScale)

	num := new(big.Int).Mul(colValue, liquidationThreshold)
	num.Quo(num, big.NewInt(units.BpsDenominator))

	hf, _ := new(big.Float).Quo(new(big.Float).SetInt(num), new(big.Float).SetInt(debt)).Float64()
	return fmt.Sprintf("%.2f", hf)
}

// EncodeOperate encodes vault.operate(nftId, newCol, newDebt, to). Deltas
// are signed; the ABI layer packs negatives two's-complement. nftId 0 mints
// a new position. Supplying the native token carries the delta as tx value.
func EncodeOperate(chainName, vaultName string, nftId, colDelta, debtDelta *big.Int, to common.Address) (*tx.Request, error) {
	dep, err := protocol.GetDeployment(chainName)
	if err != nil {
		return nil, err
	}
	v, err := dep.Vault(vaultName)
	if err != nil {
		return nil, err
	}

	if nftId == nil {
		nftId = big.NewInt(0)
	}
	if colDelta == nil {
		colDelta = big.NewInt(0)
	}
	if debtDelta == nil {
		debtDelta = big.NewInt(0)
	}
	if colDelta.Sign() == 0 && debtDelta.Sign() == 0 {
		return nil, fmt.Errorf("operate with no collateral or debt change")
	}

	data, err := protocol.VaultABI.Pack("operate", nftId, colDelta, debtDelta, to)
	if err != nil {
		return nil, fmt.Errorf("failed to encode operate: %w", err)
	}

	var value *big.Int
	if colDelta.Sign() > 0 && protocol.IsNative(v.SupplyToken) {
		value = colDelta
	}
	if debtDelta.Sign() < 0 && protocol.IsNative(v.BorrowToken) {
		value = new(big.Int).Neg(debtDelta)
	}

	action := operateAction(colDelta, debtDelta)
	req := tx.NewRequest(action, chainName, v.Address, value, data).
		WithPreview("vault", v.Name).
		WithPreview("nft_id", nftId.String())
	if colDelta.Sign() != 0 {
		req.WithPreview("collateral_delta", units.FormatUnits(colDelta, v.SupplyDecimals)+" "+v.SupplySymbol)
	}
	if debtDelta.Sign() != 0 {
		req.WithPreview("debt_delta", units.FormatUnits(debtDelta, v.BorrowDecimals)+" "+v.BorrowSymbol)
	}
	return req, nil
}

func operateAction(colDelta, debtDelta *big.Int) string {
	switch {
	case debtDelta.Sign() > 0:
		return "borrow"
	case debtDelta.Sign() < 0:
		return "repay"
	case colDelta.Sign() > 0:
		return "supply_collateral"
	default:
		return "withdraw_collateral"
	}
}

// EncodeSupply adds collateral. nftId 0 opens a new position.
func EncodeSupply(chainName, vaultName string, nftId, amount *big.Int, to common.Address) (*tx.Request, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("supply amount must be positive")
	}
	return EncodeOperate(chainName, vaultName, nftId, amount, nil, to)
}

// EncodeWithdrawCollateral removes collateral from a position.
func EncodeWithdrawCollateral(chainName, vaultName string, nftId, amount *big.Int, to common.Address) (*tx.Request, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("withdraw amount must be positive")
	}
	return EncodeOperate(chainName, vaultName, nftId, new(big.Int).Neg(amount), nil, to)
}

// EncodeBorrow draws debt against a position.
func EncodeBorrow(chainName, vaultName string, nftId, amount *big.Int, to common.Address) (*tx.Request, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("borrow amount must be positive")
	}
	return EncodeOperate(chainName, vaultName, nftId, nil, amount, to)
}

// EncodeRepay pays debt down. ERC20 debt needs a prior approval of the
// vault; native debt carries the amount as tx value.
func EncodeRepay(chainName, vaultName string, nftId, amount *big.Int, to common.Address) (*tx.Request, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("repay amount must be positive")
	}
	return EncodeOperate(chainName, vaultName, nftId, nil, new(big.Int).Neg(amount), to)
}

package protocol

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDeployment(t *testing.T) {
	t.Run("deployed chains resolve", func(t *testing.T) {
		for _, name := range []string{"ethereum", "arbitrum", "base"} {
			dep, err := GetDeployment(name)
			require.NoError(t, err, "chain %s", name)
			assert.NotEqual(t, common.Address{}, dep.LendingResolver)
			assert.NotEqual(t, common.Address{}, dep.VaultResolver)
			assert.NotEqual(t, common.Address{}, dep.DexResolver)
		}
	})

	t.Run("undeployed chain is an error", func(t *testing.T) {
		_, err := GetDeployment("sepolia")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not deployed")
	})

	t.Run("DeployedChains is sorted", func(t *testing.T) {
		assert.Equal(t, []string{"arbitrum", "base", "ethereum"}, DeployedChains())
	})
}

func TestDeploymentLookups(t *testing.T) {
	dep, err := GetDeployment("ethereum")
	require.NoError(t, err)

	t.Run("market lookup", func(t *testing.T) {
		m, err := dep.Market("fUSDC")
		require.NoError(t, err)
		assert.Equal(t, "fUSDC", m.Symbol)
		assert.Equal(t, "USDC", m.UnderlyingSymbol)
		assert.Equal(t, uint8(6), m.Decimals)

		_, err = dep.Market("fDOGE")
		assert.Error(t, err)
	})

	t.Run("vault lookup", func(t *testing.T) {
		v, err := dep.Vault("ETH/USDC")
		require.NoError(t, err)
		assert.True(t, IsNative(v.SupplyToken))
		assert.Equal(t, "USDC", v.BorrowSymbol)

		_, err = dep.Vault("DOGE/USDC")
		assert.Error(t, err)
	})

	t.Run("pool lookup", func(t *testing.T) {
		p, err := dep.Pool("USDC-USDT")
		require.NoError(t, err)
		assert.Equal(t, "USDC", p.Symbol0)
		assert.Equal(t, "USDT", p.Symbol1)

		_, err = dep.Pool("DOGE-USDT")
		assert.Error(t, err)
	})

	t.Run("market symbols are sorted and keyed consistently", func(t *testing.T) {
		symbols := dep.MarketSymbols()
		assert.Equal(t, []string{"fUSDC", "fUSDT", "fWETH", "fwstETH"}, symbols)
		for key, m := range dep.Markets {
			assert.Equal(t, key, m.Symbol)
		}
	})
}

func TestRegistryUniqueness(t *testing.T) {
	for chainName, dep := range deployments {
		t.Run(chainName, func(t *testing.T) {
			seen := make(map[common.Address]string)
			for _, m := range dep.Markets {
				prev, dup := seen[m.FToken]
				assert.False(t, dup, "fToken %s shared by %s and %s", m.FToken.Hex(), prev, m.Symbol)
				seen[m.FToken] = m.Symbol
			}
			for _, v := range dep.Vaults {
				prev, dup := seen[v.Address]
				assert.False(t, dup, "address %s shared by %s and %s", v.Address.Hex(), prev, v.Name)
				seen[v.Address] = v.Name
			}
			for _, p := range dep.Pools {
				prev, dup := seen[p.Address]
				assert.False(t, dup, "address %s shared by %s and %s", p.Address.Hex(), prev, p.Name)
				seen[p.Address] = p.Name
			}
		})
	}
}

func TestIsNative(t *testing.T) {
	assert.True(t, IsNative(NativeToken))
	assert.False(t, IsNative(usdcMainnet))
	assert.False(t, IsNative(common.Address{}))
}

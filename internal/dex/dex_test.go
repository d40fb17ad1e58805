package dex

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/fluidctl/internal/protocol"
)

var trader = common.HexToAddress("0x5555555555555555555555555555555555555555")

func TestEncodeSwap(t *testing.T) {
	t.Run("encodes swapIn(swap0to1, amountIn, amountOutMin, to)", func(t *testing.T) {
		amountIn := big.NewInt(100000000) // 100 USDC
		minOut := big.NewInt(99000000)    // 99 USDT

		req, err := EncodeSwap("ethereum", "USDC-USDT", true, amountIn, minOut, trader)
		require.NoError(t, err)

		dep, err := protocol.GetDeployment("ethereum")
		require.NoError(t, err)
		pool, err := dep.Pool("USDC-USDT")
		require.NoError(t, err)

		assert.Equal(t, "swap", req.Action)
		assert.Equal(t, pool.Address.Hex(), req.To)
		assert.Equal(t, "0", req.Value)
		assert.Equal(t, "100 USDC", req.Preview["amount_in"])
		assert.Equal(t, "99 USDT", req.Preview["min_out"])

		data := common.FromHex(req.Data)
		require.Len(t, data, 4+4*32)
		assert.Equal(t, protocol.DexPoolABI.Methods["swapIn"].ID, data[:4])
		// bool true packs as a 1 in the last byte of the first word
		assert.Equal(t, byte(1), data[35])
		assert.Equal(t, common.LeftPadBytes(amountIn.Bytes(), 32), data[36:68])
		assert.Equal(t, common.LeftPadBytes(minOut.Bytes(), 32), data[68:100])
		assert.Equal(t, common.LeftPadBytes(trader.Bytes(), 32), data[100:132])
	})

	t.Run("native in-token carries tx value", func(t *testing.T) {
		amountIn := big.NewInt(1000000000000000000) // 1 ETH, token1 of wstETH-ETH

		req, err := EncodeSwap("ethereum", "wstETH-ETH", false, amountIn, nil, trader)
		require.NoError(t, err)

		assert.Equal(t, amountIn.String(), req.Value)
		assert.Equal(t, "1 ETH", req.Preview["amount_in"])
		assert.Equal(t, "0 wstETH", req.Preview["min_out"])

		data := common.FromHex(req.Data)
		assert.Equal(t, byte(0), data[35], "swap0to1 must be false")
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := EncodeSwap("ethereum", "USDC-USDT", true, big.NewInt(0), nil, trader)
		assert.Error(t, err)
		_, err = EncodeSwap("ethereum", "USDC-USDT", true, nil, nil, trader)
		assert.Error(t, err)
	})

	t.Run("unknown pool", func(t *testing.T) {
		_, err := EncodeSwap("ethereum", "DOGE-USDT", true, big.NewInt(1), nil, trader)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown pool")
	})
}

func TestEffectivePrice(t *testing.T) {
	t.Run("adjusts for decimals", func(t *testing.T) {
		// 100 USDC (6 decimals) -> 0.05 ETH (18 decimals): 0.0005 ETH per USDC
		in := big.NewInt(100000000)
		out := big.NewInt(50000000000000000)

		price := effectivePrice(in, 6, out, 18, "USDC", "ETH")
		assert.Equal(t, "0.000500 ETH per USDC", price)
	})

	t.Run("zero input yields empty string", func(t *testing.T) {
		assert.Equal(t, "", effectivePrice(big.NewInt(0), 6, big.NewInt(1), 6, "A", "B"))
	})
}

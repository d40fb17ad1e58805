package tx

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/fluidctl/internal/protocol"
)

func TestNewRequest(t *testing.T) {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")

	t.Run("nil value means zero", func(t *testing.T) {
		req := NewRequest("deposit", "ethereum", to, nil, []byte{0x01, 0x02})
		assert.Equal(t, "0", req.Value)
		assert.Equal(t, "0x0102", req.Data)
		assert.Equal(t, to.Hex(), req.To)
	})

	t.Run("value is decimal wei", func(t *testing.T) {
		req := NewRequest("swap", "base", to, big.NewInt(1500000000000000000), nil)
		assert.Equal(t, "1500000000000000000", req.Value)
		assert.Equal(t, "0x", req.Data)
	})

	t.Run("preview fields chain", func(t *testing.T) {
		req := NewRequest("borrow", "ethereum", to, nil, nil).
			WithPreview("vault", "ETH/USDC").
			WithPreview("amount", "100 USDC")
		assert.Equal(t, "ETH/USDC", req.Preview["vault"])
		assert.Equal(t, "100 USDC", req.Preview["amount"])
	})

	t.Run("describe names the action", func(t *testing.T) {
		req := NewRequest("repay", "ethereum", to, nil, []byte{0xaa, 0xbb})
		desc := req.Describe()
		assert.Contains(t, desc, "repay")
		assert.Contains(t, desc, "ethereum")
	})
}

func TestCallMsg(t *testing.T) {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	from := common.HexToAddress("0x2222222222222222222222222222222222222222")

	t.Run("round trips the envelope fields", func(t *testing.T) {
		req := NewRequest("deposit", "ethereum", to, big.NewInt(1500000000000000000), []byte{0xde, 0xad})

		msg, err := req.CallMsg(from)
		require.NoError(t, err)
		assert.Equal(t, from, msg.From)
		assert.Equal(t, to, *msg.To)
		assert.Equal(t, "1500000000000000000", msg.Value.String())
		assert.Equal(t, []byte{0xde, 0xad}, msg.Data)
	})

	t.Run("zero from address is allowed", func(t *testing.T) {
		req := NewRequest("swap", "base", to, nil, nil)

		msg, err := req.CallMsg(common.Address{})
		require.NoError(t, err)
		assert.Equal(t, common.Address{}, msg.From)
		assert.Equal(t, int64(0), msg.Value.Int64())
	})

	t.Run("rejects tampered fields", func(t *testing.T) {
		req := NewRequest("deposit", "ethereum", to, nil, nil)

		req.To = "not-an-address"
		_, err := req.CallMsg(from)
		assert.Error(t, err)

		req = NewRequest("deposit", "ethereum", to, nil, nil)
		req.Value = "-5"
		_, err = req.CallMsg(from)
		assert.Error(t, err)

		req = NewRequest("deposit", "ethereum", to, nil, nil)
		req.Data = "0xzz"
		_, err = req.CallMsg(from)
		assert.Error(t, err)
	})
}

func TestEncodeApprove(t *testing.T) {
	token := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	spender := common.HexToAddress("0x9Fb7b4477576Fe5B32be4C1843aFB1e55F251B33")

	t.Run("encodes approve(spender, amount)", func(t *testing.T) {
		amount := big.NewInt(100000000)
		req, err := EncodeApprove("ethereum", token, spender, amount)
		require.NoError(t, err)

		assert.Equal(t, "approve_token", req.Action)
		assert.Equal(t, token.Hex(), req.To)
		assert.Equal(t, "0", req.Value)

		data := common.FromHex(req.Data)
		require.Len(t, data, 4+32+32)
		assert.Equal(t, common.Hex2Bytes("095ea7b3"), data[:4])
		assert.Equal(t, common.LeftPadBytes(spender.Bytes(), 32), data[4:36])
		assert.Equal(t, common.LeftPadBytes(amount.Bytes(), 32), data[36:68])
	})

	t.Run("rejects the native sentinel", func(t *testing.T) {
		_, err := EncodeApprove("ethereum", protocol.NativeToken, spender, big.NewInt(1))
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "native"))
	})

	t.Run("rejects negative and missing amounts", func(t *testing.T) {
		_, err := EncodeApprove("ethereum", token, spender, big.NewInt(-1))
		assert.Error(t, err)
		_, err = EncodeApprove("ethereum", token, spender, nil)
		assert.Error(t, err)
	})
}

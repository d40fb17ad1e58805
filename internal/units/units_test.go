package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigned(t *testing.T) {
	maxInt := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))

	t.Run("nil is zero", func(t *testing.T) {
		assert.Equal(t, int64(0), Signed(nil).Int64())
	})

	t.Run("values at or below 2^255-1 pass through", func(t *testing.T) {
		assert.Equal(t, int64(0), Signed(big.NewInt(0)).Int64())
		assert.Equal(t, int64(42), Signed(big.NewInt(42)).Int64())
		assert.Equal(t, 0, Signed(maxInt).Cmp(maxInt))
	})

	t.Run("2^255 is the most negative value", func(t *testing.T) {
		minInt := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
		u := new(big.Int).Lsh(big.NewInt(1), 255)

		assert.Equal(t, 0, Signed(u).Cmp(minInt))
	})

	t.Run("max uint256 is -1", func(t *testing.T) {
		u := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
		assert.Equal(t, int64(-1), Signed(u).Int64())
	})

	t.Run("does not mutate input", func(t *testing.T) {
		u := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(7))
		saved := new(big.Int).Set(u)

		_ = Signed(u)
		assert.Equal(t, 0, u.Cmp(saved))
	})
}

func TestUnsignedRoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(-1),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1)),
		new(big.Int).Lsh(big.NewInt(1), 255), // 2^255, decodes negative
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
	}

	for _, u := range cases {
		t.Run(u.String(), func(t *testing.T) {
			assert.Equal(t, 0, Unsigned(Signed(u)).Cmp(u))
		})
	}
}

func TestSharesToAssets(t *testing.T) {
	price := func(f float64) *big.Int {
		// exchange price scaled 1e12
		p, _ := new(big.Float).Mul(big.NewFloat(f), big.NewFloat(1e12)).Int(nil)
		return p
	}

	t.Run("zero shares yield zero", func(t *testing.T) {
		assert.Equal(t, int64(0), SharesToAssets(big.NewInt(0), price(1.5)).Int64())
	})

	t.Run("nil inputs yield zero", func(t *testing.T) {
		assert.Equal(t, int64(0), SharesToAssets(nil, price(1)).Int64())
		assert.Equal(t, int64(0), SharesToAssets(big.NewInt(5), nil).Int64())
	})

	t.Run("scales by exchange price", func(t *testing.T) {
		assert.Equal(t, int64(200), SharesToAssets(big.NewInt(100), price(2)).Int64())
		assert.Equal(t, int64(150), SharesToAssets(big.NewInt(100), price(1.5)).Int64())
	})

	t.Run("sign is preserved", func(t *testing.T) {
		assert.Equal(t, int64(-200), SharesToAssets(big.NewInt(-100), price(2)).Int64())
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		// 1 share at price 0.5 -> 0.5 assets -> 0
		assert.Equal(t, int64(0), SharesToAssets(big.NewInt(1), price(0.5)).Int64())
		// -1 share at price 0.5 -> -0.5 assets -> 0, not -1
		assert.Equal(t, int64(0), SharesToAssets(big.NewInt(-1), price(0.5)).Int64())
		// -3 shares at price 0.5 -> -1.5 -> -1
		assert.Equal(t, int64(-1), SharesToAssets(big.NewInt(-3), price(0.5)).Int64())
	})

	t.Run("inverse conversion", func(t *testing.T) {
		assert.Equal(t, int64(100), AssetsToShares(big.NewInt(200), price(2)).Int64())
		assert.Equal(t, int64(0), AssetsToShares(big.NewInt(200), big.NewInt(0)).Int64())
	})
}

func TestPercentFromBps(t *testing.T) {
	cases := map[string]struct {
		bps  int64
		want string
	}{
		"two decimals":        {425, "4.25%"},
		"trailing zero":       {420, "4.2%"},
		"whole percent":       {400, "4%"},
		"zero":                {0, "0%"},
		"one hundred percent": {10000, "100%"},
		"single bps":          {1, "0.01%"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, PercentFromBps(big.NewInt(tc.bps)))
		})
	}

	t.Run("nil is zero", func(t *testing.T) {
		assert.Equal(t, "0%", PercentFromBps(nil))
	})
}

func TestAnnualRateFromPerSecond(t *testing.T) {
	t.Run("zero rate", func(t *testing.T) {
		assert.Equal(t, "0%", AnnualRateFromPerSecond(big.NewInt(0)))
		assert.Equal(t, "0%", AnnualRateFromPerSecond(nil))
	})

	t.Run("compounds over a year", func(t *testing.T) {
		// 1e18 ray = 1e-9 per second; (1+1e-9)^31536000 - 1 ~= 3.2038%
		ray := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
		assert.Equal(t, "3.2%", AnnualRateFromPerSecond(ray))
	})
}

func TestFormatUnits(t *testing.T) {
	wei := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		return v
	}

	t.Run("zero and nil", func(t *testing.T) {
		assert.Equal(t, "0", FormatUnits(nil, 18))
		assert.Equal(t, "0", FormatUnits(big.NewInt(0), 18))
	})

	t.Run("whole amounts trim the fraction", func(t *testing.T) {
		assert.Equal(t, "1", FormatUnits(wei("1000000000000000000"), 18))
		assert.Equal(t, "100", FormatUnits(big.NewInt(100000000), 6))
	})

	t.Run("fractions keep significant digits only", func(t *testing.T) {
		assert.Equal(t, "1.5", FormatUnits(wei("1500000000000000000"), 18))
		assert.Equal(t, "0.000000000000000001", FormatUnits(big.NewInt(1), 18))
	})

	t.Run("negative amounts keep their sign", func(t *testing.T) {
		assert.Equal(t, "-1.5", FormatUnits(wei("-1500000000000000000"), 18))
	})

	t.Run("zero decimals", func(t *testing.T) {
		assert.Equal(t, "12345", FormatUnits(big.NewInt(12345), 0))
	})
}

func TestParseUnits(t *testing.T) {
	t.Run("whole and fractional amounts", func(t *testing.T) {
		v, err := ParseUnits("100.5", 6)
		require.NoError(t, err)
		assert.Equal(t, int64(100500000), v.Int64())

		v, err = ParseUnits("1", 18)
		require.NoError(t, err)
		assert.Equal(t, "1000000000000000000", v.String())

		v, err = ParseUnits(".5", 6)
		require.NoError(t, err)
		assert.Equal(t, int64(500000), v.Int64())
	})

	t.Run("negative amounts", func(t *testing.T) {
		v, err := ParseUnits("-2.5", 6)
		require.NoError(t, err)
		assert.Equal(t, int64(-2500000), v.Int64())
	})

	t.Run("too many decimal places", func(t *testing.T) {
		_, err := ParseUnits("0.1234567", 6)
		assert.Error(t, err)
	})

	t.Run("malformed input", func(t *testing.T) {
		for _, bad := range []string{"", "abc", "1.2.3", "1,5", "--5", "-+5", "+5", "-", ".", "-.", "1e6", " 5 5"} {
			_, err := ParseUnits(bad, 6)
			assert.Error(t, err, "input %q", bad)
		}
	})

	t.Run("round trips with FormatUnits", func(t *testing.T) {
		v, err := ParseUnits("123.456", 6)
		require.NoError(t, err)
		assert.Equal(t, "123.456", FormatUnits(v, 6))
	})
}

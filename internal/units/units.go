// Package units holds the fixed-point decoding and formatting helpers shared
// by the lending, vault and dex packages. Contracts return raw uint256 words;
// everything here reshapes those words into signed values, token amounts and
// human-readable rates without ever recomputing protocol math.
package units

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

const (
	// ExchangePriceDecimals is the scale of lending exchange prices:
	// assets = shares * exchangePrice / 1e12.
	ExchangePriceDecimals = 12

	// RayDecimals is the scale of per-second interest rates (1e27 = 100%/s).
	RayDecimals = 27

	// SecondsPerYear is the compounding horizon for annualized rates.
	SecondsPerYear = 31536000

	// BpsDenominator converts basis points to a fraction (10000 bps = 100%).
	BpsDenominator = 10000
)

var (
	maxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	twoPow256 = new(big.Int).Lsh(big.NewInt(1), 256)

	exchangePriceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(ExchangePriceDecimals), nil)
)

// Signed reinterprets a uint256 word as a two's-complement int256. Values
// above 2^255-1 map to negatives; everything else passes through unchanged.
func Signed(u *big.Int) *big.Int {
	if u == nil {
		return big.NewInt(0)
	}
	if u.Cmp(maxInt256) > 0 {
		return new(big.Int).Sub(u, twoPow256)
	}
	return new(big.Int).Set(u)
}

// Unsigned is the inverse of Signed: it encodes an int256 as the uint256
// word the ABI expects, wrapping negatives into the upper half of the range.
func Unsigned(s *big.Int) *big.Int {
	if s == nil {
		return big.NewInt(0)
	}
	if s.Sign() < 0 {
		return new(big.Int).Add(s, twoPow256)
	}
	return new(big.Int).Set(s)
}

// SharesToAssets converts protocol share units to underlying token amounts:
// shares * exchangePrice / 1e12. Sign follows the shares; division truncates
// toward zero, matching EVM integer division.
func SharesToAssets(shares, exchangePrice *big.Int) *big.Int {
	if shares == nil || exchangePrice == nil || shares.Sign() == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(shares, exchangePrice)
	return out.Quo(out, exchangePriceScale)
}

// AssetsToShares is the inverse conversion: assets * 1e12 / exchangePrice.
// A zero exchange price yields zero rather than a panic; callers treat an
// unpriced market as empty.
func AssetsToShares(assets, exchangePrice *big.Int) *big.Int {
	if assets == nil || exchangePrice == nil || exchangePrice.Sign() == 0 || assets.Sign() == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(assets, exchangePriceScale)
	return out.Quo(out, exchangePrice)
}

// PercentFromBps renders a basis-point rate as a percentage string,
// e.g. 425 -> "4.25%", 420 -> "4.2%", 400 -> "4%".
func PercentFromBps(bps *big.Int) string {
	if bps == nil {
		return "0%"
	}
	pct, _ := new(big.Float).Quo(new(big.Float).SetInt(bps), big.NewFloat(100)).Float64()
	return formatPercent(pct)
}

// AnnualRateFromPerSecond compounds a ray-scaled (1e27) per-second rate over
// a year and renders it as a percentage: ((1+r)^secondsPerYear - 1) * 100.
// float64 precision is more than enough for a two-decimal display value.
func AnnualRateFromPerSecond(rayRate *big.Int) string {
	if rayRate == nil || rayRate.Sign() == 0 {
		return "0%"
	}
	r, _ := new(big.Float).Quo(
		new(big.Float).SetInt(rayRate),
		new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(RayDecimals), nil)),
	).Float64()
	apy := (math.Pow(1+r, SecondsPerYear) - 1) * 100
	return formatPercent(apy)
}

// formatPercent rounds to two decimals and strips trailing zeros.
func formatPercent(pct float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.2f", pct), "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return s + "%"
}

// FormatUnits renders a raw token amount with the given decimals as an exact
// decimal string, trailing zeros trimmed. Negative amounts keep their sign.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	out := whole.String()
	if frac.Sign() != 0 {
		digits := strings.TrimRight(fmt.Sprintf("%0*s", int(decimals), frac.String()), "0")
		out += "." + digits
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ParseUnits parses a decimal amount string into raw token units. The only
// accepted shape is an optional single leading minus, then digits with at
// most one decimal point; anything else is rejected so a garbled amount can
// never reach calldata encoding.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return nil, fmt.Errorf("empty amount")
	}

	neg := false
	if in[0] == '-' {
		neg = true
		in = in[1:]
	}

	whole, frac := in, ""
	if i := strings.IndexByte(in, '.'); i >= 0 {
		whole, frac = in[:i], in[i+1:]
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	if !isDecimalDigits(whole) || !isDecimalDigits(frac) {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	out, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	if neg {
		out.Neg(out)
	}
	return out, nil
}

func isDecimalDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals of the native token, the same as ether
const Decimals = 18

// ToWei converts a display amount into the smallest unit.
// Digits beyond 18 decimals are truncated.
func ToWei(amount float64) *big.Int {
	return decimal.NewFromFloat(amount).Shift(Decimals).BigInt()
}

// FromWei converts the smallest unit into a display amount
func FromWei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := decimal.NewFromBigInt(wei, -Decimals).Float64()
	return f
}

// FormatWei renders wei as an exact decimal string in display units
func FormatWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -Decimals).String()
}

// GweiToWei converts a whole gwei price into wei
func GweiToWei(gwei int64) *big.Int {
	return decimal.New(gwei, 9).BigInt()
}

// FormatGwei renders a wei gas price in gwei
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -9).String()
}

// ScalePct returns v * pct / 100 using integer math
func ScalePct(v *big.Int, pct int64) *big.Int {
	out := new(big.Int).Mul(v, big.NewInt(pct))
	return out.Div(out, big.NewInt(100))
}

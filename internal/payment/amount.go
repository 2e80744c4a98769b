package payment

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MinorUnits converts quantity x unit price into the processor's integer
// amount (cents for usd), rounding half away from zero.
func MinorUnits(price float64, quantity int64) int64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(quantity)).
		Mul(hundred).
		Round(0).
		IntPart()
}

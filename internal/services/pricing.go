package services

import "github.com/shopspring/decimal"

// orderTotal returns price × quantity computed in decimal, so 0.1 × 3 is 0.3.
func orderTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).InexactFloat64()
}

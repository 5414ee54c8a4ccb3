package utils

import "github.com/shopspring/decimal"

// RoundMoney rounds a computed float amount to cents for client responses.
// Core allocation math stays in float64 with no internal rounding; this is the
// display boundary.
// Example: 33.333333333333336 returns 33.33.
func RoundMoney(amount float64) float64 {
	rounded, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return rounded
}

// RoundMoneyWithPrecision rounds an amount to the given number of decimal places.
func RoundMoneyWithPrecision(amount float64, precision int) float64 {
	rounded, _ := decimal.NewFromFloat(amount).Round(int32(precision)).Float64()
	return rounded
}

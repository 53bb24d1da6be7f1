package core

import "github.com/shopspring/decimal"

// MonthlyRent normalises an active tenancy to a monthly amount. Weekly rents
// use the 4.33 weeks-per-month convention.
func (t Tenancy) MonthlyRent() decimal.Decimal {
	if !t.Active {
		return decimal.Zero
	}
	switch t.Frequency {
	case Monthly:
		return t.RentAmount
	case Weekly:
		return t.RentAmount.Mul(weeksPerMonth)
	default:
		return decimal.Zero
	}
}

var weeksPerMonth = decimal.RequireFromString("4.33")

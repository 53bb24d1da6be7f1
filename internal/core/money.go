// Package core provides the landlord record types shared by every layer.
//
// This file contains money categories plus parsing and display helpers for
// monetary amounts. Amounts are decimal pounds; arithmetic never goes
// through float64.
package core

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the ISO code of every amount in the ledger.
const Currency = money.GBP

const (
	RentIncome              MoneyCategory = "rent_income"
	OtherIncome             MoneyCategory = "other_income"
	MortgageInterest        MoneyCategory = "mortgage_interest"
	RepairsMaintenance      MoneyCategory = "repairs_maintenance"
	Insurance               MoneyCategory = "insurance"
	Utilities               MoneyCategory = "utilities"
	ManagementFees          MoneyCategory = "management_fees"
	LegalProfessional       MoneyCategory = "legal_professional"
	Travel                  MoneyCategory = "travel"
	Advertising             MoneyCategory = "advertising"
	GroundRentServiceCharge MoneyCategory = "ground_rent_service_charge"
	CouncilTax              MoneyCategory = "council_tax"
	BusinessRates           MoneyCategory = "business_rates"
	CommercialInsurance     MoneyCategory = "commercial_insurance"
	FitOutCosts             MoneyCategory = "fit_out_costs"
	Cleaning                MoneyCategory = "cleaning"
	Security                MoneyCategory = "security"
	OtherExpense            MoneyCategory = "other_expense"
)

// MoneyCategory classifies a money entry for reporting.
type MoneyCategory string

var moneyCategoryLabels = map[MoneyCategory]string{
	RentIncome:              "Rent Income",
	OtherIncome:             "Other Income",
	MortgageInterest:        "Mortgage Interest",
	RepairsMaintenance:      "Repairs & Maintenance",
	Insurance:               "Insurance",
	Utilities:               "Utilities",
	ManagementFees:          "Management Fees",
	LegalProfessional:       "Legal & Professional",
	Travel:                  "Travel",
	Advertising:             "Advertising",
	GroundRentServiceCharge: "Ground Rent / Service Charge",
	CouncilTax:              "Council Tax",
	BusinessRates:           "Business Rates",
	CommercialInsurance:     "Commercial Insurance",
	FitOutCosts:             "Fit-Out / Refurbishment",
	Cleaning:                "Cleaning",
	Security:                "Security",
	OtherExpense:            "Other Expense",
}

// IncomeCategories lists the categories valid for income entries.
var IncomeCategories = []MoneyCategory{RentIncome, OtherIncome}

// ResidentialExpenseCategories lists the expense categories offered for residential lets.
var ResidentialExpenseCategories = []MoneyCategory{
	MortgageInterest, RepairsMaintenance, Insurance, Utilities,
	ManagementFees, LegalProfessional, Travel, Advertising,
	GroundRentServiceCharge, CouncilTax, OtherExpense,
}

// CommercialExpenseCategories lists the expense categories offered for commercial lets.
var CommercialExpenseCategories = []MoneyCategory{
	MortgageInterest, RepairsMaintenance, CommercialInsurance, Utilities,
	ManagementFees, LegalProfessional, BusinessRates, FitOutCosts,
	Cleaning, Security, Advertising, Travel, OtherExpense,
}

func (c MoneyCategory) IsValid() bool {
	_, ok := moneyCategoryLabels[c]
	return ok
}

// Label returns the display name, or the raw value for unknown categories.
func (c MoneyCategory) Label() string {
	if l, ok := moneyCategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// EntryType reports whether the category books income or expense.
func (c MoneyCategory) EntryType() EntryType {
	if c == RentIncome || c == OtherIncome {
		return Income
	}
	return Expense
}

// ParseAmount converts a user supplied amount to pounds, rounded half-up to
// pence.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading pound sign. Negative values are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("£1250")  -> 1250, nil
//	ParseAmount("12.345") -> 12.35, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "£")
	s = normaliseSeparators(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// normaliseSeparators treats commas as thousands separators ("1,250.50"),
// except a lone comma followed by one or two digits, which is read as a
// decimal comma ("12,5").
func normaliseSeparators(s string) string {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if frac := s[strings.Index(s, ",")+1:]; len(frac) > 0 && len(frac) <= 2 {
			return strings.Replace(s, ",", ".", 1)
		}
	}
	return strings.ReplaceAll(s, ",", "")
}

// FormatGBP renders an amount the way statements show it, e.g. "£1,250.00".
func FormatGBP(amount decimal.Decimal) string {
	pence := amount.Shift(2).Round(0).IntPart()
	return money.New(pence, Currency).Display()
}

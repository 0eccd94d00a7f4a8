package models

import "github.com/shopspring/decimal"

// MemberMonthSummary is a member's monthly position in both ledgers.
// Bills and the meal fund are reported separately and never netted.
type MemberMonthSummary struct {
	MemberID int64
	Month    Month

	BillsTotal   decimal.Decimal
	BillsPaid    decimal.Decimal
	BillsPending decimal.Decimal

	// MealQuantity and MealsCost only count finalized meals.
	MealQuantity decimal.Decimal
	MealsCost    decimal.Decimal

	DepositsTotal decimal.Decimal

	// Refundable is DepositsTotal - MealsCost.
	// Positive: the fund owes the member. Negative: the member owes the fund.
	Refundable decimal.Decimal
}

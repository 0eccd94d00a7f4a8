package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/models"
)

// SummarizeMember aggregates a member's monthly position.
//
// Algorithm:
//   - bills: total and paid over the member's assignments; pending = total - paid
//   - meals: quantity and cost over finalized meals only (open days have no cost yet)
//   - deposits: plain sum
//   - refundable = deposits - meals cost
//
// Bill settlement and the meal fund are two separate ledgers and are not netted.
func SummarizeMember(memberID int64, month models.Month, shares []models.MemberBillShare, meals []models.Meal, deposits []models.Deposit) models.MemberMonthSummary {
	summary := models.MemberMonthSummary{
		MemberID:      memberID,
		Month:         month,
		BillsTotal:    decimal.Zero,
		BillsPaid:     decimal.Zero,
		MealQuantity:  decimal.Zero,
		MealsCost:     decimal.Zero,
		DepositsTotal: SumDeposits(deposits),
	}

	for _, s := range shares {
		summary.BillsTotal = summary.BillsTotal.Add(s.AssignedAmount)
		if s.IsPaid {
			summary.BillsPaid = summary.BillsPaid.Add(s.AssignedAmount)
		}
	}
	summary.BillsPending = summary.BillsTotal.Sub(summary.BillsPaid)

	for _, m := range meals {
		if !m.IsFinalized() {
			continue
		}
		summary.MealQuantity = summary.MealQuantity.Add(m.TotalQuantity)
		if m.TotalCost.Valid {
			summary.MealsCost = summary.MealsCost.Add(m.TotalCost.Decimal)
		}
	}

	summary.Refundable = summary.DepositsTotal.Sub(summary.MealsCost)
	return summary
}

// SumDeposits adds up deposit amounts.
func SumDeposits(deposits []models.Deposit) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range deposits {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// SumShopping adds up shopping amounts.
func SumShopping(shopping []models.Shopping) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shopping {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// SumBills adds up bill totals.
func SumBills(bills []models.Bill) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range bills {
		sum = sum.Add(b.TotalAmount)
	}
	return sum
}

// FundBalance is the money left in the meal fund: deposits in minus shopping out.
func FundBalance(deposits []models.Deposit, shopping []models.Shopping) decimal.Decimal {
	return SumDeposits(deposits).Sub(SumShopping(shopping))
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MealState is the lifecycle state of a meal record.
type MealState int

const (
	// MealOpen records can be edited freely.
	MealOpen MealState = iota
	// MealFinalized records have a frozen rate and cost. There is no
	// transition back to MealOpen.
	MealFinalized
)

func (s MealState) String() string {
	if s == MealFinalized {
		return "finalized"
	}
	return "open"
}

// Meal holds one member's meal quantities for one day.
// (MemberID, MealDate) is unique.
type Meal struct {
	ID       int64
	MemberID int64
	MealDate time.Time

	// Quantities are non-negative and may be fractional (0.5 = half meal).
	Breakfast decimal.Decimal
	Lunch     decimal.Decimal
	Dinner    decimal.Decimal

	// TotalQuantity is Breakfast+Lunch+Dinner, recomputed on every write.
	TotalQuantity decimal.Decimal

	// MealRate and TotalCost are null until the day is finalized.
	MealRate  decimal.NullDecimal
	TotalCost decimal.NullDecimal

	State MealState

	// FinalizationID links a finalized meal to its audit record.
	FinalizationID string

	Notes string
}

// IsFinalized reports whether the meal's cost has been frozen.
func (m Meal) IsFinalized() bool {
	return m.State == MealFinalized
}

// Finalization records one freeze of a day's open meals at a given rate.
type Finalization struct {
	// ID is a UUID.
	ID string

	MealDate time.Time
	MealRate decimal.Decimal

	// MealCount is the number of meal records frozen by this finalization.
	MealCount int

	TotalQuantity decimal.Decimal
	TotalCost     decimal.Decimal

	FinalizedAt time.Time
}

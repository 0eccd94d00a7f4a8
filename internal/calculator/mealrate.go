package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/models"
)

var (
	ErrNegativeQuantity = errors.New("meal quantity cannot be negative")
	ErrNegativeRate     = errors.New("meal rate cannot be negative")
)

// TotalQuantity is the denormalized meal count stored with each meal record.
func TotalQuantity(breakfast, lunch, dinner decimal.Decimal) decimal.Decimal {
	return breakfast.Add(lunch).Add(dinner)
}

// ValidateQuantities rejects negative meal quantities.
func ValidateQuantities(breakfast, lunch, dinner decimal.Decimal) error {
	if breakfast.IsNegative() || lunch.IsNegative() || dinner.IsNegative() {
		return ErrNegativeQuantity
	}
	return nil
}

// MealRate computes the monthly rate:
//
//	rate = shopping_total / finalized_meal_quantity
//
// No finalized meals means no rate can be attributed yet, so it is zero.
func MealRate(shoppingTotal, finalizedQuantity decimal.Decimal) decimal.Decimal {
	if finalizedQuantity.IsZero() {
		return decimal.Zero
	}
	return shoppingTotal.Div(finalizedQuantity)
}

// MealCost is the frozen cost of a meal record at the given rate.
func MealCost(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate)
}

// FreezeMeal returns m finalized at rate. Already-finalized meals are
// returned unchanged so a second finalize never re-applies a rate.
func FreezeMeal(m models.Meal, rate decimal.Decimal, finalizationID string) models.Meal {
	if m.IsFinalized() {
		return m
	}
	m.MealRate = decimal.NewNullDecimal(rate)
	m.TotalCost = decimal.NewNullDecimal(MealCost(m.TotalQuantity, rate))
	m.State = models.MealFinalized
	m.FinalizationID = finalizationID
	return m
}

// FinalizedQuantity sums TotalQuantity over finalized meals only.
func FinalizedQuantity(meals []models.Meal) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range meals {
		if m.IsFinalized() {
			sum = sum.Add(m.TotalQuantity)
		}
	}
	return sum
}

// DayQuantity sums TotalQuantity over all meals, open or finalized.
func DayQuantity(meals []models.Meal) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range meals {
		sum = sum.Add(m.TotalQuantity)
	}
	return sum
}

// AllFinalized reports whether a non-empty set of meals is fully finalized.
func AllFinalized(meals []models.Meal) bool {
	if len(meals) == 0 {
		return false
	}
	for _, m := range meals {
		if !m.IsFinalized() {
			return false
		}
	}
	return true
}

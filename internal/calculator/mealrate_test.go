package calculator

import (
	"testing"

	"github.com/mmynk/billkhata/internal/models"
)

func TestMealRate(t *testing.T) {
	tests := []struct {
		name     string
		shopping string
		quantity string
		want     string
	}{
		{"shopping over finalized meals", "3000", "150", "20"},
		{"no finalized meals yields zero", "3000", "0", "0"},
		{"nothing at all", "0", "0", "0"},
		{"fractional quantities", "150", "7.5", "20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MealRate(d(tt.shopping), d(tt.quantity))
			if !got.Equal(d(tt.want)) {
				t.Errorf("MealRate(%s, %s) = %s, want %s", tt.shopping, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestFreezeMeal(t *testing.T) {
	open := models.Meal{
		MemberID:      1,
		Breakfast:     d("1"),
		Lunch:         d("1"),
		Dinner:        d("2"),
		TotalQuantity: d("4"),
	}

	frozen := FreezeMeal(open, d("20"), "fin-1")
	if !frozen.IsFinalized() {
		t.Fatal("expected meal to be finalized")
	}
	if !frozen.TotalCost.Valid || !frozen.TotalCost.Decimal.Equal(d("80")) {
		t.Errorf("total cost = %v, want 80", frozen.TotalCost)
	}
	if frozen.FinalizationID != "fin-1" {
		t.Errorf("finalization id = %q, want fin-1", frozen.FinalizationID)
	}

	again := FreezeMeal(frozen, d("35"), "fin-2")
	if !again.TotalCost.Decimal.Equal(d("80")) {
		t.Errorf("refreezing changed cost to %s", again.TotalCost.Decimal)
	}
	if again.FinalizationID != "fin-1" {
		t.Errorf("refreezing changed finalization id to %q", again.FinalizationID)
	}
}

func TestValidateQuantities(t *testing.T) {
	if err := ValidateQuantities(d("0.5"), d("0"), d("2")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateQuantities(d("1"), d("-0.5"), d("1")); err == nil {
		t.Error("expected error for negative lunch")
	}
}

func TestAllFinalized(t *testing.T) {
	if AllFinalized(nil) {
		t.Error("empty day must not count as finalized")
	}
	meals := []models.Meal{{State: models.MealFinalized}, {State: models.MealOpen}}
	if AllFinalized(meals) {
		t.Error("expected false with an open meal")
	}
	meals[1].State = models.MealFinalized
	if !AllFinalized(meals) {
		t.Error("expected true when every meal is finalized")
	}
}

func TestFinalizedQuantity(t *testing.T) {
	meals := []models.Meal{
		{TotalQuantity: d("3"), State: models.MealFinalized},
		{TotalQuantity: d("5"), State: models.MealOpen},
		{TotalQuantity: d("1.5"), State: models.MealFinalized},
	}
	if got := FinalizedQuantity(meals); !got.Equal(d("4.5")) {
		t.Errorf("FinalizedQuantity = %s, want 4.5", got)
	}
	if got := DayQuantity(meals); !got.Equal(d("9.5")) {
		t.Errorf("DayQuantity = %s, want 9.5", got)
	}
}

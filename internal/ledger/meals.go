package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/calculator"
	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
)

// MealEntry is the input for recording one member's meals on one day.
type MealEntry struct {
	MemberID  int64
	Date      time.Time
	Breakfast decimal.Decimal
	Lunch     decimal.Decimal
	Dinner    decimal.Decimal
	Notes     string
}

// FinalizeResult describes the outcome of freezing a day.
type FinalizeResult struct {
	// FinalizationID is empty when there was nothing left to freeze.
	FinalizationID string
	MealDate       time.Time
	MealRate       decimal.Decimal
	MealsFinalized int
	TotalQuantity  decimal.Decimal
	TotalCost      decimal.Decimal
}

// DayStatus summarizes a single day of meals.
type DayStatus struct {
	Date          time.Time
	Meals         []models.Meal
	TotalQuantity decimal.Decimal

	// Finalized is true when the day has records and all are finalized.
	Finalized bool

	CurrentRate   decimal.Decimal
	EstimatedCost decimal.Decimal
}

// MealLedger records daily meals and freezes their cost.
//
// Each (member, day) record moves one way, from open to finalized. Once
// finalized, its rate and cost never change.
type MealLedger struct {
	store    storage.Store
	settings *RoomSettings
	newID    func() string
}

// NewMealLedger creates a MealLedger backed by store.
func NewMealLedger(store storage.Store, settings *RoomSettings) *MealLedger {
	return &MealLedger{store: store, settings: settings, newID: uuid.NewString}
}

// RecordMeal creates or overwrites the member's open record for the day.
func (l *MealLedger) RecordMeal(ctx context.Context, entry MealEntry) (*models.Meal, error) {
	if entry.Date.IsZero() {
		return nil, invalid("meal_date", "is required")
	}
	if err := calculator.ValidateQuantities(entry.Breakfast, entry.Lunch, entry.Dinner); err != nil {
		return nil, invalidErr("quantity", err)
	}
	if err := requireMember(ctx, l.store, entry.MemberID); err != nil {
		return nil, err
	}

	day := models.Day(entry.Date)
	existing, err := l.store.GetMeal(ctx, entry.MemberID, day)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to get meal: %w", err)
	case existing.IsFinalized():
		return nil, &ImmutableRecordError{MemberID: entry.MemberID, Date: day}
	}

	meal := &models.Meal{
		MemberID:      entry.MemberID,
		MealDate:      day,
		Breakfast:     entry.Breakfast,
		Lunch:         entry.Lunch,
		Dinner:        entry.Dinner,
		TotalQuantity: calculator.TotalQuantity(entry.Breakfast, entry.Lunch, entry.Dinner),
		Notes:         entry.Notes,
	}
	if err := l.store.UpsertOpenMeal(ctx, meal); err != nil {
		// Finalized between the check above and the write.
		if errors.Is(err, storage.ErrFinalized) {
			return nil, &ImmutableRecordError{MemberID: entry.MemberID, Date: day}
		}
		return nil, fmt.Errorf("failed to record meal: %w", err)
	}
	return meal, nil
}

// ComputeCurrentMealRate returns the month's shopping total divided by its
// finalized meal quantity, or zero when nothing is finalized yet.
func (l *MealLedger) ComputeCurrentMealRate(ctx context.Context, month models.Month) (decimal.Decimal, error) {
	shopping, err := l.store.ListShopping(ctx, month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list shopping: %w", err)
	}
	meals, err := l.store.ListMealsByMonth(ctx, month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list meals: %w", err)
	}
	return calculator.MealRate(calculator.SumShopping(shopping), calculator.FinalizedQuantity(meals)), nil
}

// FinalizeMeals freezes every open meal on date at rate. Meals that are
// already finalized keep their rate and cost.
func (l *MealLedger) FinalizeMeals(ctx context.Context, date time.Time, rate decimal.Decimal) (*FinalizeResult, error) {
	if date.IsZero() {
		return nil, invalid("meal_date", "is required")
	}
	if rate.IsNegative() {
		return nil, invalidErr("meal_rate", calculator.ErrNegativeRate)
	}

	day := models.Day(date)
	meals, err := l.store.ListMealsByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	result := &FinalizeResult{
		MealDate:      day,
		MealRate:      rate,
		TotalQuantity: decimal.Zero,
		TotalCost:     decimal.Zero,
	}

	fin := &models.Finalization{ID: l.newID(), MealDate: day, MealRate: rate}
	var frozen []models.Meal
	for _, m := range meals {
		if m.IsFinalized() {
			continue
		}
		m = calculator.FreezeMeal(m, rate, fin.ID)
		frozen = append(frozen, m)
		result.TotalQuantity = result.TotalQuantity.Add(m.TotalQuantity)
		result.TotalCost = result.TotalCost.Add(m.TotalCost.Decimal)
	}
	if len(frozen) == 0 {
		return result, nil
	}

	fin.MealCount = len(frozen)
	fin.TotalQuantity = result.TotalQuantity
	fin.TotalCost = result.TotalCost
	if err := l.store.FinalizeMeals(ctx, fin, frozen); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, &ConflictError{Date: day, Err: err}
		}
		return nil, fmt.Errorf("failed to finalize meals for %s: %w", day.Format(models.DateLayout), err)
	}

	result.FinalizationID = fin.ID
	result.MealsFinalized = len(frozen)
	return result, nil
}

// FinalizeDay freezes the day at the current monthly rate. It is only
// available in auto rate mode; in manual mode the caller must use
// FinalizeMeals with an explicit rate.
func (l *MealLedger) FinalizeDay(ctx context.Context, date time.Time) (*FinalizeResult, error) {
	settings, err := l.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings.MealRateMode != models.MealRateAuto {
		return nil, invalid("meal_rate", "manual rate mode requires an explicit rate")
	}

	rate, err := l.ComputeCurrentMealRate(ctx, models.MonthOf(date))
	if err != nil {
		return nil, err
	}
	return l.FinalizeMeals(ctx, date, rate)
}

// DayStatus reports the meals recorded on date and their estimated cost at
// the current monthly rate.
func (l *MealLedger) DayStatus(ctx context.Context, date time.Time) (*DayStatus, error) {
	day := models.Day(date)
	meals, err := l.store.ListMealsByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	rate, err := l.ComputeCurrentMealRate(ctx, models.MonthOf(day))
	if err != nil {
		return nil, err
	}

	qty := calculator.DayQuantity(meals)
	return &DayStatus{
		Date:          day,
		Meals:         meals,
		TotalQuantity: qty,
		Finalized:     calculator.AllFinalized(meals),
		CurrentRate:   rate,
		EstimatedCost: calculator.MealCost(qty, rate),
	}, nil
}

// FillDefaultMeals records the default meal quantity, split between lunch
// and dinner, for every active member who has no record on date. The
// records are written together or not at all; it returns the ones created.
func (l *MealLedger) FillDefaultMeals(ctx context.Context, date time.Time) ([]models.Meal, error) {
	settings, err := l.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	members, err := l.store.ListMembers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	day := models.Day(date)
	existing, err := l.store.ListMealsByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	recorded := make(map[int64]bool, len(existing))
	for _, m := range existing {
		recorded[m.MemberID] = true
	}

	lunch := settings.DefaultMealQuantity.Div(decimal.NewFromInt(2))
	dinner := settings.DefaultMealQuantity.Sub(lunch)

	var missing []models.Meal
	for _, member := range members {
		if recorded[member.ID] {
			continue
		}
		missing = append(missing, models.Meal{
			MemberID:      member.ID,
			MealDate:      day,
			Breakfast:     decimal.Zero,
			Lunch:         lunch,
			Dinner:        dinner,
			TotalQuantity: calculator.TotalQuantity(decimal.Zero, lunch, dinner),
		})
	}
	if len(missing) == 0 {
		return nil, nil
	}

	created, err := l.store.InsertMissingMeals(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to fill default meals: %w", err)
	}
	return created, nil
}

// ListMeals retrieves every meal record in month.
func (l *MealLedger) ListMeals(ctx context.Context, month models.Month) ([]models.Meal, error) {
	meals, err := l.store.ListMealsByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

// ListFinalizations retrieves the finalization history of month.
func (l *MealLedger) ListFinalizations(ctx context.Context, month models.Month) ([]models.Finalization, error) {
	fins, err := l.store.ListFinalizations(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalizations: %w", err)
	}
	return fins, nil
}

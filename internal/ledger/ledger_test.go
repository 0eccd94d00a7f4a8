package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
	"github.com/mmynk/billkhata/internal/storage/sqlite"
)

type testRoom struct {
	store      *sqlite.SQLiteStore
	members    *MemberRegistry
	bills      *BillEngine
	meals      *MealLedger
	fund       *FundLedger
	settings   *RoomSettings
	settlement *Settlement
}

func newTestRoom(t *testing.T) *testRoom {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings := NewRoomSettings(store)
	meals := NewMealLedger(store, settings)
	fund := NewFundLedger(store)
	return &testRoom{
		store:      store,
		members:    NewMemberRegistry(store),
		bills:      NewBillEngine(store),
		meals:      meals,
		fund:       fund,
		settings:   settings,
		settlement: NewSettlement(store, meals, fund),
	}
}

func (r *testRoom) addMember(t *testing.T, name string) int64 {
	t.Helper()
	m := &models.Member{Name: name}
	if err := r.members.Register(context.Background(), m); err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return m.ID
}

func (r *testRoom) recordMeal(t *testing.T, memberID int64, day time.Time, breakfast, lunch, dinner string) *models.Meal {
	t.Helper()
	m, err := r.meals.RecordMeal(context.Background(), MealEntry{
		MemberID: memberID, Date: day,
		Breakfast: d(breakfast), Lunch: d(lunch), Dinner: d(dinner),
	})
	if err != nil {
		t.Fatalf("RecordMeal failed: %v", err)
	}
	return m
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

var june = models.Month{Year: 2024, Month: time.June}

func assertDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestMemberRegistry(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	t.Run("Register requires a name", func(t *testing.T) {
		err := room.members.Register(ctx, &models.Member{Name: "  "})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "name" {
			t.Errorf("expected name ValidationError, got %v", err)
		}
	})

	t.Run("Register rejects negative rent", func(t *testing.T) {
		err := room.members.Register(ctx, &models.Member{Name: "Rafi", RentAmount: d("-1")})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	id := room.addMember(t, "Rahim")

	t.Run("Update returns the changed member", func(t *testing.T) {
		name := "Rahim Uddin"
		rent := d("4500")
		m, err := room.members.Update(ctx, id, models.MemberUpdate{Name: &name, RentAmount: &rent})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if m.Name != name || !m.RentAmount.Equal(rent) {
			t.Errorf("unexpected member: %+v", m)
		}
	})

	t.Run("Update unknown member", func(t *testing.T) {
		name := "Nobody"
		_, err := room.members.Update(ctx, 9999, models.MemberUpdate{Name: &name})
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			t.Error("NotFoundError should match storage.ErrNotFound")
		}
	})

	t.Run("Deactivate keeps the member retrievable", func(t *testing.T) {
		if err := room.members.Deactivate(ctx, id); err != nil {
			t.Fatalf("Deactivate failed: %v", err)
		}
		m, err := room.members.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if m.IsActive {
			t.Error("member should be inactive")
		}
		active, _ := room.members.List(ctx, true)
		if len(active) != 0 {
			t.Errorf("expected no active members, got %d", len(active))
		}
	})
}

func TestCreateBillWithAssignments(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	a := room.addMember(t, "A")
	b := room.addMember(t, "B")
	c := room.addMember(t, "C")

	newBill := func(total string) *models.Bill {
		return &models.Bill{
			Category:    models.CategoryElectricity,
			TotalAmount: d(total),
			BillMonth:   june,
			BillDate:    date("2024-06-05"),
		}
	}

	t.Run("equal split gives the extra unit to the lowest id", func(t *testing.T) {
		detail, err := room.bills.CreateBillWithAssignments(ctx, newBill("100"), []int64{c, a, b}, models.SplitEqual, nil)
		if err != nil {
			t.Fatalf("CreateBillWithAssignments failed: %v", err)
		}
		want := map[int64]string{a: "33.34", b: "33.33", c: "33.33"}
		sum := decimal.Zero
		for _, as := range detail.Assignments {
			assertDecimal(t, "assigned amount", as.AssignedAmount, d(want[as.MemberID]))
			sum = sum.Add(as.AssignedAmount)
		}
		assertDecimal(t, "sum", sum, d("100"))

		stored, err := room.bills.GetBill(ctx, detail.Bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if len(stored.Assignments) != 3 {
			t.Errorf("expected 3 stored assignments, got %d", len(stored.Assignments))
		}
	})

	t.Run("equal split always sums to total", func(t *testing.T) {
		for _, total := range []string{"0.01", "0.05", "1", "99.99", "1234.57"} {
			for n := 1; n <= 3; n++ {
				ids := []int64{a, b, c}[:n]
				detail, err := room.bills.CreateBillWithAssignments(ctx, newBill(total), ids, models.SplitEqual, nil)
				if err != nil {
					t.Fatalf("total %s n %d: %v", total, n, err)
				}
				sum := decimal.Zero
				for _, as := range detail.Assignments {
					sum = sum.Add(as.AssignedAmount)
				}
				assertDecimal(t, "sum", sum, d(total))
			}
		}
	})

	t.Run("custom split", func(t *testing.T) {
		detail, err := room.bills.CreateBillWithAssignments(ctx, newBill("100"), []int64{a, b}, models.SplitCustom,
			map[int64]decimal.Decimal{a: d("60"), b: d("40")})
		if err != nil {
			t.Fatalf("CreateBillWithAssignments failed: %v", err)
		}
		if detail.Bill.SplitType != models.SplitCustom {
			t.Errorf("SplitType = %s", detail.Bill.SplitType)
		}
	})

	t.Run("rejected bills persist nothing", func(t *testing.T) {
		month := models.Month{Year: 2024, Month: time.March}
		tests := []struct {
			name    string
			total   string
			ids     []int64
			split   models.SplitType
			amounts map[int64]decimal.Decimal
		}{
			{"custom mismatch", "100", []int64{a, b}, models.SplitCustom, map[int64]decimal.Decimal{a: d("40"), b: d("40")}},
			{"no members", "100", nil, models.SplitEqual, nil},
			{"zero total", "0", []int64{a}, models.SplitEqual, nil},
			{"negative total", "-5", []int64{a}, models.SplitEqual, nil},
			{"sub minor unit", "10.005", []int64{a}, models.SplitEqual, nil},
			{"duplicate member", "10", []int64{a, a}, models.SplitEqual, nil},
			{"unknown split type", "10", []int64{a}, models.SplitType("weighted"), nil},
			{"custom missing member", "10", []int64{a, b}, models.SplitCustom, map[int64]decimal.Decimal{a: d("10")}},
			{"custom outsider", "10", []int64{a}, models.SplitCustom, map[int64]decimal.Decimal{a: d("5"), c: d("5")}},
			{"custom negative", "10", []int64{a, b}, models.SplitCustom, map[int64]decimal.Decimal{a: d("15"), b: d("-5")}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				bill := newBill(tt.total)
				bill.BillMonth = month
				_, err := room.bills.CreateBillWithAssignments(ctx, bill, tt.ids, tt.split, tt.amounts)
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
			})
		}
		bills, err := room.bills.ListBills(ctx, month)
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(bills) != 0 {
			t.Errorf("expected no bills, got %d", len(bills))
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := room.bills.CreateBillWithAssignments(ctx, newBill("10"), []int64{a, 9999}, models.SplitEqual, nil)
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) || nfErr.ID != 9999 {
			t.Errorf("expected NotFoundError for 9999, got %v", err)
		}
	})
}

func TestMarkAssignmentPaid(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	a := room.addMember(t, "A")
	detail, err := room.bills.CreateBillWithAssignments(ctx, &models.Bill{
		Category: models.CategoryWifi, TotalAmount: d("1200"), BillDate: date("2024-06-01"),
	}, []int64{a}, models.SplitEqual, nil)
	if err != nil {
		t.Fatalf("CreateBillWithAssignments failed: %v", err)
	}
	id := detail.Assignments[0].ID

	if detail.Bill.BillMonth != june {
		t.Errorf("BillMonth = %s, want derived from bill date", detail.Bill.BillMonth)
	}

	t.Run("marking twice overwrites method and date", func(t *testing.T) {
		if _, err := room.bills.MarkAssignmentPaid(ctx, id, models.PaymentBkash, date("2024-06-02")); err != nil {
			t.Fatalf("MarkAssignmentPaid failed: %v", err)
		}
		got, err := room.bills.MarkAssignmentPaid(ctx, id, models.PaymentCash, date("2024-06-03"))
		if err != nil {
			t.Fatalf("MarkAssignmentPaid failed: %v", err)
		}
		if !got.IsPaid || got.PaymentMethod != models.PaymentCash || !got.PaidDate.Equal(date("2024-06-03")) {
			t.Errorf("unexpected assignment: %+v", got)
		}
	})

	t.Run("unknown payment method", func(t *testing.T) {
		_, err := room.bills.MarkAssignmentPaid(ctx, id, models.PaymentMethod("paypal"), date("2024-06-02"))
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := room.bills.MarkAssignmentPaid(ctx, 9999, models.PaymentCash, date("2024-06-02"))
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("mark unpaid clears payment", func(t *testing.T) {
		got, err := room.bills.MarkAssignmentUnpaid(ctx, id)
		if err != nil {
			t.Fatalf("MarkAssignmentUnpaid failed: %v", err)
		}
		if got.IsPaid || got.PaymentMethod != "" || !got.PaidDate.IsZero() {
			t.Errorf("unexpected assignment: %+v", got)
		}
	})

	t.Run("metadata update keeps amounts", func(t *testing.T) {
		notes := "router replaced"
		got, err := room.bills.UpdateBillMetadata(ctx, detail.Bill.ID, models.BillUpdate{Notes: &notes})
		if err != nil {
			t.Fatalf("UpdateBillMetadata failed: %v", err)
		}
		if got.Bill.Notes != notes {
			t.Errorf("Notes = %q", got.Bill.Notes)
		}
		assertDecimal(t, "total", got.Bill.TotalAmount, d("1200"))
	})
}

func TestRecordMeal(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	a := room.addMember(t, "A")
	day := date("2024-06-01")

	t.Run("open record is overwritten", func(t *testing.T) {
		first := room.recordMeal(t, a, day, "1", "1", "1")
		second := room.recordMeal(t, a, day, "0", "0.5", "1")
		if first.ID != second.ID {
			t.Errorf("expected one record, got ids %d and %d", first.ID, second.ID)
		}
		again := room.recordMeal(t, a, day, "0", "0.5", "1")
		assertDecimal(t, "total quantity", again.TotalQuantity, d("1.5"))
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := room.meals.RecordMeal(ctx, MealEntry{MemberID: a, Date: day, Breakfast: d("-1"), Lunch: d("0"), Dinner: d("0")})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := room.meals.RecordMeal(ctx, MealEntry{MemberID: 9999, Date: day, Breakfast: d("1"), Lunch: d("0"), Dinner: d("0")})
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("finalized record is immutable", func(t *testing.T) {
		if _, err := room.meals.FinalizeMeals(ctx, day, d("40")); err != nil {
			t.Fatalf("FinalizeMeals failed: %v", err)
		}
		_, err := room.meals.RecordMeal(ctx, MealEntry{MemberID: a, Date: day, Breakfast: d("2"), Lunch: d("0"), Dinner: d("0")})
		var imErr *ImmutableRecordError
		if !errors.As(err, &imErr) {
			t.Fatalf("expected ImmutableRecordError, got %v", err)
		}
		if imErr.MemberID != a || !imErr.Date.Equal(day) {
			t.Errorf("unexpected error fields: %+v", imErr)
		}
	})
}

func TestFinalizeMeals(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	a := room.addMember(t, "A")
	b := room.addMember(t, "B")
	day := date("2024-06-02")

	room.recordMeal(t, a, day, "1", "1", "1")
	room.recordMeal(t, b, day, "0", "1", "0")

	t.Run("negative rate", func(t *testing.T) {
		_, err := room.meals.FinalizeMeals(ctx, day, d("-1"))
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("second finalize leaves frozen costs", func(t *testing.T) {
		res, err := room.meals.FinalizeMeals(ctx, day, d("50"))
		if err != nil {
			t.Fatalf("FinalizeMeals failed: %v", err)
		}
		if res.MealsFinalized != 2 || res.FinalizationID == "" {
			t.Errorf("unexpected result: %+v", res)
		}
		assertDecimal(t, "total cost", res.TotalCost, d("200"))

		res, err = room.meals.FinalizeMeals(ctx, day, d("80"))
		if err != nil {
			t.Fatalf("second FinalizeMeals failed: %v", err)
		}
		if res.MealsFinalized != 0 || res.FinalizationID != "" {
			t.Errorf("second finalize should be a no-op: %+v", res)
		}

		meal, err := room.store.GetMeal(ctx, a, day)
		if err != nil {
			t.Fatalf("GetMeal failed: %v", err)
		}
		assertDecimal(t, "meal rate", meal.MealRate.Decimal, d("50"))
		assertDecimal(t, "total cost", meal.TotalCost.Decimal, d("150"))

		fins, err := room.meals.ListFinalizations(ctx, june)
		if err != nil {
			t.Fatalf("ListFinalizations failed: %v", err)
		}
		if len(fins) != 1 || fins[0].MealCount != 2 {
			t.Errorf("expected one finalization of 2 meals, got %+v", fins)
		}
	})

	t.Run("late record is frozen separately", func(t *testing.T) {
		c := room.addMember(t, "C")
		room.recordMeal(t, c, day, "0", "0", "1")
		res, err := room.meals.FinalizeMeals(ctx, day, d("80"))
		if err != nil {
			t.Fatalf("FinalizeMeals failed: %v", err)
		}
		if res.MealsFinalized != 1 {
			t.Errorf("MealsFinalized = %d, want 1", res.MealsFinalized)
		}
		meal, _ := room.store.GetMeal(ctx, b, day)
		assertDecimal(t, "earlier cost", meal.TotalCost.Decimal, d("50"))
	})
}

// lateMealStore records one extra open meal just before the finalize write,
// as a concurrent RecordMeal would.
type lateMealStore struct {
	*sqlite.SQLiteStore
	late *models.Meal
}

func (s *lateMealStore) FinalizeMeals(ctx context.Context, fin *models.Finalization, meals []models.Meal) error {
	if s.late != nil {
		if err := s.SQLiteStore.UpsertOpenMeal(ctx, s.late); err != nil {
			return err
		}
		s.late = nil
	}
	return s.SQLiteStore.FinalizeMeals(ctx, fin, meals)
}

func TestFinalizeMealsConflict(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	a := room.addMember(t, "A")
	b := room.addMember(t, "B")
	day := date("2024-06-03")
	room.recordMeal(t, a, day, "1", "1", "1")

	store := &lateMealStore{
		SQLiteStore: room.store,
		late: &models.Meal{
			MemberID: b, MealDate: day,
			Breakfast: d("0"), Lunch: d("1"), Dinner: d("0"), TotalQuantity: d("1"),
		},
	}
	meals := NewMealLedger(store, room.settings)

	_, err := meals.FinalizeMeals(ctx, day, d("10"))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected error to match storage.ErrConflict: %v", err)
	}

	got, err := room.store.GetMeal(ctx, a, day)
	if err != nil {
		t.Fatalf("GetMeal failed: %v", err)
	}
	if got.IsFinalized() {
		t.Error("meal was finalized despite the conflict")
	}
	fins, err := room.meals.ListFinalizations(ctx, june)
	if err != nil {
		t.Fatalf("ListFinalizations failed: %v", err)
	}
	if len(fins) != 0 {
		t.Errorf("expected no audit rows, got %d", len(fins))
	}

	// A retry sees both meals.
	res, err := meals.FinalizeMeals(ctx, day, d("10"))
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if res.MealsFinalized != 2 {
		t.Errorf("MealsFinalized = %d, want 2", res.MealsFinalized)
	}
	assertDecimal(t, "total cost", res.TotalCost, d("40"))
}

func TestMealRate(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	a := room.addMember(t, "A")

	t.Run("zero finalized quantity", func(t *testing.T) {
		room.recordMeal(t, a, date("2024-06-01"), "50", "50", "50")
		if err := room.fund.RecordShopping(ctx, &models.Shopping{ShoppingDate: date("2024-06-01"), Amount: d("3000")}); err != nil {
			t.Fatalf("RecordShopping failed: %v", err)
		}
		rate, err := room.meals.ComputeCurrentMealRate(ctx, june)
		if err != nil {
			t.Fatalf("ComputeCurrentMealRate failed: %v", err)
		}
		assertDecimal(t, "rate", rate, decimal.Zero)
	})

	t.Run("shopping over finalized quantity", func(t *testing.T) {
		if _, err := room.meals.FinalizeMeals(ctx, date("2024-06-01"), d("0")); err != nil {
			t.Fatalf("FinalizeMeals failed: %v", err)
		}
		rate, err := room.meals.ComputeCurrentMealRate(ctx, june)
		if err != nil {
			t.Fatalf("ComputeCurrentMealRate failed: %v", err)
		}
		assertDecimal(t, "rate", rate, d("20"))
	})

	t.Run("FinalizeDay uses the current rate", func(t *testing.T) {
		day := date("2024-06-02")
		room.recordMeal(t, a, day, "1", "1", "2")
		res, err := room.meals.FinalizeDay(ctx, day)
		if err != nil {
			t.Fatalf("FinalizeDay failed: %v", err)
		}
		assertDecimal(t, "rate", res.MealRate, d("20"))
		meal, _ := room.store.GetMeal(ctx, a, day)
		assertDecimal(t, "total cost", meal.TotalCost.Decimal, d("80"))
	})

	t.Run("FinalizeDay in manual mode", func(t *testing.T) {
		mode := models.MealRateManual
		if _, err := room.settings.Update(ctx, models.SettingsUpdate{MealRateMode: &mode}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		_, err := room.meals.FinalizeDay(ctx, date("2024-06-03"))
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestDayStatusAndDefaults(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	a := room.addMember(t, "A")
	b := room.addMember(t, "B")
	inactive := room.addMember(t, "C")
	if err := room.members.Deactivate(ctx, inactive); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	day := date("2024-06-10")

	t.Run("empty day is not finalized", func(t *testing.T) {
		status, err := room.meals.DayStatus(ctx, day)
		if err != nil {
			t.Fatalf("DayStatus failed: %v", err)
		}
		if status.Finalized || len(status.Meals) != 0 {
			t.Errorf("unexpected status: %+v", status)
		}
	})

	t.Run("defaults fill only missing active members", func(t *testing.T) {
		room.recordMeal(t, a, day, "1", "0", "0")
		created, err := room.meals.FillDefaultMeals(ctx, day)
		if err != nil {
			t.Fatalf("FillDefaultMeals failed: %v", err)
		}
		if len(created) != 1 || created[0].MemberID != b {
			t.Fatalf("expected one default meal for B, got %+v", created)
		}
		assertDecimal(t, "lunch", created[0].Lunch, d("1"))
		assertDecimal(t, "dinner", created[0].Dinner, d("1"))

		mine, _ := room.store.GetMeal(ctx, a, day)
		assertDecimal(t, "existing total", mine.TotalQuantity, d("1"))
	})

	t.Run("status reflects finalize", func(t *testing.T) {
		if _, err := room.meals.FinalizeMeals(ctx, day, d("10")); err != nil {
			t.Fatalf("FinalizeMeals failed: %v", err)
		}
		status, err := room.meals.DayStatus(ctx, day)
		if err != nil {
			t.Fatalf("DayStatus failed: %v", err)
		}
		if !status.Finalized || len(status.Meals) != 2 {
			t.Errorf("unexpected status: %+v", status)
		}
		assertDecimal(t, "quantity", status.TotalQuantity, d("3"))
	})
}

func TestMemberMonthSummary(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	a := room.addMember(t, "A")
	b := room.addMember(t, "B")

	detail, err := room.bills.CreateBillWithAssignments(ctx, &models.Bill{
		Category: models.CategoryRent, TotalAmount: d("1000"), BillMonth: june, BillDate: date("2024-06-01"),
	}, []int64{a, b}, models.SplitEqual, nil)
	if err != nil {
		t.Fatalf("CreateBillWithAssignments failed: %v", err)
	}
	if _, err := room.bills.MarkAssignmentPaid(ctx, detail.Assignments[0].ID, models.PaymentNagad, date("2024-06-02")); err != nil {
		t.Fatalf("MarkAssignmentPaid failed: %v", err)
	}

	// 15 finalized meals at 20 cost 300 for each member.
	room.recordMeal(t, a, date("2024-06-01"), "5", "5", "5")
	room.recordMeal(t, b, date("2024-06-01"), "5", "5", "5")
	if _, err := room.meals.FinalizeMeals(ctx, date("2024-06-01"), d("20")); err != nil {
		t.Fatalf("FinalizeMeals failed: %v", err)
	}
	// Open meals carry no cost yet.
	room.recordMeal(t, a, date("2024-06-02"), "1", "1", "1")

	for _, dep := range []*models.Deposit{
		{MemberID: a, Amount: d("500"), DepositDate: date("2024-06-01"), PaymentMethod: models.PaymentBkash},
		{MemberID: b, Amount: d("200"), DepositDate: date("2024-06-01"), PaymentMethod: models.PaymentCash},
	} {
		if err := room.fund.RecordDeposit(ctx, dep); err != nil {
			t.Fatalf("RecordDeposit failed: %v", err)
		}
	}

	tests := []struct {
		name         string
		memberID     int64
		billsPaid    string
		billsPending string
		refundable   string
	}{
		{"fund owes member", a, "500", "0", "200"},
		{"member owes fund", b, "0", "500", "-100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := room.settlement.GetMemberMonthSummary(ctx, tt.memberID, june)
			if err != nil {
				t.Fatalf("GetMemberMonthSummary failed: %v", err)
			}
			assertDecimal(t, "bills total", s.BillsTotal, d("500"))
			assertDecimal(t, "bills paid", s.BillsPaid, d(tt.billsPaid))
			assertDecimal(t, "bills pending", s.BillsPending, d(tt.billsPending))
			assertDecimal(t, "meal quantity", s.MealQuantity, d("15"))
			assertDecimal(t, "meals cost", s.MealsCost, d("300"))
			assertDecimal(t, "refundable", s.Refundable, d(tt.refundable))
		})
	}

	t.Run("unknown member", func(t *testing.T) {
		_, err := room.settlement.GetMemberMonthSummary(ctx, 9999, june)
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("room summary", func(t *testing.T) {
		if err := room.fund.RecordShopping(ctx, &models.Shopping{ShoppingDate: date("2024-06-01"), Amount: d("600")}); err != nil {
			t.Fatalf("RecordShopping failed: %v", err)
		}
		s, err := room.settlement.GetRoomMonthSummary(ctx, june)
		if err != nil {
			t.Fatalf("GetRoomMonthSummary failed: %v", err)
		}
		if len(s.Members) != 2 {
			t.Fatalf("expected 2 member summaries, got %d", len(s.Members))
		}
		assertDecimal(t, "bills total", s.BillsTotal, d("1000"))
		assertDecimal(t, "deposits total", s.DepositsTotal, d("700"))
		assertDecimal(t, "fund balance", s.FundBalance, d("100"))
		assertDecimal(t, "meal rate", s.MealRate, d("20"))
	})

	t.Run("dashboard", func(t *testing.T) {
		dash, err := room.settlement.Dashboard(ctx, date("2024-06-01"))
		if err != nil {
			t.Fatalf("Dashboard failed: %v", err)
		}
		if dash.ActiveMembers != 2 || dash.BillCount != 1 || !dash.DayFinalized {
			t.Errorf("unexpected dashboard: %+v", dash)
		}
		assertDecimal(t, "fund balance", dash.FundBalance, d("100"))
	})
}

func TestFundValidation(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()
	a := room.addMember(t, "A")

	tests := []struct {
		name    string
		deposit models.Deposit
	}{
		{"zero amount", models.Deposit{MemberID: a, Amount: d("0"), PaymentMethod: models.PaymentCash}},
		{"sub minor unit", models.Deposit{MemberID: a, Amount: d("1.001"), PaymentMethod: models.PaymentCash}},
		{"unknown method", models.Deposit{MemberID: a, Amount: d("10"), PaymentMethod: "cheque"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := room.fund.RecordDeposit(ctx, &tt.deposit)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	t.Run("unknown member", func(t *testing.T) {
		err := room.fund.RecordDeposit(ctx, &models.Deposit{MemberID: 9999, Amount: d("10"), PaymentMethod: models.PaymentCash})
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestSettings(t *testing.T) {
	room := newTestRoom(t)
	ctx := context.Background()

	got, err := room.settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RoomName != "My Room" || got.Currency != "BDT" || got.MealRateMode != models.MealRateAuto {
		t.Errorf("unexpected defaults: %+v", got)
	}
	assertDecimal(t, "default meal quantity", got.DefaultMealQuantity, d("2"))

	empty := ""
	badCurrency := "TAKA"
	negative := d("-1")
	badMode := models.MealRateMode("weekly")
	tests := []struct {
		name   string
		update models.SettingsUpdate
	}{
		{"empty room name", models.SettingsUpdate{RoomName: &empty}},
		{"bad currency", models.SettingsUpdate{Currency: &badCurrency}},
		{"negative quantity", models.SettingsUpdate{DefaultMealQuantity: &negative}},
		{"bad mode", models.SettingsUpdate{MealRateMode: &badMode}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := room.settings.Update(ctx, tt.update)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	t.Run("valid update", func(t *testing.T) {
		currency := "usd"
		qty := d("3")
		got, err := room.settings.Update(ctx, models.SettingsUpdate{Currency: &currency, DefaultMealQuantity: &qty})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if got.Currency != "USD" || got.RoomName != "My Room" {
			t.Errorf("unexpected settings: %+v", got)
		}
		assertDecimal(t, "default meal quantity", got.DefaultMealQuantity, d("3"))
	})
}

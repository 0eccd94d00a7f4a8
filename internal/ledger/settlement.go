package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/billkhata/internal/calculator"
	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
)

// RoomMonthSummary is every active member's monthly position plus room
// totals.
type RoomMonthSummary struct {
	Month   models.Month
	Members []models.MemberMonthSummary

	BillsTotal    decimal.Decimal
	ShoppingTotal decimal.Decimal
	DepositsTotal decimal.Decimal
	FundBalance   decimal.Decimal
	MealRate      decimal.Decimal
}

// Dashboard is the at-a-glance view of the room for one day.
type Dashboard struct {
	Date          time.Time
	ActiveMembers int
	BillCount     int
	BillsTotal    decimal.Decimal
	FundBalance   decimal.Decimal
	MealRate      decimal.Decimal
	DayFinalized  bool
}

// Settlement aggregates what members owe and are owed.
//
// Bills and the meal fund are separate ledgers: a member can have bills
// pending and a refundable fund balance at the same time, and the two are
// reported side by side, never netted.
type Settlement struct {
	store storage.Store
	meals *MealLedger
	fund  *FundLedger
}

// NewSettlement creates a Settlement over the given store and ledgers.
func NewSettlement(store storage.Store, meals *MealLedger, fund *FundLedger) *Settlement {
	return &Settlement{store: store, meals: meals, fund: fund}
}

// GetMemberMonthSummary returns the member's bills, finalized meals and
// deposits for month.
func (s *Settlement) GetMemberMonthSummary(ctx context.Context, memberID int64, month models.Month) (*models.MemberMonthSummary, error) {
	if month.IsZero() {
		return nil, invalid("month", "is required")
	}
	if err := requireMember(ctx, s.store, memberID); err != nil {
		return nil, err
	}

	shares, err := s.store.ListMemberBillShares(ctx, memberID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill shares: %w", err)
	}
	meals, err := s.store.ListMemberMeals(ctx, memberID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	deposits, err := s.store.ListDeposits(ctx, models.DepositFilter{MemberID: memberID, Month: month})
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}

	summary := calculator.SummarizeMember(memberID, month, shares, meals, deposits)
	return &summary, nil
}

// GetRoomMonthSummary returns the summary of every active member and the
// room's totals for month.
func (s *Settlement) GetRoomMonthSummary(ctx context.Context, month models.Month) (*RoomMonthSummary, error) {
	if month.IsZero() {
		return nil, invalid("month", "is required")
	}

	members, err := s.store.ListMembers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	out := &RoomMonthSummary{Month: month, Members: make([]models.MemberMonthSummary, len(members))}
	var (
		bills    []models.Bill
		shopping []models.Shopping
		deposits []models.Deposit
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range members {
		g.Go(func() error {
			summary, err := s.GetMemberMonthSummary(gctx, m.ID, month)
			if err != nil {
				return err
			}
			out.Members[i] = *summary
			return nil
		})
	}
	g.Go(func() (err error) {
		bills, err = s.store.ListBills(gctx, month)
		return err
	})
	g.Go(func() (err error) {
		shopping, err = s.fund.ListShopping(gctx, month)
		return err
	})
	g.Go(func() (err error) {
		deposits, err = s.fund.ListDeposits(gctx, models.DepositFilter{Month: month})
		return err
	})
	g.Go(func() (err error) {
		out.MealRate, err = s.meals.ComputeCurrentMealRate(gctx, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.BillsTotal = calculator.SumBills(bills)
	out.ShoppingTotal = calculator.SumShopping(shopping)
	out.DepositsTotal = calculator.SumDeposits(deposits)
	out.FundBalance = out.DepositsTotal.Sub(out.ShoppingTotal)
	return out, nil
}

// Dashboard returns the room overview for date's month.
func (s *Settlement) Dashboard(ctx context.Context, date time.Time) (*Dashboard, error) {
	day := models.Day(date)
	month := models.MonthOf(day)
	out := &Dashboard{Date: day}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		members, err := s.store.ListMembers(gctx, true)
		out.ActiveMembers = len(members)
		return err
	})
	g.Go(func() error {
		bills, err := s.store.ListBills(gctx, month)
		out.BillCount = len(bills)
		out.BillsTotal = calculator.SumBills(bills)
		return err
	})
	g.Go(func() (err error) {
		out.FundBalance, err = s.fund.FundBalance(gctx, month)
		return err
	})
	g.Go(func() (err error) {
		out.MealRate, err = s.meals.ComputeCurrentMealRate(gctx, month)
		return err
	})
	g.Go(func() error {
		meals, err := s.store.ListMealsByDate(gctx, day)
		out.DayFinalized = calculator.AllFinalized(meals)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return out, nil
}

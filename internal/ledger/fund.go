package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/calculator"
	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
)

// FundLedger tracks money paid into and spent from the shared meal fund.
type FundLedger struct {
	store storage.Store
	now   func() time.Time
}

// NewFundLedger creates a FundLedger backed by store.
func NewFundLedger(store storage.Store) *FundLedger {
	return &FundLedger{store: store, now: time.Now}
}

// RecordDeposit records a member's payment into the fund.
func (f *FundLedger) RecordDeposit(ctx context.Context, deposit *models.Deposit) error {
	if err := checkAmount(deposit.Amount); err != nil {
		return err
	}
	if !deposit.PaymentMethod.Valid() {
		return invalid("payment_method", fmt.Sprintf("unknown payment method %q", deposit.PaymentMethod))
	}
	if err := requireMember(ctx, f.store, deposit.MemberID); err != nil {
		return err
	}
	if deposit.DepositDate.IsZero() {
		deposit.DepositDate = f.now()
	}
	deposit.DepositDate = models.Day(deposit.DepositDate)

	if err := f.store.CreateDeposit(ctx, deposit); err != nil {
		return fmt.Errorf("failed to record deposit: %w", err)
	}
	return nil
}

// RecordShopping records a purchase paid from the fund.
func (f *FundLedger) RecordShopping(ctx context.Context, shopping *models.Shopping) error {
	if err := checkAmount(shopping.Amount); err != nil {
		return err
	}
	shopping.Items = strings.TrimSpace(shopping.Items)
	shopping.ShopperName = strings.TrimSpace(shopping.ShopperName)
	if shopping.ShoppingDate.IsZero() {
		shopping.ShoppingDate = f.now()
	}
	shopping.ShoppingDate = models.Day(shopping.ShoppingDate)

	if err := f.store.CreateShopping(ctx, shopping); err != nil {
		return fmt.Errorf("failed to record shopping: %w", err)
	}
	return nil
}

// ListDeposits retrieves deposits, optionally narrowed to a member or month.
func (f *FundLedger) ListDeposits(ctx context.Context, filter models.DepositFilter) ([]models.Deposit, error) {
	deposits, err := f.store.ListDeposits(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	return deposits, nil
}

// ListShopping retrieves shopping for a month, or all of it for a zero month.
func (f *FundLedger) ListShopping(ctx context.Context, month models.Month) ([]models.Shopping, error) {
	shopping, err := f.store.ListShopping(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping: %w", err)
	}
	return shopping, nil
}

// FundBalance returns deposits minus shopping for month. A zero month covers
// the fund's whole history.
func (f *FundLedger) FundBalance(ctx context.Context, month models.Month) (decimal.Decimal, error) {
	deposits, err := f.ListDeposits(ctx, models.DepositFilter{Month: month})
	if err != nil {
		return decimal.Zero, err
	}
	shopping, err := f.ListShopping(ctx, month)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.FundBalance(deposits, shopping), nil
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid("amount", "must be positive")
	}
	if !amount.Equal(amount.Truncate(calculator.MinorUnitPlaces)) {
		return invalidErr("amount", calculator.ErrSubMinorUnit)
	}
	return nil
}

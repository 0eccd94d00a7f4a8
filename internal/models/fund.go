package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit is cash paid by a member into the shared meal fund. Append-only.
type Deposit struct {
	ID       int64
	MemberID int64

	Amount decimal.Decimal

	DepositDate   time.Time
	PaymentMethod PaymentMethod

	// TransactionRef is the mobile-banking transaction id, if any.
	TransactionRef string

	// ScreenshotRef is an opaque reference to a payment screenshot.
	ScreenshotRef string

	Notes string
}

// Shopping is a purchase paid from the shared meal fund. Append-only and not
// attributed to any member's balance.
type Shopping struct {
	ID int64

	ShoppingDate time.Time
	Amount       decimal.Decimal

	// Items is a free-text list of what was bought.
	Items string

	ReceiptRef  string
	Notes       string
	ShopperName string
}

// DepositFilter narrows deposit listings. Zero fields match everything.
type DepositFilter struct {
	MemberID int64
	Month    Month
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillCategory is the kind of expense a bill represents.
type BillCategory string

const (
	CategoryRent        BillCategory = "rent"
	CategoryElectricity BillCategory = "electricity"
	CategoryWater       BillCategory = "water"
	CategoryGas         BillCategory = "gas"
	CategoryWifi        BillCategory = "wifi"
	CategoryMaid        BillCategory = "maid"
	CategoryOther       BillCategory = "other"
)

// Valid reports whether c is one of the known categories.
func (c BillCategory) Valid() bool {
	switch c {
	case CategoryRent, CategoryElectricity, CategoryWater, CategoryGas,
		CategoryWifi, CategoryMaid, CategoryOther:
		return true
	}
	return false
}

// SplitType selects how a bill total is divided among members.
type SplitType string

const (
	// SplitEqual divides the total evenly, distributing leftover minor units
	// to the lowest member IDs.
	SplitEqual SplitType = "equal"
	// SplitCustom uses caller-supplied per-member amounts.
	SplitCustom SplitType = "custom"
)

// Valid reports whether s is a known split type.
func (s SplitType) Valid() bool {
	return s == SplitEqual || s == SplitCustom
}

// PaymentMethod is how money changed hands.
type PaymentMethod string

const (
	PaymentBkash  PaymentMethod = "bkash"
	PaymentNagad  PaymentMethod = "nagad"
	PaymentRocket PaymentMethod = "rocket"
	PaymentCash   PaymentMethod = "cash"
	PaymentBank   PaymentMethod = "bank"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentBkash, PaymentNagad, PaymentRocket, PaymentCash, PaymentBank:
		return true
	}
	return false
}

// Bill represents a single utility or household expense for a month.
// Once its assignments exist only Notes and PhotoRef may change.
type Bill struct {
	ID int64

	Category BillCategory

	// TotalAmount is the amount to split. Positive, at most two decimals.
	TotalAmount decimal.Decimal

	// BillMonth is the month the bill belongs to, used for settlements.
	BillMonth Month

	// DueDate is optional; zero when unset.
	DueDate time.Time

	BillDate time.Time

	MeterReading string
	Notes        string

	// PhotoRef is an opaque reference to a picture of the bill.
	PhotoRef string

	SplitType SplitType

	CreatedAt time.Time
}

// BillUpdate lists the bill fields that stay editable after assignment.
type BillUpdate struct {
	Notes    *string
	PhotoRef *string
}

// BillAssignment is one member's share of a bill.
type BillAssignment struct {
	ID       int64
	BillID   int64
	MemberID int64

	AssignedAmount decimal.Decimal

	IsPaid bool

	// PaidDate is zero while unpaid.
	PaidDate time.Time

	// PaymentMethod is empty while unpaid.
	PaymentMethod PaymentMethod
}

// AssignmentPayment is the payment state written by mark-paid / mark-unpaid.
type AssignmentPayment struct {
	IsPaid        bool
	PaidDate      time.Time
	PaymentMethod PaymentMethod
}

// MemberBillShare is an assignment joined with its parent bill's month,
// as read for member settlements.
type MemberBillShare struct {
	BillID         int64
	BillMonth      Month
	Category       BillCategory
	AssignedAmount decimal.Decimal
	IsPaid         bool
}

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/calculator"
	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
)

// BillDetail is a bill together with its per-member assignments.
type BillDetail struct {
	Bill        models.Bill
	Assignments []models.BillAssignment
}

// BillEngine splits shared bills and tracks who has paid their share.
type BillEngine struct {
	store storage.Store
	now   func() time.Time
}

// NewBillEngine creates a BillEngine backed by store.
func NewBillEngine(store storage.Store) *BillEngine {
	return &BillEngine{store: store, now: time.Now}
}

// CreateBillWithAssignments validates the bill, splits its total across
// memberIDs and persists the bill with one assignment per member.
//
// For SplitEqual customAmounts must be empty. For SplitCustom it must hold an
// amount for every member, and the amounts must add up to the total within
// calculator.CustomSplitTolerance.
func (e *BillEngine) CreateBillWithAssignments(ctx context.Context, bill *models.Bill, memberIDs []int64, splitType models.SplitType, customAmounts map[int64]decimal.Decimal) (*BillDetail, error) {
	if !bill.Category.Valid() {
		return nil, invalid("category", fmt.Sprintf("unknown category %q", bill.Category))
	}
	if !splitType.Valid() {
		return nil, invalid("split_type", fmt.Sprintf("unknown split type %q", splitType))
	}
	if !bill.TotalAmount.Equal(bill.TotalAmount.Truncate(calculator.MinorUnitPlaces)) {
		return nil, invalidErr("total_amount", calculator.ErrSubMinorUnit)
	}
	if bill.BillDate.IsZero() {
		bill.BillDate = e.now()
	}
	bill.BillDate = models.Day(bill.BillDate)
	if bill.BillMonth.IsZero() {
		bill.BillMonth = models.MonthOf(bill.BillDate)
	}
	if !bill.DueDate.IsZero() {
		bill.DueDate = models.Day(bill.DueDate)
	}
	bill.SplitType = splitType

	var (
		shares []calculator.Share
		err    error
	)
	switch splitType {
	case models.SplitEqual:
		if len(customAmounts) > 0 {
			return nil, invalid("custom_amounts", "only allowed with a custom split")
		}
		shares, err = calculator.EqualSplit(bill.TotalAmount, memberIDs)
	case models.SplitCustom:
		shares, err = calculator.CustomSplit(bill.TotalAmount, memberIDs, customAmounts)
	}
	if err != nil {
		return nil, invalidErr("split", err)
	}

	for _, s := range shares {
		if err := requireMember(ctx, e.store, s.MemberID); err != nil {
			return nil, err
		}
	}

	assignments := make([]models.BillAssignment, len(shares))
	for i, s := range shares {
		assignments[i] = models.BillAssignment{MemberID: s.MemberID, AssignedAmount: s.Amount}
	}

	if err := e.store.CreateBillWithAssignments(ctx, bill, assignments); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	return &BillDetail{Bill: *bill, Assignments: assignments}, nil
}

// MarkAssignmentPaid records payment of one member's share. Marking an
// already-paid assignment again overwrites the method and date.
func (e *BillEngine) MarkAssignmentPaid(ctx context.Context, assignmentID int64, method models.PaymentMethod, paidDate time.Time) (*models.BillAssignment, error) {
	if !method.Valid() {
		return nil, invalid("payment_method", fmt.Sprintf("unknown payment method %q", method))
	}
	if paidDate.IsZero() {
		paidDate = e.now()
	}

	payment := models.AssignmentPayment{IsPaid: true, PaidDate: models.Day(paidDate), PaymentMethod: method}
	return e.setPayment(ctx, assignmentID, payment)
}

// MarkAssignmentUnpaid clears the payment state of an assignment.
func (e *BillEngine) MarkAssignmentUnpaid(ctx context.Context, assignmentID int64) (*models.BillAssignment, error) {
	return e.setPayment(ctx, assignmentID, models.AssignmentPayment{})
}

func (e *BillEngine) setPayment(ctx context.Context, id int64, payment models.AssignmentPayment) (*models.BillAssignment, error) {
	if err := e.store.SetAssignmentPayment(ctx, id, payment); err != nil {
		return nil, lookupErr(err, "bill assignment", id)
	}
	a, err := e.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "bill assignment", id)
	}
	return a, nil
}

// UpdateBillMetadata changes a bill's notes or photo. Amounts and
// assignments cannot be edited.
func (e *BillEngine) UpdateBillMetadata(ctx context.Context, id int64, update models.BillUpdate) (*BillDetail, error) {
	if err := e.store.UpdateBill(ctx, id, update); err != nil {
		return nil, lookupErr(err, "bill", id)
	}
	return e.GetBill(ctx, id)
}

// GetBill retrieves a bill and its assignments.
func (e *BillEngine) GetBill(ctx context.Context, id int64) (*BillDetail, error) {
	bill, err := e.store.GetBill(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "bill", id)
	}
	assignments, err := e.store.ListAssignments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return &BillDetail{Bill: *bill, Assignments: assignments}, nil
}

// ListBills retrieves the bills of a month, or every bill for a zero month.
func (e *BillEngine) ListBills(ctx context.Context, month models.Month) ([]models.Bill, error) {
	bills, err := e.store.ListBills(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

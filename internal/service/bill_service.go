package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/ledger"
	"github.com/mmynk/billkhata/internal/models"
)

const BillServiceName = "billkhata.v1.BillService"

type CreateBillRequest struct {
	Category     string          `json:"category"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	BillMonth    string          `json:"bill_month"`
	DueDate      string          `json:"due_date"`
	BillDate     string          `json:"bill_date"`
	MeterReading string          `json:"meter_reading"`
	Notes        string          `json:"notes"`
	PhotoRef     string          `json:"photo_ref"`
	SplitType    string          `json:"split_type"`
	MemberIDs    []int64         `json:"member_ids"`

	// CustomAmounts maps member id to amount for custom splits.
	CustomAmounts map[int64]decimal.Decimal `json:"custom_amounts,omitempty"`
}

type BillResponse struct {
	Bill        *Bill         `json:"bill"`
	Assignments []*Assignment `json:"assignments"`
}

type MarkAssignmentPaidRequest struct {
	AssignmentID  int64  `json:"assignment_id"`
	PaymentMethod string `json:"payment_method"`
	PaidDate      string `json:"paid_date"`
}

type AssignmentRequest struct {
	AssignmentID int64 `json:"assignment_id"`
}

type AssignmentResponse struct {
	Assignment *Assignment `json:"assignment"`
}

type UpdateBillRequest struct {
	ID       int64   `json:"id"`
	Notes    *string `json:"notes,omitempty"`
	PhotoRef *string `json:"photo_ref,omitempty"`
}

type GetBillRequest struct {
	ID int64 `json:"id"`
}

type ListBillsRequest struct {
	// Month filters by bill month; empty lists every bill.
	Month string `json:"month"`
}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

// BillService splits bills and tracks payments.
type BillService struct {
	bills *ledger.BillEngine
}

// NewBillService creates a BillService.
func NewBillService(bills *ledger.BillEngine) *BillService {
	return &BillService{bills: bills}
}

// Handler returns the service's path prefix and HTTP handler.
func (s *BillService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	p := newProcedures(BillServiceName, opts)
	handle(p, "CreateBill", s.CreateBill)
	handle(p, "MarkAssignmentPaid", s.MarkAssignmentPaid)
	handle(p, "MarkAssignmentUnpaid", s.MarkAssignmentUnpaid)
	handle(p, "UpdateBill", s.UpdateBill)
	handle(p, "GetBill", s.GetBill)
	handle(p, "ListBills", s.ListBills)
	return p.path(), p.mux
}

func (s *BillService) CreateBill(ctx context.Context, req *CreateBillRequest) (*BillResponse, error) {
	month, err := parseMonth("bill_month", req.BillMonth)
	if err != nil {
		return nil, err
	}
	billDate, err := parseDate("bill_date", req.BillDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	splitType := models.SplitType(req.SplitType)
	if splitType == "" {
		splitType = models.SplitEqual
	}

	bill := &models.Bill{
		Category:     models.BillCategory(req.Category),
		TotalAmount:  req.TotalAmount,
		BillMonth:    month,
		DueDate:      dueDate,
		BillDate:     billDate,
		MeterReading: req.MeterReading,
		Notes:        req.Notes,
		PhotoRef:     req.PhotoRef,
	}
	detail, err := s.bills.CreateBillWithAssignments(ctx, bill, req.MemberIDs, splitType, req.CustomAmounts)
	if err != nil {
		return nil, err
	}

	slog.Info("Bill created",
		"bill_id", detail.Bill.ID,
		"category", detail.Bill.Category,
		"total", detail.Bill.TotalAmount,
		"members", len(detail.Assignments),
	)
	return toBillResponse(detail), nil
}

func (s *BillService) MarkAssignmentPaid(ctx context.Context, req *MarkAssignmentPaidRequest) (*AssignmentResponse, error) {
	paidDate, err := parseDate("paid_date", req.PaidDate)
	if err != nil {
		return nil, err
	}
	a, err := s.bills.MarkAssignmentPaid(ctx, req.AssignmentID, models.PaymentMethod(req.PaymentMethod), paidDate)
	if err != nil {
		return nil, err
	}
	return &AssignmentResponse{Assignment: toAssignment(a)}, nil
}

func (s *BillService) MarkAssignmentUnpaid(ctx context.Context, req *AssignmentRequest) (*AssignmentResponse, error) {
	a, err := s.bills.MarkAssignmentUnpaid(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	return &AssignmentResponse{Assignment: toAssignment(a)}, nil
}

func (s *BillService) UpdateBill(ctx context.Context, req *UpdateBillRequest) (*BillResponse, error) {
	detail, err := s.bills.UpdateBillMetadata(ctx, req.ID, models.BillUpdate{Notes: req.Notes, PhotoRef: req.PhotoRef})
	if err != nil {
		return nil, err
	}
	return toBillResponse(detail), nil
}

func (s *BillService) GetBill(ctx context.Context, req *GetBillRequest) (*BillResponse, error) {
	detail, err := s.bills.GetBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toBillResponse(detail), nil
}

func (s *BillService) ListBills(ctx context.Context, req *ListBillsRequest) (*ListBillsResponse, error) {
	month, err := parseMonth("month", req.Month)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.ListBills(ctx, month)
	if err != nil {
		return nil, err
	}

	resp := &ListBillsResponse{Bills: make([]*Bill, len(bills))}
	for i := range bills {
		resp.Bills[i] = toBill(&bills[i])
	}
	return resp, nil
}

func toBillResponse(detail *ledger.BillDetail) *BillResponse {
	return &BillResponse{
		Bill:        toBill(&detail.Bill),
		Assignments: toAssignments(detail.Assignments),
	}
}

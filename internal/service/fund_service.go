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

const FundServiceName = "billkhata.v1.FundService"

type RecordDepositRequest struct {
	MemberID       int64           `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	DepositDate    string          `json:"deposit_date"`
	PaymentMethod  string          `json:"payment_method"`
	TransactionRef string          `json:"transaction_ref"`
	ScreenshotRef  string          `json:"screenshot_ref"`
	Notes          string          `json:"notes"`
}

type DepositResponse struct {
	Deposit *Deposit `json:"deposit"`
}

type RecordShoppingRequest struct {
	ShoppingDate string          `json:"shopping_date"`
	Amount       decimal.Decimal `json:"amount"`
	Items        string          `json:"items"`
	ReceiptRef   string          `json:"receipt_ref"`
	Notes        string          `json:"notes"`
	ShopperName  string          `json:"shopper_name"`
}

type ShoppingResponse struct {
	Shopping *Shopping `json:"shopping"`
}

type ListDepositsRequest struct {
	// Zero member id and empty month match everything.
	MemberID int64  `json:"member_id"`
	Month    string `json:"month"`
}

type ListDepositsResponse struct {
	Deposits []*Deposit `json:"deposits"`
}

type ListShoppingResponse struct {
	Shopping []*Shopping `json:"shopping"`
}

type FundBalanceResponse struct {
	Month   string          `json:"month,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// FundService records meal fund deposits and shopping.
type FundService struct {
	fund *ledger.FundLedger
}

// NewFundService creates a FundService.
func NewFundService(fund *ledger.FundLedger) *FundService {
	return &FundService{fund: fund}
}

// Handler returns the service's path prefix and HTTP handler.
func (s *FundService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	p := newProcedures(FundServiceName, opts)
	handle(p, "RecordDeposit", s.RecordDeposit)
	handle(p, "RecordShopping", s.RecordShopping)
	handle(p, "ListDeposits", s.ListDeposits)
	handle(p, "ListShopping", s.ListShopping)
	handle(p, "GetFundBalance", s.GetFundBalance)
	return p.path(), p.mux
}

func (s *FundService) RecordDeposit(ctx context.Context, req *RecordDepositRequest) (*DepositResponse, error) {
	date, err := parseDate("deposit_date", req.DepositDate)
	if err != nil {
		return nil, err
	}
	deposit := &models.Deposit{
		MemberID:       req.MemberID,
		Amount:         req.Amount,
		DepositDate:    date,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		TransactionRef: req.TransactionRef,
		ScreenshotRef:  req.ScreenshotRef,
		Notes:          req.Notes,
	}
	if err := s.fund.RecordDeposit(ctx, deposit); err != nil {
		return nil, err
	}

	slog.Info("Deposit recorded", "deposit_id", deposit.ID, "member_id", deposit.MemberID, "amount", deposit.Amount)
	return &DepositResponse{Deposit: toDeposit(deposit)}, nil
}

func (s *FundService) RecordShopping(ctx context.Context, req *RecordShoppingRequest) (*ShoppingResponse, error) {
	date, err := parseDate("shopping_date", req.ShoppingDate)
	if err != nil {
		return nil, err
	}
	shopping := &models.Shopping{
		ShoppingDate: date,
		Amount:       req.Amount,
		Items:        req.Items,
		ReceiptRef:   req.ReceiptRef,
		Notes:        req.Notes,
		ShopperName:  req.ShopperName,
	}
	if err := s.fund.RecordShopping(ctx, shopping); err != nil {
		return nil, err
	}

	slog.Info("Shopping recorded", "shopping_id", shopping.ID, "amount", shopping.Amount)
	return &ShoppingResponse{Shopping: toShopping(shopping)}, nil
}

func (s *FundService) ListDeposits(ctx context.Context, req *ListDepositsRequest) (*ListDepositsResponse, error) {
	month, err := parseMonth("month", req.Month)
	if err != nil {
		return nil, err
	}
	deposits, err := s.fund.ListDeposits(ctx, models.DepositFilter{MemberID: req.MemberID, Month: month})
	if err != nil {
		return nil, err
	}

	resp := &ListDepositsResponse{Deposits: make([]*Deposit, len(deposits))}
	for i := range deposits {
		resp.Deposits[i] = toDeposit(&deposits[i])
	}
	return resp, nil
}

func (s *FundService) ListShopping(ctx context.Context, req *MonthRequest) (*ListShoppingResponse, error) {
	month, err := parseMonth("month", req.Month)
	if err != nil {
		return nil, err
	}
	entries, err := s.fund.ListShopping(ctx, month)
	if err != nil {
		return nil, err
	}

	resp := &ListShoppingResponse{Shopping: make([]*Shopping, len(entries))}
	for i := range entries {
		resp.Shopping[i] = toShopping(&entries[i])
	}
	return resp, nil
}

func (s *FundService) GetFundBalance(ctx context.Context, req *MonthRequest) (*FundBalanceResponse, error) {
	month, err := parseMonth("month", req.Month)
	if err != nil {
		return nil, err
	}
	balance, err := s.fund.FundBalance(ctx, month)
	if err != nil {
		return nil, err
	}

	resp := &FundBalanceResponse{Balance: balance}
	if !month.IsZero() {
		resp.Month = month.String()
	}
	return resp, nil
}

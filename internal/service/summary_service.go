package service

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/ledger"
)

const SummaryServiceName = "billkhata.v1.SummaryService"

type MemberSummaryRequest struct {
	MemberID int64  `json:"member_id"`
	Month    string `json:"month"`
}

type MemberSummaryResponse struct {
	Summary *MemberSummary `json:"summary"`
}

type RoomSummaryResponse struct {
	Month         string           `json:"month"`
	Members       []*MemberSummary `json:"members"`
	BillsTotal    decimal.Decimal  `json:"bills_total"`
	ShoppingTotal decimal.Decimal  `json:"shopping_total"`
	DepositsTotal decimal.Decimal  `json:"deposits_total"`
	FundBalance   decimal.Decimal  `json:"fund_balance"`
	MealRate      decimal.Decimal  `json:"meal_rate"`
}

type DashboardResponse struct {
	Date          string          `json:"date"`
	ActiveMembers int             `json:"active_members"`
	BillCount     int             `json:"bill_count"`
	BillsTotal    decimal.Decimal `json:"bills_total"`
	FundBalance   decimal.Decimal `json:"fund_balance"`
	MealRate      decimal.Decimal `json:"meal_rate"`
	DayFinalized  bool            `json:"day_finalized"`
}

// SummaryService reports member and room balances.
type SummaryService struct {
	settlement *ledger.Settlement
	now        func() time.Time
}

// NewSummaryService creates a SummaryService.
func NewSummaryService(settlement *ledger.Settlement) *SummaryService {
	return &SummaryService{settlement: settlement, now: time.Now}
}

// Handler returns the service's path prefix and HTTP handler.
func (s *SummaryService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	p := newProcedures(SummaryServiceName, opts)
	handle(p, "GetMemberMonthSummary", s.GetMemberMonthSummary)
	handle(p, "GetRoomMonthSummary", s.GetRoomMonthSummary)
	handle(p, "GetDashboard", s.GetDashboard)
	return p.path(), p.mux
}

func (s *SummaryService) GetMemberMonthSummary(ctx context.Context, req *MemberSummaryRequest) (*MemberSummaryResponse, error) {
	month, err := requiredMonth(req.Month)
	if err != nil {
		return nil, err
	}
	summary, err := s.settlement.GetMemberMonthSummary(ctx, req.MemberID, month)
	if err != nil {
		return nil, err
	}
	return &MemberSummaryResponse{Summary: toMemberSummary(summary)}, nil
}

func (s *SummaryService) GetRoomMonthSummary(ctx context.Context, req *MonthRequest) (*RoomSummaryResponse, error) {
	month, err := requiredMonth(req.Month)
	if err != nil {
		return nil, err
	}
	summary, err := s.settlement.GetRoomMonthSummary(ctx, month)
	if err != nil {
		return nil, err
	}

	resp := &RoomSummaryResponse{
		Month:         summary.Month.String(),
		Members:       make([]*MemberSummary, len(summary.Members)),
		BillsTotal:    summary.BillsTotal,
		ShoppingTotal: summary.ShoppingTotal,
		DepositsTotal: summary.DepositsTotal,
		FundBalance:   summary.FundBalance,
		MealRate:      summary.MealRate,
	}
	for i := range summary.Members {
		resp.Members[i] = toMemberSummary(&summary.Members[i])
	}
	return resp, nil
}

// GetDashboard reports on the requested date, or today when none is given.
func (s *SummaryService) GetDashboard(ctx context.Context, req *DateRequest) (*DashboardResponse, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = s.now()
	}

	dash, err := s.settlement.Dashboard(ctx, date)
	if err != nil {
		return nil, err
	}
	return &DashboardResponse{
		Date:          formatDate(dash.Date),
		ActiveMembers: dash.ActiveMembers,
		BillCount:     dash.BillCount,
		BillsTotal:    dash.BillsTotal,
		FundBalance:   dash.FundBalance,
		MealRate:      dash.MealRate,
		DayFinalized:  dash.DayFinalized,
	}, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/ledger"
)

const MealServiceName = "billkhata.v1.MealService"

type RecordMealRequest struct {
	MemberID  int64           `json:"member_id"`
	MealDate  string          `json:"meal_date"`
	Breakfast decimal.Decimal `json:"breakfast"`
	Lunch     decimal.Decimal `json:"lunch"`
	Dinner    decimal.Decimal `json:"dinner"`
	Notes     string          `json:"notes"`
}

type MealResponse struct {
	Meal *Meal `json:"meal"`
}

type MonthRequest struct {
	Month string `json:"month"`
}

type MealRateResponse struct {
	Month    string          `json:"month"`
	MealRate decimal.Decimal `json:"meal_rate"`
}

type FinalizeMealsRequest struct {
	MealDate string `json:"meal_date"`

	// MealRate is required; FinalizeDay computes it instead.
	MealRate *decimal.Decimal `json:"meal_rate"`
}

type DateRequest struct {
	Date string `json:"date"`
}

type FinalizeResponse struct {
	FinalizationID string          `json:"finalization_id,omitempty"`
	MealDate       string          `json:"meal_date"`
	MealRate       decimal.Decimal `json:"meal_rate"`
	MealsFinalized int             `json:"meals_finalized"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	TotalCost      decimal.Decimal `json:"total_cost"`
}

type DayStatusResponse struct {
	Date          string          `json:"date"`
	Meals         []*Meal         `json:"meals"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Finalized     bool            `json:"finalized"`
	CurrentRate   decimal.Decimal `json:"current_rate"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

type MealsResponse struct {
	Meals []*Meal `json:"meals"`
}

type ListFinalizationsResponse struct {
	Finalizations []*Finalization `json:"finalizations"`
}

// MealService records meals and freezes their cost.
type MealService struct {
	meals *ledger.MealLedger
}

// NewMealService creates a MealService.
func NewMealService(meals *ledger.MealLedger) *MealService {
	return &MealService{meals: meals}
}

// Handler returns the service's path prefix and HTTP handler.
func (s *MealService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	p := newProcedures(MealServiceName, opts)
	handle(p, "RecordMeal", s.RecordMeal)
	handle(p, "GetCurrentMealRate", s.GetCurrentMealRate)
	handle(p, "FinalizeMeals", s.FinalizeMeals)
	handle(p, "FinalizeDay", s.FinalizeDay)
	handle(p, "GetDayStatus", s.GetDayStatus)
	handle(p, "FillDefaultMeals", s.FillDefaultMeals)
	handle(p, "ListMeals", s.ListMeals)
	handle(p, "ListFinalizations", s.ListFinalizations)
	return p.path(), p.mux
}

func (s *MealService) RecordMeal(ctx context.Context, req *RecordMealRequest) (*MealResponse, error) {
	date, err := requiredDate("meal_date", req.MealDate)
	if err != nil {
		return nil, err
	}
	meal, err := s.meals.RecordMeal(ctx, ledger.MealEntry{
		MemberID:  req.MemberID,
		Date:      date,
		Breakfast: req.Breakfast,
		Lunch:     req.Lunch,
		Dinner:    req.Dinner,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &MealResponse{Meal: toMeal(meal)}, nil
}

func (s *MealService) GetCurrentMealRate(ctx context.Context, req *MonthRequest) (*MealRateResponse, error) {
	month, err := requiredMonth(req.Month)
	if err != nil {
		return nil, err
	}
	rate, err := s.meals.ComputeCurrentMealRate(ctx, month)
	if err != nil {
		return nil, err
	}
	return &MealRateResponse{Month: month.String(), MealRate: rate}, nil
}

func (s *MealService) FinalizeMeals(ctx context.Context, req *FinalizeMealsRequest) (*FinalizeResponse, error) {
	date, err := requiredDate("meal_date", req.MealDate)
	if err != nil {
		return nil, err
	}
	if req.MealRate == nil {
		return nil, badField("meal_rate", errors.New("is required"))
	}
	res, err := s.meals.FinalizeMeals(ctx, date, *req.MealRate)
	if err != nil {
		return nil, err
	}
	logFinalize(res)
	return toFinalizeResponse(res), nil
}

func (s *MealService) FinalizeDay(ctx context.Context, req *DateRequest) (*FinalizeResponse, error) {
	date, err := requiredDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	res, err := s.meals.FinalizeDay(ctx, date)
	if err != nil {
		return nil, err
	}
	logFinalize(res)
	return toFinalizeResponse(res), nil
}

func (s *MealService) GetDayStatus(ctx context.Context, req *DateRequest) (*DayStatusResponse, error) {
	date, err := requiredDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	status, err := s.meals.DayStatus(ctx, date)
	if err != nil {
		return nil, err
	}
	return &DayStatusResponse{
		Date:          formatDate(status.Date),
		Meals:         toMeals(status.Meals),
		TotalQuantity: status.TotalQuantity,
		Finalized:     status.Finalized,
		CurrentRate:   status.CurrentRate,
		EstimatedCost: status.EstimatedCost,
	}, nil
}

func (s *MealService) FillDefaultMeals(ctx context.Context, req *DateRequest) (*MealsResponse, error) {
	date, err := requiredDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	created, err := s.meals.FillDefaultMeals(ctx, date)
	if err != nil {
		return nil, err
	}
	slog.Info("Default meals filled", "date", req.Date, "created", len(created))
	return &MealsResponse{Meals: toMeals(created)}, nil
}

func (s *MealService) ListMeals(ctx context.Context, req *MonthRequest) (*MealsResponse, error) {
	month, err := requiredMonth(req.Month)
	if err != nil {
		return nil, err
	}
	meals, err := s.meals.ListMeals(ctx, month)
	if err != nil {
		return nil, err
	}
	return &MealsResponse{Meals: toMeals(meals)}, nil
}

func (s *MealService) ListFinalizations(ctx context.Context, req *MonthRequest) (*ListFinalizationsResponse, error) {
	month, err := requiredMonth(req.Month)
	if err != nil {
		return nil, err
	}
	fins, err := s.meals.ListFinalizations(ctx, month)
	if err != nil {
		return nil, err
	}

	resp := &ListFinalizationsResponse{Finalizations: make([]*Finalization, len(fins))}
	for i := range fins {
		resp.Finalizations[i] = toFinalization(&fins[i])
	}
	return resp, nil
}

func logFinalize(res *ledger.FinalizeResult) {
	slog.Info("Meals finalized",
		"date", formatDate(res.MealDate),
		"rate", res.MealRate,
		"meals", res.MealsFinalized,
		"finalization_id", res.FinalizationID,
	)
}

func toFinalizeResponse(res *ledger.FinalizeResult) *FinalizeResponse {
	return &FinalizeResponse{
		FinalizationID: res.FinalizationID,
		MealDate:       formatDate(res.MealDate),
		MealRate:       res.MealRate,
		MealsFinalized: res.MealsFinalized,
		TotalQuantity:  res.TotalQuantity,
		TotalCost:      res.TotalCost,
	}
}

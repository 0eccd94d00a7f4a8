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

const SettingsServiceName = "billkhata.v1.SettingsService"

type GetSettingsRequest struct{}

type UpdateSettingsRequest struct {
	RoomName            *string          `json:"room_name,omitempty"`
	Currency            *string          `json:"currency,omitempty"`
	DefaultMealQuantity *decimal.Decimal `json:"default_meal_quantity,omitempty"`
	MealRateMode        *string          `json:"meal_rate_mode,omitempty"`
}

type SettingsResponse struct {
	Settings *Settings `json:"settings"`
}

// SettingsService reads and changes room settings.
type SettingsService struct {
	settings *ledger.RoomSettings
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(settings *ledger.RoomSettings) *SettingsService {
	return &SettingsService{settings: settings}
}

// Handler returns the service's path prefix and HTTP handler.
func (s *SettingsService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	p := newProcedures(SettingsServiceName, opts)
	handle(p, "GetSettings", s.GetSettings)
	handle(p, "UpdateSettings", s.UpdateSettings)
	return p.path(), p.mux
}

func (s *SettingsService) GetSettings(ctx context.Context, _ *GetSettingsRequest) (*SettingsResponse, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &SettingsResponse{Settings: toSettings(settings)}, nil
}

func (s *SettingsService) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*SettingsResponse, error) {
	update := models.SettingsUpdate{
		RoomName:            req.RoomName,
		Currency:            req.Currency,
		DefaultMealQuantity: req.DefaultMealQuantity,
	}
	if req.MealRateMode != nil {
		mode := models.MealRateMode(*req.MealRateMode)
		update.MealRateMode = &mode
	}

	settings, err := s.settings.Update(ctx, update)
	if err != nil {
		return nil, err
	}
	slog.Info("Settings updated", "room_name", settings.RoomName, "meal_rate_mode", settings.MealRateMode)
	return &SettingsResponse{Settings: toSettings(settings)}, nil
}

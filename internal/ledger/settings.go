package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
)

// DefaultSettings are used for any key missing from the store.
var DefaultSettings = models.Settings{
	RoomName:            "My Room",
	Currency:            "BDT",
	DefaultMealQuantity: decimal.NewFromInt(2),
	MealRateMode:        models.MealRateAuto,
}

// RoomSettings reads and validates the room-wide settings.
type RoomSettings struct {
	store storage.SettingsStore
}

// NewRoomSettings creates a RoomSettings backed by store.
func NewRoomSettings(store storage.SettingsStore) *RoomSettings {
	return &RoomSettings{store: store}
}

// Get returns the typed settings.
func (s *RoomSettings) Get(ctx context.Context) (models.Settings, error) {
	raw, err := s.store.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := DefaultSettings
	if v, ok := raw[models.SettingRoomName]; ok {
		settings.RoomName = v
	}
	if v, ok := raw[models.SettingCurrency]; ok {
		settings.Currency = v
	}
	if v, ok := raw[models.SettingDefaultMealQuantity]; ok {
		q, err := decimal.NewFromString(v)
		if err != nil {
			return models.Settings{}, fmt.Errorf("stored %s %q: %w", models.SettingDefaultMealQuantity, v, err)
		}
		settings.DefaultMealQuantity = q
	}
	if v, ok := raw[models.SettingMealRateMode]; ok {
		settings.MealRateMode = models.MealRateMode(v)
	}
	return settings, nil
}

// Update validates and stores the set fields of update, then returns the
// resulting settings.
func (s *RoomSettings) Update(ctx context.Context, update models.SettingsUpdate) (models.Settings, error) {
	values := make(map[string]string)

	if update.RoomName != nil {
		name := strings.TrimSpace(*update.RoomName)
		if name == "" {
			return models.Settings{}, invalid("room_name", "cannot be empty")
		}
		values[models.SettingRoomName] = name
	}
	if update.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*update.Currency))
		if !isCurrencyCode(currency) {
			return models.Settings{}, invalid("currency", "must be a 3-letter code")
		}
		values[models.SettingCurrency] = currency
	}
	if update.DefaultMealQuantity != nil {
		if update.DefaultMealQuantity.IsNegative() {
			return models.Settings{}, invalid("default_meal_quantity", "cannot be negative")
		}
		values[models.SettingDefaultMealQuantity] = update.DefaultMealQuantity.String()
	}
	if update.MealRateMode != nil {
		if !update.MealRateMode.Valid() {
			return models.Settings{}, invalid("meal_rate_mode", fmt.Sprintf("unknown mode %q", *update.MealRateMode))
		}
		values[models.SettingMealRateMode] = string(*update.MealRateMode)
	}

	if len(values) > 0 {
		if err := s.store.SetSettings(ctx, values); err != nil {
			return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
		}
	}
	return s.Get(ctx)
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

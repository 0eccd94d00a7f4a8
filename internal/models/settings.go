package models

import "github.com/shopspring/decimal"

// Setting keys as stored in the settings table.
const (
	SettingRoomName            = "room_name"
	SettingCurrency            = "currency"
	SettingDefaultMealQuantity = "default_meal_quantity"
	SettingMealRateMode        = "meal_rate_mode"
)

// MealRateMode controls where the finalize rate comes from.
type MealRateMode string

const (
	// MealRateAuto finalizes with the current monthly meal rate.
	MealRateAuto MealRateMode = "auto"
	// MealRateManual requires the caller to supply the rate.
	MealRateManual MealRateMode = "manual"
)

// Valid reports whether m is a known mode.
func (m MealRateMode) Valid() bool {
	return m == MealRateAuto || m == MealRateManual
}

// Settings is the typed view of the room settings.
type Settings struct {
	RoomName            string
	Currency            string
	DefaultMealQuantity decimal.Decimal
	MealRateMode        MealRateMode
}

// SettingsUpdate lists editable settings. Nil fields are left unchanged.
type SettingsUpdate struct {
	RoomName            *string
	Currency            *string
	DefaultMealQuantity *decimal.Decimal
	MealRateMode        *MealRateMode
}

package service

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/models"
)

// Amounts travel as decimal strings ("1234.50"), dates as "YYYY-MM-DD" and
// months as "YYYY-MM".

type Member struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone,omitempty"`
	WhatsApp   string          `json:"whatsapp,omitempty"`
	Facebook   string          `json:"facebook,omitempty"`
	RoomInfo   string          `json:"room_info,omitempty"`
	AvatarRef  string          `json:"avatar_ref,omitempty"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	JoinedDate string          `json:"joined_date,omitempty"`
	IsActive   bool            `json:"is_active"`
}

type Bill struct {
	ID           int64           `json:"id"`
	Category     string          `json:"category"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	BillMonth    string          `json:"bill_month"`
	DueDate      string          `json:"due_date,omitempty"`
	BillDate     string          `json:"bill_date"`
	MeterReading string          `json:"meter_reading,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	PhotoRef     string          `json:"photo_ref,omitempty"`
	SplitType    string          `json:"split_type"`
}

type Assignment struct {
	ID             int64           `json:"id"`
	BillID         int64           `json:"bill_id"`
	MemberID       int64           `json:"member_id"`
	AssignedAmount decimal.Decimal `json:"assigned_amount"`
	IsPaid         bool            `json:"is_paid"`
	PaidDate       string          `json:"paid_date,omitempty"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
}

type Meal struct {
	ID             int64            `json:"id"`
	MemberID       int64            `json:"member_id"`
	MealDate       string           `json:"meal_date"`
	Breakfast      decimal.Decimal  `json:"breakfast"`
	Lunch          decimal.Decimal  `json:"lunch"`
	Dinner         decimal.Decimal  `json:"dinner"`
	TotalQuantity  decimal.Decimal  `json:"total_quantity"`
	MealRate       *decimal.Decimal `json:"meal_rate,omitempty"`
	TotalCost      *decimal.Decimal `json:"total_cost,omitempty"`
	IsFinalized    bool             `json:"is_finalized"`
	FinalizationID string           `json:"finalization_id,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

type Finalization struct {
	ID            string          `json:"id"`
	MealDate      string          `json:"meal_date"`
	MealRate      decimal.Decimal `json:"meal_rate"`
	MealCount     int             `json:"meal_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	FinalizedAt   time.Time       `json:"finalized_at"`
}

type Deposit struct {
	ID             int64           `json:"id"`
	MemberID       int64           `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	DepositDate    string          `json:"deposit_date"`
	PaymentMethod  string          `json:"payment_method"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	ScreenshotRef  string          `json:"screenshot_ref,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

type Shopping struct {
	ID           int64           `json:"id"`
	ShoppingDate string          `json:"shopping_date"`
	Amount       decimal.Decimal `json:"amount"`
	Items        string          `json:"items,omitempty"`
	ReceiptRef   string          `json:"receipt_ref,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	ShopperName  string          `json:"shopper_name,omitempty"`
}

type MemberSummary struct {
	MemberID      int64           `json:"member_id"`
	Month         string          `json:"month"`
	BillsTotal    decimal.Decimal `json:"bills_total"`
	BillsPaid     decimal.Decimal `json:"bills_paid"`
	BillsPending  decimal.Decimal `json:"bills_pending"`
	MealQuantity  decimal.Decimal `json:"meal_quantity"`
	MealsCost     decimal.Decimal `json:"meals_cost"`
	DepositsTotal decimal.Decimal `json:"deposits_total"`
	Refundable    decimal.Decimal `json:"refundable"`
}

type Settings struct {
	RoomName            string          `json:"room_name"`
	Currency            string          `json:"currency"`
	DefaultMealQuantity decimal.Decimal `json:"default_meal_quantity"`
	MealRateMode        string          `json:"meal_rate_mode"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}

// parseDate parses an optional date field.
func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, badField(field, err)
	}
	return t, nil
}

// parseMonth parses an optional month field.
func parseMonth(field, s string) (models.Month, error) {
	if s == "" {
		return models.Month{}, nil
	}
	m, err := models.ParseMonth(s)
	if err != nil {
		return models.Month{}, badField(field, err)
	}
	return m, nil
}

func requiredDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, badField(field, errors.New("is required"))
	}
	return parseDate(field, s)
}

func requiredMonth(s string) (models.Month, error) {
	if s == "" {
		return models.Month{}, badField("month", errors.New("is required"))
	}
	return parseMonth("month", s)
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toMember(m *models.Member) *Member {
	return &Member{
		ID:         m.ID,
		Name:       m.Name,
		Phone:      m.Phone,
		WhatsApp:   m.WhatsApp,
		Facebook:   m.Facebook,
		RoomInfo:   m.RoomInfo,
		AvatarRef:  m.AvatarRef,
		RentAmount: m.RentAmount,
		JoinedDate: formatDate(m.JoinedDate),
		IsActive:   m.IsActive,
	}
}

func toBill(b *models.Bill) *Bill {
	return &Bill{
		ID:           b.ID,
		Category:     string(b.Category),
		TotalAmount:  b.TotalAmount,
		BillMonth:    b.BillMonth.String(),
		DueDate:      formatDate(b.DueDate),
		BillDate:     formatDate(b.BillDate),
		MeterReading: b.MeterReading,
		Notes:        b.Notes,
		PhotoRef:     b.PhotoRef,
		SplitType:    string(b.SplitType),
	}
}

func toAssignment(a *models.BillAssignment) *Assignment {
	return &Assignment{
		ID:             a.ID,
		BillID:         a.BillID,
		MemberID:       a.MemberID,
		AssignedAmount: a.AssignedAmount,
		IsPaid:         a.IsPaid,
		PaidDate:       formatDate(a.PaidDate),
		PaymentMethod:  string(a.PaymentMethod),
	}
}

func toAssignments(in []models.BillAssignment) []*Assignment {
	out := make([]*Assignment, len(in))
	for i := range in {
		out[i] = toAssignment(&in[i])
	}
	return out
}

func toMeal(m *models.Meal) *Meal {
	return &Meal{
		ID:             m.ID,
		MemberID:       m.MemberID,
		MealDate:       formatDate(m.MealDate),
		Breakfast:      m.Breakfast,
		Lunch:          m.Lunch,
		Dinner:         m.Dinner,
		TotalQuantity:  m.TotalQuantity,
		MealRate:       nullable(m.MealRate),
		TotalCost:      nullable(m.TotalCost),
		IsFinalized:    m.IsFinalized(),
		FinalizationID: m.FinalizationID,
		Notes:          m.Notes,
	}
}

func toMeals(in []models.Meal) []*Meal {
	out := make([]*Meal, len(in))
	for i := range in {
		out[i] = toMeal(&in[i])
	}
	return out
}

func toFinalization(f *models.Finalization) *Finalization {
	return &Finalization{
		ID:            f.ID,
		MealDate:      formatDate(f.MealDate),
		MealRate:      f.MealRate,
		MealCount:     f.MealCount,
		TotalQuantity: f.TotalQuantity,
		TotalCost:     f.TotalCost,
		FinalizedAt:   f.FinalizedAt,
	}
}

func toDeposit(d *models.Deposit) *Deposit {
	return &Deposit{
		ID:             d.ID,
		MemberID:       d.MemberID,
		Amount:         d.Amount,
		DepositDate:    formatDate(d.DepositDate),
		PaymentMethod:  string(d.PaymentMethod),
		TransactionRef: d.TransactionRef,
		ScreenshotRef:  d.ScreenshotRef,
		Notes:          d.Notes,
	}
}

func toShopping(s *models.Shopping) *Shopping {
	return &Shopping{
		ID:           s.ID,
		ShoppingDate: formatDate(s.ShoppingDate),
		Amount:       s.Amount,
		Items:        s.Items,
		ReceiptRef:   s.ReceiptRef,
		Notes:        s.Notes,
		ShopperName:  s.ShopperName,
	}
}

func toMemberSummary(s *models.MemberMonthSummary) *MemberSummary {
	return &MemberSummary{
		MemberID:      s.MemberID,
		Month:         s.Month.String(),
		BillsTotal:    s.BillsTotal,
		BillsPaid:     s.BillsPaid,
		BillsPending:  s.BillsPending,
		MealQuantity:  s.MealQuantity,
		MealsCost:     s.MealsCost,
		DepositsTotal: s.DepositsTotal,
		Refundable:    s.Refundable,
	}
}

func toSettings(s models.Settings) *Settings {
	return &Settings{
		RoomName:            s.RoomName,
		Currency:            s.Currency,
		DefaultMealQuantity: s.DefaultMealQuantity,
		MealRateMode:        string(s.MealRateMode),
	}
}

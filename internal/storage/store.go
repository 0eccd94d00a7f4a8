// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/billkhata/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by ID matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrFinalized is returned when a write targets a finalized meal record.
	ErrFinalized = errors.New("meal record is finalized")

	// ErrConflict is returned when rows changed underneath a multi-row write,
	// which is then rolled back.
	ErrConflict = errors.New("concurrent modification")
)

// MemberStore persists members.
type MemberStore interface {
	// CreateMember inserts a member and sets member.ID and member.CreatedAt.
	CreateMember(ctx context.Context, member *models.Member) error

	// GetMember returns ErrNotFound for an unknown ID.
	GetMember(ctx context.Context, id int64) (*models.Member, error)

	// ListMembers returns members ordered by name.
	ListMembers(ctx context.Context, activeOnly bool) ([]models.Member, error)

	// UpdateMember applies the non-nil fields of update.
	UpdateMember(ctx context.Context, id int64, update models.MemberUpdate) error

	// SetMemberActive flips the soft-delete flag. Dependent rows are untouched.
	SetMemberActive(ctx context.Context, id int64, active bool) error
}

// BillStore persists bills and their per-member assignments.
type BillStore interface {
	// CreateBillWithAssignments inserts the bill and all assignments in one
	// transaction, filling in the generated IDs.
	CreateBillWithAssignments(ctx context.Context, bill *models.Bill, assignments []models.BillAssignment) error

	GetBill(ctx context.Context, id int64) (*models.Bill, error)

	// ListBills returns bills for the month, or all bills for a zero month,
	// newest bill date first.
	ListBills(ctx context.Context, month models.Month) ([]models.Bill, error)

	UpdateBill(ctx context.Context, id int64, update models.BillUpdate) error

	ListAssignments(ctx context.Context, billID int64) ([]models.BillAssignment, error)

	GetAssignment(ctx context.Context, id int64) (*models.BillAssignment, error)

	SetAssignmentPayment(ctx context.Context, id int64, payment models.AssignmentPayment) error

	// ListMemberBillShares returns the member's assignments whose bill
	// belongs to the month.
	ListMemberBillShares(ctx context.Context, memberID int64, month models.Month) ([]models.MemberBillShare, error)
}

// MealStore persists meal records and finalization audit rows.
type MealStore interface {
	// GetMeal returns ErrNotFound when the member has no record for the day.
	GetMeal(ctx context.Context, memberID int64, date time.Time) (*models.Meal, error)

	// UpsertOpenMeal inserts or overwrites the (member, date) record.
	// It refuses to touch a finalized record and returns ErrFinalized.
	UpsertOpenMeal(ctx context.Context, meal *models.Meal) error

	// InsertMissingMeals inserts, in one transaction, each meal whose
	// (member, date) has no record yet and returns the inserted rows.
	// Existing records are left untouched.
	InsertMissingMeals(ctx context.Context, meals []models.Meal) ([]models.Meal, error)

	ListMealsByDate(ctx context.Context, date time.Time) ([]models.Meal, error)
	ListMealsByMonth(ctx context.Context, month models.Month) ([]models.Meal, error)
	ListMemberMeals(ctx context.Context, memberID int64, month models.Month) ([]models.Meal, error)

	// FinalizeMeals writes the frozen meals and the audit row in one
	// transaction. Each meal must still be open and no other open meal may
	// exist for the date; otherwise nothing is written and ErrConflict is
	// returned.
	FinalizeMeals(ctx context.Context, fin *models.Finalization, meals []models.Meal) error

	ListFinalizations(ctx context.Context, month models.Month) ([]models.Finalization, error)
}

// FundStore persists meal fund movements.
type FundStore interface {
	CreateDeposit(ctx context.Context, deposit *models.Deposit) error
	ListDeposits(ctx context.Context, filter models.DepositFilter) ([]models.Deposit, error)

	CreateShopping(ctx context.Context, shopping *models.Shopping) error

	// ListShopping returns shopping for the month, or all of it for a zero month.
	ListShopping(ctx context.Context, month models.Month) ([]models.Shopping, error)
}

// SettingsStore persists room settings as key/value pairs.
type SettingsStore interface {
	GetSettings(ctx context.Context) (map[string]string, error)

	// SetSettings writes all pairs in one transaction.
	SetSettings(ctx context.Context, values map[string]string) error
}

// Store is the full persistence boundary.
// This abstraction allows swapping storage backends without changing the
// ledger or service layers.
type Store interface {
	MemberStore
	BillStore
	MealStore
	FundStore
	SettingsStore

	// Close releases any resources held by the store.
	Close() error
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member represents a roommate sharing the room.
// Members are never hard-deleted: deactivation keeps their financial history.
type Member struct {
	// ID is the auto-assigned identifier. Assignment order also drives the
	// remainder distribution of equal bill splits.
	ID int64

	// Name is the display name of the member.
	Name string

	Phone    string
	WhatsApp string
	Facebook string

	// RoomInfo is free text such as a bed or room number.
	RoomInfo string

	// AvatarRef is an opaque reference to the member's picture.
	AvatarRef string

	// RentAmount is the member's monthly rent. Informational only; rent is
	// charged through rent bills.
	RentAmount decimal.Decimal

	// JoinedDate is the day the member moved in.
	JoinedDate time.Time

	// IsActive is false once the member has been deactivated.
	IsActive bool

	CreatedAt time.Time
}

// MemberUpdate lists the editable member fields. Nil fields are left unchanged.
type MemberUpdate struct {
	Name       *string
	Phone      *string
	WhatsApp   *string
	Facebook   *string
	RoomInfo   *string
	AvatarRef  *string
	RentAmount *decimal.Decimal
	JoinedDate *time.Time
}

// IsEmpty reports whether the update changes nothing.
func (u MemberUpdate) IsEmpty() bool {
	return u.Name == nil && u.Phone == nil && u.WhatsApp == nil && u.Facebook == nil &&
		u.RoomInfo == nil && u.AvatarRef == nil && u.RentAmount == nil && u.JoinedDate == nil
}

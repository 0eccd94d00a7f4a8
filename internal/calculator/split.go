package calculator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of fractional digits of the currency minor unit.
const MinorUnitPlaces = 2

// CustomSplitTolerance is the largest accepted difference between the sum of
// custom shares and the bill total.
var CustomSplitTolerance = decimal.New(1, -MinorUnitPlaces)

var (
	ErrNoMembers          = errors.New("must have at least one member")
	ErrNonPositiveTotal   = errors.New("total amount must be positive")
	ErrSubMinorUnit       = errors.New("amount is more precise than the currency minor unit")
	ErrDuplicateMember    = errors.New("member listed more than once")
	ErrMissingShare       = errors.New("missing custom amount for member")
	ErrUnknownShareMember = errors.New("custom amount given for a member outside the split")
	ErrNegativeShare      = errors.New("custom amount cannot be negative")
	ErrSplitMismatch      = errors.New("custom amounts do not add up to the total")
)

// Share is one member's computed portion of a bill.
type Share struct {
	MemberID int64
	Amount   decimal.Decimal
}

// EqualSplit divides total evenly across members in minor units.
//
// Algorithm: base = floor(total / n) minor units; the remaining
// total - base*n units go one each to the lowest member IDs, so the shares
// always add up to total exactly. Shares are returned in ascending ID order.
func EqualSplit(total decimal.Decimal, memberIDs []int64) ([]Share, error) {
	ids, err := checkSplitInput(total, memberIDs)
	if err != nil {
		return nil, err
	}
	if !total.Equal(total.Truncate(MinorUnitPlaces)) {
		return nil, fmt.Errorf("%w: %s", ErrSubMinorUnit, total)
	}

	// Unit counts stay decimal so totals beyond the int64 range split exactly.
	units := total.Shift(MinorUnitPlaces)
	base, rem := units.QuoRem(decimal.NewFromInt(int64(len(ids))), 0)
	remainder := rem.IntPart() // < len(ids)

	shares := make([]Share, len(ids))
	for i, id := range ids {
		u := base
		if int64(i) < remainder {
			u = u.Add(decimal.NewFromInt(1))
		}
		shares[i] = Share{MemberID: id, Amount: u.Shift(-MinorUnitPlaces)}
	}
	return shares, nil
}

// CustomSplit validates caller-supplied shares against total.
// Every member needs a non-negative amount, no amount may name a member
// outside the split, and the amounts must sum to total within
// CustomSplitTolerance. Shares are returned in ascending ID order.
func CustomSplit(total decimal.Decimal, memberIDs []int64, amounts map[int64]decimal.Decimal) ([]Share, error) {
	ids, err := checkSplitInput(total, memberIDs)
	if err != nil {
		return nil, err
	}

	for id := range amounts {
		if _, found := slices.BinarySearch(ids, id); !found {
			return nil, fmt.Errorf("%w: member %d", ErrUnknownShareMember, id)
		}
	}

	shares := make([]Share, len(ids))
	for i, id := range ids {
		amount, ok := amounts[id]
		if !ok {
			return nil, fmt.Errorf("%w %d", ErrMissingShare, id)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: member %d has %s", ErrNegativeShare, id, amount)
		}
		shares[i] = Share{MemberID: id, Amount: amount}
	}

	sum := SumShares(shares)
	if sum.Sub(total).Abs().GreaterThan(CustomSplitTolerance) {
		return nil, fmt.Errorf("%w: shares sum to %s, total is %s", ErrSplitMismatch, sum, total)
	}
	return shares, nil
}

// SumShares adds up share amounts.
func SumShares(shares []Share) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// checkSplitInput validates the parts common to both split types and returns
// the member IDs sorted ascending.
func checkSplitInput(total decimal.Decimal, memberIDs []int64) ([]int64, error) {
	if len(memberIDs) == 0 {
		return nil, ErrNoMembers
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveTotal, total)
	}

	ids := slices.Clone(memberIDs)
	slices.Sort(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateMember, ids[i])
		}
	}
	return ids, nil
}

package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
)

// MemberRegistry manages the people sharing the room.
type MemberRegistry struct {
	store storage.MemberStore
}

// NewMemberRegistry creates a MemberRegistry backed by store.
func NewMemberRegistry(store storage.MemberStore) *MemberRegistry {
	return &MemberRegistry{store: store}
}

// Register adds a new active member.
func (r *MemberRegistry) Register(ctx context.Context, member *models.Member) error {
	member.Name = strings.TrimSpace(member.Name)
	if member.Name == "" {
		return invalid("name", "is required")
	}
	if member.RentAmount.IsNegative() {
		return invalid("rent_amount", "cannot be negative")
	}
	if !member.JoinedDate.IsZero() {
		member.JoinedDate = models.Day(member.JoinedDate)
	}
	member.IsActive = true

	if err := r.store.CreateMember(ctx, member); err != nil {
		return fmt.Errorf("failed to register member: %w", err)
	}
	return nil
}

// Update changes a member's profile fields.
func (r *MemberRegistry) Update(ctx context.Context, id int64, update models.MemberUpdate) (*models.Member, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, invalid("name", "cannot be empty")
		}
		update.Name = &name
	}
	if update.RentAmount != nil && update.RentAmount.IsNegative() {
		return nil, invalid("rent_amount", "cannot be negative")
	}
	if update.JoinedDate != nil {
		day := models.Day(*update.JoinedDate)
		update.JoinedDate = &day
	}

	if !update.IsEmpty() {
		if err := r.store.UpdateMember(ctx, id, update); err != nil {
			return nil, lookupErr(err, "member", id)
		}
	}
	return r.Get(ctx, id)
}

// Deactivate hides a member from active listings. Their bills, meals and
// deposits are kept.
func (r *MemberRegistry) Deactivate(ctx context.Context, id int64) error {
	if err := r.store.SetMemberActive(ctx, id, false); err != nil {
		return lookupErr(err, "member", id)
	}
	return nil
}

// Get retrieves a member.
func (r *MemberRegistry) Get(ctx context.Context, id int64) (*models.Member, error) {
	m, err := r.store.GetMember(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "member", id)
	}
	return m, nil
}

// List retrieves members ordered by name.
func (r *MemberRegistry) List(ctx context.Context, activeOnly bool) ([]models.Member, error) {
	members, err := r.store.ListMembers(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// requireMember returns a NotFoundError when id does not name a member.
func requireMember(ctx context.Context, store storage.MemberStore, id int64) error {
	if _, err := store.GetMember(ctx, id); err != nil {
		return lookupErr(err, "member", id)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/billkhata/internal/models"
)

const memberCols = `id, name, phone, whatsapp, facebook, room_info, avatar_ref, rent_amount, joined_date, is_active, created_at`

func scanMember(row scanner) (*models.Member, error) {
	var (
		m                                              models.Member
		phone, whatsapp, facebook, roomInfo, avatarRef sql.NullString
		joined                                         sql.NullString
		createdAt                                      int64
	)
	err := row.Scan(&m.ID, &m.Name, &phone, &whatsapp, &facebook, &roomInfo, &avatarRef,
		&m.RentAmount, &joined, &m.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}

	m.Phone = phone.String
	m.WhatsApp = whatsapp.String
	m.Facebook = facebook.String
	m.RoomInfo = roomInfo.String
	m.AvatarRef = avatarRef.String
	m.CreatedAt = time.Unix(createdAt, 0).UTC()
	if m.JoinedDate, err = parseNullDate(joined); err != nil {
		return nil, fmt.Errorf("failed to parse joined date: %w", err)
	}
	return &m, nil
}

// CreateMember persists a new member.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO members (name, phone, whatsapp, facebook, room_info, avatar_ref, rent_amount, joined_date, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		member.Name, nullString(member.Phone), nullString(member.WhatsApp), nullString(member.Facebook),
		nullString(member.RoomInfo), nullString(member.AvatarRef), member.RentAmount.String(),
		nullDate(member.JoinedDate), member.IsActive, member.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	member.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}
	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, id int64) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err != nil {
		return nil, notFound(err, "member", id)
	}
	return m, nil
}

// ListMembers retrieves members ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context, activeOnly bool) ([]models.Member, error) {
	query := `SELECT ` + memberCols + ` FROM members`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// UpdateMember applies the set fields of update. Column names come from a
// fixed list, never from caller input.
func (s *SQLiteStore) UpdateMember(ctx context.Context, id int64, update models.MemberUpdate) error {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Phone != nil {
		set("phone", nullString(*update.Phone))
	}
	if update.WhatsApp != nil {
		set("whatsapp", nullString(*update.WhatsApp))
	}
	if update.Facebook != nil {
		set("facebook", nullString(*update.Facebook))
	}
	if update.RoomInfo != nil {
		set("room_info", nullString(*update.RoomInfo))
	}
	if update.AvatarRef != nil {
		set("avatar_ref", nullString(*update.AvatarRef))
	}
	if update.RentAmount != nil {
		set("rent_amount", update.RentAmount.String())
	}
	if update.JoinedDate != nil {
		set("joined_date", nullDate(*update.JoinedDate))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE members SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return checkAffected(res, "member", id)
}

// SetMemberActive activates or deactivates a member.
func (s *SQLiteStore) SetMemberActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE members SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set member active: %w", err)
	}
	return checkAffected(res, "member", id)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/billkhata/internal/models"
)

const billCols = `id, category, total_amount, bill_month, due_date, bill_date, meter_reading, notes, photo_ref, split_type, created_at`

func scanBill(row scanner) (*models.Bill, error) {
	var (
		b                             models.Bill
		month, billDate               string
		dueDate                       sql.NullString
		meterReading, notes, photoRef sql.NullString
		createdAt                     int64
	)
	err := row.Scan(&b.ID, &b.Category, &b.TotalAmount, &month, &dueDate, &billDate,
		&meterReading, &notes, &photoRef, &b.SplitType, &createdAt)
	if err != nil {
		return nil, err
	}

	if b.BillMonth, err = models.ParseMonth(month); err != nil {
		return nil, err
	}
	if b.BillDate, err = parseDate(billDate); err != nil {
		return nil, fmt.Errorf("failed to parse bill date: %w", err)
	}
	if b.DueDate, err = parseNullDate(dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due date: %w", err)
	}
	b.MeterReading = meterReading.String
	b.Notes = notes.String
	b.PhotoRef = photoRef.String
	b.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &b, nil
}

const assignmentCols = `id, bill_id, member_id, assigned_amount, is_paid, paid_date, payment_method`

func scanAssignment(row scanner) (*models.BillAssignment, error) {
	var (
		a        models.BillAssignment
		paidDate sql.NullString
		method   sql.NullString
	)
	err := row.Scan(&a.ID, &a.BillID, &a.MemberID, &a.AssignedAmount, &a.IsPaid, &paidDate, &method)
	if err != nil {
		return nil, err
	}
	if a.PaidDate, err = parseNullDate(paidDate); err != nil {
		return nil, fmt.Errorf("failed to parse paid date: %w", err)
	}
	a.PaymentMethod = models.PaymentMethod(method.String)
	return &a, nil
}

// CreateBillWithAssignments persists a bill and its assignments atomically.
func (s *SQLiteStore) CreateBillWithAssignments(ctx context.Context, bill *models.Bill, assignments []models.BillAssignment) error {
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bills (category, total_amount, bill_month, due_date, bill_date, meter_reading, notes, photo_ref, split_type, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			bill.Category, bill.TotalAmount.String(), bill.BillMonth.String(), nullDate(bill.DueDate),
			formatDate(bill.BillDate), nullString(bill.MeterReading), nullString(bill.Notes),
			nullString(bill.PhotoRef), bill.SplitType, bill.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill: %w", err)
		}
		if bill.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read bill id: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO bill_assignments (bill_id, member_id, assigned_amount, is_paid, paid_date, payment_method)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare assignment insert: %w", err)
		}
		defer stmt.Close()

		for i := range assignments {
			a := &assignments[i]
			a.BillID = bill.ID
			res, err := stmt.ExecContext(ctx, a.BillID, a.MemberID, a.AssignedAmount.String(),
				a.IsPaid, nullDate(a.PaidDate), nullString(string(a.PaymentMethod)))
			if err != nil {
				return fmt.Errorf("failed to insert assignment for member %d: %w", a.MemberID, err)
			}
			if a.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("failed to read assignment id: %w", err)
			}
		}
		return nil
	})
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, id int64) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+billCols+` FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if err != nil {
		return nil, notFound(err, "bill", id)
	}
	return b, nil
}

// ListBills retrieves bills for a month, newest first.
func (s *SQLiteStore) ListBills(ctx context.Context, month models.Month) ([]models.Bill, error) {
	query := `SELECT ` + billCols + ` FROM bills`
	var args []any
	if !month.IsZero() {
		query += ` WHERE bill_month = ?`
		args = append(args, month.String())
	}
	query += ` ORDER BY bill_date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// UpdateBill changes the metadata fields that stay editable after assignment.
func (s *SQLiteStore) UpdateBill(ctx context.Context, id int64, update models.BillUpdate) error {
	var (
		sets []string
		args []any
	)
	if update.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, nullString(*update.Notes))
	}
	if update.PhotoRef != nil {
		sets = append(sets, "photo_ref = ?")
		args = append(args, nullString(*update.PhotoRef))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE bills SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return checkAffected(res, "bill", id)
}

// ListAssignments retrieves a bill's assignments in member order.
func (s *SQLiteStore) ListAssignments(ctx context.Context, billID int64) ([]models.BillAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assignmentCols+` FROM bill_assignments WHERE bill_id = ? ORDER BY member_id`, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.BillAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

// GetAssignment retrieves one assignment by ID.
func (s *SQLiteStore) GetAssignment(ctx context.Context, id int64) (*models.BillAssignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assignmentCols+` FROM bill_assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err != nil {
		return nil, notFound(err, "bill assignment", id)
	}
	return a, nil
}

// SetAssignmentPayment overwrites the payment state of an assignment.
func (s *SQLiteStore) SetAssignmentPayment(ctx context.Context, id int64, payment models.AssignmentPayment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bill_assignments SET is_paid = ?, paid_date = ?, payment_method = ? WHERE id = ?`,
		payment.IsPaid, nullDate(payment.PaidDate), nullString(string(payment.PaymentMethod)), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment payment: %w", err)
	}
	return checkAffected(res, "bill assignment", id)
}

// ListMemberBillShares retrieves a member's assignments for bills of a month.
func (s *SQLiteStore) ListMemberBillShares(ctx context.Context, memberID int64, month models.Month) ([]models.MemberBillShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.bill_month, b.category, ba.assigned_amount, ba.is_paid
		 FROM bill_assignments ba
		 JOIN bills b ON ba.bill_id = b.id
		 WHERE ba.member_id = ? AND b.bill_month = ?
		 ORDER BY b.id`,
		memberID, month.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list member bill shares: %w", err)
	}
	defer rows.Close()

	var shares []models.MemberBillShare
	for rows.Next() {
		var (
			share    models.MemberBillShare
			rawMonth string
		)
		if err := rows.Scan(&share.BillID, &rawMonth, &share.Category, &share.AssignedAmount, &share.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan member bill share: %w", err)
		}
		if share.BillMonth, err = models.ParseMonth(rawMonth); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member bill shares: %w", err)
	}
	return shares, nil
}

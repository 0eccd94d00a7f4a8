package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/billkhata/internal/models"
)

// CreateDeposit records a member's payment into the meal fund.
func (s *SQLiteStore) CreateDeposit(ctx context.Context, deposit *models.Deposit) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO deposits (member_id, amount, deposit_date, payment_method, transaction_ref, screenshot_ref, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		deposit.MemberID, deposit.Amount.String(), formatDate(deposit.DepositDate), deposit.PaymentMethod,
		nullString(deposit.TransactionRef), nullString(deposit.ScreenshotRef), nullString(deposit.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to insert deposit: %w", err)
	}
	if deposit.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read deposit id: %w", err)
	}
	return nil
}

// ListDeposits retrieves deposits matching filter, newest first.
func (s *SQLiteStore) ListDeposits(ctx context.Context, filter models.DepositFilter) ([]models.Deposit, error) {
	var (
		where []string
		args  []any
	)
	if filter.MemberID != 0 {
		where = append(where, "member_id = ?")
		args = append(args, filter.MemberID)
	}
	if !filter.Month.IsZero() {
		from, to := monthRange(filter.Month)
		where = append(where, "deposit_date >= ? AND deposit_date < ?")
		args = append(args, from, to)
	}

	query := `SELECT id, member_id, amount, deposit_date, payment_method, transaction_ref, screenshot_ref, notes FROM deposits`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY deposit_date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []models.Deposit
	for rows.Next() {
		var (
			d                     models.Deposit
			date                  string
			txRef, shotRef, notes sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.MemberID, &d.Amount, &date, &d.PaymentMethod, &txRef, &shotRef, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		if d.DepositDate, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse deposit date: %w", err)
		}
		d.TransactionRef = txRef.String
		d.ScreenshotRef = shotRef.String
		d.Notes = notes.String
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}
	return deposits, nil
}

// CreateShopping records a purchase paid from the meal fund.
func (s *SQLiteStore) CreateShopping(ctx context.Context, shopping *models.Shopping) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping (shopping_date, amount, items, receipt_ref, notes, shopper_name)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		formatDate(shopping.ShoppingDate), shopping.Amount.String(), shopping.Items,
		nullString(shopping.ReceiptRef), nullString(shopping.Notes), shopping.ShopperName,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shopping: %w", err)
	}
	if shopping.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read shopping id: %w", err)
	}
	return nil
}

// ListShopping retrieves shopping entries for a month, newest first.
func (s *SQLiteStore) ListShopping(ctx context.Context, month models.Month) ([]models.Shopping, error) {
	query := `SELECT id, shopping_date, amount, items, receipt_ref, notes, shopper_name FROM shopping`
	var args []any
	if !month.IsZero() {
		from, to := monthRange(month)
		query += ` WHERE shopping_date >= ? AND shopping_date < ?`
		args = append(args, from, to)
	}
	query += ` ORDER BY shopping_date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping: %w", err)
	}
	defer rows.Close()

	var entries []models.Shopping
	for rows.Next() {
		var (
			e                 models.Shopping
			date              string
			receiptRef, notes sql.NullString
		)
		if err := rows.Scan(&e.ID, &date, &e.Amount, &e.Items, &receiptRef, &notes, &e.ShopperName); err != nil {
			return nil, fmt.Errorf("failed to scan shopping: %w", err)
		}
		if e.ShoppingDate, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse shopping date: %w", err)
		}
		e.ReceiptRef = receiptRef.String
		e.Notes = notes.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping: %w", err)
	}
	return entries, nil
}

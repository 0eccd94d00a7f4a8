package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/billkhata/internal/models"
	"github.com/mmynk/billkhata/internal/storage"
)

const mealCols = `id, member_id, meal_date, breakfast, lunch, dinner, total_quantity, meal_rate, total_cost, is_finalized, finalization_id, notes`

func scanMeal(row scanner) (*models.Meal, error) {
	var (
		m              models.Meal
		date           string
		finalized      bool
		finalizationID sql.NullString
		notes          sql.NullString
	)
	err := row.Scan(&m.ID, &m.MemberID, &date, &m.Breakfast, &m.Lunch, &m.Dinner,
		&m.TotalQuantity, &m.MealRate, &m.TotalCost, &finalized, &finalizationID, &notes)
	if err != nil {
		return nil, err
	}
	if m.MealDate, err = parseDate(date); err != nil {
		return nil, fmt.Errorf("failed to parse meal date: %w", err)
	}
	if finalized {
		m.State = models.MealFinalized
	}
	m.FinalizationID = finalizationID.String
	m.Notes = notes.String
	return &m, nil
}

func collectMeals(rows *sql.Rows) ([]models.Meal, error) {
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}
	return meals, nil
}

// GetMeal retrieves a member's meal record for a day.
func (s *SQLiteStore) GetMeal(ctx context.Context, memberID int64, date time.Time) (*models.Meal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mealCols+` FROM meals WHERE member_id = ? AND meal_date = ?`,
		memberID, formatDate(date))
	m, err := scanMeal(row)
	if err != nil {
		return nil, notFound(err, "meal for member", memberID)
	}
	return m, nil
}

// UpsertOpenMeal inserts the record or overwrites the open record for the
// same member and day. A finalized record is left as is.
func (s *SQLiteStore) UpsertOpenMeal(ctx context.Context, meal *models.Meal) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO meals (member_id, meal_date, breakfast, lunch, dinner, total_quantity, is_finalized, notes)
			 VALUES (?, ?, ?, ?, ?, ?, 0, ?)
			 ON CONFLICT(member_id, meal_date) DO UPDATE SET
			     breakfast = excluded.breakfast,
			     lunch = excluded.lunch,
			     dinner = excluded.dinner,
			     total_quantity = excluded.total_quantity,
			     notes = excluded.notes
			 WHERE meals.is_finalized = 0`,
			meal.MemberID, formatDate(meal.MealDate), meal.Breakfast.String(), meal.Lunch.String(),
			meal.Dinner.String(), meal.TotalQuantity.String(), nullString(meal.Notes),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert meal: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("meal for member %d on %s: %w",
				meal.MemberID, formatDate(meal.MealDate), storage.ErrFinalized)
		}

		err = tx.QueryRowContext(ctx,
			`SELECT id FROM meals WHERE member_id = ? AND meal_date = ?`,
			meal.MemberID, formatDate(meal.MealDate),
		).Scan(&meal.ID)
		if err != nil {
			return fmt.Errorf("failed to read meal id: %w", err)
		}
		meal.State = models.MealOpen
		return nil
	})
}

// InsertMissingMeals inserts the open meals that have no record for their
// member and day yet. Either every insert lands or none does.
func (s *SQLiteStore) InsertMissingMeals(ctx context.Context, meals []models.Meal) ([]models.Meal, error) {
	var created []models.Meal
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO meals (member_id, meal_date, breakfast, lunch, dinner, total_quantity, is_finalized, notes)
			 VALUES (?, ?, ?, ?, ?, ?, 0, ?)
			 ON CONFLICT(member_id, meal_date) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("failed to prepare meal insert: %w", err)
		}
		defer stmt.Close()

		for _, m := range meals {
			res, err := stmt.ExecContext(ctx,
				m.MemberID, formatDate(m.MealDate), m.Breakfast.String(), m.Lunch.String(),
				m.Dinner.String(), m.TotalQuantity.String(), nullString(m.Notes))
			if err != nil {
				return fmt.Errorf("failed to insert meal for member %d: %w", m.MemberID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if n == 0 {
				continue
			}
			if m.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get meal id: %w", err)
			}
			m.State = models.MealOpen
			created = append(created, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListMealsByDate retrieves every meal record for a day in member order.
func (s *SQLiteStore) ListMealsByDate(ctx context.Context, date time.Time) ([]models.Meal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mealCols+` FROM meals WHERE meal_date = ? ORDER BY member_id`, formatDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return collectMeals(rows)
}

// ListMealsByMonth retrieves every meal record in a month.
func (s *SQLiteStore) ListMealsByMonth(ctx context.Context, month models.Month) ([]models.Meal, error) {
	from, to := monthRange(month)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mealCols+` FROM meals WHERE meal_date >= ? AND meal_date < ? ORDER BY meal_date, member_id`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return collectMeals(rows)
}

// ListMemberMeals retrieves one member's meal records in a month.
func (s *SQLiteStore) ListMemberMeals(ctx context.Context, memberID int64, month models.Month) ([]models.Meal, error) {
	from, to := monthRange(month)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mealCols+` FROM meals WHERE member_id = ? AND meal_date >= ? AND meal_date < ? ORDER BY meal_date`,
		memberID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list member meals: %w", err)
	}
	return collectMeals(rows)
}

// FinalizeMeals freezes the given meals under fin in a single transaction.
func (s *SQLiteStore) FinalizeMeals(ctx context.Context, fin *models.Finalization, meals []models.Meal) error {
	if fin.FinalizedAt.IsZero() {
		fin.FinalizedAt = time.Now().UTC().Truncate(time.Second)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO meal_finalizations (id, meal_date, meal_rate, meal_count, total_quantity, total_cost, finalized_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			fin.ID, formatDate(fin.MealDate), fin.MealRate.String(), fin.MealCount,
			fin.TotalQuantity.String(), fin.TotalCost.String(), fin.FinalizedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert finalization: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`UPDATE meals SET meal_rate = ?, total_cost = ?, is_finalized = 1, finalization_id = ?
			 WHERE id = ? AND is_finalized = 0`)
		if err != nil {
			return fmt.Errorf("failed to prepare meal update: %w", err)
		}
		defer stmt.Close()

		for _, m := range meals {
			res, err := stmt.ExecContext(ctx, nullDecimal(m.MealRate), nullDecimal(m.TotalCost), fin.ID, m.ID)
			if err != nil {
				return fmt.Errorf("failed to finalize meal %d: %w", m.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if n != 1 {
				return fmt.Errorf("meal %d is no longer open: %w", m.ID, storage.ErrConflict)
			}
		}

		var open int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM meals WHERE meal_date = ? AND is_finalized = 0`,
			formatDate(fin.MealDate),
		).Scan(&open)
		if err != nil {
			return fmt.Errorf("failed to count open meals: %w", err)
		}
		if open > 0 {
			return fmt.Errorf("%d meals recorded for %s during finalize: %w",
				open, formatDate(fin.MealDate), storage.ErrConflict)
		}
		return nil
	})
}

// ListFinalizations retrieves the finalization audit rows for a month.
func (s *SQLiteStore) ListFinalizations(ctx context.Context, month models.Month) ([]models.Finalization, error) {
	from, to := monthRange(month)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, meal_date, meal_rate, meal_count, total_quantity, total_cost, finalized_at
		 FROM meal_finalizations
		 WHERE meal_date >= ? AND meal_date < ?
		 ORDER BY meal_date, finalized_at`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalizations: %w", err)
	}
	defer rows.Close()

	var fins []models.Finalization
	for rows.Next() {
		var (
			f           models.Finalization
			date        string
			finalizedAt int64
		)
		if err := rows.Scan(&f.ID, &date, &f.MealRate, &f.MealCount, &f.TotalQuantity, &f.TotalCost, &finalizedAt); err != nil {
			return nil, fmt.Errorf("failed to scan finalization: %w", err)
		}
		if f.MealDate, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse finalization date: %w", err)
		}
		f.FinalizedAt = time.Unix(finalizedAt, 0).UTC()
		fins = append(fins, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate finalizations: %w", err)
	}
	return fins, nil
}

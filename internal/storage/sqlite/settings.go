package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/mmynk/billkhata/internal/models"
)

var knownSettings = map[string]bool{
	models.SettingRoomName:            true,
	models.SettingCurrency:            true,
	models.SettingDefaultMealQuantity: true,
	models.SettingMealRateMode:        true,
}

// GetSettings retrieves all stored settings.
func (s *SQLiteStore) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}
	return values, nil
}

// SetSettings upserts the given settings. Unknown keys are rejected before
// anything is written.
func (s *SQLiteStore) SetSettings(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		if !knownSettings[k] {
			return fmt.Errorf("unknown setting %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO settings (key, value) VALUES (?, ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
				k, values[k])
			if err != nil {
				return fmt.Errorf("failed to set %s: %w", k, err)
			}
		}
		return nil
	})
}

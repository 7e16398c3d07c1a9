package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/piresc/arbiter/internal/pkg/models"
)

type rowRecord struct {
	Key  string `db:"key"`
	Data string `db:"data"`
}

func dataText(data json.RawMessage) string {
	if len(data) == 0 {
		return "null"
	}
	return string(data)
}

// QueryRows returns every row of table ordered by key
func (r *EntityRepo) QueryRows(ctx context.Context, table string) ([]models.Row, error) {
	var records []rowRecord
	err := sqlx.SelectContext(ctx, r.ext, &records,
		`SELECT key, data::text AS data FROM table_rows WHERE table_name = $1 ORDER BY key`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows of %q: %w", table, err)
	}

	rows := make([]models.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.Row{Key: rec.Key, Data: json.RawMessage(rec.Data)})
	}
	return rows, nil
}

// InsertRows inserts rows one by one; an existing key yields models.ErrDuplicate.
// Callers wanting all or nothing run it inside a transaction.
func (r *EntityRepo) InsertRows(ctx context.Context, table string, rows []models.Row) error {
	for _, row := range rows {
		_, err := r.ext.ExecContext(ctx,
			`INSERT INTO table_rows (table_name, key, data) VALUES ($1, $2, $3)`,
			table, row.Key, dataText(row.Data),
		)
		if isUniqueViolation(err) {
			return models.ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("failed to insert row %q of %q: %w", row.Key, table, err)
		}
	}
	return nil
}

// UpdateRows replaces the data of rows matched by key and counts the matches
func (r *EntityRepo) UpdateRows(ctx context.Context, table string, rows []models.Row) (int64, error) {
	var updated int64
	for _, row := range rows {
		result, err := r.ext.ExecContext(ctx,
			`UPDATE table_rows SET data = $3 WHERE table_name = $1 AND key = $2`,
			table, row.Key, dataText(row.Data),
		)
		if err != nil {
			return updated, fmt.Errorf("failed to update row %q of %q: %w", row.Key, table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return updated, fmt.Errorf("failed to get affected rows: %w", err)
		}
		updated += n
	}
	return updated, nil
}

// DeleteRows deletes rows by key and counts the deletions
func (r *EntityRepo) DeleteRows(ctx context.Context, table string, keys []string) (int64, error) {
	var deleted int64
	for _, key := range keys {
		result, err := r.ext.ExecContext(ctx,
			`DELETE FROM table_rows WHERE table_name = $1 AND key = $2`, table, key)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete row %q of %q: %w", key, table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("failed to get affected rows: %w", err)
		}
		deleted += n
	}
	return deleted, nil
}

// ExecuteQuery runs a stored statement with :named parameters and returns each
// row as a column map. Byte values are returned as strings.
func (r *EntityRepo) ExecuteQuery(ctx context.Context, statement string, params map[string]interface{}) ([]map[string]interface{}, error) {
	rows, err := sqlx.NamedQueryContext(ctx, r.ext, statement, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	out := make([]map[string]interface{}, 0)
	for rows.Next() {
		record := make(map[string]interface{})
		if err := rows.MapScan(record); err != nil {
			return nil, fmt.Errorf("failed to scan query row: %w", err)
		}
		for col, val := range record {
			if b, ok := val.([]byte); ok {
				record[col] = string(b)
			}
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read query rows: %w", err)
	}
	return out, nil
}

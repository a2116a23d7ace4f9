// Package connectors implements the three backend connectors over the
// resolved configuration mappings produced by internal/config.
package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wwd1015/cloudconduit/pkg/connector"
)

// readPrefixes marks statements whose results are returned as a Frame.
var readPrefixes = []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "WITH", "EXPLAIN"}

func isReadQuery(query string) bool {
	upper := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range readPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// rowsToFrame drains a result set into a Frame, normalizing []byte cells
// to strings.
func rowsToFrame(rows *sql.Rows) (*connector.Frame, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	frame := connector.NewFrame(columns...)
	for rows.Next() {
		holders := make([]interface{}, len(columns))
		for i := range holders {
			holders[i] = new(interface{})
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		values := make([]interface{}, len(columns))
		for i, h := range holders {
			v := *(h.(*interface{}))
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			values[i] = v
		}
		if err := frame.AppendRow(values...); err != nil {
			return nil, err
		}
	}
	return frame, rows.Err()
}

// resultFrame wraps a statement result as a one-row frame so Execute
// has a uniform return shape.
func resultFrame(res sql.Result) *connector.Frame {
	frame := connector.NewFrame("rows_affected")
	affected, err := res.RowsAffected()
	if err != nil {
		return frame
	}
	_ = frame.AppendRow(affected)
	return frame
}

// sqlLiteral renders a frame cell as a SQL literal. Strings are
// single-quoted with quote doubling; nil becomes NULL.
func sqlLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "'" + val.UTC().Format("2006-01-02 15:04:05.000") + "'"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// columnType picks a SQL type for a frame column from its first non-nil
// value, via the backend-specific mapping.
func columnType(frame *connector.Frame, col int, typeFor func(interface{}) string) string {
	for _, row := range frame.Rows {
		if row[col] != nil {
			return typeFor(row[col])
		}
	}
	return typeFor("")
}

// buildCreateTable renders CREATE TABLE IF NOT EXISTS with one column per
// frame column, quoted by the backend's identifier quote.
func buildCreateTable(table string, frame *connector.Frame, quote string, typeFor func(interface{}) string) string {
	defs := make([]string, len(frame.Columns))
	for i, col := range frame.Columns {
		defs[i] = fmt.Sprintf("%s%s%s %s", quote, col, quote, columnType(frame, i, typeFor))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
}

// insertBatches writes frame rows as literal VALUES batches.
func insertBatches(ctx context.Context, db *sql.DB, table string, frame *connector.Frame, batchSize int) error {
	for start := 0; start < len(frame.Rows); start += batchSize {
		end := start + batchSize
		if end > len(frame.Rows) {
			end = len(frame.Rows)
		}

		values := make([]string, 0, end-start)
		for _, row := range frame.Rows[start:end] {
			literals := make([]string, len(row))
			for i, v := range row {
				literals[i] = sqlLiteral(v)
			}
			values = append(values, "("+strings.Join(literals, ", ")+")")
		}

		stmt := fmt.Sprintf("INSERT INTO %s VALUES %s", table, strings.Join(values, ", "))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to insert batch starting at row %d: %w", start, err)
		}
	}
	return nil
}

package journal

import (
	"context"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDate reads the loosely formatted date strings trades carry: full
// ISO-8601 timestamps, datetime-local values and plain dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DayKey returns the YYYY-MM-DD day of a trade date, or "" if it has none.
func DayKey(date string) string {
	t, ok := ParseDate(date)
	if !ok {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

// ListTradesBetween returns owner's trades dated within [start, end), by day.
func (j *SQLite) ListTradesBetween(ctx context.Context, owner string, start, end time.Time) ([]Trade, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT doc FROM trades
		WHERE owner = ? AND trade_date >= ? AND trade_date < ?
		ORDER BY trade_date ASC, rowid ASC`,
		owner, start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

// Owners lists every owner with at least one trade.
func (j *SQLite) Owners(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT DISTINCT owner FROM trades ORDER BY owner`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

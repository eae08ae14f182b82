package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

func decode(doc string, v any) error {
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// ---- trades ----

func (j *SQLite) ListTrades(ctx context.Context, owner string) ([]Trade, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT doc FROM trades WHERE owner = ? ORDER BY rowid ASC`, owner)
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

func scanTrades(rows *sql.Rows) ([]Trade, error) {
	defer rows.Close()

	out := []Trade{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t Trade
		if err := decode(doc, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) GetTrade(ctx context.Context, owner, tradeID string) (Trade, error) {
	var doc string
	err := j.db.QueryRowContext(ctx,
		`SELECT doc FROM trades WHERE owner = ? AND id = ?`, owner, tradeID).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return Trade{}, err
	}

	var t Trade
	if err := decode(doc, &t); err != nil {
		return Trade{}, err
	}
	return t, nil
}

// CreateTrade stores t for owner. A missing id is generated; the owner and
// timestamps are always set here.
func (j *SQLite) CreateTrade(ctx context.Context, owner string, t Trade) (Trade, error) {
	now := j.now()
	if t.ID == "" {
		t.ID = id.New()
	}
	t.UserID = owner
	t.CreatedAt = now
	t.UpdatedAt = now

	doc, err := encode(t)
	if err != nil {
		return Trade{}, err
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO trades (owner, id, trade_date, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		owner, t.ID, DayKey(t.Date), doc, now, now,
	)
	if err != nil {
		return Trade{}, insertError("trade", t.ID, err)
	}
	return t, nil
}

func (j *SQLite) UpdateTrade(ctx context.Context, owner, tradeID string, p Patch) (Trade, error) {
	cur, err := j.GetTrade(ctx, owner, tradeID)
	if err != nil {
		return Trade{}, err
	}

	next, err := ApplyPatch(cur, p)
	if err != nil {
		return Trade{}, err
	}
	next.UpdatedAt = j.now()

	doc, err := encode(next)
	if err != nil {
		return Trade{}, err
	}
	res, err := j.db.ExecContext(ctx, `
		UPDATE trades SET trade_date = ?, doc = ?, updated_at = ?
		WHERE owner = ? AND id = ?`,
		DayKey(next.Date), doc, next.UpdatedAt, owner, tradeID,
	)
	if err != nil {
		return Trade{}, fmt.Errorf("update trade %q: %w", tradeID, err)
	}
	if err := expectRow(res, "trade", tradeID); err != nil {
		return Trade{}, err
	}
	return next, nil
}

func (j *SQLite) DeleteTrade(ctx context.Context, owner, tradeID string) error {
	res, err := j.db.ExecContext(ctx,
		`DELETE FROM trades WHERE owner = ? AND id = ?`, owner, tradeID)
	if err != nil {
		return fmt.Errorf("delete trade %q: %w", tradeID, err)
	}
	return expectRow(res, "trade", tradeID)
}

// insertError reports a primary key collision as ErrConflict.
func insertError(kind, key string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint &&
		(se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique) {
		return fmt.Errorf("%s %q: %w", kind, key, ErrConflict)
	}
	return fmt.Errorf("insert %s %q: %w", kind, key, err)
}

func expectRow(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
	}
	return nil
}

// ---- weekly ----

// GetWeekly returns nil without error when the week has not been saved yet.
func (j *SQLite) GetWeekly(ctx context.Context, owner, weekKey string) (*Weekly, error) {
	var doc string
	err := j.db.QueryRowContext(ctx,
		`SELECT doc FROM weekly WHERE owner = ? AND week_key = ?`, owner, weekKey).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var w Weekly
	if err := decode(doc, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// SaveWeekly replaces the week's document, creating it if needed.
func (j *SQLite) SaveWeekly(ctx context.Context, owner string, w Weekly) (Weekly, error) {
	if w.WeekKey == "" {
		return Weekly{}, fmt.Errorf("weekKey is required")
	}

	now := j.now()
	created := now
	if prev, err := j.GetWeekly(ctx, owner, w.WeekKey); err != nil {
		return Weekly{}, err
	} else if prev != nil {
		created = prev.CreatedAt
	}
	w.CreatedAt = created
	w.UpdatedAt = now

	doc, err := encode(w)
	if err != nil {
		return Weekly{}, err
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO weekly (owner, week_key, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner, week_key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		owner, w.WeekKey, doc, created, now,
	)
	if err != nil {
		return Weekly{}, fmt.Errorf("save week %s: %w", w.WeekKey, err)
	}
	return w, nil
}

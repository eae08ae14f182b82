package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

func (j *SQLite) ListStrategies(ctx context.Context) ([]Strategy, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT doc FROM strategies ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Strategy{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var s Strategy
		if err := decode(doc, &s); err != nil {
			return nil, err
		}
		s.Normalize()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *SQLite) getStrategy(ctx context.Context, strategyID string) (Strategy, error) {
	var doc string
	err := j.db.QueryRowContext(ctx, `SELECT doc FROM strategies WHERE id = ?`, strategyID).Scan(&doc)
	if err == sql.ErrNoRows {
		return Strategy{}, fmt.Errorf("strategy %q: %w", strategyID, ErrNotFound)
	}
	if err != nil {
		return Strategy{}, err
	}
	var s Strategy
	if err := decode(doc, &s); err != nil {
		return Strategy{}, err
	}
	s.Normalize()
	return s, nil
}

func (j *SQLite) CreateStrategy(ctx context.Context, s Strategy) (Strategy, error) {
	return j.insertStrategy(ctx, j.db, s)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (j *SQLite) insertStrategy(ctx context.Context, db execer, s Strategy) (Strategy, error) {
	now := j.now()
	if s.ID == "" {
		s.ID = id.New()
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Normalize()

	doc, err := encode(s)
	if err != nil {
		return Strategy{}, err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO strategies (id, doc, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		s.ID, doc, now, now)
	if err != nil {
		return Strategy{}, insertError("strategy", s.ID, err)
	}
	return s, nil
}

func (j *SQLite) UpdateStrategy(ctx context.Context, strategyID string, p Patch) (Strategy, error) {
	cur, err := j.getStrategy(ctx, strategyID)
	if err != nil {
		return Strategy{}, err
	}
	next, err := merge(cur, p, "id")
	if err != nil {
		return Strategy{}, err
	}
	next.UpdatedAt = j.now()
	next.Normalize()

	doc, err := encode(next)
	if err != nil {
		return Strategy{}, err
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE strategies SET doc = ?, updated_at = ? WHERE id = ?`, doc, next.UpdatedAt, strategyID)
	if err != nil {
		return Strategy{}, fmt.Errorf("update strategy %q: %w", strategyID, err)
	}
	if err := expectRow(res, "strategy", strategyID); err != nil {
		return Strategy{}, err
	}
	return next, nil
}

func (j *SQLite) DeleteStrategy(ctx context.Context, strategyID string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM strategies WHERE id = ?`, strategyID)
	if err != nil {
		return fmt.Errorf("delete strategy %q: %w", strategyID, err)
	}
	return expectRow(res, "strategy", strategyID)
}

// SeedStrategies replaces every strategy with seed inside one transaction.
func (j *SQLite) SeedStrategies(ctx context.Context, seed []Strategy) (int, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM strategies`); err != nil {
		return 0, fmt.Errorf("clear strategies: %w", err)
	}
	for _, s := range seed {
		if _, err := j.insertStrategy(ctx, tx, s); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(seed), nil
}

// ListRuleCards returns the cards of one section, or every card when either
// filter is empty.
func (j *SQLite) ListRuleCards(ctx context.Context, strategyID, sectionID string) ([]RuleCard, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if strategyID != "" && sectionID != "" {
		rows, err = j.db.QueryContext(ctx,
			`SELECT doc FROM rule_cards WHERE strategy_id = ? AND section_id = ? ORDER BY rowid ASC`,
			strategyID, sectionID)
	} else {
		rows, err = j.db.QueryContext(ctx, `SELECT doc FROM rule_cards ORDER BY rowid ASC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RuleCard{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var c RuleCard
		if err := decode(doc, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (j *SQLite) CreateRuleCard(ctx context.Context, c RuleCard) (RuleCard, error) {
	now := j.now()
	if c.ID == "" {
		c.ID = id.New()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	doc, err := encode(c)
	if err != nil {
		return RuleCard{}, err
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO rule_cards (id, strategy_id, section_id, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.StrategyID, c.SectionID, doc, now, now)
	if err != nil {
		return RuleCard{}, insertError("rule card", c.ID, err)
	}
	return c, nil
}

func (j *SQLite) UpdateRuleCard(ctx context.Context, cardID string, p Patch) (RuleCard, error) {
	var doc string
	err := j.db.QueryRowContext(ctx, `SELECT doc FROM rule_cards WHERE id = ?`, cardID).Scan(&doc)
	if err == sql.ErrNoRows {
		return RuleCard{}, fmt.Errorf("rule card %q: %w", cardID, ErrNotFound)
	}
	if err != nil {
		return RuleCard{}, err
	}
	var cur RuleCard
	if err := decode(doc, &cur); err != nil {
		return RuleCard{}, err
	}

	next, err := merge(cur, p, "id")
	if err != nil {
		return RuleCard{}, err
	}
	next.UpdatedAt = j.now()

	if doc, err = encode(next); err != nil {
		return RuleCard{}, err
	}
	res, err := j.db.ExecContext(ctx, `
		UPDATE rule_cards SET strategy_id = ?, section_id = ?, doc = ?, updated_at = ?
		WHERE id = ?`,
		next.StrategyID, next.SectionID, doc, next.UpdatedAt, cardID)
	if err != nil {
		return RuleCard{}, fmt.Errorf("update rule card %q: %w", cardID, err)
	}
	if err := expectRow(res, "rule card", cardID); err != nil {
		return RuleCard{}, err
	}
	return next, nil
}

func (j *SQLite) DeleteRuleCard(ctx context.Context, cardID string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM rule_cards WHERE id = ?`, cardID)
	if err != nil {
		return fmt.Errorf("delete rule card %q: %w", cardID, err)
	}
	return expectRow(res, "rule card", cardID)
}

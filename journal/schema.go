// journal/schema.go
package journal

// Schema stores each record as a JSON document next to the columns it is
// looked up by.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	owner TEXT NOT NULL,
	id TEXT NOT NULL,
	trade_date TEXT NOT NULL DEFAULT '',
	doc TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (owner, id)
);

CREATE INDEX IF NOT EXISTS idx_trades_owner_date ON trades(owner, trade_date);

CREATE TABLE IF NOT EXISTS weekly (
	owner TEXT NOT NULL,
	week_key TEXT NOT NULL,
	doc TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (owner, week_key)
);

CREATE TABLE IF NOT EXISTS strategies (
	id TEXT PRIMARY KEY,
	doc TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS rule_cards (
	id TEXT PRIMARY KEY,
	strategy_id TEXT NOT NULL,
	section_id TEXT NOT NULL,
	doc TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rule_cards_section ON rule_cards(strategy_id, section_id);
`

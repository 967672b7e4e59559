package ledger

const schema = `
CREATE TABLE IF NOT EXISTS history (
	row_id TEXT PRIMARY KEY,
	date DATETIME NOT NULL,
	code TEXT,
	name TEXT,
	price INTEGER,
	quantity INTEGER,
	amount INTEGER,
	net INTEGER,
	balance INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_date ON history(date);
`

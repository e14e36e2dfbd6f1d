package store

// Monetary values are stored as decimal strings to avoid float drift.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	balance TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	account_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	shares INTEGER NOT NULL,
	average_price TEXT NOT NULL,
	PRIMARY KEY (account_id, symbol)
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	action TEXT NOT NULL,
	symbol TEXT NOT NULL,
	shares INTEGER NOT NULL,
	price TEXT NOT NULL,
	total TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS watchlists (
	account_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	added_at DATETIME NOT NULL,
	PRIMARY KEY (account_id, symbol)
);

CREATE TABLE IF NOT EXISTS chat_history (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	speaker TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_account_time ON chat_history(account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_tx_account_time ON transactions(account_id, created_at);
`

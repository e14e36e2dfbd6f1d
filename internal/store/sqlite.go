package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"financegpt/internal/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// initialBalance is credited to every new account.
var initialBalance = decimal.NewFromInt(10000)

// SQLiteStore is the sqlite-backed Store.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *SQLiteStore) CreateAccount(accountID, email, password string) (*models.Account, error) {
	_, err := s.db.Exec(`
		INSERT INTO accounts (account_id, email, password_hash, balance, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		accountID, strings.ToLower(email), hashPassword(password),
		initialBalance.String(), time.Now().UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &models.Account{AccountID: accountID, Email: email, Balance: initialBalance}, nil
}

func (s *SQLiteStore) Authenticate(email, password string) (*models.Account, error) {
	row := s.db.QueryRow(`
		SELECT account_id, email, balance FROM accounts
		WHERE email = ? AND password_hash = ?`,
		strings.ToLower(email), hashPassword(password),
	)
	return scanAccount(row)
}

func (s *SQLiteStore) GetUser(accountID string) (*models.Account, error) {
	row := s.db.QueryRow(`
		SELECT account_id, email, balance FROM accounts WHERE account_id = ?`,
		accountID,
	)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var balance string
	if err := row.Scan(&a.AccountID, &a.Email, &balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for %s: %w", a.AccountID, err)
	}
	a.Balance = b
	return &a, nil
}

func (s *SQLiteStore) Deposit(accountID string, amount decimal.Decimal) (Result, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Result{Status: "error", Message: "Deposit amount must be positive"}, nil
	}
	acct, err := s.GetUser(accountID)
	if err != nil {
		return Result{}, err
	}
	newBalance := acct.Balance.Add(amount)
	if _, err := s.db.Exec(
		`UPDATE accounts SET balance = ? WHERE account_id = ?`,
		newBalance.String(), accountID,
	); err != nil {
		return Result{}, err
	}
	return Result{
		Status:  "success",
		Message: fmt.Sprintf("Deposited $%s. New balance: $%s", amount.StringFixed(2), newBalance.StringFixed(2)),
	}, nil
}

func (s *SQLiteStore) GetPortfolio(accountID string) ([]models.Position, error) {
	rows, err := s.db.Query(`
		SELECT symbol, shares, average_price FROM positions
		WHERE account_id = ? AND shares > 0 ORDER BY symbol`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		var avg string
		if err := rows.Scan(&p.Symbol, &p.Shares, &avg); err != nil {
			return nil, err
		}
		if p.AveragePrice, err = decimal.NewFromString(avg); err != nil {
			return nil, fmt.Errorf("corrupt average_price for %s: %w", p.Symbol, err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *SQLiteStore) GetWatchlist(accountID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT symbol FROM watchlists WHERE account_id = ? ORDER BY added_at, rowid`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *SQLiteStore) AddToWatchlist(accountID, symbol string) (Result, error) {
	symbol = strings.ToUpper(symbol)
	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO watchlists (account_id, symbol, added_at)
		VALUES (?, ?, ?)`,
		accountID, symbol, time.Now().UTC(),
	)
	if err != nil {
		return Result{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Result{Status: "error", Message: fmt.Sprintf("%s is already in your watchlist", symbol)}, nil
	}
	return Result{Status: "success", Message: fmt.Sprintf("Added %s to watchlist", symbol)}, nil
}

func (s *SQLiteStore) RemoveFromWatchlist(accountID, symbol string) (Result, error) {
	symbol = strings.ToUpper(symbol)
	res, err := s.db.Exec(`
		DELETE FROM watchlists WHERE account_id = ? AND symbol = ?`,
		accountID, symbol,
	)
	if err != nil {
		return Result{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Result{Status: "error", Message: fmt.Sprintf("%s is not in your watchlist", symbol)}, nil
	}
	return Result{Status: "success", Message: fmt.Sprintf("Removed %s from watchlist", symbol)}, nil
}

// ExecuteTrade commits a simulated trade: balance and position change in one
// transaction, plus an audit row. The price is the one locked at staging.
func (s *SQLiteStore) ExecuteTrade(accountID string, action models.TradeAction, symbol string, shares int64, price decimal.Decimal) (Result, error) {
	symbol = strings.ToUpper(symbol)
	total := price.Mul(decimal.NewFromInt(shares))

	tx, err := s.db.Begin()
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	var balanceStr string
	if err := tx.QueryRow(
		`SELECT balance FROM accounts WHERE account_id = ?`, accountID,
	).Scan(&balanceStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrNotFound
		}
		return Result{}, err
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return Result{}, fmt.Errorf("corrupt balance for %s: %w", accountID, err)
	}

	switch action {
	case models.Buy:
		if balance.LessThan(total) {
			return Result{Status: "error", Message: "Insufficient funds"}, nil
		}
		var held int64
		var avgStr string
		err := tx.QueryRow(
			`SELECT shares, average_price FROM positions WHERE account_id = ? AND symbol = ?`,
			accountID, symbol,
		).Scan(&held, &avgStr)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.Exec(
				`INSERT INTO positions (account_id, symbol, shares, average_price) VALUES (?, ?, ?, ?)`,
				accountID, symbol, shares, price.String(),
			); err != nil {
				return Result{}, err
			}
		case err != nil:
			return Result{}, err
		default:
			avg, err := decimal.NewFromString(avgStr)
			if err != nil {
				return Result{}, fmt.Errorf("corrupt average_price for %s: %w", symbol, err)
			}
			// Weighted average entry price across the old and new lots.
			newShares := held + shares
			newAvg := avg.Mul(decimal.NewFromInt(held)).Add(total).
				Div(decimal.NewFromInt(newShares))
			if _, err := tx.Exec(
				`UPDATE positions SET shares = ?, average_price = ? WHERE account_id = ? AND symbol = ?`,
				newShares, newAvg.String(), accountID, symbol,
			); err != nil {
				return Result{}, err
			}
		}
		balance = balance.Sub(total)

	case models.Sell:
		var held int64
		var avgStr string
		err := tx.QueryRow(
			`SELECT shares, average_price FROM positions WHERE account_id = ? AND symbol = ?`,
			accountID, symbol,
		).Scan(&held, &avgStr)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && held < shares) {
			return Result{Status: "error", Message: "Insufficient shares"}, nil
		}
		if err != nil {
			return Result{}, err
		}
		if held == shares {
			if _, err := tx.Exec(
				`DELETE FROM positions WHERE account_id = ? AND symbol = ?`,
				accountID, symbol,
			); err != nil {
				return Result{}, err
			}
		} else {
			if _, err := tx.Exec(
				`UPDATE positions SET shares = ? WHERE account_id = ? AND symbol = ?`,
				held-shares, accountID, symbol,
			); err != nil {
				return Result{}, err
			}
		}
		balance = balance.Add(total)

	default:
		return Result{}, fmt.Errorf("unknown trade action %q", action)
	}

	if _, err := tx.Exec(
		`UPDATE accounts SET balance = ? WHERE account_id = ?`,
		balance.String(), accountID,
	); err != nil {
		return Result{}, err
	}

	if _, err := tx.Exec(
		`INSERT INTO transactions (id, account_id, action, symbol, shares, price, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), accountID, string(action), symbol, shares,
		price.String(), total.String(), time.Now().UTC(),
	); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}

	verb := "Bought"
	if action == models.Sell {
		verb = "Sold"
	}
	return Result{
		Status:  "success",
		Message: fmt.Sprintf("%s %d shares of %s at $%s", verb, shares, symbol, price.StringFixed(2)),
	}, nil
}

func (s *SQLiteStore) SaveChatMessage(accountID, speaker, text string) error {
	_, err := s.db.Exec(`
		INSERT INTO chat_history (id, account_id, speaker, message, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), accountID, speaker, text, time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) RecentChatHistory(accountID string, limit int) ([]models.ChatMessage, error) {
	rows, err := s.db.Query(`
		SELECT id, account_id, speaker, message, created_at FROM chat_history
		WHERE account_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		accountID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.AccountID, &m.Speaker, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Oldest first for prompt assembly.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

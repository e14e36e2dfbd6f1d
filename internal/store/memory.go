package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"financegpt/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store, used by tests and throwaway sessions.
// Semantics mirror SQLiteStore.
type MemoryStore struct {
	mu        sync.Mutex
	accounts  map[string]*memAccount
	byEmail   map[string]string
	watchlist map[string][]string
	chat      map[string][]models.ChatMessage
}

type memAccount struct {
	account   models.Account
	password  string
	positions map[string]*models.Position
}

var _ Store = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]*memAccount),
		byEmail:   make(map[string]string),
		watchlist: make(map[string][]string),
		chat:      make(map[string][]models.ChatMessage),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateAccount(accountID, email, password string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	if _, ok := s.accounts[accountID]; ok {
		return nil, ErrDuplicate
	}
	if _, ok := s.byEmail[email]; ok {
		return nil, ErrDuplicate
	}
	acct := &memAccount{
		account:   models.Account{AccountID: accountID, Email: email, Balance: initialBalance},
		password:  password,
		positions: make(map[string]*models.Position),
	}
	s.accounts[accountID] = acct
	s.byEmail[email] = accountID
	out := acct.account
	return &out, nil
}

func (s *MemoryStore) Authenticate(email, password string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	acct := s.accounts[id]
	if acct.password != password {
		return nil, ErrNotFound
	}
	out := acct.account
	return &out, nil
}

func (s *MemoryStore) GetUser(accountID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	out := acct.account
	return &out, nil
}

func (s *MemoryStore) Deposit(accountID string, amount decimal.Decimal) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount.LessThanOrEqual(decimal.Zero) {
		return Result{Status: "error", Message: "Deposit amount must be positive"}, nil
	}
	acct, ok := s.accounts[accountID]
	if !ok {
		return Result{}, ErrNotFound
	}
	acct.account.Balance = acct.account.Balance.Add(amount)
	return Result{
		Status:  "success",
		Message: fmt.Sprintf("Deposited $%s. New balance: $%s", amount.StringFixed(2), acct.account.Balance.StringFixed(2)),
	}, nil
}

func (s *MemoryStore) GetPortfolio(accountID string) ([]models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	var positions []models.Position
	for _, p := range acct.positions {
		if p.Shares > 0 {
			positions = append(positions, *p)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions, nil
}

func (s *MemoryStore) GetWatchlist(accountID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.watchlist[accountID]...), nil
}

func (s *MemoryStore) AddToWatchlist(accountID, symbol string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	for _, sym := range s.watchlist[accountID] {
		if sym == symbol {
			return Result{Status: "error", Message: fmt.Sprintf("%s is already in your watchlist", symbol)}, nil
		}
	}
	s.watchlist[accountID] = append(s.watchlist[accountID], symbol)
	return Result{Status: "success", Message: fmt.Sprintf("Added %s to watchlist", symbol)}, nil
}

func (s *MemoryStore) RemoveFromWatchlist(accountID, symbol string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	list := s.watchlist[accountID]
	for i, sym := range list {
		if sym == symbol {
			s.watchlist[accountID] = append(list[:i], list[i+1:]...)
			return Result{Status: "success", Message: fmt.Sprintf("Removed %s from watchlist", symbol)}, nil
		}
	}
	return Result{Status: "error", Message: fmt.Sprintf("%s is not in your watchlist", symbol)}, nil
}

func (s *MemoryStore) ExecuteTrade(accountID string, action models.TradeAction, symbol string, shares int64, price decimal.Decimal) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	acct, ok := s.accounts[accountID]
	if !ok {
		return Result{}, ErrNotFound
	}
	total := price.Mul(decimal.NewFromInt(shares))

	switch action {
	case models.Buy:
		if acct.account.Balance.LessThan(total) {
			return Result{Status: "error", Message: "Insufficient funds"}, nil
		}
		pos, held := acct.positions[symbol]
		if !held {
			acct.positions[symbol] = &models.Position{Symbol: symbol, Shares: shares, AveragePrice: price}
		} else {
			newShares := pos.Shares + shares
			pos.AveragePrice = pos.AveragePrice.Mul(decimal.NewFromInt(pos.Shares)).
				Add(total).Div(decimal.NewFromInt(newShares))
			pos.Shares = newShares
		}
		acct.account.Balance = acct.account.Balance.Sub(total)

	case models.Sell:
		pos, held := acct.positions[symbol]
		if !held || pos.Shares < shares {
			return Result{Status: "error", Message: "Insufficient shares"}, nil
		}
		pos.Shares -= shares
		if pos.Shares == 0 {
			delete(acct.positions, symbol)
		}
		acct.account.Balance = acct.account.Balance.Add(total)

	default:
		return Result{}, fmt.Errorf("unknown trade action %q", action)
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

func (s *MemoryStore) SaveChatMessage(accountID, speaker, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chat[accountID] = append(s.chat[accountID], models.ChatMessage{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *MemoryStore) RecentChatHistory(accountID string, limit int) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.chat[accountID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]models.ChatMessage(nil), msgs...), nil
}

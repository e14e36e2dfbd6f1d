package agent

import (
	"sync"

	"github.com/google/uuid"

	"financegpt/internal/models"
)

// historyPair is one user turn and the assistant reply it produced.
type historyPair struct {
	user      string
	assistant string
}

// Session is the per-conversation state: identity, authentication, the
// bounded chat history fed to the language model, and the pending-trade slot.
type Session struct {
	ID      string
	Pending *PendingStore

	mu       sync.Mutex
	account  *models.Account
	history  []historyPair
	maxPairs int
}

// NewSession starts an unauthenticated session keeping at most maxPairs
// exchanges of history.
func NewSession(maxPairs int) *Session {
	if maxPairs <= 0 {
		maxPairs = 5
	}
	return &Session{
		ID:       uuid.NewString(),
		Pending:  NewPendingStore(),
		maxPairs: maxPairs,
	}
}

// Login binds the session to an authenticated account. Any trade staged
// before the switch is dropped.
func (s *Session) Login(acct *models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = acct
	s.Pending.Clear()
}

// HistoryDepth returns the number of exchange pairs the window retains.
func (s *Session) HistoryDepth() int {
	return s.maxPairs
}

// SeedHistory rebuilds the history window from persisted chat messages,
// oldest first. USER/ASSISTANT rows are folded back into exchange pairs; an
// unpaired trailing user message is dropped. The usual window bound applies.
func (s *Session) SeedHistory(msgs []models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	var user string
	var open bool
	for _, m := range msgs {
		switch m.Speaker {
		case "USER":
			user = m.Text
			open = true
		case "ASSISTANT":
			if !open {
				continue
			}
			s.history = append(s.history, historyPair{user: user, assistant: m.Text})
			open = false
		}
	}
	if len(s.history) > s.maxPairs {
		s.history = s.history[len(s.history)-s.maxPairs:]
	}
}

// UpdateAccount refreshes the bound account record in place, for example
// after a balance change. Unlike Login it leaves pending state alone.
func (s *Session) UpdateAccount(acct *models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account != nil && acct != nil && s.account.AccountID == acct.AccountID {
		s.account = acct
	}
}

// Logout unbinds the account and clears pending state.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = nil
	s.Pending.Clear()
}

// Account returns the bound account, or nil when not logged in.
func (s *Session) Account() *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// Authenticated reports whether an account is bound.
func (s *Session) Authenticated() bool {
	return s.Account() != nil
}

// Remember appends one user/assistant exchange, evicting the oldest pair
// once the window is full.
func (s *Session) Remember(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, historyPair{user: user, assistant: assistant})
	if len(s.history) > s.maxPairs {
		s.history = s.history[len(s.history)-s.maxPairs:]
	}
}

// History returns the retained exchanges, oldest first.
func (s *Session) History() []historyPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]historyPair, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory forgets the conversation window.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

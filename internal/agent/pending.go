package agent

import (
	"sync"

	"financegpt/internal/models"
)

// PendingStore holds at most one staged trade per session. Staging a new
// trade while one is already waiting replaces it; the latest proposal is the
// only one a confirmation can execute.
type PendingStore struct {
	mu    sync.Mutex
	trade *models.PendingTrade
}

func NewPendingStore() *PendingStore {
	return &PendingStore{}
}

// Stage replaces any waiting trade with t.
func (p *PendingStore) Stage(t *models.PendingTrade) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trade = t
}

// Confirm atomically takes the staged trade, leaving the slot empty. It
// returns ErrNoPendingOperation when nothing is staged, so a stray "yes"
// cannot execute anything.
func (p *PendingStore) Confirm() (*models.PendingTrade, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trade == nil {
		return nil, ErrNoPendingOperation
	}
	t := p.trade
	p.trade = nil
	return t, nil
}

// Peek returns the staged trade without clearing it, or nil.
func (p *PendingStore) Peek() *models.PendingTrade {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trade
}

// Clear drops any staged trade and reports whether one was waiting.
func (p *PendingStore) Clear() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	had := p.trade != nil
	p.trade = nil
	return had
}

package agent

import (
	"testing"

	"github.com/shopspring/decimal"

	"financegpt/internal/models"
)

func TestSessionHistoryWindow(t *testing.T) {
	s := NewSession(3)
	for i := 0; i < 5; i++ {
		s.Remember(string(rune('a'+i)), "reply")
	}
	h := s.History()
	if len(h) != 3 {
		t.Fatalf("history len = %d, want 3", len(h))
	}
	if h[0].user != "c" || h[2].user != "e" {
		t.Fatalf("window = %q..%q, want c..e", h[0].user, h[2].user)
	}
}

func TestSessionLoginClearsPending(t *testing.T) {
	s := NewSession(5)
	s.Pending.Stage(pendingTrade("AAPL", 10))
	s.Login(&models.Account{AccountID: "acct-2", Balance: decimal.Zero})
	if s.Pending.Peek() != nil {
		t.Fatal("pending trade survived login")
	}
	if !s.Authenticated() {
		t.Fatal("not authenticated after login")
	}
}

func TestSessionUpdateAccountKeepsPending(t *testing.T) {
	s := NewSession(5)
	s.Login(&models.Account{AccountID: "acct-1", Balance: decimal.Zero})
	s.Pending.Stage(pendingTrade("AAPL", 10))

	s.UpdateAccount(&models.Account{AccountID: "acct-1", Balance: decimal.NewFromInt(500)})
	if s.Pending.Peek() == nil {
		t.Fatal("pending trade dropped by account refresh")
	}
	if !s.Account().Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balance = %s", s.Account().Balance)
	}

	// A record for a different account must not rebind the session.
	s.UpdateAccount(&models.Account{AccountID: "acct-9", Balance: decimal.Zero})
	if s.Account().AccountID != "acct-1" {
		t.Fatalf("account = %s", s.Account().AccountID)
	}
}

func TestSessionSeedHistory(t *testing.T) {
	s := NewSession(2)
	s.Remember("stale", "stale")

	s.SeedHistory([]models.ChatMessage{
		{Speaker: "USER", Text: "hi"},
		{Speaker: "ASSISTANT", Text: "hello"},
		{Speaker: "USER", Text: "quote AAPL"},
		{Speaker: "ASSISTANT", Text: "AAPL is at $178.50"},
		{Speaker: "USER", Text: "unanswered"},
	})

	h := s.History()
	if len(h) != 2 {
		t.Fatalf("history len = %d, want 2", len(h))
	}
	if h[0].user != "hi" || h[1].assistant != "AAPL is at $178.50" {
		t.Fatalf("window = %+v", h)
	}
}

func TestSessionSeedHistoryBounded(t *testing.T) {
	s := NewSession(1)
	s.SeedHistory([]models.ChatMessage{
		{Speaker: "USER", Text: "first"},
		{Speaker: "ASSISTANT", Text: "one"},
		{Speaker: "USER", Text: "second"},
		{Speaker: "ASSISTANT", Text: "two"},
	})
	h := s.History()
	if len(h) != 1 || h[0].user != "second" {
		t.Fatalf("window = %+v, want the newest pair only", h)
	}
}

func TestSessionLogout(t *testing.T) {
	s := NewSession(5)
	s.Login(&models.Account{AccountID: "acct-1"})
	s.Pending.Stage(pendingTrade("AAPL", 1))
	s.Logout()
	if s.Authenticated() {
		t.Fatal("still authenticated after logout")
	}
	if s.Pending.Peek() != nil {
		t.Fatal("pending trade survived logout")
	}
}

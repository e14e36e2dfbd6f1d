package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/peterh/liner"
	"github.com/shopspring/decimal"

	"financegpt/internal/agent"
	"financegpt/internal/store"
)

const welcome = `💹 FinanceGPT
Type 'help' for commands, 'login <email> <password>' to sign in,
'create <email> <password>' for a new account, 'exit' to quit.`

// runShell drives the interactive prompt. Account management commands are
// handled here; everything else goes to the conversation router.
func runShell(ctx context.Context, router *agent.Router, st store.Store) error {
	fmt.Println(welcome)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), "financegpt-history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := line.Prompt("you> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				continue
			}
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if done, reply := shellCommand(router, st, input); done {
			if reply == "" {
				fmt.Println("Goodbye!")
				return nil
			}
			fmt.Println(reply)
			continue
		}

		reply, err := router.Process(ctx, input)
		if err != nil {
			return err
		}
		fmt.Println(reply)
	}
}

// shellCommand handles the account-level vocabulary. It returns handled=true
// with the reply to print, or handled=true with an empty reply to exit.
func shellCommand(router *agent.Router, st store.Store, input string) (handled bool, reply string) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	session := router.Session()

	switch cmd {
	case "exit", "quit", "bye":
		return true, ""

	case "login":
		if len(fields) != 3 {
			return true, "Usage: login <email> <password>"
		}
		acct, err := st.Authenticate(fields[1], fields[2])
		if err != nil {
			log.Printf("login failed for %s: %v", fields[1], err)
			return true, "❌ Invalid email or password."
		}
		session.Login(acct)
		// Pick the conversation back up where the last session left it.
		if msgs, err := st.RecentChatHistory(acct.AccountID, session.HistoryDepth()*2); err == nil {
			session.SeedHistory(msgs)
		} else {
			log.Printf("load chat history for %s: %v", acct.AccountID, err)
		}
		return true, fmt.Sprintf("✅ Logged in as %s.", acct.Email)

	case "logout":
		session.Logout()
		return true, "Logged out."

	case "create":
		if len(fields) != 3 {
			return true, "Usage: create <email> <password>"
		}
		acct, err := st.CreateAccount(uuid.NewString(), fields[1], fields[2])
		if err != nil {
			if err == store.ErrDuplicate {
				return true, "❌ An account with that email already exists."
			}
			log.Printf("create account for %s: %v", fields[1], err)
			return true, "⚠️ Couldn't create the account. Please try again."
		}
		session.Login(acct)
		return true, fmt.Sprintf("✅ Account created. You start with $%s. You're logged in as %s.",
			acct.Balance.StringFixed(2), acct.Email)

	case "deposit":
		if len(fields) != 2 {
			return true, "Usage: deposit <amount>"
		}
		acct := session.Account()
		if acct == nil {
			return true, "Please log in first."
		}
		amount, err := decimal.NewFromString(strings.TrimPrefix(fields[1], "$"))
		if err != nil || !amount.IsPositive() {
			return true, "❌ The amount must be a positive number."
		}
		result, err := st.Deposit(acct.AccountID, amount)
		if err != nil {
			log.Printf("deposit for %s: %v", acct.AccountID, err)
			return true, "⚠️ Couldn't process the deposit. Please try again."
		}
		if !result.OK() {
			return true, "❌ " + result.Message
		}
		if fresh, err := st.GetUser(acct.AccountID); err == nil {
			session.UpdateAccount(fresh)
			return true, fmt.Sprintf("✅ Deposited $%s. New balance: $%s.",
				amount.StringFixed(2), fresh.Balance.StringFixed(2))
		}
		return true, fmt.Sprintf("✅ Deposited $%s.", amount.StringFixed(2))

	case "clear":
		session.ClearHistory()
		return true, "Conversation history cleared."
	}

	return false, ""
}

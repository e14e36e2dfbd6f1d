package agent

import (
	"context"
	"log"
	"time"

	"financegpt/internal/ai"
	"financegpt/internal/logger"
	"financegpt/internal/store"
)

// Responder is the language-model collaborator. Satisfied by *ai.Client.
type Responder interface {
	Ask(ctx context.Context, pc ai.PromptContext) (string, error)
}

// Router is the conversation engine: it classifies each input line, runs the
// matching handler against the session, and returns the reply to print.
type Router struct {
	classifier *Classifier
	validator  *TradeValidator
	quotes     Quoter
	store      store.Store
	ai         Responder
	session    *Session

	// Injectable for tests.
	now func() time.Time
}

// NewRouter wires the conversation engine. The ai responder may be nil, in
// which case freeform queries get a static fallback instead of a model call.
func NewRouter(session *Session, validator *TradeValidator, quotes Quoter, st store.Store, responder Responder) *Router {
	return &Router{
		classifier: NewClassifier(),
		validator:  validator,
		quotes:     quotes,
		store:      st,
		ai:         responder,
		session:    session,
		now:        time.Now,
	}
}

// Session returns the conversation state the router operates on.
func (r *Router) Session() *Session { return r.session }

// Process handles one line of user input and returns the assistant reply.
// All domain failures are rendered into the reply; the error return is
// reserved for context cancellation.
func (r *Router) Process(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	intent := r.classifier.Classify(text, r.session.Pending.Peek() != nil)
	logger.Debugf("classified %q as intent %d", text, intent.Kind)
	reply := r.dispatch(ctx, intent, text)

	r.session.Remember(text, reply)
	r.persistChat(text, reply)
	return reply, nil
}

func (r *Router) dispatch(ctx context.Context, intent Intent, text string) string {
	switch intent.Kind {
	case IntentTrade:
		return r.handleTrade(ctx, text)
	case IntentConfirm:
		return r.handleConfirm(ctx)
	case IntentCancel:
		return r.handleCancel()
	case IntentGreeting:
		return intent.Reply
	case IntentMarketSummary:
		return r.handleMarketSummary(ctx)
	case IntentBalance:
		return r.handleBalance()
	case IntentPortfolio:
		return r.handlePortfolio(ctx)
	case IntentWatchlistShow:
		return r.handleWatchlistShow(ctx)
	case IntentWatchlistAdd:
		return r.handleWatchlistAdd(ctx, intent.Symbol)
	case IntentWatchlistRemove:
		return r.handleWatchlistRemove(intent.Symbol)
	case IntentQuote:
		return r.handleQuote(ctx, intent.Symbol)
	case IntentAnalyze:
		return r.handleAnalyze(ctx, intent.Symbol)
	case IntentHelp:
		return formatHelp()
	case IntentSymbols:
		return formatSymbols()
	default:
		return r.handleFreeform(ctx, text)
	}
}

// persistChat mirrors the exchange into the chat log for logged-in users.
// Logging failures never surface to the conversation.
func (r *Router) persistChat(userText, reply string) {
	acct := r.session.Account()
	if acct == nil {
		return
	}
	if err := r.store.SaveChatMessage(acct.AccountID, "USER", userText); err != nil {
		log.Printf("chat log: save user message: %v", err)
	}
	if err := r.store.SaveChatMessage(acct.AccountID, "ASSISTANT", reply); err != nil {
		log.Printf("chat log: save assistant message: %v", err)
	}
}

package ai

import (
	"encoding/json"
	"strings"
)

// Operation is the structured payload the model may embed in a freeform
// reply. It is a proposal only: nothing in it is trusted or executed until it
// has gone back through trade validation.
type Operation struct {
	Type                 string        `json:"type"`      // conversation, account, trade, analysis
	Operation            string        `json:"operation"` // CREATE, READ, UPDATE, DELETE, BUY, SELL, ANALYZE
	Data                 OperationData `json:"data"`
	NaturalResponse      string        `json:"natural_response"`
	RequiresConfirmation bool          `json:"requires_confirmation"`
	ShowData             bool          `json:"show_data"`
}

// OperationData holds the trade fields of an Operation.
type OperationData struct {
	Symbol string      `json:"symbol"`
	Shares json.Number `json:"shares"`
	Price  json.Number `json:"price"`
}

// IsTrade reports whether the payload proposes a BUY or SELL.
func (o *Operation) IsTrade() bool {
	if o.Type != "trade" {
		return false
	}
	op := strings.ToUpper(o.Operation)
	return op == "BUY" || op == "SELL"
}

// ParseOperation scans a model reply for an embedded JSON operation payload.
// It returns the parsed payload and true when one is found; plain prose
// replies return false.
func ParseOperation(text string) (*Operation, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}

	// Walk to the matching close brace so trailing prose doesn't break decode.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				var op Operation
				if err := json.Unmarshal([]byte(text[start:i+1]), &op); err != nil {
					return nil, false
				}
				if op.Type == "" {
					return nil, false
				}
				return &op, true
			}
		}
	}
	return nil, false
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount is a decimal quantity exactly as the server sent it. The server may
// encode it as a JSON number or string; either way the text is kept verbatim
// and never converted to a float.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) String() string { return string(a) }

// Account is one row of the account list.
type Account struct {
	ID      string `json:"id"`
	Balance Amount `json:"balance"`
}

// OutgoingTransfer records money sent from an account.
type OutgoingTransfer struct {
	ToAccountID string `json:"toAccountId"`
	Amount      Amount `json:"amount"`
	Timestamp   string `json:"timestamp"`
}

// AccountDetails is an account with its most recent outgoing transfers, in
// the order the server returned them.
type AccountDetails struct {
	ID                    string             `json:"id"`
	Balance               Amount             `json:"balance"`
	LastOutgoingTransfers []OutgoingTransfer `json:"lastOutgoingTransfers"`
}

type transferRequest struct {
	FromAccountID string      `json:"fromAccountId"`
	ToAccountID   string      `json:"toAccountId"`
	Amount        json.Number `json:"amount"`
}

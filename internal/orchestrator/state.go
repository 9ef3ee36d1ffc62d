package orchestrator

import "github.com/fastreckless/frb/internal/api"

// Panel is the form currently shown. Exactly one is active at a time.
type Panel string

const (
	PanelNone            Panel = "none"
	PanelDepositWithdraw Panel = "depositWithdraw"
	PanelTransfer        Panel = "transfer"
	PanelDetails         Panel = "details"
)

// Field names a user-editable form value.
type Field int

const (
	FieldSelectedAccount Field = iota
	FieldAmount
	FieldFromAccount
	FieldToAccount
	FieldTransferAmount
	FieldDetailsAccount
)

func (f Field) String() string {
	switch f {
	case FieldSelectedAccount:
		return "selectedAccountId"
	case FieldAmount:
		return "amount"
	case FieldFromAccount:
		return "fromAccountId"
	case FieldToAccount:
		return "toAccountId"
	case FieldTransferAmount:
		return "transferAmount"
	case FieldDetailsAccount:
		return "detailsAccountId"
	default:
		return "unknown"
	}
}

// State is a snapshot of everything the client shows.
type State struct {
	Accounts    []api.Account
	ActivePanel Panel
	Loading     bool
	Error       string

	// deposit / withdraw
	SelectedAccountID string
	AmountText        string

	// transfer
	FromAccountID      string
	ToAccountID        string
	TransferAmountText string

	// details
	DetailsAccountID string
	Details          *api.AccountDetails
	DetailsLoading   bool
}

func initialState() State {
	return State{
		Accounts:    []api.Account{},
		ActivePanel: PanelNone,
	}
}

// Field returns the current value of f.
func (s State) Field(f Field) string {
	switch f {
	case FieldSelectedAccount:
		return s.SelectedAccountID
	case FieldAmount:
		return s.AmountText
	case FieldFromAccount:
		return s.FromAccountID
	case FieldToAccount:
		return s.ToAccountID
	case FieldTransferAmount:
		return s.TransferAmountText
	case FieldDetailsAccount:
		return s.DetailsAccountID
	}
	return ""
}

// CanDepositWithdraw reports whether deposit and withdraw may be submitted.
func (s State) CanDepositWithdraw() bool {
	return !s.Loading && s.SelectedAccountID != ""
}

// CanTransfer reports whether a transfer may be submitted.
func (s State) CanTransfer() bool {
	return !s.Loading && s.FromAccountID != "" && s.ToAccountID != ""
}

// CanLoadDetails reports whether details may be requested.
func (s State) CanLoadDetails() bool {
	return !s.DetailsLoading && s.DetailsAccountID != ""
}

func (s State) clone() State {
	out := s
	out.Accounts = append([]api.Account(nil), s.Accounts...)
	if out.Accounts == nil {
		out.Accounts = []api.Account{}
	}
	if s.Details != nil {
		d := *s.Details
		d.LastOutgoingTransfers = append([]api.OutgoingTransfer(nil), s.Details.LastOutgoingTransfers...)
		out.Details = &d
	}
	return out
}

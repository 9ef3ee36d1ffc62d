// Package orchestrator owns the client's view state and sequences every
// operation against the bank service.
//
// Each action clears the error, raises a loading flag, optionally validates
// input, calls the service once and settles the flag no matter how the call
// ends. Successful mutations are always followed by a full account refresh:
// balances shown are exactly what the server last reported.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastreckless/frb/internal/amount"
	"github.com/fastreckless/frb/internal/api"
)

// Client is the subset of the bank API the orchestrator drives.
type Client interface {
	ListAccounts(ctx context.Context) ([]api.Account, error)
	CreateAccount(ctx context.Context) (api.Account, error)
	Deposit(ctx context.Context, accountID string, amt decimal.Decimal) error
	Withdraw(ctx context.Context, accountID string, amt decimal.Decimal) error
	Transfer(ctx context.Context, fromAccountID, toAccountID string, amt decimal.Decimal) error
	AccountDetails(ctx context.Context, accountID string) (api.AccountDetails, error)
}

// Orchestrator is the single owner of State. Callers read snapshots and
// submit intents; they never mutate state directly.
//
// Overlapping actions are not queued. Callers are expected to keep action
// triggers disabled while Loading is set; if they do not, the last writer
// wins on the shared flags.
type Orchestrator struct {
	client Client
	log    *zap.Logger

	mu      sync.Mutex
	state   State
	changes chan struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the operation logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// New returns an orchestrator in its initial state: no panel, no accounts,
// not loading, no error.
func New(client Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:  client,
		log:     zap.NewNop(),
		state:   initialState(),
		changes: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Changes is signalled after every state mutation. Signals coalesce: a
// reader only learns that something changed since its last receive.
func (o *Orchestrator) Changes() <-chan struct{} {
	return o.changes
}

func (o *Orchestrator) update(fn func(s *State)) {
	o.mu.Lock()
	fn(&o.state)
	o.mu.Unlock()
	select {
	case o.changes <- struct{}{}:
	default:
	}
}

// SelectPanel shows p and clears any error. Nothing is fetched.
func (o *Orchestrator) SelectPanel(p Panel) {
	o.update(func(s *State) {
		s.Error = ""
		s.ActivePanel = p
	})
}

// ClosePanel hides the active panel. Closing the details panel discards the
// loaded details; other form values are kept.
func (o *Orchestrator) ClosePanel() {
	o.update(func(s *State) {
		if s.ActivePanel == PanelDetails {
			s.Details = nil
		}
		s.ActivePanel = PanelNone
	})
}

// SetField stores a user edit. Choosing a different details account drops
// details loaded for the previous one.
func (o *Orchestrator) SetField(f Field, value string) {
	o.update(func(s *State) {
		switch f {
		case FieldSelectedAccount:
			s.SelectedAccountID = value
		case FieldAmount:
			s.AmountText = value
		case FieldFromAccount:
			s.FromAccountID = value
		case FieldToAccount:
			s.ToAccountID = value
		case FieldTransferAmount:
			s.TransferAmountText = value
		case FieldDetailsAccount:
			s.DetailsAccountID = value
			if s.Details != nil && s.Details.ID != value {
				s.Details = nil
			}
		}
	})
}

// Refresh reloads the account list.
func (o *Orchestrator) Refresh(ctx context.Context) {
	o.run(ctx, "refresh", o.fetchAccounts)
}

// Create provisions a new account, then refreshes.
func (o *Orchestrator) Create(ctx context.Context) {
	o.run(ctx, "create", func(ctx context.Context) error {
		acct, err := o.client.CreateAccount(ctx)
		if err != nil {
			return err
		}
		o.log.Info("account created", zap.String("account_id", acct.ID))
		return o.fetchAccounts(ctx)
	})
}

// Deposit adds the entered amount to the selected account, then refreshes.
func (o *Orchestrator) Deposit(ctx context.Context) {
	o.run(ctx, "deposit", func(ctx context.Context) error {
		accountID, raw := o.read(FieldSelectedAccount), o.read(FieldAmount)
		amt, err := amount.Parse(raw)
		if err != nil {
			return err
		}
		if err := o.client.Deposit(ctx, accountID, amt); err != nil {
			return err
		}
		return o.fetchAccounts(ctx)
	})
}

// Withdraw removes the entered amount from the selected account, then
// refreshes. Funds are checked by the server only.
func (o *Orchestrator) Withdraw(ctx context.Context) {
	o.run(ctx, "withdraw", func(ctx context.Context) error {
		accountID, raw := o.read(FieldSelectedAccount), o.read(FieldAmount)
		amt, err := amount.Parse(raw)
		if err != nil {
			return err
		}
		if err := o.client.Withdraw(ctx, accountID, amt); err != nil {
			return err
		}
		return o.fetchAccounts(ctx)
	})
}

// Transfer moves the entered amount between the chosen accounts, then
// refreshes.
func (o *Orchestrator) Transfer(ctx context.Context) {
	o.run(ctx, "transfer", func(ctx context.Context) error {
		from, to, raw := o.read(FieldFromAccount), o.read(FieldToAccount), o.read(FieldTransferAmount)
		amt, err := amount.Parse(raw)
		if err != nil {
			return err
		}
		if err := o.client.Transfer(ctx, from, to, amt); err != nil {
			return err
		}
		return o.fetchAccounts(ctx)
	})
}

// LoadDetails fetches details for accountID. An empty id does nothing. On
// failure the previous details are cleared so stale data is never shown next
// to an error.
func (o *Orchestrator) LoadDetails(ctx context.Context, accountID string) {
	if accountID == "" {
		return
	}
	start := time.Now()
	o.update(func(s *State) {
		s.Error = ""
		s.DetailsLoading = true
	})

	var (
		details api.AccountDetails
		err     error
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
		o.update(func(s *State) {
			if err != nil {
				s.Error = err.Error()
				s.Details = nil
			} else {
				s.Details = &details
			}
			s.DetailsLoading = false
		})
		o.logOutcome("load details", start, err, zap.String("account_id", accountID))
	}()

	details, err = o.client.AccountDetails(ctx, accountID)
}

// run executes one account-list operation under the Loading flag.
func (o *Orchestrator) run(ctx context.Context, op string, fn func(context.Context) error) {
	start := time.Now()
	o.update(func(s *State) {
		s.Error = ""
		s.Loading = true
	})

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
		o.update(func(s *State) {
			if err != nil {
				s.Error = err.Error()
			}
			s.Loading = false
		})
		o.logOutcome(op, start, err)
	}()

	err = fn(ctx)
}

func (o *Orchestrator) fetchAccounts(ctx context.Context) error {
	accounts, err := o.client.ListAccounts(ctx)
	if err != nil {
		return err
	}
	o.update(func(s *State) {
		s.Accounts = append([]api.Account{}, accounts...)
		applyDefaultSelections(s, accounts)
	})
	return nil
}

// applyDefaultSelections seeds empty selection fields from the first and
// second accounts. A non-empty selection is never replaced, even when it no
// longer names an existing account.
func applyDefaultSelections(s *State, accounts []api.Account) {
	if len(accounts) > 0 {
		first := accounts[0].ID
		seed(&s.SelectedAccountID, first)
		seed(&s.FromAccountID, first)
		seed(&s.DetailsAccountID, first)
	}
	if len(accounts) > 1 {
		seed(&s.ToAccountID, accounts[1].ID)
	}
}

func seed(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func (o *Orchestrator) read(f Field) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Field(f)
}

func (o *Orchestrator) logOutcome(op string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		o.log.Warn("operation failed", append(fields, zap.Error(err))...)
		return
	}
	o.log.Info("operation done", fields...)
}

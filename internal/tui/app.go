// Package tui is the terminal presentation layer: it renders orchestrator
// snapshots and turns key presses into orchestrator intents and actions.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fastreckless/frb/internal/orchestrator"
	"github.com/fastreckless/frb/internal/prefs"
)

// Orchestrator is what the model drives. *orchestrator.Orchestrator
// satisfies it.
type Orchestrator interface {
	Snapshot() orchestrator.State
	Changes() <-chan struct{}
	SelectPanel(p orchestrator.Panel)
	ClosePanel()
	SetField(f orchestrator.Field, value string)
	Refresh(ctx context.Context)
	Create(ctx context.Context)
	Deposit(ctx context.Context)
	Withdraw(ctx context.Context)
	Transfer(ctx context.Context)
	LoadDetails(ctx context.Context, accountID string)
}

// ThemeStore persists the colour scheme.
type ThemeStore interface {
	Theme(ctx context.Context) prefs.Theme
	SetTheme(ctx context.Context, t prefs.Theme) error
}

// Options configures the model.
type Options struct {
	BaseURL      string
	TimeFormat   string
	Prefs        ThemeStore
	KeyOverrides map[string][]string
	Logger       *zap.Logger
}

// App is the Bubble Tea model.
type App struct {
	ctx        context.Context
	orch       Orchestrator
	prefs      ThemeStore
	log        *zap.Logger
	keys       keyMap
	theme      prefs.Theme
	styles     styles
	baseURL    string
	timeFormat string

	state orchestrator.State

	// focus indexes panelFields(state.ActivePanel)
	focus          int
	amount         textinput.Model
	transferAmount textinput.Model
	picker         *accountPicker
	pickerField    orchestrator.Field

	spinner   spinner.Model
	accounts  table.Model
	transfers table.Model

	// set when an action has been dispatched but its command has not
	// reported back yet
	busy        bool
	detailsBusy bool

	status string
	width  int
	height int
}

type (
	stateChangedMsg struct{}
	opDoneMsg       struct{ op string }
	detailsDoneMsg  struct{}
	statusMsg       string
	errMsg          struct{ error }
)

func New(ctx context.Context, orch Orchestrator, opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeFormat := opts.TimeFormat
	if strings.TrimSpace(timeFormat) == "" {
		timeFormat = "2006-01-02 15:04:05"
	}

	theme := prefs.ThemeDark
	if opts.Prefs != nil {
		theme = opts.Prefs.Theme(ctx)
	}

	keys, unknown := newKeyMap(opts.KeyOverrides)

	a := &App{
		ctx:            ctx,
		orch:           orch,
		prefs:          opts.Prefs,
		log:            log,
		keys:           keys,
		theme:          theme,
		baseURL:        opts.BaseURL,
		timeFormat:     timeFormat,
		amount:         newAmountInput("e.g. 10"),
		transferAmount: newAmountInput("e.g. 5"),
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		accounts:       table.New(table.WithFocused(false)),
		transfers:      table.New(table.WithFocused(false)),
	}
	if len(unknown) > 0 {
		a.status = "unknown keybinding actions ignored: " + strings.Join(unknown, ", ")
		log.Warn("unknown keybinding actions", zap.Strings("actions", unknown))
	}
	a.applyTheme()
	a.sync()
	return a
}

func newAmountInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.Width = 24
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForChange(), a.refreshCmd())
}

// waitForChange blocks until the orchestrator reports a mutation, so the view
// can show in-flight state such as the loading indicator.
func (a *App) waitForChange() tea.Cmd {
	changes := a.orch.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return stateChangedMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.rebuildTables()
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(m)
	case stateChangedMsg:
		a.sync()
		return a, a.waitForChange()
	case opDoneMsg:
		a.busy = false
		a.sync()
		return a, nil
	case detailsDoneMsg:
		a.detailsBusy = false
		a.sync()
		return a, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

// sync pulls the latest snapshot and mirrors it into the widgets.
func (a *App) sync() {
	a.state = a.orch.Snapshot()
	if a.amount.Value() != a.state.AmountText {
		a.amount.SetValue(a.state.AmountText)
	}
	if a.transferAmount.Value() != a.state.TransferAmountText {
		a.transferAmount.SetValue(a.state.TransferAmountText)
	}
	fields := panelFields(a.state.ActivePanel)
	if a.focus >= len(fields) {
		a.focus = 0
	}
	a.applyFocus()
	a.rebuildTables()
}

func (a *App) applyTheme() {
	a.styles = newStyles(a.theme)
	a.spinner.Style = a.styles.spinner
	a.accounts.SetStyles(a.styles.table)
	a.transfers.SetStyles(a.styles.table)
}

// loading reports whether account-list actions must be ignored.
func (a *App) loading() bool {
	return a.busy || a.state.Loading
}

func (a *App) detailsLoading() bool {
	return a.detailsBusy || a.state.DetailsLoading
}

// panel fields

func panelFields(p orchestrator.Panel) []orchestrator.Field {
	switch p {
	case orchestrator.PanelDepositWithdraw:
		return []orchestrator.Field{orchestrator.FieldSelectedAccount, orchestrator.FieldAmount}
	case orchestrator.PanelTransfer:
		return []orchestrator.Field{orchestrator.FieldFromAccount, orchestrator.FieldToAccount, orchestrator.FieldTransferAmount}
	case orchestrator.PanelDetails:
		return []orchestrator.Field{orchestrator.FieldDetailsAccount}
	}
	return nil
}

func isTextField(f orchestrator.Field) bool {
	return f == orchestrator.FieldAmount || f == orchestrator.FieldTransferAmount
}

func (a *App) focusedField() (orchestrator.Field, bool) {
	fields := panelFields(a.state.ActivePanel)
	if len(fields) == 0 {
		return 0, false
	}
	return fields[a.focus%len(fields)], true
}

func (a *App) moveFocus(delta int) {
	fields := panelFields(a.state.ActivePanel)
	if len(fields) == 0 {
		return
	}
	a.focus = (a.focus + delta + len(fields)) % len(fields)
	a.applyFocus()
}

func (a *App) applyFocus() {
	a.amount.Blur()
	a.transferAmount.Blur()
	f, ok := a.focusedField()
	if !ok {
		return
	}
	switch f {
	case orchestrator.FieldAmount:
		a.amount.Focus()
	case orchestrator.FieldTransferAmount:
		a.transferAmount.Focus()
	}
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/fastreckless/frb/internal/api"
	"github.com/fastreckless/frb/internal/orchestrator"
	"github.com/fastreckless/frb/internal/prefs"
)

// memBank is an in-memory bank service.
type memBank struct {
	mu        sync.Mutex
	order     []string
	balances  map[string]decimal.Decimal
	transfers map[string][]api.OutgoingTransfer
	next      int
	calls     []string

	withdrawErr error
}

func newMemBank(ids ...string) *memBank {
	b := &memBank{balances: map[string]decimal.Decimal{}, transfers: map[string][]api.OutgoingTransfer{}}
	for _, id := range ids {
		b.order = append(b.order, id)
		b.balances[id] = decimal.NewFromInt(10)
	}
	return b
}

func (b *memBank) record(call string) {
	b.calls = append(b.calls, call)
}

func (b *memBank) ListAccounts(ctx context.Context) ([]api.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("list")
	out := make([]api.Account, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, api.Account{ID: id, Balance: api.Amount(b.balances[id].StringFixed(2))})
	}
	return out, nil
}

func (b *memBank) CreateAccount(ctx context.Context) (api.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("create")
	b.next++
	id := fmt.Sprintf("acct-%d", b.next)
	b.order = append(b.order, id)
	b.balances[id] = decimal.Zero
	return api.Account{ID: id, Balance: "0"}, nil
}

func (b *memBank) Deposit(ctx context.Context, id string, amt decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("deposit " + id + " " + amt.String())
	b.balances[id] = b.balances[id].Add(amt)
	return nil
}

func (b *memBank) Withdraw(ctx context.Context, id string, amt decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("withdraw " + id + " " + amt.String())
	if b.withdrawErr != nil {
		return b.withdrawErr
	}
	b.balances[id] = b.balances[id].Sub(amt)
	return nil
}

func (b *memBank) Transfer(ctx context.Context, from, to string, amt decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("transfer " + from + " " + to + " " + amt.String())
	b.balances[from] = b.balances[from].Sub(amt)
	b.balances[to] = b.balances[to].Add(amt)
	b.transfers[from] = append([]api.OutgoingTransfer{{
		ToAccountID: to,
		Amount:      api.Amount(amt.String()),
		Timestamp:   "2026-01-02T03:04:05Z",
	}}, b.transfers[from]...)
	return nil
}

func (b *memBank) AccountDetails(ctx context.Context, id string) (api.AccountDetails, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("details " + id)
	bal, ok := b.balances[id]
	if !ok {
		return api.AccountDetails{}, &api.RemoteError{StatusCode: 404, Body: "Account not found: " + id}
	}
	return api.AccountDetails{
		ID:                    id,
		Balance:               api.Amount(bal.StringFixed(2)),
		LastOutgoingTransfers: append([]api.OutgoingTransfer{}, b.transfers[id]...),
	}, nil
}

func (b *memBank) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

type memThemes struct {
	theme prefs.Theme
	saved int
}

func (m *memThemes) Theme(ctx context.Context) prefs.Theme {
	if m.theme == "" {
		return prefs.ThemeDark
	}
	return m.theme
}

func (m *memThemes) SetTheme(ctx context.Context, t prefs.Theme) error {
	m.theme = t
	m.saved++
	return nil
}

// flow helpers

func flowKey(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func flowSpecial(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func flowApplyMsg(t *testing.T, a *App, msg tea.Msg) *App {
	t.Helper()
	next, cmd := a.Update(msg)
	got, ok := next.(*App)
	if !ok {
		t.Fatalf("Update returned %T, want *App", next)
	}
	return flowDrainCmd(t, got, cmd)
}

func flowPress(t *testing.T, a *App, key string) *App {
	t.Helper()
	return flowApplyMsg(t, a, flowKey(key))
}

func flowPressSpecial(t *testing.T, a *App, kt tea.KeyType) *App {
	t.Helper()
	return flowApplyMsg(t, a, flowSpecial(kt))
}

func flowType(t *testing.T, a *App, input string) *App {
	t.Helper()
	for _, r := range input {
		a = flowPress(t, a, string(r))
	}
	return a
}

func flowDrainCmd(t *testing.T, a *App, cmd tea.Cmd) *App {
	t.Helper()
	for i := 0; cmd != nil && i < 32; i++ {
		msg := cmd()
		if msg == nil {
			return a
		}
		next, nextCmd := a.Update(msg)
		got, ok := next.(*App)
		if !ok {
			t.Fatalf("command update returned %T, want *App", next)
		}
		a = got
		cmd = nextCmd
	}
	if cmd != nil {
		t.Fatal("command chain exceeded max depth")
	}
	return a
}

func newFlowApp(t *testing.T, bank *memBank, opts Options) *App {
	t.Helper()
	orch := orchestrator.New(bank)
	if opts.BaseURL == "" {
		opts.BaseURL = "http://bank.test"
	}
	a := New(context.Background(), orch, opts)
	a = flowApplyMsg(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return flowDrainCmd(t, a, a.refreshCmd())
}

func TestFlowInitialRefreshRendersAccounts(t *testing.T) {
	a := newFlowApp(t, newMemBank("A", "B"), Options{})

	view := a.View()
	for _, want := range []string{"Fast & Reckless Bank", "http://bank.test", "Accounts", "A", "B", "10.00"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if a.loading() {
		t.Fatal("still loading after refresh completed")
	}
}

func TestFlowEmptyAccountsHint(t *testing.T) {
	a := newFlowApp(t, newMemBank(), Options{})
	if !strings.Contains(a.View(), "No accounts yet. Press c to create one.") {
		t.Fatalf("missing empty hint:\n%s", a.View())
	}
}

func TestFlowCreateAccount(t *testing.T) {
	bank := newMemBank("A")
	a := newFlowApp(t, bank, Options{})

	a = flowPress(t, a, "c")

	if got := len(a.state.Accounts); got != 2 {
		t.Fatalf("accounts = %d, want 2", got)
	}
	if !strings.Contains(a.View(), "acct-1") {
		t.Fatalf("new account not rendered:\n%s", a.View())
	}
}

func TestFlowActionKeysInertWhileBusy(t *testing.T) {
	bank := newMemBank("A")
	a := newFlowApp(t, bank, Options{})

	next, pending := a.Update(flowKey("c"))
	a = next.(*App)
	if pending == nil {
		t.Fatal("create did not dispatch")
	}
	if !a.loading() {
		t.Fatal("expected loading after dispatch")
	}

	if _, cmd := a.Update(flowKey("r")); cmd != nil {
		t.Fatal("refresh dispatched while busy")
	}
	a = flowPress(t, a, "d")
	if a.state.ActivePanel != orchestrator.PanelNone {
		t.Fatalf("panel switched while busy: %s", a.state.ActivePanel)
	}

	a = flowDrainCmd(t, a, pending)
	if a.loading() {
		t.Fatal("still loading after create finished")
	}
	if got := bank.callLog(); strings.Join(got, ",") != "list,create,list" {
		t.Fatalf("calls = %v", got)
	}
}

func TestFlowDeposit(t *testing.T) {
	bank := newMemBank("A", "B")
	a := newFlowApp(t, bank, Options{})

	a = flowPress(t, a, "d")
	if a.state.ActivePanel != orchestrator.PanelDepositWithdraw {
		t.Fatalf("panel = %s", a.state.ActivePanel)
	}
	a = flowPressSpecial(t, a, tea.KeyTab)
	a = flowType(t, a, "2.5")
	if a.state.AmountText != "2.5" {
		t.Fatalf("amount = %q", a.state.AmountText)
	}
	a = flowPressSpecial(t, a, tea.KeyCtrlD)

	log := bank.callLog()
	if log[len(log)-2] != "deposit A 2.5" {
		t.Fatalf("calls = %v", log)
	}
	if !strings.Contains(a.View(), "12.50") {
		t.Fatalf("balance not refreshed:\n%s", a.View())
	}
	if a.state.Error != "" {
		t.Fatalf("unexpected error %q", a.state.Error)
	}
}

func TestFlowInvalidAmountShowsValidationError(t *testing.T) {
	bank := newMemBank("A")
	a := newFlowApp(t, bank, Options{})

	a = flowPress(t, a, "d")
	a = flowPressSpecial(t, a, tea.KeyTab)
	a = flowType(t, a, "abc")
	a = flowPressSpecial(t, a, tea.KeyEnter)

	if !strings.Contains(a.View(), "Error: Amount must be a positive number") {
		t.Fatalf("missing validation error:\n%s", a.View())
	}
	if got := bank.callLog(); len(got) != 1 {
		t.Fatalf("network called on invalid input: %v", got)
	}
}

func TestFlowRemoteErrorThenPanelSwitchClearsIt(t *testing.T) {
	bank := newMemBank("A")
	bank.withdrawErr = &api.RemoteError{StatusCode: 409, Body: "Insufficient funds"}
	a := newFlowApp(t, bank, Options{})

	a = flowPress(t, a, "d")
	a = flowPressSpecial(t, a, tea.KeyTab)
	a = flowType(t, a, "500")
	a = flowPressSpecial(t, a, tea.KeyCtrlW)

	if !strings.Contains(a.View(), "Error: Insufficient funds") {
		t.Fatalf("missing remote error:\n%s", a.View())
	}
	if !strings.Contains(a.View(), "10.00") {
		t.Fatalf("balance changed after failure:\n%s", a.View())
	}

	a = flowPressSpecial(t, a, tea.KeyShiftTab)
	a = flowPress(t, a, "t")
	if a.state.Error != "" {
		t.Fatalf("error not cleared by panel switch: %q", a.state.Error)
	}
}

func TestFlowTransferUsingPicker(t *testing.T) {
	bank := newMemBank("A", "B", "C")
	a := newFlowApp(t, bank, Options{})

	a = flowPress(t, a, "t")
	if a.state.FromAccountID != "A" || a.state.ToAccountID != "B" {
		t.Fatalf("default selections = %q -> %q", a.state.FromAccountID, a.state.ToAccountID)
	}

	a = flowPressSpecial(t, a, tea.KeyTab)
	a = flowPressSpecial(t, a, tea.KeyEnter)
	if a.picker == nil {
		t.Fatal("picker not opened")
	}
	a = flowType(t, a, "c")
	a = flowPressSpecial(t, a, tea.KeyEnter)
	if a.picker != nil {
		t.Fatal("picker still open")
	}
	if a.state.ToAccountID != "C" {
		t.Fatalf("to = %q, want C", a.state.ToAccountID)
	}

	a = flowPressSpecial(t, a, tea.KeyTab)
	a = flowType(t, a, "5")
	a = flowPressSpecial(t, a, tea.KeyEnter)

	log := bank.callLog()
	if log[len(log)-2] != "transfer A C 5" {
		t.Fatalf("calls = %v", log)
	}
}

func TestFlowPickerEscKeepsSelection(t *testing.T) {
	a := newFlowApp(t, newMemBank("A", "B"), Options{})
	a = flowPress(t, a, "d")
	a = flowPressSpecial(t, a, tea.KeyEnter)
	a = flowPressSpecial(t, a, tea.KeyDown)
	a = flowPressSpecial(t, a, tea.KeyEsc)

	if a.picker != nil {
		t.Fatal("picker still open")
	}
	if a.state.SelectedAccountID != "A" {
		t.Fatalf("selection changed to %q", a.state.SelectedAccountID)
	}
	if a.state.ActivePanel != orchestrator.PanelDepositWithdraw {
		t.Fatal("esc in picker closed the panel")
	}
}

func TestFlowDetails(t *testing.T) {
	bank := newMemBank("A", "B")
	a := newFlowApp(t, bank, Options{})

	a = flowPress(t, a, "i")
	a = flowPressSpecial(t, a, tea.KeyCtrlS)
	if a.state.Details == nil {
		t.Fatal("details not loaded")
	}
	if !strings.Contains(a.View(), "No outgoing transfers yet.") {
		t.Fatalf("missing empty transfers hint:\n%s", a.View())
	}

	a = flowPressSpecial(t, a, tea.KeyEsc)
	if a.state.ActivePanel != orchestrator.PanelNone || a.state.Details != nil {
		t.Fatal("closing details kept panel or data")
	}
}

func TestFlowDetailsShowsTransfers(t *testing.T) {
	bank := newMemBank("A", "B")
	a := newFlowApp(t, bank, Options{TimeFormat: "2006"})

	a = flowPress(t, a, "t")
	a = flowPressSpecial(t, a, tea.KeyTab)
	a = flowPressSpecial(t, a, tea.KeyTab)
	a = flowType(t, a, "3")
	a = flowPressSpecial(t, a, tea.KeyCtrlS)

	a = flowPressSpecial(t, a, tea.KeyShiftTab)
	a = flowPress(t, a, "i")
	a = flowPressSpecial(t, a, tea.KeyCtrlS)

	view := a.View()
	for _, want := range []string{"Last outgoing transfers", "Balance: 7.00", "2026"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFlowSubmitInertWithoutSelection(t *testing.T) {
	a := newFlowApp(t, newMemBank(), Options{})
	a = flowPress(t, a, "d")
	if _, cmd := a.Update(flowSpecial(tea.KeyCtrlD)); cmd != nil {
		t.Fatal("deposit dispatched with no account selected")
	}
	a = flowPress(t, a, "i")
	if _, cmd := a.Update(flowSpecial(tea.KeyCtrlS)); cmd != nil {
		t.Fatal("details dispatched with no account selected")
	}
}

func TestFlowThemeTogglePersists(t *testing.T) {
	store := &memThemes{}
	a := newFlowApp(t, newMemBank("A"), Options{Prefs: store})
	if a.theme != prefs.ThemeDark {
		t.Fatalf("initial theme = %s", a.theme)
	}

	a = flowPress(t, a, "T")
	if a.theme != prefs.ThemeLight || store.theme != prefs.ThemeLight || store.saved != 1 {
		t.Fatalf("theme = %s, stored = %s (%d saves)", a.theme, store.theme, store.saved)
	}

	b := newFlowApp(t, newMemBank("A"), Options{Prefs: store})
	if b.theme != prefs.ThemeLight {
		t.Fatalf("restarted theme = %s, want light", b.theme)
	}
}

func TestFlowKeyOverrides(t *testing.T) {
	bank := newMemBank("A")
	a := newFlowApp(t, bank, Options{KeyOverrides: map[string][]string{
		"refresh": {"f5"},
		"bogus":   {"x"},
	}})
	if !strings.Contains(a.status, "bogus") {
		t.Fatalf("unknown action not reported: %q", a.status)
	}

	a = flowPress(t, a, "r")
	a = flowPressSpecial(t, a, tea.KeyF5)

	if got := bank.callLog(); strings.Join(got, ",") != "list,list" {
		t.Fatalf("calls = %v", got)
	}
}

func TestFlowQuit(t *testing.T) {
	a := newFlowApp(t, newMemBank(), Options{})
	_, cmd := a.Update(flowKey("q"))
	if cmd == nil {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not produce QuitMsg")
	}
}

func TestFlowTypingQInAmountDoesNotQuit(t *testing.T) {
	a := newFlowApp(t, newMemBank("A"), Options{})
	a = flowPress(t, a, "d")
	a = flowPressSpecial(t, a, tea.KeyTab)
	_, cmd := a.Update(flowKey("q"))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatal("q quit while typing an amount")
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := formatTimestamp("not a time", "2006"); got != "not a time" {
		t.Fatalf("got %q", got)
	}
	if got := formatTimestamp("2026-06-15T12:00:00.123456Z", "2006"); got != "2026" {
		t.Fatalf("got %q", got)
	}
}

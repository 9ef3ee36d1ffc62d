package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastreckless/frb/internal/orchestrator"
)

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if a.picker != nil {
		return a.handlePickerKey(msg)
	}

	if f, ok := a.focusedField(); ok && isTextField(f) {
		if cmd, handled := a.handlePanelKey(msg); handled {
			return cmd
		}
		return a.updateInput(f, msg)
	}

	if cmd, handled := a.handleToolbarKey(msg); handled {
		return cmd
	}
	cmd, _ := a.handlePanelKey(msg)
	return cmd
}

func (a *App) handleToolbarKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, a.keys.Theme):
		return a.toggleTheme(), true
	case key.Matches(msg, a.keys.Create):
		if a.loading() {
			return nil, true
		}
		return a.dispatch("create", a.orch.Create), true
	case key.Matches(msg, a.keys.Refresh):
		if a.loading() {
			return nil, true
		}
		return a.refreshCmd(), true
	case key.Matches(msg, a.keys.DepositWd):
		a.selectPanel(orchestrator.PanelDepositWithdraw)
		return nil, true
	case key.Matches(msg, a.keys.Transfer):
		a.selectPanel(orchestrator.PanelTransfer)
		return nil, true
	case key.Matches(msg, a.keys.Details):
		a.selectPanel(orchestrator.PanelDetails)
		return nil, true
	}
	return nil, false
}

func (a *App) handlePanelKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	p := a.state.ActivePanel
	if p == orchestrator.PanelNone {
		return nil, false
	}
	f, _ := a.focusedField()

	switch {
	case key.Matches(msg, a.keys.Close):
		if a.loading() || (p == orchestrator.PanelDetails && a.detailsLoading()) {
			return nil, true
		}
		a.orch.ClosePanel()
		a.focus = 0
		a.sync()
		return nil, true
	case key.Matches(msg, a.keys.NextField):
		a.moveFocus(1)
		return nil, true
	case key.Matches(msg, a.keys.PrevField):
		a.moveFocus(-1)
		return nil, true
	case key.Matches(msg, a.keys.Pick):
		if isTextField(f) {
			return a.submit(), true
		}
		a.openPicker(f)
		return nil, true
	case key.Matches(msg, a.keys.Deposit):
		if p != orchestrator.PanelDepositWithdraw {
			return nil, false
		}
		return a.depositCmd(), true
	case key.Matches(msg, a.keys.Withdraw):
		if p != orchestrator.PanelDepositWithdraw {
			return nil, false
		}
		return a.withdrawCmd(), true
	case key.Matches(msg, a.keys.Submit):
		return a.submit(), true
	}
	return nil, false
}

// submit runs the primary action of the active panel.
func (a *App) submit() tea.Cmd {
	switch a.state.ActivePanel {
	case orchestrator.PanelDepositWithdraw:
		return a.depositCmd()
	case orchestrator.PanelTransfer:
		if a.loading() || !a.state.CanTransfer() {
			return nil
		}
		return a.dispatch("transfer", a.orch.Transfer)
	case orchestrator.PanelDetails:
		return a.loadDetailsCmd()
	}
	return nil
}

func (a *App) selectPanel(p orchestrator.Panel) {
	if a.loading() {
		return
	}
	a.orch.SelectPanel(p)
	a.focus = 0
	a.status = ""
	a.sync()
}

func (a *App) updateInput(f orchestrator.Field, msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch f {
	case orchestrator.FieldAmount:
		a.amount, cmd = a.amount.Update(msg)
		a.orch.SetField(f, a.amount.Value())
	case orchestrator.FieldTransferAmount:
		a.transferAmount, cmd = a.transferAmount.Update(msg)
		a.orch.SetField(f, a.transferAmount.Value())
	}
	a.sync()
	return cmd
}

// picker

func (a *App) openPicker(f orchestrator.Field) {
	if len(a.state.Accounts) == 0 {
		a.status = "No accounts to choose from."
		return
	}
	ids := make([]string, 0, len(a.state.Accounts))
	for _, acct := range a.state.Accounts {
		ids = append(ids, acct.ID)
	}
	a.picker = newAccountPicker(fieldLabel(f), ids, a.state.Field(f))
	a.pickerField = f
}

func (a *App) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Close):
		a.picker = nil
	case key.Matches(msg, a.keys.Pick):
		if id, ok := a.picker.current(); ok {
			a.orch.SetField(a.pickerField, id)
		}
		a.picker = nil
		a.sync()
	case key.Matches(msg, a.keys.PickerUp):
		a.picker.up()
	case key.Matches(msg, a.keys.PickerDown):
		a.picker.down()
	case msg.Type == tea.KeyBackspace:
		a.picker.backspace()
	case msg.Type == tea.KeyRunes:
		a.picker.typeRunes(msg.Runes)
	}
	return nil
}

// commands

// dispatch runs fn off the update loop and reports back with opDoneMsg.
func (a *App) dispatch(op string, fn func(context.Context)) tea.Cmd {
	a.busy = true
	ctx := a.ctx
	return func() tea.Msg {
		fn(ctx)
		return opDoneMsg{op: op}
	}
}

func (a *App) refreshCmd() tea.Cmd {
	return a.dispatch("refresh", a.orch.Refresh)
}

func (a *App) depositCmd() tea.Cmd {
	if a.loading() || !a.state.CanDepositWithdraw() {
		return nil
	}
	return a.dispatch("deposit", a.orch.Deposit)
}

func (a *App) withdrawCmd() tea.Cmd {
	if a.loading() || !a.state.CanDepositWithdraw() {
		return nil
	}
	return a.dispatch("withdraw", a.orch.Withdraw)
}

func (a *App) loadDetailsCmd() tea.Cmd {
	if a.detailsLoading() || !a.state.CanLoadDetails() {
		return nil
	}
	a.detailsBusy = true
	ctx, id := a.ctx, a.state.DetailsAccountID
	return func() tea.Msg {
		a.orch.LoadDetails(ctx, id)
		return detailsDoneMsg{}
	}
}

func (a *App) toggleTheme() tea.Cmd {
	a.theme = a.theme.Toggle()
	a.applyTheme()
	a.rebuildTables()
	if a.prefs == nil {
		return nil
	}
	ctx, theme, store := a.ctx, a.theme, a.prefs
	return func() tea.Msg {
		if err := store.SetTheme(ctx, theme); err != nil {
			return errMsg{fmt.Errorf("save theme: %w", err)}
		}
		return nil
	}
}

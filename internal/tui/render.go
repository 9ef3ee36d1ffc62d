package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/fastreckless/frb/internal/orchestrator"
)

const (
	defaultWidth   = 100
	balanceWidth   = 24
	timeWidth      = 20
	minIDWidth     = 12
	pickerMaxItems = 10
)

func (a *App) View() string {
	sections := []string{a.renderHeader(), a.renderToolbar()}
	if a.state.Error != "" {
		sections = append(sections, a.styles.errorBox.Render("Error: "+a.state.Error))
	}
	if panel := a.renderPanel(); panel != "" {
		sections = append(sections, panel)
	}
	if a.picker != nil {
		sections = append(sections, a.renderPicker())
	}
	sections = append(sections, a.renderAccounts())
	if a.status != "" {
		sections = append(sections, a.styles.muted.Render(a.status))
	}
	return a.styles.app.Render(strings.Join(sections, "\n\n"))
}

func (a *App) renderHeader() string {
	title := a.styles.title.Render("Fast & Reckless Bank")
	sub := a.styles.subtitle.Render(fmt.Sprintf("Backend %s • %s theme", a.baseURL, a.theme))
	return title + "\n" + sub
}

func (a *App) renderToolbar() string {
	panelFor := map[string]orchestrator.Panel{
		actionDepositWd: orchestrator.PanelDepositWithdraw,
		actionTransfer:  orchestrator.PanelTransfer,
		actionDetails:   orchestrator.PanelDetails,
	}
	actions := []string{actionCreate, actionRefresh, actionDepositWd, actionTransfer, actionDetails, actionTheme, actionQuit}
	parts := make([]string, 0, len(actions)+1)
	for i, b := range a.keys.toolbar() {
		action := actions[i]
		label := a.renderBinding(b)
		switch {
		case panelFor[action] != "" && panelFor[action] == a.state.ActivePanel:
			label = a.styles.active.Render(bindingText(b))
		case action != actionTheme && action != actionQuit && a.loading():
			label = a.styles.disabled.Render(bindingText(b))
		}
		parts = append(parts, label)
	}
	if a.loading() {
		parts = append(parts, a.spinner.View()+" Loading…")
	}
	return strings.Join(parts, "  ")
}

func bindingText(b key.Binding) string {
	return "[" + b.Help().Key + "] " + b.Help().Desc
}

func (a *App) renderBinding(b key.Binding) string {
	return a.styles.key.Render("["+b.Help().Key+"]") + " " + a.styles.help.Render(b.Help().Desc)
}

func (a *App) renderHint(b key.Binding, enabled bool) string {
	if !enabled {
		return a.styles.disabled.Render(bindingText(b))
	}
	return a.renderBinding(b)
}

func (a *App) renderPanel() string {
	var body string
	switch a.state.ActivePanel {
	case orchestrator.PanelDepositWithdraw:
		body = a.renderDepositWithdraw()
	case orchestrator.PanelTransfer:
		body = a.renderTransfer()
	case orchestrator.PanelDetails:
		body = a.renderDetails()
	default:
		return ""
	}
	return a.styles.panel.Render(body)
}

func (a *App) renderDepositWithdraw() string {
	can := !a.loading() && a.state.CanDepositWithdraw()
	lines := []string{
		a.styles.heading.Render("Deposit / Withdraw"),
		a.renderField(orchestrator.FieldSelectedAccount),
		a.renderField(orchestrator.FieldAmount),
		"",
		strings.Join([]string{
			a.renderHint(a.keys.Deposit, can),
			a.renderHint(a.keys.Withdraw, can),
			a.renderHint(a.keys.Close, !a.loading()),
		}, "  "),
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderTransfer() string {
	can := !a.loading() && a.state.CanTransfer()
	lines := []string{
		a.styles.heading.Render("Transfer"),
		a.renderField(orchestrator.FieldFromAccount),
		a.renderField(orchestrator.FieldToAccount),
		a.renderField(orchestrator.FieldTransferAmount),
		"",
		strings.Join([]string{
			a.renderHint(a.keys.Submit, can),
			a.renderHint(a.keys.Close, !a.loading()),
		}, "  "),
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderDetails() string {
	can := !a.detailsLoading() && a.state.CanLoadDetails()
	load := a.renderHint(a.keys.Submit, can)
	if a.detailsLoading() {
		load = a.spinner.View() + " Loading…"
	}
	lines := []string{
		a.styles.heading.Render("Account details"),
		a.renderField(orchestrator.FieldDetailsAccount),
		"",
		strings.Join([]string{load, a.renderHint(a.keys.Close, !a.detailsLoading() && !a.loading())}, "  "),
	}

	if d := a.state.Details; d != nil {
		lines = append(lines,
			"",
			"ID: "+d.ID,
			"Balance: "+d.Balance.String(),
			"",
			a.styles.heading.Render("Last outgoing transfers"),
		)
		if len(d.LastOutgoingTransfers) == 0 {
			lines = append(lines, a.styles.muted.Render("No outgoing transfers yet."))
		} else {
			lines = append(lines, a.transfers.View())
		}
	}
	return strings.Join(lines, "\n")
}

func fieldLabel(f orchestrator.Field) string {
	switch f {
	case orchestrator.FieldSelectedAccount, orchestrator.FieldDetailsAccount:
		return "Account"
	case orchestrator.FieldFromAccount:
		return "From"
	case orchestrator.FieldToAccount:
		return "To"
	case orchestrator.FieldAmount, orchestrator.FieldTransferAmount:
		return "Amount"
	}
	return f.String()
}

func (a *App) renderField(f orchestrator.Field) string {
	focused := false
	if cur, ok := a.focusedField(); ok && cur == f {
		focused = true
	}

	var value string
	switch f {
	case orchestrator.FieldAmount:
		value = a.amount.View()
	case orchestrator.FieldTransferAmount:
		value = a.transferAmount.View()
	default:
		id := a.state.Field(f)
		if id == "" {
			value = a.styles.muted.Render("(select)")
		} else {
			value = ansi.Truncate(id, a.idColumnWidth(), "…")
		}
		if focused {
			value += "  " + a.styles.help.Render("["+a.keys.Pick.Help().Key+"] choose")
		}
	}

	label := fmt.Sprintf("%-8s", fieldLabel(f)+":")
	if focused {
		return a.styles.focused.Render("> "+label) + " " + value
	}
	return a.styles.field.Render("  "+label) + " " + value
}

func (a *App) renderPicker() string {
	p := a.picker
	lines := []string{
		a.styles.heading.Render("Choose " + strings.ToLower(p.title)),
		"> " + p.query,
	}
	if len(p.filtered) == 0 {
		lines = append(lines, a.styles.muted.Render("no matching accounts"))
	}
	start := 0
	if p.cursor >= pickerMaxItems {
		start = p.cursor - pickerMaxItems + 1
	}
	end := min(len(p.filtered), start+pickerMaxItems)
	for i := start; i < end; i++ {
		id := ansi.Truncate(p.filtered[i], a.idColumnWidth(), "…")
		if i == p.cursor {
			lines = append(lines, a.styles.selection.Render("▸ "+id))
		} else {
			lines = append(lines, "  "+id)
		}
	}
	return a.styles.panel.Render(strings.Join(lines, "\n"))
}

func (a *App) renderAccounts() string {
	heading := a.styles.heading.Render("Accounts")
	if len(a.state.Accounts) == 0 {
		hint := fmt.Sprintf("No accounts yet. Press %s to create one.", a.keys.Create.Help().Key)
		return heading + "\n" + a.styles.muted.Render(hint)
	}
	return heading + "\n" + a.accounts.View()
}

func (a *App) idColumnWidth() int {
	w := a.width
	if w <= 0 {
		w = defaultWidth
	}
	return max(minIDWidth, w-balanceWidth-timeWidth-8)
}

func (a *App) rebuildTables() {
	idW := a.idColumnWidth()

	rows := make([]table.Row, 0, len(a.state.Accounts))
	for _, acct := range a.state.Accounts {
		rows = append(rows, table.Row{ansi.Truncate(acct.ID, idW, "…"), acct.Balance.String()})
	}
	a.accounts.SetColumns([]table.Column{
		{Title: "ID", Width: idW},
		{Title: "Balance", Width: balanceWidth},
	})
	a.accounts.SetRows(rows)
	a.accounts.SetHeight(len(rows) + 2)

	var trows []table.Row
	if d := a.state.Details; d != nil {
		trows = make([]table.Row, 0, len(d.LastOutgoingTransfers))
		for _, t := range d.LastOutgoingTransfers {
			trows = append(trows, table.Row{
				formatTimestamp(t.Timestamp, a.timeFormat),
				ansi.Truncate(t.ToAccountID, idW, "…"),
				t.Amount.String(),
			})
		}
	}
	a.transfers.SetColumns([]table.Column{
		{Title: "Time", Width: timeWidth},
		{Title: "To", Width: idW},
		{Title: "Amount", Width: balanceWidth},
	})
	a.transfers.SetRows(trows)
	a.transfers.SetHeight(len(trows) + 2)
}

// formatTimestamp renders an RFC 3339 instant in local time. Anything else is
// shown as received.
func formatTimestamp(raw, layout string) string {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return ts.Local().Format(layout)
}

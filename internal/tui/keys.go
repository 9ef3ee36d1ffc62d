package tui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/bubbles/key"
)

// Action names accepted in keybindings.toml.
const (
	actionQuit       = "quit"
	actionCreate     = "create"
	actionRefresh    = "refresh"
	actionDepositWd  = "deposit-withdraw"
	actionTransfer   = "transfer"
	actionDetails    = "details"
	actionTheme      = "toggle-theme"
	actionNextField  = "next-field"
	actionPrevField  = "prev-field"
	actionPick       = "pick-account"
	actionClose      = "close"
	actionDeposit    = "deposit"
	actionWithdraw   = "withdraw"
	actionSubmit     = "submit"
	actionPickerUp   = "picker-up"
	actionPickerDown = "picker-down"
)

type binding struct {
	action string
	keys   []string
	help   string
}

func defaultBindings() []binding {
	return []binding{
		{actionQuit, []string{"q", "ctrl+c"}, "quit"},
		{actionCreate, []string{"c"}, "create account"},
		{actionRefresh, []string{"r"}, "refresh"},
		{actionDepositWd, []string{"d"}, "deposit / withdraw"},
		{actionTransfer, []string{"t"}, "transfer"},
		{actionDetails, []string{"i"}, "account details"},
		{actionTheme, []string{"T"}, "theme"},
		{actionNextField, []string{"tab"}, "next field"},
		{actionPrevField, []string{"shift+tab"}, "prev field"},
		{actionPick, []string{"enter"}, "choose account"},
		{actionClose, []string{"esc"}, "close"},
		{actionDeposit, []string{"ctrl+d"}, "deposit"},
		{actionWithdraw, []string{"ctrl+w"}, "withdraw"},
		{actionSubmit, []string{"ctrl+s"}, "submit"},
		{actionPickerUp, []string{"up", "ctrl+p"}, "up"},
		{actionPickerDown, []string{"down", "ctrl+n"}, "down"},
	}
}

// keyMap holds every binding the model reacts to.
type keyMap struct {
	Quit       key.Binding
	Create     key.Binding
	Refresh    key.Binding
	DepositWd  key.Binding
	Transfer   key.Binding
	Details    key.Binding
	Theme      key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Pick       key.Binding
	Close      key.Binding
	Deposit    key.Binding
	Withdraw   key.Binding
	Submit     key.Binding
	PickerUp   key.Binding
	PickerDown key.Binding
}

func (k *keyMap) slot(action string) *key.Binding {
	switch action {
	case actionQuit:
		return &k.Quit
	case actionCreate:
		return &k.Create
	case actionRefresh:
		return &k.Refresh
	case actionDepositWd:
		return &k.DepositWd
	case actionTransfer:
		return &k.Transfer
	case actionDetails:
		return &k.Details
	case actionTheme:
		return &k.Theme
	case actionNextField:
		return &k.NextField
	case actionPrevField:
		return &k.PrevField
	case actionPick:
		return &k.Pick
	case actionClose:
		return &k.Close
	case actionDeposit:
		return &k.Deposit
	case actionWithdraw:
		return &k.Withdraw
	case actionSubmit:
		return &k.Submit
	case actionPickerUp:
		return &k.PickerUp
	case actionPickerDown:
		return &k.PickerDown
	}
	return nil
}

// newKeyMap builds the key map, replacing the keys of any action named in
// overrides. Unknown actions are returned so the caller can report them.
func newKeyMap(overrides map[string][]string) (keyMap, []string) {
	var km keyMap
	for _, b := range defaultBindings() {
		keys := b.keys
		if custom := cleanKeys(overrides[b.action]); len(custom) > 0 {
			keys = custom
		}
		*km.slot(b.action) = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), b.help),
		)
	}
	var unknown []string
	for action := range overrides {
		if km.slot(action) == nil {
			unknown = append(unknown, action)
		}
	}
	sort.Strings(unknown)
	return km, unknown
}

func cleanKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// toolbar is the binding list shown in the header.
func (k keyMap) toolbar() []key.Binding {
	return []key.Binding{k.Create, k.Refresh, k.DepositWd, k.Transfer, k.Details, k.Theme, k.Quit}
}

type keybindingsFile struct {
	Bindings map[string][]string `toml:"bindings"`
}

// LoadKeybindings reads action overrides from a TOML file of the form
//
//	[bindings]
//	refresh = ["r", "f5"]
//
// A missing file yields no overrides.
func LoadKeybindings(path string) (map[string][]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read keybindings: %w", err)
	}
	return parseKeybindings(data)
}

func parseKeybindings(data []byte) (map[string][]string, error) {
	var f keybindingsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse keybindings.toml: %w", err)
	}
	return f.Bindings, nil
}

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Focus    key.Binding
	Submit   key.Binding
	Edit     key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Status   key.Binding
	Priority key.Binding
	Cycle    key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Edit:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "edit")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "done")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Status:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "status filter")),
		Priority: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "priority filter")),
		Cycle:    key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "priority")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Edit, k.Delete, k.Status, k.Priority, k.Focus, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Submit, k.Cycle, k.Cancel, k.Status, k.Priority, k.Quit}
}

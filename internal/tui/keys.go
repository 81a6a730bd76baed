package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Copy        key.Binding
	Share       key.Binding
	Shuffle     key.Binding
	Today       key.Binding
	Search      key.Binding
	Translation key.Binding
	Theme       key.Binding
	Accent      key.Binding
	Bigger      key.Binding
	Smaller     key.Binding
	RefFirst    key.Binding
	Reset       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Copy:        key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy")),
		Share:       key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "share")),
		Shuffle:     key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s", "shuffle")),
		Today:       key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "today's verse")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Translation: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "translation")),
		Theme:       key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Accent:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accent")),
		Bigger:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "larger")),
		Smaller:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "smaller")),
		RefFirst:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reference first")),
		Reset:       key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset settings")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Shuffle, k.Search, k.Translation, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Copy, k.Share, k.Shuffle, k.Today, k.Search},
		{k.Translation, k.Theme, k.Accent, k.Bigger, k.Smaller},
		{k.RefFirst, k.Reset, k.Help, k.Quit},
	}
}

// searchKeyMap is active while the search box has focus.
type searchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Pick   key.Binding
	Cancel key.Binding
}

func defaultSearchKeyMap() searchKeyMap {
	return searchKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		Pick:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show verse")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

func (k searchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Pick, k.Cancel}
}

func (k searchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

package tableview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	FirstPage  key.Binding
	LastPage   key.Binding
	Search     key.Binding
	Sort       key.Binding
	Toggle     key.Binding
	ToggleAll  key.Binding
	Menu       key.Binding
	Copy       key.Binding
	Theme      key.Binding
	Help       key.Binding
	Back       key.Binding
	Quit       key.Binding
	ActionView key.Binding
	ActionEdit key.Binding
	ActionDel  key.Binding
	Confirm    key.Binding
	FullScreen key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k", "ctrl+p"), key.WithHelp("↑/k", "previous row")),
		Down:       key.NewBinding(key.WithKeys("down", "j", "ctrl+n"), key.WithHelp("↓/j", "next row")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous column")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		NextPage:   key.NewBinding(key.WithKeys("n", "pgdown", "]"), key.WithHelp("n/pgdn", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "pgup", "["), key.WithHelp("p/pgup", "previous page")),
		FirstPage:  key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g/home", "first page")),
		LastPage:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G/end", "last page")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search all fields")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column (asc, desc, off)")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "select row")),
		ToggleAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Menu:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "row actions")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell or selection")),
		Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle color theme")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle this help")),
		Back:       key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
		ActionView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		ActionEdit: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		ActionDel:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Confirm:    key.NewBinding(key.WithKeys("enter")),
		FullScreen: key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "toggle full screen")),
	}
}

func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right,
		k.NextPage, k.PrevPage, k.FirstPage, k.LastPage,
		k.Search, k.Sort, k.Toggle, k.ToggleAll,
		k.Menu, k.Copy, k.Theme, k.FullScreen, k.Help, k.Quit,
	}
}

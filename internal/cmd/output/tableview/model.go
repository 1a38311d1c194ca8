package tableview

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/render"
	"github.com/kong/dashctl/internal/theme"
	"github.com/muesli/reflow/wordwrap"
)

type viewMode int

const (
	modeTable viewMode = iota
	modeSearch
	modeMenu
	modeDetail
	modeEdit
)

// reservedHeight is the vertical space kept free for the status area and the
// table frame.
const reservedHeight = 10

var writeClipboard = clipboard.WriteAll

// Model is the interactive table. It drives a datatable.Table and renders the
// current page with bubbles' table component.
type Model struct {
	cfg          config
	table        *datatable.Table
	keys         keyMap
	grid         table.Model
	palette      theme.Palette
	tableStyle   lipgloss.Style
	statusStyle  lipgloss.Style
	mode         viewMode
	focus        int
	menuCursor   int
	search       textinput.Model
	editor       textinput.Model
	editRecord   datatable.Record
	editColumn   datatable.Column
	detail       viewport.Model
	detailTitle  string
	showHelp     bool
	useAltScreen bool
	status       string
	pending      tea.Cmd
	windowWidth  int
	windowHeight int
}

// New builds a Model over records. The "view" row action is always
// available; "edit" and "delete" require their handlers.
func New(records []datatable.Record, columns []datatable.Column, opts ...Option) *Model {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	palette := theme.Current()
	if cfg.palette != nil {
		palette = *cfg.palette
	}
	m := &Model{
		cfg:          cfg,
		keys:         defaultKeyMap(),
		palette:      palette,
		tableStyle:   newTableBoxStyle(palette),
		statusStyle:  newStatusBoxStyle(palette),
		useAltScreen: true,
		windowWidth:  120,
		windowHeight: 24,
	}

	tableOpts := append([]datatable.Option(nil), cfg.tableOptions...)
	tableOpts = append(tableOpts, datatable.WithOnView(m.openDetail))
	if cfg.onEdit != nil {
		tableOpts = append(tableOpts, datatable.WithOnEdit(m.beginEdit))
	}
	if cfg.onDelete != nil {
		tableOpts = append(tableOpts, datatable.WithOnDelete(m.deleteRecord))
	}
	m.table = datatable.New(records, columns, tableOpts...)

	if cfg.search != "" {
		m.table.SetSearch(cfg.search)
	}
	if cfg.sort != nil && !m.table.SetSort(cfg.sort) {
		m.setStatus(fmt.Sprintf("Column %q cannot be sorted", cfg.sort.Key))
	}
	if cfg.page > 1 {
		m.table.SetPage(cfg.page)
	}

	m.search = newInput("/ ", "search all fields")
	m.search.SetValue(m.table.Search())
	m.editor = newInput("", "")
	m.grid = table.New(
		table.WithFocused(true),
		table.WithKeyMap(m.gridKeyMap()),
		table.WithStyles(m.tableStyles()),
	)
	return m
}

// Table exposes the view state driven by the model.
func (m *Model) Table() *datatable.Table { return m.table }

func newInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = 256
	return in
}

// gridKeyMap leaves only row movement to the bubbles table; paging is owned
// by the datatable.
func (m *Model) gridKeyMap() table.KeyMap {
	return table.KeyMap{
		LineUp:       m.keys.Up,
		LineDown:     m.keys.Down,
		PageUp:       key.NewBinding(key.WithDisabled()),
		PageDown:     key.NewBinding(key.WithDisabled()),
		HalfPageUp:   key.NewBinding(key.WithDisabled()),
		HalfPageDown: key.NewBinding(key.WithDisabled()),
		GotoTop:      key.NewBinding(key.WithDisabled()),
		GotoBottom:   key.NewBinding(key.WithDisabled()),
	}
}

func (m *Model) tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(m.palette.Adaptive(theme.ColorTextPrimary)).
		Background(m.palette.Adaptive(theme.ColorSurface))
	styles.Cell = styles.Cell.
		Foreground(m.palette.Adaptive(theme.ColorTextPrimary))
	styles.Selected = styles.Selected.
		Foreground(m.palette.Adaptive(theme.ColorAccentText)).
		Background(m.palette.Adaptive(theme.ColorAccent))
	return styles
}

func (m *Model) applyPalette(p theme.Palette) {
	m.palette = p
	m.tableStyle = newTableBoxStyle(p)
	m.statusStyle = newStatusBoxStyle(p)
	m.grid.SetStyles(m.tableStyles())
}

// headers returns the column titles decorated with the sort direction and,
// in interactive mode, the focus marker and the selection column.
func (m *Model) headers(interactive bool) []string {
	columns := m.table.Columns()
	spec, sorted := m.table.SortSpec()

	headers := make([]string, 0, len(columns)+1)
	if interactive {
		headers = append(headers, checkbox(m.table.AllSelected()))
	}
	for i, col := range columns {
		title := col.Title()
		if sorted && spec.Key == col.Key {
			if spec.Direction == datatable.Descending {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		if interactive && i == m.focus {
			title = "›" + title
		}
		headers = append(headers, title)
	}
	return headers
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// syncRows pushes the current page of the datatable into the grid.
func (m *Model) syncRows() {
	rows := m.table.Rows()
	headers := m.headers(true)

	matrix := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, 0, len(row.Cells)+1)
		cells = append(cells, checkbox(row.Selected))
		matrix[i] = append(cells, row.Cells...)
	}

	frameWidth, _ := m.tableStyle.GetFrameSize()
	widths, _ := calculateColumnWidths(headers, matrix, m.windowWidth-frameWidth-2*len(headers))

	m.grid.SetRows(nil)
	m.grid.SetColumns(buildColumns(headers, widths))
	m.grid.SetRows(convertRows(matrix))
	m.grid.SetWidth(sum(widths) + 2*len(widths))

	height := len(rows) + headerHeight(m.tableStyles())
	if m.windowHeight > 0 {
		height = clamp(height, 3, max(m.windowHeight-reservedHeight, 3))
	}
	m.grid.SetHeight(height)
	if len(rows) > 0 && m.grid.Cursor() >= len(rows) {
		m.grid.SetCursor(len(rows) - 1)
	}
	if m.grid.Cursor() < 0 {
		m.grid.SetCursor(0)
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		if m.mode == modeDetail {
			m.detail.Width = m.detailWidth()
			m.detail.Height = m.detailHeight()
		}
		m.syncRows()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		switch m.mode {
		case modeSearch:
			return m, m.updateSearch(msg)
		case modeEdit:
			return m, m.updateEdit(msg)
		case modeDetail:
			return m, m.updateDetail(msg)
		case modeMenu:
			return m, m.updateMenu(msg)
		default:
			return m, m.updateTable(msg)
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modeEdit:
		m.editor, cmd = m.editor.Update(msg)
	case modeDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateTable(msg tea.KeyMsg) tea.Cmd {
	columns := m.table.Columns()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back):
		if m.table.Search() != "" {
			m.table.SetSearch("")
			m.search.SetValue("")
			m.setStatus("Search cleared")
			break
		}
		if msg.String() == "esc" {
			return m.quit()
		}
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.FullScreen):
		m.useAltScreen = !m.useAltScreen
		if m.useAltScreen {
			return tea.EnterAltScreen
		}
		return tea.ExitAltScreen
	case key.Matches(msg, m.keys.Theme):
		next := theme.Next(m.palette.Name)
		_ = theme.SetCurrent(next.Name)
		m.applyPalette(next)
		m.setStatus(fmt.Sprintf("Theme: %s (set color-theme: %s in config to persist)", next.DisplayName, next.Name))
	case key.Matches(msg, m.keys.Search):
		if !m.table.Searchable() {
			m.setStatus("Search is disabled for this table")
			break
		}
		m.mode = modeSearch
		m.search.SetValue(m.table.Search())
		m.search.CursorEnd()
		return m.search.Focus()
	case key.Matches(msg, m.keys.Sort):
		m.toggleSort(columns)
	case key.Matches(msg, m.keys.Left):
		m.focus = max(m.focus-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.focus = clamp(m.focus+1, 0, max(len(columns)-1, 0))
	case key.Matches(msg, m.keys.NextPage):
		m.gotoPage(m.table.Page() + 1)
	case key.Matches(msg, m.keys.PrevPage):
		m.gotoPage(m.table.Page() - 1)
	case key.Matches(msg, m.keys.FirstPage):
		m.gotoPage(1)
	case key.Matches(msg, m.keys.LastPage):
		m.gotoPage(m.table.TotalPages())
	case key.Matches(msg, m.keys.Toggle):
		m.table.ToggleRow(m.grid.Cursor())
	case key.Matches(msg, m.keys.ToggleAll):
		m.table.ToggleAll()
	case key.Matches(msg, m.keys.Menu):
		m.openMenu()
	case key.Matches(msg, m.keys.Copy):
		m.copySelection(columns)
	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return cmd
	}

	m.syncRows()
	return nil
}

func (m *Model) gotoPage(n int) {
	before := m.table.Page()
	m.table.SetPage(n)
	if m.table.Page() != before {
		m.grid.SetCursor(0)
	}
}

func (m *Model) toggleSort(columns []datatable.Column) {
	if len(columns) == 0 {
		return
	}
	col := columns[m.focus]
	if !m.table.ToggleSort(col.Key) {
		m.setStatus(fmt.Sprintf("Column %s is not sortable", col.Title()))
		return
	}
	if spec, ok := m.table.SortSpec(); ok {
		m.setStatus(fmt.Sprintf("Sorted by %s (%s)", col.Title(), spec.Direction))
		return
	}
	m.setStatus("Sort cleared")
}

func (m *Model) copySelection(columns []datatable.Column) {
	var text, label string
	if selected := m.table.SelectedRecords(); len(selected) > 0 {
		body, err := json.MarshalIndent(selected, "", "  ")
		if err != nil {
			m.setStatus(fmt.Sprintf("Copy failed: %v", err))
			return
		}
		text = string(body)
		label = fmt.Sprintf("%d selected rows", len(selected))
	} else {
		rows := m.table.Rows()
		cursor := m.grid.Cursor()
		if cursor < 0 || cursor >= len(rows) || len(columns) == 0 {
			return
		}
		text = rows[cursor].Cells[m.focus]
		label = columns[m.focus].Title()
	}

	if err := writeClipboard(text); err != nil {
		m.setStatus(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	m.setStatus("Copied " + label)
}

func (m *Model) openMenu() {
	if len(m.table.Actions()) == 0 || len(m.table.Rows()) == 0 {
		return
	}
	m.table.ToggleMenu(m.grid.Cursor())
	if _, open := m.table.OpenMenu(); open {
		m.mode = modeMenu
		m.menuCursor = 0
	}
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	actions := m.table.Actions()
	switch {
	case key.Matches(msg, m.keys.ActionView):
		return m.invoke(datatable.ActionView)
	case key.Matches(msg, m.keys.ActionEdit):
		return m.invoke(datatable.ActionEdit)
	case key.Matches(msg, m.keys.ActionDel):
		return m.invoke(datatable.ActionDelete)
	case key.Matches(msg, m.keys.Up):
		m.menuCursor = max(m.menuCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.menuCursor = min(m.menuCursor+1, len(actions)-1)
	case key.Matches(msg, m.keys.Confirm):
		if m.menuCursor < len(actions) {
			return m.invoke(actions[m.menuCursor])
		}
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.table.CloseMenu()
		m.mode = modeTable
	}
	return nil
}

// invoke runs action through the datatable. Handlers may switch the mode
// and leave a command in m.pending.
func (m *Model) invoke(action datatable.Action) tea.Cmd {
	m.mode = modeTable
	if !m.table.InvokeOpen(action) {
		m.table.CloseMenu()
		m.setStatus(fmt.Sprintf("Action %s is not available", action))
	}
	m.syncRows()
	cmd := m.pending
	m.pending = nil
	return cmd
}

func (m *Model) detailWidth() int {
	frameWidth, _ := m.statusStyle.GetFrameSize()
	return max(m.windowWidth-frameWidth, 20)
}

func (m *Model) detailHeight() int {
	return max(m.windowHeight-6, 3)
}

func (m *Model) openDetail(rec datatable.Record) {
	width := m.detailWidth()
	var content string
	if m.cfg.detailRenderer != nil {
		content = m.cfg.detailRenderer(rec, width)
	} else {
		content = render.Record(m.cfg.title, m.table.Columns(), rec, render.Options{Width: width})
	}

	m.detail = viewport.New(width, m.detailHeight())
	m.detail.SetContent(content)
	m.detailTitle = m.recordLabel(rec)
	m.mode = modeDetail
}

func (m *Model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
		m.mode = modeTable
		return nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return cmd
}

func (m *Model) beginEdit(rec datatable.Record) {
	columns := m.table.Columns()
	if len(columns) == 0 {
		return
	}
	col := columns[m.focus]
	value, _ := rec.Value(col.Key)

	text := ""
	if value != nil {
		text = datatable.Text(value)
	}
	m.editor.Prompt = col.Title() + ": "
	m.editor.SetValue(text)
	m.editor.CursorEnd()
	m.editRecord = rec
	m.editColumn = col
	m.mode = modeEdit
	m.pending = m.editor.Focus()
}

func (m *Model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.commitEdit()
		return nil
	case "esc":
		m.editor.Blur()
		m.editRecord = nil
		m.mode = modeTable
		m.setStatus("Edit cancelled")
		return nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *Model) commitEdit() {
	rec, col := m.editRecord, m.editColumn
	m.editor.Blur()
	m.editRecord = nil
	m.mode = modeTable

	old, _ := rec.Value(col.Key)
	if err := m.cfg.onEdit(rec, col.Key, coerceValue(old, m.editor.Value())); err != nil {
		m.setStatus(fmt.Sprintf("Edit failed: %v", err))
		return
	}
	m.table.SetData(m.table.Data())
	m.syncRows()
	m.setStatus(fmt.Sprintf("Updated %s of %s", col.Title(), m.recordLabel(rec)))
}

// coerceValue keeps the edited field's type when the input still parses as
// that type.
func coerceValue(old any, input string) any {
	trimmed := strings.TrimSpace(input)
	switch old.(type) {
	case float64, float32, int, int64, int32, json.Number:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case bool:
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return b
		}
	case nil:
		if trimmed == "" {
			return nil
		}
	}
	return input
}

func (m *Model) deleteRecord(rec datatable.Record) {
	label := m.recordLabel(rec)
	records, err := m.cfg.onDelete(rec)
	if err != nil {
		m.setStatus(fmt.Sprintf("Delete failed: %v", err))
		return
	}
	m.table.SetData(records)
	m.setStatus("Deleted " + label)
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = modeTable
		return nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.table.SetSearch("")
		m.mode = modeTable
		m.syncRows()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	before := m.table.Page()
	m.table.SetSearch(m.search.Value())
	if m.table.Page() != before {
		m.grid.SetCursor(0)
	}
	m.syncRows()
	return cmd
}

func (m *Model) quit() tea.Cmd {
	var cmds []tea.Cmd
	if m.useAltScreen {
		cmds = append(cmds, tea.ExitAltScreen)
		m.useAltScreen = false
	}
	return tea.Batch(append(cmds, tea.Quit)...)
}

func (m *Model) setStatus(msg string) {
	m.status = strings.TrimSpace(msg)
}

// recordLabel names a record by its first column.
func (m *Model) recordLabel(rec datatable.Record) string {
	columns := m.table.Columns()
	if len(columns) == 0 {
		return "row"
	}
	if label := strings.TrimSpace(columns[0].Cell(rec)); label != "" {
		return label
	}
	return "row"
}

func (m *Model) emptyMessage() string {
	if term := m.table.Search(); term != "" {
		return fmt.Sprintf("No results match %q.", term)
	}
	return "No data to display."
}

// paginationSummary renders "Showing X to Y of Z results" followed by the
// page-number strip when more than one page exists.
func (m *Model) paginationSummary(interactive bool) string {
	p := m.table.Pagination()
	if p.TotalRows == 0 {
		return ""
	}

	muted := m.palette.ForegroundStyle(theme.ColorTextMuted)
	summary := muted.Render(fmt.Sprintf("Showing %d to %d of %d results", p.Start, p.End, p.TotalRows))
	if !p.Visible {
		return summary
	}

	current := m.palette.ForegroundStyle(theme.ColorAccent).Bold(true)
	parts := []string{pageArrow("‹", p.HasPrev, muted)}
	for _, n := range p.Numbers {
		if n == p.Page {
			parts = append(parts, current.Render(fmt.Sprintf("[%d]", n)))
			continue
		}
		parts = append(parts, strconv.Itoa(n))
	}
	if p.TotalPages > len(p.Numbers) {
		parts = append(parts, muted.Render("…"))
	}
	parts = append(parts, pageArrow("›", p.HasNext, muted))

	strip := strings.Join(parts, " ")
	position := fmt.Sprintf("Page %d of %d", p.Page, p.TotalPages)
	if interactive {
		return summary + "  " + strip + "  " + muted.Render(position)
	}
	return summary + "  " + strip + "  " + position
}

func pageArrow(arrow string, enabled bool, muted lipgloss.Style) string {
	if enabled {
		return arrow
	}
	return muted.Faint(true).Render(arrow)
}

func (m *Model) View() string {
	var sections []string

	switch m.mode {
	case modeDetail:
		header := m.palette.ForegroundStyle(theme.ColorPrimary).Render(m.detailTitle)
		sections = append(sections, header, m.statusStyle.Render(m.detail.View()))
	default:
		if len(m.table.Rows()) == 0 {
			sections = append(sections, m.tableStyle.Render(m.emptyMessage()))
		} else {
			sections = append(sections, m.tableStyle.Render(m.grid.View()))
		}
		if m.mode == modeMenu {
			sections = append(sections, m.renderMenu())
		}
		if m.mode == modeEdit {
			sections = append(sections, m.statusStyle.Render(m.editor.View()))
		}
	}

	widthHint := 0
	for _, section := range sections {
		widthHint = max(widthHint, lipgloss.Width(section))
	}
	sections = append(sections, m.renderStatusArea(widthHint))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderMenu() string {
	pos, open := m.table.OpenMenu()
	rows := m.table.Rows()
	if !open || pos >= len(rows) {
		return ""
	}

	accent := m.palette.ForegroundStyle(theme.ColorAccent).Bold(true)
	lines := []string{m.palette.ForegroundStyle(theme.ColorTextSecondary).Render("Actions for " + m.recordLabel(rows[pos].Record))}
	for i, action := range m.table.Actions() {
		line := fmt.Sprintf("  %s  %s", actionKey(action), action)
		if i == m.menuCursor {
			line = accent.Render(fmt.Sprintf("› %s  %s", actionKey(action), action))
		}
		if action == datatable.ActionDelete {
			line = m.palette.ForegroundStyle(theme.ColorDanger).Render(line)
		}
		lines = append(lines, line)
	}
	return m.statusStyle.Render(strings.Join(lines, "\n"))
}

func actionKey(action datatable.Action) string {
	switch action {
	case datatable.ActionView:
		return "v"
	case datatable.ActionEdit:
		return "e"
	default:
		return "d"
	}
}

func (m *Model) renderStatusArea(widthHint int) string {
	width := m.windowWidth
	if width <= 0 {
		width = widthHint
	}
	if width <= 0 {
		width = 80
	}
	frameWidth, _ := m.statusStyle.GetFrameSize()
	innerWidth := max(width-frameWidth, 1)

	if m.showHelp {
		return m.statusStyle.Render(m.renderHelp(innerWidth))
	}

	faint := lipgloss.NewStyle().Faint(true)
	left := m.palette.ForegroundStyle(theme.ColorPrimary).Render(m.cfg.title)
	if n := len(m.table.Selected()); n > 0 {
		left += m.palette.ForegroundStyle(theme.ColorSelection).Render(fmt.Sprintf("  %d selected", n))
	}
	rows := []string{renderStatusRow(left, faint.Render("Press ? for help"), innerWidth)}

	if summary := m.paginationSummary(true); summary != "" {
		rows = append(rows, renderStatusRow(summary, "", innerWidth))
	}

	profile := ""
	if m.cfg.profileName != "" {
		profile = m.palette.ForegroundStyle(theme.ColorTextSecondary).Render("Profile: " + m.cfg.profileName)
	}

	var message string
	switch {
	case m.mode == modeSearch:
		message = m.search.View()
	case m.status != "":
		message = faint.Render(m.status)
	case m.table.Search() != "":
		message = m.palette.ForegroundStyle(theme.ColorAccent).Render("Search: " + m.table.Search())
	case m.cfg.footer != "":
		message = faint.Render(m.cfg.footer)
	}
	if message != "" || profile != "" {
		rows = append(rows, renderStatusRow(message, profile, innerWidth))
	}

	return m.statusStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderHelp(innerWidth int) string {
	helpStyle := lipgloss.NewStyle().Faint(true)
	var lines []string
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		line := wordwrap.String(fmt.Sprintf("%-10s : %s", h.Key, h.Desc), innerWidth)
		lines = append(lines, padStatusLine(helpStyle.Render(line), innerWidth))
	}
	return strings.Join(lines, "\n")
}

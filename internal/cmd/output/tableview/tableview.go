package tableview

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/kong/dashctl/internal/log"
	"github.com/kong/dashctl/internal/theme"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

type fdProvider interface {
	Fd() uintptr
}

// DetailRenderer produces the body of the "view" row action.
type DetailRenderer func(rec datatable.Record, width int) string

// EditFunc stores value under key of rec.
type EditFunc func(rec datatable.Record, key string, value any) error

// DeleteFunc removes rec from the record source and returns the records that
// remain.
type DeleteFunc func(rec datatable.Record) ([]datatable.Record, error)

type config struct {
	title          string
	footer         string
	profileName    string
	interactive    bool
	tableOptions   []datatable.Option
	detailRenderer DetailRenderer
	onEdit         EditFunc
	onDelete       DeleteFunc
	search         string
	sort           *datatable.SortSpec
	page           int
	palette        *theme.Palette
}

type Option func(*config)

func WithTitle(title string) Option {
	return func(cfg *config) {
		cfg.title = strings.TrimSpace(title)
	}
}

func WithFooter(msg string) Option {
	return func(cfg *config) {
		cfg.footer = msg
	}
}

func WithProfileName(name string) Option {
	return func(cfg *config) {
		cfg.profileName = strings.TrimSpace(name)
	}
}

// WithInteractive requests the full-screen view. It only takes effect when
// the output stream is a terminal.
func WithInteractive(enabled bool) Option {
	return func(cfg *config) {
		cfg.interactive = enabled
	}
}

// WithTableOptions forwards options to the underlying datatable.Table.
func WithTableOptions(opts ...datatable.Option) Option {
	return func(cfg *config) {
		cfg.tableOptions = append(cfg.tableOptions, opts...)
	}
}

func WithDetailRenderer(renderer DetailRenderer) Option {
	return func(cfg *config) {
		cfg.detailRenderer = renderer
	}
}

// WithEditHandler enables the "edit" row action.
func WithEditHandler(fn EditFunc) Option {
	return func(cfg *config) {
		cfg.onEdit = fn
	}
}

// WithDeleteHandler enables the "delete" row action.
func WithDeleteHandler(fn DeleteFunc) Option {
	return func(cfg *config) {
		cfg.onDelete = fn
	}
}

// WithPalette colors the table with p instead of the current theme.
func WithPalette(p theme.Palette) Option {
	return func(cfg *config) {
		cfg.palette = &p
	}
}

// WithInitialState applies a search term, sort and page before the first
// render. Unknown or unsortable sort keys are ignored.
func WithInitialState(search string, sort *datatable.SortSpec, page int) Option {
	return func(cfg *config) {
		cfg.search = search
		cfg.sort = sort
		cfg.page = page
	}
}

// Render writes records through the table engine. Terminals get the
// interactive view when requested; everything else receives the current
// page as a static table.
func Render(streams *iostreams.IOStreams, records []datatable.Record, columns []datatable.Column, opts ...Option) error {
	if streams == nil || streams.Out == nil {
		return errors.New("tableview: output stream is not available")
	}

	m := New(records, columns, opts...)
	width, height, isTTY := resolveTerminal(streams.Out)
	m.windowWidth, m.windowHeight = width, height

	if !isTTY || !m.cfg.interactive {
		return m.writeStatic(streams.Out)
	}

	log.DisableErrorMirroring()
	defer log.EnableErrorMirroring()

	m.syncRows()
	program := tea.NewProgram(m,
		tea.WithInput(streams.In),
		tea.WithOutput(streams.Out),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

// StaticView renders the current page without interactive affordances.
func (m *Model) StaticView() string {
	rows := m.table.Rows()
	if len(rows) == 0 {
		return joinSections(m.cfg.title, m.emptyMessage())
	}

	headers := m.headers(false)
	matrix := make([][]string, len(rows))
	for i, row := range rows {
		matrix[i] = row.Cells
	}

	frameWidth, _ := m.tableStyle.GetFrameSize()
	widths, _ := calculateColumnWidths(headers, matrix, m.windowWidth-frameWidth-2*len(headers))

	styles := m.tableStyles()
	styles.Selected = styles.Cell
	grid := table.New(
		table.WithColumns(buildColumns(headers, widths)),
		table.WithRows(convertRows(matrix)),
		table.WithStyles(styles),
		table.WithHeight(len(rows)+headerHeight(styles)),
		table.WithWidth(sum(widths)+2*len(widths)),
	)
	grid.Blur()

	return joinSections(m.cfg.title, m.tableStyle.Render(grid.View()), m.paginationSummary(false))
}

func (m *Model) writeStatic(out io.Writer) error {
	_, err := fmt.Fprintln(out, m.StaticView())
	return err
}

func joinSections(sections ...string) string {
	var kept []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, kept...)
}

func newTableBoxStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Padding(0, 1)
}

func newStatusBoxStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Padding(0, 1)
}

func resolveTerminal(out io.Writer) (width int, height int, isTTY bool) {
	const defaultWidth = 120
	const defaultHeight = 24

	width, height = defaultWidth, defaultHeight

	fp, ok := out.(fdProvider)
	if !ok || fp.Fd() == ^uintptr(0) {
		return width, height, false
	}

	isTTY = iostreams.IsTerminal(out)
	if w, h, err := term.GetSize(int(fp.Fd())); err == nil {
		width, height = w, h
	}
	return width, height, isTTY
}

func headerHeight(styles table.Styles) int {
	return lipgloss.Height(styles.Header.Render("x"))
}

func buildColumns(headers []string, widths []int) []table.Column {
	columns := make([]table.Column, len(headers))
	for i, header := range headers {
		columns[i] = table.Column{Title: header, Width: widths[i]}
	}
	return columns
}

func convertRows(matrix [][]string) []table.Row {
	rows := make([]table.Row, len(matrix))
	for i, cells := range matrix {
		rows[i] = table.Row(append([]string(nil), cells...))
	}
	return rows
}

// calculateColumnWidths sizes each column to its widest cell within
// [minColumnWidth, maxColumnWidth], then shrinks the widest columns until the
// total fits widthLimit or every column is at its minimum.
func calculateColumnWidths(headers []string, rows [][]string, widthLimit int) ([]int, []int) {
	const minColumnWidth = 3
	const maxColumnWidth = 48

	widths := make([]int, len(headers))
	minWidths := make([]int, len(headers))
	for i, header := range headers {
		headerWidth := ansi.StringWidth(header)
		minWidths[i] = clamp(headerWidth, minColumnWidth, maxColumnWidth)

		widest := headerWidth
		for _, row := range rows {
			if i < len(row) {
				widest = max(widest, runewidth.StringWidth(row[i]))
			}
		}
		widths[i] = max(clamp(widest, minColumnWidth, maxColumnWidth), minWidths[i])
	}

	if widthLimit <= 0 {
		return widths, minWidths
	}

	for total := sum(widths); total > widthLimit; total-- {
		idx := widestColumnAboveMin(widths, minWidths)
		if idx == -1 {
			break
		}
		widths[idx]--
	}
	return widths, minWidths
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func widestColumnAboveMin(widths, minWidths []int) int {
	idx := -1
	widest := math.MinInt
	for i, width := range widths {
		if width > widest && width > minWidths[i] {
			widest = width
			idx = i
		}
	}
	return idx
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func renderStatusRow(left, right string, width int) string {
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if width < 1 {
		width = max(leftWidth+rightWidth, 1)
	}

	switch {
	case rightWidth == 0 && leftWidth == 0:
		return strings.Repeat(" ", width)
	case rightWidth == 0:
		return padStatusLine(ansi.Truncate(left, width, "…"), width)
	case leftWidth == 0:
		if rightWidth >= width {
			return right
		}
		return strings.Repeat(" ", width-rightWidth) + right
	default:
		if leftWidth+rightWidth+1 > width {
			left = ansi.Truncate(left, max(width-rightWidth-1, 1), "…")
			leftWidth = lipgloss.Width(left)
		}
		gap := max(width-leftWidth-rightWidth, 1)
		return left + strings.Repeat(" ", gap) + right
	}
}

func padStatusLine(value string, width int) string {
	lineWidth := lipgloss.Width(value)
	if width < 1 || lineWidth >= width {
		return value
	}
	return value + strings.Repeat(" ", width-lineWidth)
}

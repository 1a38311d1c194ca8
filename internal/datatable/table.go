package datatable

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/kong/dashctl/internal/log"
	"github.com/kong/dashctl/internal/util"
)

// Action identifies a row overflow-menu entry.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

const noMenu = -1

// maxPageNumbers caps the page-number strip shown by the pagination control.
const maxPageNumbers = 5

// Row is one rendered row of the current page.
type Row struct {
	// Position is the index within the current page slice.
	Position int
	Record   Record
	Cells    []string
	Selected bool
	MenuOpen bool
}

// Pagination summarizes the page-number control for the current view.
type Pagination struct {
	Page       int
	TotalPages int
	TotalRows  int
	// Start and End are the 1-based bounds of the visible window, 0 when empty.
	Start   int
	End     int
	Numbers []int
	HasPrev bool
	HasNext bool
	// Visible is false when pagination is disabled or a single page suffices.
	Visible bool
}

// Table owns the view state of one tabular view over caller-supplied records.
// It is not safe for concurrent use.
type Table struct {
	id       string
	cfg      config
	logger   *slog.Logger
	data     []Record
	columns  []Column
	search   string
	sort     *SortSpec
	page     int
	selected map[int]struct{}
	openMenu int
}

// New creates a Table with fresh view state.
func New(data []Record, columns []Column, opts ...Option) *Table {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Table{
		id:       uuid.NewString(),
		cfg:      cfg,
		data:     data,
		columns:  append([]Column(nil), columns...),
		page:     1,
		selected: map[int]struct{}{},
		openMenu: noMenu,
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t.logger = logger.With("table", util.ShortID(t.id))
	t.trace("table created", "records", len(data), "columns", len(columns))
	return t
}

// ID uniquely identifies this instance in logs.
func (t *Table) ID() string { return t.id }

func (t *Table) Searchable() bool { return t.cfg.searchable }
func (t *Table) Filterable() bool { return t.cfg.filterable }
func (t *Table) Paginated() bool  { return t.cfg.pagination }
func (t *Table) PageSize() int    { return t.cfg.pageSize }

// Columns returns the column descriptors in display order.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Column looks up a column descriptor by key.
func (t *Table) Column(key string) (Column, bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Data returns the caller's records as last supplied.
func (t *Table) Data() []Record { return t.data }

// SetData replaces the record source. Search and sort survive; the page is
// clamped to the new range and the selection is cleared because positions
// may now address different records.
func (t *Table) SetData(data []Record) {
	t.data = data
	t.resetSlice()
	t.clampPage()
	t.trace("data replaced", "records", len(data), "page", t.page)
}

// Search returns the active search term.
func (t *Table) Search() string { return t.search }

// SetSearch applies a new global search term.
func (t *Table) SetSearch(term string) {
	if term == t.search {
		return
	}
	t.search = term
	t.resetSlice()
	t.clampPage()
	t.trace("search changed", "term", term, "page", t.page)
}

// SortSpec returns the active sort, if any.
func (t *Table) SortSpec() (SortSpec, bool) {
	if t.sort == nil {
		return SortSpec{}, false
	}
	return *t.sort, true
}

// ToggleSort advances the tri-state sort of the column named key. It reports
// false, changing nothing, when the column is unknown or not sortable.
func (t *Table) ToggleSort(key string) bool {
	col, ok := t.Column(key)
	if !ok || !col.Sortable {
		return false
	}
	t.sort = NextSort(t.sort, key)
	t.resetSlice()
	if t.sort == nil {
		t.trace("sort cleared", "key", key)
	} else {
		t.trace("sort changed", "key", key, "direction", t.sort.Direction.String())
	}
	return true
}

// SetSort installs spec directly; nil clears sorting. Unknown or unsortable
// keys are rejected.
func (t *Table) SetSort(spec *SortSpec) bool {
	if spec != nil {
		col, ok := t.Column(spec.Key)
		if !ok || !col.Sortable {
			return false
		}
		cp := *spec
		spec = &cp
	}
	t.sort = spec
	t.resetSlice()
	return true
}

// SetPageSize changes the page window and clamps the current page.
func (t *Table) SetPageSize(size int) {
	size = normalizePageSize(size)
	if size == t.cfg.pageSize {
		return
	}
	t.cfg.pageSize = size
	t.resetSlice()
	t.clampPage()
}

// Filtered returns the filtered and sorted sequence before pagination.
func (t *Table) Filtered() []Record {
	return Sort(Filter(t.data, t.search), t.sort)
}

// TotalPages reports how many pages the filtered sequence spans. With
// pagination disabled everything fits on one page.
func (t *Table) TotalPages() int {
	n := len(Filter(t.data, t.search))
	if !t.cfg.pagination {
		if n == 0 {
			return 0
		}
		return 1
	}
	return TotalPages(n, t.cfg.pageSize)
}

// Page returns the current 1-based page.
func (t *Table) Page() int { return t.page }

// SetPage moves to page n, clamped to the available range. Moving to another
// page clears the selection.
func (t *Table) SetPage(n int) {
	n = clampPage(n, t.TotalPages())
	if n == t.page {
		return
	}
	t.page = n
	t.resetSlice()
	t.trace("page changed", "page", n)
}

// NextPage advances one page unless already on the last.
func (t *Table) NextPage() { t.SetPage(t.page + 1) }

// PrevPage steps back one page unless already on the first.
func (t *Table) PrevPage() { t.SetPage(t.page - 1) }

// Rows derives the visible page: filter, sort, then paginate.
func (t *Table) Rows() []Row {
	records := t.pageRecords()
	rows := make([]Row, len(records))
	for i, rec := range records {
		cells := make([]string, len(t.columns))
		for j, col := range t.columns {
			cells[j] = col.Cell(rec)
		}
		_, selected := t.selected[i]
		rows[i] = Row{
			Position: i,
			Record:   rec,
			Cells:    cells,
			Selected: selected,
			MenuOpen: t.openMenu == i,
		}
	}
	return rows
}

func (t *Table) pageRecords() []Record {
	sorted := t.Filtered()
	if !t.cfg.pagination {
		return sorted
	}
	return Paginate(sorted, t.page, t.cfg.pageSize)
}

func (t *Table) recordAt(pos int) (Record, bool) {
	records := t.pageRecords()
	if pos < 0 || pos >= len(records) {
		return nil, false
	}
	return records[pos], true
}

// Pagination describes the page-number control for the current state.
func (t *Table) Pagination() Pagination {
	total := len(Filter(t.data, t.search))
	pages := t.TotalPages()
	p := Pagination{
		Page:       t.page,
		TotalPages: pages,
		TotalRows:  total,
		HasPrev:    t.page > 1,
		HasNext:    t.page < pages,
		Visible:    t.cfg.pagination && pages > 1,
	}
	if total > 0 {
		if t.cfg.pagination {
			p.Start = (t.page-1)*t.cfg.pageSize + 1
			p.End = min(t.page*t.cfg.pageSize, total)
		} else {
			p.Start, p.End = 1, total
		}
	}
	for i := 1; i <= min(maxPageNumbers, pages); i++ {
		p.Numbers = append(p.Numbers, i)
	}
	return p
}

// ToggleRow flips the selection of the row at pos on the current page.
func (t *Table) ToggleRow(pos int) bool {
	if _, ok := t.recordAt(pos); !ok {
		return false
	}
	if _, ok := t.selected[pos]; ok {
		delete(t.selected, pos)
	} else {
		t.selected[pos] = struct{}{}
	}
	return true
}

// IsSelected reports whether the row at pos is selected.
func (t *Table) IsSelected(pos int) bool {
	_, ok := t.selected[pos]
	return ok
}

// ToggleAll selects every row of the current page, or clears the selection
// when the whole page is already selected.
func (t *Table) ToggleAll() {
	count := len(t.pageRecords())
	if len(t.selected) == count {
		t.selected = map[int]struct{}{}
		return
	}
	t.selected = make(map[int]struct{}, count)
	for i := range count {
		t.selected[i] = struct{}{}
	}
}

// AllSelected is true when the current page is non-empty and fully selected.
func (t *Table) AllSelected() bool {
	count := len(t.pageRecords())
	return count > 0 && len(t.selected) == count
}

// Selected returns the selected positions in ascending order.
func (t *Table) Selected() []int {
	out := make([]int, 0, len(t.selected))
	for pos := range t.selected {
		out = append(out, pos)
	}
	slices.Sort(out)
	return out
}

// SelectedRecords returns the records behind the selected positions.
func (t *Table) SelectedRecords() []Record {
	records := t.pageRecords()
	var out []Record
	for _, pos := range t.Selected() {
		if pos < len(records) {
			out = append(out, records[pos])
		}
	}
	return out
}

// ClearSelection deselects every row.
func (t *Table) ClearSelection() {
	t.selected = map[int]struct{}{}
}

// ToggleMenu opens the action menu of the row at pos, closing any other.
// Toggling the row whose menu is open closes it.
func (t *Table) ToggleMenu(pos int) {
	if t.openMenu == pos {
		t.openMenu = noMenu
		return
	}
	if _, ok := t.recordAt(pos); !ok {
		return
	}
	t.openMenu = pos
}

// CloseMenu closes the open action menu, if any.
func (t *Table) CloseMenu() { t.openMenu = noMenu }

// OpenMenu reports the row whose action menu is open.
func (t *Table) OpenMenu() (int, bool) {
	return t.openMenu, t.openMenu != noMenu
}

// Actions lists the configured row actions in menu order.
func (t *Table) Actions() []Action {
	var out []Action
	if t.cfg.onView != nil {
		out = append(out, ActionView)
	}
	if t.cfg.onEdit != nil {
		out = append(out, ActionEdit)
	}
	if t.cfg.onDelete != nil {
		out = append(out, ActionDelete)
	}
	return out
}

func (t *Table) handler(action Action) ActionFunc {
	switch action {
	case ActionView:
		return t.cfg.onView
	case ActionEdit:
		return t.cfg.onEdit
	case ActionDelete:
		return t.cfg.onDelete
	default:
		return nil
	}
}

// Invoke runs action with the record rendered at pos on the current page and
// closes the action menu. It reports whether a callback ran.
func (t *Table) Invoke(pos int, action Action) bool {
	fn := t.handler(action)
	rec, ok := t.recordAt(pos)
	if fn == nil || !ok {
		return false
	}
	t.trace("row action", "action", string(action), "position", pos)
	fn(rec)
	t.openMenu = noMenu
	return true
}

// InvokeOpen runs action against the row whose menu is open.
func (t *Table) InvokeOpen(action Action) bool {
	if t.openMenu == noMenu {
		return false
	}
	return t.Invoke(t.openMenu, action)
}

func (t *Table) resetSlice() {
	t.selected = map[int]struct{}{}
	t.openMenu = noMenu
}

func (t *Table) clampPage() {
	t.page = clampPage(t.page, t.TotalPages())
}

func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

func (t *Table) trace(msg string, args ...any) {
	t.logger.Log(context.Background(), log.LevelTrace, msg, args...)
}

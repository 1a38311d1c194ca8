package datatable

// RenderFunc converts a raw field value into its display form. It receives the
// full record so composite cells (name plus email, for example) can be built.
type RenderFunc func(value any, rec Record) string

// Column describes how one field of a Record is labelled, sorted and rendered.
type Column struct {
	Key      string
	Label    string
	Sortable bool
	Render   RenderFunc
}

// Cell returns the display text for this column of rec. A missing key renders
// as empty.
func (c Column) Cell(rec Record) string {
	value, _ := rec.Value(c.Key)
	if c.Render != nil {
		return c.Render(value, rec)
	}
	return emptyText(value)
}

// Title returns the label, falling back to the key.
func (c Column) Title() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

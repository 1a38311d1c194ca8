package datatable

import "log/slog"

// DefaultPageSize is the page window used when no size is configured.
const DefaultPageSize = 10

// ActionFunc receives the record a row action was invoked on.
type ActionFunc func(rec Record)

type config struct {
	searchable bool
	filterable bool
	pagination bool
	pageSize   int
	onView     ActionFunc
	onEdit     ActionFunc
	onDelete   ActionFunc
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{
		searchable: true,
		filterable: true,
		pagination: true,
		pageSize:   DefaultPageSize,
	}
}

// Option configures a Table at construction time.
type Option func(*config)

// WithSearchable shows or hides the search input.
func WithSearchable(enabled bool) Option {
	return func(cfg *config) {
		cfg.searchable = enabled
	}
}

// WithFilterable shows or hides the filter affordance. It carries no filtering
// logic beyond the global search.
func WithFilterable(enabled bool) Option {
	return func(cfg *config) {
		cfg.filterable = enabled
	}
}

// WithPagination enables or disables page-window slicing.
func WithPagination(enabled bool) Option {
	return func(cfg *config) {
		cfg.pagination = enabled
	}
}

// WithPageSize sets the page window. Sizes below 1 fall back to DefaultPageSize.
func WithPageSize(size int) Option {
	return func(cfg *config) {
		cfg.pageSize = normalizePageSize(size)
	}
}

// WithOnView registers the "view" row action.
func WithOnView(fn ActionFunc) Option {
	return func(cfg *config) {
		cfg.onView = fn
	}
}

// WithOnEdit registers the "edit" row action.
func WithOnEdit(fn ActionFunc) Option {
	return func(cfg *config) {
		cfg.onEdit = fn
	}
}

// WithOnDelete registers the "delete" row action.
func WithOnDelete(fn ActionFunc) Option {
	return func(cfg *config) {
		cfg.onDelete = fn
	}
}

// WithLogger attaches a logger for state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

func normalizePageSize(size int) int {
	if size < 1 {
		return DefaultPageSize
	}
	return size
}

// Package tablecmd holds the flags and dataset loading shared by the view and
// export verbs.
package tablecmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	cmdpkg "github.com/kong/dashctl/internal/cmd"
	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/dataset"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/meta"
	"github.com/spf13/pflag"
)

const (
	SearchFlagName  = "search"
	SortFlagName    = "sort"
	PageFlagName    = "page"
	ColumnsFlagName = "columns"
	QueryFlagName   = "query"
)

// Settings is the resolved table state requested on the command line.
type Settings struct {
	Search     string
	Sort       *datatable.SortSpec
	Page       int
	PageSize   int
	Pagination bool
	Searchable bool
	Filterable bool
	Columns    []string
	Query      string
}

// AddFlags registers the record selection flags. Paging flags are only added
// when withPaging is true.
func AddFlags(flags *pflag.FlagSet, withPaging bool) {
	flags.String(SearchFlagName, "",
		"Only include records where any field contains this text (case-insensitive).")
	flags.String(SortFlagName, "",
		`Sort by a column key. Append :desc for descending order.
- Examples   : [ name, amount:desc ]`)
	flags.StringSlice(ColumnsFlagName, nil,
		"Comma separated column keys to show, in display order.")
	flags.String(QueryFlagName, "",
		"JMESPath expression locating the record list inside a JSON or YAML file.")

	if !withPaging {
		return
	}
	flags.Int(PageFlagName, 1, "1-based page to show.")
	flags.Int(common.PageSizeFlagName, config.DefaultPageSize,
		fmt.Sprintf(`Records per page.
- Config path: [ %s ]`, common.PageSizeConfigPath))
	flags.Bool(common.NoPaginationFlagName, false,
		fmt.Sprintf(`Show every record on a single page.
- Config path: [ %s ]`, common.PaginationConfigPath))
}

// BindFlags ties the page size flag to its config path.
func BindFlags(helper cmdpkg.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	if f := helper.GetCmd().Flags().Lookup(common.PageSizeFlagName); f != nil {
		return cfg.BindFlag(common.PageSizeConfigPath, f)
	}
	return nil
}

// ParseSort reads key[:asc|:desc]. An empty value means no sort.
func ParseSort(value string) (*datatable.SortSpec, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	key, dir, found := strings.Cut(value, ":")
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("invalid sort %q: missing column key", value)
	}

	spec := &datatable.SortSpec{Key: key, Direction: datatable.Ascending}
	if !found {
		return spec, nil
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc", "ascending":
	case "desc", "descending":
		spec.Direction = datatable.Descending
	default:
		return nil, fmt.Errorf("invalid sort direction %q: use asc or desc", dir)
	}
	return spec, nil
}

// ReadSettings collects the table flags with configuration defaults.
func ReadSettings(helper cmdpkg.Helper) (Settings, error) {
	cfg, err := helper.GetConfig()
	if err != nil {
		return Settings{}, err
	}
	flags := helper.GetCmd().Flags()

	s := Settings{
		Page:       1,
		PageSize:   cfg.GetIntOrElse(common.PageSizeConfigPath, config.DefaultPageSize),
		Pagination: boolOrElse(cfg, common.PaginationConfigPath, true),
		Searchable: boolOrElse(cfg, common.SearchableConfigPath, true),
		Filterable: boolOrElse(cfg, common.FilterableConfigPath, true),
	}

	if s.Search, err = flags.GetString(SearchFlagName); err != nil {
		return Settings{}, err
	}
	if s.Query, err = flags.GetString(QueryFlagName); err != nil {
		return Settings{}, err
	}
	if s.Columns, err = flags.GetStringSlice(ColumnsFlagName); err != nil {
		return Settings{}, err
	}
	sortValue, err := flags.GetString(SortFlagName)
	if err != nil {
		return Settings{}, err
	}
	if s.Sort, err = ParseSort(sortValue); err != nil {
		return Settings{}, &cmdpkg.ConfigurationError{Err: err}
	}

	if flags.Lookup(PageFlagName) != nil {
		if s.Page, err = flags.GetInt(PageFlagName); err != nil {
			return Settings{}, err
		}
		if s.Page < 1 {
			return Settings{}, &cmdpkg.ConfigurationError{
				Err: fmt.Errorf("--%s must be 1 or greater, got %d", PageFlagName, s.Page),
			}
		}
		noPagination, err := flags.GetBool(common.NoPaginationFlagName)
		if err != nil {
			return Settings{}, err
		}
		if noPagination {
			s.Pagination = false
		}
	}
	if s.PageSize < 1 {
		return Settings{}, &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s must be 1 or greater, got %d", common.PageSizeFlagName, s.PageSize),
		}
	}
	return s, nil
}

func boolOrElse(cfg config.Hook, key string, orElse bool) bool {
	if cfg.Get(key) == nil {
		return orElse
	}
	return cfg.GetBool(key)
}

// Load resolves ref against the built-in datasets, the file system and the
// configured dataset directory, then applies the column selection and checks
// the requested sort. A page size from the dataset's definition file applies
// unless --page-size was given.
func Load(helper cmdpkg.Helper, ref string, s *Settings) (*dataset.Dataset, error) {
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Resolve(ref, cfg.GetString(common.DatasetDirConfigPath), dataset.LoadOptions{Query: s.Query})
	if err != nil {
		if errors.Is(err, dataset.ErrUnknownDataset) {
			return nil, cmdpkg.PrepareExecutionErrorWithHelper(helper, "unknown dataset", err,
				"dataset", ref,
				"suggestion", fmt.Sprintf("run '%s list datasets' to see what is available", meta.CLIName))
		}
		return nil, cmdpkg.PrepareExecutionErrorWithHelper(helper, "unable to load dataset", err, "dataset", ref)
	}

	if err := ds.SelectColumns(s.Columns); err != nil {
		return nil, &cmdpkg.ConfigurationError{Err: err}
	}

	if s.Sort != nil {
		col, ok := findColumn(ds.Columns, s.Sort.Key)
		switch {
		case !ok:
			return nil, &cmdpkg.ConfigurationError{
				Err: fmt.Errorf("%w %q in dataset %q", dataset.ErrUnknownColumn, s.Sort.Key, ds.Name),
			}
		case !col.Sortable:
			return nil, &cmdpkg.ConfigurationError{
				Err: fmt.Errorf("column %q of dataset %q is not sortable", s.Sort.Key, ds.Name),
			}
		}
	}

	if f := helper.GetCmd().Flags().Lookup(common.PageSizeFlagName); ds.PageSize > 0 && (f == nil || !f.Changed) {
		s.PageSize = ds.PageSize
	}
	return ds, nil
}

func findColumn(columns []datatable.Column, key string) (datatable.Column, bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return datatable.Column{}, false
}

// TableOptions converts the settings into datatable options.
func (s Settings) TableOptions(logger *slog.Logger) []datatable.Option {
	opts := []datatable.Option{
		datatable.WithSearchable(s.Searchable),
		datatable.WithFilterable(s.Filterable),
		datatable.WithPagination(s.Pagination),
		datatable.WithPageSize(s.PageSize),
	}
	if logger != nil {
		opts = append(opts, datatable.WithLogger(logger))
	}
	return opts
}

// Rows applies search and sort to ds, and the page window when paginate is
// true, without any interactive state.
func (s Settings) Rows(ds *dataset.Dataset, paginate bool, logger *slog.Logger) []datatable.Record {
	opts := s.TableOptions(logger)
	if !paginate {
		opts = append(opts, datatable.WithPagination(false))
	}
	tbl := datatable.New(ds.Records, ds.Columns, opts...)
	tbl.SetSearch(s.Search)
	tbl.SetSort(s.Sort)
	tbl.SetPage(s.Page)

	rows := tbl.Rows()
	out := make([]datatable.Record, len(rows))
	for i, row := range rows {
		out[i] = row.Record
	}
	return out
}

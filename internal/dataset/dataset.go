// Package dataset supplies record sources for the table engine: embedded
// demo datasets and JSON, YAML or CSV files on disk.
package dataset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/util"
)

//go:embed builtin
var builtinFS embed.FS

const builtinDir = "builtin"

// SourceBuiltin marks datasets compiled into the binary.
const SourceBuiltin = "builtin"

var (
	// ErrUnknownDataset is returned when a name matches neither a built-in
	// dataset nor a readable file.
	ErrUnknownDataset = errors.New("unknown dataset")
	// ErrUnknownColumn is returned when a column selection names a key the
	// dataset does not define.
	ErrUnknownColumn = errors.New("unknown column")
)

// Dataset is a named record source together with its column descriptors.
type Dataset struct {
	Name        string
	Title       string
	Description string
	// Source is SourceBuiltin or the path the records were read from.
	Source   string
	PageSize int
	Columns  []datatable.Column
	Records  []datatable.Record
}

// Info is the listing form of a dataset.
type Info struct {
	Name        string `json:"name"                  yaml:"name"`
	Title       string `json:"title"                 yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string `json:"source"                yaml:"source"`
	Records     int    `json:"records"               yaml:"records"`
	Columns     int    `json:"columns"               yaml:"columns"`
}

func (d *Dataset) Info() Info {
	return Info{
		Name:        d.Name,
		Title:       d.Title,
		Description: d.Description,
		Source:      d.Source,
		Records:     len(d.Records),
		Columns:     len(d.Columns),
	}
}

// Names lists the built-in datasets in alphabetical order.
func Names() []string {
	entries, err := fs.ReadDir(builtinFS, builtinDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || isDefinitionFile(name) || !isDataFile(name) {
			continue
		}
		names = append(names, util.BaseName(name))
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Builtin loads one of the embedded datasets by name.
func Builtin(name string) (*Dataset, error) {
	return builtin(name, LoadOptions{})
}

func builtin(name string, opts LoadOptions) (*Dataset, error) {
	sub, err := fs.Sub(builtinFS, builtinDir)
	if err != nil {
		return nil, err
	}
	file, ok := findDataFile(sub, ".", name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	ds, err := load(sub, file, opts)
	if err != nil {
		return nil, err
	}
	ds.Source = SourceBuiltin
	return ds, nil
}

// Resolve finds the dataset called ref. A built-in name wins, then an
// existing file path, then a data file in dir whose base name matches ref.
func Resolve(ref string, dir string, opts LoadOptions) (*Dataset, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownDataset)
	}
	if slices.Contains(Names(), ref) {
		return builtin(ref, opts)
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return LoadFile(ref, opts)
	}
	if dir != "" {
		if file, ok := findDataFile(os.DirFS(dir), ".", ref); ok {
			return LoadFile(filepath.Join(dir, file), opts)
		}
	}
	return nil, fmt.Errorf("%w: %q is not a built-in dataset or readable file", ErrUnknownDataset, ref)
}

// Discover loads every data file in dir. Unreadable files are skipped and
// reported through the returned error list.
func Discover(dir string) ([]*Dataset, []error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, []error{err}
	}
	var (
		out  []*Dataset
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() || isDefinitionFile(e.Name()) || !isDataFile(e.Name()) {
			continue
		}
		ds, err := LoadFile(filepath.Join(dir, e.Name()), LoadOptions{})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, ds)
	}
	return out, errs
}

// SelectColumns narrows the dataset to keys, in the given order.
func (d *Dataset) SelectColumns(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	selected := make([]datatable.Column, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		idx := slices.IndexFunc(d.Columns, func(c datatable.Column) bool { return c.Key == key })
		if idx < 0 {
			return fmt.Errorf("%w %q in dataset %q", ErrUnknownColumn, key, d.Name)
		}
		selected = append(selected, d.Columns[idx])
	}
	d.Columns = selected
	return nil
}

// Remove deletes the first record identical to rec (same map) from the
// dataset and reports whether one was found.
func (d *Dataset) Remove(rec datatable.Record) bool {
	idx := slices.IndexFunc(d.Records, func(r datatable.Record) bool { return sameRecord(r, rec) })
	if idx < 0 {
		return false
	}
	d.Records = slices.Delete(d.Records, idx, idx+1)
	return true
}

// sameRecord compares map identity; records are shared by reference
// between the dataset and the table engine.
func sameRecord(a, b datatable.Record) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

var dataExtensions = []string{".json", ".yaml", ".yml", ".csv"}

func isDataFile(name string) bool {
	return slices.Contains(dataExtensions, strings.ToLower(filepath.Ext(name)))
}

func isDefinitionFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, definitionSuffix+".yaml") || strings.HasSuffix(lower, definitionSuffix+".yml")
}

func findDataFile(fsys fs.FS, dir, name string) (string, bool) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", false
	}
	want := util.Slugify(name)
	for _, e := range entries {
		if e.IsDir() || isDefinitionFile(e.Name()) || !isDataFile(e.Name()) {
			continue
		}
		if util.BaseName(e.Name()) == want {
			return e.Name(), true
		}
	}
	return "", false
}

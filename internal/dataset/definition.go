package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kong/dashctl/internal/datatable"
	"sigs.k8s.io/yaml"
)

const definitionSuffix = ".table"

// Definition is the optional <name>.table.yaml file describing how a data
// file is presented.
type Definition struct {
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Query       string             `json:"query,omitempty"`
	PageSize    int                `json:"pageSize,omitempty"`
	Columns     []ColumnDefinition `json:"columns,omitempty"`
}

// ColumnDefinition declares one column. Template is a text/template with
// sprig functions executed against .value and .record.
type ColumnDefinition struct {
	Key      string `json:"key"`
	Label    string `json:"label,omitempty"`
	Sortable *bool  `json:"sortable,omitempty"`
	Template string `json:"template,omitempty"`
}

// ParseDefinition decodes and validates a definition document. Unknown
// fields are rejected.
func ParseDefinition(raw []byte) (*Definition, error) {
	var def Definition
	if err := yaml.UnmarshalStrict(raw, &def); err != nil {
		return nil, err
	}
	if def.PageSize < 0 {
		return nil, fmt.Errorf("pageSize must not be negative, got %d", def.PageSize)
	}
	seen := map[string]bool{}
	for i, c := range def.Columns {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return nil, fmt.Errorf("column %d has no key", i+1)
		}
		if seen[key] {
			return nil, fmt.Errorf("column %q is declared twice", key)
		}
		seen[key] = true
		def.Columns[i].Key = key
	}
	return &def, nil
}

func definitionCandidates(file string) []string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	return []string{base + definitionSuffix + ".yaml", base + definitionSuffix + ".yml"}
}

func readDefinition(fsys fs.FS, file string) (*Definition, error) {
	for _, candidate := range definitionCandidates(file) {
		raw, err := fs.ReadFile(fsys, candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading definition %q: %w", candidate, err)
		}
		def, err := ParseDefinition(raw)
		if err != nil {
			return nil, fmt.Errorf("definition %q: %w", candidate, err)
		}
		return def, nil
	}
	return nil, nil
}

func buildColumns(def *Definition, keys []string) ([]datatable.Column, error) {
	if def == nil || len(def.Columns) == 0 {
		columns := make([]datatable.Column, len(keys))
		for i, key := range keys {
			columns[i] = datatable.Column{Key: key, Label: Label(key), Sortable: true}
		}
		return columns, nil
	}

	columns := make([]datatable.Column, 0, len(def.Columns))
	for _, cd := range def.Columns {
		col := datatable.Column{
			Key:      cd.Key,
			Label:    cd.Label,
			Sortable: cd.Sortable == nil || *cd.Sortable,
		}
		if col.Label == "" {
			col.Label = Label(cd.Key)
		}
		if cd.Template != "" {
			render, err := CompileTemplate(cd.Key, cd.Template)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", cd.Key, err)
			}
			col.Render = render
		}
		columns = append(columns, col)
	}
	return columns, nil
}

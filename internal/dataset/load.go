package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/util"
	"gopkg.in/yaml.v3"
)

// LoadOptions tune how records are located in a file.
type LoadOptions struct {
	// Query is a JMESPath expression selecting the record array. It takes
	// precedence over the query of a definition file.
	Query string
}

// LoadFile reads a dataset from a .json, .yaml, .yml or .csv file. A sibling
// <name>.table.yaml definition, when present, supplies columns and titles.
func LoadFile(path string, opts LoadOptions) (*Dataset, error) {
	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	ds, err := load(os.DirFS(dir), file, opts)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

func load(fsys fs.FS, file string, opts LoadOptions) (*Dataset, error) {
	raw, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %q: %w", file, err)
	}

	def, err := readDefinition(fsys, file)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(opts.Query)
	if query == "" && def != nil {
		query = def.Query
	}

	var (
		doc   any
		order []string
	)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		doc, order, err = decodeCSV(raw)
	case ".json", ".yaml", ".yml":
		doc, order, err = decodeDocument(raw)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(file))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding dataset %q: %w", file, err)
	}

	records, err := extractRecords(doc, query)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", file, err)
	}

	columns, err := buildColumns(def, columnKeys(records, order))
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", file, err)
	}

	name := util.BaseName(file)
	ds := &Dataset{
		Name:    name,
		Title:   Label(name),
		Columns: columns,
		Records: records,
	}
	if def != nil {
		if def.Title != "" {
			ds.Title = def.Title
		}
		ds.Description = def.Description
		ds.PageSize = def.PageSize
	}
	return ds, nil
}

// decodeDocument parses JSON or YAML through the node API so mapping keys
// can be reported in document order.
func decodeDocument(raw []byte) (any, []string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, nil, err
	}
	if node.Kind == 0 {
		return nil, nil, errors.New("document is empty")
	}
	var order []string
	seen := map[string]bool{}
	collectKeys(&node, seen, &order)

	var doc any
	if err := node.Decode(&doc); err != nil {
		return nil, nil, err
	}
	return doc, order, nil
}

func collectKeys(n *yaml.Node, seen map[string]bool, order *[]string) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if !seen[key] {
				seen[key] = true
				*order = append(*order, key)
			}
		}
	}
	for _, child := range n.Content {
		collectKeys(child, seen, order)
	}
}

// decodeCSV treats the first row as the header. Cells that look like
// integers, decimals or booleans are converted; everything else stays text.
func decodeCSV(raw []byte) (any, []string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("document is empty")
	}
	if err != nil {
		return nil, nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if header[i] == "" {
			return nil, nil, fmt.Errorf("header column %d is empty", i+1)
		}
	}

	rows := []any{}
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(header))
		for i, key := range header {
			if i < len(fields) {
				row[key] = csvValue(fields[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func csvValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if !looksNumeric(s) {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// looksNumeric rejects identifiers that happen to parse as numbers, such as
// zero padded codes, NaN or Inf.
func looksNumeric(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return false
	}
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return false
	}
	for _, r := range digits {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func extractRecords(doc any, query string) ([]datatable.Record, error) {
	if query != "" {
		result, err := jmespath.Search(query, doc)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", query, err)
		}
		doc = result
	}
	items, ok := doc.([]any)
	if !ok {
		if query == "" {
			return nil, errors.New("expected an array of records, use a query to locate one")
		}
		return nil, fmt.Errorf("query %q did not select an array of records", query)
	}
	records := make([]datatable.Record, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", i+1)
		}
		records = append(records, datatable.Record(m))
	}
	return records, nil
}

// columnKeys returns the union of record keys, ordered by where they first
// appear in the source document.
func columnKeys(records []datatable.Record, order []string) []string {
	present := map[string]bool{}
	for _, rec := range records {
		for k := range rec {
			present[k] = true
		}
	}
	keys := make([]string, 0, len(present))
	for _, k := range order {
		if present[k] {
			keys = append(keys, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

package datatable

import (
	"slices"
	"strings"
)

// Direction is the ordering applied by a SortSpec.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortSpec names the column key and direction used to order rows.
type SortSpec struct {
	Key       string
	Direction Direction
}

// NextSort returns the sort spec that follows current when the header of key
// is activated: none -> ascending -> descending -> none. Activating a
// different column always starts at ascending.
func NextSort(current *SortSpec, key string) *SortSpec {
	if current != nil && current.Key == key {
		if current.Direction == Ascending {
			return &SortSpec{Key: key, Direction: Descending}
		}
		return nil
	}
	return &SortSpec{Key: key, Direction: Ascending}
}

// Filter keeps the records where at least one field, in text form, contains
// term case-insensitively. An empty term keeps everything. The returned slice
// is always a fresh slice.
func Filter(records []Record, term string) []Record {
	out := make([]Record, 0, len(records))
	if term == "" {
		return append(out, records...)
	}
	needle := strings.ToLower(term)
	for _, rec := range records {
		if matches(rec, needle) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec Record, needle string) bool {
	for _, value := range rec {
		if strings.Contains(strings.ToLower(Text(value)), needle) {
			return true
		}
	}
	return false
}

// Sort orders records by the text form of the spec's field using byte-wise
// lexicographic comparison, so 10 sorts before 2. Falsy values sort as the
// empty string. Equal keys keep their input order. A nil spec returns the
// records in input order. The input is not modified.
func Sort(records []Record, spec *SortSpec) []Record {
	out := append([]Record(nil), records...)
	if spec == nil {
		return out
	}
	key := spec.Key
	slices.SortStableFunc(out, func(a, b Record) int {
		av, _ := a.Value(key)
		bv, _ := b.Value(key)
		c := strings.Compare(sortText(av), sortText(bv))
		if spec.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

// Paginate returns the 1-based page window of size records. Pages outside the
// available range yield an empty slice.
func Paginate(records []Record, page, size int) []Record {
	if size < 1 || page < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(records) {
		return nil
	}
	end := min(start+size, len(records))
	return records[start:end]
}

// TotalPages is the number of size-record windows needed for n records.
func TotalPages(n, size int) int {
	if size < 1 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

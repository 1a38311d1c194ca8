package datatable

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = Text(r["name"])
	}
	return out
}

func TestText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"Alpha", "Alpha"},
		{true, "true"},
		{false, "false"},
		{45, "45"},
		{int64(-3), "-3"},
		{uint8(7), "7"},
		{99.99, "99.99"},
		{45.0, "45"},
		{0.0, "0"},
		{1e21, "1e+21"},
		{float32(1.5), "1.5"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
		{json.Number("12.50"), "12.50"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Text(tc.in), "%#v", tc.in)
	}
}

func TestFilter(t *testing.T) {
	data := []Record{{"name": "Alpha"}, {"name": "Beta"}, {"name": "Gamma"}}

	t.Run("substring is case-insensitive", func(t *testing.T) {
		require.Equal(t, []string{"Beta"}, names(Filter(data, "ta")))
		require.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names(Filter(data, "A")))
	})

	t.Run("empty term keeps everything", func(t *testing.T) {
		out := Filter(data, "")
		require.Len(t, out, 3)
		out[0] = Record{"name": "changed"}
		require.Equal(t, "Alpha", data[0]["name"], "filter must not alias the input")
	})

	t.Run("search is global across fields", func(t *testing.T) {
		rows := []Record{
			{"name": "John", "email": "john@example.com", "id": 1},
			{"name": "Sarah", "email": "sarah@example.com", "id": 22},
		}
		require.Equal(t, []string{"Sarah"}, names(Filter(rows, "22")))
		require.Equal(t, []string{"John", "Sarah"}, names(Filter(rows, "EXAMPLE")))
	})

	t.Run("non-string values use their text form", func(t *testing.T) {
		rows := []Record{
			{"name": "a", "active": true},
			{"name": "b", "note": nil},
			{"name": "c", "price": 19.99},
		}
		require.Equal(t, []string{"a"}, names(Filter(rows, "TRUE")))
		require.Equal(t, []string{"b"}, names(Filter(rows, "null")))
		require.Equal(t, []string{"c"}, names(Filter(rows, "9.9")))
	})

	t.Run("no match yields empty", func(t *testing.T) {
		require.Empty(t, Filter(data, "zzz"))
	})
}

func TestSortIsLexicographic(t *testing.T) {
	data := []Record{{"name": 10}, {"name": 2}, {"name": 33}}

	asc := Sort(data, &SortSpec{Key: "name", Direction: Ascending})
	require.Equal(t, []string{"10", "2", "33"}, names(asc))

	desc := Sort(data, &SortSpec{Key: "name", Direction: Descending})
	require.Equal(t, []string{"33", "2", "10"}, names(desc))

	require.Equal(t, []string{"10", "2", "33"}, names(data), "input order must be preserved")
}

func TestSortIsCaseSensitiveAndStable(t *testing.T) {
	data := []Record{
		{"name": "b", "group": "x"},
		{"name": "B", "group": "y"},
		{"name": "a", "group": "y"},
		{"name": "A", "group": "x"},
	}
	asc := Sort(data, &SortSpec{Key: "name"})
	require.Equal(t, []string{"A", "B", "a", "b"}, names(asc))

	byGroup := Sort(data, &SortSpec{Key: "group"})
	require.Equal(t, []string{"b", "A", "B", "a"}, names(byGroup))

	byGroupDesc := Sort(data, &SortSpec{Key: "group", Direction: Descending})
	require.Equal(t, []string{"B", "a", "b", "A"}, names(byGroupDesc))
}

func TestSortTreatsMissingAsEmpty(t *testing.T) {
	data := []Record{
		{"name": "one", "rank": "b"},
		{"name": "two"},
		{"name": "three", "rank": nil},
		{"name": "four", "rank": "a"},
	}
	asc := Sort(data, &SortSpec{Key: "rank"})
	require.Equal(t, []string{"two", "three", "four", "one"}, names(asc))
}

func TestSortTreatsFalsyAsEmpty(t *testing.T) {
	data := []Record{
		{"name": "dash", "v": "-"},
		{"name": "zero", "v": 0},
		{"name": "no", "v": false},
		{"name": "upper", "v": "A"},
		{"name": "blank", "v": ""},
		{"name": "numzero", "v": json.Number("0")},
		{"name": "nan", "v": math.NaN()},
		{"name": "yes", "v": true},
		{"name": "one", "v": 1},
	}
	asc := Sort(data, &SortSpec{Key: "v"})
	require.Equal(t, []string{"zero", "no", "blank", "numzero", "nan", "dash", "one", "upper", "yes"}, names(asc))

	desc := Sort(data, &SortSpec{Key: "v", Direction: Descending})
	require.Equal(t, []string{"yes", "upper", "one", "dash", "zero", "no", "blank", "numzero", "nan"}, names(desc))
}

func TestTextUsesShortExponent(t *testing.T) {
	require.Equal(t, "1e-7", Text(1e-7))
	require.Equal(t, "-2.5e-10", Text(-2.5e-10))
	require.Equal(t, "1e+21", Text(1e21))
	require.Equal(t, "1.5e+300", Text(1.5e300))
	require.Equal(t, "0.000001", Text(0.000001))

	require.Len(t, Filter([]Record{{"v": 1e-7}, {"v": 2}}, "1e-7"), 1)
}

func TestSortWithoutSpecKeepsOrder(t *testing.T) {
	data := []Record{{"name": "c"}, {"name": "a"}, {"name": "b"}}
	require.Equal(t, []string{"c", "a", "b"}, names(Sort(data, nil)))
}

func TestNextSortCycle(t *testing.T) {
	var spec *SortSpec
	spec = NextSort(spec, "price")
	require.Equal(t, &SortSpec{Key: "price", Direction: Ascending}, spec)
	spec = NextSort(spec, "price")
	require.Equal(t, &SortSpec{Key: "price", Direction: Descending}, spec)
	spec = NextSort(spec, "price")
	require.Nil(t, spec)

	spec = NextSort(&SortSpec{Key: "price", Direction: Descending}, "name")
	require.Equal(t, &SortSpec{Key: "name", Direction: Ascending}, spec)
}

func TestPaginate(t *testing.T) {
	data := []Record{{"name": "1"}, {"name": "2"}, {"name": "3"}, {"name": "4"}, {"name": "5"}}

	pages := [][]string{
		names(Paginate(data, 1, 2)),
		names(Paginate(data, 2, 2)),
		names(Paginate(data, 3, 2)),
	}
	want := [][]string{{"1", "2"}, {"3", "4"}, {"5"}}
	if diff := cmp.Diff(want, pages); diff != "" {
		t.Fatalf("unexpected pages (-want +got):\n%s", diff)
	}
	require.Equal(t, 3, TotalPages(len(data), 2))
	require.Empty(t, Paginate(data, 4, 2))
	require.Empty(t, Paginate(data, 0, 2))
	require.Empty(t, Paginate(data, 1, 0))
	require.Equal(t, 0, TotalPages(0, 10))
	require.Equal(t, 1, TotalPages(10, 10))
	require.Equal(t, 2, TotalPages(11, 10))
}

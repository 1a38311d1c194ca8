package dataset

import (
	"encoding/json"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/kong/dashctl/internal/datatable"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const noValue = "<no value>"

// CompileTemplate builds a cell renderer from a text/template. The template
// sees the cell value as .value and the whole record as .record. Execution
// errors fall back to the plain cell text.
func CompileTemplate(key, text string) (datatable.RenderFunc, error) {
	tmpl, err := template.New(key).
		Funcs(funcMap()).
		Option("missingkey=zero").
		Parse(text)
	if err != nil {
		return nil, err
	}
	fallback := datatable.Column{Key: key}
	return func(value any, rec datatable.Record) string {
		var b strings.Builder
		data := map[string]any{"value": value, "record": rec}
		if err := tmpl.Execute(&b, data); err != nil {
			return fallback.Cell(rec)
		}
		return strings.ReplaceAll(b.String(), noValue, "")
	}, nil
}

func funcMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["money"] = money
	return fm
}

// money formats a number as US dollars with thousands separators. Values
// that are not numeric render unchanged.
func money(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return datatable.Text(v)
	}
	return message.NewPrinter(language.English).Sprintf("$%.2f", f)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

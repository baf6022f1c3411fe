// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/trackscan/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
	// Characters that would make a property key ambiguous inside a
	// properties cell.
	bareKey = regexp.MustCompile(`^[^\s:{}<>"\\]+$`)
)

// EncodeEvents converts tracking events into a TOON table.
func EncodeEvents(events []model.Event) string {
	rows := make([][]string, 0, len(events))
	for i := range events {
		ev := &events[i]
		rows = append(rows, []string{
			ev.EventName,
			string(ev.Source),
			ev.FilePath,
			fmt.Sprintf("%d", ev.Line),
			ev.FunctionName,
			FormatProperties(ev.Properties),
		})
	}
	return formatTabular("events", []string{"event", "source", "file", "line", "function", "properties"}, rows)
}

// EncodeCatalog converts catalog entries into a TOON table. Occurrences are
// rendered as space-separated file:line pairs.
func EncodeCatalog(entries []model.CatalogEntry) string {
	rows := make([][]string, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		sites := make([]string, len(e.Occurrences))
		for j, occ := range e.Occurrences {
			sites[j] = fmt.Sprintf("%s:%d", occ.FilePath, occ.Line)
		}
		rows = append(rows, []string{
			e.EventName,
			string(e.Source),
			strings.Join(sites, " "),
			FormatProperties(e.Properties),
		})
	}
	return formatTabular("catalog", []string{"event", "source", "occurrences", "properties"}, rows)
}

// FormatProperties renders a property map as space-separated key:type
// pairs, e.g. "plan:string items:array<object{sku:string}>".
func FormatProperties(props *model.Properties) string {
	if props == nil {
		return ""
	}
	parts := make([]string, 0, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		parts = append(parts, formatKey(pair.Key)+":"+formatType(pair.Value))
	}
	return strings.Join(parts, " ")
}

func formatType(t *model.Type) string {
	if t == nil {
		return string(model.Any)
	}
	switch t.Kind {
	case model.Object:
		if t.Properties == nil {
			return string(model.Object)
		}
		return "object{" + FormatProperties(t.Properties) + "}"
	case model.Array:
		if t.Items == nil {
			return string(model.Array)
		}
		return "array<" + formatType(t.Items) + ">"
	default:
		return string(t.Kind)
	}
}

func formatKey(key string) string {
	if bareKey.MatchString(key) {
		return key
	}
	return quote(key)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

// CLAUDE:SUMMARY Header binding: resolves file headers to canonical fields once per file, then maps every row through it.
package member

import (
	"log/slog"
	"strings"
)

// Binding is the column resolution computed once from a file's header row.
// It is reused for every data row, so values in rows never influence which
// column feeds which field.
type Binding struct {
	headers []string
	columns [fieldCount]int
	extras  []int
}

// Bind resolves headers against aliases. For each canonical field the first
// header (in file order) whose folded text equals one of its aliases is
// bound; fields with no match stay unbound. Headers matching no alias of any
// field become passthrough columns. A nil aliases means DefaultAliases.
func Bind(headers []string, aliases Aliases) *Binding {
	if aliases == nil {
		aliases = builtinAliases
	}
	byAlias := make(map[string][]Field)
	for f, list := range aliases {
		for _, a := range list {
			key := Fold(a)
			byAlias[key] = append(byAlias[key], f)
		}
	}

	b := &Binding{headers: append([]string(nil), headers...)}
	for i := range b.columns {
		b.columns[i] = -1
	}

	for i, h := range headers {
		fields, ok := byAlias[Fold(h)]
		if !ok {
			b.extras = append(b.extras, i)
			continue
		}
		for _, f := range fields {
			if b.columns[f] < 0 {
				b.columns[f] = i
				continue
			}
			slog.Warn("header shadowed by earlier column",
				"field", f.String(), "bound", headers[b.columns[f]], "ignored", h)
		}
	}
	return b
}

// Headers returns the header row the binding was built from.
func (b *Binding) Headers() []string {
	return append([]string(nil), b.headers...)
}

// Column returns the column index bound to f.
func (b *Binding) Column(f Field) (int, bool) {
	if f < 0 || f >= fieldCount {
		return -1, false
	}
	idx := b.columns[f]
	return idx, idx >= 0
}

// Source returns the original header text bound to f, or "".
func (b *Binding) Source(f Field) string {
	if idx, ok := b.Column(f); ok {
		return b.headers[idx]
	}
	return ""
}

// Unbound lists canonical fields no header matched.
func (b *Binding) Unbound() []Field {
	var out []Field
	for f, idx := range b.columns {
		if idx < 0 {
			out = append(out, Field(f))
		}
	}
	return out
}

// Passthrough lists headers carried into Record.Extra.
func (b *Binding) Passthrough() []string {
	out := make([]string, 0, len(b.extras))
	for _, idx := range b.extras {
		out = append(out, b.headers[idx])
	}
	return out
}

// Record maps one data row. Cells beyond the row length read as "".
func (b *Binding) Record(row []string) Record {
	var r Record
	for f, idx := range b.columns {
		if idx >= 0 {
			r.Set(Field(f), cell(row, idx))
		}
	}
	if len(b.extras) > 0 {
		r.Extra = make(map[string]string, len(b.extras))
		for _, idx := range b.extras {
			name := b.headers[idx]
			if _, dup := r.Extra[name]; dup {
				continue
			}
			r.Extra[name] = cell(row, idx)
		}
	}
	return r
}

// RecordFromMap maps a row given as header -> value, as produced by
// map-oriented readers. Keys are the original header strings.
func (b *Binding) RecordFromMap(row map[string]string) Record {
	cells := make([]string, len(b.headers))
	for i, h := range b.headers {
		cells[i] = row[h]
	}
	return b.Record(cells)
}

// Normalize binds headers with the default aliases and maps a single row.
// Callers mapping many rows should Bind once and reuse the Binding.
func Normalize(headers []string, row map[string]string) Record {
	return Bind(headers, nil).RecordFromMap(row)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Format reads a tabular export into a header row and data rows.
type Format interface {
	// ID returns the format identifier (e.g. "csv").
	ID() string
	// Extensions returns the lowercase file extensions handled, without dot.
	Extensions() []string
	// Read returns the header row and the data rows. Input that cannot yield
	// a header row is ErrMalformed.
	Read(r io.Reader, opts Options) (header []string, rows [][]string, err error)
}

var (
	registryMu sync.RWMutex
	formats    = make(map[string]Format)
)

// Register adds a format to the global registry.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()
	formats[f.ID()] = f
}

// Get returns a registered format by ID.
func Get(id string) (Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := formats[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("unknown input format: %q", id)
	}
	return f, nil
}

// All returns all registered formats sorted by ID.
func All() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Format, 0, len(formats))
	for _, f := range formats {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Detect picks a format from a file name or URL path by extension.
func Detect(name string) (Format, error) {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return nil, fmt.Errorf("no extension in %q", name)
	}
	for _, f := range All() {
		for _, e := range f.Extensions() {
			if e == ext {
				return f, nil
			}
		}
	}
	return nil, fmt.Errorf("no input format for extension %q", ext)
}

func init() {
	Register(delimited{id: "csv", exts: []string{"csv"}, comma: ','})
	Register(delimited{id: "tsv", exts: []string{"tsv", "tab"}, comma: '\t'})
	Register(delimited{id: "txt", exts: []string{"txt"}})
	Register(workbook{})
}

// CLAUDE:SUMMARY Dataset loading: picks a format, binds headers once, maps rows to canonical records and stamps a dataset id.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/churn-insights/pkg/member"
)

// ErrMalformed marks input that cannot be read as a table at all.
// Missing or extra columns and odd cell values are never malformed.
var ErrMalformed = errors.New("malformed input")

// Options controls how an export is read.
type Options struct {
	// Format is a registered format ID. Empty detects from Source and
	// falls back to csv.
	Format string
	// Delimiter overrides the format's field separator.
	Delimiter string
	// Encoding is an htmlindex encoding name; empty means UTF-8.
	Encoding string
	// Aliases replaces the built-in header aliases when non-nil.
	Aliases member.Aliases
	// Source names the input for logs and detection (file name or URL).
	Source string
	Logger *slog.Logger
}

// Dataset is one fully parsed export. It is not modified after Load.
type Dataset struct {
	ID       string          `json:"id"`
	Source   string          `json:"source"`
	Format   string          `json:"format"`
	Headers  []string        `json:"headers"`
	Records  []member.Record `json:"-"`
	LoadedAt time.Time       `json:"loadedAt"`

	Binding *member.Binding `json:"-"`
}

// Load reads a whole export from r. Either the complete dataset is returned
// or an error; there is no partial result.
func Load(r io.Reader, opts Options) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	format, err := pickFormat(opts)
	if err != nil {
		return nil, err
	}

	header, rows, err := format.Read(r, opts)
	if err != nil {
		return nil, err
	}
	if blank(header) {
		return nil, fmt.Errorf("%w: header row has no column names", ErrMalformed)
	}

	binding := member.Bind(header, opts.Aliases)
	records := make([]member.Record, 0, len(rows))
	var ragged, empty int
	for _, row := range rows {
		if blank(row) {
			empty++
		}
		if len(row) != len(header) {
			ragged++
		}
		records = append(records, binding.Record(row))
	}

	if ragged > 0 {
		logger.Warn("rows with unexpected field count", "source", opts.Source, "rows", ragged, "columns", len(header))
	}
	if extra := binding.Passthrough(); len(extra) > 0 {
		logger.Info("unrecognised columns kept as extra fields", "source", opts.Source, "columns", extra)
	}

	ds := &Dataset{
		ID:       uuid.NewString(),
		Source:   opts.Source,
		Format:   format.ID(),
		Headers:  binding.Headers(),
		Binding:  binding,
		Records:  records,
		LoadedAt: time.Now().UTC(),
	}
	logger.Info("dataset loaded",
		"id", ds.ID, "source", ds.Source, "format", ds.Format,
		"records", len(records), "blank_rows", empty, "unbound_fields", len(binding.Unbound()))
	return ds, nil
}

// LoadFile opens path and loads it, detecting the format from its name.
func LoadFile(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	return Load(f, opts)
}

func pickFormat(opts Options) (Format, error) {
	if opts.Format != "" {
		return Get(opts.Format)
	}
	if opts.Source != "" {
		if f, err := Detect(opts.Source); err == nil {
			return f, nil
		}
	}
	return Get("csv")
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Columns maps each bound canonical field to the header that feeds it.
func (d *Dataset) Columns() map[string]string {
	out := make(map[string]string)
	if d.Binding == nil {
		return out
	}
	for _, f := range member.Fields() {
		if src := d.Binding.Source(f); src != "" {
			out[f.String()] = src
		}
	}
	return out
}

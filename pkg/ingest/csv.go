// CLAUDE:SUMMARY Delimited text reader: optional transcoding, BOM stripping, delimiter sniffing, tolerant quoting and ragged rows.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// delimited reads CSV-family text. A zero comma sniffs the delimiter from
// the header line.
type delimited struct {
	id    string
	exts  []string
	comma rune
}

func (d delimited) ID() string           { return d.id }
func (d delimited) Extensions() []string { return d.exts }

func (d delimited) Read(in io.Reader, opts Options) ([]string, [][]string, error) {
	var reader io.Reader = in
	if enc := opts.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(in, e.NewDecoder())
	}
	br := bufio.NewReader(reader)

	comma := d.comma
	if opts.Delimiter != "" {
		comma = []rune(opts.Delimiter)[0]
	}
	if comma == 0 {
		comma = sniff(br)
	}

	r := csv.NewReader(br)
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: no header row", ErrMalformed)
	}
	if err != nil {
		return nil, nil, readError("read header", err)
	}
	// Header cells stay as written; binding folds them and passthrough
	// columns keep their original names.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, readError("read row", err)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// readError marks CSV syntax errors as ErrMalformed. Errors from the
// underlying reader (size limits, broken connections) keep their own
// identity and are not malformed input.
func readError(op string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// sniff guesses the delimiter from the first line, preferring comma.
func sniff(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	best, bestN := ',', bytes.Count(peek, []byte{','})
	for _, c := range []rune{'\t', ';', '|'} {
		if n := bytes.Count(peek, []byte(string(c))); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}

// CLAUDE:SUMMARY CLI subcommand that loads one export from disk or URL and prints its churn snapshot, journeys or grouped table as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/analytics"
	"github.com/hazyhaar/churn-insights/pkg/dates"
	"github.com/hazyhaar/churn-insights/pkg/filter"
	"github.com/hazyhaar/churn-insights/pkg/ingest"
	"github.com/hazyhaar/churn-insights/pkg/member"
	"github.com/hazyhaar/churn-insights/pkg/session"
	"github.com/schollz/progressbar/v3"
)

func cmdReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	format := fs.String("format", "", "input format (csv, tsv, txt, xlsx); default from extension")
	status := fs.String("status", "", "comma-separated statuses to keep")
	location := fs.String("location", "", "comma-separated locations to keep")
	membership := fs.String("membership", "", "comma-separated membership names to keep")
	from := fs.String("from", "", "earliest purchase date, inclusive")
	to := fs.String("to", "", "latest purchase date, inclusive")
	query := fs.String("q", "", "free-text search")
	lapsed := fs.Bool("lapsed", false, "lapsed members only")
	view := fs.String("view", "snapshot", "output: snapshot, journeys or table")
	groupBy := fs.String("group-by", "Primary Location", "canonical field for -view table")
	asOf := fs.String("as-of", "", "classify \"new\" members relative to this date instead of today")
	quiet := fs.Bool("quiet", false, "no progress bar")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: churn report [flags] <file-or-url>")
		fs.PrintDefaults()
		os.Exit(2)
	}
	source := fs.Arg(0)

	logger := newLogger(slog.LevelWarn)
	cfg := loadConfig(*cfgPath, logger)

	sc, err := cfg.session(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *asOf != "" {
		t, ok := dates.Parse(*asOf)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid -as-of date %q\n", *asOf)
			os.Exit(2)
		}
		sc.Now = func() time.Time { return t }
	}
	sess := session.New(sc)

	criteria, err := reportCriteria(*status, *location, *membership, *from, *to, *query, *lapsed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ds, err := loadSource(ctx, sess, source, &loadFlags{format: *format, progress: !*quiet})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: %d records, %d columns bound, %d passed through\n",
		ds.Source, len(ds.Records), len(ds.Columns()), len(ds.Binding.Passthrough()))

	var out any
	switch *view {
	case "snapshot":
		out, err = sess.Snapshot(criteria)
	case "journeys":
		var records []member.Record
		records, err = sess.Records(criteria)
		out = analytics.Journeys(records)
	case "table":
		f, ok := member.FieldByName(*groupBy)
		if !ok {
			err = fmt.Errorf("unknown -group-by field %q", *groupBy)
			break
		}
		out, err = sess.Table(criteria, f)
	default:
		err = fmt.Errorf("unknown -view %q", *view)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type loadFlags struct {
	format   string
	progress bool
}

// loadSource loads a local file or an http(s) URL into the session.
// Local files show a byte progress bar on stderr while parsing.
func loadSource(ctx context.Context, sess *session.Session, source string, lf *loadFlags) (*ingest.Dataset, error) {
	if lf == nil {
		lf = &loadFlags{}
	}
	opts := ingest.Options{Format: lf.format, Source: source}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return sess.LoadURL(ctx, source, opts)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if lf.progress {
		if info, err := f.Stat(); err == nil {
			bar := progressbar.NewOptions64(info.Size(),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetDescription("parsing"),
				progressbar.OptionClearOnFinish(),
			)
			defer bar.Finish()
			r = io.TeeReader(f, bar)
		}
	}
	return sess.Load(r, opts)
}

func reportCriteria(status, location, membership, from, to, query string, lapsed bool) (filter.Criteria, error) {
	var c filter.Criteria
	if lapsed {
		c = filter.LapsedOnly()
	}
	if s := splitFlag(status); len(s) > 0 {
		c.Statuses = s
	}
	c.Locations = splitFlag(location)
	c.Memberships = splitFlag(membership)
	c.Query = query
	for _, p := range []struct {
		name, v string
		dst     *time.Time
	}{{"from", from, &c.From}, {"to", to, &c.To}} {
		if p.v == "" {
			continue
		}
		t, ok := dates.Parse(p.v)
		if !ok {
			return c, fmt.Errorf("invalid -%s date %q", p.name, p.v)
		}
		*p.dst = t
	}
	return c, nil
}

func splitFlag(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

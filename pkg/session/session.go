// CLAUDE:SUMMARY In-memory dataset holder: builds a new dataset fully, swaps it in under a lock, and serves every derived view from it.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/analytics"
	"github.com/hazyhaar/churn-insights/pkg/classify"
	"github.com/hazyhaar/churn-insights/pkg/filter"
	"github.com/hazyhaar/churn-insights/pkg/ingest"
	"github.com/hazyhaar/churn-insights/pkg/member"
)

var (
	// ErrNoDataset is returned by views before any export was loaded.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrUnknownMember is returned when a journey has no records.
	ErrUnknownMember = errors.New("unknown member")
)

// Config holds the per-process defaults applied to every load and view.
type Config struct {
	// Ingest supplies Delimiter, Encoding and Aliases defaults.
	Ingest     ingest.Options
	Thresholds classify.Thresholds
	// Now is the classification clock. Nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Session holds at most one dataset. Loading replaces it atomically; a
// failed load leaves the previous dataset in place.
type Session struct {
	mu sync.RWMutex
	ds *ingest.Dataset

	defaults   ingest.Options
	thresholds classify.Thresholds
	now        func() time.Time
	logger     *slog.Logger
}

// New creates an empty session.
func New(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Thresholds == (classify.Thresholds{}) {
		cfg.Thresholds = classify.DefaultThresholds()
	}
	cfg.Ingest.Logger = cfg.Logger
	return &Session{
		defaults:   cfg.Ingest,
		thresholds: cfg.Thresholds,
		now:        cfg.Now,
		logger:     cfg.Logger,
	}
}

// Load parses r and installs the result. Fields left empty in opts take the
// session defaults.
func (s *Session) Load(r io.Reader, opts ingest.Options) (*ingest.Dataset, error) {
	if opts.Delimiter == "" {
		opts.Delimiter = s.defaults.Delimiter
	}
	if opts.Encoding == "" {
		opts.Encoding = s.defaults.Encoding
	}
	if opts.Aliases == nil {
		opts.Aliases = s.defaults.Aliases
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	if opts.Source == "" {
		opts.Source = "upload"
	}

	ds, err := ingest.Load(r, opts)
	if err != nil {
		s.logger.Warn("load rejected, keeping current dataset", "source", opts.Source, "error", err)
		return nil, fmt.Errorf("load %s: %w", opts.Source, err)
	}

	s.mu.Lock()
	s.ds = ds
	s.mu.Unlock()
	return ds, nil
}

// LoadURL fetches a remote export and loads it.
func (s *Session) LoadURL(ctx context.Context, url string, opts ingest.Options) (*ingest.Dataset, error) {
	data, err := ingest.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = url
	}
	return s.Load(bytes.NewReader(data), opts)
}

// Current returns the installed dataset.
func (s *Session) Current() (*ingest.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, ErrNoDataset
	}
	return s.ds, nil
}

// Records returns the records matching c in file order.
func (s *Session) Records(c filter.Criteria) ([]member.Record, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return filter.Apply(ds.Records, c), nil
}

// Snapshot aggregates the records matching c.
func (s *Session) Snapshot(c filter.Criteria) (analytics.Snapshot, error) {
	records, err := s.Records(c)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	return analytics.Aggregate(records, analytics.Options{
		Now:        s.now(),
		Thresholds: s.thresholds,
	}), nil
}

// Options lists filter values over the whole dataset, ignoring any criteria.
func (s *Session) Options() (filter.OptionSet, error) {
	ds, err := s.Current()
	if err != nil {
		return filter.OptionSet{}, err
	}
	return filter.Options(ds.Records), nil
}

// Journey returns every period of one member across the whole dataset.
func (s *Session) Journey(memberID string) (analytics.Journey, error) {
	ds, err := s.Current()
	if err != nil {
		return analytics.Journey{}, err
	}
	j, ok := analytics.JourneyOf(ds.Records, memberID)
	if !ok {
		return analytics.Journey{}, fmt.Errorf("%w: %q", ErrUnknownMember, memberID)
	}
	return j, nil
}

// Table groups the records matching c by field.
func (s *Session) Table(c filter.Criteria, groupBy member.Field) (analytics.Table, error) {
	records, err := s.Records(c)
	if err != nil {
		return analytics.Table{}, err
	}
	return analytics.BuildTable(records, groupBy), nil
}

// Thresholds returns the classifier thresholds in use.
func (s *Session) Thresholds() classify.Thresholds {
	return s.thresholds
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.now()
}

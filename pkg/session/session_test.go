package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/filter"
	"github.com/hazyhaar/churn-insights/pkg/ingest"
	"github.com/hazyhaar/churn-insights/pkg/member"
)

const export = `Member Id,First Name,Status,Primary Location,Purchase Date,Start Date,Churned Date,Amount Paid
M1,Asha,Active,Bandra,2025-10-20,2025-10-20,,1000
M2,Ravi,Lapsed,Bandra,2025-01-02,2025-01-02,2025-03-15,500
M2,Ravi,Active,Kemps,2025-06-01,2025-06-01,,700
M3,Neha,Active,,2025-02-01,2025-02-01,,300
`

func newSession(t *testing.T) *Session {
	t.Helper()
	s := New(Config{Now: func() time.Time { return time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC) }})
	if _, err := s.Load(strings.NewReader(export), ingest.Options{Source: "members.csv"}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestEmptySession(t *testing.T) {
	s := New(Config{})
	if _, err := s.Current(); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Current err = %v", err)
	}
	if _, err := s.Snapshot(filter.Criteria{}); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Snapshot err = %v", err)
	}
	if _, err := s.Journey("M1"); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Journey err = %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	s := newSession(t)
	snap, err := s.Snapshot(filter.Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if snap.TotalMembers != 4 || snap.ActiveMembers != 3 || snap.LapsedMembers != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.NewMembers != 1 {
		t.Errorf("NewMembers = %d, want 1 with the injected clock", snap.NewMembers)
	}
	if snap.TotalRevenue != 2500 {
		t.Errorf("TotalRevenue = %v", snap.TotalRevenue)
	}

	lapsed, err := s.Snapshot(filter.LapsedOnly())
	if err != nil {
		t.Fatal(err)
	}
	if lapsed.TotalMembers != 1 || lapsed.MonthlyChurn["Mar 2025"] != 1 {
		t.Errorf("lapsed snapshot = %+v", lapsed)
	}
}

func TestFailedLoadKeepsDataset(t *testing.T) {
	s := newSession(t)
	before, _ := s.Current()

	if _, err := s.Load(strings.NewReader(""), ingest.Options{Source: "broken.csv"}); !errors.Is(err, ingest.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	after, err := s.Current()
	if err != nil {
		t.Fatal(err)
	}
	if after.ID != before.ID || len(after.Records) != 4 {
		t.Errorf("dataset replaced by failed load")
	}
}

func TestReloadReplaces(t *testing.T) {
	s := newSession(t)
	before, _ := s.Current()
	ds, err := s.Load(strings.NewReader("Member Id,Status\nX,Active\n"), ingest.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if ds.ID == before.ID {
		t.Error("reload kept the old id")
	}
	recs, _ := s.Records(filter.Criteria{})
	if len(recs) != 1 {
		t.Errorf("records = %d, want 1", len(recs))
	}
}

func TestJourney(t *testing.T) {
	s := newSession(t)
	j, err := s.Journey("M2")
	if err != nil {
		t.Fatal(err)
	}
	if len(j.Periods) != 2 || !j.WinBack || j.LatestStatus != "Active" {
		t.Errorf("journey = %+v", j)
	}
	// Journeys ignore filter criteria and always see the whole dataset.
	if _, err := s.Journey("nobody"); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("err = %v", err)
	}
}

func TestOptionsAndTable(t *testing.T) {
	s := newSession(t)
	opts, err := s.Options()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Locations) != 2 {
		t.Errorf("Locations = %v", opts.Locations)
	}

	tbl, err := s.Table(filter.Criteria{Statuses: []string{"Active"}}, member.Location)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Groups) != 3 || tbl.Groups[2].Key != "Unknown" {
		t.Errorf("table = %+v", tbl.Groups)
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(export))
	}))
	defer srv.Close()

	s := New(Config{})
	ds, err := s.LoadURL(context.Background(), srv.URL+"/members.csv", ingest.Options{})
	if err != nil {
		t.Fatalf("LoadURL: %v", err)
	}
	if len(ds.Records) != 4 || ds.Format != "csv" {
		t.Errorf("dataset = %+v", ds)
	}
}

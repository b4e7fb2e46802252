package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/churn-insights/pkg/member"
	"github.com/hazyhaar/churn-insights/pkg/session"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8420" || cfg.MaxUploadMB != 32 || cfg.Currency.Symbol != "₹" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Thresholds.NewMemberDays != 30 || cfg.Thresholds.MinRiskFactors != 2 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.AllowURLUploads || cfg.api(discard()).AllowURLUploads {
		t.Error("url uploads enabled by default")
	}
}

func TestParseConfigAllowURLUploads(t *testing.T) {
	cfg, err := parseConfig([]byte("allow_url_uploads: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.api(discard()).AllowURLUploads {
		t.Error("allow_url_uploads not carried into the api config")
	}
}

func TestParseConfigOverlay(t *testing.T) {
	cfg, err := parseConfig([]byte(`
addr: ":9000"
csv:
  encoding: windows-1252
thresholds:
  absence_days: 14
aliases:
  Primary Location: [club, gym]
currency:
  symbol: "$"
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" || cfg.CSV.Encoding != "windows-1252" || cfg.Currency.Symbol != "$" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Thresholds.AbsenceDays != 14 || cfg.Thresholds.LowAttendancePct != 40 {
		t.Errorf("partial thresholds override lost defaults: %+v", cfg.Thresholds)
	}
	if cfg.MaxUploadMB != 32 {
		t.Errorf("MaxUploadMB = %d", cfg.MaxUploadMB)
	}

	sc, err := cfg.session(discard())
	if err != nil {
		t.Fatal(err)
	}
	b := member.Bind([]string{"Gym"}, sc.Ingest.Aliases)
	if _, ok := b.Column(member.Location); !ok {
		t.Error("configured alias not applied")
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "addr: [unterminated"},
		{"upload", "max_upload_mb: 0"},
		{"risk factors", "thresholds:\n  min_risk_factors: 5"},
		{"delimiter", "csv:\n  delimiter: ';;'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseConfig([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSessionConfigUnknownAlias(t *testing.T) {
	cfg := defaultConfig()
	cfg.Aliases = map[string][]string{"Shoe Size": {"size"}}
	if _, err := cfg.session(discard()); err == nil {
		t.Error("expected error for unknown canonical field")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), discard())
	if cfg.Addr != ":8420" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
}

func TestLoadSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.csv")
	os.WriteFile(path, []byte("Member Id,Status\nM1,Active\nM2,Lapsed\n"), 0o644)

	sc, err := defaultConfig().session(discard())
	if err != nil {
		t.Fatal(err)
	}
	sess := session.New(sc)
	ds, err := loadSource(context.Background(), sess, path, &loadFlags{progress: false})
	if err != nil {
		t.Fatalf("loadSource: %v", err)
	}
	if len(ds.Records) != 2 {
		t.Errorf("records = %d", len(ds.Records))
	}
	if _, err := loadSource(context.Background(), sess, filepath.Join(t.TempDir(), "nope.csv"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReportCriteria(t *testing.T) {
	c, err := reportCriteria("", "Bandra, Kemps", "", "2025-01-01", "", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Statuses) != 1 || c.Statuses[0] != "Lapsed" || len(c.Locations) != 2 || c.From.IsZero() {
		t.Errorf("criteria = %+v", c)
	}
	if _, err := reportCriteria("", "", "", "someday", "", "", false); err == nil {
		t.Error("expected error for bad date")
	}
	if empty, _ := reportCriteria("", "", "", "", "", "", false); !empty.IsEmpty() {
		t.Errorf("criteria = %+v, want empty", empty)
	}
}

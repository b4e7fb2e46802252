package ingest

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/xuri/excelize/v2"
)

const export = `Member Id, status ,Primary Location,Amount Paid,Start Date, Favourite Class 
M1,Active,Bandra,"1,200",2025-01-05,Barre
M2,Lapsed,Kemps,800,2025-01-10,Spin
,,,,,
M3,Active
`

func TestLoad_CSV(t *testing.T) {
	ds, err := Load(strings.NewReader(export), Options{Source: "members.csv"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.ID == "" || ds.Format != "csv" {
		t.Errorf("dataset = %+v", ds)
	}
	if len(ds.Records) != 4 {
		t.Fatalf("records = %d, want one per data row", len(ds.Records))
	}
	r := ds.Records[0]
	if r.MemberID != "M1" || r.Status != "Active" || r.Location != "Bandra" || r.AmountPaid != "1,200" {
		t.Errorf("record 0 = %+v", r)
	}
	if r.Extra[" Favourite Class "] != "Barre" {
		t.Errorf("Extra = %v", r.Extra)
	}
	if blankRow := ds.Records[2]; blankRow.MemberID != "" || blankRow.Status != "" {
		t.Errorf("blank row = %+v", blankRow)
	}
	short := ds.Records[3]
	if short.MemberID != "M3" || short.Location != "" || short.StartDate != "" {
		t.Errorf("short row = %+v", short)
	}
	if got := ds.Columns()["Status"]; got != " status " {
		t.Errorf("Columns[Status] = %q", got)
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	ds, err := Load(strings.NewReader("Member Id,Status\n"), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 0 {
		t.Errorf("records = %d, want 0", len(ds.Records))
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank lines", "\n\n"},
		{"blank header", ",,,\nM1,Active,,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), Options{})
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestLoad_BOMAndSemicolon(t *testing.T) {
	input := "\ufeffMember Id;Status;Primary Location\nM1;Active;Bandra\n"
	ds, err := Load(strings.NewReader(input), Options{Format: "txt"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := ds.Records[0]
	if r.MemberID != "M1" || r.Status != "Active" || r.Location != "Bandra" {
		t.Errorf("record = %+v", r)
	}
}

func TestLoad_Delimiter(t *testing.T) {
	input := "Member Id|Status\nM1|Lapsed\n"
	ds, err := Load(strings.NewReader(input), Options{Delimiter: "|"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Records[0].Status != "Lapsed" {
		t.Errorf("record = %+v", ds.Records[0])
	}
}

func TestLoad_Windows1252(t *testing.T) {
	input := []byte("Full Name,Status\nJos\xe9 Pereira,Active\n")
	ds, err := Load(bytes.NewReader(input), Options{Encoding: "windows-1252"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := ds.Records[0].FullName; got != "José Pereira" {
		t.Errorf("FullName = %q", got)
	}

	if _, err := Load(bytes.NewReader(input), Options{Encoding: "klingon"}); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Member Id", "Status", "Primary Location"},
		{"M1", "Active", "Bandra"},
		{"M2", "Lapsed"},
		{},
		{"M3", "Active", "Kemps"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	ds, err := Load(bytes.NewReader(buf.Bytes()), Options{Source: "export.xlsx"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Format != "xlsx" || len(ds.Records) != 3 {
		t.Fatalf("dataset = %+v", ds)
	}
	if ds.Records[1].Status != "Lapsed" || ds.Records[1].Location != "" {
		t.Errorf("record 1 = %+v", ds.Records[1])
	}
}

func TestLoad_BadWorkbook(t *testing.T) {
	_, err := Load(strings.NewReader("not a zip"), Options{Format: "xlsx"})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.tsv")
	if err := os.WriteFile(path, []byte("Member Id\tStatus\nM1\tActive\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if ds.Source != "members.tsv" || ds.Format != "tsv" || ds.Records[0].Status != "Active" {
		t.Errorf("dataset = %+v", ds)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.csv", "csv"},
		{"A.CSV", "csv"},
		{"b.tsv", "tsv"},
		{"c.txt", "txt"},
		{"d.xlsx", "xlsx"},
		{"https://example.com/e.csv?token=1", "csv"},
	}
	for _, tt := range tests {
		f, err := Detect(tt.name)
		if err != nil || f.ID() != tt.want {
			t.Errorf("Detect(%q) = %v,%v, want %s", tt.name, f, err, tt.want)
		}
	}
	if _, err := Detect("noext"); err == nil {
		t.Error("expected error without extension")
	}
	if _, err := Detect("x.pdf"); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestLoad_ReaderErrorIsNotMalformed(t *testing.T) {
	boom := errors.New("connection reset")
	in := io.MultiReader(strings.NewReader("Member Id,Status\nM1,Active\n"), iotest.ErrReader(boom))
	_, err := Load(in, Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped reader error", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, reader failure reported as malformed", err)
	}
}

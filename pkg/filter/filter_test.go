package filter

import (
	"testing"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/member"
)

func sample() []member.Record {
	statuses := []string{"Active", "Lapsed", "Active", "Active", "Lapsed", "Active", "Lapsed", "Active", "Lapsed", "Active"}
	out := make([]member.Record, len(statuses))
	for i, s := range statuses {
		out[i] = member.Record{MemberID: string(rune('A' + i)), Status: s}
	}
	return out
}

func TestApply_StatusPreservesOrder(t *testing.T) {
	records := sample()
	got := Apply(records, Criteria{Statuses: []string{"Active"}})
	want := []string{"A", "C", "D", "F", "H", "J"}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].MemberID != id {
			t.Errorf("record %d = %s, want %s", i, got[i].MemberID, id)
		}
	}
}

func TestApply_EmptyCriteria(t *testing.T) {
	records := sample()
	if got := Apply(records, Criteria{}); len(got) != len(records) {
		t.Errorf("empty criteria kept %d of %d", len(got), len(records))
	}
}

func TestApply_AndAcrossOrWithin(t *testing.T) {
	records := []member.Record{
		{MemberID: "1", Status: "Active", Location: "Bandra", MembershipName: "Unlimited"},
		{MemberID: "2", Status: "Lapsed", Location: "Bandra", MembershipName: "10 Class"},
		{MemberID: "3", Status: "Active", Location: "Kemps", MembershipName: "Unlimited"},
		{MemberID: "4", Status: "Frozen", Location: "Bandra", MembershipName: "Unlimited"},
	}
	got := Apply(records, Criteria{
		Statuses:  []string{"Active", "Lapsed"},
		Locations: []string{"Bandra"},
	})
	if len(got) != 2 || got[0].MemberID != "1" || got[1].MemberID != "2" {
		t.Errorf("got %+v", got)
	}

	got = Apply(records, Criteria{Locations: []string{"Bandra"}, Memberships: []string{"Unlimited"}})
	if len(got) != 2 || got[0].MemberID != "1" || got[1].MemberID != "4" {
		t.Errorf("got %+v", got)
	}
}

func TestApply_UnknownLocation(t *testing.T) {
	records := []member.Record{
		{MemberID: "1", Location: "Bandra"},
		{MemberID: "2", Location: ""},
		{MemberID: "3", Location: "  "},
		{MemberID: "4", Location: " Kemps "},
	}
	got := Apply(records, Criteria{Locations: []string{member.UnknownLocation}})
	if len(got) != 2 || got[0].MemberID != "2" || got[1].MemberID != "3" {
		t.Errorf("Unknown = %+v", got)
	}
	got = Apply(records, Criteria{Locations: []string{"Kemps"}})
	if len(got) != 1 || got[0].MemberID != "4" {
		t.Errorf("Kemps = %+v", got)
	}
}

func TestApply_DateRange(t *testing.T) {
	records := []member.Record{
		{MemberID: "before", PurchaseDate: "2025-01-31"},
		{MemberID: "from", PurchaseDate: "2025-02-01"},
		{MemberID: "to", PurchaseDate: "2025-02-28, 21:50:13"},
		{MemberID: "after", PurchaseDate: "2025-03-01"},
		{MemberID: "undated", PurchaseDate: ""},
		{MemberID: "garbage", PurchaseDate: "soon"},
	}
	c := Criteria{
		From: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
	}
	got := Apply(records, c)
	want := []string{"from", "to", "undated", "garbage"}
	if len(got) != len(want) {
		t.Fatalf("got %v", ids(got))
	}
	for i, id := range want {
		if got[i].MemberID != id {
			t.Errorf("got %v, want %v", ids(got), want)
			break
		}
	}

	open := Apply(records, Criteria{From: c.From})
	if len(open) != 5 {
		t.Errorf("open-ended range kept %v", ids(open))
	}
}

func TestApply_Search(t *testing.T) {
	records := []member.Record{
		{MemberID: "M-100", FirstName: "Asha", LastName: "Rao", Location: "Bandra", MembershipName: "Unlimited"},
		{MemberID: "M-200", FullName: "Vikram Shah", Location: "Kemps Corner", MembershipName: "10 Class Pack"},
	}
	tests := []struct {
		query string
		want  []string
	}{
		{"asha", []string{"M-100"}},
		{"RAO", []string{"M-100"}},
		{"m-2", []string{"M-200"}},
		{"corner", []string{"M-200"}},
		{"class", []string{"M-200"}},
		{"m-", []string{"M-100", "M-200"}},
		{"nobody", nil},
		{"   ", []string{"M-100", "M-200"}},
		{"bandrá", []string{"M-100"}},
	}
	for _, tt := range tests {
		got := ids(Apply(records, Criteria{Query: tt.query}))
		if len(got) != len(tt.want) {
			t.Errorf("query %q = %v, want %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("query %q = %v, want %v", tt.query, got, tt.want)
				break
			}
		}
	}
}

func TestLapsedOnly(t *testing.T) {
	got := Apply(sample(), LapsedOnly())
	if len(got) != 4 {
		t.Errorf("lapsed preset kept %d, want 4", len(got))
	}
	for _, r := range got {
		if r.Status != "Lapsed" {
			t.Errorf("unexpected status %q", r.Status)
		}
	}
}

func TestOptions(t *testing.T) {
	records := []member.Record{
		{Status: "Lapsed", Location: "Kemps", MembershipName: "Unlimited"},
		{Status: "Active", Location: "", MembershipName: "Unlimited"},
		{Status: "Active", Location: "Bandra", MembershipName: " "},
	}
	o := Options(records)
	if len(o.Statuses) != 2 || o.Statuses[0] != "Active" || o.Statuses[1] != "Lapsed" {
		t.Errorf("Statuses = %v", o.Statuses)
	}
	if len(o.Locations) != 2 || o.Locations[0] != "Bandra" {
		t.Errorf("Locations = %v", o.Locations)
	}
	if len(o.Memberships) != 1 {
		t.Errorf("Memberships = %v", o.Memberships)
	}
}

func ids(records []member.Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.MemberID)
	}
	return out
}

// CLAUDE:SUMMARY Filter engine: AND across dimensions, OR within, inclusive purchase-date range and folded free-text search.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/dates"
	"github.com/hazyhaar/churn-insights/pkg/member"
)

// Criteria selects records. An empty dimension places no constraint.
// Locations match the label used by the breakdowns, so "Unknown" selects
// records with a blank Primary Location.
// From and To bound Purchase Date inclusively; a zero value is open.
type Criteria struct {
	Statuses    []string  `json:"statuses,omitempty"`
	Locations   []string  `json:"locations,omitempty"`
	Memberships []string  `json:"memberships,omitempty"`
	From        time.Time `json:"from,omitzero"`
	To          time.Time `json:"to,omitzero"`
	Query       string    `json:"query,omitempty"`
}

// LapsedOnly is the preset showing lapsed members only.
func LapsedOnly() Criteria {
	return Criteria{Statuses: []string{member.StatusLapsed}}
}

// IsEmpty reports whether c matches every record.
func (c Criteria) IsEmpty() bool {
	return len(c.Statuses) == 0 && len(c.Locations) == 0 && len(c.Memberships) == 0 &&
		c.From.IsZero() && c.To.IsZero() && strings.TrimSpace(c.Query) == ""
}

// Apply returns the records matching c, in input order. The input slice is
// never modified; with empty criteria it is returned as is.
func Apply(records []member.Record, c Criteria) []member.Record {
	if c.IsEmpty() {
		return records
	}
	m := newMatcher(c)
	out := make([]member.Record, 0, len(records))
	for i := range records {
		if m.match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Match reports whether a single record satisfies c.
func Match(r member.Record, c Criteria) bool {
	return newMatcher(c).match(&r)
}

type matcher struct {
	statuses    map[string]struct{}
	locations   map[string]struct{}
	memberships map[string]struct{}
	from, to    time.Time
	query       string
}

func newMatcher(c Criteria) matcher {
	m := matcher{
		statuses:    set(c.Statuses),
		locations:   set(c.Locations),
		memberships: set(c.Memberships),
		query:       member.FoldSearch(c.Query),
	}
	if !c.From.IsZero() {
		m.from = dates.DateOnly(c.From)
	}
	if !c.To.IsZero() {
		// Inclusive: anything on the To calendar day passes.
		m.to = dates.DateOnly(c.To).AddDate(0, 0, 1)
	}
	return m
}

func (m matcher) match(r *member.Record) bool {
	if !in(m.statuses, r.Status) || !in(m.locations, r.LocationLabel()) || !in(m.memberships, r.MembershipName) {
		return false
	}
	if !m.from.IsZero() || !m.to.IsZero() {
		if p, ok := dates.Parse(r.PurchaseDate); ok {
			if !m.from.IsZero() && p.Before(m.from) {
				return false
			}
			if !m.to.IsZero() && !p.Before(m.to) {
				return false
			}
		}
	}
	if m.query != "" {
		return member.ContainsFolded(r.Name(), m.query) ||
			member.ContainsFolded(r.MemberID, m.query) ||
			member.ContainsFolded(r.UniqueID, m.query) ||
			member.ContainsFolded(r.Location, m.query) ||
			member.ContainsFolded(r.MembershipName, m.query)
	}
	return true
}

func set(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func in(s map[string]struct{}, v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

// OptionSet lists the distinct values available to each multi-select.
type OptionSet struct {
	Statuses    []string `json:"statuses"`
	Locations   []string `json:"locations"`
	Memberships []string `json:"memberships"`
}

// Options collects sorted, distinct, non-blank filter values.
func Options(records []member.Record) OptionSet {
	return OptionSet{
		Statuses:    distinct(records, member.Status),
		Locations:   distinct(records, member.Location),
		Memberships: distinct(records, member.MembershipName),
	}
}

func distinct(records []member.Record, f member.Field) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range records {
		v := strings.TrimSpace(records[i].Get(f))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/dates"
	"github.com/hazyhaar/churn-insights/pkg/member"
)

// Journey is the ordered purchase history of one member.
type Journey struct {
	MemberID     string          `json:"memberId"`
	Name         string          `json:"name"`
	Periods      []member.Record `json:"periods"`
	FirstStart   string          `json:"firstStart,omitempty"`
	LastEnd      string          `json:"lastEnd,omitempty"`
	TotalPaid    float64         `json:"totalPaid"`
	LatestStatus string          `json:"latestStatus"`
	WinBack      bool            `json:"winBack"`
}

// Journeys groups records by Member Id. Records with a blank id belong to no
// journey. The result is ordered by member id.
func Journeys(records []member.Record) []Journey {
	byID := make(map[string][]member.Record)
	var order []string
	for _, r := range records {
		id := strings.TrimSpace(r.MemberID)
		if id == "" {
			continue
		}
		if _, ok := byID[id]; !ok {
			order = append(order, id)
		}
		byID[id] = append(byID[id], r)
	}
	sort.Strings(order)

	out := make([]Journey, 0, len(order))
	for _, id := range order {
		out = append(out, buildJourney(id, byID[id]))
	}
	return out
}

// JourneyOf returns the journey of one member.
func JourneyOf(records []member.Record, memberID string) (Journey, bool) {
	memberID = strings.TrimSpace(memberID)
	var periods []member.Record
	for _, r := range records {
		if memberID != "" && strings.TrimSpace(r.MemberID) == memberID {
			periods = append(periods, r)
		}
	}
	if len(periods) == 0 {
		return Journey{}, false
	}
	return buildJourney(memberID, periods), true
}

// buildJourney orders periods by Start Date. Periods without a parseable
// start keep their relative order after the dated ones.
func buildJourney(id string, periods []member.Record) Journey {
	type dated struct {
		r     member.Record
		start time.Time
		ok    bool
	}
	ds := make([]dated, len(periods))
	for i, r := range periods {
		t, ok := dates.Parse(r.StartDate)
		ds[i] = dated{r, t, ok}
	}
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].ok != ds[j].ok {
			return ds[i].ok
		}
		return ds[i].ok && ds[i].start.Before(ds[j].start)
	})

	j := Journey{MemberID: id, Periods: make([]member.Record, len(ds))}
	var lastEnd time.Time
	lapsedSeen := false
	for i, d := range ds {
		j.Periods[i] = d.r
		j.TotalPaid += member.Number(d.r.AmountPaid)
		if j.Name == "" {
			j.Name = d.r.Name()
		}
		if d.ok && j.FirstStart == "" {
			j.FirstStart = d.r.StartDate
		}
		if end, ok := dates.Parse(d.r.EndDate); ok && end.After(lastEnd) {
			lastEnd = end
			j.LastEnd = d.r.EndDate
		}
		if d.ok && lapsedSeen {
			j.WinBack = true
		}
		if d.ok && d.r.Status == member.StatusLapsed {
			lapsedSeen = true
		}
	}
	j.LatestStatus = ds[len(ds)-1].r.Status
	return j
}

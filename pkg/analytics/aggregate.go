// CLAUDE:SUMMARY Pure churn aggregation: scalar totals, per-location counts, monthly churn and the location x month matrix.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/classify"
	"github.com/hazyhaar/churn-insights/pkg/dates"
	"github.com/hazyhaar/churn-insights/pkg/member"
)

// UnknownLocation labels records whose Primary Location is blank.
const UnknownLocation = member.UnknownLocation

// Options controls classification during aggregation.
type Options struct {
	Now        time.Time
	Thresholds classify.Thresholds
}

// DefaultOptions classifies against the wall clock with default thresholds.
func DefaultOptions() Options {
	return Options{Now: time.Now(), Thresholds: classify.DefaultThresholds()}
}

// LocationCounts is one row of the location breakdown.
type LocationCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Lapsed int `json:"lapsed"`
	New    int `json:"new"`
	Frozen int `json:"frozen"`
}

// MonthCell is one (location, month) bucket. New, Active and Frozen are
// attributed to the start month, Lapsed to the churn month.
type MonthCell struct {
	New       int     `json:"new"`
	Active    int     `json:"active"`
	Lapsed    int     `json:"lapsed"`
	Frozen    int     `json:"frozen"`
	Revenue   float64 `json:"revenue"`
	ChurnRate float64 `json:"churnRate"`
}

// Snapshot is the derived analytics view of one record collection.
type Snapshot struct {
	TotalMembers         int     `json:"totalMembers"`
	UniqueMembers        int     `json:"uniqueMembers"`
	ActiveMembers        int     `json:"activeMembers"`
	LapsedMembers        int     `json:"lapsedMembers"`
	NewMembers           int     `json:"newMembers"`
	HighRiskMembers      int     `json:"highRiskMembers"`
	FrozenMembers        int     `json:"frozenMembers"`
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalSessions        float64 `json:"totalSessions"`
	ChurnRate            float64 `json:"churnRate"`
	RetentionRate        float64 `json:"retentionRate"`
	AvgSessionsPerMember float64 `json:"avgSessionsPerMember"`
	AvgRevenuePerSession float64 `json:"avgRevenuePerSession"`
	AvgRevenuePerMember  float64 `json:"avgRevenuePerMember"`

	LocationBreakdown   map[string]LocationCounts       `json:"locationBreakdown"`
	MonthlyChurn        map[string]int                  `json:"monthlyChurn"`
	LocationMonthlyData map[string]map[string]MonthCell `json:"locationMonthlyData"`
	Months              []string                        `json:"months"`
	Locations           []string                        `json:"locations"`
}

// Aggregate computes a Snapshot from records. It never fails and never
// modifies its input.
func Aggregate(records []member.Record, opts Options) Snapshot {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Thresholds == (classify.Thresholds{}) {
		opts.Thresholds = classify.DefaultThresholds()
	}
	th := opts.Thresholds

	s := Snapshot{
		LocationBreakdown:   make(map[string]LocationCounts),
		MonthlyChurn:        make(map[string]int),
		LocationMonthlyData: make(map[string]map[string]MonthCell),
	}
	cells := make(matrix)
	ids := make(map[string]struct{})
	months := make(map[string]struct{})

	for _, r := range records {
		active := r.Status == member.StatusActive
		lapsed := r.Status == member.StatusLapsed
		isNew := th.IsNew(r, opts.Now)
		frozen := th.IsFrozen(r)
		paid := member.Number(r.AmountPaid)

		s.TotalMembers++
		if id := strings.TrimSpace(r.MemberID); id != "" {
			ids[id] = struct{}{}
		}
		if active {
			s.ActiveMembers++
		}
		if lapsed {
			s.LapsedMembers++
		}
		if isNew {
			s.NewMembers++
		}
		if frozen {
			s.FrozenMembers++
		}
		if th.IsHighRisk(r) {
			s.HighRiskMembers++
		}
		s.TotalRevenue += paid
		s.TotalSessions += member.Number(r.SessionsCompleted)

		loc := LocationOf(r)
		lc := s.LocationBreakdown[loc]
		lc.Total++
		if active {
			lc.Active++
		}
		if lapsed {
			lc.Lapsed++
		}
		if isNew {
			lc.New++
		}
		if frozen {
			lc.Frozen++
		}
		s.LocationBreakdown[loc] = lc

		if start, ok := dates.Parse(r.StartDate); ok {
			key := dates.MonthKey(start)
			months[key] = struct{}{}
			c := cells.cell(loc, key)
			if isNew {
				c.New++
			}
			if active {
				c.Active++
				c.Revenue += paid
			}
			if frozen {
				c.Frozen++
			}
		}
		if lapsed {
			if churned, ok := dates.Parse(r.ChurnedDate); ok {
				key := dates.MonthKey(churned)
				months[key] = struct{}{}
				s.MonthlyChurn[key]++
				c := cells.cell(loc, key)
				c.Lapsed++
				c.Revenue += paid
			}
		}
	}

	for loc, byMonth := range cells {
		out := make(map[string]MonthCell, len(byMonth))
		for key, c := range byMonth {
			c.ChurnRate = rate(c.Lapsed, c.Active+c.Lapsed)
			out[key] = *c
		}
		s.LocationMonthlyData[loc] = out
	}

	s.UniqueMembers = len(ids)
	s.ChurnRate = rate(s.LapsedMembers, s.TotalMembers)
	s.RetentionRate = rate(s.ActiveMembers, s.TotalMembers)
	s.AvgSessionsPerMember = ratio(s.TotalSessions, float64(s.TotalMembers))
	s.AvgRevenuePerSession = ratio(s.TotalRevenue, s.TotalSessions)
	s.AvgRevenuePerMember = ratio(s.TotalRevenue, float64(s.TotalMembers))

	s.Months = make([]string, 0, len(months))
	for m := range months {
		s.Months = append(s.Months, m)
	}
	dates.SortMonthKeys(s.Months)

	s.Locations = make([]string, 0, len(s.LocationBreakdown))
	for l := range s.LocationBreakdown {
		s.Locations = append(s.Locations, l)
	}
	sort.Strings(s.Locations)
	return s
}

// LocationOf returns the record's location label.
func LocationOf(r member.Record) string {
	return r.LocationLabel()
}

// MonthlyChurnSeries returns MonthlyChurn as chronologically ordered points.
func (s Snapshot) MonthlyChurnSeries() []MonthCount {
	keys := make([]string, 0, len(s.MonthlyChurn))
	for k := range s.MonthlyChurn {
		keys = append(keys, k)
	}
	dates.SortMonthKeys(keys)
	out := make([]MonthCount, len(keys))
	for i, k := range keys {
		out[i] = MonthCount{Month: k, Count: s.MonthlyChurn[k]}
	}
	return out
}

// MonthCount is one point of a monthly series.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Cell returns the matrix cell for (location, month), or a zero cell.
func (s Snapshot) Cell(location, month string) MonthCell {
	return s.LocationMonthlyData[location][month]
}

// matrix accumulates cells during the scan.
type matrix map[string]map[string]*MonthCell

func (m matrix) cell(loc, month string) *MonthCell {
	byMonth, ok := m[loc]
	if !ok {
		byMonth = make(map[string]*MonthCell)
		m[loc] = byMonth
	}
	c, ok := byMonth[month]
	if !ok {
		c = &MonthCell{}
		byMonth[month] = c
	}
	return c
}

// rate is part/whole as a percentage, 0 when whole is 0.
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

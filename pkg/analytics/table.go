package analytics

import (
	"sort"
	"strings"

	"github.com/hazyhaar/churn-insights/pkg/member"
)

// Group is one bucket of a Table.
type Group struct {
	Key     string          `json:"key"`
	Count   int             `json:"count"`
	Revenue float64         `json:"revenue"`
	Records []member.Record `json:"records"`
}

// Table is the canonical record view grouped by one field.
type Table struct {
	GroupBy string  `json:"groupBy"`
	Groups  []Group `json:"groups"`
}

// BuildTable groups records by field. Blank values fall under "Unknown".
// Groups are ordered by key; records keep their input order.
func BuildTable(records []member.Record, field member.Field) Table {
	idx := make(map[string]int)
	t := Table{GroupBy: field.String()}
	for _, r := range records {
		key := strings.TrimSpace(r.Get(field))
		if key == "" {
			key = UnknownLocation
		}
		i, ok := idx[key]
		if !ok {
			i = len(t.Groups)
			idx[key] = i
			t.Groups = append(t.Groups, Group{Key: key})
		}
		g := &t.Groups[i]
		g.Count++
		g.Revenue += member.Number(r.AmountPaid)
		g.Records = append(g.Records, r)
	}
	sort.SliceStable(t.Groups, func(i, j int) bool { return t.Groups[i].Key < t.Groups[j].Key })
	return t
}

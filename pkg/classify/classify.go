// CLAUDE:SUMMARY Member classifiers: new, frozen and high-risk predicates over canonical records, with explicit "now".
package classify

import (
	"time"

	"github.com/hazyhaar/churn-insights/pkg/dates"
	"github.com/hazyhaar/churn-insights/pkg/member"
)

// Thresholds tunes the classifiers. Zero values are not defaults; start
// from DefaultThresholds and override.
type Thresholds struct {
	NewMemberDays       int     `yaml:"new_member_days" json:"newMemberDays"`
	LowAttendancePct    float64 `yaml:"low_attendance_pct" json:"lowAttendancePct"`
	HighCancellationPct float64 `yaml:"high_cancellation_pct" json:"highCancellationPct"`
	AbsenceDays         float64 `yaml:"absence_days" json:"absenceDays"`
	NoShows             float64 `yaml:"no_shows" json:"noShows"`
	MinRiskFactors      int     `yaml:"min_risk_factors" json:"minRiskFactors"`
}

// DefaultThresholds returns the standard studio thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NewMemberDays:       30,
		LowAttendancePct:    40,
		HighCancellationPct: 40,
		AbsenceDays:         21,
		NoShows:             3,
		MinRiskFactors:      2,
	}
}

// RiskFactors records which engagement signals fired for a record.
type RiskFactors struct {
	LowAttendance    bool `json:"lowAttendance"`
	HighCancellation bool `json:"highCancellation"`
	LongAbsence      bool `json:"longAbsence"`
	FrequentNoShows  bool `json:"frequentNoShows"`
}

// Count returns the number of factors that fired.
func (f RiskFactors) Count() int {
	n := 0
	for _, b := range [...]bool{f.LowAttendance, f.HighCancellation, f.LongAbsence, f.FrequentNoShows} {
		if b {
			n++
		}
	}
	return n
}

// IsNew reports whether the purchase date parses and lies within
// NewMemberDays of now, in either direction.
func (t Thresholds) IsNew(r member.Record, now time.Time) bool {
	p, ok := dates.Parse(r.PurchaseDate)
	if !ok {
		return false
	}
	return dates.DaysBetween(now, p) <= t.NewMemberDays
}

// IsFrozen reports whether the member has ever frozen the membership.
func (t Thresholds) IsFrozen(r member.Record) bool {
	return member.Number(r.FreezeCount) > 0 || member.Number(r.DaysFrozen) > 0
}

// Risk evaluates the engagement factors regardless of status.
// Unparseable numbers count as 0, so a blank attendance rate is low.
func (t Thresholds) Risk(r member.Record) RiskFactors {
	return RiskFactors{
		LowAttendance:    member.Number(r.AttendanceRate) < t.LowAttendancePct,
		HighCancellation: member.Number(r.CancellationRate) > t.HighCancellationPct,
		LongAbsence:      member.Number(r.DaysSinceLastVisit) > t.AbsenceDays,
		FrequentNoShows:  member.Number(r.NoShows) >= t.NoShows,
	}
}

// IsHighRisk reports whether an Active member shows at least
// MinRiskFactors risk factors. Other statuses are never high-risk.
func (t Thresholds) IsHighRisk(r member.Record) bool {
	if r.Status != member.StatusActive {
		return false
	}
	return t.Risk(r).Count() >= t.MinRiskFactors
}

var defaults = DefaultThresholds()

// IsNew applies the default thresholds.
func IsNew(r member.Record, now time.Time) bool { return defaults.IsNew(r, now) }

// IsFrozen applies the default thresholds.
func IsFrozen(r member.Record) bool { return defaults.IsFrozen(r) }

// IsHighRisk applies the default thresholds.
func IsHighRisk(r member.Record) bool { return defaults.IsHighRisk(r) }

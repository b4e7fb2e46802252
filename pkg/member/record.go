// CLAUDE:SUMMARY Canonical membership record: 35 named fields plus a sidecar map for columns no alias recognised.
package member

import "strings"

// Field identifies one canonical attribute of a membership record.
type Field int

const (
	UniqueID Field = iota
	MemberID
	FirstName
	LastName
	FullName
	Email
	Phone
	MembershipID
	MembershipName
	MembershipType
	PurchaseDate
	StartDate
	EndDate
	ChurnedDate
	Status
	AmountPaid
	DiscountAmount
	PaymentMethod
	SoldBy
	Location
	SessionsCompleted
	SessionsRemaining
	ClassesBooked
	Cancellations
	LateCancellations
	NoShows
	AttendanceRate
	CancellationRate
	LastVisitDate
	DaysSinceLastVisit
	FreezeCount
	DaysFrozen
	RenewalStatus
	PreviousMembership
	TenureDays

	fieldCount
)

// Status values the analytics treat specially. Matching is exact.
const (
	StatusActive = "Active"
	StatusLapsed = "Lapsed"
)

// UnknownLocation labels records whose Primary Location is blank.
const UnknownLocation = "Unknown"

var fieldNames = [fieldCount]string{
	UniqueID:           "Unique Id",
	MemberID:           "Member Id",
	FirstName:          "First Name",
	LastName:           "Last Name",
	FullName:           "Full Name",
	Email:              "Email",
	Phone:              "Phone",
	MembershipID:       "Membership Id",
	MembershipName:     "Membership Name",
	MembershipType:     "Membership Type",
	PurchaseDate:       "Purchase Date",
	StartDate:          "Start Date",
	EndDate:            "End Date",
	ChurnedDate:        "Churned Date",
	Status:             "Status",
	AmountPaid:         "Amount Paid",
	DiscountAmount:     "Discount Amount",
	PaymentMethod:      "Payment Method",
	SoldBy:             "Sold By",
	Location:           "Primary Location",
	SessionsCompleted:  "Total Sessions Completed",
	SessionsRemaining:  "Sessions Remaining",
	ClassesBooked:      "Total Classes Booked",
	Cancellations:      "Cancellations",
	LateCancellations:  "Late Cancellations",
	NoShows:            "No Shows",
	AttendanceRate:     "Attendance Rate %",
	CancellationRate:   "Cancellation Rate %",
	LastVisitDate:      "Last Visit Date",
	DaysSinceLastVisit: "Days Since Last Visit",
	FreezeCount:        "Freeze Count",
	DaysFrozen:         "Days Frozen",
	RenewalStatus:      "Renewal Status",
	PreviousMembership: "Previous Membership",
	TenureDays:         "Tenure Days",
}

// String returns the canonical column name, e.g. "Primary Location".
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return fieldNames[f]
}

// Fields returns every canonical field in display order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// FieldByName resolves a canonical name, case-insensitively.
func FieldByName(name string) (Field, bool) {
	key := Fold(name)
	for f, n := range fieldNames {
		if Fold(n) == key {
			return Field(f), true
		}
	}
	return 0, false
}

// Record is one membership purchase event. Every canonical field is always
// present; an unmatched source column leaves it empty. Extra holds columns
// that matched no alias, under their original header text.
type Record struct {
	UniqueID           string `json:"Unique Id"`
	MemberID           string `json:"Member Id"`
	FirstName          string `json:"First Name"`
	LastName           string `json:"Last Name"`
	FullName           string `json:"Full Name"`
	Email              string `json:"Email"`
	Phone              string `json:"Phone"`
	MembershipID       string `json:"Membership Id"`
	MembershipName     string `json:"Membership Name"`
	MembershipType     string `json:"Membership Type"`
	PurchaseDate       string `json:"Purchase Date"`
	StartDate          string `json:"Start Date"`
	EndDate            string `json:"End Date"`
	ChurnedDate        string `json:"Churned Date"`
	Status             string `json:"Status"`
	AmountPaid         string `json:"Amount Paid"`
	DiscountAmount     string `json:"Discount Amount"`
	PaymentMethod      string `json:"Payment Method"`
	SoldBy             string `json:"Sold By"`
	Location           string `json:"Primary Location"`
	SessionsCompleted  string `json:"Total Sessions Completed"`
	SessionsRemaining  string `json:"Sessions Remaining"`
	ClassesBooked      string `json:"Total Classes Booked"`
	Cancellations      string `json:"Cancellations"`
	LateCancellations  string `json:"Late Cancellations"`
	NoShows            string `json:"No Shows"`
	AttendanceRate     string `json:"Attendance Rate %"`
	CancellationRate   string `json:"Cancellation Rate %"`
	LastVisitDate      string `json:"Last Visit Date"`
	DaysSinceLastVisit string `json:"Days Since Last Visit"`
	FreezeCount        string `json:"Freeze Count"`
	DaysFrozen         string `json:"Days Frozen"`
	RenewalStatus      string `json:"Renewal Status"`
	PreviousMembership string `json:"Previous Membership"`
	TenureDays         string `json:"Tenure Days"`

	Extra map[string]string `json:"extra,omitempty"`
}

// Get returns the value of a canonical field.
func (r *Record) Get(f Field) string {
	if p := r.ref(f); p != nil {
		return *p
	}
	return ""
}

// Set assigns a canonical field. Unknown fields are ignored.
func (r *Record) Set(f Field, v string) {
	if p := r.ref(f); p != nil {
		*p = v
	}
}

// Float parses a numeric canonical field; see Number.
func (r *Record) Float(f Field) float64 {
	return Number(r.Get(f))
}

// Name is the display name: Full Name, else First and Last joined.
func (r *Record) Name() string {
	if r.FullName != "" {
		return r.FullName
	}
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// LocationLabel is the trimmed Primary Location, or UnknownLocation when
// it is blank. Breakdowns and the location filter both key on it.
func (r *Record) LocationLabel() string {
	if loc := strings.TrimSpace(r.Location); loc != "" {
		return loc
	}
	return UnknownLocation
}

func (r *Record) ref(f Field) *string {
	switch f {
	case UniqueID:
		return &r.UniqueID
	case MemberID:
		return &r.MemberID
	case FirstName:
		return &r.FirstName
	case LastName:
		return &r.LastName
	case FullName:
		return &r.FullName
	case Email:
		return &r.Email
	case Phone:
		return &r.Phone
	case MembershipID:
		return &r.MembershipID
	case MembershipName:
		return &r.MembershipName
	case MembershipType:
		return &r.MembershipType
	case PurchaseDate:
		return &r.PurchaseDate
	case StartDate:
		return &r.StartDate
	case EndDate:
		return &r.EndDate
	case ChurnedDate:
		return &r.ChurnedDate
	case Status:
		return &r.Status
	case AmountPaid:
		return &r.AmountPaid
	case DiscountAmount:
		return &r.DiscountAmount
	case PaymentMethod:
		return &r.PaymentMethod
	case SoldBy:
		return &r.SoldBy
	case Location:
		return &r.Location
	case SessionsCompleted:
		return &r.SessionsCompleted
	case SessionsRemaining:
		return &r.SessionsRemaining
	case ClassesBooked:
		return &r.ClassesBooked
	case Cancellations:
		return &r.Cancellations
	case LateCancellations:
		return &r.LateCancellations
	case NoShows:
		return &r.NoShows
	case AttendanceRate:
		return &r.AttendanceRate
	case CancellationRate:
		return &r.CancellationRate
	case LastVisitDate:
		return &r.LastVisitDate
	case DaysSinceLastVisit:
		return &r.DaysSinceLastVisit
	case FreezeCount:
		return &r.FreezeCount
	case DaysFrozen:
		return &r.DaysFrozen
	case RenewalStatus:
		return &r.RenewalStatus
	case PreviousMembership:
		return &r.PreviousMembership
	case TenureDays:
		return &r.TenureDays
	}
	return nil
}

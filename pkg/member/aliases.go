package member

import "fmt"

// Aliases maps each canonical field to the header spellings that bind to it.
// Comparison is done on folded text, so entries are written lowercase.
type Aliases map[Field][]string

var builtinAliases = Aliases{
	UniqueID:           {"unique id", "uniqueid", "unique_id", "record id", "purchase id", "sale id"},
	MemberID:           {"member id", "memberid", "member_id", "customer id", "client id", "member code"},
	FirstName:          {"first name", "firstname", "first_name", "fname"},
	LastName:           {"last name", "lastname", "last_name", "lname", "surname"},
	FullName:           {"full name", "fullname", "full_name", "name", "member name", "customer name", "client name"},
	Email:              {"email", "email address", "e-mail", "customer email", "member email"},
	Phone:              {"phone", "phone number", "mobile", "mobile number", "contact number"},
	MembershipID:       {"membership id", "membershipid", "membership_id", "plan id", "package id"},
	MembershipName:     {"membership name", "membership", "plan", "plan name", "package", "package name", "product name"},
	MembershipType:     {"membership type", "plan type", "membership category", "category"},
	PurchaseDate:       {"purchase date", "order date", "order at", "purchased at", "sale date", "bought on"},
	StartDate:          {"start date", "membership start", "membership start date", "activation date", "valid from"},
	EndDate:            {"end date", "membership end", "membership end date", "expiry date", "expiration date", "valid until"},
	ChurnedDate:        {"churned date", "churn date", "lapsed date", "date churned", "cancelled date", "cancellation date"},
	Status:             {"status", "membership status", "member status"},
	AmountPaid:         {"amount paid", "paid", "amount", "paid amount", "price paid", "total paid", "revenue"},
	DiscountAmount:     {"discount amount", "discount", "discount value"},
	PaymentMethod:      {"payment method", "payment mode", "payment type"},
	SoldBy:             {"sold by", "sold_by", "sales rep", "seller", "associate"},
	Location:           {"primary location", "location", "home location", "studio", "center", "centre", "branch"},
	SessionsCompleted:  {"total sessions completed", "sessions completed", "sessions attended", "total visits", "visits", "check-ins", "checkins"},
	SessionsRemaining:  {"sessions remaining", "remaining sessions", "classes remaining", "credits left"},
	ClassesBooked:      {"total classes booked", "classes booked", "total bookings", "bookings"},
	Cancellations:      {"cancellations", "total cancellations", "cancelled classes"},
	LateCancellations:  {"late cancellations", "late cancels", "late cancelled"},
	NoShows:            {"no shows", "no-shows", "noshows", "no show", "missed classes"},
	AttendanceRate:     {"attendance rate %", "attendance rate", "attendance %", "attendance"},
	CancellationRate:   {"cancellation rate %", "cancellation rate", "cancel rate", "cancellation %"},
	LastVisitDate:      {"last visit date", "last visit", "last check-in", "last attended"},
	DaysSinceLastVisit: {"days since last visit", "days since visit", "days inactive", "inactive days"},
	FreezeCount:        {"freeze count", "freezes", "number of freezes", "times frozen"},
	DaysFrozen:         {"days frozen", "frozen days", "freeze days", "total days frozen"},
	RenewalStatus:      {"renewal status", "renewal", "is renewal", "renewed"},
	PreviousMembership: {"previous membership", "prior membership", "previous plan"},
	TenureDays:         {"tenure days", "tenure", "days as member", "membership age"},
}

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() Aliases {
	out := make(Aliases, len(builtinAliases))
	for f, list := range builtinAliases {
		out[f] = append([]string(nil), list...)
	}
	return out
}

// With returns a copy of a extended by extra, keyed by canonical field name
// ("Primary Location": ["club"]). Extra aliases are appended after the
// existing ones. An unknown field name is an error.
func (a Aliases) With(extra map[string][]string) (Aliases, error) {
	out := make(Aliases, len(a))
	for f, list := range a {
		out[f] = append([]string(nil), list...)
	}
	for name, list := range extra {
		f, ok := FieldByName(name)
		if !ok {
			return nil, fmt.Errorf("alias override: unknown canonical field %q", name)
		}
		out[f] = append(out[f], list...)
	}
	return out, nil
}

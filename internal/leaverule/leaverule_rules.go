package leaverule

import "sort"

const (
	TypeAnnual         = "annual"
	TypeSick           = "sick"
	TypeExceptional    = "exceptional"
	TypeMaternity      = "maternity"
	TypePaternity      = "paternity"
	TypePublicHolidays = "public_holidays"

	// TypePublic is the leave type of collective public-holiday grants. It is
	// always accepted and never checked against a balance.
	TypePublic = "public"
)

func DefaultDays() LeaveDays {
	return LeaveDays{
		TypeAnnual:         26,
		TypeSick:           2,
		TypeExceptional:    15,
		TypeMaternity:      90,
		TypePaternity:      10,
		TypePublicHolidays: 12,
	}
}

var typeLabels = map[string]string{
	TypeAnnual:         "Annual leave",
	TypeSick:           "Sick leave",
	TypeExceptional:    "Exceptional leave",
	TypeMaternity:      "Maternity leave",
	TypePaternity:      "Paternity leave",
	TypePublicHolidays: "Public holidays",
	TypePublic:         "Public holiday",
}

func Label(leaveType string) string {
	if l, ok := typeLabels[leaveType]; ok {
		return l
	}
	return leaveType
}

// Rules is an immutable snapshot of the leave-rule table at a given version.
// Callers receive it explicitly instead of reading global configuration.
type Rules struct {
	Version int
	Days    LeaveDays
}

func (r Rules) Entitlement(leaveType string) int {
	return r.Days[BalanceKey(leaveType)]
}

// Accepts reports whether a request of this type can be filed.
func (r Rules) Accepts(leaveType string) bool {
	if leaveType == TypePublic {
		return true
	}
	_, ok := r.Days[leaveType]
	return ok
}

func (r Rules) Types() []string {
	out := make([]string, 0, len(r.Days))
	for k := range r.Days {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BalanceKey is the leave_balance/leave_taken key a leave type is counted under.
func BalanceKey(leaveType string) string {
	if leaveType == TypePublic {
		return TypePublicHolidays
	}
	return leaveType
}

// BalanceExempt types never produce an insufficient balance warning.
func BalanceExempt(leaveType string) bool {
	return leaveType == TypePublic
}

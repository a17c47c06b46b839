package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var (
	half = decimal.NewFromFloat(0.5)

	// Present-day-equivalent thresholds for earned leave.
	twoLeaveThreshold = decimal.NewFromInt(25)
	oneLeaveThreshold = decimal.NewFromInt(15)
)

// Period is a calendar month. All boundaries are UTC dates.
type Period struct {
	Month int
	Year  int
}

func NewPeriod(month, year int) (Period, error) {
	var errs validator.ValidationErrors
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if year < 2000 || year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be between 2000 and 9999"})
	}
	if len(errs) > 0 {
		return Period{}, errs
	}
	return Period{Month: month, Year: year}, nil
}

// Start is the first day of the month at 00:00 UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the month at 00:00 UTC.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// DaysInMonth counts calendar days, not working days.
func (p Period) DaysInMonth() int {
	return p.End().Day()
}

// Previous is the month before p.
func (p Period) Previous() Period {
	prev := p.Start().AddDate(0, -1, 0)
	return Period{Month: int(prev.Month()), Year: prev.Year()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) contains(d time.Time) bool {
	d = dateOf(d)
	return !d.Before(p.Start()) && !d.After(p.End())
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AttendanceSummary is the per-month classification of approved attendance rows.
type AttendanceSummary struct {
	PresentDays          int
	HalfDays             int
	OvertimeDays         int
	AbsentDays           int
	PresentDayEquivalent decimal.Decimal
}

// AggregateAttendance classifies each approved row inside p. Priority is
// absent, half-day, overtime, then present.
func AggregateAttendance(p Period, records []attendance.AttendanceRecord) AttendanceSummary {
	var s AttendanceSummary
	for _, r := range records {
		if !r.IsApproved() || !p.contains(r.Date) {
			continue
		}
		switch {
		case !r.IsPresent:
			s.AbsentDays++
		case r.IsHalfDay:
			s.HalfDays++
		case r.IsOvertime:
			s.OvertimeDays++
		default:
			s.PresentDays++
		}
	}

	// Overtime days count as a full attendance day here and earn their bonus separately.
	s.PresentDayEquivalent = decimal.NewFromInt(int64(s.PresentDays)).
		Add(decimal.NewFromInt(int64(s.HalfDays)).Mul(half)).
		Add(decimal.NewFromInt(int64(s.OvertimeDays)))
	return s
}

// LeaveDaysTaken sums the inclusive days of each approved request clipped to p.
func LeaveDaysTaken(p Period, requests []leave.LeaveRequest) int {
	total := 0
	for _, r := range requests {
		if !r.IsApproved() {
			continue
		}
		start, end := dateOf(r.StartDate), dateOf(r.EndDate)
		if start.Before(p.Start()) {
			start = p.Start()
		}
		if end.After(p.End()) {
			end = p.End()
		}
		if end.Before(start) {
			continue
		}
		total += int(end.Sub(start).Hours()/24) + 1
	}
	return total
}

// LeavesEarned converts attendance into earned leave days.
func LeavesEarned(presentDayEquivalent decimal.Decimal) int {
	switch {
	case presentDayEquivalent.GreaterThanOrEqual(twoLeaveThreshold):
		return 2
	case presentDayEquivalent.GreaterThanOrEqual(oneLeaveThreshold):
		return 1
	default:
		return 0
	}
}

// Earnings are the money components derived from attendance. They are
// computed once at generation and never re-derived.
type Earnings struct {
	PerDayRate      decimal.Decimal
	PresentEarnings decimal.Decimal
	OvertimeBonus   decimal.Decimal
	LeaveSalary     decimal.Decimal
}

// DeriveEarnings projects attendance onto baseSalary. The per-day rate keeps
// full precision; money amounts are rounded to cents.
func DeriveEarnings(baseSalary decimal.Decimal, daysInMonth int, summary AttendanceSummary, leavesEarned int) Earnings {
	if daysInMonth <= 0 {
		return Earnings{
			PerDayRate:      decimal.Zero,
			PresentEarnings: decimal.Zero,
			OvertimeBonus:   decimal.Zero,
			LeaveSalary:     decimal.Zero,
		}
	}

	rate := baseSalary.Div(decimal.NewFromInt(int64(daysInMonth)))
	return Earnings{
		PerDayRate:      rate,
		PresentEarnings: rate.Mul(summary.PresentDayEquivalent).Round(2),
		OvertimeBonus:   decimal.NewFromInt(int64(summary.OvertimeDays)).Mul(rate.Mul(half)).Round(2),
		LeaveSalary:     rate.Mul(decimal.NewFromInt(int64(leavesEarned))).Round(2),
	}
}

// SuggestInstallment proposes min(emi, remaining) for an open advance.
// ok is false when nothing should be proposed.
func SuggestInstallment(adv advance.AdvancePayment) (amount decimal.Decimal, ok bool) {
	if !adv.IsOpen() {
		return decimal.Zero, false
	}
	amount = decimal.Min(adv.EMIAmount, adv.RemainingAmount)
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount.Round(2), true
}

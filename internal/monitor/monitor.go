// Package monitor decides when the recurring citation re-check is due and
// runs it without overlap. The due decision is a pure function over an
// explicit status; the Scheduler wraps it in a polling tick loop whose
// period is independent of the configured re-check interval.
package monitor

import "time"

// State is the scheduler's observable state.
type State string

const (
	// StateIdle: disabled or prerequisites missing; ticks are inert.
	StateIdle State = "idle"
	// StateArmed: enabled and waiting for the deadline.
	StateArmed State = "armed"
	// StateRunning: a check is in flight; due ticks are dropped.
	StateRunning State = "running"
	// StateOverdue: deadline passed; the next tick hands off to Running.
	StateOverdue State = "overdue"
)

// Interval is one of the selectable re-check cadences.
type Interval string

const (
	IntervalDaily      Interval = "daily"
	IntervalEvery3Days Interval = "3days"
	IntervalWeekly     Interval = "weekly"
	IntervalBiweekly   Interval = "biweekly"
	IntervalMonthly    Interval = "monthly"
)

// ParseInterval normalizes a stored interval string. Unknown values fall
// back to weekly rather than erroring.
func ParseInterval(s string) Interval {
	switch Interval(s) {
	case IntervalDaily, IntervalEvery3Days, IntervalWeekly, IntervalBiweekly, IntervalMonthly:
		return Interval(s)
	default:
		return IntervalWeekly
	}
}

// Duration returns the cadence as a duration.
func (i Interval) Duration() time.Duration {
	switch i {
	case IntervalDaily:
		return 24 * time.Hour
	case IntervalEvery3Days:
		return 3 * 24 * time.Hour
	case IntervalBiweekly:
		return 14 * 24 * time.Hour
	case IntervalMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Status is the complete input to the due decision. LastRun nil means the
// check has never run and is due immediately.
type Status struct {
	Enabled   bool
	PrereqMet bool
	Interval  Interval
	LastRun   *time.Time
	InFlight  bool
}

// Evaluate returns the state the scheduler is in at now, and whether a tick
// arriving at now should start a check. Due requires: enabled, prerequisites
// met, nothing in flight, and the interval elapsed (or no prior run).
func Evaluate(st Status, now time.Time) (State, bool) {
	if !st.Enabled || !st.PrereqMet {
		return StateIdle, false
	}
	if st.InFlight {
		return StateRunning, false
	}
	if st.LastRun == nil || now.Sub(*st.LastRun) > st.Interval.Duration() {
		return StateOverdue, true
	}
	return StateArmed, false
}

package mission

import (
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron expressions accept 5 to 7 whitespace-separated fields:
//
//	minute hour day-of-month month day-of-week [second] [year]
//
// A 6th field is parsed as a leading seconds field (robfig convention) and a
// 7th as a trailing year, which is validated for shape and then dropped since
// the underlying parser has no year support.
var (
	cronStandard = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	cronSeconds  = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
)

// NormalizeSchedule infers a missing kind, applies defaults and validates the
// schedule. It returns the canonical form stored on the mission record.
func NormalizeSchedule(s Schedule) (Schedule, error) {
	if s.Kind == "" {
		switch {
		case s.Expression != "":
			s.Kind = ScheduleCron
		case s.IntervalMinutes != 0:
			s.Kind = ScheduleInterval
		}
	}
	if err := ValidateSchedule(s); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// ValidateSchedule rejects empty cron expressions, non-positive intervals,
// unknown kinds and unloadable timezones.
func ValidateSchedule(s Schedule) error {
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return invalidf("schedule.timezone", "unknown timezone %q", s.Timezone)
		}
	}
	switch s.Kind {
	case ScheduleInterval:
		if s.IntervalMinutes <= 0 {
			return invalidf("schedule.intervalMinutes", "must be > 0, got %d", s.IntervalMinutes)
		}
		return nil
	case ScheduleCron:
		if strings.TrimSpace(s.Expression) == "" {
			return invalidf("schedule.expression", "cron expression is empty")
		}
		if _, err := parseCron(s.Expression); err != nil {
			return invalidf("schedule.expression", "unparseable cron expression %q: %v", s.Expression, err)
		}
		return nil
	default:
		return invalidf("schedule.kind", "unknown kind %q", s.Kind)
	}
}

// NextAfter computes the first eligible instant strictly after baseline.
// For interval schedules that is baseline plus the interval; for cron it is
// the next tick in the schedule's timezone (UTC when omitted). A nil result
// with a nil error never happens for a schedule that passed validation.
func NextAfter(s Schedule, baseline time.Time) (*time.Time, error) {
	switch s.Kind {
	case ScheduleInterval:
		if s.IntervalMinutes <= 0 {
			return nil, invalidf("schedule.intervalMinutes", "must be > 0, got %d", s.IntervalMinutes)
		}
		next := baseline.Add(time.Duration(s.IntervalMinutes) * time.Minute).UTC()
		return &next, nil
	case ScheduleCron:
		sched, err := parseCron(s.Expression)
		if err != nil {
			return nil, invalidf("schedule.expression", "unparseable cron expression %q: %v", s.Expression, err)
		}
		loc := time.UTC
		if s.Timezone != "" {
			loc, err = time.LoadLocation(s.Timezone)
			if err != nil {
				return nil, invalidf("schedule.timezone", "unknown timezone %q", s.Timezone)
			}
		}
		next := sched.Next(baseline.In(loc))
		if next.IsZero() {
			return nil, nil
		}
		next = next.UTC()
		return &next, nil
	default:
		return nil, invalidf("schedule.kind", "unknown kind %q", s.Kind)
	}
}

func parseCron(expr string) (cron.Schedule, error) {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 5:
		return cronStandard.Parse(expr)
	case 6:
		return cronSeconds.Parse(expr)
	case 7:
		// Trailing year field: accept a wildcard or a plausible year list/range,
		// then evaluate the remaining seconds-form expression.
		if err := checkYearField(fields[6]); err != nil {
			return nil, err
		}
		return cronSeconds.Parse(strings.Join(fields[:6], " "))
	default:
		return nil, invalidf("schedule.expression", "expected 5-7 fields, got %d", len(fields))
	}
}

func checkYearField(f string) error {
	if f == "*" {
		return nil
	}
	for _, part := range strings.Split(f, ",") {
		for _, bound := range strings.SplitN(part, "-", 2) {
			y, err := strconv.Atoi(bound)
			if err != nil || y < 1970 || y > 2199 {
				return invalidf("schedule.expression", "invalid year field %q", f)
			}
		}
	}
	return nil
}

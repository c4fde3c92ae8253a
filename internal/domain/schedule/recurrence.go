// Package schedule decides when a recurring task is due. It is a pure
// decision layer: it never stores state and never fires anything itself.
package schedule

import (
	"strconv"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
	FrequencyCustom    Frequency = "custom"
)

// Config describes one recurring schedule. Which fields matter depends on
// Frequency: Time always, DayOfWeek for weekly, DayOfMonth for monthly,
// MonthOfYear for quarterly/annually, CustomCron for custom.
type Config struct {
	Frequency   Frequency `json:"frequency"`
	Time        string    `json:"time"`
	DayOfWeek   *int      `json:"dayOfWeek,omitempty"`
	DayOfMonth  *int      `json:"dayOfMonth,omitempty"`
	MonthOfYear *int      `json:"monthOfYear,omitempty"`
	CustomCron  string    `json:"customCron,omitempty"`
}

func (c Config) Validate() error {
	switch c.Frequency {
	case FrequencyDaily:
	case FrequencyWeekly:
		if c.DayOfWeek == nil || *c.DayOfWeek < 0 || *c.DayOfWeek > 6 {
			return ErrInvalidDayOfWeek
		}
	case FrequencyMonthly:
		if c.DayOfMonth == nil || *c.DayOfMonth < 1 || *c.DayOfMonth > 31 {
			return ErrInvalidDayOfMonth
		}
	case FrequencyQuarterly, FrequencyAnnually:
		if c.MonthOfYear == nil || *c.MonthOfYear < 1 || *c.MonthOfYear > 12 {
			return ErrInvalidMonthOfYear
		}
	case FrequencyCustom:
		if strings.TrimSpace(c.CustomCron) == "" {
			return ErrMissingCron
		}
	default:
		return ErrUnknownFrequency
	}
	if c.Frequency != FrequencyCustom {
		if _, _, err := parseClock(c.Time); err != nil {
			return err
		}
	}
	return nil
}

// IsDue reports whether the schedule should fire at now, given the last time
// it actually ran. A schedule that never ran is always due. Equality with
// the previous scheduled firing means that window already ran.
func IsDue(cfg Config, lastRunAt *time.Time, now time.Time) bool {
	if lastRunAt == nil {
		return true
	}
	previous, ok := PreviousRun(cfg, now)
	if !ok {
		// Custom cron cadence is owned by the external trigger.
		return true
	}
	return lastRunAt.Before(previous)
}

// PreviousRun computes the latest theoretical firing time at or before now.
// The second return is false for custom schedules, whose firing times this
// engine cannot derive.
func PreviousRun(cfg Config, now time.Time) (time.Time, bool) {
	if cfg.Frequency == FrequencyCustom {
		return time.Time{}, false
	}

	hour, minute, err := parseClock(cfg.Time)
	if err != nil {
		hour, minute = 0, 0
	}

	switch cfg.Frequency {
	case FrequencyDaily:
		return previousDaily(now, hour, minute), true
	case FrequencyWeekly:
		return previousWeekly(now, weekdayOrDefault(cfg.DayOfWeek), hour, minute), true
	case FrequencyMonthly:
		day := 1
		if cfg.DayOfMonth != nil {
			day = *cfg.DayOfMonth
		}
		return previousMonthly(now, day, hour, minute), true
	case FrequencyQuarterly, FrequencyAnnually:
		month := time.January
		if cfg.MonthOfYear != nil {
			month = time.Month(*cfg.MonthOfYear)
		}
		return previousAnnual(now, month, hour, minute), true
	default:
		return time.Time{}, false
	}
}

func previousDaily(now time.Time, hour, minute int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if at.After(now) {
		at = at.AddDate(0, 0, -1)
	}
	return at
}

func previousWeekly(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	daysBack := int(now.Weekday() - weekday)
	if daysBack < 0 {
		daysBack += 7
	}
	day := now.AddDate(0, 0, -daysBack)
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	if at.After(now) {
		at = at.AddDate(0, 0, -7)
	}
	return at
}

func previousMonthly(now time.Time, dayOfMonth, hour, minute int) time.Time {
	at := monthlyOccurrence(now.Year(), now.Month(), dayOfMonth, hour, minute, now.Location())
	if at.After(now) {
		// First of the previous month; time.Date normalizes month 0 to
		// December of the prior year.
		prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		at = monthlyOccurrence(prev.Year(), prev.Month(), dayOfMonth, hour, minute, now.Location())
	}
	return at
}

// monthlyOccurrence clamps dayOfMonth to the month's length, so day 31
// lands on the 30th of a 30-day month instead of overflowing into the next.
func monthlyOccurrence(year int, month time.Month, dayOfMonth, hour, minute int, loc *time.Location) time.Time {
	if last := daysIn(year, month); dayOfMonth > last {
		dayOfMonth = last
	}
	return time.Date(year, month, dayOfMonth, hour, minute, 0, 0, loc)
}

func previousAnnual(now time.Time, month time.Month, hour, minute int) time.Time {
	at := time.Date(now.Year(), month, 1, hour, minute, 0, 0, now.Location())
	if at.After(now) {
		at = at.AddDate(-1, 0, 0)
	}
	return at
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func weekdayOrDefault(dayOfWeek *int) time.Weekday {
	if dayOfWeek == nil {
		return time.Sunday
	}
	return time.Weekday(*dayOfWeek)
}

// parseClock parses "HH:MM" wall-clock time.
func parseClock(value string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, ErrInvalidTime
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidTime
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTime
	}
	return hour, minute, nil
}

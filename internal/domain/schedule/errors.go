package schedule

import "errors"

var (
	ErrUnknownFrequency   = errors.New("unknown schedule frequency")
	ErrInvalidTime        = errors.New("schedule time must be HH:MM")
	ErrInvalidDayOfWeek   = errors.New("weekly schedule requires day of week 0-6")
	ErrInvalidDayOfMonth  = errors.New("monthly schedule requires day of month 1-31")
	ErrInvalidMonthOfYear = errors.New("quarterly and annual schedules require month of year 1-12")
	ErrMissingCron        = errors.New("custom schedule requires a cron expression")
)

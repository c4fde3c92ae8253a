package schedule

import (
	"testing"
	"time"
)

func intp(v int) *int {
	return &v
}

func timep(v time.Time) *time.Time {
	return &v
}

func TestIsDueNeverRan(t *testing.T) {
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	configs := []Config{
		{Frequency: FrequencyDaily, Time: "09:00"},
		{Frequency: FrequencyWeekly, Time: "09:00", DayOfWeek: intp(1)},
		{Frequency: FrequencyCustom, CustomCron: "*/5 * * * *"},
	}
	for _, cfg := range configs {
		if !IsDue(cfg, nil, now) {
			t.Fatalf("schedule with no last run must be due: %+v", cfg)
		}
	}
}

func TestPreviousRunDaily(t *testing.T) {
	cfg := Config{Frequency: FrequencyDaily, Time: "09:00"}

	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	got, ok := PreviousRun(cfg, now)
	if !ok {
		t.Fatal("expected a previous run")
	}
	want := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Before today's firing time the window belongs to yesterday.
	now = time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	got, _ = PreviousRun(cfg, now)
	want = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPreviousRunWeekly(t *testing.T) {
	// Wednesday 10:00, weekly Monday 09:00 -> preceding Monday 09:00.
	cfg := Config{Frequency: FrequencyWeekly, Time: "09:00", DayOfWeek: intp(1)}
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	got, _ := PreviousRun(cfg, now)
	want := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPreviousRunWeeklySameDayBeforeTime(t *testing.T) {
	// Monday 08:00, weekly Monday 09:00 -> a full week back.
	cfg := Config{Frequency: FrequencyWeekly, Time: "09:00", DayOfWeek: intp(1)}
	now := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	got, _ := PreviousRun(cfg, now)
	want := time.Date(2025, 2, 24, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPreviousRunMonthlyClampsDay(t *testing.T) {
	// Day 31 against 30-day April clamps to April 30.
	cfg := Config{Frequency: FrequencyMonthly, Time: "06:00", DayOfMonth: intp(31)}
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	got, _ := PreviousRun(cfg, now)
	want := time.Date(2025, 4, 30, 6, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPreviousRunMonthlyFebruary(t *testing.T) {
	cfg := Config{Frequency: FrequencyMonthly, Time: "00:00", DayOfMonth: intp(30)}
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	got, _ := PreviousRun(cfg, now)
	want := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPreviousRunMonthlyStepsOverYearBoundary(t *testing.T) {
	cfg := Config{Frequency: FrequencyMonthly, Time: "09:00", DayOfMonth: intp(15)}
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	got, _ := PreviousRun(cfg, now)
	want := time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPreviousRunAnnually(t *testing.T) {
	cfg := Config{Frequency: FrequencyAnnually, Time: "00:00", MonthOfYear: intp(4)}

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got, _ := PreviousRun(cfg, now)
	want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	now = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	got, _ = PreviousRun(cfg, now)
	want = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPreviousRunQuarterlyAnchorsToMonthOfYear(t *testing.T) {
	cfg := Config{Frequency: FrequencyQuarterly, Time: "00:00", MonthOfYear: intp(1)}
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	got, _ := PreviousRun(cfg, now)
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIsDueCustomAlwaysDue(t *testing.T) {
	cfg := Config{Frequency: FrequencyCustom, CustomCron: "0 * * * *"}
	last := time.Date(2025, 3, 5, 9, 59, 0, 0, time.UTC)
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	if !IsDue(cfg, timep(last), now) {
		t.Fatal("custom schedules defer to the trigger and are always due")
	}
}

func TestIsDueDoesNotDoubleFire(t *testing.T) {
	cfg := Config{Frequency: FrequencyDaily, Time: "09:00"}
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	// Ran exactly at the previous scheduled time: not due again.
	last := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	if IsDue(cfg, timep(last), now) {
		t.Fatal("equality with previous run must not re-fire")
	}

	// Ran after it: not due.
	last = time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC)
	if IsDue(cfg, timep(last), now) {
		t.Fatal("run after window must not re-fire")
	}

	// Ran before it: due.
	last = time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	if !IsDue(cfg, timep(last), now) {
		t.Fatal("stale last run must be due")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := []Config{
		{Frequency: FrequencyDaily, Time: "00:00"},
		{Frequency: FrequencyWeekly, Time: "23:59", DayOfWeek: intp(6)},
		{Frequency: FrequencyMonthly, Time: "12:30", DayOfMonth: intp(31)},
		{Frequency: FrequencyAnnually, Time: "08:00", MonthOfYear: intp(12)},
		{Frequency: FrequencyCustom, CustomCron: "*/10 * * * *"},
	}
	for _, cfg := range valid {
		if err := cfg.Validate(); err != nil {
			t.Fatalf("expected valid config %+v, got %v", cfg, err)
		}
	}

	invalid := []Config{
		{Frequency: "hourly", Time: "00:00"},
		{Frequency: FrequencyDaily, Time: "25:00"},
		{Frequency: FrequencyDaily, Time: "9am"},
		{Frequency: FrequencyWeekly, Time: "09:00", DayOfWeek: intp(7)},
		{Frequency: FrequencyWeekly, Time: "09:00"},
		{Frequency: FrequencyMonthly, Time: "09:00", DayOfMonth: intp(0)},
		{Frequency: FrequencyQuarterly, Time: "09:00", MonthOfYear: intp(13)},
		{Frequency: FrequencyCustom},
	}
	for _, cfg := range invalid {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", cfg)
		}
	}
}

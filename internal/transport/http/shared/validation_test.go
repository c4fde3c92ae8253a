package shared

import (
	"testing"
	"time"
)

func TestParseDateAcceptsBothFormats(t *testing.T) {
	day, err := ParseDate("2025-03-01")
	if err != nil {
		t.Fatalf("date parse failed: %v", err)
	}
	if day != time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected date: %v", day)
	}

	stamp, err := ParseDate("2025-03-01T10:30:00Z")
	if err != nil {
		t.Fatalf("rfc3339 parse failed: %v", err)
	}
	if stamp.Hour() != 10 || stamp.Minute() != 30 {
		t.Fatalf("unexpected time: %v", stamp)
	}
}

func TestValidatorCollectsAndSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "", "name is required")
	v.Enum("kind", "ftp", []string{"file", "database"}, "must be file or database")
	v.Enum("kind", "File", []string{"file", "database"}, "case insensitive match should pass")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Field != "kind" || issues[1].Field != "name" {
		t.Fatalf("expected sorted issues, got %+v", issues)
	}
}

func TestValidatorDate(t *testing.T) {
	v := NewValidator()
	if _, ok := v.Date("periodDate", "not-a-date"); ok {
		t.Fatal("expected invalid date to fail")
	}
	if !v.HasIssues() {
		t.Fatal("expected an issue for the bad date")
	}

	v = NewValidator()
	parsed, ok := v.Date("periodDate", "2025-06-30")
	if !ok || v.HasIssues() {
		t.Fatal("expected valid date to pass")
	}
	if parsed.Day() != 30 {
		t.Fatalf("unexpected day: %d", parsed.Day())
	}
}

package imports

import (
	"context"
	"testing"
	"time"

	"scorecard/internal/domain/schedule"
)

type fakeStore struct {
	imports []SavedImport
	marked  map[string]time.Time
}

func (f *fakeStore) ListImports(ctx context.Context) ([]SavedImport, error) {
	return f.imports, nil
}

func (f *fakeStore) ListImportsByOrganization(ctx context.Context, orgID string) ([]SavedImport, error) {
	return f.imports, nil
}

func (f *fakeStore) GetImport(ctx context.Context, importID string) (SavedImport, error) {
	for _, imp := range f.imports {
		if imp.ID == importID {
			return imp, nil
		}
	}
	return SavedImport{}, ErrNotFound
}

func (f *fakeStore) CreateImport(ctx context.Context, imp SavedImport) (string, error) {
	f.imports = append(f.imports, imp)
	return "new", nil
}

func (f *fakeStore) UpdateImport(ctx context.Context, imp SavedImport) error {
	return nil
}

func (f *fakeStore) DeleteImport(ctx context.Context, importID string) error {
	return nil
}

func (f *fakeStore) MarkRun(ctx context.Context, importID string, previousRunAt *time.Time, ranAt time.Time) (bool, error) {
	if f.marked == nil {
		f.marked = map[string]time.Time{}
	}
	for i, imp := range f.imports {
		if imp.ID != importID {
			continue
		}
		same := (imp.LastRunAt == nil && previousRunAt == nil) ||
			(imp.LastRunAt != nil && previousRunAt != nil && imp.LastRunAt.Equal(*previousRunAt))
		if !same {
			return false, nil
		}
		at := ranAt
		f.imports[i].LastRunAt = &at
		f.marked[importID] = ranAt
		return true, nil
	}
	return false, nil
}

func TestDueFiltersDisabledAndFresh(t *testing.T) {
	yesterday := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	today := time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC)
	daily := schedule.Config{Frequency: schedule.FrequencyDaily, Time: "09:00"}

	store := &fakeStore{imports: []SavedImport{
		{ID: "never-ran", Enabled: true, Schedule: daily},
		{ID: "stale", Enabled: true, Schedule: daily, LastRunAt: &yesterday},
		{ID: "fresh", Enabled: true, Schedule: daily, LastRunAt: &today},
		{ID: "disabled", Enabled: false, Schedule: daily, LastRunAt: &yesterday},
	}}
	svc := NewService(store)

	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	due, err := svc.Due(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due imports, got %d", len(due))
	}
	if due[0].ID != "never-ran" || due[1].ID != "stale" {
		t.Fatalf("unexpected due set: %v, %v", due[0].ID, due[1].ID)
	}
}

func TestClaimRunSingleWinner(t *testing.T) {
	daily := schedule.Config{Frequency: schedule.FrequencyDaily, Time: "09:00"}
	store := &fakeStore{imports: []SavedImport{{ID: "imp", Enabled: true, Schedule: daily}}}
	svc := NewService(store)

	imp := store.imports[0]
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	claimed, err := svc.ClaimRun(context.Background(), imp, now)
	if err != nil || !claimed {
		t.Fatalf("first claim should win, got claimed=%v err=%v", claimed, err)
	}

	// Second trigger still holding the stale snapshot loses.
	claimed, err = svc.ClaimRun(context.Background(), imp, now.Add(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimed {
		t.Fatal("second claim with stale last_run_at must lose")
	}
}

func TestCreateValidatesScheduleAndKind(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.Create(context.Background(), SavedImport{
		Kind:     "ftp",
		Schedule: schedule.Config{Frequency: schedule.FrequencyDaily, Time: "09:00"},
	})
	if err != ErrUnknownKind {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}

	_, err = svc.Create(context.Background(), SavedImport{
		Kind:     KindFile,
		Schedule: schedule.Config{Frequency: schedule.FrequencyWeekly, Time: "09:00"},
	})
	if err == nil {
		t.Fatal("expected schedule validation error for weekly without day of week")
	}
}

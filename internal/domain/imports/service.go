package imports

import (
	"context"
	"time"

	"scorecard/internal/domain/schedule"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]SavedImport, error) {
	return s.store.ListImports(ctx)
}

func (s *Service) ListByOrganization(ctx context.Context, orgID string) ([]SavedImport, error) {
	return s.store.ListImportsByOrganization(ctx, orgID)
}

func (s *Service) Get(ctx context.Context, importID string) (SavedImport, error) {
	return s.store.GetImport(ctx, importID)
}

func (s *Service) Create(ctx context.Context, imp SavedImport) (string, error) {
	if imp.Kind != KindFile && imp.Kind != KindDatabase {
		return "", ErrUnknownKind
	}
	if err := imp.Schedule.Validate(); err != nil {
		return "", err
	}
	return s.store.CreateImport(ctx, imp)
}

func (s *Service) Update(ctx context.Context, imp SavedImport) error {
	if imp.Kind != KindFile && imp.Kind != KindDatabase {
		return ErrUnknownKind
	}
	if err := imp.Schedule.Validate(); err != nil {
		return err
	}
	return s.store.UpdateImport(ctx, imp)
}

func (s *Service) Delete(ctx context.Context, importID string) error {
	return s.store.DeleteImport(ctx, importID)
}

// Due filters enabled imports down to those whose schedule window has
// arrived at now.
func (s *Service) Due(ctx context.Context, now time.Time) ([]SavedImport, error) {
	all, err := s.store.ListImports(ctx)
	if err != nil {
		return nil, err
	}
	var due []SavedImport
	for _, imp := range all {
		if !imp.Enabled {
			continue
		}
		if schedule.IsDue(imp.Schedule, imp.LastRunAt, now) {
			due = append(due, imp)
		}
	}
	return due, nil
}

// ClaimRun is the at-most-once guard around a due import: it succeeds for
// exactly one caller per window via a conditional update on last_run_at.
func (s *Service) ClaimRun(ctx context.Context, imp SavedImport, ranAt time.Time) (bool, error) {
	return s.store.MarkRun(ctx, imp.ID, imp.LastRunAt, ranAt)
}

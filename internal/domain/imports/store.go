package imports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/domain/schedule"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const importColumns = `id, organization_id, name, kind, config_json, frequency, schedule_time, day_of_week, day_of_month, month_of_year, custom_cron, enabled, last_run_at, created_at`

func (s *Store) ListImports(ctx context.Context) ([]SavedImport, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+importColumns+` FROM saved_imports ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanImports(rows)
}

func (s *Store) ListImportsByOrganization(ctx context.Context, orgID string) ([]SavedImport, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+importColumns+`
    FROM saved_imports
    WHERE organization_id = $1
    ORDER BY created_at
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanImports(rows)
}

func (s *Store) GetImport(ctx context.Context, importID string) (SavedImport, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+importColumns+` FROM saved_imports WHERE id = $1`, importID)
	imp, err := scanImport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SavedImport{}, ErrNotFound
	}
	return imp, err
}

func (s *Store) CreateImport(ctx context.Context, imp SavedImport) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO saved_imports (organization_id, name, kind, config_json, frequency, schedule_time, day_of_week, day_of_month, month_of_year, custom_cron, enabled)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id
  `, imp.OrganizationID, imp.Name, imp.Kind, imp.ConfigJSON,
		imp.Schedule.Frequency, imp.Schedule.Time, imp.Schedule.DayOfWeek, imp.Schedule.DayOfMonth, imp.Schedule.MonthOfYear, nullIfEmpty(imp.Schedule.CustomCron),
		imp.Enabled).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateImport(ctx context.Context, imp SavedImport) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE saved_imports
    SET name = $1, kind = $2, config_json = $3, frequency = $4, schedule_time = $5,
        day_of_week = $6, day_of_month = $7, month_of_year = $8, custom_cron = $9, enabled = $10
    WHERE id = $11
  `, imp.Name, imp.Kind, imp.ConfigJSON,
		imp.Schedule.Frequency, imp.Schedule.Time, imp.Schedule.DayOfWeek, imp.Schedule.DayOfMonth, imp.Schedule.MonthOfYear, nullIfEmpty(imp.Schedule.CustomCron),
		imp.Enabled, imp.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteImport(ctx context.Context, importID string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM saved_imports WHERE id = $1`, importID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRun advances last_run_at only when it still holds the value the due
// check observed. Overlapping triggers lose the race and report false.
func (s *Store) MarkRun(ctx context.Context, importID string, previousRunAt *time.Time, ranAt time.Time) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE saved_imports
    SET last_run_at = $1
    WHERE id = $2 AND last_run_at IS NOT DISTINCT FROM $3
  `, ranAt, importID, previousRunAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanImport(row pgx.Row) (SavedImport, error) {
	var imp SavedImport
	var frequency string
	var cron *string
	err := row.Scan(&imp.ID, &imp.OrganizationID, &imp.Name, &imp.Kind, &imp.ConfigJSON,
		&frequency, &imp.Schedule.Time, &imp.Schedule.DayOfWeek, &imp.Schedule.DayOfMonth, &imp.Schedule.MonthOfYear, &cron,
		&imp.Enabled, &imp.LastRunAt, &imp.CreatedAt)
	if err != nil {
		return SavedImport{}, err
	}
	imp.Schedule.Frequency = schedule.Frequency(frequency)
	if cron != nil {
		imp.Schedule.CustomCron = *cron
	}
	return imp, nil
}

func scanImports(rows pgx.Rows) ([]SavedImport, error) {
	var out []SavedImport
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	return out, nil
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

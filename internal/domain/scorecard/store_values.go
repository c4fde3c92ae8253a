package scorecard

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"scorecard/internal/domain/scoring"
)

const valueColumns = `id, kpi_id, period_date, actual_value, target_value, threshold_red, threshold_yellow, score, color`

func (s *Store) UpsertValue(ctx context.Context, value KPIValue) (KPIValue, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO kpi_values (kpi_id, period_date, actual_value, target_value, threshold_red, threshold_yellow, score, color)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (kpi_id, period_date) DO UPDATE
    SET actual_value = EXCLUDED.actual_value,
        target_value = EXCLUDED.target_value,
        threshold_red = EXCLUDED.threshold_red,
        threshold_yellow = EXCLUDED.threshold_yellow,
        score = EXCLUDED.score,
        color = EXCLUDED.color,
        updated_at = now()
    RETURNING `+valueColumns+`
  `, value.KPIID, value.PeriodDate, value.ActualValue, value.TargetValue, value.ThresholdRed, value.ThresholdYellow, value.Score, nullableColor(value.Color))
	return scanValue(row)
}

func (s *Store) GetValue(ctx context.Context, kpiID string, periodDate time.Time) (KPIValue, bool, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+valueColumns+`
    FROM kpi_values
    WHERE kpi_id = $1 AND period_date = $2
  `, kpiID, periodDate)
	value, err := scanValue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return KPIValue{}, false, nil
	}
	if err != nil {
		return KPIValue{}, false, err
	}
	return value, true, nil
}

func (s *Store) ListValues(ctx context.Context, kpiID string, limit int) ([]KPIValue, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+valueColumns+`
    FROM kpi_values
    WHERE kpi_id = $1
    ORDER BY period_date DESC
    LIMIT $2
  `, kpiID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanValues(rows)
}

func (s *Store) ValuesForPeriod(ctx context.Context, kpiIDs []string, periodDate time.Time) ([]KPIValue, error) {
	if len(kpiIDs) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+valueColumns+`
    FROM kpi_values
    WHERE kpi_id = ANY($1) AND period_date = $2
    ORDER BY created_at
  `, kpiIDs, periodDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanValues(rows)
}

// LatestValues returns, per KPI, the most recent value row at or before upTo.
func (s *Store) LatestValues(ctx context.Context, kpiIDs []string, upTo time.Time) ([]KPIValue, error) {
	if len(kpiIDs) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT ON (kpi_id) `+valueColumns+`
    FROM kpi_values
    WHERE kpi_id = ANY($1) AND period_date <= $2
    ORDER BY kpi_id, period_date DESC
  `, kpiIDs, upTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanValues(rows)
}

func scanValue(row pgx.Row) (KPIValue, error) {
	var value KPIValue
	var color *string
	err := row.Scan(&value.ID, &value.KPIID, &value.PeriodDate, &value.ActualValue, &value.TargetValue, &value.ThresholdRed, &value.ThresholdYellow, &value.Score, &color)
	if err != nil {
		return KPIValue{}, err
	}
	if color != nil {
		value.Color = scoreColor(*color)
	}
	return value, nil
}

// color is stored as nullable text so the joint-null invariant with score
// survives the round trip.
func nullableColor(c scoring.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

func scoreColor(s string) scoring.Color {
	return scoring.Color(s)
}

func scanValues(rows pgx.Rows) ([]KPIValue, error) {
	var out []KPIValue
	for rows.Next() {
		value, err := scanValue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

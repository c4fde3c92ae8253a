package scorecard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const kpiColumns = `id, element_id, scoring_type, data_type, aggregation_type, decimal_precision, is_manual_update, calculation_equation, rollup_enabled`

func (s *Store) GetKPI(ctx context.Context, kpiID string) (KPI, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+kpiColumns+` FROM kpis WHERE id = $1`, kpiID)
	return scanKPI(row)
}

func (s *Store) GetKPIByElement(ctx context.Context, elementID string) (KPI, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+kpiColumns+` FROM kpis WHERE element_id = $1`, elementID)
	return scanKPI(row)
}

func (s *Store) ListKPIsByOrganization(ctx context.Context, orgID string) ([]KPI, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT k.id, k.element_id, k.scoring_type, k.data_type, k.aggregation_type, k.decimal_precision, k.is_manual_update, k.calculation_equation, k.rollup_enabled
    FROM kpis k
    JOIN scorecard_elements e ON k.element_id = e.id
    WHERE e.organization_id = $1
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KPI
	for rows.Next() {
		kpi, err := scanKPI(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, kpi)
	}
	return out, nil
}

func (s *Store) CreateKPI(ctx context.Context, kpi KPI) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO kpis (element_id, scoring_type, data_type, aggregation_type, decimal_precision, is_manual_update, calculation_equation, rollup_enabled)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, kpi.ElementID, kpi.ScoringType, kpi.DataType, kpi.AggregationType, kpi.DecimalPrecision, kpi.IsManualUpdate, kpi.CalculationEquation, kpi.RollupEnabled).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateKPI(ctx context.Context, kpi KPI) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpis
    SET scoring_type = $1, data_type = $2, aggregation_type = $3, decimal_precision = $4,
        is_manual_update = $5, calculation_equation = $6, rollup_enabled = $7
    WHERE id = $8
  `, kpi.ScoringType, kpi.DataType, kpi.AggregationType, kpi.DecimalPrecision, kpi.IsManualUpdate, kpi.CalculationEquation, kpi.RollupEnabled, kpi.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKPINotFound
	}
	return nil
}

// KPIIDsByElementName finds KPIs in the given organizations whose owning
// element carries the given name. Rollup matches descendant KPIs this way.
func (s *Store) KPIIDsByElementName(ctx context.Context, orgIDs []string, name string) ([]string, error) {
	if len(orgIDs) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT k.id
    FROM kpis k
    JOIN scorecard_elements e ON k.element_id = e.id
    WHERE e.organization_id = ANY($1) AND e.name = $2
    ORDER BY e.organization_id
  `, orgIDs, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func scanKPI(row pgx.Row) (KPI, error) {
	var kpi KPI
	err := row.Scan(&kpi.ID, &kpi.ElementID, &kpi.ScoringType, &kpi.DataType, &kpi.AggregationType, &kpi.DecimalPrecision, &kpi.IsManualUpdate, &kpi.CalculationEquation, &kpi.RollupEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return KPI{}, ErrKPINotFound
	}
	if err != nil {
		return KPI{}, err
	}
	return kpi, nil
}

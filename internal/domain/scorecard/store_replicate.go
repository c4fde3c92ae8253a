package scorecard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InsertReplicatedTree writes a ready-made replication plan in a single
// transaction. Elements arrive level by level, so every parent row exists
// before its children are inserted. Either the whole subtree lands or none
// of it does.
func (s *Store) InsertReplicatedTree(ctx context.Context, elements []Element, kpis []KPI) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, el := range elements {
		if _, err := tx.Exec(ctx, `
      INSERT INTO scorecard_elements (id, organization_id, parent_id, element_type, name, description, weight, order_index, owner_user_id)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `, el.ID, el.OrganizationID, el.ParentID, el.ElementType, el.Name, el.Description, el.Weight, el.OrderIndex, el.OwnerUserID); err != nil {
			return fmt.Errorf("replicate element %s: %w", el.Name, err)
		}
	}

	for _, kpi := range kpis {
		if _, err := tx.Exec(ctx, `
      INSERT INTO kpis (id, element_id, scoring_type, data_type, aggregation_type, decimal_precision, is_manual_update, calculation_equation, rollup_enabled)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `, kpi.ID, kpi.ElementID, kpi.ScoringType, kpi.DataType, kpi.AggregationType, kpi.DecimalPrecision, kpi.IsManualUpdate, kpi.CalculationEquation, kpi.RollupEnabled); err != nil {
			return fmt.Errorf("replicate kpi for element %s: %w", kpi.ElementID, err)
		}
	}

	return tx.Commit(ctx)
}

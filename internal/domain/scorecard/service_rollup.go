package scorecard

import (
	"context"
	"strconv"
	"time"
)

// ComputeRollup aggregates the same-named KPI across every descendant
// organization and persists the aggregate as kpiID's scored value for the
// period. A nil return value means no descendant had data to contribute.
func (s *Service) ComputeRollup(ctx context.Context, kpiID string, periodDate time.Time) (KPIValue, error) {
	kpi, err := s.store.GetKPI(ctx, kpiID)
	if err != nil {
		return KPIValue{}, err
	}
	if !kpi.RollupEnabled {
		return KPIValue{}, ErrNotRollupKPI
	}

	element, err := s.store.GetElement(ctx, kpi.ElementID)
	if err != nil {
		return KPIValue{}, err
	}

	aggregate, err := s.rollupAggregate(ctx, kpi, element, periodDate)
	if err != nil {
		return KPIValue{}, err
	}

	actual := formatAggregate(aggregate, kpi.DecimalPrecision)

	// Target and thresholds set previously for this period are preserved so
	// the fresh aggregate is scored against them.
	var target, thresholdRed, thresholdYellow *string
	if existing, found, err := s.store.GetValue(ctx, kpiID, periodDate); err != nil {
		return KPIValue{}, err
	} else if found {
		target = existing.TargetValue
		thresholdRed = existing.ThresholdRed
		thresholdYellow = existing.ThresholdYellow
	}

	return s.RecordValue(ctx, kpiID, periodDate, actual, target, thresholdRed, thresholdYellow)
}

func (s *Service) rollupAggregate(ctx context.Context, kpi KPI, element Element, periodDate time.Time) (*float64, error) {
	descendants, err := s.orgs.DescendantIDs(ctx, element.OrganizationID)
	if err != nil {
		return nil, err
	}
	if len(descendants) == 0 {
		return nil, nil
	}

	kpiIDs, err := s.store.KPIIDsByElementName(ctx, descendants, element.Name)
	if err != nil {
		return nil, err
	}
	if len(kpiIDs) == 0 {
		return nil, nil
	}

	var rows []KPIValue
	if kpi.AggregationType == AggregationTypeLastValue {
		rows, err = s.store.LatestValues(ctx, kpiIDs, periodDate)
	} else {
		rows, err = s.store.ValuesForPeriod(ctx, kpiIDs, periodDate)
	}
	if err != nil {
		return nil, err
	}

	contributions := make([]Contribution, 0, len(rows))
	for _, row := range rows {
		contributions = append(contributions, Contribution{
			KPIID:      row.KPIID,
			PeriodDate: row.PeriodDate,
			Value:      parseNumeric(row.ActualValue),
		})
	}
	return Aggregate(contributions, kpi.AggregationType)
}

// RecomputeRollups refreshes every rollup-enabled KPI of an organization
// for the given period, typically after imported data lands.
func (s *Service) RecomputeRollups(ctx context.Context, orgID string, periodDate time.Time) (int, error) {
	kpis, err := s.store.ListKPIsByOrganization(ctx, orgID)
	if err != nil {
		return 0, err
	}
	recomputed := 0
	for _, kpi := range kpis {
		if !kpi.RollupEnabled {
			continue
		}
		if _, err := s.ComputeRollup(ctx, kpi.ID, periodDate); err != nil {
			return recomputed, err
		}
		recomputed++
	}
	return recomputed, nil
}

func formatAggregate(value *float64, decimalPrecision int) *string {
	if value == nil {
		return nil
	}
	if decimalPrecision < 0 {
		decimalPrecision = 0
	}
	formatted := strconv.FormatFloat(*value, 'f', decimalPrecision, 64)
	return &formatted
}

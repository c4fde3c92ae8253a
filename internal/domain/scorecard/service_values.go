package scorecard

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"scorecard/internal/domain/formula"
	"scorecard/internal/domain/scoring"
)

// RecordValue scores and persists one KPI reading for a period. Raw inputs
// stay exactly as entered; only the derived score and color are computed.
func (s *Service) RecordValue(ctx context.Context, kpiID string, periodDate time.Time, actual, target, thresholdRed, thresholdYellow *string) (KPIValue, error) {
	if _, err := s.store.GetKPI(ctx, kpiID); err != nil {
		return KPIValue{}, err
	}

	result := scoring.Score(parseNumeric(actual), parseNumeric(target), parseNumeric(thresholdRed), parseNumeric(thresholdYellow))

	return s.store.UpsertValue(ctx, KPIValue{
		KPIID:           kpiID,
		PeriodDate:      periodDate,
		ActualValue:     actual,
		TargetValue:     target,
		ThresholdRed:    thresholdRed,
		ThresholdYellow: thresholdYellow,
		Score:           result.Score,
		Color:           result.Color,
	})
}

func (s *Service) ListValues(ctx context.Context, kpiID string, limit int) ([]KPIValue, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListValues(ctx, kpiID, limit)
}

// ResolvedEquation substitutes current KPI values into the calculation
// equation and returns the resulting expression text. The expression is not
// evaluated here; arithmetic evaluation is the consumer's responsibility.
func (s *Service) ResolvedEquation(ctx context.Context, kpiID string, asOf time.Time) (string, error) {
	kpi, err := s.store.GetKPI(ctx, kpiID)
	if err != nil {
		return "", err
	}
	if kpi.CalculationEquation == nil || *kpi.CalculationEquation == "" {
		return "", ErrNoEquation
	}
	equation := *kpi.CalculationEquation

	element, err := s.store.GetElement(ctx, kpi.ElementID)
	if err != nil {
		return "", err
	}

	values := map[string]*string{}
	for _, ref := range formula.ExtractReferences(equation) {
		if _, seen := values[ref.Identifier]; seen {
			continue
		}
		refKPIID, found, err := s.referencedKPIID(ctx, ref, element.OrganizationID)
		if err != nil {
			return "", err
		}
		if !found {
			// Unresolvable references stay in the output as literal text.
			continue
		}
		latest, err := s.store.LatestValues(ctx, []string{refKPIID}, asOf)
		if err != nil {
			return "", err
		}
		if len(latest) == 0 {
			values[ref.Identifier] = nil
			continue
		}
		values[ref.Identifier] = latest[0].ActualValue
	}

	return formula.Substitute(equation, values), nil
}

func (s *Service) referencedKPIID(ctx context.Context, ref formula.Reference, orgID string) (string, bool, error) {
	if ref.IsID {
		kpi, err := s.store.GetKPI(ctx, ref.Identifier)
		if errors.Is(err, ErrKPINotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return kpi.ID, true, nil
	}

	// Name references resolve against elements in the same organization.
	ids, err := s.store.KPIIDsByElementName(ctx, []string{orgID}, strings.TrimSpace(ref.Identifier))
	if err != nil {
		return "", false, err
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

// parseNumeric interprets a numeric-as-text field. Unparsable or NaN input
// counts as absent, which the scoring engine maps to a null result.
func parseNumeric(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || math.IsNaN(parsed) {
		return nil
	}
	return &parsed
}

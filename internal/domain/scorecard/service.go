package scorecard

import (
	"context"

	"github.com/google/uuid"
)

// OrgDirectory is the slice of the organization domain the scorecard engine
// needs: descendant discovery for rollups and replication targets.
type OrgDirectory interface {
	DescendantIDs(ctx context.Context, orgID string) ([]string, error)
}

type Service struct {
	store StoreAPI
	orgs  OrgDirectory
	newID func() string
}

func NewService(store StoreAPI, orgs OrgDirectory) *Service {
	return &Service{store: store, orgs: orgs, newID: uuid.NewString}
}

func (s *Service) ListElements(ctx context.Context, orgID string) ([]Element, error) {
	return s.store.ListElements(ctx, orgID)
}

func (s *Service) GetElement(ctx context.Context, elementID string) (Element, error) {
	return s.store.GetElement(ctx, elementID)
}

func (s *Service) CreateElement(ctx context.Context, el Element) (string, error) {
	return s.store.CreateElement(ctx, el)
}

func (s *Service) UpdateElement(ctx context.Context, el Element) error {
	return s.store.UpdateElement(ctx, el)
}

func (s *Service) DeleteElement(ctx context.Context, elementID string) error {
	return s.store.DeleteElement(ctx, elementID)
}

func (s *Service) GetKPI(ctx context.Context, kpiID string) (KPI, error) {
	return s.store.GetKPI(ctx, kpiID)
}

func (s *Service) GetKPIByElement(ctx context.Context, elementID string) (KPI, error) {
	return s.store.GetKPIByElement(ctx, elementID)
}

func (s *Service) CreateKPI(ctx context.Context, kpi KPI) (string, error) {
	if err := validateValueSource(kpi); err != nil {
		return "", err
	}
	return s.store.CreateKPI(ctx, kpi)
}

func (s *Service) UpdateKPI(ctx context.Context, kpi KPI) error {
	if err := validateValueSource(kpi); err != nil {
		return err
	}
	return s.store.UpdateKPI(ctx, kpi)
}

// validateValueSource enforces that exactly one of manual entry, equation,
// and rollup feeds the KPI. The engines themselves assume this invariant
// instead of re-checking it.
func validateValueSource(kpi KPI) error {
	sources := 0
	if kpi.IsManualUpdate {
		sources++
	}
	if kpi.CalculationEquation != nil && *kpi.CalculationEquation != "" {
		sources++
	}
	if kpi.RollupEnabled {
		sources++
	}
	if sources != 1 {
		return ErrMixedValueSources
	}
	return nil
}

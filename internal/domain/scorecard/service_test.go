package scorecard

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	elements map[string]Element
	kpis     map[string]KPI
	values   map[string]KPIValue // key kpiID|period
	inserted int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		elements: map[string]Element{},
		kpis:     map[string]KPI{},
		values:   map[string]KPIValue{},
	}
}

func valueKey(kpiID string, period time.Time) string {
	return kpiID + "|" + period.Format("2006-01-02")
}

func (f *fakeStore) ListElements(ctx context.Context, orgID string) ([]Element, error) {
	var out []Element
	for _, el := range f.elements {
		if el.OrganizationID == orgID {
			out = append(out, el)
		}
	}
	return out, nil
}

func (f *fakeStore) GetElement(ctx context.Context, elementID string) (Element, error) {
	el, ok := f.elements[elementID]
	if !ok {
		return Element{}, ErrElementNotFound
	}
	return el, nil
}

func (f *fakeStore) CreateElement(ctx context.Context, el Element) (string, error) {
	id := fmt.Sprintf("el-%d", len(f.elements)+1)
	el.ID = id
	f.elements[id] = el
	return id, nil
}

func (f *fakeStore) UpdateElement(ctx context.Context, el Element) error {
	if _, ok := f.elements[el.ID]; !ok {
		return ErrElementNotFound
	}
	f.elements[el.ID] = el
	return nil
}

func (f *fakeStore) DeleteElement(ctx context.Context, elementID string) error {
	delete(f.elements, elementID)
	return nil
}

func (f *fakeStore) GetKPI(ctx context.Context, kpiID string) (KPI, error) {
	kpi, ok := f.kpis[kpiID]
	if !ok {
		return KPI{}, ErrKPINotFound
	}
	return kpi, nil
}

func (f *fakeStore) GetKPIByElement(ctx context.Context, elementID string) (KPI, error) {
	for _, kpi := range f.kpis {
		if kpi.ElementID == elementID {
			return kpi, nil
		}
	}
	return KPI{}, ErrKPINotFound
}

func (f *fakeStore) ListKPIsByOrganization(ctx context.Context, orgID string) ([]KPI, error) {
	var out []KPI
	for _, kpi := range f.kpis {
		if el, ok := f.elements[kpi.ElementID]; ok && el.OrganizationID == orgID {
			out = append(out, kpi)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateKPI(ctx context.Context, kpi KPI) (string, error) {
	id := fmt.Sprintf("kpi-%d", len(f.kpis)+1)
	kpi.ID = id
	f.kpis[id] = kpi
	return id, nil
}

func (f *fakeStore) UpdateKPI(ctx context.Context, kpi KPI) error {
	if _, ok := f.kpis[kpi.ID]; !ok {
		return ErrKPINotFound
	}
	f.kpis[kpi.ID] = kpi
	return nil
}

func (f *fakeStore) KPIIDsByElementName(ctx context.Context, orgIDs []string, name string) ([]string, error) {
	var ids []string
	for _, orgID := range orgIDs {
		for id, kpi := range f.kpis {
			el, ok := f.elements[kpi.ElementID]
			if ok && el.OrganizationID == orgID && el.Name == name {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (f *fakeStore) UpsertValue(ctx context.Context, value KPIValue) (KPIValue, error) {
	value.ID = valueKey(value.KPIID, value.PeriodDate)
	f.values[value.ID] = value
	return value, nil
}

func (f *fakeStore) GetValue(ctx context.Context, kpiID string, periodDate time.Time) (KPIValue, bool, error) {
	value, ok := f.values[valueKey(kpiID, periodDate)]
	return value, ok, nil
}

func (f *fakeStore) ListValues(ctx context.Context, kpiID string, limit int) ([]KPIValue, error) {
	var out []KPIValue
	for _, value := range f.values {
		if value.KPIID == kpiID {
			out = append(out, value)
		}
	}
	return out, nil
}

func (f *fakeStore) ValuesForPeriod(ctx context.Context, kpiIDs []string, periodDate time.Time) ([]KPIValue, error) {
	var out []KPIValue
	for _, id := range kpiIDs {
		if value, ok := f.values[valueKey(id, periodDate)]; ok {
			out = append(out, value)
		}
	}
	return out, nil
}

func (f *fakeStore) LatestValues(ctx context.Context, kpiIDs []string, upTo time.Time) ([]KPIValue, error) {
	var out []KPIValue
	for _, id := range kpiIDs {
		var best *KPIValue
		for _, value := range f.values {
			if value.KPIID != id || value.PeriodDate.After(upTo) {
				continue
			}
			if best == nil || value.PeriodDate.After(best.PeriodDate) {
				v := value
				best = &v
			}
		}
		if best != nil {
			out = append(out, *best)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertReplicatedTree(ctx context.Context, elements []Element, kpis []KPI) error {
	for _, el := range elements {
		f.elements[el.ID] = el
	}
	for _, kpi := range kpis {
		f.kpis[kpi.ID] = kpi
	}
	f.inserted++
	return nil
}

type fakeOrgs struct {
	descendants map[string][]string
}

func (f *fakeOrgs) DescendantIDs(ctx context.Context, orgID string) ([]string, error) {
	return f.descendants[orgID], nil
}

func TestRecordValueScoresAndPersists(t *testing.T) {
	store := newFakeStore()
	store.elements["e1"] = Element{ID: "e1", OrganizationID: "org", ElementType: ElementTypeKPI, Name: "Revenue"}
	store.kpis["k1"] = KPI{ID: "k1", ElementID: "e1", ScoringType: ScoringTypeGoalRedFlag, IsManualUpdate: true}
	svc := NewService(store, &fakeOrgs{})

	period := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.RecordValue(context.Background(), "k1", period, strp("80"), strp("100"), strp("50"), strp("75"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score == nil || *got.Score != 50 || string(got.Color) != "yellow" {
		t.Fatalf("expected scored value {50, yellow}, got %+v", got)
	}
	if got.ActualValue == nil || *got.ActualValue != "80" {
		t.Fatalf("raw actual must be stored as entered, got %v", got.ActualValue)
	}
}

func TestRecordValueNonNumericActual(t *testing.T) {
	store := newFakeStore()
	store.kpis["k1"] = KPI{ID: "k1", ElementID: "e1", IsManualUpdate: true}
	svc := NewService(store, &fakeOrgs{})

	period := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.RecordValue(context.Background(), "k1", period, strp("n/a"), strp("100"), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != nil || got.Color != "" {
		t.Fatalf("non-numeric actual must yield jointly-null score/color, got %+v", got)
	}
}

func rollupFixture() (*fakeStore, *fakeOrgs) {
	store := newFakeStore()
	store.elements["e-parent"] = Element{ID: "e-parent", OrganizationID: "parent", ElementType: ElementTypeKPI, Name: "Revenue"}
	store.kpis["k-parent"] = KPI{ID: "k-parent", ElementID: "e-parent", AggregationType: AggregationTypeSum, RollupEnabled: true}

	for _, child := range []string{"child-a", "child-b", "child-c"} {
		elID := fmt.Sprintf("e-%s", child)
		kpiID := fmt.Sprintf("k-%s", child)
		store.elements[elID] = Element{ID: elID, OrganizationID: child, ElementType: ElementTypeKPI, Name: "Revenue"}
		store.kpis[kpiID] = KPI{ID: kpiID, ElementID: elID, IsManualUpdate: true}
	}
	orgs := &fakeOrgs{descendants: map[string][]string{"parent": {"child-a", "child-b", "child-c"}}}
	return store, orgs
}

func TestComputeRollupSum(t *testing.T) {
	store, orgs := rollupFixture()
	svc := NewService(store, orgs)
	period := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	store.values[valueKey("k-child-a", period)] = KPIValue{KPIID: "k-child-a", PeriodDate: period, ActualValue: strp("10")}
	store.values[valueKey("k-child-b", period)] = KPIValue{KPIID: "k-child-b", PeriodDate: period, ActualValue: strp("20")}
	store.values[valueKey("k-child-c", period)] = KPIValue{KPIID: "k-child-c", PeriodDate: period, ActualValue: nil}

	got, err := svc.ComputeRollup(context.Background(), "k-parent", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ActualValue == nil || *got.ActualValue != "30" {
		t.Fatalf("expected rollup actual 30, got %v", got.ActualValue)
	}
}

func TestComputeRollupNoDescendantData(t *testing.T) {
	store, orgs := rollupFixture()
	svc := NewService(store, orgs)
	period := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got, err := svc.ComputeRollup(context.Background(), "k-parent", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ActualValue != nil || got.Score != nil || got.Color != "" {
		t.Fatalf("expected null value with no descendant data, got %+v", got)
	}
}

func TestComputeRollupRejectsNonRollupKPI(t *testing.T) {
	store := newFakeStore()
	store.kpis["k1"] = KPI{ID: "k1", ElementID: "e1", IsManualUpdate: true}
	svc := NewService(store, &fakeOrgs{})

	_, err := svc.ComputeRollup(context.Background(), "k1", time.Now())
	if err != ErrNotRollupKPI {
		t.Fatalf("expected ErrNotRollupKPI, got %v", err)
	}
}

func TestResolvedEquation(t *testing.T) {
	store := newFakeStore()
	store.elements["e1"] = Element{ID: "e1", OrganizationID: "org", ElementType: ElementTypeKPI, Name: "Margin"}
	store.elements["e2"] = Element{ID: "e2", OrganizationID: "org", ElementType: ElementTypeKPI, Name: "Revenue"}
	equation := "[KPI:Revenue]-[KPI:Costs]"
	store.kpis["k1"] = KPI{ID: "k1", ElementID: "e1", CalculationEquation: &equation}
	store.kpis["k2"] = KPI{ID: "k2", ElementID: "e2", IsManualUpdate: true}

	period := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.values[valueKey("k2", period)] = KPIValue{KPIID: "k2", PeriodDate: period, ActualValue: strp("500")}

	svc := NewService(store, &fakeOrgs{})
	got, err := svc.ResolvedEquation(context.Background(), "k1", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Revenue resolves; Costs has no matching KPI and stays literal.
	if got != "500-[KPI:Costs]" {
		t.Fatalf("expected partial substitution, got %q", got)
	}
}

func TestValidateValueSourceMutualExclusion(t *testing.T) {
	equation := "[KPI:a]+1"
	bad := []KPI{
		{},
		{IsManualUpdate: true, RollupEnabled: true},
		{IsManualUpdate: true, CalculationEquation: &equation},
		{CalculationEquation: &equation, RollupEnabled: true},
	}
	for _, kpi := range bad {
		if err := validateValueSource(kpi); err != ErrMixedValueSources {
			t.Fatalf("expected ErrMixedValueSources for %+v, got %v", kpi, err)
		}
	}

	good := []KPI{
		{IsManualUpdate: true},
		{CalculationEquation: &equation},
		{RollupEnabled: true},
	}
	for _, kpi := range good {
		if err := validateValueSource(kpi); err != nil {
			t.Fatalf("expected valid source for %+v, got %v", kpi, err)
		}
	}
}

package scorecard

import (
	"fmt"
	"testing"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func strp(s string) *string {
	return &s
}

func templateTree() ([]Element, []KPI) {
	// Two perspectives, two objectives each, one KPI element per objective.
	elements := []Element{
		{ID: "p1", OrganizationID: "tpl", ElementType: ElementTypePerspective, Name: "Financial", Weight: 0.5, OrderIndex: 0, OwnerUserID: strp("owner")},
		{ID: "p2", OrganizationID: "tpl", ElementType: ElementTypePerspective, Name: "Customer", Weight: 0.5, OrderIndex: 1},
		{ID: "o1", OrganizationID: "tpl", ParentID: strp("p1"), ElementType: ElementTypeObjective, Name: "Grow revenue", OrderIndex: 0},
		{ID: "o2", OrganizationID: "tpl", ParentID: strp("p1"), ElementType: ElementTypeObjective, Name: "Cut costs", OrderIndex: 1},
		{ID: "o3", OrganizationID: "tpl", ParentID: strp("p2"), ElementType: ElementTypeObjective, Name: "Retention", OrderIndex: 0},
		{ID: "o4", OrganizationID: "tpl", ParentID: strp("p2"), ElementType: ElementTypeObjective, Name: "NPS", OrderIndex: 1},
		{ID: "k1", OrganizationID: "tpl", ParentID: strp("o1"), ElementType: ElementTypeKPI, Name: "Revenue", OrderIndex: 0},
		{ID: "k2", OrganizationID: "tpl", ParentID: strp("o2"), ElementType: ElementTypeKPI, Name: "Opex", OrderIndex: 0},
		{ID: "k3", OrganizationID: "tpl", ParentID: strp("o3"), ElementType: ElementTypeKPI, Name: "Churn", OrderIndex: 0},
		{ID: "k4", OrganizationID: "tpl", ParentID: strp("o4"), ElementType: ElementTypeKPI, Name: "NPS score", OrderIndex: 0},
	}
	kpis := []KPI{
		{ID: "kpi1", ElementID: "k1", ScoringType: ScoringTypeGoalRedFlag, DataType: "currency", AggregationType: AggregationTypeSum, DecimalPrecision: 2, IsManualUpdate: true},
		{ID: "kpi2", ElementID: "k2", ScoringType: ScoringTypeGoalRedFlag, DataType: "currency", AggregationType: AggregationTypeSum, IsManualUpdate: true},
		{ID: "kpi3", ElementID: "k3", ScoringType: ScoringTypeGoalRedFlag, DataType: "percent", AggregationType: AggregationTypeAverage, RollupEnabled: true},
		{ID: "kpi4", ElementID: "k4", ScoringType: ScoringTypeGoalRedFlag, DataType: "number", AggregationType: AggregationTypeLastValue, CalculationEquation: strp("[KPI:kpi1]/100")},
	}
	return elements, kpis
}

func TestBuildReplicationPlanStructure(t *testing.T) {
	elements, kpis := templateTree()
	plan, err := buildReplicationPlan(elements, kpis, "neworg", sequentialIDs("new"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Elements) != len(elements) {
		t.Fatalf("expected %d cloned elements, got %d", len(elements), len(plan.Elements))
	}
	if len(plan.KPIs) != len(kpis) {
		t.Fatalf("expected %d cloned kpis, got %d", len(kpis), len(plan.KPIs))
	}

	cloneByOld := map[string]Element{}
	for oldID, newID := range plan.IDMap {
		for _, clone := range plan.Elements {
			if clone.ID == newID {
				cloneByOld[oldID] = clone
			}
		}
	}

	for _, original := range elements {
		clone, ok := cloneByOld[original.ID]
		if !ok {
			t.Fatalf("element %s was not cloned", original.ID)
		}
		if clone.ID == original.ID {
			t.Fatalf("clone of %s kept its template id", original.ID)
		}
		if clone.OrganizationID != "neworg" {
			t.Fatalf("clone of %s kept organization %s", original.ID, clone.OrganizationID)
		}
		if clone.Name != original.Name || clone.ElementType != original.ElementType || clone.Weight != original.Weight || clone.OrderIndex != original.OrderIndex {
			t.Fatalf("clone of %s lost scalar fields: %+v", original.ID, clone)
		}
		if clone.OwnerUserID != nil {
			t.Fatalf("ownership must not be inherited, clone of %s has owner", original.ID)
		}
		if original.ParentID == nil {
			if clone.ParentID != nil {
				t.Fatalf("root clone of %s gained a parent", original.ID)
			}
		} else {
			if clone.ParentID == nil || *clone.ParentID != plan.IDMap[*original.ParentID] {
				t.Fatalf("clone of %s has wrong parent mapping", original.ID)
			}
		}
	}
}

func TestBuildReplicationPlanParentsPrecedeChildren(t *testing.T) {
	elements, kpis := templateTree()
	plan, err := buildReplicationPlan(elements, kpis, "neworg", sequentialIDs("new"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	position := map[string]int{}
	for i, el := range plan.Elements {
		position[el.ID] = i
	}
	for _, el := range plan.Elements {
		if el.ParentID != nil && position[*el.ParentID] >= position[el.ID] {
			t.Fatalf("parent of %s inserted after child", el.Name)
		}
	}
}

func TestBuildReplicationPlanCopiesKPIConfig(t *testing.T) {
	elements, kpis := templateTree()
	plan, err := buildReplicationPlan(elements, kpis, "neworg", sequentialIDs("new"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byElement := map[string]KPI{}
	for _, kpi := range plan.KPIs {
		byElement[kpi.ElementID] = kpi
	}

	for _, original := range kpis {
		clone, ok := byElement[plan.IDMap[original.ElementID]]
		if !ok {
			t.Fatalf("kpi %s was not cloned", original.ID)
		}
		if clone.ID == original.ID {
			t.Fatalf("kpi clone kept template id %s", original.ID)
		}
		if clone.ScoringType != original.ScoringType || clone.DataType != original.DataType ||
			clone.AggregationType != original.AggregationType || clone.DecimalPrecision != original.DecimalPrecision ||
			clone.IsManualUpdate != original.IsManualUpdate || clone.RollupEnabled != original.RollupEnabled {
			t.Fatalf("kpi clone of %s lost configuration: %+v", original.ID, clone)
		}
	}

	// Equations are copied verbatim, template-id references and all.
	clone := byElement[plan.IDMap["k4"]]
	if clone.CalculationEquation == nil || *clone.CalculationEquation != "[KPI:kpi1]/100" {
		t.Fatalf("equation must be copied verbatim, got %v", clone.CalculationEquation)
	}
}

func TestBuildReplicationPlanEmptyTemplate(t *testing.T) {
	_, err := buildReplicationPlan(nil, nil, "neworg", sequentialIDs("new"))
	if err != ErrEmptyTemplate {
		t.Fatalf("expected ErrEmptyTemplate, got %v", err)
	}
}

func TestBuildReplicationPlanOrphanedParent(t *testing.T) {
	elements := []Element{
		{ID: "a", OrganizationID: "tpl", ParentID: strp("ghost"), ElementType: ElementTypeObjective, Name: "A"},
	}
	_, err := buildReplicationPlan(elements, nil, "neworg", sequentialIDs("new"))
	if err != ErrOrphanedElement {
		t.Fatalf("expected ErrOrphanedElement, got %v", err)
	}
}

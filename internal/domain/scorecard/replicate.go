package scorecard

// ReplicationPlan is a fully-resolved clone of a template subtree, ready to
// insert. Elements are ordered level by level so parents always precede
// their children.
type ReplicationPlan struct {
	Elements []Element
	KPIs     []KPI
	IDMap    map[string]string
}

// buildReplicationPlan clones the template elements (and their KPIs) into
// targetOrgID with fresh ids. Ownership is not inherited. KPI configuration
// is copied verbatim, including calculation equations; equations that
// reference template KPIs by id keep pointing at the template and must be
// remapped by the caller.
func buildReplicationPlan(elements []Element, kpis []KPI, targetOrgID string, newID func() string) (ReplicationPlan, error) {
	if len(elements) == 0 {
		return ReplicationPlan{}, ErrEmptyTemplate
	}

	byParent := map[string][]Element{}
	known := map[string]bool{}
	for _, el := range elements {
		known[el.ID] = true
	}
	var roots []Element
	for _, el := range elements {
		if el.ParentID == nil {
			roots = append(roots, el)
			continue
		}
		if !known[*el.ParentID] {
			return ReplicationPlan{}, ErrOrphanedElement
		}
		byParent[*el.ParentID] = append(byParent[*el.ParentID], el)
	}

	kpiByElement := map[string]KPI{}
	for _, kpi := range kpis {
		kpiByElement[kpi.ElementID] = kpi
	}

	plan := ReplicationPlan{IDMap: make(map[string]string, len(elements))}
	level := roots
	for len(level) > 0 {
		// Allocate the whole level before descending so children resolve
		// their parent through the id map.
		for _, el := range level {
			plan.IDMap[el.ID] = newID()
		}
		var next []Element
		for _, el := range level {
			clone := Element{
				ID:             plan.IDMap[el.ID],
				OrganizationID: targetOrgID,
				ElementType:    el.ElementType,
				Name:           el.Name,
				Description:    el.Description,
				Weight:         el.Weight,
				OrderIndex:     el.OrderIndex,
				OwnerUserID:    nil,
			}
			if el.ParentID != nil {
				mapped := plan.IDMap[*el.ParentID]
				clone.ParentID = &mapped
			}
			plan.Elements = append(plan.Elements, clone)

			if kpi, ok := kpiByElement[el.ID]; ok {
				plan.KPIs = append(plan.KPIs, KPI{
					ID:                  newID(),
					ElementID:           clone.ID,
					ScoringType:         kpi.ScoringType,
					DataType:            kpi.DataType,
					AggregationType:     kpi.AggregationType,
					DecimalPrecision:    kpi.DecimalPrecision,
					IsManualUpdate:      kpi.IsManualUpdate,
					CalculationEquation: kpi.CalculationEquation,
					RollupEnabled:       kpi.RollupEnabled,
				})
			}

			next = append(next, byParent[el.ID]...)
		}
		level = next
	}

	return plan, nil
}

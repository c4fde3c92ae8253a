package scorecard

import "context"

// ReplicateTemplate clones the whole scorecard subtree of templateOrgID
// into targetOrgID in one atomic write. An empty template replicates to
// nothing without error.
func (s *Service) ReplicateTemplate(ctx context.Context, templateOrgID, targetOrgID string) (ReplicationPlan, error) {
	elements, err := s.store.ListElements(ctx, templateOrgID)
	if err != nil {
		return ReplicationPlan{}, err
	}
	if len(elements) == 0 {
		return ReplicationPlan{}, nil
	}

	kpis, err := s.store.ListKPIsByOrganization(ctx, templateOrgID)
	if err != nil {
		return ReplicationPlan{}, err
	}

	plan, err := buildReplicationPlan(elements, kpis, targetOrgID, s.newID)
	if err != nil {
		return ReplicationPlan{}, err
	}

	if err := s.store.InsertReplicatedTree(ctx, plan.Elements, plan.KPIs); err != nil {
		return ReplicationPlan{}, err
	}
	return plan, nil
}

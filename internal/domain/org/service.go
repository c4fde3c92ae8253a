package org

import (
	"context"
	"errors"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Organization, error) {
	return s.store.ListOrganizations(ctx)
}

func (s *Service) Get(ctx context.Context, orgID string) (Organization, error) {
	return s.store.GetOrganization(ctx, orgID)
}

func (s *Service) Create(ctx context.Context, parentID *string, name, description string, isTemplate bool) (string, error) {
	if parentID != nil {
		if _, err := s.store.GetOrganization(ctx, *parentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", ErrParentNotFound
			}
			return "", err
		}
	}
	return s.store.CreateOrganization(ctx, parentID, name, description, isTemplate)
}

func (s *Service) Update(ctx context.Context, orgID, name, description string) error {
	return s.store.UpdateOrganization(ctx, orgID, name, description)
}

// DescendantIDs walks the organization tree breadth first from orgID and
// returns every descendant id, excluding orgID itself. A visited set guards
// against cycles even though the parent reference makes them unreachable by
// construction.
func (s *Service) DescendantIDs(ctx context.Context, orgID string) ([]string, error) {
	visited := map[string]bool{orgID: true}
	frontier := []string{orgID}
	var descendants []string

	for len(frontier) > 0 {
		children, err := s.store.ChildOrganizationIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, id := range children {
			if visited[id] {
				continue
			}
			visited[id] = true
			descendants = append(descendants, id)
			frontier = append(frontier, id)
		}
	}
	return descendants, nil
}

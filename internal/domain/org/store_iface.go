package org

import "context"

type StoreAPI interface {
	ListOrganizations(ctx context.Context) ([]Organization, error)
	GetOrganization(ctx context.Context, orgID string) (Organization, error)
	CreateOrganization(ctx context.Context, parentID *string, name, description string, isTemplate bool) (string, error)
	UpdateOrganization(ctx context.Context, orgID, name, description string) error
	ChildOrganizationIDs(ctx context.Context, parentIDs []string) ([]string, error)
}

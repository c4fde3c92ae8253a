package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, parent_id, name, COALESCE(description, ''), is_template, created_at
    FROM organizations
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.ParentID, &o.Name, &o.Description, &o.IsTemplate, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Store) GetOrganization(ctx context.Context, orgID string) (Organization, error) {
	var o Organization
	err := s.DB.QueryRow(ctx, `
    SELECT id, parent_id, name, COALESCE(description, ''), is_template, created_at
    FROM organizations
    WHERE id = $1
  `, orgID).Scan(&o.ID, &o.ParentID, &o.Name, &o.Description, &o.IsTemplate, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	if err != nil {
		return Organization{}, err
	}
	return o, nil
}

func (s *Store) CreateOrganization(ctx context.Context, parentID *string, name, description string, isTemplate bool) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO organizations (parent_id, name, description, is_template)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, parentID, name, description, isTemplate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateOrganization(ctx context.Context, orgID, name, description string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE organizations
    SET name = $1, description = $2
    WHERE id = $3
  `, name, description, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ChildOrganizationIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id
    FROM organizations
    WHERE parent_id = ANY($1)
    ORDER BY created_at
  `, parentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

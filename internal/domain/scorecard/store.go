package scorecard

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

func (s *Store) ListElements(ctx context.Context, orgID string) ([]Element, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, organization_id, parent_id, element_type, name, COALESCE(description, ''), weight, order_index, owner_user_id
    FROM scorecard_elements
    WHERE organization_id = $1
    ORDER BY order_index, name
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Element
	for rows.Next() {
		var el Element
		if err := rows.Scan(&el.ID, &el.OrganizationID, &el.ParentID, &el.ElementType, &el.Name, &el.Description, &el.Weight, &el.OrderIndex, &el.OwnerUserID); err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func (s *Store) GetElement(ctx context.Context, elementID string) (Element, error) {
	var el Element
	err := s.DB.QueryRow(ctx, `
    SELECT id, organization_id, parent_id, element_type, name, COALESCE(description, ''), weight, order_index, owner_user_id
    FROM scorecard_elements
    WHERE id = $1
  `, elementID).Scan(&el.ID, &el.OrganizationID, &el.ParentID, &el.ElementType, &el.Name, &el.Description, &el.Weight, &el.OrderIndex, &el.OwnerUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Element{}, ErrElementNotFound
	}
	if err != nil {
		return Element{}, err
	}
	return el, nil
}

func (s *Store) CreateElement(ctx context.Context, el Element) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO scorecard_elements (organization_id, parent_id, element_type, name, description, weight, order_index, owner_user_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, el.OrganizationID, el.ParentID, el.ElementType, el.Name, el.Description, el.Weight, el.OrderIndex, el.OwnerUserID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateElement(ctx context.Context, el Element) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE scorecard_elements
    SET name = $1, description = $2, weight = $3, order_index = $4, owner_user_id = $5
    WHERE id = $6
  `, el.Name, el.Description, el.Weight, el.OrderIndex, el.OwnerUserID, el.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrElementNotFound
	}
	return nil
}

func (s *Store) DeleteElement(ctx context.Context, elementID string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM scorecard_elements WHERE id = $1`, elementID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrElementNotFound
	}
	return nil
}

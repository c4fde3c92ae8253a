package org

import "time"

type Organization struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parentId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsTemplate  bool      `json:"isTemplate"`
	CreatedAt   time.Time `json:"createdAt"`
}

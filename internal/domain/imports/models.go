package imports

import (
	"time"

	"scorecard/internal/domain/schedule"
)

const (
	KindFile     = "file"
	KindDatabase = "database"
)

// SavedImport is a configured recurring data import. The connector that
// actually moves the data lives outside this server; the engine only decides
// when a run is due and records that it happened.
type SavedImport struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organizationId"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	ConfigJSON     []byte          `json:"config,omitempty"`
	Schedule       schedule.Config `json:"schedule"`
	Enabled        bool            `json:"enabled"`
	LastRunAt      *time.Time      `json:"lastRunAt"`
	CreatedAt      time.Time       `json:"createdAt"`
}

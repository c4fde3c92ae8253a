package imports

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListImports(ctx context.Context) ([]SavedImport, error)
	ListImportsByOrganization(ctx context.Context, orgID string) ([]SavedImport, error)
	GetImport(ctx context.Context, importID string) (SavedImport, error)
	CreateImport(ctx context.Context, imp SavedImport) (string, error)
	UpdateImport(ctx context.Context, imp SavedImport) error
	DeleteImport(ctx context.Context, importID string) error
	MarkRun(ctx context.Context, importID string, previousRunAt *time.Time, ranAt time.Time) (bool, error)
}

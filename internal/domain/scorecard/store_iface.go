package scorecard

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListElements(ctx context.Context, orgID string) ([]Element, error)
	GetElement(ctx context.Context, elementID string) (Element, error)
	CreateElement(ctx context.Context, el Element) (string, error)
	UpdateElement(ctx context.Context, el Element) error
	DeleteElement(ctx context.Context, elementID string) error

	GetKPI(ctx context.Context, kpiID string) (KPI, error)
	GetKPIByElement(ctx context.Context, elementID string) (KPI, error)
	ListKPIsByOrganization(ctx context.Context, orgID string) ([]KPI, error)
	CreateKPI(ctx context.Context, kpi KPI) (string, error)
	UpdateKPI(ctx context.Context, kpi KPI) error
	KPIIDsByElementName(ctx context.Context, orgIDs []string, name string) ([]string, error)

	UpsertValue(ctx context.Context, value KPIValue) (KPIValue, error)
	GetValue(ctx context.Context, kpiID string, periodDate time.Time) (KPIValue, bool, error)
	ListValues(ctx context.Context, kpiID string, limit int) ([]KPIValue, error)
	ValuesForPeriod(ctx context.Context, kpiIDs []string, periodDate time.Time) ([]KPIValue, error)
	LatestValues(ctx context.Context, kpiIDs []string, upTo time.Time) ([]KPIValue, error)

	InsertReplicatedTree(ctx context.Context, elements []Element, kpis []KPI) error
}

package alerts

import (
	"context"
	"log/slog"
	"time"

	"scorecard/internal/domain/scorecard"
)

type StoreAPI interface {
	ListRules(ctx context.Context, kpiID string) ([]Rule, error)
	GetRule(ctx context.Context, ruleID string) (Rule, error)
	CreateRule(ctx context.Context, rule Rule) (string, error)
	DeleteRule(ctx context.Context, ruleID string) error
	CreateAlert(ctx context.Context, ruleID, kpiID string, periodDate time.Time, message string) (string, error)
	ListAlerts(ctx context.Context, kpiID string, limit int) ([]Alert, error)
}

// Notifier is the in-app notification surface; delivery transports beyond
// that are out of scope here.
type Notifier interface {
	Create(ctx context.Context, userID, ntype, title, body string) error
}

type Service struct {
	store  StoreAPI
	notify Notifier
}

func NewService(store StoreAPI, notify Notifier) *Service {
	return &Service{store: store, notify: notify}
}

func (s *Service) ListRules(ctx context.Context, kpiID string) ([]Rule, error) {
	return s.store.ListRules(ctx, kpiID)
}

func (s *Service) GetRule(ctx context.Context, ruleID string) (Rule, error) {
	return s.store.GetRule(ctx, ruleID)
}

func (s *Service) CreateRule(ctx context.Context, rule Rule) (string, error) {
	if err := rule.Validate(); err != nil {
		return "", err
	}
	return s.store.CreateRule(ctx, rule)
}

func (s *Service) DeleteRule(ctx context.Context, ruleID string) error {
	return s.store.DeleteRule(ctx, ruleID)
}

func (s *Service) ListAlerts(ctx context.Context, kpiID string, limit int) ([]Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListAlerts(ctx, kpiID, limit)
}

// EvaluateValue runs every rule of the value's KPI against the fresh score
// and fires matching ones. Rule failures are logged, not propagated: a bad
// rule must not fail the value write that triggered evaluation.
func (s *Service) EvaluateValue(ctx context.Context, value scorecard.KPIValue) int {
	rules, err := s.store.ListRules(ctx, value.KPIID)
	if err != nil {
		slog.Warn("alert rule lookup failed", "kpiId", value.KPIID, "err", err)
		return 0
	}

	fired := 0
	for _, rule := range rules {
		if !rule.Matches(value) {
			continue
		}
		message := rule.Message(value)
		if _, err := s.store.CreateAlert(ctx, rule.ID, value.KPIID, value.PeriodDate, message); err != nil {
			slog.Warn("alert insert failed", "ruleId", rule.ID, "err", err)
			continue
		}
		fired++
		if s.notify != nil && rule.NotifyUserID != nil {
			if err := s.notify.Create(ctx, *rule.NotifyUserID, "kpi_alert", "KPI alert", message); err != nil {
				slog.Warn("alert notification failed", "ruleId", rule.ID, "err", err)
			}
		}
	}
	return fired
}

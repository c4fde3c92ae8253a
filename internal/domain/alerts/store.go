package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListRules(ctx context.Context, kpiID string) ([]Rule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, kpi_id, condition, color, score_below, notify_user_id, enabled
    FROM alert_rules
    WHERE kpi_id = $1
    ORDER BY created_at
  `, kpiID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var rule Rule
		var color *string
		if err := rows.Scan(&rule.ID, &rule.KPIID, &rule.Condition, &color, &rule.ScoreBelow, &rule.NotifyUserID, &rule.Enabled); err != nil {
			return nil, err
		}
		if color != nil {
			rule.Color = *color
		}
		out = append(out, rule)
	}
	return out, nil
}

func (s *Store) CreateRule(ctx context.Context, rule Rule) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO alert_rules (kpi_id, condition, color, score_below, notify_user_id, enabled)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, rule.KPIID, rule.Condition, nullIfEmpty(rule.Color), rule.ScoreBelow, rule.NotifyUserID, rule.Enabled).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DeleteRule(ctx context.Context, ruleID string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM alert_rules WHERE id = $1`, ruleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (s *Store) CreateAlert(ctx context.Context, ruleID, kpiID string, periodDate time.Time, message string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO alerts (rule_id, kpi_id, period_date, message)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, ruleID, kpiID, periodDate, message).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListAlerts(ctx context.Context, kpiID string, limit int) ([]Alert, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, rule_id, kpi_id, period_date, message, created_at
    FROM alerts
    WHERE kpi_id = $1
    ORDER BY created_at DESC
    LIMIT $2
  `, kpiID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var alert Alert
		if err := rows.Scan(&alert.ID, &alert.RuleID, &alert.KPIID, &alert.PeriodDate, &alert.Message, &alert.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, alert)
	}
	return out, nil
}

func (s *Store) GetRule(ctx context.Context, ruleID string) (Rule, error) {
	var rule Rule
	var color *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, kpi_id, condition, color, score_below, notify_user_id, enabled
    FROM alert_rules
    WHERE id = $1
  `, ruleID).Scan(&rule.ID, &rule.KPIID, &rule.Condition, &color, &rule.ScoreBelow, &rule.NotifyUserID, &rule.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrRuleNotFound
	}
	if err != nil {
		return Rule{}, err
	}
	if color != nil {
		rule.Color = *color
	}
	return rule, nil
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

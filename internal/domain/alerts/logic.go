package alerts

import (
	"errors"
	"fmt"

	"scorecard/internal/domain/scorecard"
)

var (
	ErrRuleNotFound     = errors.New("alert rule not found")
	ErrUnknownCondition = errors.New("unknown alert condition")
	ErrInvalidCondition = errors.New("alert condition is missing its parameter")
)

func (r Rule) Validate() error {
	switch r.Condition {
	case ConditionColorIs:
		if r.Color == "" {
			return ErrInvalidCondition
		}
	case ConditionScoreBelow:
		if r.ScoreBelow == nil {
			return ErrInvalidCondition
		}
	default:
		return ErrUnknownCondition
	}
	return nil
}

// Matches reports whether the rule fires for the given scored value.
// Values with a null score never fire: there is no signal to judge.
func (r Rule) Matches(value scorecard.KPIValue) bool {
	if !r.Enabled || value.Score == nil {
		return false
	}
	switch r.Condition {
	case ConditionColorIs:
		return string(value.Color) == r.Color
	case ConditionScoreBelow:
		return r.ScoreBelow != nil && *value.Score < *r.ScoreBelow
	default:
		return false
	}
}

func (r Rule) Message(value scorecard.KPIValue) string {
	switch r.Condition {
	case ConditionColorIs:
		return fmt.Sprintf("KPI went %s for period %s", r.Color, value.PeriodDate.Format("2006-01-02"))
	case ConditionScoreBelow:
		return fmt.Sprintf("KPI score %.0f dropped below %.0f for period %s", *value.Score, *r.ScoreBelow, value.PeriodDate.Format("2006-01-02"))
	default:
		return "KPI alert"
	}
}

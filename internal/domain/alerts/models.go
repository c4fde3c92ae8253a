package alerts

import "time"

const (
	ConditionColorIs    = "color_is"
	ConditionScoreBelow = "score_below"
)

// Rule fires when a freshly scored KPI value matches its condition. The
// condition is a tagged variant: ConditionColorIs uses Color,
// ConditionScoreBelow uses ScoreBelow.
type Rule struct {
	ID           string   `json:"id"`
	KPIID        string   `json:"kpiId"`
	Condition    string   `json:"condition"`
	Color        string   `json:"color,omitempty"`
	ScoreBelow   *float64 `json:"scoreBelow,omitempty"`
	NotifyUserID *string  `json:"notifyUserId"`
	Enabled      bool     `json:"enabled"`
}

type Alert struct {
	ID         string    `json:"id"`
	RuleID     string    `json:"ruleId"`
	KPIID      string    `json:"kpiId"`
	PeriodDate time.Time `json:"periodDate"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

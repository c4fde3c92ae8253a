package scorecard

import (
	"time"

	"scorecard/internal/domain/scoring"
)

type Element struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organizationId"`
	ParentID       *string `json:"parentId"`
	ElementType    string  `json:"elementType"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Weight         float64 `json:"weight"`
	OrderIndex     int     `json:"orderIndex"`
	OwnerUserID    *string `json:"ownerUserId"`
}

type KPI struct {
	ID                  string  `json:"id"`
	ElementID           string  `json:"elementId"`
	ScoringType         string  `json:"scoringType"`
	DataType            string  `json:"dataType"`
	AggregationType     string  `json:"aggregationType"`
	DecimalPrecision    int     `json:"decimalPrecision"`
	IsManualUpdate      bool    `json:"isManualUpdate"`
	CalculationEquation *string `json:"calculationEquation"`
	RollupEnabled       bool    `json:"rollupEnabled"`
}

// ValueSource reports which of the three mutually-exclusive sources feeds
// this KPI's values. Exclusion is enforced at the API boundary; a KPI read
// back from storage can only ever report one source.
func (k KPI) ValueSource() string {
	switch {
	case k.RollupEnabled:
		return ValueSourceRollup
	case k.CalculationEquation != nil && *k.CalculationEquation != "":
		return ValueSourceEquation
	default:
		return ValueSourceManual
	}
}

// KPIValue holds the raw reading for one period plus the derived score and
// color. Score and Color are jointly null, never one without the other.
type KPIValue struct {
	ID              string        `json:"id"`
	KPIID           string        `json:"kpiId"`
	PeriodDate      time.Time     `json:"periodDate"`
	ActualValue     *string       `json:"actualValue"`
	TargetValue     *string       `json:"targetValue"`
	ThresholdRed    *string       `json:"thresholdRed"`
	ThresholdYellow *string       `json:"thresholdYellow"`
	Score           *float64      `json:"score"`
	Color           scoring.Color `json:"color,omitempty"`
}

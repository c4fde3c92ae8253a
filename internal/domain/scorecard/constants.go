package scorecard

const (
	ElementTypePerspective = "perspective"
	ElementTypeObjective   = "objective"
	ElementTypeInitiative  = "initiative"
	ElementTypeKPI         = "kpi"

	ScoringTypeGoalRedFlag = "goal_redflag"
	ScoringTypeYesNo       = "yes_no"
	ScoringTypeText        = "text"

	AggregationTypeSum       = "sum"
	AggregationTypeAverage   = "average"
	AggregationTypeLastValue = "last_value"

	ValueSourceManual   = "manual"
	ValueSourceEquation = "equation"
	ValueSourceRollup   = "rollup"
)

var ElementTypes = []string{
	ElementTypePerspective,
	ElementTypeObjective,
	ElementTypeInitiative,
	ElementTypeKPI,
}

var ScoringTypes = []string{
	ScoringTypeGoalRedFlag,
	ScoringTypeYesNo,
	ScoringTypeText,
}

var AggregationTypes = []string{
	AggregationTypeSum,
	AggregationTypeAverage,
	AggregationTypeLastValue,
}

package scorecard

import "errors"

var (
	ErrElementNotFound    = errors.New("scorecard element not found")
	ErrKPINotFound        = errors.New("kpi not found")
	ErrNotRollupKPI       = errors.New("kpi does not have rollup enabled")
	ErrNoEquation         = errors.New("kpi has no calculation equation")
	ErrMixedValueSources  = errors.New("kpi must have exactly one of manual entry, equation, or rollup")
	ErrUnknownAggregation = errors.New("unknown aggregation type")
	ErrEmptyTemplate      = errors.New("template organization has no scorecard elements")
	ErrOrphanedElement    = errors.New("scorecard element references a parent outside the subtree")
)

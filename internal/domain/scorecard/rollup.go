package scorecard

import "time"

// Contribution is one descendant KPI's candidate value for a rollup.
type Contribution struct {
	KPIID      string
	PeriodDate time.Time
	Value      *float64
}

// Aggregate combines descendant contributions with the given strategy.
// Nil contributions never count; with no contributors the result is nil.
func Aggregate(contributions []Contribution, aggregationType string) (*float64, error) {
	var contributing []Contribution
	for _, c := range contributions {
		if c.Value != nil {
			contributing = append(contributing, c)
		}
	}
	if len(contributing) == 0 {
		return nil, nil
	}

	switch aggregationType {
	case AggregationTypeSum:
		total := 0.0
		for _, c := range contributing {
			total += *c.Value
		}
		return &total, nil
	case AggregationTypeAverage:
		total := 0.0
		for _, c := range contributing {
			total += *c.Value
		}
		mean := total / float64(len(contributing))
		return &mean, nil
	case AggregationTypeLastValue:
		// Most recent period wins; on equal periods the earliest
		// contribution in input order is kept.
		latest := contributing[0]
		for _, c := range contributing[1:] {
			if c.PeriodDate.After(latest.PeriodDate) {
				latest = c
			}
		}
		return latest.Value, nil
	default:
		return nil, ErrUnknownAggregation
	}
}

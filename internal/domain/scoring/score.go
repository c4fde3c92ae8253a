package scoring

import "math"

type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
)

// Result pairs a score in [0,100] with a traffic-light color. Score and
// Color are jointly null: a nil Score always comes with an empty Color.
type Result struct {
	Score *float64
	Color Color
}

func (r Result) IsNull() bool {
	return r.Score == nil
}

var nullResult = Result{}

// Score maps a raw KPI reading onto a score and color, "higher is better"
// relative to target. All inputs are optional.
func Score(actual, target, thresholdRed, thresholdYellow *float64) Result {
	if actual == nil || math.IsNaN(*actual) {
		return nullResult
	}
	value := *actual

	if target != nil && !math.IsNaN(*target) {
		switch {
		case value >= *target:
			return result(100, ColorGreen)
		case thresholdYellow != nil && value >= *thresholdYellow:
			return result(50, ColorYellow)
		case thresholdRed != nil && value >= *thresholdRed:
			return result(25, ColorRed)
		default:
			return result(0, ColorRed)
		}
	}

	if thresholdRed != nil || thresholdYellow != nil {
		switch {
		case thresholdYellow != nil && value >= *thresholdYellow:
			return result(75, ColorYellow)
		case thresholdRed != nil && value >= *thresholdRed:
			return result(50, ColorRed)
		case value < lowestThreshold(thresholdRed, thresholdYellow):
			return result(0, ColorRed)
		default:
			return nullResult
		}
	}

	return nullResult
}

func lowestThreshold(thresholdRed, thresholdYellow *float64) float64 {
	if thresholdRed != nil {
		return *thresholdRed
	}
	if thresholdYellow != nil {
		return *thresholdYellow
	}
	return math.Inf(-1)
}

func result(score float64, color Color) Result {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Result{Score: &score, Color: color}
}

package rating

import (
	"math"
	"strconv"
)

// Score bounds for a single rated skill.
const (
	MinScore = 1
	MaxScore = 5
)

// NoRating is shown when there is no usable value.
const NoRating = "—"

var labels = [...]string{"Bad", "Not bad", "Good", "Very Good", "Excellent"}

// Option is one entry of a score select input.
type Option struct {
	Value int
	Label string
}

// Label maps a 1..5 score to its display label.
// Values outside the scale render as the bare integer.
func Label(score int) string {
	if score < MinScore || score > MaxScore {
		return strconv.Itoa(score)
	}
	return labels[score-MinScore]
}

// LabelFromAverage clamps an average to [1,5], rounds it to the nearest score
// and returns its label. NaN yields NoRating.
// INVARIANT: any non-NaN input, infinities included, maps to one of the five labels
func LabelFromAverage(avg float64) string {
	if math.IsNaN(avg) {
		return NoRating
	}
	// clamp before converting: int() of a huge float is undefined
	bounded := math.Min(MaxScore, math.Max(MinScore, avg))
	return Label(int(math.Round(bounded)))
}

// Clamp bounds a score to [MinScore, MaxScore].
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Options returns the choices for a score select input, lowest first.
func Options() []Option {
	opts := make([]Option, 0, MaxScore-MinScore+1)
	for v := MinScore; v <= MaxScore; v++ {
		opts = append(opts, Option{Value: v, Label: strconv.Itoa(v)})
	}
	return opts
}

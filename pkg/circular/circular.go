// Package circular provides directional statistics for time-of-day data.
// A time of day is expressed as a fraction of a day (0 = midnight, 0.5 = noon)
// and mapped onto the unit circle, so that averages wrap correctly across
// midnight.
package circular

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// TwoPi is one full revolution in radians
const TwoPi = 2 * math.Pi

// ErrInvalidInput is returned when a summary is requested for an empty set of observations
var ErrInvalidInput = errors.New("circular: at least one observation is required")

// Summary holds the circular mean direction and mean resultant length of a set of angles
type Summary struct {
	MeanAngle       float64 // radians, [0, 2π)
	ResultantLength float64 // R, [0, 1]: 0 = fully dispersed, 1 = identical
	N               int     // number of observations summarized
}

// FractionToAngle converts a fractional day to radians. Values outside [0,1)
// are accepted and simply land on a later or earlier revolution.
func FractionToAngle(v float64) float64 {
	return v * TwoPi
}

// AngleToFraction converts radians to a fractional day in [0,1)
func AngleToFraction(theta float64) float64 {
	return NormalizeAngle(theta) / TwoPi
}

// NormalizeAngle wraps an angle to the range [0, 2π)
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, TwoPi)
	if theta < 0 {
		theta += TwoPi
	}
	// math.Mod of a tiny negative value plus 2π can round up to exactly 2π
	if theta >= TwoPi {
		theta = 0
	}
	return theta
}

// Summarize computes the circular summary of a set of fractional-day observations
func Summarize(fractions []float64) (Summary, error) {
	if len(fractions) == 0 {
		return Summary{}, ErrInvalidInput
	}

	angles := make([]float64, len(fractions))
	for i, v := range fractions {
		angles[i] = FractionToAngle(v)
	}

	return SummarizeAngles(angles)
}

// SummarizeAngles computes the circular summary of a set of angles in radians
func SummarizeAngles(angles []float64) (Summary, error) {
	n := len(angles)
	if n == 0 {
		return Summary{}, ErrInvalidInput
	}

	cosines := make([]float64, n)
	sines := make([]float64, n)
	for i, theta := range angles {
		cosines[i] = math.Cos(theta)
		sines[i] = math.Sin(theta)
	}

	meanX := stat.Mean(cosines, nil)
	meanY := stat.Mean(sines, nil)

	// a tiny negative atan2 result must wrap to 0, not 2π
	meanAngle := NormalizeAngle(math.Atan2(meanY, meanX))

	// Rounding can push a perfectly concentrated sample a hair past 1
	r := math.Min(math.Hypot(meanX, meanY), 1)

	return Summary{
		MeanAngle:       meanAngle,
		ResultantLength: r,
		N:               n,
	}, nil
}

// MeanFraction returns the mean direction as a fractional day in [0,1)
func (s Summary) MeanFraction() float64 {
	return AngleToFraction(s.MeanAngle)
}

// MeanHours returns the mean direction as hours past midnight in [0,24)
func (s Summary) MeanHours() float64 {
	return math.Mod(s.MeanAngle/TwoPi*24, 24)
}

// ClockLabel formats the mean direction as a zero-padded 24-hour HH:MM label.
// Minutes are truncated, not rounded.
func (s Summary) ClockLabel() string {
	hourFraction := s.MeanHours()
	hour := math.Floor(hourFraction)
	minute := math.Floor((hourFraction - hour) * 60)
	return fmt.Sprintf("%02d:%02d", int(hour), int(minute))
}

// Variance returns the circular variance 1 - R
func (s Summary) Variance() float64 {
	return 1 - s.ResultantLength
}

// StdDev returns the circular standard deviation sqrt(-2 ln R) in radians.
// It is +Inf for a perfectly dispersed sample.
func (s Summary) StdDev() float64 {
	if s.ResultantLength <= 0 {
		return math.Inf(1)
	}
	return math.Sqrt(-2 * math.Log(s.ResultantLength))
}

// StdDevHours returns the circular standard deviation expressed in hours
func (s Summary) StdDevHours() float64 {
	return s.StdDev() / TwoPi * 24
}

// Group is a named, ordered set of fractional-day observations
type Group struct {
	Name         string
	Observations []float64
}

// Summarize computes the circular summary of the group's observations
func (g Group) Summarize() (Summary, error) {
	s, err := Summarize(g.Observations)
	if err != nil {
		return Summary{}, fmt.Errorf("group %q: %w", g.Name, err)
	}
	return s, nil
}

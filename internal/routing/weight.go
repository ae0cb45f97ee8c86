package routing

import (
	"errors"
	"fmt"
	"math"
)

// RiskFactor scales a destination stop's risk score into a multiplicative penalty
const RiskFactor = 0.1

var (
	ErrNegativeDuration = errors.New("segment duration must not be negative")
	ErrNegativeRisk     = errors.New("risk score must not be negative")
)

// RiskWeight returns the edge weight for travelling durationSeconds into a stop
// with the given risk score: duration * (1 + risk * RiskFactor).
// A zero-risk edge weighs exactly its duration and no risk makes an edge cheaper.
func RiskWeight(durationSeconds, destinationRisk float64) (float64, error) {
	if durationSeconds < 0 || math.IsNaN(durationSeconds) || math.IsInf(durationSeconds, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNegativeDuration, durationSeconds)
	}
	if destinationRisk < 0 || math.IsNaN(destinationRisk) || math.IsInf(destinationRisk, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNegativeRisk, destinationRisk)
	}
	return durationSeconds * (1 + destinationRisk*RiskFactor), nil
}

package governance

// Scalars are the four deterministic governance scores computeMMX produces
// for one request: coherence, conflict, drift, and wall_cost.
type Scalars struct {
	Coherence float64
	Conflict  float64
	Drift     float64
	WallCost  float64
}

// Reason codes for threshold violations, checked in the fixed order
// coherence, conflict, drift, wall_cost so reason_codes is reproducible.
const (
	ReasonLowCoherence = "LOW_COHERENCE"
	ReasonHighConflict = "HIGH_CONFLICT"
	ReasonHighDrift    = "HIGH_DRIFT"
	ReasonHighWallCost = "HIGH_WALL_COST"
)

// Violations returns the ordered reason codes for every threshold scalars
// fails against thresholds.
func Violations(scalars Scalars, thresholds Thresholds) []string {
	var reasons []string
	if scalars.Coherence < thresholds.CoherenceMin {
		reasons = append(reasons, ReasonLowCoherence)
	}
	if scalars.Conflict > thresholds.ConflictMax {
		reasons = append(reasons, ReasonHighConflict)
	}
	if scalars.Drift > thresholds.DriftMax {
		reasons = append(reasons, ReasonHighDrift)
	}
	if scalars.WallCost > thresholds.WallCostMax {
		reasons = append(reasons, ReasonHighWallCost)
	}
	return reasons
}

package governance

// TrustState is the lattice DECIDE derives from agent/key/manifest
// health, from fully trusted (T0) to integrity-degraded (T4). Higher
// states tighten or replace the thresholds a request is scored against.
type TrustState int

const (
	// T0Trusted is the fully trusted state: keys valid, time trusted,
	// manifest current, no key rotation pending, integrity intact.
	T0Trusted TrustState = iota
	// T1TimeUntrusted tightens thresholds by 1.25x.
	T1TimeUntrusted
	// T2ManifestStale tightens thresholds by 1.5x.
	T2ManifestStale
	// T3KeyRolloverRequired uses near-absolute limits.
	T3KeyRolloverRequired
	// T4IntegrityDegraded returns thresholds that can never be satisfied.
	T4IntegrityDegraded
)

// TrustInputs are the raw health signals TrustState is derived from.
type TrustInputs struct {
	KeysValid         bool
	TimeTrusted       bool
	ManifestCurrent   bool
	KeyRotationNeeded bool
	IntegrityOK       bool
}

// DeriveTrustState applies the fixed priority order T4 > T3 > T2 > T1 > T0.
func DeriveTrustState(in TrustInputs) TrustState {
	switch {
	case !in.IntegrityOK:
		return T4IntegrityDegraded
	case in.KeyRotationNeeded:
		return T3KeyRolloverRequired
	case !in.ManifestCurrent:
		return T2ManifestStale
	case !in.TimeTrusted:
		return T1TimeUntrusted
	case !in.KeysValid:
		// Invalid keys with everything else healthy is treated the same
		// as a pending rollover: the kernel cannot trust signatures it
		// produces until new keys are in place.
		return T3KeyRolloverRequired
	default:
		return T0Trusted
	}
}

const (
	t1TighteningFactor = 1.25
	t2TighteningFactor = 1.5
)

// t3Thresholds are the near-absolute limits for key-rollover-required:
// almost nothing passes, by design.
func t3Thresholds() Thresholds {
	return Thresholds{CoherenceMin: 0.99, ConflictMax: 0.01, DriftMax: 0.01, WallCostMax: 0.05}
}

// t4Thresholds can never be satisfied by any finite scalar: coherence_min
// above 1.0 and the max fields below 0, so every comparison in
// ThresholdsViolations fails closed.
func t4Thresholds() Thresholds {
	return Thresholds{CoherenceMin: 1.01, ConflictMax: -1, DriftMax: -1, WallCostMax: -1}
}

// LookupThresholds returns the threshold quadruple in force at the given
// trust state, scaling the manifest's base thresholds (or the package
// defaults, if the manifest carries none) by the trust state's factor.
func LookupThresholds(state TrustState, manifest *FluxManifest) Thresholds {
	base := DefaultThresholds()
	if manifest != nil && manifest.Thresholds != nil {
		base = *manifest.Thresholds
	}

	switch state {
	case T0Trusted:
		return base
	case T1TimeUntrusted:
		return tighten(base, t1TighteningFactor)
	case T2ManifestStale:
		return tighten(base, t2TighteningFactor)
	case T3KeyRolloverRequired:
		return t3Thresholds()
	case T4IntegrityDegraded:
		return t4Thresholds()
	default:
		return base
	}
}

// tighten scales coherence_min up (harder to clear) and the max fields
// down, clamping coherence_min at 1.0 so tightening can never demand more
// than perfect coherence.
func tighten(base Thresholds, factor float64) Thresholds {
	out := Thresholds{
		CoherenceMin: base.CoherenceMin * factor,
		ConflictMax:  base.ConflictMax / factor,
		DriftMax:     base.DriftMax / factor,
		WallCostMax:  base.WallCostMax / factor,
	}
	if out.CoherenceMin > 1.0 {
		out.CoherenceMin = 1.0
	}
	return out
}

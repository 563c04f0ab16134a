package sim

import (
	"hash/fnv"
	"math/rand"
)

// === ScenarioKey ===

// ScenarioKey uniquely identifies a reproducible scenario environment.
// Two environments built with the same ScenarioKey and identical geography
// MUST produce bit-for-bit identical results.
type ScenarioKey int64

// NewScenarioKey creates a ScenarioKey from a seed value.
func NewScenarioKey(seed int64) ScenarioKey {
	return ScenarioKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemDensity is the RNG subsystem for delivery-density draws.
	// Uses the master seed directly so --seed alone pins the density draws.
	SubsystemDensity = "density"

	// SubsystemFailures is the RNG subsystem for the failed-delivery rate draw.
	SubsystemFailures = "failures"

	// SubsystemSegments is the RNG subsystem for demand-segment share perturbation.
	SubsystemSegments = "segments"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemDensity: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine;
// environment construction is single-threaded.
type PartitionedRNG struct {
	key        ScenarioKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a ScenarioKey.
func NewPartitionedRNG(key ScenarioKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemDensity {
		derivedSeed = int64(p.key)
	} else {
		// All other subsystems: XOR with hash for isolation.
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the ScenarioKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() ScenarioKey {
	return p.key
}

// uniform draws from [lo, hi) using the given RNG.
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

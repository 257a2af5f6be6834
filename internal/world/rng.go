package world

import (
	"hash/fnv"
	"math/rand"
)

// DeterministicSeedValue derives a stable 64-bit seed from the root seed and
// a subsystem label, so each subsystem draws from its own stream and one
// subsystem's extra draws never perturb another's.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicRNG returns a subsystem RNG for the given label.
func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}

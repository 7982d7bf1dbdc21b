package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// PartitionedRNG hands out deterministic, isolated random streams per named
// subsystem. Two runs with the same master seed draw identical streams
// regardless of the order in which subsystems are first requested.
//
// Derivation: streamSeed = masterSeed XOR fnv1a64(name).
// Not safe for concurrent use; callers own one stream per goroutine.
type PartitionedRNG struct {
	masterSeed int64
	streams    map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(masterSeed int64) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: masterSeed,
		streams:    make(map[string]*rand.Rand),
	}
}

// ForStream returns the RNG for the named stream, creating it on first use.
// The same name always returns the same *rand.Rand instance.
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.masterSeed ^ fnv1a64(name)))
	p.streams[name] = rng
	return rng
}

// ReplicationStream names the RNG stream of the i-th replication.
func ReplicationStream(i int) string {
	return fmt.Sprintf("replication_%d", i)
}

// StreamEngine names the engine-internal stream (shift-tick sampling) of
// the i-th replication.
func StreamEngine(i int) string {
	return fmt.Sprintf("engine_%d", i)
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

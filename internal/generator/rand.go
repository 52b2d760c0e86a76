package generator

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"datagen-service/pkg/models"
)

// userSource derives an independent PRNG for one user from (run seed,
// user_id). Per-user streams keep parallel simulation order-independent and
// reproducible: no goroutine ever shares a generator.
func userSource(seed int64, userID string) *rand.Rand {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	h.Write([]byte(userID))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// newID draws a UUID from the supplied source instead of crypto/rand so
// identical seeds yield identical identifiers.
func newID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		// rand.Rand.Read never fails; keep uuid's error contract visible.
		panic(err)
	}
	return id.String()
}

// assignABGroup buckets a user by fnv64(user_id): a pure function of the id,
// so the same user lands in the same group on every run that references it.
func assignABGroup(userID string, treatmentRatio float64) models.ABGroup {
	h := fnv.New64a()
	h.Write([]byte(userID))
	bucket := float64(h.Sum64()%10_000) / 10_000
	if bucket < treatmentRatio {
		return models.ABTreatment
	}
	return models.ABControl
}

// poisson samples via Knuth's product method; fine for the small means used
// for per-user session counts.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// weightedIndex picks an index proportionally to weights; weights need not
// be normalized.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

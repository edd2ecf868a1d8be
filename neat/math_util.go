package neat

import "math/rand"

// uniform draws from U(-r, r).
func uniform(rng *rand.Rand, r float32) float32 {
	return rng.Float32()*2*r - r
}

// chance reports whether a Bernoulli trial with probability p succeeds.
// Values of p above 1 always succeed.
func chance(rng *rand.Rand, p float32) bool {
	return rng.Float64() < float64(p)
}

// coin flips a fair coin.
func coin(rng *rand.Rand) bool {
	return rng.Intn(2) == 1
}

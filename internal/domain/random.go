package domain

// RandomSource uniform [0, 1) generator injected into every noisy computation.
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

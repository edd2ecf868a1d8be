package neat

import "math"

// sigmoidSlope steepens the curve so neurons saturate quickly.
const sigmoidSlope = 4.9

// Sigmoid is the activation used by every hidden and output neuron:
// 2 / (1 + exp(-4.9x)) - 1. It is odd-symmetric with range (-1, 1).
func Sigmoid(x float32) float32 {
	// tanh(k/2 * x) is the same function and keeps exact odd symmetry.
	return float32(math.Tanh(sigmoidSlope / 2 * float64(x)))
}

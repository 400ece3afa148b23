package forstner

import "math"

// degenerateThreshold is the minimum det(M)/4 for a structure tensor to be
// considered invertible, per spec section 4.4.
const degenerateThreshold = 1e-5

// Result is the per-pixel outcome of scoring a structure tensor: either
// degenerate, or the larger eigenvalue of M^-1 plus the inverse matrix
// entries (a, b; b, d) needed by the covariance sink. M00, M10, M11 are the
// raw structure tensor sums the window accumulated, carried through mainly
// for tests that check the accumulator against a direct reference sum.
type Result struct {
	Degenerate    bool
	Lambda        float64
	A, B, D       float64
	M00, M10, M11 int64
}

// scoreWindow implements EigenScorer (spec section 4.4): computes
// det(M)/4, rejects near-singular windows, inverts, and returns the larger
// eigenvalue of the inverse.
func scoreWindow(m00, m10, m11 int64) Result {
	det := (float64(m00)*float64(m11) - float64(m10)*float64(m10)) / 4.0
	if det < degenerateThreshold {
		return Result{Degenerate: true, M00: m00, M10: m10, M11: m11}
	}

	a := float64(m11) / det
	d := float64(m00) / det
	b := -float64(m10) / det

	sum := a + d
	diff := a - d
	lambda := (sum + math.Sqrt(diff*diff+4*b*b)) / 2

	return Result{Lambda: lambda, A: a, B: b, D: d, M00: m00, M10: m10, M11: m11}
}

package forstner

const (
	sentinelInvalid    = -1.0
	sentinelDegenerate = -2.0
)

// sink receives one scored (or invalid) pixel at a time from the driver, in
// row-major order over the ROI. Implementations are the four public output
// adapters: DenseScore, DenseCovariance, Best, TopK.
type sink interface {
	score(ximg, yimg int, r Result)
	invalid(ximg, yimg int)
}

// DenseSink writes λ into a caller-owned float plane matching the image
// dimensions, addressed identically to the input image. Positions outside
// the ROI are left untouched; within the ROI, invalid positions get -1.0
// and degenerate ones get -2.0.
type DenseSink struct {
	Interest []float32
	stride   int
}

func newDenseSink(interest []float32, stride int) *DenseSink {
	return &DenseSink{Interest: interest, stride: stride}
}

func (s *DenseSink) score(ximg, yimg int, r Result) {
	v := sentinelDegenerate
	if !r.Degenerate {
		v = r.Lambda
	}
	s.Interest[yimg*s.stride+ximg] = float32(v)
}

func (s *DenseSink) invalid(ximg, yimg int) {
	s.Interest[yimg*s.stride+ximg] = float32(sentinelInvalid)
}

// CovarianceSink writes the inverse-matrix entries (a, b, d) into three
// parallel caller-owned float planes, with the same sentinel discipline as
// DenseSink.
type CovarianceSink struct {
	C00, C01, C11 []float32
	stride        int
}

func newCovarianceSink(c00, c01, c11 []float32, stride int) *CovarianceSink {
	return &CovarianceSink{C00: c00, C01: c01, C11: c11, stride: stride}
}

func (s *CovarianceSink) score(ximg, yimg int, r Result) {
	i := yimg*s.stride + ximg
	if r.Degenerate {
		s.C00[i] = sentinelDegenerate
		s.C01[i] = sentinelDegenerate
		s.C11[i] = sentinelDegenerate
		return
	}
	s.C00[i] = float32(r.A)
	s.C01[i] = float32(r.B)
	s.C11[i] = float32(r.D)
}

func (s *CovarianceSink) invalid(ximg, yimg int) {
	i := yimg*s.stride + ximg
	s.C00[i] = sentinelInvalid
	s.C01[i] = sentinelInvalid
	s.C11[i] = sentinelInvalid
}

// Point is one scored image position, in absolute image coordinates.
type Point struct {
	X, Y  int
	Score float64
}

// BestSink tracks the single smallest-λ non-degenerate point seen.
type BestSink struct {
	found bool
	best  Point
}

func newBestSink() *BestSink { return &BestSink{} }

func (s *BestSink) score(ximg, yimg int, r Result) {
	if r.Degenerate {
		return
	}
	if !s.found || r.Lambda < s.best.Score {
		s.found = true
		s.best = Point{X: ximg, Y: yimg, Score: r.Lambda}
	}
}

func (s *BestSink) invalid(ximg, yimg int) {}

// Result returns the best point found, or ok=false if every scored pixel
// was degenerate or the ROI had no valid pixels.
func (s *BestSink) Result() (p Point, ok bool) {
	return s.best, s.found
}

// TopKSink keeps the K points with the smallest λ seen so far, per spec
// section 4.6: append while under capacity, then track the worst
// (largest-λ) slot and replace-and-rescan only when a smaller score
// arrives. Output order is unspecified.
type TopKSink struct {
	k         int
	points    []Point
	worstIdx  int
	haveWorst bool
}

func newTopKSink(k int) *TopKSink {
	return &TopKSink{k: k, points: make([]Point, 0, k)}
}

func (s *TopKSink) score(ximg, yimg int, r Result) {
	if r.Degenerate || s.k <= 0 {
		return
	}
	p := Point{X: ximg, Y: yimg, Score: r.Lambda}

	if len(s.points) < s.k {
		s.points = append(s.points, p)
		if len(s.points) == s.k {
			s.recomputeWorst()
		}
		return
	}

	if p.Score >= s.points[s.worstIdx].Score {
		return
	}
	s.points[s.worstIdx] = p
	s.recomputeWorst()
}

func (s *TopKSink) invalid(ximg, yimg int) {}

func (s *TopKSink) recomputeWorst() {
	worst := 0
	for i := 1; i < len(s.points); i++ {
		if s.points[i].Score > s.points[worst].Score {
			worst = i
		}
	}
	s.worstIdx = worst
	s.haveWorst = true
}

// Result returns the (at most K) smallest-λ points found, in no defined
// order.
func (s *TopKSink) Result() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

package forstner

import "fmt"

// Pool is the optional process-wide resource described in spec section 5:
// three integer arrays sized for the largest column-sum store a caller
// expects to need, reserved once and reused across calls instead of
// allocating fresh buffers per call.
//
// A *Pool is not safe for concurrent use: sharing one across calls forces
// those calls to run one at a time (spec section 5). A nil *Pool, or one on
// which Reserve was never called, makes every call allocate its own
// transient buffers and is safe to use from multiple goroutines on
// disjoint output regions.
type Pool struct {
	reserved     bool
	s00, s01, s11 []int64
}

// Reserve allocates pool buffers sized maxColumns+maxN, matching the
// largest columnSumStore any subsequent call against this pool will need.
func (p *Pool) Reserve(maxColumns, maxN int) error {
	if p == nil {
		return fmt.Errorf("forstner: %w: nil pool", ErrBadParameter)
	}
	if maxColumns <= 0 || maxN <= 0 {
		return fmt.Errorf("forstner: %w: maxColumns and maxN must be positive", ErrBadParameter)
	}
	size := maxColumns + maxN
	p.s00 = make([]int64, size)
	p.s01 = make([]int64, size)
	p.s11 = make([]int64, size)
	p.reserved = true
	return nil
}

// Release returns the pool to its unreserved state; subsequent calls
// against it allocate transient buffers again.
func (p *Pool) Release() {
	if p == nil {
		return
	}
	p.reserved = false
	p.s00, p.s01, p.s11 = nil, nil, nil
}

// acquire returns three zeroed slices of length size, reusing the pool's
// backing arrays when the pool is reserved and large enough, or allocating
// transient slices otherwise.
func (p *Pool) acquire(size int) (s00, s01, s11 []int64, err error) {
	if p != nil && p.reserved && size <= len(p.s00) {
		s00, s01, s11 = p.s00[:size], p.s01[:size], p.s11[:size]
		for i := range s00 {
			s00[i], s01[i], s11[i] = 0, 0, 0
		}
		return s00, s01, s11, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("forstner: %w: %v", ErrOutOfMemory, r)
		}
	}()
	s00 = make([]int64, size)
	s01 = make([]int64, size)
	s11 = make([]int64, size)
	return s00, s01, s11, nil
}

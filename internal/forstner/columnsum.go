package forstner

// columnSumStore holds, for each column touched by a single engine call,
// the sum of (d0^2, d1^2, d0*d1) over the current window-height row band.
// Columns are addressed by absolute image x coordinate; base is the image
// column mapped to index 0. filled tracks which columns have ever been
// computed, so the first row's left-to-right sweep (transition B) can tell
// a fresh column from one already populated by a previous row.
type columnSumStore struct {
	base         int
	s00, s01, s11 []int64
	filled       []bool
}

// newColumnSumStore allocates (or slices from a pool) three parallel arrays
// of length size, representing absolute columns [base, base+size).
func newColumnSumStore(base, size int, pool *Pool) (columnSumStore, error) {
	s00, s01, s11, err := pool.acquire(size)
	if err != nil {
		return columnSumStore{}, err
	}
	return columnSumStore{
		base:   base,
		s00:    s00,
		s01:    s01,
		s11:    s11,
		filled: make([]bool, size),
	}, nil
}

func (c *columnSumStore) idx(ximg int) int { return ximg - c.base }

// set overwrites column ximg with a freshly computed sum (transitions A, B).
func (c *columnSumStore) set(ximg int, s00, s01, s11 int64) {
	i := c.idx(ximg)
	c.s00[i], c.s01[i], c.s11[i] = s00, s01, s11
	c.filled[i] = true
}

// get reads column ximg's current sums.
func (c *columnSumStore) get(ximg int) (s00, s01, s11 int64) {
	i := c.idx(ximg)
	return c.s00[i], c.s01[i], c.s11[i]
}

// isFilled reports whether column ximg currently holds a computed sum.
func (c *columnSumStore) isFilled(ximg int) bool {
	return c.filled[c.idx(ximg)]
}

// shiftRow updates column ximg in place for a one-row downward slide of the
// row band: subtract the contribution at the row leaving the band (yOld)
// and add the contribution at the row entering it (yNew). Used by
// transition C, once per column, once per output row after the first.
func (c *columnSumStore) shiftRow(img *Image, ximg, yOld, yNew int) {
	oldS00, oldS01, oldS11 := gradientProducts(img, ximg, yOld)
	newS00, newS01, newS11 := gradientProducts(img, ximg, yNew)
	i := c.idx(ximg)
	c.s00[i] += newS00 - oldS00
	c.s01[i] += newS01 - oldS01
	c.s11[i] += newS11 - oldS11
}

// computeColumn sums gradient products at (ximg, y) for y over
// [yTop, yBot] inclusive: a fresh O(window height) column sum, used to seed
// a column the store has never touched before (transitions A and B on the
// first output row).
func computeColumn(img *Image, ximg, yTop, yBot int) (s00, s01, s11 int64) {
	for y := yTop; y <= yBot; y++ {
		a, b, d := gradientProducts(img, ximg, y)
		s00 += a
		s01 += b
		s11 += d
	}
	return s00, s01, s11
}

package forstner

// windowAccumulator maintains the three running totals M00, M10, M11 over
// the current output pixel's neighborhood, updated incrementally as the
// driver sweeps the valid rectangle row-major.
//
// Window definition: for center (x, y) the neighborhood spans column
// offsets [1-w, w-1] and row offsets [1-w, w-1] relative to center, a
// sub-window narrower than the nominal N x N one per spec section 4.3's
// "N-1, not N" accumulation width. The offsets are kept symmetric about
// the center specifically so the central-difference gradient taps, which
// reach one pixel beyond each summed column/row, never exceed [-w, w] —
// exactly the valid rectangle's margin (params.go's computeValidRect). An
// asymmetric [-w, w-1] window (tried and rejected; see DESIGN.md) lets the
// low-edge tap reach w+1 pixels out, one past the image at the first valid
// center.
type windowAccumulator struct {
	w    window
	cols columnSumStore

	M00, M10, M11 int64

	winLeft int // absolute ximg of the leftmost column currently summed into M
}

// initTopLeft implements transition (A): builds the column-sum store for
// the first output column of the first valid row from scratch, and seeds
// M00/M10/M11 as the direct sum over that window.
func (a *windowAccumulator) initTopLeft(img *Image, x, y int) {
	w := a.w.w
	yTop, yBot := y-w+1, y+w-1
	a.M00, a.M10, a.M11 = 0, 0, 0
	for cx := x - w + 1; cx <= x+w-1; cx++ {
		s00, s01, s11 := computeColumn(img, cx, yTop, yBot)
		a.cols.set(cx, s00, s01, s11)
		a.M00 += s00
		a.M10 += s01
		a.M11 += s11
	}
	a.winLeft = x - w + 1
}

// slideRight implements transitions (B) and (D): the window moves one
// pixel right within the same row band. The column entering on the right
// is computed fresh (O(window height)) if the store has never touched it
// before (transition B, first valid row), or taken from the store as
// already updated by the most recent stepDown row-shift (transition D,
// later rows).
func (a *windowAccumulator) slideRight(img *Image, x, y int) {
	w := a.w.w
	yTop, yBot := y-w+1, y+w-1
	newCol := x + w - 1
	oldCol := a.winLeft

	if !a.cols.isFilled(newCol) {
		s00, s01, s11 := computeColumn(img, newCol, yTop, yBot)
		a.cols.set(newCol, s00, s01, s11)
	}

	newS00, newS01, newS11 := a.cols.get(newCol)
	oldS00, oldS01, oldS11 := a.cols.get(oldCol)
	a.M00 += newS00 - oldS00
	a.M10 += newS01 - oldS01
	a.M11 += newS11 - oldS11
	a.winLeft++
}

// stepDown implements transition (C): advances the entire row band by one
// row for every column the store currently holds (the union of all
// windows touched so far this call), then recomputes M00/M10/M11 as the
// fresh sum over the first column's window.
func (a *windowAccumulator) stepDown(img *Image, x, y, colLo, colHi int) {
	w := a.w.w
	yOld, yNew := y-w, y+w-1
	for cx := colLo; cx <= colHi; cx++ {
		a.cols.shiftRow(img, cx, yOld, yNew)
	}

	a.M00, a.M10, a.M11 = 0, 0, 0
	for cx := x - w + 1; cx <= x+w-1; cx++ {
		s00, s01, s11 := a.cols.get(cx)
		a.M00 += s00
		a.M10 += s01
		a.M11 += s11
	}
	a.winLeft = x - w + 1
}

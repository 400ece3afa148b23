package forstner

// run drives the shared engine over roi, feeding every scored (or invalid)
// pixel to sink in row-major order. It implements the four-transition
// state machine of spec section 4.5: transition A for the first valid
// pixel of the first valid row, B for later pixels of that row, C for the
// first valid pixel of every later row, D for later pixels of later rows.
func run(img *Image, roi ROI, w window, pool *Pool, s sink) error {
	vr := computeValidRect(img, roi, w)

	colLo := roi.X0 + vr.ixStart - w.w + 1
	colHi := roi.X0 + vr.ixStop + w.w - 1
	haveValidColumns := vr.ixStart <= vr.ixStop && vr.iyStart <= vr.iyStop

	var acc windowAccumulator
	if haveValidColumns {
		size := colHi - colLo + 1
		cols, err := newColumnSumStore(colLo, size, pool)
		if err != nil {
			return err
		}
		acc = windowAccumulator{w: w, cols: cols}
	}

	sawFirstValidRow := false

	for iy := 0; iy < roi.NY; iy++ {
		yimg := roi.Y0 + iy
		rowValid := haveValidColumns && iy >= vr.iyStart && iy <= vr.iyStop

		if !rowValid {
			for ix := 0; ix < roi.NX; ix++ {
				s.invalid(roi.X0+ix, yimg)
			}
			continue
		}

		firstColPending := true
		rowHadValidPixel := false

		for ix := 0; ix < roi.NX; ix++ {
			ximg := roi.X0 + ix

			if ix < vr.ixStart || ix > vr.ixStop {
				s.invalid(ximg, yimg)
				continue
			}

			switch {
			case firstColPending && !sawFirstValidRow:
				acc.initTopLeft(img, ximg, yimg) // transition A
			case firstColPending:
				acc.stepDown(img, ximg, yimg, colLo, colHi) // transition C
			default:
				acc.slideRight(img, ximg, yimg) // transitions B/D
			}
			firstColPending = false
			rowHadValidPixel = true

			s.score(ximg, yimg, scoreWindow(acc.M00, acc.M10, acc.M11))
		}

		if rowHadValidPixel {
			sawFirstValidRow = true
		}
	}

	return nil
}

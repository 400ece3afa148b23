package forstner

import "fmt"

// window holds the validated neighborhood size for one engine call.
type window struct {
	n int // odd, >= 3
	w int // half-width, n/2
}

// newWindow validates N (must be odd, >= 3) and derives the half-width.
func newWindow(n int) (window, error) {
	if n < 3 {
		return window{}, fmt.Errorf("forstner: %w: N must be >= 3, got %d", ErrBadParameter, n)
	}
	if n%2 == 0 {
		return window{}, fmt.Errorf("forstner: %w: N must be odd, got %d", ErrBadParameter, n)
	}
	return window{n: n, w: n / 2}, nil
}

// validRect is the ROI-local rectangle of centers lying at least w pixels
// inside every image edge (image x in [w, Width-w-1], y in [w, Height-w-1]).
// For these centers the accumulated sub-window (offsets [1-w, w-1]) plus the
// one-pixel central-difference tap stays inside the image.
// ixStart/ixStop/iyStart/iyStop are inclusive bounds;
// an empty rectangle is signalled by ixStart > ixStop (or the Y analogue).
type validRect struct {
	ixStart, ixStop int
	iyStart, iyStop int
}

func computeValidRect(img *Image, roi ROI, w window) validRect {
	xStart := w.w - roi.X0
	xStop := img.Width - w.w - roi.X0 - 1
	yStart := w.w - roi.Y0
	yStop := img.Height - w.w - roi.Y0 - 1
	return validRect{ixStart: xStart, ixStop: xStop, iyStart: yStart, iyStop: yStop}
}

// inRange reports whether ROI-local (ix, iy) lies in the valid rectangle.
func (v validRect) inRange(ix, iy int) bool {
	return ix >= v.ixStart && ix <= v.ixStop && iy >= v.iyStart && iy <= v.iyStop
}

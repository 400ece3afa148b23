package forstner

// gradientAt computes the fixed 3-point centered differences at image
// position (x, y). Both differences lie in [-255, 255]; the normalizing
// factor of 1/2 is deliberately omitted here and compensated once per pixel
// by EigenScorer (det/4), per spec section 4.1.
func gradientAt(img *Image, x, y int) (d0, d1 int32) {
	d0 = int32(img.At(x+1, y)) - int32(img.At(x-1, y))
	d1 = int32(img.At(x, y+1)) - int32(img.At(x, y-1))
	return d0, d1
}

// gradientProducts returns the three squared/cross gradient terms summed
// into the structure tensor at (x, y). Accumulated in int64: for 8-bit
// inputs and windows up to several hundred pixels wide, 255^2 * N^2 stays
// well clear of the int64 range, so there is no practical overflow bound to
// document (spec section 4.1 allows 32-bit; we widen for headroom).
func gradientProducts(img *Image, x, y int) (s00, s01, s11 int64) {
	d0, d1 := gradientAt(img, x, y)
	s00 = int64(d0) * int64(d0)
	s11 = int64(d1) * int64(d1)
	s01 = int64(d0) * int64(d1)
	return s00, s01, s11
}

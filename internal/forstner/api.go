package forstner

import "fmt"

// Dense implements forstner_dense (spec section 6): scores every ROI
// position and writes λ (or a sentinel) into interest, a float plane with
// the same stride as img. pool may be nil for a transient per-call
// allocation.
func Dense(img *Image, roi ROI, n int, interest []float32, pool *Pool) error {
	w, err := newWindow(n)
	if err != nil {
		return err
	}
	if err := roi.validate(img); err != nil {
		return err
	}
	if len(interest) < img.Width*img.Height {
		return fmt.Errorf("forstner: %w: interest buffer shorter than image", ErrBadParameter)
	}
	return run(img, roi, w, pool, newDenseSink(interest, img.Width))
}

// Covariance implements forstner_covariance (spec section 6): writes the
// inverse-matrix entries (c00, c01, c11) into three float planes with the
// same sentinel convention as Dense.
func Covariance(img *Image, roi ROI, n int, c00, c01, c11 []float32, pool *Pool) error {
	w, err := newWindow(n)
	if err != nil {
		return err
	}
	if err := roi.validate(img); err != nil {
		return err
	}
	need := img.Width * img.Height
	if len(c00) < need || len(c01) < need || len(c11) < need {
		return fmt.Errorf("forstner: %w: covariance buffer shorter than image", ErrBadParameter)
	}
	return run(img, roi, w, pool, newCovarianceSink(c00, c01, c11, img.Width))
}

// Best implements forstner_best (spec section 6): returns the single
// smallest-λ point in the ROI. ok is false if the ROI has no valid,
// non-degenerate pixel.
func Best(img *Image, roi ROI, n int, pool *Pool) (p Point, ok bool, err error) {
	w, err := newWindow(n)
	if err != nil {
		return Point{}, false, err
	}
	if err := roi.validate(img); err != nil {
		return Point{}, false, err
	}
	sink := newBestSink()
	if err := run(img, roi, w, pool, sink); err != nil {
		return Point{}, false, err
	}
	p, ok = sink.Result()
	return p, ok, nil
}

// TopK implements forstner_topk (spec section 6): returns at most k points
// with the smallest λ in the ROI, in no defined order.
func TopK(img *Image, roi ROI, n, k int, pool *Pool) ([]Point, error) {
	w, err := newWindow(n)
	if err != nil {
		return nil, err
	}
	if err := roi.validate(img); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("forstner: %w: K must be positive", ErrBadParameter)
	}
	sink := newTopKSink(k)
	if err := run(img, roi, w, pool, sink); err != nil {
		return nil, err
	}
	return sink.Result(), nil
}

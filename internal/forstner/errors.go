package forstner

import "errors"

// ErrBadParameter marks a fatal precondition failure (even N, N < 3, or an
// ROI extending outside the image). No output is written before this error
// is returned.
var ErrBadParameter = errors.New("bad parameter")

// ErrOutOfMemory marks a fatal allocation failure for the engine's
// summation buffers. No partial output state is visible after this error
// is returned.
var ErrOutOfMemory = errors.New("out of memory")

package server

import (
	"fmt"

	"github.com/nasa-jpl/forstner/internal/pgmio"
)

// probeImageDimensions loads the image just far enough to report its size,
// used by handleCreateJob to default an unset ROI to the full raster.
func probeImageDimensions(path string) (width, height int, err error) {
	img, err := pgmio.Load(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to probe image: %w", err)
	}
	return img.Width, img.Height, nil
}

// Package pgmio reads 8-bit grayscale rasters in the PGM (P5) format into
// forstner.Image values, the input the scan engine and server operate on.
package pgmio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nasa-jpl/forstner/internal/forstner"
)

// Load reads a binary (P5) PGM file from path and wraps its pixels in a
// forstner.Image. Only 8-bit (maxval <= 255) rasters are supported.
func Load(path string) (*forstner.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pgmio: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a binary (P5) PGM stream and wraps its pixels in a
// forstner.Image.
func Decode(r io.Reader) (*forstner.Image, error) {
	br := bufio.NewReader(r)

	magic, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("pgmio: reading magic number: %w", err)
	}
	if magic != "P5" {
		return nil, fmt.Errorf("pgmio: unsupported PGM magic %q, only P5 is supported", magic)
	}

	width, err := readInt(br)
	if err != nil {
		return nil, fmt.Errorf("pgmio: reading width: %w", err)
	}
	height, err := readInt(br)
	if err != nil {
		return nil, fmt.Errorf("pgmio: reading height: %w", err)
	}
	maxval, err := readInt(br)
	if err != nil {
		return nil, fmt.Errorf("pgmio: reading maxval: %w", err)
	}
	if maxval <= 0 || maxval > 255 {
		return nil, fmt.Errorf("pgmio: unsupported maxval %d, only 8-bit rasters are supported", maxval)
	}

	// readToken already consumed the single whitespace byte that terminates
	// the maxval token, so br is positioned at the first pixel byte.
	pix := make([]byte, width*height)
	if _, err := io.ReadFull(br, pix); err != nil {
		return nil, fmt.Errorf("pgmio: reading pixel data: %w", err)
	}

	return forstner.NewImage(pix, width, height)
}

// readToken skips comments (lines starting with '#') and whitespace, then
// reads one whitespace-delimited token.
func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '#' {
			if err := skipLine(br); err != nil {
				return "", err
			}
			continue
		}
		if isSpace(b) {
			if len(tok) > 0 {
				return string(tok), nil
			}
			continue
		}
		tok = append(tok, b)
	}
}

func readInt(br *bufio.Reader) (int, error) {
	tok, err := readToken(br)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(tok)
}

func skipLine(br *bufio.Reader) error {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return err
		}
		if b == '\n' {
			return nil
		}
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

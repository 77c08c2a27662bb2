// Package cover turns an uploaded image into the data URL stored as a
// deck cover.
package cover

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

// ErrTooLarge is returned when the upload exceeds the configured limit.
var ErrTooLarge = errors.New("cover image too large")

// Options bounds the stored thumbnail.
type Options struct {
	MaxDimension int   // longest side in pixels
	Quality      int   // JPEG quality, 1..100
	MaxBytes     int64 // upload limit, 0 for none
}

// Converter is the cover collaborator used by the deck list.
type Converter struct {
	opts Options
}

func NewConverter(opts Options) *Converter {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = 640
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 75
	}
	return &Converter{opts: opts}
}

// ToDataURL decodes r, shrinks it to fit MaxDimension and re-encodes it
// as a base64 JPEG data URL. Images already small enough are not upscaled.
func (c *Converter) ToDataURL(r io.Reader) (string, error) {
	if c.opts.MaxBytes > 0 {
		r = io.LimitReader(r, c.opts.MaxBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read cover: %w", err)
	}
	if c.opts.MaxBytes > 0 && int64(len(raw)) > c.opts.MaxBytes {
		return "", ErrTooLarge
	}
	if len(raw) == 0 {
		return "", errors.New("empty cover upload")
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode cover: %w", err)
	}

	img = c.fit(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.opts.Quality}); err != nil {
		return "", fmt.Errorf("failed to encode cover: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (c *Converter) fit(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= c.opts.MaxDimension && b.Dy() <= c.opts.MaxDimension {
		return img
	}
	return imaging.Fit(img, c.opts.MaxDimension, c.opts.MaxDimension, imaging.Lanczos)
}

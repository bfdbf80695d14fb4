// Package avatar turns an uploaded picture into the JPEG stored as a
// user's profile image.
package avatar

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register gif
	"image/jpeg"
	_ "image/png" // register png
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp
)

const ContentType = "image/jpeg"

// DefaultMaxPixels applies when Options.MaxPixels is not set
const DefaultMaxPixels = 40_000_000

var ErrInvalidImage = errors.New("file is not a supported image")

// Options controls normalization. MaxEdge <= 0 disables resizing.
// MaxPixels bounds the decoded width*height.
type Options struct {
	MaxEdge   int
	Quality   int
	MaxPixels int
}

// Image is a normalized avatar ready for upload
type Image struct {
	Data   []byte
	Width  int
	Height int
	// Digest is a short content hash used to version the public URL
	Digest string
}

func (i *Image) Size() int64 {
	return int64(len(i.Data))
}

// Normalize decodes r, scales it to fit within MaxEdge keeping the aspect
// ratio and re-encodes it as JPEG. The header is checked against MaxPixels
// before any pixel data is decoded.
func Normalize(r io.Reader, opts Options) (*Image, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}

	src, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), opts.MaxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src) // transparent pixels become white
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	quality := opts.Quality
	if quality <= 0 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	sum := blake2b.Sum256(buf.Bytes())

	return &Image{
		Data:   buf.Bytes(),
		Width:  w,
		Height: h,
		Digest: hex.EncodeToString(sum[:8]),
	}, nil
}

// fit returns the dimensions of a w x h image scaled down so that neither
// side exceeds maxEdge. Images already within bounds are left unchanged.
func fit(w, h, maxEdge int) (int, int) {
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return w, h
	}
	if w >= h {
		return maxEdge, max(1, h*maxEdge/w)
	}
	return max(1, w*maxEdge/h), maxEdge
}

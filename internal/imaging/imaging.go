package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	// Registered decoders, so phone exports are accepted.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/erazemk/vitrina/internal/model"
)

// MaxDimension is the maximum width or height of a compressed image.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 80

// TargetBytes is the upload budget MaxDimension and JPEGQuality are tuned
// for. Typical photos land well below it; it is not enforced.
const TargetBytes = 512 << 10

// Result contains the compressed image.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Preview returns a data URI that can be displayed before the upload
// completes.
func (r *Result) Preview() string {
	return "data:" + r.MIME + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// Compress decodes an image, applies its EXIF orientation, downscales it so
// neither dimension exceeds MaxDimension and re-encodes it as JPEG.
// Undecodable input yields a *model.ImageProcessingError.
func Compress(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, &model.ImageProcessingError{Err: errors.New("empty image")}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &model.ImageProcessingError{Err: fmt.Errorf("decoding image: %w", err)}
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, &model.ImageProcessingError{Err: fmt.Errorf("encoding JPEG: %w", err)}
	}

	b := img.Bounds()
	return &Result{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// ObjectName returns an upload name that does not collide with concurrent
// uploads: the timestamp orders names, the random suffix separates uploads
// within the same millisecond.
func ObjectName(t time.Time) string {
	return fmt.Sprintf("%d-%s.jpg", t.UnixMilli(), uuid.NewString())
}

// downscale resizes the image so neither dimension exceeds maxDim and
// flattens it onto a white background, since JPEG has no alpha channel.
// Images already within bounds keep their size.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	newW, newH := w, h
	if w > maxDim || h > maxDim {
		if w > h {
			newW = maxDim
			newH = int(float64(h) * float64(maxDim) / float64(w))
		} else {
			newH = maxDim
			newW = int(float64(w) * float64(maxDim) / float64(h))
		}
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if newW == w && newH == h {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

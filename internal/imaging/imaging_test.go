package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/vitrina/internal/model"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func decodeResult(t *testing.T, r *Result) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(r.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img
}

func TestCompressJPEG(t *testing.T) {
	result, err := Compress(createTestJPEG(100, 100))
	if err != nil {
		t.Fatalf("Compress JPEG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
	if len(result.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestCompressPNG(t *testing.T) {
	result, err := Compress(createTestPNG(100, 100))
	if err != nil {
		t.Fatalf("Compress PNG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", result.MIME)
	}
}

func TestCompressGIF(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 40, 20), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding gif: %v", err)
	}
	result, err := Compress(buf.Bytes())
	if err != nil {
		t.Fatalf("Compress GIF: %v", err)
	}
	if result.Width != 40 || result.Height != 20 {
		t.Errorf("expected 40x20, got %dx%d", result.Width, result.Height)
	}
}

func TestCompressDownscale(t *testing.T) {
	result, err := Compress(createTestJPEG(2048, 2048))
	if err != nil {
		t.Fatalf("Compress large image: %v", err)
	}

	bounds := decodeResult(t, result).Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		t.Errorf("expected max %dx%d, got %dx%d", MaxDimension, MaxDimension, bounds.Dx(), bounds.Dy())
	}
}

func TestCompressPreservesAspectRatio(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{3000, 1500, 1024, 512},
		{1500, 3000, 512, 1024},
		{1025, 10, 1024, 9},
		{4000, 2, 1024, 1},
	}

	for _, tt := range tests {
		result, err := Compress(createTestPNG(tt.w, tt.h))
		if err != nil {
			t.Fatalf("Compress %dx%d: %v", tt.w, tt.h, err)
		}
		bounds := decodeResult(t, result).Bounds()
		if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
			t.Errorf("%dx%d: expected %dx%d, got %dx%d", tt.w, tt.h, tt.wantW, tt.wantH, bounds.Dx(), bounds.Dy())
		}
		if result.Width != bounds.Dx() || result.Height != bounds.Dy() {
			t.Errorf("result reports %dx%d, image is %dx%d", result.Width, result.Height, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestCompressSmallImageNotUpscaled(t *testing.T) {
	result, err := Compress(createTestJPEG(50, 50))
	if err != nil {
		t.Fatalf("Compress small image: %v", err)
	}

	bounds := decodeResult(t, result).Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small image should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCompressTransparentBecomesWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	png.Encode(&buf, img)

	result, err := Compress(buf.Bytes())
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	r, g, b, _ := decodeResult(t, result).At(5, 5).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestCompressInvalidFormat(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not an image"), []byte("GIF89a...")} {
		_, err := Compress(data)
		var perr *model.ImageProcessingError
		if !errors.As(err, &perr) {
			t.Errorf("Compress(%q): expected ImageProcessingError, got %v", data, err)
		}
	}
}

func TestPreview(t *testing.T) {
	result, err := Compress(createTestPNG(8, 8))
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !strings.HasPrefix(result.Preview(), "data:image/jpeg;base64,") {
		t.Errorf("unexpected preview prefix: %.40s", result.Preview())
	}
}

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1760000000000)
	a := ObjectName(now)
	b := ObjectName(now)
	if a == b {
		t.Errorf("names generated in the same millisecond collide: %s", a)
	}
	if !strings.HasPrefix(a, "1760000000000-") || !strings.HasSuffix(a, ".jpg") {
		t.Errorf("unexpected object name %q", a)
	}
}

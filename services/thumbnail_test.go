package services

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateThumbnailImagePassthrough(t *testing.T) {
	original := pngBytes(t)

	url := GenerateThumbnail("photo.png", original, KindImage)
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected data URL prefix: %.40s", url)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	if err != nil {
		t.Fatalf("thumbnail payload is not valid base64: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Error("image thumbnail should carry the original bytes unmodified")
	}
}

func TestGenerateThumbnailBadge(t *testing.T) {
	for _, name := range []string{"report.pdf", "notes.docx", "data.xlsx", "weird.xyz", "noextension"} {
		t.Run(name, func(t *testing.T) {
			url := GenerateThumbnail(name, []byte("irrelevant"), KindPDF)
			if !strings.HasPrefix(url, "data:image/png;base64,") {
				t.Fatalf("unexpected data URL prefix: %.40s", url)
			}

			decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
			if err != nil {
				t.Fatalf("badge payload is not valid base64: %v", err)
			}

			img, err := png.Decode(bytes.NewReader(decoded))
			if err != nil {
				t.Fatalf("badge is not a decodable png: %v", err)
			}
			bounds := img.Bounds()
			if bounds.Dx() != thumbnailSize || bounds.Dy() != thumbnailSize {
				t.Errorf("badge is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), thumbnailSize, thumbnailSize)
			}

			// Corner pixel stays the canvas color
			r, g, b, _ := img.At(0, 0).RGBA()
			if r>>8 != 0xf0 || g>>8 != 0xf0 || b>>8 != 0xf0 {
				t.Errorf("corner pixel = %v, want #f0f0f0", img.At(0, 0))
			}
		})
	}
}

func TestGenerateThumbnailNeverEmpty(t *testing.T) {
	// Even garbage input for an unsupported kind yields a usable badge
	if url := GenerateThumbnail("????", nil, KindUnsupported); url == "" {
		t.Error("thumbnail for unsupported file should not be empty")
	}
}

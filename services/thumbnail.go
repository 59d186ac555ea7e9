package services

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"main/utils"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const thumbnailSize = 100

// accent colors for the synthesized file icon, keyed by lowercased extension
var iconColors = map[string]color.RGBA{
	"pdf":  {R: 0xd9, G: 0x3a, B: 0x2b, A: 0xff},
	"doc":  {R: 0x2b, G: 0x57, B: 0x9a, A: 0xff},
	"docx": {R: 0x2b, G: 0x57, B: 0x9a, A: 0xff},
	"xls":  {R: 0x21, G: 0x7a, B: 0x3c, A: 0xff},
	"xlsx": {R: 0x21, G: 0x7a, B: 0x3c, A: 0xff},
}

var genericIconColor = color.RGBA{R: 0x6b, G: 0x6b, B: 0x6b, A: 0xff}

// GenerateThumbnail produces a displayable data URL for an attachment.
// Images pass through unmodified; everything else gets a synthesized
// 100x100 icon badge. This function never fails outward: any problem falls
// back to the generic badge.
func GenerateThumbnail(fileName string, data []byte, kind FileKind) string {
	if kind == KindImage {
		contentType := http.DetectContentType(data)
		if !strings.HasPrefix(contentType, "image/") {
			// Trust the resolved kind over sniffing for formats like svg
			contentType = "image/" + strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
		}
		utils.TrackFileProcessing("thumbnail", true)
		return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	badge := renderBadge(ext)

	var buf bytes.Buffer
	if err := png.Encode(&buf, badge); err != nil {
		// Encoding an in-memory RGBA only fails if the writer does, but the
		// contract is no error escapes; log and return an empty thumbnail.
		log.Printf("Failed to encode thumbnail for %s: %v", fileName, err)
		utils.TrackFileProcessing("thumbnail", false)
		return ""
	}
	utils.TrackFileProcessing("thumbnail", true)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// renderBadge draws the light-gray canvas, a document icon tinted for the
// extension, and the uppercased extension label beneath the icon.
func renderBadge(ext string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, thumbnailSize, thumbnailSize))

	background := color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	accent, ok := iconColors[ext]
	if !ok {
		accent = genericIconColor
	}

	// Page body, centered in the upper half
	page := image.Rect(32, 20, 68, 68)
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	draw.Draw(img, page, &image.Uniform{C: white}, image.Point{}, draw.Src)

	// Folded corner
	corner := image.Rect(58, 20, 68, 30)
	draw.Draw(img, corner, &image.Uniform{C: background}, image.Point{}, draw.Src)

	// Accent bar across the lower part of the page
	bar := image.Rect(32, 54, 68, 68)
	draw.Draw(img, bar, &image.Uniform{C: accent}, image.Point{}, draw.Src)

	// Text lines on the page
	lineColor := color.RGBA{R: 0xc9, G: 0xc9, B: 0xc9, A: 0xff}
	for _, y := range []int{28, 36, 44} {
		line := image.Rect(37, y, 63, y+3)
		draw.Draw(img, line, &image.Uniform{C: lineColor}, image.Point{}, draw.Src)
	}

	drawLabel(img, strings.ToUpper(ext))
	return img
}

func drawLabel(img *image.RGBA, label string) {
	if label == "" {
		return
	}

	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{A: 0xff}),
		Face: face,
	}

	width := drawer.MeasureString(label)
	drawer.Dot = fixed.Point26_6{
		X: (fixed.I(thumbnailSize) - width) / 2,
		Y: fixed.I(90),
	}
	drawer.DrawString(label)
}

package ai

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/disintegration/imaging"
)

const (
	// Image optimization settings for AI processing
	maxImageWidth = 1000 // px, sufficient for reading score digits
	jpegQuality   = 75
)

// ImageProcessor shrinks photos before they go to the AI API.
type ImageProcessor struct{}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// OptimizeForAI resizes and recompresses a photo, typically cutting its size
// by an order of magnitude while keeping scoreboard digits readable.
func (p *ImageProcessor) OptimizeForAI(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var optimized image.Image = img
	if img.Bounds().Dx() > maxImageWidth {
		optimized = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, optimized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

package extract

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// imageText runs Tesseract over a photographed or scanned record. Small
// images are upscaled and converted to grayscale first; phone photos of
// discharge paperwork OCR poorly at native resolution.
func imageText(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	if gray.Bounds().Dy() < 1000 {
		gray = imaging.Resize(gray, 0, 1600, imaging.Lanczos)
	}

	tmpFile, err := os.CreateTemp("", "medpetrx-ocr-*.png")
	tmp := path
	if err == nil {
		tmp = tmpFile.Name()
		_ = tmpFile.Close()
		if err := imaging.Save(gray, tmp); err != nil {
			tmp = path
		}
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	client.SetImage(tmp)
	text, err := client.Text()
	if tmp != path {
		_ = os.Remove(tmp)
	}
	if err != nil {
		return "", fmt.Errorf("ocr error: %w", err)
	}
	return text, nil
}

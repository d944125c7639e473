package handlers

import (
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Resize image to max width 800 and compress
func processImage(file io.Reader, uploadDir string) (string, error) {
	img, _, err := image.Decode(file)
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > 800 {
		ratio := float64(800) / float64(width)
		width = 800
		height = int(float64(height) * ratio)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		return "", err
	}

	outPath := filepath.Join(uploadDir, uuid.NewString()+".jpg")
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	var opt jpeg.Options
	opt.Quality = 75
	if err := jpeg.Encode(out, dst, &opt); err != nil {
		return "", err
	}

	return outPath, nil
}

package extract

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// preprocessImage upscales, grayscales and binarizes a photo so small
// print survives recognition. The input may be any registered image
// format; the output is always PNG.
func preprocessImage(data []byte, scale float64, threshold uint8) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	width := int(float64(bounds.Dx()) * scale)
	if width < bounds.Dx() {
		width = bounds.Dx()
	}

	img := imaging.Resize(src, width, 0, imaging.Lanczos)
	img = imaging.Grayscale(img)
	img = binarize(img, threshold)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// binarize snaps every pixel to black or white around the threshold.
// The input is already grayscale, so the red channel carries luminance.
func binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			v := uint8(0)
			if c.R > threshold {
				v = 255
			}
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// WhiteOut returns a copy of img with every masked pixel set to opaque white.
//
// The source image is not modified. The copy always has its origin at (0,0),
// matching the mask's coordinate system. Mask pixels outside the image are
// ignored.
func WhiteOut(img image.Image, m *Mask) *image.NRGBA {
	out := imaging.Clone(img)
	bounds := out.Bounds()
	for y := 0; y < bounds.Dy() && y < m.Height; y++ {
		for x := 0; x < bounds.Dx() && x < m.Width; x++ {
			if !m.Bits[y*m.Width+x] {
				continue
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = 255
			out.Pix[i+1] = 255
			out.Pix[i+2] = 255
			out.Pix[i+3] = 255
		}
	}
	return out
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

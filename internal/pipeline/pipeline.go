package pipeline

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"

	"github.com/copperline/imagesession/internal/params"
)

// Render composes src with p and returns the finished buffer.
//
// Parameters:
//   - src: The decoded source image. Never modified.
//   - p: The edit parameters to bake in.
//
// Returns:
//   - *image.NRGBA: A newly allocated buffer holding the composed result.
//   - error: Non-nil only if p fails validation. Render never returns a
//     partial buffer alongside an error.
//
// Render applies tone filters and rotation first, then the centered crop,
// per the stage order documented in the package comment.
func Render(src image.Image, p params.EditParameters) (*image.NRGBA, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	rotated := rotateWithTone(src, p)

	rect := CropRect(rotated.Bounds().Dx(), rotated.Bounds().Dy(), p.CropRatio)
	if rect.Dx() == rotated.Bounds().Dx() && rect.Dy() == rotated.Bounds().Dy() {
		return rotated, nil
	}
	return imaging.Crop(rotated, rect), nil
}

// rotateWithTone applies the brightness/contrast filters and the rotation
// as one composited stage. Filters at exactly 100 are skipped so the
// identity value is bit-exact.
func rotateWithTone(src image.Image, p params.EditParameters) *image.NRGBA {
	toned := src
	if p.Brightness != 100 {
		toned = adjust.Brightness(toned, float64(p.Brightness-100)/100)
	}
	if p.Contrast != 100 {
		toned = adjust.Contrast(toned, float64(p.Contrast-100)/100)
	}

	// Rotation is clockwise; the imaging package rotates counter-clockwise,
	// so the angles are mirrored. 90-degree multiples are lossless.
	switch p.Rotation {
	case 90:
		return imaging.Rotate270(toned)
	case 180:
		return imaging.Rotate180(toned)
	case 270:
		return imaging.Rotate90(toned)
	default:
		return imaging.Clone(toned)
	}
}

// CropRect computes the centered crop region for a rotated buffer of
// rw x rh pixels and the given target ratio.
//
// For CropOriginal the region is the full buffer. Otherwise, with target
// ratio w:h, the wider dimension shrinks: if rw/rh > w/h the width becomes
// rh*w/h, else the height becomes rw*h/w. The comparison is done with
// integer cross-multiplication to avoid float rounding. Offsets are
// (rw-width)/2 and (rh-height)/2, so the region is always centered and
// always inside the buffer.
func CropRect(rw, rh int, ratio params.CropRatio) image.Rectangle {
	tw, th, ok := ratio.Fraction()
	if !ok {
		return image.Rect(0, 0, rw, rh)
	}

	w, h := rw, rh
	if rw*th > rh*tw {
		w = rh * tw / th
	} else {
		h = rw * th / tw
	}

	x := (rw - w) / 2
	y := (rh - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// OutputDimensions reports the final width and height Render would produce
// for a source of sw x sh pixels, without touching any pixels. Used by the
// preview surface.
func OutputDimensions(sw, sh int, p params.EditParameters) (int, int) {
	rw, rh := sw, sh
	if p.Rotation%180 != 0 {
		rw, rh = sh, sw
	}
	rect := CropRect(rw, rh, p.CropRatio)
	return rect.Dx(), rect.Dy()
}

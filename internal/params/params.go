// Package params defines the edit-parameter value type shared by the
// history, pipeline, autosave, and session packages.
//
// EditParameters is a plain comparable struct: every change produces a new
// value, equality is structural (==), and nothing in this repository mutates
// one in place.
package params

import "fmt"

// CropRatio names a center-crop target aspect ratio.
type CropRatio string

// Supported crop ratios. CropOriginal leaves the rotated buffer uncropped.
const (
	CropOriginal CropRatio = "original"
	CropSquare   CropRatio = "1:1"
	CropWide     CropRatio = "16:9"
	CropClassic  CropRatio = "4:3"
	CropPortrait CropRatio = "3:4"
	CropTall     CropRatio = "9:16"
)

// Fraction returns the integer ratio terms w:h for the crop ratio.
// ok is false for CropOriginal, which has no fixed target ratio.
func (r CropRatio) Fraction() (w, h int, ok bool) {
	switch r {
	case CropSquare:
		return 1, 1, true
	case CropWide:
		return 16, 9, true
	case CropClassic:
		return 4, 3, true
	case CropPortrait:
		return 3, 4, true
	case CropTall:
		return 9, 16, true
	default:
		return 0, 0, false
	}
}

// Valid reports whether r is one of the supported ratios.
func (r CropRatio) Valid() bool {
	switch r {
	case CropOriginal, CropSquare, CropWide, CropClassic, CropPortrait, CropTall:
		return true
	}
	return false
}

// EditParameters is one fully-specified edit state.
//
// Brightness and Contrast are percentage scalars in [0,200] where 100 is the
// identity, 0 is fully dark / fully flat, and 200 doubles the intensity /
// contrast spread. Rotation is a clockwise angle in {0, 90, 180, 270}.
type EditParameters struct {
	Brightness int       `json:"brightness"`
	Contrast   int       `json:"contrast"`
	Rotation   int       `json:"rotation"`
	CropRatio  CropRatio `json:"crop_ratio"`
}

// Default returns the identity edit state: no tone change, no rotation,
// no crop.
func Default() EditParameters {
	return EditParameters{
		Brightness: 100,
		Contrast:   100,
		Rotation:   0,
		CropRatio:  CropOriginal,
	}
}

// ClampTone clamps a brightness or contrast value to the [0,200] range.
func ClampTone(v int) int {
	if v < 0 {
		return 0
	}
	if v > 200 {
		return 200
	}
	return v
}

// NormalizeRotation reduces an angle in degrees to the canonical
// {0, 90, 180, 270} set. Angles that are not multiples of 90 are rounded
// down to the nearest multiple.
func NormalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg - deg%90
}

// Validate reports the first constraint violated by p, or nil.
func (p EditParameters) Validate() error {
	if p.Brightness < 0 || p.Brightness > 200 {
		return fmt.Errorf("brightness %d out of range [0,200]", p.Brightness)
	}
	if p.Contrast < 0 || p.Contrast > 200 {
		return fmt.Errorf("contrast %d out of range [0,200]", p.Contrast)
	}
	if p.Rotation != 0 && p.Rotation != 90 && p.Rotation != 180 && p.Rotation != 270 {
		return fmt.Errorf("rotation %d not a multiple of 90 in [0,270]", p.Rotation)
	}
	if !p.CropRatio.Valid() {
		return fmt.Errorf("unknown crop ratio %q", p.CropRatio)
	}
	return nil
}

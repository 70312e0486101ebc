package analysis

import (
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// PaletteEntry is one dominant color and the percentage of pixels it covers.
type PaletteEntry struct {
	Hex   string  `json:"hex"`   // "#rrggbb"
	Share float64 `json:"share"` // 0-100
}

// mergeDistance is the perceptual Lab distance under which two quantized
// bins count as the same color.
const mergeDistance = 0.12

// Palette extracts the count most dominant colors of img, most common
// first.
//
// Pixels are quantized to 16-unit RGB bins to group near-identical colors,
// then bins within a small perceptual (Lab) distance of a more frequent bin
// are folded into it, so a gradient reads as one color instead of a dozen
// neighbors. Shares are percentages of all pixels and include the folded
// bins, so they sum to 100 across the full (untruncated) palette.
func Palette(img image.Image, count int) []PaletteEntry {
	if count <= 0 {
		count = 5
	}

	bounds := img.Bounds()
	counts := make(map[[3]uint8]int)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			key := [3]uint8{
				uint8((r >> 8) / 16 * 16),
				uint8((g >> 8) / 16 * 16),
				uint8((b >> 8) / 16 * 16),
			}
			counts[key]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	type bin struct {
		color colorful.Color
		n     int
	}
	bins := make([]bin, 0, len(counts))
	for key, n := range counts {
		bins = append(bins, bin{
			color: colorful.Color{
				R: float64(key[0]) / 255,
				G: float64(key[1]) / 255,
				B: float64(key[2]) / 255,
			},
			n: n,
		})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].n > bins[j].n })

	// Fold each bin into the first accepted bin it is perceptually close
	// to; iteration order means folding always goes toward the more
	// frequent color.
	var merged []bin
	for _, b := range bins {
		folded := false
		for i := range merged {
			if merged[i].color.DistanceLab(b.color) < mergeDistance {
				merged[i].n += b.n
				folded = true
				break
			}
		}
		if !folded {
			merged = append(merged, b)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].n > merged[j].n })

	if len(merged) > count {
		merged = merged[:count]
	}

	entries := make([]PaletteEntry, len(merged))
	for i, b := range merged {
		entries[i] = PaletteEntry{
			Hex:   b.color.Hex(),
			Share: float64(b.n) / float64(total) * 100,
		}
	}
	return entries
}

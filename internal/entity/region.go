package entity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RegionKind is the coordinate system of an IIIF image region.
type RegionKind int

const (
	RegionFull RegionKind = iota + 1
	RegionPixel
	RegionPercent
)

const (
	percentPrefix = "pct:"
	maxZIndex     = math.MaxInt32
)

// Plain decimals only: no sign, exponent, NaN or Inf, so String() reproduces the input.
var (
	pixelNumber   = regexp.MustCompile(`^[0-9]{1,9}$`)
	percentNumber = regexp.MustCompile(`^[0-9]{1,3}(\.[0-9]{1,6})?$`)
)

// Region is an IIIF image API region: "full", "x,y,w,h" in pixels or "pct:x,y,w,h".
// See https://iiif.io/api/image/2.0/#region.
type Region struct {
	Kind RegionKind
	X    float64
	Y    float64
	W    float64
	H    float64
}

// FullRegion covers the whole image.
func FullRegion() Region { return Region{Kind: RegionFull} }

// ParseRegion validates raw region syntax.
func ParseRegion(raw string) (Region, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Region{}, NewValidationError("iiif_region", "is required")
	}
	if raw == "full" {
		return FullRegion(), nil
	}

	kind := RegionPixel
	body := raw
	if strings.HasPrefix(raw, percentPrefix) {
		kind = RegionPercent
		body = strings.TrimPrefix(raw, percentPrefix)
	}

	parts := strings.Split(body, ",")
	if len(parts) != 4 {
		return Region{}, NewValidationError("iiif_region", "invalid IIIF region %q", raw)
	}
	number := pixelNumber
	if kind == RegionPercent {
		number = percentNumber
	}
	var values [4]float64
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if !number.MatchString(part) {
			return Region{}, NewValidationError("iiif_region", "invalid IIIF region %q", raw)
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || (kind == RegionPercent && v > 100) {
			return Region{}, NewValidationError("iiif_region", "invalid IIIF region %q", raw)
		}
		values[i] = v
	}
	if values[2] == 0 || values[3] == 0 {
		return Region{}, NewValidationError("iiif_region", "region %q has no area", raw)
	}
	return Region{Kind: kind, X: values[0], Y: values[1], W: values[2], H: values[3]}, nil
}

// String renders the canonical region syntax.
func (r Region) String() string {
	switch r.Kind {
	case RegionFull:
		return "full"
	case RegionPercent:
		return percentPrefix + joinNumbers(r.X, r.Y, r.W, r.H)
	case RegionPixel:
		return joinNumbers(r.X, r.Y, r.W, r.H)
	default:
		return ""
	}
}

// DisplayBox is the CSS box used to overlay a region on the rendered image.
type DisplayBox struct {
	Kind   RegionKind
	Left   float64
	Top    float64
	Width  float64
	Height float64
	ZIndex int
}

// Box converts the region into its display box. Smaller regions stack above larger ones.
func (r Region) Box() DisplayBox {
	switch r.Kind {
	case RegionPercent:
		return DisplayBox{Kind: r.Kind, Left: r.X, Top: r.Y, Width: r.W, Height: r.H, ZIndex: zIndex(1_000_000, r.W*r.H)}
	case RegionPixel:
		return DisplayBox{Kind: r.Kind, Left: r.X, Top: r.Y, Width: r.W, Height: r.H, ZIndex: zIndex(1_000_000_000, r.W*r.H)}
	default:
		return DisplayBox{Kind: RegionFull, Width: 100, Height: 100}
	}
}

// zIndex is scale/area clamped to [0, maxZIndex]; empty or non-finite areas stack on top.
func zIndex(scale, area float64) int {
	z := scale / area
	if math.IsNaN(z) || z > maxZIndex || area <= 0 {
		return maxZIndex
	}
	return int(max(z, 0))
}

// Style renders the box as inline CSS.
func (b DisplayBox) Style() string {
	switch b.Kind {
	case RegionPercent:
		return fmt.Sprintf("left: %s%%; top: %s%%; width: %s%%; height: %s%%; z-index: %d;",
			formatNumber(b.Left), formatNumber(b.Top), formatNumber(b.Width), formatNumber(b.Height), b.ZIndex)
	case RegionPixel:
		return fmt.Sprintf("left: %spx; top: %spx; width: %spx; height: %spx; z-index: %d;",
			formatNumber(b.Left), formatNumber(b.Top), formatNumber(b.Width), formatNumber(b.Height), b.ZIndex)
	default:
		return "left: 0px; top: 0px; width: 100%; height: 100%;"
	}
}

// Region converts a box drawn in the UI back into region syntax.
func (b DisplayBox) Region() Region {
	if b.Kind == RegionFull {
		return FullRegion()
	}
	return Region{Kind: b.Kind, X: b.Left, Y: b.Top, W: b.Width, H: b.Height}
}

// PixelRect maps the region onto an image of the given size, as used by IIIF "#xywh=" fragments.
func (r Region) PixelRect(width, height int) (x, y, w, h int) {
	switch r.Kind {
	case RegionPercent:
		return int(r.X * float64(width) / 100), int(r.Y * float64(height) / 100),
			int(r.W * float64(width) / 100), int(r.H * float64(height) / 100)
	case RegionPixel:
		return int(r.X), int(r.Y), int(r.W), int(r.H)
	default:
		return 0, 0, width, height
	}
}

func joinNumbers(values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ",")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package layout

import (
	"github.com/BurntSushi/xgbutil/icccm"
)

// Rect represents a window position and size.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FixedSize reports whether size hints pin a window to a single size:
// a declared maximum that equals the declared minimum. When no explicit
// minimum is present the base size stands in for it, per ICCCM.
func FixedSize(hints *icccm.NormalHints) bool {
	if hints == nil || hints.Flags&icccm.SizeHintPMaxSize == 0 {
		return false
	}
	minW, minH := hints.MinWidth, hints.MinHeight
	if hints.Flags&icccm.SizeHintPMinSize == 0 {
		if hints.Flags&icccm.SizeHintPBaseSize == 0 {
			return false
		}
		minW, minH = hints.BaseWidth, hints.BaseHeight
	}
	return hints.MaxWidth > 0 && hints.MaxHeight > 0 &&
		minW == hints.MaxWidth && minH == hints.MaxHeight
}

// Compute returns the on-screen rectangle for a window. Tiled windows
// fill the screen with the border pushed off-screen. Floating windows
// keep their requested size on each axis where it fits (borders
// included) and are centered on that axis; an oversized axis falls back
// to the tiled value.
func Compute(floating bool, reqWidth, reqHeight, screenWidth, screenHeight, borderWidth int) Rect {
	r := Rect{
		X:      -borderWidth,
		Y:      -borderWidth,
		Width:  screenWidth,
		Height: screenHeight,
	}
	if !floating {
		return r
	}
	if reqWidth+2*borderWidth < screenWidth {
		r.X = (screenWidth - reqWidth - 2*borderWidth) / 2
		r.Width = reqWidth
	}
	if reqHeight+2*borderWidth < screenHeight {
		r.Y = (screenHeight - reqHeight - 2*borderWidth) / 2
		r.Height = reqHeight
	}
	return r
}

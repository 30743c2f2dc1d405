package x11

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
)

// Point is a position in root window (screen) coordinates.
type Point struct {
	X, Y int
}

// Rect is the position and size of a window in root window coordinates.
type Rect struct {
	X, Y, W, H int
}

// FocusEvent is sent by Poll whenever the _NET_ACTIVE_WINDOW property of the
// root window is touched. The property may be rewritten with the same value,
// so receiving a FocusEvent does not mean that focus actually changed.
type FocusEvent struct {
	Time xproto.Timestamp
}

// WindowManager describes the running window manager.
type WindowManager struct {
	Name string

	// Whether the window manager lists _NET_ACTIVE_WINDOW in _NET_SUPPORTED.
	ActiveWindow bool
}

// Contains returns whether the point lies within the rectangle. Both edges
// are inclusive, so a rectangle at (0, 0) with a width of 100 contains both
// x=0 and x=100.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the center point of the rectangle, rounded down.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d,%d", r.W, r.H, r.X, r.Y)
}

// Package geom implements the point-to-node distance math the query
// engine uses to find the innermost enclosing box and the nearest sibling
// of a hit point (§4.F): ordered horizontal/vertical distance, point-in-box,
// and the smaller-container comparator.
package geom

import "github.com/viant/synctex/node"

// Point is a hit location in the same scaled-point space as Node geometry
// (the edit query converts page points to sp before calling into geom).
type Point struct {
	H, V int64
}

// HDist returns the ordered horizontal distance from hit to n: zero if hit
// falls within n's horizontal extent, positive if n is to hit's right,
// negative if n is to hit's left. Kerns get a ±1 tie-break penalty against
// glyph content; proxies recurse through their target after translating
// hit by the proxy's own offset.
func HDist(hit Point, n *node.Node) int64 {
	if n.Kind.IsProxy() && n.Target() != nil {
		return HDist(Point{hit.H - n.OffsetH, hit.V - n.OffsetV}, n.Target())
	}
	if n.Kind == node.KindKern {
		lo, hi := n.H-abs(n.Width), n.H
		if n.Width < 0 {
			lo, hi = n.H, n.H-n.Width
		}
		if hit.H < lo {
			return lo - hit.H + 1
		}
		if hit.H > hi {
			return hi - hit.H - 1
		}
		return 0
	}
	if n.Kind.IsBox() {
		lo, hi := boxHRange(n)
		if hit.H < lo {
			return lo - hit.H
		}
		if hit.H > hi {
			return hi - hit.H
		}
		return 0
	}
	return n.H - hit.H
}

// VDist is the vertical analogue of HDist, measured against a box's
// top/bottom (height above the baseline, depth below it) rather than its
// horizontal extent.
func VDist(hit Point, n *node.Node) int64 {
	if n.Kind.IsProxy() && n.Target() != nil {
		return VDist(Point{hit.H - n.OffsetH, hit.V - n.OffsetV}, n.Target())
	}
	if n.Kind.IsBox() {
		v := n.EffV()
		top, bottom := v-n.EffHeight(), v+n.EffDepth()
		if hit.V < top {
			return top - hit.V
		}
		if hit.V > bottom {
			return bottom - hit.V
		}
		return 0
	}
	return n.V - hit.V
}

// boxHRange reads Eff* rather than raw H/Width so that an hbox whose
// glyphs overflow its nominal extent (MakeContain*'s _V inflation,
// §4.D) is still hit-tested against its true visible extent.
func boxHRange(n *node.Node) (lo, hi int64) {
	origin := n.EffH()
	width := n.EffWidth()
	if width < 0 {
		return origin + width, origin
	}
	return origin, origin + width
}

// Contains reports whether hit lies inside n's box (both ordered distances
// are zero).
func Contains(hit Point, n *node.Node) bool {
	return HDist(hit, n) == 0 && VDist(hit, n) == 0
}

// Region classifies hit's position against n's bounding box into one of
// the nine L1 regions described in §4.F (1..9, row-major, 5 is inside).
func Region(hit Point, n *node.Node) int {
	h := HDist(hit, n)
	v := VDist(hit, n)
	col := 1 // middle
	switch {
	case h == 0:
		col = 1
	case h > 0:
		col = 0 // hit left of box
	case h < 0:
		col = 2 // hit right of box
	}
	row := 1
	switch {
	case v == 0:
		row = 1
	case v > 0:
		row = 0 // hit above box
	case v < 0:
		row = 2 // hit below box
	}
	if h == 0 && v == 0 {
		return 5
	}
	return row*3 + col + 1
}

// L1Dist returns the L1-style distance used to rank region 1/3/7/9
// corners: the sum of the horizontal and vertical gaps.
func L1Dist(hit Point, n *node.Node) int64 {
	h := HDist(hit, n)
	v := VDist(hit, n)
	return abs(h) + abs(v)
}

// Smaller implements the smaller-container comparator: among two
// overlapping containers, the one with the smaller (height+depth)*|width|
// area wins; ties break on smaller |width|, then smaller total height.
func Smaller(a, b *node.Node) *node.Node {
	areaA := (a.Height + a.Depth) * abs(a.Width)
	areaB := (b.Height + b.Depth) * abs(b.Width)
	if areaA != areaB {
		if areaA < areaB {
			return a
		}
		return b
	}
	if abs(a.Width) != abs(b.Width) {
		if abs(a.Width) < abs(b.Width) {
			return a
		}
		return b
	}
	if a.Height+a.Depth <= b.Height+b.Depth {
		return a
	}
	return b
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

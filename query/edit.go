package query

import (
	"fmt"

	"github.com/viant/synctex/geom"
	"github.com/viant/synctex/node"
)

// Edit runs the edit query (§4.G): given a sheet already resolved by page
// and a hit point already converted to scaled points, it finds the
// smallest enclosing hbox (if any), descends to its deepest containing
// box, picks the nearest children on either side, and wraps the winner(s)
// in a fresh Handle chain.
func Edit(sheet *node.Node, hit geom.Point) (*Iterator, error) {
	if sheet == nil {
		return nil, fmt.Errorf("query: edit: nil sheet")
	}

	var bestHBox *node.Node
	for h := sheet.NextHBox(); h != nil; h = h.NextHBox() {
		if !geom.Contains(hit, h) {
			continue
		}
		if bestHBox == nil {
			bestHBox = h
		} else {
			bestHBox = geom.Smaller(bestHBox, h)
		}
	}

	var a, b *node.Node
	if bestHBox != nil {
		deepest := deepestContainer(hit, bestHBox)
		a, b = nearestPair(hit, deepest)
	} else {
		a, b = nearestPair(hit, sheet)
	}

	a = narrow(hit, a)
	b = narrow(hit, b)

	winner, runnerUp := rankCandidates(hit, a, b)

	var handles []*node.Node
	if winner != nil {
		handles = append(handles, newHandle(winner))
	}
	if runnerUp != nil && runnerUp != winner {
		handles = append(handles, newHandle(runnerUp))
	}
	root := chainSiblings(handles...)
	return NewIterator(root, len(handles)), nil
}

// deepestContainer recursively descends into the child that itself
// contains hit, preferring inner boxes; if no child contains the hit, it
// picks the child with smallest point-to-node distance among those that
// themselves have children (§4.G step 4).
func deepestContainer(hit geom.Point, box *node.Node) *node.Node {
	var containing *node.Node
	var closest *node.Node
	var closestDist int64 = -1
	for c := box.Child(); c != nil; c = c.Sibling() {
		if !c.Kind.IsBox() {
			continue
		}
		if geom.Contains(hit, c) {
			containing = c
			continue
		}
		if c.Child() == nil {
			continue
		}
		d := geom.L1Dist(hit, c)
		if closest == nil || d < closestDist {
			closest = c
			closestDist = d
		}
	}
	if containing != nil {
		return deepestContainer(hit, containing)
	}
	if closest != nil {
		return closest
	}
	return box
}

// nearestPair finds the left-nearest and right-nearest (or, for a vbox,
// above/below-nearest) children of container using ordered distance.
func nearestPair(hit geom.Point, container *node.Node) (left, right *node.Node) {
	useV := container.Kind.IsVBox()
	var leftDist, rightDist int64
	haveLeft, haveRight := false, false
	for c := container.Child(); c != nil; c = c.Sibling() {
		if c.Kind == node.KindBoxBdry || c.Kind == node.KindRef {
			continue
		}
		var d int64
		if useV {
			d = geom.VDist(hit, c)
		} else {
			d = geom.HDist(hit, c)
		}
		if d >= 0 {
			if !haveRight || d < rightDist {
				right, rightDist = c, d
				haveRight = true
			}
		}
		if d <= 0 {
			if !haveLeft || -d < leftDist {
				left, leftDist = c, -d
				haveLeft = true
			}
		}
	}
	return left, right
}

// narrow descends a box candidate through deepestContainer until no deeper
// box applies and returns that box (§4.G step 5). It does not pick a child
// of the box it stops at, so a box candidate stays a box; a leaf candidate
// is returned unchanged.
func narrow(hit geom.Point, n *node.Node) *node.Node {
	for n != nil && n.Kind.IsContainer() && n.Child() != nil {
		deepest := deepestContainer(hit, n)
		if deepest == n {
			break
		}
		n = deepest
	}
	return n
}

// rankCandidates picks the candidate with the strictly smaller line, or,
// on a tie, the smaller distance; the loser is returned as a companion
// result rather than dropped (§4.G step 7).
func rankCandidates(hit geom.Point, a, b *node.Node) (winner, runnerUp *node.Node) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	_, lineA, _ := a.TLC()
	_, lineB, _ := b.TLC()
	if lineA == lineB {
		if geom.L1Dist(hit, a) <= geom.L1Dist(hit, b) {
			return a, b
		}
		return b, a
	}
	if lineA < lineB {
		return a, b
	}
	return b, a
}

// Package node implements the SyncTeX node graph: the ~20 record kinds a
// .synctex file produces, their tree shape, and the inspectors/vispectors
// that read geometry off them. It plays the role graph.File/graph.Type play
// in a source inspector — a typed record carrying both structure and the
// source location it came from — generalized from "one Go type" to "one
// typeset box/glue/kern/rule".
package node

// Node is a single record of the parsed graph. Every Kind uses the same
// struct; fields that a given Kind does not use are simply left zero. This
// follows the source's per-class descriptor table only in spirit (see
// DESIGN.md): Go's named struct fields already give every kind direct
// access to its own slots, so there is no index table to consult before
// reading a field, only the Kind-gated accessors in accessors.go for fields
// whose raw value needs per-kind interpretation (EffH, VisibleWidth, ...).
//
// Navigation is exposed exclusively through methods (Parent/Child/Sibling/
// ...) rather than raw fields: proxy nodes materialize their child/sibling
// chain lazily the first time it is asked for (§4.E), and routing every
// caller through a method is what makes that invisible to them.
type Node struct {
	Kind Kind

	// identity, shared by every content-bearing kind (hasTagLine)
	Tag    int32
	Line   int32
	Column int32 // -1 is a legal sentinel from some engines; never normalized

	// geometry, scaled points (sp)
	H, V                 int64
	Width, Height, Depth int64

	// inflated visible geometry, hboxes only (§4.D close-hbox handling)
	HV, VV                  int64
	WidthV, HeightV, DepthV int64
	vInit                   bool // whether HV/VV/*V have been seeded from raw geometry

	// hbox-only bookkeeping
	MeanLine int32
	Weight   int32

	// Input
	Name string

	// Sheet
	Page int32

	// Proxy family: offset applied on top of Target's own geometry
	OffsetH, OffsetV int64

	// FormTag names the Form a Ref (or a root proxy derived from one)
	// refers to.
	FormTag int32

	parent     *Node
	child      *Node
	last       *Node // cached last child, invariant P1
	sibling    *Node
	argSibling *Node // back-link: Sibling(ArgSibling(n)) == n
	friend     *Node // next node in the same friend bucket
	nextHBox   *Node // sheet-rooted hbox/hbox-proxy chain
	target     *Node // proxies and handles: non-owning reference
}

// New allocates a bare node of the given kind. Callers fill in fields and
// then splice it into a tree via AppendChild/InsertAfter/Replace so the
// navigational invariants (§3.4) are kept in one place.
func New(kind Kind) *Node { return &Node{Kind: kind} }

// Parent returns the node's parent, or nil for a root node (§3.3).
func (n *Node) Parent() *Node { return n.parent }

// Target returns the node a proxy or handle points to without owning it.
func (n *Node) Target() *Node { return n.target }

// SetTarget assigns a non-owning target reference (proxies, handles).
func (n *Node) SetTarget(t *Node) { n.target = t }

// SetParent reassigns n's parent pointer directly, without touching any
// child, sibling or last link.
func (n *Node) SetParent(p *Node) { n.parent = p }

// ArgSibling returns n's predecessor in its parent's child chain, or nil if
// n is the first child (§3.3 invariant P3).
func (n *Node) ArgSibling() *Node { return n.argSibling }

// Friend returns the next node sharing n's (tag+line) bucket.
func (n *Node) Friend() *Node { return n.friend }

// SetFriend links n into a friend bucket chain.
func (n *Node) SetFriend(f *Node) { n.friend = f }

// NextHBox returns the next hbox (or hbox proxy) of the owning sheet.
func (n *Node) NextHBox() *Node { return n.nextHBox }

// SetNextHBox links n into the sheet's hbox acceleration chain.
func (n *Node) SetNextHBox(h *Node) { n.nextHBox = h }

// Child returns n's first child, materializing a proxy child lazily the
// first time it is asked for (§4.E "lazy child materialization"). Only
// ProxyVBox/ProxyHBox ever have children; every other proxy kind, like
// every other leaf content kind, has none.
func (n *Node) Child() *Node {
	if n.child == nil && n.Kind.IsProxy() && n.Kind.IsContainer() && n.target != nil {
		n.child = materializeChild(n)
		if n.child != nil {
			n.child.parent = n
			n.last = n.child
		}
	}
	return n.child
}

// Sibling returns n's next sibling, materializing a proxy sibling lazily
// the first time it is asked for. Only proxies inside a synthesized chain
// (whose parent is itself a proxy) materialize siblings; a root proxy keeps
// the siblings it was spliced between. ProxyLast is the terminal sentinel
// of a synthesized chain and never has a sibling of its own.
func (n *Node) Sibling() *Node {
	if n.sibling == nil && n.Kind.IsProxy() && n.Kind != KindProxyLast && n.target != nil &&
		n.parent != nil && n.parent.Kind.IsProxy() {
		n.sibling = materializeSibling(n)
		if n.sibling != nil {
			n.sibling.argSibling = n
			n.sibling.parent = n.parent
			if n.parent != nil {
				n.parent.last = n.sibling
			}
		}
	}
	return n.sibling
}

// Last returns the last node of n's child chain (invariant P1), forcing
// full materialization of a lazily-built proxy chain if needed.
func (n *Node) Last() *Node {
	if n == nil || !n.Kind.IsContainer() {
		return nil
	}
	c := n.Child()
	if c == nil {
		return nil
	}
	for c.Sibling() != nil {
		c = c.Sibling()
	}
	return c
}

// materializeChild creates the first synthesized child proxy of a root or
// child proxy n, mirroring n.target's own first child.
func materializeChild(n *Node) *Node {
	t := n.target
	c := t.Child()
	if c == nil {
		return nil
	}
	return newProxyFor(n, c)
}

// materializeSibling creates the next synthesized sibling of a previously
// materialized proxy n, or the ProxyLast sentinel when n's target has no
// further sibling of its own.
func materializeSibling(n *Node) *Node {
	t := n.target
	s := t.Sibling()
	if s == nil {
		last := New(KindProxyLast)
		last.OffsetH, last.OffsetV = n.OffsetH, n.OffsetV
		last.SetTarget(t)
		return last
	}
	return newProxyFor(n, s)
}

// newProxyFor builds the proxy that stands in for target within owner's
// synthesized chain, cascading through target if it is itself a proxy so
// that a proxy's target is always a primary node (§4.E invariant).
func newProxyFor(owner, target *Node) *Node {
	offH, offV := owner.OffsetH, owner.OffsetV
	for target.Kind.IsProxy() {
		offH += target.OffsetH
		offV += target.OffsetV
		target = target.Target()
	}
	p := New(proxyKindFor(target.Kind))
	p.OffsetH, p.OffsetV = offH, offV
	p.SetTarget(target)
	return p
}

func proxyKindFor(k Kind) Kind {
	switch {
	case k.IsVBox():
		return KindProxyVBox
	case k.IsHBox():
		return KindProxyHBox
	default:
		return KindProxy
	}
}

// AppendChild splices ch onto the end of n's child chain, maintaining
// Parent/Last/ArgSibling for the whole chain (§3.3). Used for primary,
// parse-time construction and for query-result handle trees: proxy chains
// are built lazily by materializeChild/materializeSibling instead.
func (n *Node) AppendChild(ch *Node) {
	ch.parent = n
	ch.sibling = nil
	if n.child == nil {
		n.child = ch
		ch.argSibling = nil
	} else {
		tail := n.last
		if tail == nil {
			tail = n.child
			for tail.sibling != nil {
				tail = tail.sibling
			}
		}
		tail.sibling = ch
		ch.argSibling = tail
	}
	n.last = ch
}

// InsertAfter splices next after prev in prev's sibling chain, relinking
// ArgSibling and, if prev was the parent's last child, the parent's last
// pointer. Used to link the parser's top-level root lists and the query
// engine's handle chains.
func InsertAfter(prev, next *Node) {
	next.parent = prev.parent
	next.argSibling = prev
	next.sibling = prev.sibling
	if prev.sibling != nil {
		prev.sibling.argSibling = next
	} else if prev.parent != nil && prev.parent.last == prev {
		prev.parent.last = next
	}
	prev.sibling = next
}

// Replace splices replacement into old's exact position (same parent,
// predecessor and successor); used to swap a Ref for its root proxy.
func Replace(old, replacement *Node) {
	replacement.parent = old.parent
	replacement.sibling = old.sibling
	replacement.argSibling = old.argSibling
	if old.argSibling != nil {
		old.argSibling.sibling = replacement
	} else if old.parent != nil {
		old.parent.child = replacement
	}
	if old.sibling != nil {
		old.sibling.argSibling = replacement
	} else if old.parent != nil && old.parent.last == old {
		old.parent.last = replacement
	}
}

// SeedVisible initializes the _V geometry from raw geometry; called once at
// hbox close (§4.D). Subsequent MakeContain* calls only ever grow it.
func (n *Node) SeedVisible() {
	if n.vInit {
		return
	}
	n.HV, n.VV = n.H, n.V
	n.WidthV, n.HeightV, n.DepthV = n.Width, n.Height, n.Depth
	n.vInit = true
}

// MakeContainPoint grows the hbox's visible dimensions so that (h, v) lies
// inside it, accounting for characters TeX knows overflow their hbox.
func (n *Node) MakeContainPoint(h, v int64) {
	n.SeedVisible()
	left, right := n.visibleHRange()
	if h < left {
		n.WidthV += left - h
		n.HV = h
	} else if h > right {
		n.WidthV += h - right
	}
	top, bottom := n.VV-n.HeightV, n.VV+n.DepthV
	if v < top {
		n.HeightV += top - v
	} else if v > bottom {
		n.DepthV += v - bottom
	}
}

// MakeContainBox grows the hbox's visible dimensions so that child's own
// effective box lies inside it.
func (n *Node) MakeContainBox(child *Node) {
	left := child.EffH()
	top := child.EffV() - child.EffHeight()
	n.MakeContainPoint(left, top)
	n.MakeContainPoint(left+child.EffWidth(), child.EffV()+child.EffDepth())
}

func (n *Node) visibleHRange() (left, right int64) {
	if n.WidthV < 0 {
		return n.HV + n.WidthV, n.HV
	}
	return n.HV, n.HV + n.WidthV
}

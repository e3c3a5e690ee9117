package node

// EffH, EffV, EffWidth, EffHeight and EffDepth are the scaled-point (sp)
// accessors every higher layer (geom, proxy inflation, query) reads instead
// of the raw H/V/Width/Height/Depth fields: they fold in kern sign
// correction, rule sign correction, hbox visible-dimension inflation and
// proxy offset shifting (§4.F, §4.H) while staying in sp, ahead of the
// unit/offset conversion VisibleH/... apply on top.
func (n *Node) EffH() int64 {
	switch n.Kind {
	case KindKern:
		if n.Width > 0 {
			return n.H - n.Width
		}
		return n.H
	case KindRule:
		return n.H - n.Width
	case KindHBox:
		return n.HV
	default:
		if n.Kind.IsProxy() && n.target != nil {
			return n.OffsetH + n.target.EffH()
		}
		return n.H
	}
}

func (n *Node) EffV() int64 {
	if n.Kind.IsProxy() && n.target != nil {
		return n.OffsetV + n.target.EffV()
	}
	return n.V
}

func (n *Node) EffWidth() int64 {
	switch n.Kind {
	case KindKern, KindRule:
		return abs64(n.Width)
	case KindHBox:
		return n.WidthV
	default:
		if n.Kind.IsProxy() && n.target != nil {
			return n.target.EffWidth()
		}
		return n.Width
	}
}

func (n *Node) EffHeight() int64 {
	switch n.Kind {
	case KindHBox:
		return n.HeightV
	default:
		if n.Kind.IsProxy() && n.target != nil {
			return n.target.EffHeight()
		}
		return n.Height
	}
}

func (n *Node) EffDepth() int64 {
	switch n.Kind {
	case KindHBox:
		return n.DepthV
	default:
		if n.Kind.IsProxy() && n.target != nil {
			return n.target.EffDepth()
		}
		return n.Depth
	}
}

// VisibleH, VisibleV, VisibleWidth, VisibleHeight and VisibleDepth are the
// page-point vispectors external callers use (§4.H): Eff* converted via the
// scanner's unit/offset. unit and the offsets are scanner-level state
// (§3.5), not stored per node, so they are passed in rather than cached.
func (n *Node) VisibleH(unit, xOffset float64) float64 {
	return float64(n.EffH())*unit + xOffset
}

func (n *Node) VisibleV(unit, yOffset float64) float64 {
	return float64(n.EffV())*unit + yOffset
}

func (n *Node) VisibleWidth(unit float64) float64 { return float64(n.EffWidth()) * unit }

func (n *Node) VisibleHeight(unit float64) float64 { return float64(n.EffHeight()) * unit }

func (n *Node) VisibleDepth(unit float64) float64 { return float64(n.EffDepth()) * unit }

// TLC returns (tag, line, column), forwarding through a proxy's target
// (§3.1 tlcpector).
func (n *Node) TLC() (tag, line, column int32) {
	if n.Kind.IsProxy() && n.target != nil {
		return n.target.TLC()
	}
	return n.Tag, n.Line, n.Column
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

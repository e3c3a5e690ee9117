package node

// Kind identifies the concrete shape of a Node. The parser, proxy expansion,
// geometry and query packages all switch on Kind rather than relying on a
// type assertion, since every node kind shares the same Go struct (see
// Node) and only differs in which fields are meaningful.
type Kind uint8

const (
	KindInvalid Kind = iota

	// top-level containers
	KindInput
	KindSheet
	KindForm

	// primary content, built at parse time
	KindVBox
	KindHBox
	KindVoidVBox
	KindVoidHBox
	KindKern
	KindGlue
	KindRule
	KindMath
	KindBoundary
	KindBoxBdry
	KindRef

	// proxies, built during form-ref expansion (see package proxy)
	KindProxy
	KindProxyLast
	KindProxyVBox
	KindProxyHBox

	// query-result wrapper, never part of the parsed tree
	KindHandle
)

// String names the kind the way synctex_node_isa messages do upstream.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindSheet:
		return "sheet"
	case KindForm:
		return "form"
	case KindVBox:
		return "vbox"
	case KindHBox:
		return "hbox"
	case KindVoidVBox:
		return "void vbox"
	case KindVoidHBox:
		return "void hbox"
	case KindKern:
		return "kern"
	case KindGlue:
		return "glue"
	case KindRule:
		return "rule"
	case KindMath:
		return "math"
	case KindBoundary:
		return "boundary"
	case KindBoxBdry:
		return "box bdry"
	case KindRef:
		return "ref"
	case KindProxy:
		return "proxy"
	case KindProxyLast:
		return "proxy last"
	case KindProxyVBox:
		return "proxy vbox"
	case KindProxyHBox:
		return "proxy hbox"
	case KindHandle:
		return "handle"
	default:
		return "invalid"
	}
}

// descriptor captures the cross-variant facts generic traversals need,
// mirroring the source's per-class descriptor table without reproducing
// its raw field-index arrays (Go's struct fields already give every kind
// direct, named access to its slots; see DESIGN.md).
type descriptor struct {
	isBox       bool
	isHBox      bool
	isVBox      bool
	isContainer bool // sheet, form or box: owns a child chain
	isProxy     bool
	isRootable  bool // can be a root of a sibling list owned by the scanner (input/sheet/form)
	hasTagLine  bool // participates in friend buckets
}

var descriptors = [...]descriptor{
	KindInvalid:   {},
	KindInput:     {isRootable: true},
	KindSheet:     {isContainer: true, isRootable: true},
	KindForm:      {isContainer: true, isRootable: true},
	KindVBox:      {isBox: true, isVBox: true, isContainer: true, hasTagLine: true},
	KindHBox:      {isBox: true, isHBox: true, isContainer: true, hasTagLine: true},
	KindVoidVBox:  {isBox: true, isVBox: true, hasTagLine: true},
	KindVoidHBox:  {isBox: true, isHBox: true, hasTagLine: true},
	KindKern:      {hasTagLine: true},
	KindGlue:      {hasTagLine: true},
	KindRule:      {hasTagLine: true},
	KindMath:      {hasTagLine: true},
	KindBoundary:  {hasTagLine: true},
	KindBoxBdry:   {hasTagLine: true},
	KindRef:       {hasTagLine: true},
	KindProxy:     {isProxy: true},
	KindProxyLast: {isProxy: true},
	KindProxyVBox: {isProxy: true, isBox: true, isVBox: true, isContainer: true},
	KindProxyHBox: {isProxy: true, isBox: true, isHBox: true, isContainer: true},
	KindHandle:    {},
}

func (k Kind) desc() descriptor {
	if int(k) < len(descriptors) {
		return descriptors[k]
	}
	return descriptor{}
}

// IsBox reports whether the node carries width/height/depth box geometry.
func (k Kind) IsBox() bool { return k.desc().isBox }

// IsHBox reports whether the node is an (void) hbox or an hbox proxy.
func (k Kind) IsHBox() bool { return k.desc().isHBox }

// IsVBox reports whether the node is a (void) vbox or a vbox proxy.
func (k Kind) IsVBox() bool { return k.desc().isVBox }

// IsContainer reports whether the node owns a child chain.
func (k Kind) IsContainer() bool { return k.desc().isContainer }

// IsProxy reports whether the node is one of the four proxy kinds.
func (k Kind) IsProxy() bool { return k.desc().isProxy }

// IsRootable reports whether the node is threaded through the scanner's
// top-level input/sheet/form lists.
func (k Kind) IsRootable() bool { return k.desc().isRootable }

// HasTagLine reports whether the node participates in friend buckets.
func (k Kind) HasTagLine() bool { return k.desc().hasTagLine }

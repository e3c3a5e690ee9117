// Package proxy implements form-reference expansion (§4.E): the
// post-parse pass that replaces every Ref with a root proxy over the
// referenced form's content, wires the result into the sheet's friend
// table and next_hbox chain where visible, and otherwise leaves it
// reachable only through further proxies.
package proxy

import (
	"fmt"

	"github.com/viant/synctex/node"
)

// Forms resolves a Ref's FormTag to the Form's single content child.
type Forms interface {
	ContentByTag(tag int32) (*node.Node, error)
}

// Sink receives every node that becomes page-visible once a proxy chain is
// spliced into a sheet: the scanner registers each in its friend table and,
// for hbox proxies, its next_hbox acceleration chain (§3.3, §4.E step 5).
type Sink interface {
	RegisterVisible(n *node.Node)
}

// Expand replaces every ref in refs with a root proxy over its form's
// content (§4.E steps 1-4), reporting each created proxy. sink, if
// non-nil, is told about every node on a visible (sheet-rooted) proxy's
// materialized child/sibling chain (step 5); refs inside a form pass a nil
// sink since that subtree is reached only through further proxies.
func Expand(refs []*node.Node, forms Forms, sink Sink) ([]*node.Node, error) {
	proxies := make([]*node.Node, 0, len(refs))
	for _, ref := range refs {
		p, err := expandOne(ref, forms)
		if err != nil {
			return nil, err
		}
		proxies = append(proxies, p)
		if sink != nil {
			walkVisible(p, sink)
		}
	}
	return proxies, nil
}

// expandOne performs steps 1-5 for a single ref.
func expandOne(ref *node.Node, forms Forms) (*node.Node, error) {
	content, err := forms.ContentByTag(ref.FormTag)
	if err != nil {
		return nil, fmt.Errorf("proxy: form %d: %w", ref.FormTag, err)
	}
	if content == nil {
		return nil, fmt.Errorf("proxy: form %d has no content", ref.FormTag)
	}

	var kind node.Kind
	switch {
	case content.Kind.IsVBox():
		kind = node.KindProxyVBox
	case content.Kind.IsHBox():
		kind = node.KindProxyHBox
	default:
		return nil, fmt.Errorf("proxy: form %d content is kind %s, want a box", ref.FormTag, content.Kind)
	}

	root := node.New(kind)
	root.OffsetH = ref.H
	root.OffsetV = ref.V - content.Height
	root.SetTarget(content)

	succ := ref.Sibling()
	if succ != nil && succ.Kind == node.KindBoxBdry {
		succ.Tag, succ.Line, succ.Column = ref.Tag, ref.Line, ref.Column
	}

	node.Replace(ref, root)

	return root, nil
}

// walkVisible forces full materialization of p's synthesized chain and
// registers every node it produces with sink (§4.E step 5, second pass).
func walkVisible(p *node.Node, sink Sink) {
	sink.RegisterVisible(p)
	if !p.Kind.IsContainer() {
		return
	}
	for c := p.Child(); c != nil && c.Kind != node.KindProxyLast; c = c.Sibling() {
		walkVisible(c, sink)
	}
}

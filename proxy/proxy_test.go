package proxy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/synctex/node"
)

type staticForms map[int32]*node.Node

func (f staticForms) ContentByTag(tag int32) (*node.Node, error) {
	form, ok := f[tag]
	if !ok {
		return nil, fmt.Errorf("no form %d", tag)
	}
	return form.Child(), nil
}

type collectingSink struct{ seen []*node.Node }

func (s *collectingSink) RegisterVisible(n *node.Node) { s.seen = append(s.seen, n) }

func buildFormWithHBoxContent(height int64) (*node.Node, *node.Node) {
	form := node.New(node.KindForm)
	content := node.New(node.KindHBox)
	content.Height = height
	form.AppendChild(content)
	return form, content
}

// TestExpandSetsProxyOffset verifies invariant P5: the proxy replacing a
// ref has h == ref.h and v == ref.v - content.height.
func TestExpandSetsProxyOffset(t *testing.T) {
	form, content := buildFormWithHBoxContent(8)
	sheet := node.New(node.KindSheet)
	ref := node.New(node.KindRef)
	ref.FormTag = 1000
	ref.H, ref.V = 50, 100
	sheet.AppendChild(ref)

	forms := staticForms{1000: form}
	proxies, err := Expand([]*node.Node{ref}, forms, nil)
	assert.NoError(t, err)
	assert.Len(t, proxies, 1)

	p := proxies[0]
	assert.Equal(t, node.KindProxyHBox, p.Kind)
	assert.Equal(t, content, p.Target())
	assert.Equal(t, int64(50), p.OffsetH)
	assert.Equal(t, int64(100-8), p.OffsetV)

	assert.Equal(t, p, sheet.Child())
	assert.Equal(t, sheet, p.Parent())
}

// TestExpandNotifiesSinkForEntireMaterializedChain ensures every node
// produced by lazily materializing the proxy's chain is reported.
func TestExpandNotifiesSinkForEntireMaterializedChain(t *testing.T) {
	form, content := buildFormWithHBoxContent(0)
	leaf := node.New(node.KindRule)
	content.AppendChild(leaf)

	sheet := node.New(node.KindSheet)
	ref := node.New(node.KindRef)
	ref.FormTag = 1
	sheet.AppendChild(ref)

	sink := &collectingSink{}
	_, err := Expand([]*node.Node{ref}, staticForms{1: form}, sink)
	assert.NoError(t, err)

	assert.GreaterOrEqual(t, len(sink.seen), 2) // root proxy + materialized child proxy at least
}

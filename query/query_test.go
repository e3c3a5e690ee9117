package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/synctex/geom"
	"github.com/viant/synctex/node"
)

func TestIteratorDepthFirstOrder(t *testing.T) {
	root := node.New(node.KindHandle)
	child := node.New(node.KindHandle)
	grandchild := node.New(node.KindHandle)
	sibling := node.New(node.KindHandle)

	root.AppendChild(child)
	child.AppendChild(grandchild)
	root.AppendChild(sibling)

	it := NewIterator(root, 4)
	var order []*node.Node
	for it.HasNext() {
		order = append(order, it.Next())
	}
	assert.Equal(t, []*node.Node{root, child, grandchild, sibling}, order)
	assert.Equal(t, 4, it.Count())

	it.Reset()
	assert.True(t, it.HasNext())
	assert.Equal(t, root, it.Next())
}

func buildSheetWithTwoVBoxes() (*node.Node, *node.Node, *node.Node) {
	sheet := node.New(node.KindSheet)
	a := node.New(node.KindVBox)
	a.Tag, a.Line = 1, 10
	a.H, a.V = 0, 0
	a.Width, a.Height, a.Depth = 10, 10, 0

	b := node.New(node.KindVBox)
	b.Tag, b.Line = 1, 20
	b.H, b.V = 20, 0
	b.Width, b.Height, b.Depth = 10, 10, 0

	sheet.AppendChild(a)
	sheet.AppendChild(b)
	return sheet, a, b
}

func TestEditQueryFallsBackToSheetContentWithoutHBoxes(t *testing.T) {
	sheet, a, _ := buildSheetWithTwoVBoxes()

	it, err := Edit(sheet, geom.Point{H: 5, V: 5})
	assert.NoError(t, err)
	assert.True(t, it.HasNext())
	h := it.Next()
	assert.Equal(t, a, h.Target())
}

func TestDisplayFindsByTagAndLine(t *testing.T) {
	sheet, a, _ := buildSheetWithTwoVBoxes()

	var ft node.FriendTable
	ft.Insert(a)

	it := Display(&ft, 1, 10, -1, 1, false, 0)
	assert.True(t, it.HasNext())
	h := it.Next()
	assert.Equal(t, a, h.Target())
	_ = sheet
}

func TestDisplayPerturbsLineOnMiss(t *testing.T) {
	_, a, _ := buildSheetWithTwoVBoxes()
	var ft node.FriendTable
	ft.Insert(a) // a.Line == 10

	it := Display(&ft, 1, 11, -1, 1, false, 0)
	assert.True(t, it.HasNext())
	assert.Equal(t, a, it.Next().Target())
}

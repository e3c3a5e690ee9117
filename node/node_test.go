package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildVBoxWithChildren() (*Node, *Node, *Node) {
	v := New(KindVBox)
	a := New(KindKern)
	b := New(KindGlue)
	v.AppendChild(a)
	v.AppendChild(b)
	return v, a, b
}

func TestAppendChildMaintainsInvariants(t *testing.T) {
	v, a, b := buildVBoxWithChildren()

	assert.Equal(t, a, v.Child())
	assert.Equal(t, b, v.Last())
	assert.Equal(t, v, a.Parent())
	assert.Equal(t, v, b.Parent())
	assert.Nil(t, a.ArgSibling())
	assert.Equal(t, a, b.ArgSibling())
	assert.Equal(t, b, a.Sibling())
}

func TestInsertAfterRelinksArgSiblingAndLast(t *testing.T) {
	v, a, b := buildVBoxWithChildren()
	mid := New(KindRule)
	InsertAfter(a, mid)

	assert.Equal(t, mid, a.Sibling())
	assert.Equal(t, a, mid.ArgSibling())
	assert.Equal(t, b, mid.Sibling())
	assert.Equal(t, mid, b.ArgSibling())
	assert.Equal(t, b, v.Last())
}

func TestReplaceSplicesIntoSamePosition(t *testing.T) {
	v, a, b := buildVBoxWithChildren()
	proxy := New(KindProxyVBox)
	Replace(a, proxy)

	assert.Equal(t, proxy, v.Child())
	assert.Equal(t, v, proxy.Parent())
	assert.Equal(t, b, proxy.Sibling())
	assert.Equal(t, proxy, b.ArgSibling())
}

func TestLazyChildMaterializationMirrorsTargetChildren(t *testing.T) {
	hbox := New(KindHBox)
	leaf := New(KindRule)
	leaf.Width = 10
	hbox.AppendChild(leaf)

	root := New(KindProxyHBox)
	root.OffsetH, root.OffsetV = 100, 200
	root.SetTarget(hbox)

	child := root.Child()
	if assert.NotNil(t, child) {
		assert.Equal(t, leaf, child.Target())
		assert.Equal(t, int64(100), child.OffsetH)
		assert.Equal(t, int64(200), child.OffsetV)
	}

	sentinel := child.Sibling()
	if assert.NotNil(t, sentinel) {
		assert.Equal(t, KindProxyLast, sentinel.Kind)
	}
	assert.Nil(t, sentinel.Sibling())
}

func TestMakeContainBoxGrowsVisibleDimensions(t *testing.T) {
	hbox := New(KindHBox)
	hbox.H, hbox.V = 0, 100
	hbox.Width, hbox.Height, hbox.Depth = 50, 80, 20
	hbox.SeedVisible()

	overflow := New(KindRule)
	overflow.H, overflow.V = 40, 150
	overflow.Width, overflow.Height, overflow.Depth = 30, 10, 60

	hbox.MakeContainBox(overflow)

	assert.GreaterOrEqual(t, hbox.WidthV, hbox.Width)
	assert.GreaterOrEqual(t, hbox.HeightV, hbox.Height)
	assert.GreaterOrEqual(t, hbox.DepthV, hbox.Depth)
}

func TestFriendBucketDeterministic(t *testing.T) {
	b1 := FriendBucket(7, 42)
	b2 := FriendBucket(7, 42)
	assert.Equal(t, b1, b2)
	assert.True(t, b1 >= 0 && b1 < FriendTableSize)
}

func TestFriendTableInsertAndBucket(t *testing.T) {
	var ft FriendTable
	n := New(KindKern)
	n.Tag, n.Line = 3, 9
	ft.Insert(n)

	bucket := ft.Bucket(3, 9)
	assert.Contains(t, bucket, n)
}

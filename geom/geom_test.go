package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/synctex/node"
)

func TestContainsInsideBox(t *testing.T) {
	box := node.New(node.KindVBox)
	box.H, box.V = 100, 200
	box.Width, box.Height, box.Depth = 50, 30, 10

	assert.True(t, Contains(Point{120, 195}, box))
	assert.False(t, Contains(Point{200, 195}, box))
}

// TestEffGeometryNegativeWidthRule reproduces scenario S6: a rule with a
// negative width still reports the correct bounding range.
func TestEffGeometryNegativeWidthRule(t *testing.T) {
	rule := node.New(node.KindRule)
	rule.H, rule.V = 100, 200
	rule.Width, rule.Height, rule.Depth = -50, 10, 5

	assert.Equal(t, int64(50), rule.EffWidth())
	assert.Equal(t, int64(150), rule.EffH())
}

func TestSmallerPrefersSmallerArea(t *testing.T) {
	big := node.New(node.KindHBox)
	big.Width, big.Height, big.Depth = 100, 50, 50

	small := node.New(node.KindHBox)
	small.Width, small.Height, small.Depth = 10, 5, 5

	assert.Equal(t, small, Smaller(big, small))
	assert.Equal(t, small, Smaller(small, big))
}

func TestHDistProxyTranslatesHit(t *testing.T) {
	target := node.New(node.KindVBox)
	target.H, target.V = 0, 0
	target.Width, target.Height, target.Depth = 10, 10, 10

	p := node.New(node.KindProxyVBox)
	p.OffsetH, p.OffsetV = 100, 100
	p.SetTarget(target)

	assert.Equal(t, int64(0), HDist(Point{105, 100}, p))
}

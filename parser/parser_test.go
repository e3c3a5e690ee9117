package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/synctex/node"
	"github.com/viant/synctex/reader"
)

const preamble = "SyncTeX Version:1\n" +
	"Input:1:./1.tex\n" +
	"Output:pdf\n" +
	"Magnification:1000\n" +
	"Unit:1\n" +
	"X Offset:0\n" +
	"Y Offset:0\n" +
	"Content:\n"

const postamble = "Postamble:\n" +
	"Count:1\n"

// TestMinimalVBox reproduces scenario S1: a single sheet containing one
// vbox, checked by direct tree traversal, plus the Input table entry.
func TestMinimalVBox(t *testing.T) {
	input := preamble +
		"{1\n" +
		"[1,10:20,350:330,330,0\n" +
		"]\n" +
		"}\n" +
		postamble

	tree, err := Parse(reader.NewFromBytes([]byte(input)))
	assert.NoError(t, err)
	assert.Equal(t, int32(1), tree.Version)
	assert.Equal(t, "./1.tex", tree.InputNames[1])

	sheet := tree.Sheets
	if assert.NotNil(t, sheet) {
		assert.Equal(t, int32(1), sheet.Page)
		vbox := sheet.Child()
		if assert.NotNil(t, vbox) {
			assert.Equal(t, node.KindVBox, vbox.Kind)
			assert.Equal(t, int32(1), vbox.Tag)
			assert.Equal(t, int32(10), vbox.Line)
			assert.Equal(t, int64(20), vbox.H)
			assert.Equal(t, int64(350), vbox.V)
			assert.Equal(t, int64(330), vbox.Width)
			assert.Equal(t, int64(330), vbox.Height)
			assert.Equal(t, int64(0), vbox.Depth)
		}
	}
}

// TestHBoxSynthesizesBoxBdry reproduces scenario S2: an hbox gets an
// opening and closing BoxBdry sharing the hbox's own (tag, line).
func TestHBoxSynthesizesBoxBdry(t *testing.T) {
	input := preamble +
		"{1\n" +
		"(1,10:20,350:330,330,0\n" +
		")\n" +
		"}\n" +
		postamble

	tree, err := Parse(reader.NewFromBytes([]byte(input)))
	assert.NoError(t, err)

	hbox := tree.Sheets.Child()
	if !assert.NotNil(t, hbox) {
		return
	}
	assert.Equal(t, node.KindHBox, hbox.Kind)

	open := hbox.Child()
	if assert.NotNil(t, open) {
		assert.Equal(t, node.KindBoxBdry, open.Kind)
		assert.Equal(t, int32(1), open.Tag)
		assert.Equal(t, int32(10), open.Line)
	}

	closeBdry := hbox.Last()
	if assert.NotNil(t, closeBdry) {
		assert.Equal(t, node.KindBoxBdry, closeBdry.Kind)
		assert.Equal(t, int32(1), closeBdry.Tag)
		assert.Equal(t, int32(10), closeBdry.Line)
	}
	assert.NotEqual(t, open, closeBdry)
	assert.Equal(t, closeBdry, open.Sibling(), "an hbox with no real content has only its two synthesized box_bdry markers as children")
}

// TestPostambleMagnificationIsUnsuffixed checks that the postamble's
// Magnification override parses as a bare float (unlike X/Y Offset, which
// carry a unit suffix).
func TestPostambleMagnificationIsUnsuffixed(t *testing.T) {
	input := preamble +
		"{1\n" +
		"[1,10:20,350:330,330,0\n" +
		"]\n" +
		"}\n" +
		"Postamble:\n" +
		"Count:1\n" +
		"Magnification:1500\n" +
		"X Offset:1.0pt\n" +
		"Y Offset:2.0pt\n"

	tree, err := Parse(reader.NewFromBytes([]byte(input)))
	assert.NoError(t, err)
	assert.True(t, tree.HasPostMagnification)
	assert.Equal(t, float64(1500), tree.PostMagnification)
	assert.True(t, tree.HasPostXOffset)
	assert.Equal(t, int64(65536), tree.PostXOffset)
	assert.True(t, tree.HasPostYOffset)
	assert.Equal(t, int64(2*65536), tree.PostYOffset)
}

// TestFormRefParsesIntoRefInSheet checks that an 'f' record inside a sheet
// (not a form) is routed to RefInSheet rather than RefInForm.
func TestFormRefParsesIntoRefInSheet(t *testing.T) {
	input := preamble +
		"{1\n" +
		"[1,10:20,350:330,330,0\n" +
		"f1000:50,100\n" +
		"]\n" +
		"}\n" +
		"<1000\n" +
		"(1,63:0,0:100,8,3\n" +
		")\n" +
		">\n" +
		"Postamble:\n" +
		"Count:2\n"

	tree, err := Parse(reader.NewFromBytes([]byte(input)))
	assert.NoError(t, err)
	assert.Len(t, tree.RefInSheet, 1)
	assert.Len(t, tree.RefInForm, 0)
	assert.Equal(t, int32(1000), tree.RefInSheet[0].FormTag)

	form := tree.Forms
	if assert.NotNil(t, form) {
		assert.Equal(t, int32(1000), form.Tag)
		content := form.Child()
		if assert.NotNil(t, content) {
			assert.Equal(t, node.KindHBox, content.Kind)
		}
	}
}

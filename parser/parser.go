// Package parser implements the SyncTeX tree grammar (§4.D): preamble,
// content (sheets, forms, boxes, kerns, glue, rules, math, boundaries,
// refs), postamble. It builds the primary node tree; form-ref expansion
// (package proxy) and geometric/visible-coordinate conversion (packages
// geom, scanner) run afterward.
package parser

import (
	"errors"
	"fmt"

	"github.com/viant/synctex/node"
	"github.com/viant/synctex/reader"
)

// Tree is everything the parser produces: the preamble/postamble fields
// and the three root lists (§3.3) threaded through sibling.
type Tree struct {
	Version int32

	Inputs     *node.Node // first Input root, chained via Sibling()
	InputNames map[int32]string

	Output            string
	PreMagnification  int32
	PreUnit           int32
	PreXOffset        int32
	PreYOffset        int32

	Sheets *node.Node // first Sheet root
	Forms  *node.Node // first Form root

	Count                 int32
	HasPostMagnification  bool
	PostMagnification     float64
	HasPostXOffset        bool
	PostXOffset           int64
	HasPostYOffset        bool
	PostYOffset           int64

	// RefInForm/RefInSheet are the friend chains of Ref nodes awaiting
	// form-ref expansion (§4.E), split by where the ref was encountered.
	RefInForm  []*node.Node
	RefInSheet []*node.Node
}

// frame tracks one open container (sheet, form, vbox or hbox) while the
// content loop descends into it.
type frame struct {
	n               *node.Node
	isBox           bool
	inForm          bool
	pendingBoundary []*node.Node // x-handles (§4.D) awaiting their first non-boundary sibling
	lastK, lastG    *node.Node
}

type parser struct {
	r      *reader.Reader
	lastV  int64
	frames []*frame
	tree   *Tree
}

// Parse runs the whole grammar: preamble, content, postamble.
func Parse(r *reader.Reader) (*Tree, error) {
	p := &parser{r: r, tree: &Tree{InputNames: map[int32]string{}}}
	if err := p.parsePreamble(); err != nil {
		return nil, fmt.Errorf("parser: preamble: %w", err)
	}
	if err := p.parseContent(); err != nil {
		return nil, fmt.Errorf("parser: content: %w", err)
	}
	if err := p.parsePostamble(); err != nil {
		return nil, fmt.Errorf("parser: postamble: %w", err)
	}
	return p.tree, nil
}

func (p *parser) eol() error {
	_, err := p.r.MatchLiteral("\n")
	return err
}

func (p *parser) tagLineCol() (tag, line, column int32, err error) {
	t, err := p.r.Int()
	if err != nil {
		return 0, 0, 0, err
	}
	l, err := p.r.Int()
	if err != nil {
		return 0, 0, 0, err
	}
	c, err := p.r.IntOpt(-1)
	if err != nil {
		return 0, 0, 0, err
	}
	return int32(t), int32(l), int32(c), nil
}

func (p *parser) hv() (h, v int64, err error) {
	h, err = p.r.Int()
	if err != nil {
		return 0, 0, err
	}
	v, used, err := p.r.IntV(p.lastV)
	if err != nil {
		return 0, 0, err
	}
	if !used {
		p.lastV = v
	}
	return h, v, nil
}

func (p *parser) whd() (w, h, d int64, err error) {
	if w, err = p.r.Int(); err != nil {
		return
	}
	if h, err = p.r.Int(); err != nil {
		return
	}
	if d, err = p.r.Int(); err != nil {
		return
	}
	return
}

// parsePreamble reads "SyncTeX Version:", the Input: table, and the
// Output/Magnification/Unit/X Offset/Y Offset/Content: header lines.
func (p *parser) parsePreamble() error {
	if _, err := p.r.MatchLiteral("SyncTeX Version:"); err != nil {
		return err
	}
	v, err := p.r.Int()
	if err != nil {
		return err
	}
	if err := p.eol(); err != nil {
		return err
	}
	p.tree.Version = int32(v)

	var lastInput, firstInput *node.Node
	for {
		ok, err := p.r.MatchLiteral("Input:")
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		tag, err := p.r.Int()
		if err != nil {
			return err
		}
		if _, err := p.r.MatchLiteral(":"); err != nil {
			return err
		}
		name, err := p.r.String()
		if err != nil {
			return err
		}
		in := node.New(node.KindInput)
		in.Tag = int32(tag)
		in.Name = name
		p.tree.InputNames[in.Tag] = name
		if firstInput == nil {
			firstInput = in
		} else {
			node.InsertAfter(lastInput, in)
		}
		lastInput = in
	}
	p.tree.Inputs = firstInput

	if _, err := p.r.MatchLiteral("Output:"); err != nil {
		return err
	}
	if p.tree.Output, err = p.r.String(); err != nil {
		return err
	}
	if _, err := p.r.MatchLiteral("Magnification:"); err != nil {
		return err
	}
	mag, err := p.r.Int()
	if err != nil {
		return err
	}
	p.tree.PreMagnification = int32(mag)
	if err := p.eol(); err != nil {
		return err
	}
	if _, err := p.r.MatchLiteral("Unit:"); err != nil {
		return err
	}
	unit, err := p.r.Int()
	if err != nil {
		return err
	}
	p.tree.PreUnit = int32(unit)
	if err := p.eol(); err != nil {
		return err
	}
	if _, err := p.r.MatchLiteral("X Offset:"); err != nil {
		return err
	}
	xo, err := p.r.Int()
	if err != nil {
		return err
	}
	p.tree.PreXOffset = int32(xo)
	if err := p.eol(); err != nil {
		return err
	}
	if _, err := p.r.MatchLiteral("Y Offset:"); err != nil {
		return err
	}
	yo, err := p.r.Int()
	if err != nil {
		return err
	}
	p.tree.PreYOffset = int32(yo)
	if err := p.eol(); err != nil {
		return err
	}
	if _, err := p.r.MatchLiteral("Content:"); err != nil {
		return err
	}
	return p.eol()
}

func (p *parser) top() *frame {
	if len(p.frames) == 0 {
		return nil
	}
	return p.frames[len(p.frames)-1]
}

func (p *parser) push(f *frame) { p.frames = append(p.frames, f) }

func (p *parser) pop() *frame {
	f := p.top()
	p.frames = p.frames[:len(p.frames)-1]
	return f
}

// appendChild adds n to the current frame, resolving pending x-handle
// fixups (§4.D). With no open frame it does nothing; the top-level root
// lists are linked by parseContent itself.
func (p *parser) appendChild(n *node.Node) {
	f := p.top()
	if f == nil {
		return
	}
	f.n.AppendChild(n)
	if n.Kind != node.KindBoxBdry && n.Kind != node.KindBoundary && len(f.pendingBoundary) > 0 {
		for _, b := range f.pendingBoundary {
			b.Tag, b.Line, b.Column = n.Tag, n.Line, n.Column
		}
		f.pendingBoundary = f.pendingBoundary[:0]
	}
	if n.Kind == node.KindBoundary && (n.ArgSibling() == nil || len(f.pendingBoundary) > 0) {
		f.pendingBoundary = append(f.pendingBoundary, n)
	}
}

// parseContent runs the top-level loop (sheets, forms, anchors, comments)
// until it reaches "Postamble:".
func (p *parser) parseContent() error {
	var lastSheet, lastForm *node.Node
	for {
		ok, err := p.r.MatchLiteral("Postamble:")
		if err != nil {
			return err
		}
		if ok {
			return p.eol()
		}

		b, present, err := p.r.Peek()
		if err != nil {
			return err
		}
		if !present {
			return errors.New("parser: unexpected EOF before postamble")
		}

		switch b {
		case '{':
			p.r.MatchLiteral("{")
			page, err := p.r.Int()
			if err != nil {
				return err
			}
			if err := p.eol(); err != nil {
				return err
			}
			sheet := node.New(node.KindSheet)
			sheet.Page = int32(page)
			if lastSheet == nil {
				p.tree.Sheets = sheet
			} else {
				node.InsertAfter(lastSheet, sheet)
			}
			lastSheet = sheet
			p.push(&frame{n: sheet, inForm: false})
			if err := p.parseContainerBody('}'); err != nil {
				return err
			}
		case '<':
			p.r.MatchLiteral("<")
			tag, err := p.r.Int()
			if err != nil {
				return err
			}
			if err := p.eol(); err != nil {
				return err
			}
			form := node.New(node.KindForm)
			form.Tag = int32(tag)
			if lastForm == nil {
				p.tree.Forms = form
			} else {
				node.InsertAfter(lastForm, form)
			}
			lastForm = form
			p.push(&frame{n: form, inForm: true})
			if err := p.parseContainerBody('>'); err != nil {
				return err
			}
		case '%', '!':
			if err := p.r.NextLine(); err != nil {
				return err
			}
		default:
			// Malformed top-level line (§7): skip and keep going.
			if err := p.r.NextLine(); err != nil {
				return err
			}
		}
	}
}

// parseContainerBody consumes records until the matching close byte for a
// sheet ('}') or form ('>'), then pops the frame.
func (p *parser) parseContainerBody(closeByte byte) error {
	for {
		b, present, err := p.r.Peek()
		if err != nil {
			return err
		}
		if !present {
			return errors.New("parser: unexpected EOF inside container")
		}
		if b == closeByte {
			p.r.MatchLiteral(string(closeByte))
			if err := p.eol(); err != nil {
				return err
			}
			p.pop()
			return nil
		}
		if err := p.parseRecord(b); err != nil {
			return err
		}
	}
}

// parseBoxBody consumes records until the matching close byte for a vbox
// (']') or hbox (')'), running close-box fixups, then pops the frame.
func (p *parser) parseBoxBody(closeByte byte, f *frame) error {
	for {
		b, present, err := p.r.Peek()
		if err != nil {
			return err
		}
		if !present {
			return errors.New("parser: unexpected EOF inside box")
		}
		if b == closeByte {
			p.r.MatchLiteral(string(closeByte))
			if err := p.eol(); err != nil {
				return err
			}
			p.pop()
			p.closeBox(f)
			return nil
		}
		if err := p.parseRecord(b); err != nil {
			return err
		}
	}
}

func (p *parser) parseRecord(lead byte) error {
	switch lead {
	case '[':
		return p.openBox(node.KindVBox, '[', ']')
	case '(':
		return p.openBox(node.KindHBox, '(', ')')
	case 'v':
		return p.leaf(node.KindVoidVBox, "v", fieldsBoxLike)
	case 'h':
		return p.leaf(node.KindVoidHBox, "h", fieldsBoxLike)
	case 'k':
		return p.leafKern()
	case 'g':
		return p.leafGlue()
	case 'r':
		return p.leaf(node.KindRule, "r", fieldsBoxLike)
	case '$':
		return p.leaf(node.KindMath, "$", fieldsHV)
	case 'x':
		return p.leaf(node.KindBoundary, "x", fieldsHV)
	case 'f':
		return p.leafRef()
	case 'c', '!', '%':
		return p.r.NextLine()
	default:
		return p.r.NextLine()
	}
}

type fieldSet int

const (
	fieldsHV fieldSet = iota
	fieldsBoxLike
	fieldsKern
)

// leaf parses a tag,line[,col]:h,v[:w[,h,d]] record that never opens a new
// frame (void box, rule, math, boundary).
func (p *parser) leaf(kind node.Kind, lead string, fields fieldSet) error {
	if _, err := p.r.MatchLiteral(lead); err != nil {
		return err
	}
	tag, line, col, err := p.tagLineCol()
	if err != nil {
		return err
	}
	h, v, err := p.hv()
	if err != nil {
		return err
	}
	n := node.New(kind)
	n.Tag, n.Line, n.Column = tag, line, col
	n.H, n.V = h, v
	if fields == fieldsBoxLike {
		w, ht, d, err := p.whd()
		if err != nil {
			return err
		}
		n.Width, n.Height, n.Depth = w, ht, d
	}
	if err := p.eol(); err != nil {
		return err
	}
	p.appendChild(n)
	return nil
}

func (p *parser) leafKern() error {
	if _, err := p.r.MatchLiteral("k"); err != nil {
		return err
	}
	tag, line, col, err := p.tagLineCol()
	if err != nil {
		return err
	}
	h, v, err := p.hv()
	if err != nil {
		return err
	}
	w, err := p.r.Int()
	if err != nil {
		return err
	}
	if err := p.eol(); err != nil {
		return err
	}
	n := node.New(node.KindKern)
	n.Tag, n.Line, n.Column = tag, line, col
	n.H, n.V, n.Width = h, v, w
	p.appendChild(n)
	if f := p.top(); f != nil {
		f.lastK = n
	}
	return nil
}

func (p *parser) leafGlue() error {
	if _, err := p.r.MatchLiteral("g"); err != nil {
		return err
	}
	tag, line, col, err := p.tagLineCol()
	if err != nil {
		return err
	}
	h, v, err := p.hv()
	if err != nil {
		return err
	}
	if err := p.eol(); err != nil {
		return err
	}
	n := node.New(node.KindGlue)
	n.Tag, n.Line, n.Column = tag, line, col
	n.H, n.V = h, v
	f := p.top()
	p.appendChild(n)
	if f != nil {
		f.lastG = n
	}
	return nil
}

func (p *parser) leafRef() error {
	if _, err := p.r.MatchLiteral("f"); err != nil {
		return err
	}
	tag, err := p.r.Int()
	if err != nil {
		return err
	}
	h, v, err := p.hv()
	if err != nil {
		return err
	}
	if err := p.eol(); err != nil {
		return err
	}
	n := node.New(node.KindRef)
	n.FormTag = int32(tag)
	n.H, n.V = h, v
	p.appendChild(n)
	f := p.top()
	if f != nil && f.inForm {
		p.tree.RefInForm = append(p.tree.RefInForm, n)
	} else {
		p.tree.RefInSheet = append(p.tree.RefInSheet, n)
	}
	return nil
}

// openBox parses an open vbox/hbox record, pushes a new frame, and for
// hboxes synthesizes the opening BoxBdry child (§4.D).
func (p *parser) openBox(kind node.Kind, openLead string, closeByte byte) error {
	if _, err := p.r.MatchLiteral(openLead); err != nil {
		return err
	}
	tag, line, col, err := p.tagLineCol()
	if err != nil {
		return err
	}
	h, v, err := p.hv()
	if err != nil {
		return err
	}
	w, ht, d, err := p.whd()
	if err != nil {
		return err
	}
	if err := p.eol(); err != nil {
		return err
	}
	box := node.New(kind)
	box.Tag, box.Line, box.Column = tag, line, col
	box.H, box.V = h, v
	box.Width, box.Height, box.Depth = w, ht, d

	parentInForm := false
	if pf := p.top(); pf != nil {
		parentInForm = pf.inForm
	}
	p.appendChild(box)
	nf := &frame{n: box, isBox: true, inForm: parentInForm}
	p.push(nf)

	if kind == node.KindHBox {
		bdry := node.New(node.KindBoxBdry)
		bdry.Tag, bdry.Line, bdry.Column = tag, line, col
		bdry.H, bdry.V = h, v
		box.AppendChild(bdry)
	}
	return p.parseBoxBody(closeByte, nf)
}

// closeBox runs the close-hbox fixups (§4.D): trailing BoxBdry synthesis,
// kern/glue tag sharing and mean_line/weight computation. Closing a vbox
// runs none of them.
func (p *parser) closeBox(f *frame) {
	box := f.n
	if box.Kind != node.KindHBox {
		return
	}
	box.SeedVisible()

	if f.lastK != nil && f.lastG != nil {
		pred := f.lastK.ArgSibling()
		if pred != nil {
			tag, line, col := pred.Tag, pred.Line, pred.Column
			f.lastK.Tag, f.lastK.Line, f.lastK.Column = tag, line, col
			f.lastG.Tag, f.lastG.Line, f.lastG.Column = tag, line, col
		}
	}

	var meanLine, weight int32
	var count int32
	var lastNonRef *node.Node
	for c := box.Child(); c != nil; c = c.Sibling() {
		if c.Kind == node.KindBoxBdry {
			continue
		}
		if c.Kind == node.KindRef {
			continue
		}
		box.MakeContainBox(c)
		lastNonRef = c
		if c.Kind == node.KindHBox {
			meanLine += c.Weight * c.MeanLine
			weight += c.Weight
		} else {
			meanLine += c.Line
			weight++
		}
		count++
	}
	box.Weight = weight
	if weight > 0 {
		box.MeanLine = meanLine / weight
	}

	closeTag, closeLine, closeCol := box.Tag, box.Line, box.Column
	if lastNonRef != nil {
		closeTag, closeLine, closeCol = lastNonRef.Tag, lastNonRef.Line, lastNonRef.Column
	}
	trailing := node.New(node.KindBoxBdry)
	trailing.Tag, trailing.Line, trailing.Column = closeTag, closeLine, closeCol
	trailing.H, trailing.V = box.H+box.Width, box.V
	box.AppendChild(trailing)
	_ = count
}

// parsePostamble reads "Count:", then optional Magnification/X Offset/
// Y Offset override lines, through EOF.
func (p *parser) parsePostamble() error {
	if _, err := p.r.MatchLiteral("Count:"); err != nil {
		return err
	}
	count, err := p.r.Int()
	if err != nil {
		return err
	}
	p.tree.Count = int32(count)
	if err := p.eol(); err != nil {
		return err
	}

	for {
		if _, present, err := p.r.Peek(); err != nil {
			return err
		} else if !present {
			break
		}
		if ok, err := p.r.MatchLiteral("Magnification:"); err != nil {
			return err
		} else if ok {
			mag, err := p.r.Float()
			if err != nil {
				return err
			}
			p.tree.HasPostMagnification = true
			p.tree.PostMagnification = mag
			if err := p.eol(); err != nil {
				return err
			}
			continue
		}
		if ok, err := p.r.MatchLiteral("X Offset:"); err != nil {
			return err
		} else if ok {
			xo, err := p.r.Dimension()
			if err != nil {
				return err
			}
			p.tree.HasPostXOffset = true
			p.tree.PostXOffset = xo
			if err := p.eol(); err != nil {
				return err
			}
			continue
		}
		if ok, err := p.r.MatchLiteral("Y Offset:"); err != nil {
			return err
		} else if ok {
			yo, err := p.r.Dimension()
			if err != nil {
				return err
			}
			p.tree.HasPostYOffset = true
			p.tree.PostYOffset = yo
			if err := p.eol(); err != nil {
				return err
			}
			continue
		}
		break
	}
	return nil
}

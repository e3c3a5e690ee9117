// Package scanner ties reader, decode, node, parser, proxy, geom and
// query together into the public SyncTeX API (§4.I, §6.3): locating the
// .synctex(.gz) file for a given output path, parsing it, expanding form
// refs, and answering edit/display queries against the resulting tree.
package scanner

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"

	"github.com/viant/synctex/geom"
	"github.com/viant/synctex/node"
	"github.com/viant/synctex/parser"
	"github.com/viant/synctex/proxy"
	"github.com/viant/synctex/query"
	"github.com/viant/synctex/reader"
)

// Scanner owns every node allocated while parsing a single SyncTeX file,
// plus the friend table and current iterator (§4.I, §5: scanner-owned
// memory, externally-serialized single-threaded use).
type Scanner struct {
	cfg *Config

	synctexPath string
	tree        *parser.Tree

	friends  node.FriendTable
	nodeCount int

	unit     float64
	xOffset  float64
	yOffset  float64
	magnification float64

	current *query.Iterator
}

// New locates and, if parseNow is true, parses the SyncTeX file for output
// (scanner_new_with_output_file, §4.I step 1).
func New(ctx context.Context, fs afs.Service, output string, cfg *Config, parseNow bool) (*Scanner, error) {
	if cfg == nil {
		cfg = Default()
	}
	location, err := resolve(ctx, fs, output, cfg.BuildDirectory)
	if err != nil {
		return nil, fmt.Errorf("scanner: locate synctex for %s: %w", output, err)
	}
	s := &Scanner{cfg: cfg, synctexPath: location}
	if parseNow {
		if err := s.Parse(ctx, fs); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// resolve tries {output}.synctex then {output}.synctex.gz, retrying both
// under buildDirectory if the direct lookup fails (§4.I step 1). Path
// components containing spaces are also tried quoted, for legacy pdfTeX
// 1.40.9 output (§6.4).
func resolve(ctx context.Context, fs afs.Service, output, buildDirectory string) (string, error) {
	candidates := []string{output + ".synctex", output + ".synctex.gz"}
	if strings.Contains(path.Base(output), " ") {
		quoted := quoteBase(output)
		candidates = append(candidates, quoted+".synctex", quoted+".synctex.gz")
	}
	if loc, ok := firstDownloadable(ctx, fs, candidates); ok {
		return loc, nil
	}
	if buildDirectory != "" {
		base := path.Join(buildDirectory, path.Base(output))
		retried := []string{base + ".synctex", base + ".synctex.gz"}
		if loc, ok := firstDownloadable(ctx, fs, retried); ok {
			return loc, nil
		}
	}
	return "", fmt.Errorf("no .synctex or .synctex.gz found for %s", output)
}

func quoteBase(p string) string {
	dir, base := path.Split(p)
	return dir + `"` + base + `"`
}

func firstDownloadable(ctx context.Context, fs afs.Service, candidates []string) (string, bool) {
	for _, c := range candidates {
		if _, err := fs.DownloadWithURL(ctx, c); err == nil {
			return c, true
		}
	}
	return "", false
}

// Parse runs the full parse pipeline: preamble/content/postamble, unit and
// offset resolution, and form-ref expansion, populating the scanner's
// friend table and hbox chains.
func (s *Scanner) Parse(ctx context.Context, fs afs.Service) error {
	r, err := reader.Open(ctx, fs, s.synctexPath)
	if err != nil {
		return fmt.Errorf("scanner: open %s: %w", s.synctexPath, err)
	}
	return s.parseFrom(r)
}

// parseFrom runs the grammar/unit/proxy-expansion pipeline over an
// already-open reader, independent of how its bytes were obtained.
func (s *Scanner) parseFrom(r *reader.Reader) error {
	tree, err := parser.Parse(r)
	if err != nil {
		return fmt.Errorf("scanner: parse %s: %w", s.synctexPath, err)
	}
	s.tree = tree
	s.resolveUnitOffset()

	formsByTag := map[int32]*node.Node{}
	for f := tree.Forms; f != nil; f = f.Sibling() {
		formsByTag[f.Tag] = f
	}
	resolver := formResolver{byTag: formsByTag}

	if _, err := proxy.Expand(tree.RefInForm, resolver, nil); err != nil {
		return fmt.Errorf("scanner: expand in-form refs: %w", err)
	}

	// Primary hboxes must claim each sheet's next_hbox head before any
	// sheet-rooted ref expands: RegisterVisible appends proxy hboxes to
	// the existing chain tail, so the chain's primary links need to
	// already be in place or a later-registered primary hbox would
	// overwrite the proxy hbox RegisterVisible had already installed.
	s.registerPrimaryNodes()

	if _, err := proxy.Expand(tree.RefInSheet, resolver, s); err != nil {
		return fmt.Errorf("scanner: expand in-sheet refs: %w", err)
	}

	return nil
}

// resolveUnitOffset converts the preamble's pre_unit/pre_x_offset/
// pre_y_offset/pre_magnification into the final unit/x_offset/y_offset
// (§4.I step 3), letting postamble values override where present.
func (s *Scanner) resolveUnitOffset() {
	const sp65781 = 65781.76

	preUnit := float64(s.tree.PreUnit) / sp65781
	mag := float64(s.tree.PreMagnification)
	if s.tree.HasPostMagnification {
		mag = s.tree.PostMagnification
	}
	unit := preUnit * mag / 1000

	var xOffset, yOffset float64
	if s.tree.HasPostXOffset {
		xOffset = float64(s.tree.PostXOffset) / sp65781
	} else {
		xOffset = float64(s.tree.PreXOffset) * preUnit
	}
	if s.tree.HasPostYOffset {
		yOffset = float64(s.tree.PostYOffset) / sp65781
	} else {
		yOffset = float64(s.tree.PreYOffset) * preUnit
	}

	s.unit = unit
	s.xOffset = xOffset
	s.yOffset = yOffset
	s.magnification = mag
}

// registerPrimaryNodes walks the parsed (non-proxy) sheet trees, wiring
// every hasTagLine node into the friend table and every hbox into its
// sheet's next_hbox chain. Must run before sheet-rooted proxy.Expand so
// that RegisterVisible's proxy hboxes append onto an already-wired chain
// instead of being overwritten by a primary hbox claiming the chain head.
func (s *Scanner) registerPrimaryNodes() {
	for sheet := s.tree.Sheets; sheet != nil; sheet = sheet.Sibling() {
		s.nodeCount++
		var lastHBox *node.Node
		var walk func(n *node.Node)
		walk = func(n *node.Node) {
			for c := n.Child(); c != nil; c = c.Sibling() {
				s.nodeCount++
				// Refs still present here are about to be replaced by
				// proxy.Expand; skip them so the friend table doesn't
				// pick up a transient zero-tag record (parser.closeBox
				// skips KindRef for the same reason).
				if c.Kind.HasTagLine() && c.Kind != node.KindRef {
					s.friends.Insert(c)
				}
				if c.Kind == node.KindHBox {
					if lastHBox == nil {
						sheet.SetNextHBox(c)
					} else {
						lastHBox.SetNextHBox(c)
					}
					lastHBox = c
				}
				if c.Kind.IsContainer() {
					walk(c)
				}
			}
		}
		walk(sheet)
	}
}

// RegisterVisible implements proxy.Sink: a sheet-reachable proxy node just
// materialized becomes page-visible and joins the friend table / hbox
// chain the same way a primary node does (§4.E step 5).
func (s *Scanner) RegisterVisible(n *node.Node) {
	s.nodeCount++
	if n.Kind.HasTagLine() || n.Kind.IsProxy() {
		s.friends.Insert(n)
	}
	if n.Kind == node.KindProxyHBox {
		sheet := n.Parent()
		for sheet != nil && sheet.Kind != node.KindSheet {
			sheet = sheet.Parent()
		}
		if sheet != nil {
			tail := sheet
			for tail.NextHBox() != nil {
				tail = tail.NextHBox()
			}
			tail.SetNextHBox(n)
		}
	}
}

type formResolver struct{ byTag map[int32]*node.Node }

func (r formResolver) ContentByTag(tag int32) (*node.Node, error) {
	form, ok := r.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("no form with tag %d", tag)
	}
	return form.Child(), nil
}

// GetSynctex returns the resolved .synctex(.gz) path.
func (s *Scanner) GetSynctex() string { return s.synctexPath }

// GetOutput returns the Output: field recorded in the preamble.
func (s *Scanner) GetOutput() string {
	if s.tree == nil {
		return ""
	}
	return s.tree.Output
}

// XOffset, YOffset, Magnification return the final, postamble-resolved
// values (§4.I step 3).
func (s *Scanner) XOffset() float64       { return s.xOffset }
func (s *Scanner) YOffset() float64       { return s.yOffset }
func (s *Scanner) Magnification() float64 { return s.magnification }
func (s *Scanner) Unit() float64          { return s.unit }

// GetName returns the input file name for tag, or "" if unknown.
func (s *Scanner) GetName(tag int32) string {
	if s.tree == nil {
		return ""
	}
	return s.tree.InputNames[tag]
}

// GetTag resolves a file name to its input tag, with case-insensitive and
// relative-prefix fallback (§4.G step 1), preferring an exact match.
func (s *Scanner) GetTag(name string) (int32, bool) {
	if s.tree == nil {
		return 0, false
	}
	for in := s.tree.Inputs; in != nil; in = in.Sibling() {
		if in.Name == name {
			return in.Tag, true
		}
	}
	for in := s.tree.Inputs; in != nil; in = in.Sibling() {
		if strings.EqualFold(in.Name, name) {
			return in.Tag, true
		}
	}
	base := path.Base(name)
	var match int32
	found := 0
	for in := s.tree.Inputs; in != nil; in = in.Sibling() {
		if path.Base(in.Name) == base {
			match = in.Tag
			found++
		}
	}
	if found == 1 {
		return match, true
	}
	return 0, false
}

// Input returns the first Input root; InputWithTag looks one up by tag.
func (s *Scanner) Input() *node.Node { return s.tree.Inputs }

func (s *Scanner) InputWithTag(tag int32) *node.Node {
	for in := s.tree.Inputs; in != nil; in = in.Sibling() {
		if in.Tag == tag {
			return in
		}
	}
	return nil
}

// Sheet returns the Sheet root for page, or nil.
func (s *Scanner) Sheet(page int32) *node.Node {
	for sh := s.tree.Sheets; sh != nil; sh = sh.Sibling() {
		if sh.Page == page {
			return sh
		}
	}
	return nil
}

// SheetContent returns the first content child of the sheet for page.
func (s *Scanner) SheetContent(page int32) *node.Node {
	sh := s.Sheet(page)
	if sh == nil {
		return nil
	}
	return sh.Child()
}

// Form returns the Form root for tag, or nil.
func (s *Scanner) Form(tag int32) *node.Node {
	for f := s.tree.Forms; f != nil; f = f.Sibling() {
		if f.Tag == tag {
			return f
		}
	}
	return nil
}

// FormContent returns the first content child of the form for tag.
func (s *Scanner) FormContent(tag int32) *node.Node {
	f := s.Form(tag)
	if f == nil {
		return nil
	}
	return f.Child()
}

// DisplaySwitcher reports whether the friend table holds a node with exactly
// (name, line), without allocating an iterator. The display query's ±line
// perturbation sweep is not tried.
func (s *Scanner) DisplaySwitcher(name string, line int32) bool {
	tag, ok := s.GetTag(name)
	if !ok {
		return false
	}
	for _, n := range s.friends.Bucket(tag, line) {
		if t, l, _ := n.TLC(); t == tag && l == line {
			return true
		}
	}
	return false
}

// IteratorNewEdit runs the edit query and installs the result as the
// scanner's current iterator, freeing whatever iterator preceded it.
func (s *Scanner) IteratorNewEdit(page int32, h, v float64) (*query.Iterator, error) {
	sheet := s.Sheet(page)
	if sheet == nil {
		return nil, fmt.Errorf("scanner: no sheet for page %d", page)
	}
	hit := geom.Point{
		H: int64((h - s.xOffset) / s.unit),
		V: int64((v - s.yOffset) / s.unit),
	}
	it, err := query.Edit(sheet, hit)
	if err != nil {
		return nil, err
	}
	s.replaceIterator(it)
	return it, nil
}

// IteratorNewDisplay runs the display query and installs the result.
func (s *Scanner) IteratorNewDisplay(name string, line, column, pageHint int32) (*query.Iterator, error) {
	tag, ok := s.GetTag(name)
	if !ok {
		return nil, fmt.Errorf("scanner: unknown input %q", name)
	}
	it := query.Display(&s.friends, tag, line, column, pageHint, s.cfg.StrongMode, s.cfg.TryCount)
	s.replaceIterator(it)
	return it, nil
}

func (s *Scanner) replaceIterator(it *query.Iterator) {
	if s.current != nil {
		s.current.Free()
	}
	s.current = it
}

// Free releases the scanner's current iterator and returns the number of
// nodes counted during parse: the sheets, the primary nodes of their trees
// and the proxies made visible on them. Inputs, forms and form content are
// not counted.
func (s *Scanner) Free() int {
	if s.current != nil {
		s.current.Free()
		s.current = nil
	}
	return s.nodeCount
}

// Diagnose returns a snapshot of the scanner's lifecycle state.
func (s *Scanner) Diagnose() Diagnostic {
	d := Diagnostic{
		SynctexPath:    s.synctexPath,
		OutputPath:     s.GetOutput(),
		NodeCount:      s.nodeCount,
		Unit:           s.unit,
		XOffset:        s.xOffset,
		YOffset:        s.yOffset,
		Magnification:  s.magnification,
	}
	if s.tree != nil {
		d.Version = s.tree.Version
		for in := s.tree.Inputs; in != nil; in = in.Sibling() {
			d.InputCount++
		}
		for sh := s.tree.Sheets; sh != nil; sh = sh.Sibling() {
			d.SheetCount++
		}
		for f := s.tree.Forms; f != nil; f = f.Sibling() {
			d.FormCount++
		}
	}
	return d
}

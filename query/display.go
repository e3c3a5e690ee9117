package query

import (
	"sort"

	"github.com/viant/synctex/node"
)

// DefaultTryCount bounds the ±k retry sweep when a (tag,line) bucket
// misses outright (§4.G step 6), absent an explicit override.
const DefaultTryCount = 100

// Display runs the display query (§4.G): given a tag already resolved from
// a source file name, it probes the friend table for (tag, line), groups
// hits by destination page, orders pages by closeness to pageHint, and
// reorders each page's hits by companion weight. tryCount bounds the
// ±line perturbation sweep on a bucket miss; 0 uses DefaultTryCount.
func Display(ft *node.FriendTable, tag, line, column, pageHint int32, strongMode bool, tryCount int) *Iterator {
	if tryCount <= 0 {
		tryCount = DefaultTryCount
	}
	handles := probeWithPerturbation(ft, tag, line, strongMode, tryCount)
	if len(handles) == 0 {
		return NewIterator(nil, 0)
	}

	groups := groupByPage(handles)
	for page, g := range groups {
		groups[page] = reorderByWeight(g)
	}
	pages := make([]int32, 0, len(groups))
	for page, g := range groups {
		if len(g) > 0 {
			pages = append(pages, page)
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		di := absInt32(pages[i] - pageHint)
		dj := absInt32(pages[j] - pageHint)
		if di != dj {
			return di < dj
		}
		return pages[i] < pages[j]
	})

	var heads []*node.Node
	total := 0
	for _, page := range pages {
		g := groups[page]
		head := newHandle(g[0])
		for _, n := range g[1:] {
			head.AppendChild(newHandle(n))
		}
		heads = append(heads, head)
		total += len(g)
	}
	root := chainSiblings(heads...)
	return NewIterator(root, total)
}

// probeWithPerturbation probes bucket (tag, line); on a miss it retries at
// line±1, line±2, ... up to tryCount steps unless strongMode forbids it.
func probeWithPerturbation(ft *node.FriendTable, tag, line int32, strongMode bool, tryCount int) []*node.Node {
	if hits := probe(ft, tag, line); len(hits) > 0 {
		return hits
	}
	if strongMode {
		return nil
	}
	for d := int32(1); d <= int32(tryCount); d++ {
		if hits := probe(ft, tag, line+d); len(hits) > 0 {
			return hits
		}
		if hits := probe(ft, tag, line-d); len(hits) > 0 {
			return hits
		}
	}
	return nil
}

// probe scans the (tag, line) bucket twice: first skipping boxes, then
// including them, returning the first non-empty pass's matches.
func probe(ft *node.FriendTable, tag, line int32) []*node.Node {
	bucket := ft.Bucket(tag, line)
	var skipBoxes, all []*node.Node
	for _, n := range bucket {
		t, l, _ := n.TLC()
		if t != tag || l != line {
			continue
		}
		all = append(all, n)
		if !n.Kind.IsBox() {
			skipBoxes = append(skipBoxes, n)
		}
	}
	if len(skipBoxes) > 0 {
		return skipBoxes
	}
	return all
}

func groupByPage(handles []*node.Node) map[int32][]*node.Node {
	groups := map[int32][]*node.Node{}
	for _, n := range handles {
		page := ownerPage(n)
		groups[page] = append(groups[page], n)
	}
	return groups
}

// ownerPage walks up to the node's root, which is the Sheet it belongs to.
func ownerPage(n *node.Node) int32 {
	cur := n
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	if cur.Kind == node.KindSheet {
		return cur.Page
	}
	return 0
}

// reorderByWeight counts, for each candidate, how many other candidates in
// the same page group share its nearest box ancestor, sorts heaviest
// first, and drops zero-weight candidates as synthetic (§4.G step 5).
func reorderByWeight(handles []*node.Node) []*node.Node {
	ancestor := make([]*node.Node, len(handles))
	for i, h := range handles {
		ancestor[i] = nearestBoxAncestor(h)
	}
	weight := make([]int, len(handles))
	for i := range handles {
		for j := range handles {
			if i == j {
				continue
			}
			if ancestor[i] != nil && ancestor[i] == ancestor[j] {
				weight[i]++
			}
		}
	}
	type scored struct {
		n *node.Node
		w int
	}
	var kept []scored
	for i, h := range handles {
		if weight[i] > 0 {
			kept = append(kept, scored{h, weight[i]})
		}
	}
	if len(kept) == 0 {
		// No companions anywhere in the group: keep everything rather than
		// discard a genuinely unique single hit.
		for i, h := range handles {
			kept = append(kept, scored{h, weight[i]})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].w > kept[j].w })
	out := make([]*node.Node, len(kept))
	for i, s := range kept {
		out[i] = s.n
	}
	return out
}

func nearestBoxAncestor(n *node.Node) *node.Node {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Kind.IsBox() {
			return cur
		}
	}
	return nil
}

func absInt32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

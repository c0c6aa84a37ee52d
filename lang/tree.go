package lang

// kindHint records the container kind of a branch that may have no
// children.
type kindHint int

const (
	hintNone kindHint = iota
	hintObject
	hintArray
)

type child struct {
	seg Segment
	id  int
}

// node is either a leaf holding a raw value or a branch of ordered
// children. Children of one branch are all keys or all indexes.
type node struct {
	value    Raw
	children []child
	leaf     bool
	hint     kindHint
}

// Tree is the merged, not yet finalized document. Nodes live in one arena
// and refer to their children by index; node 0 is the root. Nodes
// detached by a later assignment stay in the arena unreferenced.
type Tree struct {
	nodes []node
}

func newTree() *Tree {
	t := &Tree{nodes: make([]node, 0, 64)}
	t.alloc(node{hint: hintObject})

	return t
}

func (t *Tree) alloc(n node) int {
	t.nodes = append(t.nodes, n)

	return len(t.nodes) - 1
}

func (t *Tree) newLeaf(v Raw) int { return t.alloc(node{leaf: true, value: v}) }

func (t *Tree) newBranch(hint kindHint) int { return t.alloc(node{hint: hint}) }

// Len returns the number of nodes reachable from the root.
func (t *Tree) Len() int {
	n := 0
	t.walk(0, func(int) { n++ })

	return n
}

func (t *Tree) walk(id int, fn func(int)) {
	fn(id)

	for _, c := range t.nodes[id].children {
		t.walk(c.id, fn)
	}
}

// child returns the child of branch id addressed exactly by seg.
func (t *Tree) child(id int, seg Segment) (int, bool) {
	for _, c := range t.nodes[id].children {
		if c.seg.Equal(seg) {
			return c.id, true
		}
	}

	return 0, false
}

// find returns the node at p. A numeric key segment also selects an
// array index.
func (t *Tree) find(p Path) (int, bool) {
	id := 0

	for _, seg := range p {
		n := &t.nodes[id]
		if n.leaf {
			return 0, false
		}

		found := false

		for _, c := range n.children {
			if seg.matches(c.seg) {
				id, found = c.id, true

				break
			}
		}

		if !found {
			return 0, false
		}
	}

	return id, true
}

// clone deep-copies the subtree at id and returns the id of the copy.
func (t *Tree) clone(id int) int {
	src := t.nodes[id]
	if src.leaf {
		return t.newLeaf(src.value)
	}

	children := make([]child, len(src.children))
	for i, c := range src.children {
		children[i] = child{seg: c.seg, id: t.clone(c.id)}
	}

	return t.alloc(node{children: children, hint: src.hint})
}

// arrayish reports whether branch id holds array elements.
func (t *Tree) arrayish(id int) bool {
	n := t.nodes[id]
	if n.leaf {
		return false
	}

	if len(n.children) > 0 {
		return n.children[0].seg.Kind == SegmentIndex
	}

	return n.hint == hintArray
}

// copyNode overwrites the node at dst with the content of the node at src.
func (t *Tree) copyNode(dst, src int) {
	n := t.nodes[src]
	n.children = append([]child(nil), n.children...)
	t.nodes[dst] = n
}

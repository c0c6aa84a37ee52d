package lang

import (
	"context"
	"log/slog"
)

// Merge folds s into a tree in document order. Each value is resolved
// against the tree built so far; references that cannot be resolved yet
// are kept for [Finalize].
func Merge(ctx context.Context, s Stream, opts ...Option) (*Tree, error) {
	cfg := makeConfig(opts...)

	return merge(ctx, s, &cfg)
}

func merge(ctx context.Context, s Stream, cfg *config) (*Tree, error) {
	m := &merger{
		tree:  newTree(),
		cfg:   cfg,
		ctx:   ctx,
		slots: make(map[string]map[string]int64),
	}
	m.res = resolver{tree: m.tree, cfg: cfg, ctx: ctx}

	for _, a := range s {
		if err := m.assign(a); err != nil {
			return nil, err
		}
	}

	cfg.logger.TraceContext(ctx, "merge complete",
		slog.Int("assignments", len(s)),
		slog.Int("nodes", len(m.tree.nodes)),
	)

	return m.tree, nil
}

// merger owns the tree for the duration of one fold.
type merger struct {
	tree *Tree
	cfg  *config
	ctx  context.Context
	res  resolver

	// slots maps an array root to the index allocated to each appended
	// item id, so every assignment of one appended element shares it.
	slots map[string]map[string]int64

	// last is the effective path of the previous assignment.
	last Path
}

func (m *merger) assign(a Assignment) error {
	if a.Value.Kind == RawError {
		if _, err := m.cfg.policy().fail(a.Value.Err); err != nil {
			return err
		}
	}

	a = a.rooted()
	path := m.place(a)

	m.cfg.logger.TraceContext(m.ctx, "assign",
		slog.String("path", path.String()),
		slog.Any("value", a.Value),
	)

	id := m.res.substitute(a.Value, path)

	if len(path) == 0 {
		m.assignRoot(id)

		return nil
	}

	m.write(path, id)
	m.last = path

	return nil
}

// assignRoot stores a value assigned to the document itself. Only
// containers can occupy the root.
func (m *merger) assignRoot(id int) {
	n := m.tree.nodes[id]
	if n.leaf {
		m.cfg.logger.TraceContext(m.ctx, "root scalar ignored",
			slog.Any("value", n.value))

		return
	}

	if len(n.children) == 0 {
		if len(m.tree.nodes[0].children) == 0 {
			m.tree.nodes[0].hint = n.hint
		}

		return
	}

	m.tree.copyNode(0, id)
}

// place returns the effective path of a: every anonymous segment becomes
// the index allocated to the appended item that produced it.
func (m *merger) place(a Assignment) Path {
	ids := appendIDs(a.Value)

	var path Path

	for i, seg := range a.Path {
		if seg.Kind != SegmentAnonymous {
			continue
		}

		if path == nil {
			path = a.Path.Clone()
		}

		id := ""
		if len(ids) > 0 {
			id, ids = ids[0], ids[1:]
		}

		path[i] = Index(m.slot(path[:i], id))
	}

	if path == nil {
		return a.Path
	}

	return path
}

func (m *merger) slot(root Path, itemID string) int64 {
	key := root.key()

	tbl, ok := m.slots[key]
	if !ok {
		tbl = make(map[string]int64)
		m.slots[key] = tbl
	}

	if idx, ok := tbl[itemID]; ok {
		return idx
	}

	var idx int64

	if id, ok := m.tree.find(root); ok && m.tree.arrayish(id) {
		idx = int64(len(m.tree.nodes[id].children))
	}

	if itemID != "" {
		tbl[itemID] = idx
	}

	m.cfg.logger.TraceContext(m.ctx, "append slot",
		slog.String("root", root.String()),
		slog.String("item", itemID),
		slog.Int64("index", idx),
	)

	return idx
}

// appendIDs returns the item ids of the Append layers of v, outermost
// first.
func appendIDs(v Raw) []string {
	var ids []string

	for v.Inner != nil && (v.Kind == RawIncluded || v.Kind == RawAppend) {
		if v.Kind == RawAppend {
			ids = append(ids, v.ItemID)
		}

		v = *v.Inner
	}

	return ids
}

// write walks path from the root, creating branches on demand, and stores
// the node id at its terminal.
func (m *merger) write(path Path, id int) {
	cur := 0

	for i, seg := range path {
		if n := m.tree.nodes[cur]; n.leaf {
			m.tree.nodes[cur] = node{}

			if n.value.Kind != RawPending {
				m.rule("leaf replaced", path[:i])
			}
		}

		walked := path[:i+1]

		if m.resets(cur, seg, walked) {
			m.tree.nodes[cur].children = nil

			m.rule("array reset", walked)
		}

		if next, ok := m.tree.child(cur, seg); ok {
			cur = next

			continue
		}

		children := m.tree.nodes[cur].children
		if len(children) > 0 &&
			(children[0].seg.Kind != seg.Kind ||
				(seg.Kind == SegmentIndex && seg.Index == 0)) {
			m.tree.nodes[cur].children = nil

			m.rule("container replaced", walked)
		}

		next := m.tree.newLeaf(Raw{})
		m.tree.nodes[cur].children = append(
			m.tree.nodes[cur].children,
			child{seg: seg, id: next},
		)
		cur = next
	}

	if m.emptyInto(cur, id) {
		m.rule("empty object merged", path)

		return
	}

	// The value displaced from the terminal becomes the fallback of an
	// optional substitution stored there.
	var displaced *Raw
	if n := m.tree.nodes[cur]; n.leaf && n.value.Kind != RawPending {
		displaced = &n.value
	}

	m.tree.copyNode(cur, id)

	if displaced != nil && m.tree.nodes[cur].leaf {
		m.tree.nodes[cur].value = m.tree.nodes[cur].value.withFallback(*displaced)
	}
}

// resets reports whether assigning index 0 under branch cur starts a new
// array: the branch already holds an array and the previous assignment did
// not walk through the same element.
func (m *merger) resets(cur int, seg Segment, walked Path) bool {
	if seg.Kind != SegmentIndex || seg.Index != 0 {
		return false
	}

	children := m.tree.nodes[cur].children
	if len(children) == 0 || !children[0].seg.Equal(Index(0)) {
		return false
	}

	return len(m.last) < len(walked) || !m.last.Prefix(len(walked)).Equal(walked)
}

// emptyInto reports whether node id is an empty object landing on a
// populated object, which it leaves unchanged.
func (m *merger) emptyInto(dst, id int) bool {
	src, cur := m.tree.nodes[id], m.tree.nodes[dst]
	if src.leaf || len(src.children) > 0 || src.hint != hintObject {
		return false
	}

	return !cur.leaf && len(cur.children) > 0 && !m.tree.arrayish(dst)
}

func (m *merger) rule(name string, at Path) {
	m.cfg.logger.TraceContext(m.ctx, "collision",
		slog.String("rule", name),
		slog.String("path", at.String()),
	)
}

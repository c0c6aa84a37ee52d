package lang

import (
	"context"
	"log/slog"
)

// resolver evaluates raw values against the tree built so far during the
// fold. A reference that cannot be satisfied yet is kept as a marker for
// the finalizer.
type resolver struct {
	tree *Tree
	cfg  *config
	ctx  context.Context
}

// substitute resolves r for the slot at and returns the id of a fresh node
// holding the result.
func (r *resolver) substitute(v Raw, at Path) int {
	switch v.Kind {
	case RawSubstitution:
		if id, ok := r.lookup(v.Target); ok {
			r.trace("backward reference", at, slog.String("target", v.Target.String()))

			return r.tree.clone(id)
		}

		r.trace("deferred reference", at, slog.String("target", v.Target.String()))

		return r.tree.newLeaf(v)

	case RawIncluded:
		return r.substituteIncluded(v, at)

	case RawAppend:
		if v.Inner == nil {
			return r.tree.newLeaf(Null())
		}

		return r.substitute(*v.Inner, at)

	case RawConcat:
		return r.substituteConcat(v, at)

	case RawEmptyObject:
		return r.tree.newBranch(hintObject)

	case RawEmptyArray:
		return r.tree.newBranch(hintArray)
	}

	return r.tree.newLeaf(v)
}

// lookup returns the node at target if it holds a usable value: a branch,
// or a leaf that is neither an error nor still waiting on a reference.
func (r *resolver) lookup(target Path) (int, bool) {
	id, ok := r.tree.find(target)
	if !ok {
		return 0, false
	}

	n := r.tree.nodes[id]
	if n.leaf && (n.value.Kind == RawError || n.value.pending()) {
		return 0, false
	}

	return id, true
}

func (r *resolver) substituteIncluded(v Raw, at Path) int {
	roots, core := unwrapIncluded(v)

	switch core.Kind {
	case RawSubstitution:
		for _, cand := range candidates(roots, core.Target) {
			if id, ok := r.lookup(cand); ok {
				r.trace("rooted reference", at, slog.String("target", cand.String()))

				return r.tree.clone(id)
			}
		}

		return r.tree.newLeaf(rewrap(roots, core))

	case RawConcat:
		items := make([]Raw, len(core.Items))
		for i, it := range core.Items {
			items[i] = rewrap(roots, it)
		}

		return r.substituteConcat(Raw{Kind: RawConcat, Items: items}, at)
	}

	id := r.substitute(core, at)
	if n := r.tree.nodes[id]; n.leaf && n.value.pending() {
		r.tree.nodes[id].value = rewrap(roots, n.value)
	}

	return id
}

func (r *resolver) substituteConcat(v Raw, at Path) int {
	ids := make([]int, len(v.Items))
	branch := false
	array := false

	for i, it := range v.Items {
		ids[i] = r.substitute(it, at)

		if !r.tree.nodes[ids[i]].leaf {
			branch = true
			array = array || r.tree.arrayish(ids[i])
		}
	}

	if !branch {
		items := make([]Raw, 0, len(ids))

		for _, id := range ids {
			leaf := r.tree.nodes[id].value
			if leaf.Kind == RawError {
				r.trace("concat item skipped", at, slog.Any("error", leaf.Err))

				continue
			}

			items = append(items, leaf)
		}

		return r.tree.newLeaf(Raw{Kind: RawConcat, Items: items})
	}

	if array {
		return r.concatArrays(ids, at)
	}

	return r.concatObjects(ids, at)
}

// concatArrays joins array items into one array, re-indexing elements by
// position. Unquoted whitespace between items is dropped.
func (r *resolver) concatArrays(ids []int, at Path) int {
	out := r.tree.newBranch(hintArray)

	var next int64

	for _, id := range ids {
		n := r.tree.nodes[id]
		if n.leaf || !r.tree.arrayish(id) {
			if !n.leaf || !n.value.blank() {
				r.trace("concat item dropped", at, slog.Any("item", n.value))
			}

			continue
		}

		for _, c := range n.children {
			r.tree.nodes[out].children = append(
				r.tree.nodes[out].children,
				child{seg: Index(next), id: c.id},
			)
			next++
		}
	}

	return out
}

// concatObjects merges object items by key; later keys override earlier
// ones and nested objects merge recursively.
func (r *resolver) concatObjects(ids []int, at Path) int {
	out := r.tree.newBranch(hintObject)

	for _, id := range ids {
		n := r.tree.nodes[id]
		if n.leaf {
			if !n.value.blank() {
				r.trace("concat item dropped", at, slog.Any("item", n.value))
			}

			continue
		}

		r.mergeObject(out, id)
	}

	return out
}

func (r *resolver) mergeObject(dst, src int) {
	for _, c := range r.tree.nodes[src].children {
		cur, ok := r.tree.child(dst, c.seg)
		if !ok {
			r.tree.nodes[dst].children = append(r.tree.nodes[dst].children, c)

			continue
		}

		if !r.tree.nodes[cur].leaf && !r.tree.nodes[c.id].leaf &&
			!r.tree.arrayish(cur) && !r.tree.arrayish(c.id) {
			r.mergeObject(cur, c.id)

			continue
		}

		r.tree.copyNode(cur, c.id)
	}
}

func (r *resolver) trace(msg string, at Path, attrs ...slog.Attr) {
	r.cfg.logger.TraceContext(
		r.ctx,
		msg,
		append([]slog.Attr{slog.String("path", at.String())}, attrs...)...,
	)
}

// unwrapIncluded strips Included and Append layers from v. It returns the
// inclusion roots, innermost first, and the wrapped core value.
func unwrapIncluded(v Raw) ([]Path, Raw) {
	var roots []Path

	for v.Inner != nil && (v.Kind == RawIncluded || v.Kind == RawAppend) {
		if v.Kind == RawIncluded && v.Rooted {
			roots = append(roots, v.IncludeRoot)
		}

		v = *v.Inner
	}

	// A wrapper around nothing holds null.
	if v.Kind == RawIncluded || v.Kind == RawAppend {
		v = Null()
	}

	for i, j := 0, len(roots)-1; i < j; i, j = i+1, j-1 {
		roots[i], roots[j] = roots[j], roots[i]
	}

	return roots, v
}

// rewrap wraps core in one rooted Included layer per root, so that roots
// read back by unwrapIncluded come out in the same order.
func rewrap(roots []Path, core Raw) Raw {
	for _, root := range roots {
		inner := core
		core = Raw{
			Kind:        RawIncluded,
			Inner:       &inner,
			IncludeRoot: root,
			Rooted:      true,
		}
	}

	return core
}

// candidates lists the paths a reference to target may denote from inside
// included content: target under each inclusion root, innermost first,
// then target itself.
func candidates(roots []Path, target Path) []Path {
	out := make([]Path, 0, len(roots)+1)

	for _, root := range roots {
		if len(root) > 0 {
			out = append(out, root.Append(target...))
		}
	}

	return append(out, target)
}

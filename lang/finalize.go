package lang

import (
	"context"
	"log/slog"
	"strings"
)

// Finalize converts a merged tree into its public value. References left
// pending by the fold are resolved here, in document-independent order,
// falling back to the process environment and to optional defaults.
func Finalize(ctx context.Context, t *Tree, opts ...Option) (*Value, error) {
	cfg := makeConfig(opts...)

	return finalize(ctx, t, &cfg)
}

func finalize(ctx context.Context, t *Tree, cfg *config) (*Value, error) {
	f := &finalizer{
		tree:   t,
		cfg:    cfg,
		ctx:    ctx,
		policy: cfg.policy(),
		env:    environ(cfg.processEnv),
		done:   make(map[int]*Value),
		busy:   make(map[int]bool),
	}

	v, err := f.value(0, nil)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "finalize complete",
		slog.Int("nodes", len(f.done)))

	return v, nil
}

// environ splits "KEY=value" entries into a map. Later entries win.
func environ(env []string) map[string]string {
	m := make(map[string]string, len(env))

	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			m[k] = v
		}
	}

	return m
}

type finalizer struct {
	tree   *Tree
	cfg    *config
	ctx    context.Context
	env    map[string]string
	done   map[int]*Value
	busy   map[int]bool
	policy policy
}

// value finalizes the node id found at path at. A node reached again while
// it is still being finalized is a reference cycle.
func (f *finalizer) value(id int, at Path) (*Value, error) {
	if v, ok := f.done[id]; ok {
		return v, nil
	}

	if f.busy[id] {
		return f.policy.bad(ErrCycleDetected.With(slog.String("path", at.String())))
	}

	f.busy[id] = true
	defer delete(f.busy, id)

	var (
		v   *Value
		err error
	)

	if n := f.tree.nodes[id]; n.leaf {
		v, err = f.leaf(n.value, at, id)
	} else {
		v, err = f.branch(n, at)
	}

	if err != nil {
		return nil, err
	}

	f.done[id] = v

	return v, nil
}

func (f *finalizer) branch(n node, at Path) (*Value, error) {
	array := n.hint == hintArray
	if len(n.children) > 0 {
		array = n.children[0].seg.Kind == SegmentIndex
	}

	if array {
		elems := make([]*Value, 0, len(n.children))

		for _, c := range n.children {
			v, err := f.value(c.id, at.Append(c.seg))
			if err != nil {
				return nil, err
			}

			elems = append(elems, v)
		}

		return ArrayValue(elems...), nil
	}

	members := make(map[string]*Value, len(n.children))

	for _, c := range n.children {
		v, err := f.value(c.id, at.Append(c.seg))
		if err != nil {
			return nil, err
		}

		members[c.seg.Key] = v
	}

	return ObjectValue(members), nil
}

// leaf finalizes raw value r stored in node slot.
func (f *finalizer) leaf(r Raw, at Path, slot int) (*Value, error) {
	switch r.Kind {
	case RawBool:
		return BoolValue(r.Bool), nil
	case RawInt:
		return IntValue(r.Int), nil
	case RawReal:
		return RealValue(r.Real), nil
	case RawStr:
		return StringValue(r.Str), nil
	case RawUnquoted:
		if r.Str == "null" {
			return NullValue(), nil
		}

		return StringValue(strings.TrimSpace(r.Str)), nil
	case RawNull, RawPending:
		return NullValue(), nil
	case RawEmptyObject:
		return ObjectValue(nil), nil
	case RawEmptyArray:
		return ArrayValue(), nil
	case RawError:
		return f.policy.bad(r.Err)
	case RawConcat:
		return f.concat(r.Items, at, slot)
	case RawSubstitution:
		return f.substitution(r, nil, at, slot)
	case RawIncluded, RawAppend:
		roots, core := unwrapIncluded(r)

		switch core.Kind {
		case RawSubstitution:
			return f.substitution(core, roots, at, slot)
		case RawConcat:
			items := make([]Raw, len(core.Items))
			for i, it := range core.Items {
				items[i] = rewrap(roots, it)
			}

			return f.concat(items, at, slot)
		}

		return f.leaf(core, at, slot)
	}

	return NullValue(), nil
}

// substitution resolves a reference left pending by the fold. Candidates
// are tried under each inclusion root first, then as written. A candidate
// that is the slot being resolved counts as missing.
func (f *finalizer) substitution(
	r Raw,
	roots []Path,
	at Path,
	slot int,
) (*Value, error) {
	for _, cand := range candidates(roots, r.Target) {
		id, ok := f.tree.find(cand)
		if !ok || id == slot {
			continue
		}

		f.cfg.logger.TraceContext(f.ctx, "forward reference",
			slog.String("path", at.String()),
			slog.String("target", cand.String()),
		)

		return f.value(id, cand)
	}

	if f.cfg.systemEnv {
		if s, ok := f.env[r.Target.envName()]; ok {
			f.cfg.logger.TraceContext(f.ctx, "environment fallback",
				slog.String("path", at.String()),
				slog.String("variable", r.Target.envName()),
			)

			return StringValue(s), nil
		}
	}

	if r.Optional && r.Fallback != nil {
		return f.leaf(*r.Fallback, at, slot)
	}

	return f.policy.bad(ErrKeyNotFound.With(
		slog.String("path", at.String()),
		slog.String("target", r.Target.String()),
	))
}

// concat joins the finalized items of a concatenation. Items that finalize
// to arrays or objects are combined as containers; otherwise the scalar
// renderings are joined, trimming the outer edges of unquoted text.
func (f *finalizer) concat(items []Raw, at Path, slot int) (*Value, error) {
	vals := make([]*Value, 0, len(items))
	container := false

	for i, it := range items {
		v, err := f.leaf(it, at, slot)
		if err != nil {
			return nil, err
		}

		if v.Kind == KindBad {
			continue
		}

		if v.Kind == KindString && isUnquoted(it) {
			s := it.unquotedText()

			switch {
			case i == 0 && i == len(items)-1:
				s = strings.TrimSpace(s)
			case i == 0:
				s = strings.TrimLeft(s, " \t\r\n")
			case i == len(items)-1:
				s = strings.TrimRight(s, " \t\r\n")
			}

			v = StringValue(s)
		}

		container = container || v.Kind == KindArray || v.Kind == KindObject
		vals = append(vals, v)
	}

	if container {
		return f.concatContainers(vals, at), nil
	}

	var sb strings.Builder

	for _, v := range vals {
		sb.WriteString(v.render())
	}

	return StringValue(sb.String()), nil
}

func (f *finalizer) concatContainers(vals []*Value, at Path) *Value {
	array := false
	for _, v := range vals {
		array = array || v.Kind == KindArray
	}

	if array {
		var elems []*Value

		for _, v := range vals {
			if v.Kind == KindArray {
				elems = append(elems, v.array...)
			} else if !v.blank() {
				f.dropped(at, v)
			}
		}

		return ArrayValue(elems...)
	}

	out := ObjectValue(nil)

	for _, v := range vals {
		if v.Kind == KindObject {
			out = out.merge(v)
		} else if !v.blank() {
			f.dropped(at, v)
		}
	}

	return out
}

func (f *finalizer) dropped(at Path, v *Value) {
	f.cfg.logger.TraceContext(f.ctx, "concat item dropped",
		slog.String("path", at.String()),
		slog.String("kind", v.Kind.String()),
	)
}

func isUnquoted(r Raw) bool {
	_, core := unwrapIncluded(r)

	return core.Kind == RawUnquoted && core.Str != "null"
}

func (r Raw) unquotedText() string {
	_, core := unwrapIncluded(r)

	return core.Str
}

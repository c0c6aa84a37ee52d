package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Nest(t *testing.T) {
	var s Stream

	s.Add(Path{UnquotedKey("x.y")}, Int(1))
	s.Add(Path{Key("z")}, Str("s"))

	out := s.Nest(Path{UnquotedKey("a.b")})
	require.Len(t, out, 2)

	assert.Equal(t, "a.b.x.y", out[0].Path.String())
	assert.Equal(t, "a.b.z", out[1].Path.String())
	assert.Equal(t, "x.y", s[0].Path.String())

	el := s.Element(3)
	assert.Equal(t, Path{Index(3), Key("x"), Key("y")}, el[0].Path)
}

func TestStream_AppendTo(t *testing.T) {
	var s Stream

	s.Add(Path{Key("k")}, Int(1))
	s.Add(nil, EmptyObject())

	out := s.AppendTo(Path{Key("arr")}, "item")
	require.Len(t, out, 2)

	assert.Equal(t, "arr.+.k", out[0].Path.String())
	assert.Equal(t, "arr.+", out[1].Path.String())

	for _, a := range out {
		require.Equal(t, RawAppend, a.Value.Kind)
		assert.Equal(t, "item", a.Value.ItemID)
	}

	assert.Equal(t, Path{Key("k")}, out[0].Value.OriginalPath)
	assert.Equal(t, Int(1), *out[0].Value.Inner)
	assert.Equal(t, []string{"item"}, appendIDs(out[0].Value))
}

func TestStream_IncludedRooted(t *testing.T) {
	var s Stream

	s.Add(Path{UnquotedKey("p.q")}, Subst(Path{Key("r")}))

	out := s.Included().Nest(Path{Key("outer")}).Rooted()
	require.Len(t, out, 1)

	v := out[0].Value
	require.Equal(t, RawIncluded, v.Kind)
	assert.True(t, v.Rooted)
	assert.Equal(t, Path{Key("p"), Key("q")}, v.OriginalPath)
	assert.Equal(t, Path{Key("outer")}, v.IncludeRoot)
	assert.True(t, v.pending())

	again := out.Nest(Path{Key("more")}).Rooted()
	assert.Equal(t, Path{Key("outer")}, again[0].Value.IncludeRoot)
}

func TestStream_Renewed(t *testing.T) {
	var el Stream

	el.Add(Path{Key("k")}, Int(1))
	el.Add(Path{Key("v")}, Int(2))

	var s Stream

	s.Append(el.AppendTo(Path{Key("a")}, "one"))
	s.Add(Path{Key("b")}, Concat(appended(Int(3), nil, "three"), Unquoted(" x")))

	out := s.Included().renewed()
	require.Len(t, out, len(s))

	first := appendIDs(out[0].Value)
	require.Len(t, first, 1)
	assert.NotEqual(t, "one", first[0])
	assert.Equal(t, first, appendIDs(out[1].Value), "one element keeps one id")

	inner := out[2].Value.Inner.Items[0]
	assert.NotEqual(t, "three", inner.ItemID)

	again := s.Included().renewed()
	assert.NotEqual(t, first, appendIDs(again[0].Value))
	assert.Equal(t, []string{"one"}, appendIDs(s[0].Value), "input unchanged")
}

func TestStream_EmptyWrappers(t *testing.T) {
	var s Stream

	s.Add(Path{Key("i")}, Raw{Kind: RawIncluded})
	s.Add(Path{Key("a")}, Raw{Kind: RawAppend, ItemID: "x"})
	s.Add(Path{Key("n")}, Raw{Kind: RawIncluded, Inner: &Raw{Kind: RawAppend}})

	assert.Equal(t, "included(null)", s[0].Value.String())
	assert.Equal(t, "append(null)", s[1].Value.String())
	assert.Equal(t, "error", ErrorRaw(nil).String())

	tree, err := Merge(t.Context(), s)
	require.NoError(t, err)

	v, err := Finalize(t.Context(), tree)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"i": nil, "a": nil, "n": nil}, v.Native())
}

func TestFromValue(t *testing.T) {
	v := load(t, "a { b = [1, {}] }\nc = {}")

	s := FromValue(v)

	tree, err := Merge(t.Context(), s)
	require.NoError(t, err)

	again, err := Finalize(t.Context(), tree, WithProcessEnv([]string{}))
	require.NoError(t, err)
	assert.Equal(t, v.Native(), again.Native())
}

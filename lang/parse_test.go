package lang

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Fields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		paths []string
		kinds []RawKind
	}{
		{
			name:  "simple",
			input: `a = 1`,
			paths: []string{"a"},
			kinds: []RawKind{RawInt},
		},
		{
			name:  "dotted key",
			input: `a.b.c : true`,
			paths: []string{"a.b.c"},
			kinds: []RawKind{RawBool},
		},
		{
			name:  "quoted key keeps dots",
			input: `"a.b" = x`,
			paths: []string{`"a.b"`},
			kinds: []RawKind{RawUnquoted},
		},
		{
			name:  "mixed key",
			input: `a."b.c".d = null`,
			paths: []string{`a."b.c".d`},
			kinds: []RawKind{RawNull},
		},
		{
			name:  "nested object",
			input: "a {\n  b = 1\n  c = \"two\"\n}",
			paths: []string{"a.b", "a.c"},
			kinds: []RawKind{RawInt, RawStr},
		},
		{
			name:  "empty object",
			input: `a {}`,
			paths: []string{"a"},
			kinds: []RawKind{RawEmptyObject},
		},
		{
			name:  "array",
			input: `a = [1, 2.5]`,
			paths: []string{"a", "a.0", "a.1"},
			kinds: []RawKind{RawEmptyArray, RawInt, RawReal},
		},
		{
			name:  "array of objects",
			input: `a = [{ x = 1 }, {}]`,
			paths: []string{"a", "a.0.x", "a.1"},
			kinds: []RawKind{RawEmptyArray, RawInt, RawEmptyObject},
		},
		{
			name:  "commas and comments",
			input: "# header\na = 1, b = 2 // trailing\n// between\nc = 3,",
			paths: []string{"a", "b", "c"},
			kinds: []RawKind{RawInt, RawInt, RawInt},
		},
		{
			name:  "json",
			input: `{"a": {"b": [true, null]}}`,
			paths: []string{"a.b", "a.b.0", "a.b.1"},
			kinds: []RawKind{RawEmptyArray, RawBool, RawNull},
		},
		{
			name:  "append",
			input: `a += 1`,
			paths: []string{"a.+"},
			kinds: []RawKind{RawAppend},
		},
		{
			name:  "substitution concatenated with object",
			input: `a = ${b} { c = 1 }`,
			paths: []string{"a", "a.c"},
			kinds: []RawKind{RawSubstitution, RawInt},
		},
		{
			name:  "substitution concatenated with array",
			input: `a = ${b} [1, 2]`,
			paths: []string{"a", "a.+", "a.+"},
			kinds: []RawKind{RawSubstitution, RawAppend, RawAppend},
		},
		{
			name:  "array concatenation",
			input: `a = [1] [2]`,
			paths: []string{"a", "a.0", "a.+"},
			kinds: []RawKind{RawEmptyArray, RawInt, RawAppend},
		},
		{
			name:  "crlf line endings",
			input: "a = 1\r\nb = x\r\n",
			paths: []string{"a", "b"},
			kinds: []RawKind{RawInt, RawUnquoted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(t.Context(), tt.input)
			require.NoError(t, err)
			require.Len(t, s, len(tt.paths))

			for i, a := range s {
				assert.Equal(t, tt.paths[i], a.Path.String(), "path %d", i)
				assert.Equal(t, tt.kinds[i], a.Value.Kind, "kind %d", i)
			}
		})
	}
}

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Raw
	}{
		{name: "int", input: `v = -42`, want: Int(-42)},
		{name: "real", input: `v = 1.5e3`, want: Real(1500)},
		{name: "exponent sign", input: `v = 2E+2`, want: Real(200)},
		{name: "false", input: `v = false`, want: Bool(false)},
		{name: "quoted number", input: `v = "42"`, want: Str("42")},
		{name: "unquoted", input: `v = /usr/local/bin`, want: Unquoted("/usr/local/bin")},
		{name: "escapes", input: `v = "tab\there A\"q\""`, want: Str("tab\there A\"q\"")},
		{name: "surrogate pair", input: `v = "\uD83D\uDE00"`, want: Str("\U0001F600")},
		{name: "triple quoted", input: `v = """raw "text" \n"""`, want: Str(`raw "text" \n`)},
		{name: "triple quoted trailing quotes", input: `v = """x"""""`, want: Str(`x""`)},
		{name: "trailing whitespace", input: "v = word   \n", want: Unquoted("word")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(t.Context(), tt.input)
			require.NoError(t, err)
			require.Len(t, s, 1)
			assert.Equal(t, tt.want, s[0].Value)
		})
	}
}

func TestParse_Concatenation(t *testing.T) {
	s, err := Parse(t.Context(), `v = foo  bar${x}"!"`)
	require.NoError(t, err)
	require.Len(t, s, 1)

	v := s[0].Value
	require.Equal(t, RawConcat, v.Kind)
	require.Len(t, v.Items, 5)

	assert.Equal(t, Unquoted("foo"), v.Items[0])
	assert.Equal(t, Unquoted("  "), v.Items[1])
	assert.Equal(t, Unquoted("bar"), v.Items[2])
	assert.Equal(t, RawSubstitution, v.Items[3].Kind)
	assert.Equal(t, Str("!"), v.Items[4])
}

func TestParse_Substitution(t *testing.T) {
	s, err := Parse(t.Context(), "a = ${b.c}\nd = ${?\"e.f\"}")
	require.NoError(t, err)
	require.Len(t, s, 2)

	assert.Equal(t, "b.c", s[0].Value.Target.String())
	assert.False(t, s[0].Value.Optional)

	assert.Equal(t, Path{Key("e.f")}, s[1].Value.Target)
	assert.True(t, s[1].Value.Optional)
}

func TestParse_AppendSharesItemID(t *testing.T) {
	s, err := Parse(t.Context(), "a += { x = 1, y = 2 }\na += 3")
	require.NoError(t, err)
	require.Len(t, s, 3)

	assert.Equal(t, "a.+.x", s[0].Path.String())
	assert.Equal(t, "a.+.y", s[1].Path.String())
	assert.Equal(t, s[0].Value.ItemID, s[1].Value.ItemID)
	assert.NotEqual(t, s[0].Value.ItemID, s[2].Value.ItemID)
	assert.Equal(t, Path{Key("x")}, s[0].Value.OriginalPath)
}

func TestParse_RootArray(t *testing.T) {
	s, err := Parse(t.Context(), `[1, two]`)
	require.NoError(t, err)
	require.Len(t, s, 3)

	assert.Empty(t, s[0].Path)
	assert.Equal(t, RawEmptyArray, s[0].Value.Kind)
	assert.Equal(t, "1", s[2].Path.String())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int64
	}{
		{name: "missing value", input: `a = `, line: 1},
		{name: "missing separator", input: `a b`, line: 1},
		{name: "unterminated string", input: `a = "abc`, line: 1},
		{name: "newline in string", input: "a = \"ab\nc\"", line: 1},
		{name: "unterminated array", input: "a = [1,\n2", line: 2},
		{name: "unterminated object", input: "a {\n b = 1\n", line: 3},
		{name: "stray brace", input: "a = 1\nb = }", line: 2},
		{name: "object with array", input: `a = { x = 1 } [1]`, line: 1},
		{name: "scalar with object", input: `a = 1 { x = 1 }`, line: 1},
		{name: "substitution after array", input: `a = [1] ${b}`, line: 1},
		{name: "bad escape", input: `a = "\q"`, line: 1},
		{name: "bad substitution", input: `a = ${b..c}`, line: 1},
		{name: "forbidden character", input: `a = b!`, line: 1},
		{name: "empty key segment", input: `a..b = 1`, line: 1},
		{name: "trailing garbage", input: "{ a = 1 }\n}", line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(t.Context(), tt.input)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrParseFailed)

			var perr *Error
			require.True(t, errors.As(err, &perr))

			line, ok := perr.Attr("line")
			require.True(t, ok)
			assert.Equal(t, tt.line, line.Int64())

			_, ok = perr.Attr("column")
			assert.True(t, ok)
		})
	}
}

func TestParse_IncludeNotAllowedFromString(t *testing.T) {
	s, err := Parse(t.Context(), `include "other.conf"`)
	require.NoError(t, err)
	require.Len(t, s, 1)

	assert.Equal(t, Path{Key("other.conf")}, s[0].Path)
	require.Equal(t, RawError, s[0].Value.Kind)
	assert.ErrorIs(t, s[0].Value.Err, ErrIncludeNotAllowedFromStr)

	_, err = Parse(t.Context(), `include "other.conf"`, WithStrict(true))
	assert.ErrorIs(t, err, ErrIncludeNotAllowedFromStr)
}

func TestParse_IncludeKeyIsAField(t *testing.T) {
	s, err := Parse(t.Context(), "include = 1\ninclude.x = 2")
	require.NoError(t, err)
	require.Len(t, s, 2)

	assert.Equal(t, "include", s[0].Path.String())
	assert.Equal(t, "include.x", s[1].Path.String())
}

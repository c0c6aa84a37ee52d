package lang

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Navigation(t *testing.T) {
	v := load(t, `a { b = [x, { c = 1 }] }`)

	c, ok := v.Lookup("a.b.1.c").AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(1), c)

	assert.Equal(t, []string{"a"}, v.Keys())
	assert.Equal(t, 2, v.Lookup("a.b").Len())

	s, ok := v.Get("a").Get("b").Index(0).AsString()
	require.True(t, ok)
	assert.Equal(t, "x", s)

	assert.ErrorIs(t, v.Lookup("a.nope").Err(), ErrMissingKey)
	assert.ErrorIs(t, v.Lookup("a.b.x").Err(), ErrInvalidKey)
	assert.ErrorIs(t, v.Lookup("a.b.5").Err(), ErrMissingKey)
	assert.ErrorIs(t, v.Lookup("a.b.0.z").Err(), ErrInvalidKey)
	assert.ErrorIs(t, v.Lookup("a..b").Err(), ErrInvalidKey)
	assert.Nil(t, v.Err())
}

func TestValue_IndexOnNumericObject(t *testing.T) {
	v := ObjectValue(map[string]*Value{
		"10":   StringValue("c"),
		"2":    StringValue("b"),
		"0":    StringValue("a"),
		"name": StringValue("skip"),
	})

	for i, want := range []string{"a", "b", "c"} {
		s, ok := v.Index(i).AsString()
		require.True(t, ok)
		assert.Equal(t, want, s)
	}

	assert.ErrorIs(t, v.Index(3).Err(), ErrInvalidKey)
	assert.ErrorIs(t, StringValue("s").Index(0).Err(), ErrInvalidKey)
}

func TestValue_Casts(t *testing.T) {
	b, ok := StringValue("yes").AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	b, ok = StringValue("off").AsBool()
	assert.True(t, ok)
	assert.False(t, b)

	_, ok = StringValue("maybe").AsBool()
	assert.False(t, ok)

	i, ok := StringValue("42").AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(42), i)

	_, ok = StringValue("4x").AsInt()
	assert.False(t, ok)

	f, ok := IntValue(3).AsFloat()
	assert.True(t, ok)
	assert.InDelta(t, 3.0, f, 0)

	s, ok := RealValue(2.5).AsString()
	assert.True(t, ok)
	assert.Equal(t, "2.5", s)

	_, ok = ArrayValue().AsString()
	assert.False(t, ok)
}

func TestValue_AsBytes(t *testing.T) {
	tests := []struct {
		in   *Value
		want float64
	}{
		{StringValue("512KiB"), 512 * 1024},
		{StringValue("1.5 GB"), 1.5e9},
		{StringValue("10"), 10},
		{StringValue("2 bytes"), 2},
		{StringValue("1M"), 1 << 20},
		{StringValue("3 kB"), 3000},
		{IntValue(100), 100},
	}

	for _, tt := range tests {
		got, ok := tt.in.AsBytes()
		require.True(t, ok, tt.in.String())
		assert.InDelta(t, tt.want, got, 1e-6, tt.in.String())
	}

	_, ok := StringValue("12 parsecs").AsBytes()
	assert.False(t, ok)

	_, ok = StringValue("KiB").AsBytes()
	assert.False(t, ok)
}

func TestValue_AsDuration(t *testing.T) {
	tests := []struct {
		in   *Value
		want time.Duration
	}{
		{StringValue("10 seconds"), 10 * time.Second},
		{StringValue("250"), 250 * time.Millisecond},
		{StringValue("1.5h"), 90 * time.Minute},
		{StringValue("2d"), 48 * time.Hour},
		{StringValue("100 ns"), 100 * time.Nanosecond},
		{StringValue("3 m"), 3 * time.Minute},
		{IntValue(20), 20 * time.Millisecond},
	}

	for _, tt := range tests {
		got, ok := tt.in.AsDuration()
		require.True(t, ok, tt.in.String())
		assert.Equal(t, tt.want, got, tt.in.String())
	}

	_, ok := StringValue("soon").AsDuration()
	assert.False(t, ok)
}

func TestValue_Decode(t *testing.T) {
	type server struct {
		Host    string        `hocon:"host"`
		Tags    []string      `hocon:"tags"`
		Port    int           `hocon:"port"`
		Timeout time.Duration `hocon:"timeout"`
		Limit   ByteSize      `hocon:"limit"`
		Debug   bool          `hocon:"debug"`
	}

	v := load(t, `
		server {
			host = localhost
			port = "8080"
			timeout = 30 seconds
			limit = 1KiB
			debug = true
			tags = [a, b]
		}
	`)

	var got server
	require.NoError(t, v.Get("server").Decode(&got))

	assert.Equal(t, server{
		Host:    "localhost",
		Tags:    []string{"a", "b"},
		Port:    8080,
		Timeout: 30 * time.Second,
		Limit:   1024,
		Debug:   true,
	}, got)

	var m map[string]any
	require.NoError(t, v.Decode(&m))
	assert.Contains(t, m, "server")

	bad := load(t, `timeout = soon`)

	var cfg struct {
		Timeout time.Duration `hocon:"timeout"`
	}
	require.ErrorIs(t, bad.Decode(&cfg), ErrDeserialization)

	require.ErrorIs(t, BadValue(ErrKeyNotFound).Decode(&cfg), ErrDeserialization)
}

func TestValue_Marshal(t *testing.T) {
	v := load(t, "b = [1, x, null]\na { q = true, p = 1.5 }")

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"p": 1.5, "q": true}, "b": [1, "x", null]}`, string(b))

	assert.Equal(t, string(b), v.String())

	y, err := v.ToYAML()
	require.NoError(t, err)
	assert.Equal(t, "a:\n  p: 1.5\n  q: true\nb:\n- 1\n- x\n- null\n", string(y))
}

func TestValue_NativeOfBadValue(t *testing.T) {
	v := BadValue(ErrKeyNotFound)
	assert.Equal(t, ErrKeyNotFound.Error(), v.Native())
	assert.Equal(t, KindBad, v.Kind)
	assert.Equal(t, "bad", v.Kind.String())
}

package lang

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHOCON(t *testing.T) {
	v := load(t, `
		b { y = "a b", x = 1.0 }
		a = [1, true]
		"k:1" = null
		e {}
	`)

	var buf bytes.Buffer
	require.NoError(t, v.WriteHOCON(&buf, 2))

	assert.Equal(t, `a = [
  1,
  true
]
b {
  x = 1.0
  y = "a b"
}
e {}
"k:1" = null
`, buf.String())

	back := load(t, buf.String())
	assert.Equal(t, v.Native(), back.Native())
}

func TestWriteHOCON_Scalar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, StringValue("say \"hi\"").WriteHOCON(&buf, 4))
	assert.Equal(t, `"say \"hi\""`+"\n", buf.String())
}

func TestWriteHOCON_Bad(t *testing.T) {
	v := ObjectValue(map[string]*Value{
		"x": BadValue(ErrKeyNotFound.With()),
	})

	var buf bytes.Buffer
	require.NoError(t, v.WriteHOCON(&buf, 2))
	assert.True(t, strings.HasPrefix(buf.String(), "x = null # "), buf.String())
	assert.NotContains(t, strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestWriteProperties(t *testing.T) {
	v := load(t, `a { b = 1, c = [x, null], d {} }, z = "p q"`)

	var buf bytes.Buffer
	require.NoError(t, v.WriteProperties(&buf))

	assert.Equal(t, "a.b = 1\na.c.0 = x\na.c.1 = \nz = p q\n", buf.String())
}

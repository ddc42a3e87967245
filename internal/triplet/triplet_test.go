package triplet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMatrix(t *testing.T) {
	in := `% comment
1 1 2.5

1 3 -1
# another comment
2 2 4
3 3 0
`
	m, err := ReadMatrix(strings.NewReader(in), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Rows)
	assert.Equal(t, 3, m.Cols)
	assert.Equal(t, []Entry{
		{0, 0, 2.5},
		{0, 2, -1},
		{1, 1, 4},
		{2, 2, 0},
	}, m.Entries)
}

func TestReadMatrixErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
		err  error
	}{
		{"too few fields", "0 0 1\n1 1\n", 2, ErrMalformed},
		{"too many fields", "0 0 1 2\n", 1, ErrMalformed},
		{"bad value", "0 0 x\n", 1, ErrMalformed},
		{"bad index", "a 0 1\n", 1, ErrMalformed},
		{"below offset", "0 1 1\n", 1, ErrNegativeIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset := 0
			if tt.err == ErrNegativeIndex {
				offset = 1
			}
			_, err := ReadMatrix(strings.NewReader(tt.in), offset)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestReadEmpty(t *testing.T) {
	_, err := ReadMatrix(strings.NewReader("% nothing\n"), 0)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ReadVector(strings.NewReader(""), 0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReadVector(t *testing.T) {
	v, err := ReadVector(strings.NewReader("0 1\n2 3.5\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len)
	assert.Equal(t, []VectorEntry{{0, 1}, {2, 3.5}}, v.Entries)

	_, err = ReadVector(strings.NewReader("0 1 2\n"), 0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 1, 64)
	require.NoError(t, w.WriteEntry(0, 1, 0.1))
	require.NoError(t, w.WriteEntry(1, 0, -2))
	require.NoError(t, w.Flush())
	assert.Equal(t, "1 2 0.1\n2 1 -2\n", buf.String())

	m, err := ReadMatrix(&buf, 1)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{0, 1, 0.1}, {1, 0, -2}}, m.Entries)

	buf.Reset()
	w = NewWriter(&buf, 0, 32)
	require.NoError(t, w.WriteVectorEntry(4, float64(float32(0.1))))
	require.NoError(t, w.Flush())
	assert.Equal(t, "4 0.1\n", buf.String())
}

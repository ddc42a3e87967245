package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPath(t *testing.T) {
	assert.Equal(t, "zstd", ForPath("a.dat.zst").Name())
	assert.Equal(t, "zstd", ForPath("dir/A.ZSTD").Name())
	assert.Equal(t, "lz4", ForPath("b.lz4").Name())
	assert.Equal(t, "none", ForPath("b.dat").Name())
	assert.Equal(t, "none", ForPath("noext").Name())
}

func TestByName(t *testing.T) {
	for _, name := range []string{"none", "zstd", "lz4"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("brotli")
	assert.False(t, ok)
}

func TestStreamRoundTrip(t *testing.T) {
	payload := strings.Repeat("0 0 1.5\n1 2 -3.25\n", 200)

	for _, c := range []Codec{None, Zstd, LZ4} {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := c.NewWriter(&buf)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			if c != None {
				assert.Less(t, buf.Len(), len(payload))
			}

			r, err := c.NewReader(&buf)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

package compression

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"lz4", "none"}, Available())
	assert.True(t, IsAvailable("lz4"))
	assert.False(t, IsAvailable("zstd"))

	c, err := Get("lz4")
	require.NoError(t, err)
	assert.Equal(t, "lz4", c.Name())

	_, err = Get("zstd")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	random := make([]byte, 4096)
	_, err := rand.Read(random)
	require.NoError(t, err)

	inputs := map[string][]byte{
		"Empty":        {},
		"Short":        []byte("v"),
		"Repetitive":   bytes.Repeat([]byte("commitment "), 500),
		"Random":       random,
		"SingleZeroes": make([]byte, 1),
	}

	for _, name := range Available() {
		c, err := Get(name)
		require.NoError(t, err)

		for label, in := range inputs {
			t.Run(name+"/"+label, func(t *testing.T) {
				enc, err := c.Compress(in)
				require.NoError(t, err)

				dec, err := c.Decompress(enc)
				require.NoError(t, err)
				assert.Equal(t, len(in), len(dec))
				assert.True(t, bytes.Equal(in, dec))
			})
		}
	}
}

func TestLZ4ShrinksRepetitiveData(t *testing.T) {
	in := bytes.Repeat([]byte("abcd"), 1024)
	enc, err := LZ4Compressor{}.Compress(in)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(in)/4)
}

func TestLZ4FramingNeverEmpty(t *testing.T) {
	enc, err := LZ4Compressor{}.Compress(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, modeStored}, enc)
}

func TestLZ4RejectsCorruptInput(t *testing.T) {
	good, err := LZ4Compressor{}.Compress(bytes.Repeat([]byte("xy"), 200))
	require.NoError(t, err)

	tests := map[string][]byte{
		"Empty":        nil,
		"HeaderOnly":   {0x05},
		"UnknownMode":  {0x01, 0x09, 0x00},
		"StoredLength": {0x03, modeStored, 'a'},
		"Truncated":    good[:len(good)-3],
		"Huge":         {0xff, 0xff, 0xff, 0xff, 0x7f, modeLZ4},
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LZ4Compressor{}.Decompress(data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

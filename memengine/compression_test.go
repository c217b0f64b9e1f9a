package memengine

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressBlock(t *testing.T) {
	compressible := bytes.Repeat([]byte("duckvec "), 512)
	random := make([]byte, 4096)
	rand.New(rand.NewSource(1)).Read(random)

	for _, ct := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(ct.String(), func(t *testing.T) {
			for name, data := range map[string][]byte{"compressible": compressible, "random": random} {
				block, err := compressBlock(data, ct)
				require.NoError(t, err)

				out, err := decompressBlock(block, ct)
				require.NoError(t, err)
				assert.Equal(t, data, out, name)
			}
		})
	}

	t.Run("ShrinksRepetitiveData", func(t *testing.T) {
		block, err := compressBlock(compressible, CompressionZSTD)
		require.NoError(t, err)
		assert.Less(t, len(block), len(compressible)/4)
	})

	t.Run("StoresIncompressibleData", func(t *testing.T) {
		block, err := compressBlock(random, CompressionLZ4)
		require.NoError(t, err)
		assert.Len(t, block, blockHeaderSize+len(random))
	})

	t.Run("Empty", func(t *testing.T) {
		block, err := compressBlock(nil, CompressionZSTD)
		require.NoError(t, err)
		assert.Nil(t, block)

		out, err := decompressBlock(nil, CompressionZSTD)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("Truncated", func(t *testing.T) {
		block, err := compressBlock(compressible, CompressionLZ4)
		require.NoError(t, err)

		_, err = decompressBlock(block[:4], CompressionLZ4)
		require.Error(t, err)
		_, err = decompressBlock(block[:len(block)-1], CompressionLZ4)
		require.Error(t, err)
	})
}

func TestParseCompression(t *testing.T) {
	for in, want := range map[string]Compression{"": CompressionNone, "none": CompressionNone, "lz4": CompressionLZ4, "zstd": CompressionZSTD} {
		got, err := ParseCompression(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCompression("snappy")
	require.Error(t, err)
}

package duckvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMappings(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		tests := []struct {
			name    string
			mapping ColumnMapping
			wantErr error
		}{
			{"Names", MapNames("a", "b"), nil},
			{"Ordinals", MapOrdinals(0, 1), nil},
			{"NameToOrdinal", MapNameToOrdinal("a", 0), nil},
			{"OrdinalToName", MapOrdinalToName(0, "a"), nil},
			{"NegativeSource", MapOrdinals(-2, 0), ErrOutOfRange},
			{"NegativeDestination", MapOrdinals(0, -5), ErrOutOfRange},
			{"MissingSource", ColumnMapping{SourceOrdinal: -1, DestinationName: "a", DestinationOrdinal: -1}, ErrInvalidOperation},
			{"MissingDestination", ColumnMapping{SourceName: "a", SourceOrdinal: -1, DestinationOrdinal: -1}, ErrInvalidOperation},
			{"BothLocators", ColumnMapping{SourceName: "a", SourceOrdinal: 0, DestinationOrdinal: 0}, ErrInvalidOperation},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var c ColumnMappings
				err := c.Add(tt.mapping)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
					assert.Equal(t, 0, c.Len())
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.mapping, c.At(0))
			})
		}
	})

	t.Run("MixedScheme", func(t *testing.T) {
		var c ColumnMappings
		require.NoError(t, c.Add(MapNames("a", "x")))
		require.NoError(t, c.Add(MapOrdinals(1, 1)))
		require.ErrorIs(t, c.Validate(), ErrMixedMappingScheme)

		_, err := c.Resolve([]string{"a", "b"}, []string{"x", "y"})
		require.ErrorIs(t, err, ErrMixedMappingScheme)

		c.Clear()
		require.NoError(t, c.Validate())
	})

	t.Run("DefaultIdentity", func(t *testing.T) {
		var c ColumnMappings
		got, err := c.Resolve([]string{"a", "b", "c"}, []string{"x", "y"})
		require.NoError(t, err)
		assert.Equal(t, []ResolvedMapping{{0, 0}, {1, 1}}, got)
	})

	t.Run("Resolve", func(t *testing.T) {
		var c ColumnMappings
		require.NoError(t, c.Add(MapNames("b", "x")))
		require.NoError(t, c.Add(MapNames("a", "y")))
		got, err := c.Resolve([]string{"a", "b"}, []string{"x", "y"})
		require.NoError(t, err)
		assert.Equal(t, []ResolvedMapping{{Source: 1, Destination: 0}, {Source: 0, Destination: 1}}, got)

		require.NoError(t, c.Add(MapNames("missing", "x")))
		_, err = c.Resolve([]string{"a", "b"}, []string{"x", "y"})
		require.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("OrdinalBounds", func(t *testing.T) {
		var c ColumnMappings
		require.NoError(t, c.Add(MapOrdinals(0, 2)))
		_, err := c.Resolve([]string{"a"}, []string{"x", "y"})
		require.ErrorIs(t, err, ErrOutOfRange)
	})
}

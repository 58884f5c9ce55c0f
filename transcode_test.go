package colbind_test

import (
	"testing"

	"github.com/colbind/colbind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestTranscoder(t *testing.T) {
	t.Parallel()

	t.Run("nil transcoder is identity", func(t *testing.T) {
		t.Parallel()
		var tc *colbind.Transcoder
		got, err := tc.Decode("héllo")
		require.NoError(t, err)
		assert.Equal(t, "héllo", got)
	})

	t.Run("latin-1 round trip", func(t *testing.T) {
		t.Parallel()
		tc := colbind.NewTranscoder(charmap.ISO8859_1)

		wire, err := tc.Encode("café")
		require.NoError(t, err)
		assert.Len(t, wire, 4) // é is a single Latin-1 byte on the wire

		utf8, err := tc.Decode(wire)
		require.NoError(t, err)
		assert.Equal(t, "café", utf8)
	})
}

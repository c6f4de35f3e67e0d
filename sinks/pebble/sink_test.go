package pebble

import (
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/require"
)

func TestSinkWriteAppendsLinesInOrder(t *testing.T) {
	sink, err := Open(t.TempDir())
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write("2,5,100.00"))
	require.NoError(t, sink.Write("3,11"))
	require.NoError(t, sink.Write("3,10"))

	iter, err := sink.db.NewIter(&pebble.IterOptions{})
	require.NoError(t, err)
	defer iter.Close()

	var lines []string
	for iter.First(); iter.Valid(); iter.Next() {
		lines = append(lines, string(iter.Value()))
	}
	require.Equal(t, []string{"2,5,100.00", "3,11", "3,10"}, lines)
}

func TestSinkKeysAreMonotonicBigEndianSequence(t *testing.T) {
	sink, err := Open(t.TempDir())
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write("a"))
	require.NoError(t, sink.Write("b"))
	require.Equal(t, uint64(2), sink.seq)

	iter, err := sink.db.NewIter(&pebble.IterOptions{})
	require.NoError(t, err)
	defer iter.Close()

	iter.First()
	require.Equal(t, uint64(0), binary.BigEndian.Uint64(iter.Key()))
	iter.Next()
	require.Equal(t, uint64(1), binary.BigEndian.Uint64(iter.Key()))
}

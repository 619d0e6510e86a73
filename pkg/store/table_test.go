package store

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diskRecordCount reads the declared count straight from the header
// bytes, bypassing the session.
func diskRecordCount(t *testing.T, path string) uint32 {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return binary.LittleEndian.Uint32(raw[offRecordCount:])
}

func TestAppendFetchScenario(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())

	require.NoError(t, table.Append(1, "Alice", true))
	require.NoError(t, table.Append(2, "Bob", false))
	assert.Equal(t, 2, table.RecordCount())

	row, ok, err := table.Fetch(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Row{"1", "Alice", true}, row)

	row, ok, err = table.Fetch(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Row{"2", "Bob", false}, row)

	require.NoError(t, table.SetDeleted(0, true))

	_, ok, err = table.Fetch(0)
	require.NoError(t, err)
	assert.False(t, ok, "deleted row reads as no row")
	assert.Equal(t, 2, table.RecordCount(), "delete does not change the count")
}

func TestAppendDefersHeaderCount(t *testing.T) {
	table, path := newTestTable(t, DefaultOptions())

	require.NoError(t, table.Append(1, "Alice", true))
	require.NoError(t, table.Append(2, "Bob", false))
	require.NoError(t, table.Append(3, "Carol", true))

	assert.Equal(t, 3, table.RecordCount(), "in-memory count tracks every append")
	assert.Equal(t, uint32(0), diskRecordCount(t, path), "header count untouched before flush")

	require.NoError(t, table.Flush())
	assert.Equal(t, uint32(3), diskRecordCount(t, path))
}

func TestCloseFlushesCount(t *testing.T) {
	table, path := newTestTable(t, DefaultOptions())
	require.NoError(t, table.Append(1, "Alice", true))
	require.NoError(t, table.Close())

	assert.Equal(t, uint32(1), diskRecordCount(t, path))

	reopened, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 1, reopened.RecordCount())
}

func TestAppendRowsCountsPartialBatches(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())
	rows := [][]any{
		{1, "Alice", true},
		{2, "Bob", false},
		{3, "Carol", true},
	}
	require.NoError(t, table.AppendRows(rows))
	assert.Equal(t, 3, table.RecordCount())
}

func TestAppendNamed(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())

	require.NoError(t, table.AppendNamed(map[string]any{
		"NAME": "Alice",
		"ID":   1,
	}))

	row, ok, err := table.FetchNamed(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", row["ID"])
	assert.Equal(t, "Alice", row["NAME"])
	assert.Equal(t, false, row["ACTIVE"], "absent logical encodes false")

	err = table.AppendNamed(map[string]any{"NOSUCH": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "NOSUCH"`)
}

func TestFetchNoRowSignals(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())
	require.NoError(t, table.Append(1, "Alice", true))

	t.Run("negative index", func(t *testing.T) {
		_, ok, err := table.Fetch(-1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("past the end", func(t *testing.T) {
		_, ok, err := table.Fetch(1)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDeleteUndeleteRestoresValues(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())
	require.NoError(t, table.Append(7, "Grace", true))

	require.NoError(t, table.SetDeleted(0, true))
	deleted, err := table.Deleted(0)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok, err := table.Fetch(0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, table.SetDeleted(0, false))
	row, ok, err := table.Fetch(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Row{"7", "Grace", true}, row, "flag mutation never touches field bytes")
}

func TestSetDeletedRange(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())
	require.NoError(t, table.Append(1, "Alice", true))

	assert.ErrorIs(t, table.SetDeleted(-1, true), ErrRange)
	assert.ErrorIs(t, table.SetDeleted(1, true), ErrRange)

	_, err := table.Deleted(5)
	assert.ErrorIs(t, err, ErrRange)
}

func TestCacheTransparency(t *testing.T) {
	// Identical fetch results for every window size, including the
	// cache-disabled case.
	seed := func(t *testing.T, opts Options) *Table {
		table, _ := newTestTable(t, opts)
		for i := 0; i < 17; i++ {
			require.NoError(t, table.Append(i, "row", i%2 == 0))
		}
		require.NoError(t, table.SetDeleted(4, true))
		require.NoError(t, table.SetDeleted(11, true))
		return table
	}

	opts := DefaultOptions()
	opts.WindowSize = 0
	reference := seed(t, opts)

	for _, window := range []int{1, 3, 100} {
		opts := DefaultOptions()
		opts.WindowSize = window
		table := seed(t, opts)

		for i := -1; i <= 17; i++ {
			wantRow, wantOK, err := reference.Fetch(i)
			require.NoError(t, err)
			gotRow, gotOK, err := table.Fetch(i)
			require.NoError(t, err)
			assert.Equal(t, wantOK, gotOK, "window %d row %d", window, i)
			assert.Equal(t, wantRow, gotRow, "window %d row %d", window, i)
		}

		// Backwards sweep crosses window boundaries the other way.
		for i := 16; i >= 0; i-- {
			wantRow, wantOK, _ := reference.Fetch(i)
			gotRow, gotOK, err := table.Fetch(i)
			require.NoError(t, err)
			assert.Equal(t, wantOK, gotOK)
			assert.Equal(t, wantRow, gotRow)
		}
	}
}

func TestCacheInvalidationOnMutation(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())
	for i := 0; i < 5; i++ {
		require.NoError(t, table.Append(i, "row", true))
	}

	// Prime the window.
	_, ok, err := table.Fetch(2)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, table.SetDeleted(2, true))
	_, ok, err = table.Fetch(2)
	require.NoError(t, err)
	assert.False(t, ok, "delete must not serve the stale cached row")

	require.NoError(t, table.Append(5, "new", false))
	row, ok, err := table.Fetch(5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Row{"5", "new", false}, row, "append must be visible immediately")
}

func TestRangeStreamsLiveRows(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())
	for i := 0; i < 6; i++ {
		require.NoError(t, table.Append(i, "row", true))
	}
	require.NoError(t, table.SetDeleted(3, true))

	var indexes []int
	err := table.Range(0, table.RecordCount(), func(i int, row Row) error {
		indexes = append(indexes, i)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 4, 5}, indexes, "tombstones skipped")

	assert.ErrorIs(t, table.Range(-1, 2, nil), ErrRange)
	assert.ErrorIs(t, table.Range(0, 7, nil), ErrRange)
	assert.ErrorIs(t, table.Range(4, 2, nil), ErrRange)
}

func TestStats(t *testing.T) {
	table, _ := newTestTable(t, DefaultOptions())
	for i := 0; i < 4; i++ {
		require.NoError(t, table.Append(i, "row", true))
	}
	require.NoError(t, table.SetDeleted(1, true))

	stats, err := table.Stats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 3, stats.Live)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, table.HeaderSize(), stats.HeaderSize)
	assert.Equal(t, table.RecordSize(), stats.RecordSize)
	assert.Equal(t, int64(table.HeaderSize()+4*table.RecordSize()), stats.FileSize)
}

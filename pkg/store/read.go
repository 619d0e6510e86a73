package store

import (
	"fmt"
	"io"
)

// rowCache holds the current read-ahead window: decoded rows for the
// half-open index range [start, end). Tombstoned slots are nil. A
// zero-width window means no rows are cached.
type rowCache struct {
	start int
	end   int
	rows  []Row
}

func (c *rowCache) contains(i int) bool {
	return i >= c.start && i < c.end
}

func (c *rowCache) clear() {
	c.start, c.end, c.rows = 0, 0, nil
}

// Fetch returns row i, or ok=false with no error when there is no row
// to return: the index is outside [0, count) or the record is
// tombstoned. Callers distinguish "no row" from a row whose fields
// happen to be empty. Cached hits perform no I/O; misses replace the
// window with up to WindowSize rows starting at i.
func (t *Table) Fetch(i int) (Row, bool, error) {
	if i < 0 || i >= t.RecordCount() {
		return nil, false, nil
	}

	if t.opts.WindowSize <= 0 {
		row, err := t.readRow(i)
		if err != nil {
			return nil, false, err
		}
		return row, row != nil, nil
	}

	if !t.cache.contains(i) {
		if err := t.fillWindow(i); err != nil {
			return nil, false, err
		}
	}
	row := t.cache.rows[i-t.cache.start]
	return row, row != nil, nil
}

// FetchNamed returns row i keyed by field name.
func (t *Table) FetchNamed(i int) (map[string]any, bool, error) {
	row, ok, err := t.Fetch(i)
	if err != nil || !ok {
		return nil, ok, err
	}
	named := make(map[string]any, len(t.fields))
	for j, f := range t.fields {
		named[f.Name] = row[j]
	}
	return named, true, nil
}

// Deleted reports row i's delete flag without decoding the record.
func (t *Table) Deleted(i int) (bool, error) {
	if i < 0 || i >= t.RecordCount() {
		return false, fmt.Errorf("%w: %d not in [0, %d)", ErrRange, i, t.RecordCount())
	}
	var flag [1]byte
	if _, err := t.file.ReadAt(flag[:], t.recordOffset(i)); err != nil {
		return false, fmt.Errorf("read delete flag: %w", err)
	}
	return flag[0] != ' ', nil
}

// Range streams the live rows of the half-open index range [lo, hi)
// to fn, bypassing the row cache in both directions: it reads past
// the window without consulting it and leaves it untouched.
// Tombstoned rows are skipped. fn returning an error stops the scan.
func (t *Table) Range(lo, hi int, fn func(i int, row Row) error) error {
	if lo < 0 || hi > t.RecordCount() || lo > hi {
		return fmt.Errorf("%w: [%d, %d) not within [0, %d)", ErrRange, lo, hi, t.RecordCount())
	}
	for i := lo; i < hi; i++ {
		row, err := t.readRow(i)
		if err != nil {
			return err
		}
		if row == nil {
			continue
		}
		if err := fn(i, row); err != nil {
			return err
		}
	}
	return nil
}

// readRow reads and decodes a single record. Tombstoned rows come
// back as a nil Row with no error.
func (t *Table) readRow(i int) (Row, error) {
	buf := make([]byte, t.hdr.recordSize)
	if _, err := t.file.ReadAt(buf, t.recordOffset(i)); err != nil {
		return nil, fmt.Errorf("read record %d: %w", i, err)
	}
	deleted, values, err := t.codec.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", i, err)
	}
	if deleted {
		return nil, nil
	}
	return Row(values), nil
}

// fillWindow replaces the cache with up to WindowSize decoded rows
// starting at lo, clamped to the record count, using one batched
// read.
func (t *Table) fillWindow(lo int) error {
	n := t.opts.WindowSize
	if lo+n > t.RecordCount() {
		n = t.RecordCount() - lo
	}

	stride := int(t.hdr.recordSize)
	buf := make([]byte, n*stride)
	read, err := t.file.ReadAt(buf, t.recordOffset(lo))
	if err != nil && err != io.EOF {
		return fmt.Errorf("read rows %d..%d: %w", lo, lo+n, err)
	}
	if read < len(buf) {
		// Declared count runs past the physical file; treat only the
		// complete records as readable.
		n = read / stride
		if n == 0 {
			return fmt.Errorf("read rows at %d: %w", lo, io.ErrUnexpectedEOF)
		}
	}

	rows := make([]Row, n)
	for j := 0; j < n; j++ {
		deleted, values, derr := t.codec.Decode(buf[j*stride : (j+1)*stride])
		if derr != nil {
			return fmt.Errorf("record %d: %w", lo+j, derr)
		}
		if !deleted {
			rows[j] = Row(values)
		}
	}
	t.cache = rowCache{start: lo, end: lo + n, rows: rows}
	return nil
}

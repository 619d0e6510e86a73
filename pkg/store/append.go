package store

import (
	"fmt"
	"io"
	"os"
)

// Append encodes one row of ordered values and writes it at the end
// of the file. The in-memory record count is incremented immediately;
// the header's count bytes stay stale until Flush or Close.
func (t *Table) Append(values ...any) error {
	return t.AppendRows([][]any{values})
}

// AppendNamed appends one row of values keyed by field name. Fields
// absent from the map are encoded blank; names outside the schema are
// rejected.
func (t *Table) AppendNamed(values map[string]any) error {
	row := make([]any, len(t.fields))
	matched := 0
	for i, f := range t.fields {
		if v, ok := values[f.Name]; ok {
			row[i] = v
			matched++
		}
	}
	if matched != len(values) {
		for name := range values {
			if !t.hasField(name) {
				return fmt.Errorf("append: unknown field %q", name)
			}
		}
	}
	return t.AppendRows([][]any{row})
}

// AppendRows writes rows sequentially under a single handle-mode
// transition. The count is incremented once per row actually written,
// so a mid-batch failure leaves the session counting exactly the rows
// that made it to disk. The row cache is cleared in either case.
func (t *Table) AppendRows(rows [][]any) error {
	encoded := make([][]byte, len(rows))
	for i, values := range rows {
		buf, err := t.codec.Encode(false, values)
		if err != nil {
			return err
		}
		encoded[i] = buf
	}

	defer t.cache.clear()
	return t.withWritable(func(w *os.File) error {
		if _, err := w.Seek(0, io.SeekEnd); err != nil {
			return fmt.Errorf("seek end: %w", err)
		}
		for i, buf := range encoded {
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("append record %d: %w", i, err)
			}
			t.hdr.recordCount++
			t.dirty = true
		}
		t.log.WithField("rows", len(rows)).Debug("rows appended")
		return nil
	})
}

func (t *Table) hasField(name string) bool {
	for _, f := range t.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

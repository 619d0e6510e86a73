package store

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/halvard/dbf3/pkg/codec"
)

// Table is one open session against a dBASE III file. It owns the
// file handle, the parsed schema, and the session metadata; all reads
// and mutations go through its methods so the layout invariants stay
// enforced in one place.
//
// The handle is kept read-only between operations. Appends, delete
// flag mutations, and Flush briefly reopen it read-write and restore
// the read-only handle afterwards.
//
// Appends update the record count in memory only. The on-disk count
// is persisted by Flush (or Close, which flushes first); a session
// that appends and never flushes leaves the header undercounting the
// true row count. That deferral is the documented caller contract,
// not an oversight.
type Table struct {
	path   string
	file   *os.File
	opts   Options
	log    logrus.FieldLogger
	hdr    *header
	fields []codec.FieldDescriptor
	codec  *codec.RecordCodec
	cache  rowCache
	dirty  bool // in-memory record count differs from the header
}

// Open opens an existing table file read-only and parses its header
// under the configured strategy. It fails fast with ErrFormat on an
// unrecognized validity byte and returns no usable Table on any
// error.
func Open(path string, opts Options) (*Table, error) {
	t := &Table{path: path, opts: opts, log: sessionLogger(opts, path)}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	hdr, fields, err := readHeader(f, opts.HeaderMode, opts.AllowOffByOne, t.log)
	if err != nil {
		f.Close()
		return nil, err
	}

	// Lax construction: a damaged descriptor table must not keep the
	// file from opening, or it could never be repaired. Unknown types
	// fail individual decodes instead.
	rc := codec.NewRecordCodecLax(fields, opts.CodePage)

	t.file = f
	t.hdr = hdr
	t.fields = fields
	t.codec = rc
	t.log.WithFields(logrus.Fields{
		"fields":  len(fields),
		"records": hdr.recordCount,
	}).Debug("table opened")
	return t, nil
}

// Create validates the field list, writes a fresh header with a zero
// record count, and returns an open session against the new file. An
// existing file at path is overwritten.
func Create(path string, fields []codec.FieldDescriptor, opts Options) (*Table, error) {
	rc, err := codec.NewRecordCodec(fields, opts.CodePage)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	hdr := newHeader(fields, rc.RecordSize(), time.Now())
	if err := writeHeader(f, hdr, fields); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	// Hand the rest to the normal open path so the session starts
	// from the bytes actually on disk.
	return Open(path, opts)
}

// Flush persists the in-memory record count into the header. Only the
// four count bytes are rewritten; the schema and data region are left
// untouched.
func (t *Table) Flush() error {
	if !t.dirty {
		return nil
	}
	err := t.withWritable(func(w *os.File) error {
		return patchRecordCount(w, t.hdr.recordCount)
	})
	if err != nil {
		return err
	}
	t.dirty = false
	t.log.WithField("records", t.hdr.recordCount).Debug("record count flushed")
	return nil
}

// Close flushes the record count and releases the file handle.
func (t *Table) Close() error {
	if t.file == nil {
		return nil
	}
	if err := t.Flush(); err != nil {
		t.file.Close()
		t.file = nil
		return err
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// Fields returns a copy of the schema.
func (t *Table) Fields() []codec.FieldDescriptor {
	out := make([]codec.FieldDescriptor, len(t.fields))
	copy(out, t.fields)
	return out
}

// RecordCount returns the session's record count, including appends
// not yet flushed to the header.
func (t *Table) RecordCount() int {
	return int(t.hdr.recordCount)
}

// HeaderSize returns the declared header length in bytes.
func (t *Table) HeaderSize() int {
	return int(t.hdr.headerSize)
}

// RecordSize returns the declared per-record length in bytes.
func (t *Table) RecordSize() int {
	return int(t.hdr.recordSize)
}

// LastUpdated returns the last-modified date stamped in the header.
func (t *Table) LastUpdated() time.Time {
	return time.Date(t.hdr.year, time.Month(t.hdr.month), t.hdr.day, 0, 0, 0, 0, time.UTC)
}

// Path returns the file path the session was opened on.
func (t *Table) Path() string {
	return t.path
}

// Stats scans the delete flags and summarizes the table.
func (t *Table) Stats() (TableStats, error) {
	st := TableStats{
		Records:    t.RecordCount(),
		HeaderSize: t.HeaderSize(),
		RecordSize: t.RecordSize(),
	}
	info, err := t.file.Stat()
	if err != nil {
		return TableStats{}, err
	}
	st.FileSize = info.Size()

	for i := 0; i < st.Records; i++ {
		deleted, err := t.Deleted(i)
		if err != nil {
			return TableStats{}, err
		}
		if deleted {
			st.Deleted++
		} else {
			st.Live++
		}
	}
	return st, nil
}

// RewriteHeader persists the session's current metadata and schema.
// The low-level header writer truncates the file, so the data region
// is snapshotted first and written back immediately after the new
// header. The snapshot starts at the session's header length, which
// after a repair is the scanned (true) one, so the bytes land exactly
// where they came from.
func (t *Table) RewriteHeader() error {
	start := int64(t.hdr.headerSize)
	info, err := t.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size() - start
	if size < 0 {
		size = 0
	}
	data := make([]byte, size)
	if size > 0 {
		if _, err := t.file.ReadAt(data, start); err != nil {
			return fmt.Errorf("snapshot data region: %w", err)
		}
	}

	defer t.cache.clear()
	err = t.withWritable(func(w *os.File) error {
		if werr := writeHeader(w, t.hdr, t.fields); werr != nil {
			return werr
		}
		if len(data) > 0 {
			if _, werr := w.WriteAt(data, int64(t.hdr.headerSize)); werr != nil {
				return fmt.Errorf("restore data region: %w", werr)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	t.dirty = false
	t.log.Debug("header rewritten")
	return nil
}

// withWritable swaps the read-only handle for a read-write one around
// fn, then restores read-only access. The writable handle is held no
// longer than the mutation itself; during the swap the session cannot
// serve reads.
func (t *Table) withWritable(fn func(*os.File) error) error {
	if err := t.file.Close(); err != nil {
		return fmt.Errorf("release read handle: %w", err)
	}
	t.file = nil

	w, err := os.OpenFile(t.path, os.O_RDWR, 0o644)
	if err == nil {
		err = fn(w)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}

	r, rerr := os.Open(t.path)
	if rerr != nil {
		if err == nil {
			err = rerr
		}
		return err
	}
	t.file = r
	return err
}

// recordOffset returns the byte offset of row i's delete flag.
func (t *Table) recordOffset(i int) int64 {
	return int64(t.hdr.headerSize) + int64(i)*int64(t.hdr.recordSize)
}

func sessionLogger(opts Options, path string) logrus.FieldLogger {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("table", path)
}

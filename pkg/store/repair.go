package store

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"

	"github.com/halvard/dbf3/pkg/codec"
)

// Corruption repair: three recomputations that compare a value derived
// from the file's actual structure against the stored metadata and fix
// the in-memory copy when they disagree. Each reports whether it
// corrected anything; none ever writes to disk. Persisting a repair is
// the caller's job (and for the header that means a full rewrite with
// the data region reconstructed afterwards).
//
// The operations are order-dependent: record size needs a correctly
// parsed schema, and record count needs both the header and record
// sizes. Running them out of order on a sufficiently corrupted file
// yields meaningless results; that is accepted behavior, not
// something the store validates.

// RecomputeHeaderSize re-scans the column table for the terminator
// byte from scratch, ignoring the stored header length entirely. The
// schema is re-parsed along the way and replaces the session's copy.
func (t *Table) RecomputeHeaderSize() (bool, error) {
	fields, err := readFieldsScan(t.file)
	if err != nil {
		return false, err
	}
	rc := codec.NewRecordCodecLax(fields, t.opts.CodePage)

	scanned := uint16(trueHeaderSize(len(fields)))
	corrected := scanned != t.hdr.headerSize
	if corrected {
		t.log.WithFields(logrus.Fields{
			"declared": t.hdr.headerSize,
			"scanned":  scanned,
		}).Info("header length repaired")
		t.hdr.headerSize = scanned
		t.cache.clear()
	}
	t.fields = fields
	t.codec = rc
	return corrected, nil
}

// RecomputeRecordSize sums the field widths plus the delete flag and
// fixes the stored record length. It trusts the current schema, so
// header repair must run first on a file whose header length was
// wrong.
func (t *Table) RecomputeRecordSize() (bool, error) {
	computed := uint16(t.codec.RecordSize())
	if computed == t.hdr.recordSize {
		return false, nil
	}
	t.log.WithFields(logrus.Fields{
		"declared": t.hdr.recordSize,
		"computed": computed,
	}).Info("record length repaired")
	t.hdr.recordSize = computed
	t.cache.clear()
	return true, nil
}

// RecomputeRecordCount derives the count from the physical file size:
// floor((size - header) / record). Both prior repairs must already
// hold for the result to mean anything.
func (t *Table) RecomputeRecordCount() (bool, error) {
	if t.hdr.recordSize == 0 {
		return false, fmt.Errorf("%w: record length is zero", ErrFormat)
	}
	info, err := t.file.Stat()
	if err != nil {
		return false, err
	}
	data := info.Size() - int64(t.hdr.headerSize)
	if data < 0 {
		data = 0
	}
	computed := uint32(data / int64(t.hdr.recordSize))
	if computed == t.hdr.recordCount {
		return false, nil
	}
	t.log.WithFields(logrus.Fields{
		"declared": t.hdr.recordCount,
		"computed": computed,
	}).Info("record count repaired")
	t.hdr.recordCount = computed
	t.cache.clear()
	return true, nil
}

// Repair runs the three recomputations in their required order and
// reports which of them corrected a value. In-memory only, like the
// individual operations.
func (t *Table) Repair() (RepairResult, error) {
	var res RepairResult
	var err error
	if res.HeaderSizeCorrected, err = t.RecomputeHeaderSize(); err != nil {
		return res, err
	}
	if res.RecordSizeCorrected, err = t.RecomputeRecordSize(); err != nil {
		return res, err
	}
	if res.RecordCountCorrected, err = t.RecomputeRecordCount(); err != nil {
		return res, err
	}
	return res, nil
}

// Checksum digests the data region (everything past the header) with
// xxh3. Diagnostic tooling uses it to compare snapshots of the same
// table without shipping the bytes around.
func (t *Table) Checksum() (uint64, error) {
	info, err := t.file.Stat()
	if err != nil {
		return 0, err
	}
	size := info.Size() - int64(t.hdr.headerSize)
	if size <= 0 {
		return xxh3.Hash(nil), nil
	}

	h := xxh3.New()
	section := io.NewSectionReader(t.file, int64(t.hdr.headerSize), size)
	if _, err := io.Copy(h, section); err != nil {
		return 0, fmt.Errorf("hash data region: %w", err)
	}
	return h.Sum64(), nil
}

package store

import (
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"

	"github.com/halvard/dbf3/pkg/codec"
)

// HeaderMode selects how the column-descriptor table is delimited
// when a file is opened.
type HeaderMode int

const (
	// TrustDeclared derives the descriptor count from the header
	// length stored in the preamble. Fastest, unsafe on corrupted
	// files.
	TrustDeclared HeaderMode = iota

	// ScanTerminator reads descriptors until the terminator byte and
	// recomputes the true header length, correcting the stored value
	// when they disagree.
	ScanTerminator
)

// DefaultWindowSize is the read-ahead window used by DefaultOptions.
const DefaultWindowSize = 100

// Options configures an open table session.
type Options struct {
	// HeaderMode selects the column-table parse strategy.
	HeaderMode HeaderMode

	// AllowOffByOne suppresses header-length correction in
	// ScanTerminator mode when the declared value differs from the
	// scanned value by exactly one byte. Larger discrepancies are
	// always corrected.
	AllowOffByOne bool

	// WindowSize is the number of rows fetched per batched read.
	// Zero disables the row cache entirely: every fetch performs a
	// single-row read.
	WindowSize int

	// CodePage translates Character fields. Nil passes raw bytes.
	CodePage encoding.Encoding

	// Logger receives debug/info events. Nil uses the standard
	// logrus logger.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the options used when callers have no
// opinion: terminator scanning and a DefaultWindowSize read-ahead.
func DefaultOptions() Options {
	return Options{
		HeaderMode: ScanTerminator,
		WindowSize: DefaultWindowSize,
	}
}

// Row holds one decoded record, one value per field in declared
// order: string for Character and Numeric, bool for Logical, and the
// raw 8-character string for Date.
type Row []any

// Errors
var (
	// ErrFormat indicates a file that cannot be interpreted as dBASE
	// III data (bad validity byte, unrecognized field type).
	ErrFormat = codec.ErrFormat

	// ErrRange indicates a row index or range outside [0, count).
	ErrRange = errors.New("row index out of range")
)

// TableStats summarizes an open table for diagnostic tooling.
type TableStats struct {
	Records    int   // declared record count
	Live       int   // records whose delete flag is clear
	Deleted    int   // tombstoned records
	FileSize   int64 // bytes on disk
	HeaderSize int   // declared header length
	RecordSize int   // declared record length
}

// RepairResult reports which metadata values a Repair pass corrected.
type RepairResult struct {
	HeaderSizeCorrected  bool
	RecordSizeCorrected  bool
	RecordCountCorrected bool
}

// Corrected reports whether any repair operation changed a value.
func (r RepairResult) Corrected() bool {
	return r.HeaderSizeCorrected || r.RecordSizeCorrected || r.RecordCountCorrected
}

package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/halvard/dbf3/pkg/codec"
)

// On-disk header layout constants.
const (
	preambleSize   = 32
	descriptorSize = 32

	// Accepted validity bytes: plain dBASE III and dBASE III with a
	// memo sidecar.
	magicPlain = 0x03
	magicMemo  = 0x83

	// Column table terminator. Some writers emit a linefeed instead;
	// it is tolerated on read but never written.
	headerTerminator = 0x0D
	altTerminator    = 0x0A
)

// Preamble field offsets.
const (
	offRecordCount = 4
	offHeaderSize  = 8
	offRecordSize  = 10
)

// header is the in-memory image of the 32-byte preamble.
type header struct {
	valid       byte
	year        int // four-digit, pivot applied
	month       int
	day         int
	recordCount uint32
	headerSize  uint16
	recordSize  uint16
}

// trueHeaderSize is the header length implied by a descriptor count:
// the preamble, the descriptor blocks, and the terminator byte.
func trueHeaderSize(nFields int) int {
	return preambleSize + descriptorSize*nFields + 1
}

// pivotYear widens a stored two-digit year: below 70 rolls over into
// the 2000s, 70 and above stays in the 1900s.
func pivotYear(yy byte) int {
	if int(yy) < 70 {
		return 2000 + int(yy)
	}
	return 1900 + int(yy)
}

// readPreamble parses the fixed 32-byte preamble at the start of the
// file, failing with ErrFormat on an unrecognized validity byte.
func readPreamble(f *os.File) (*header, error) {
	buf := make([]byte, preambleSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("read preamble: %w", err)
	}
	if buf[0] != magicPlain && buf[0] != magicMemo {
		return nil, fmt.Errorf("%w: unexpected validity byte 0x%02X", ErrFormat, buf[0])
	}
	return &header{
		valid:       buf[0],
		year:        pivotYear(buf[1]),
		month:       int(buf[2]),
		day:         int(buf[3]),
		recordCount: binary.LittleEndian.Uint32(buf[offRecordCount:]),
		headerSize:  binary.LittleEndian.Uint16(buf[offHeaderSize:]),
		recordSize:  binary.LittleEndian.Uint16(buf[offRecordSize:]),
	}, nil
}

// parseDescriptor decodes one 32-byte column descriptor block.
func parseDescriptor(block []byte) codec.FieldDescriptor {
	name := string(bytes.TrimRight(block[:11], "\x00 "))
	return codec.FieldDescriptor{
		Name:     name,
		Type:     codec.FieldType(block[11]),
		Length:   int(block[16]),
		Decimals: int(block[17]),
	}
}

// readFieldsTrusted derives the descriptor count from the declared
// header length and reads exactly that many blocks, ignoring the
// terminator entirely.
func readFieldsTrusted(f *os.File, declared uint16) ([]codec.FieldDescriptor, error) {
	n := (int(declared) - trueHeaderSize(0)) / descriptorSize
	if n < 0 {
		n = 0
	}
	fields := make([]codec.FieldDescriptor, 0, n)
	block := make([]byte, descriptorSize)
	for i := 0; i < n; i++ {
		off := int64(preambleSize + i*descriptorSize)
		if _, err := f.ReadAt(block, off); err != nil {
			return nil, fmt.Errorf("read descriptor %d: %w", i, err)
		}
		fields = append(fields, parseDescriptor(block))
	}
	return fields, nil
}

// readFieldsScan reads descriptor blocks until the terminator byte,
// regardless of the declared header length.
func readFieldsScan(f *os.File) ([]codec.FieldDescriptor, error) {
	var fields []codec.FieldDescriptor
	block := make([]byte, descriptorSize)
	for off := int64(preambleSize); ; off += descriptorSize {
		first := block[:1]
		if _, err := f.ReadAt(first, off); err != nil {
			return nil, fmt.Errorf("%w: column table has no terminator", ErrFormat)
		}
		if first[0] == headerTerminator || first[0] == altTerminator {
			return fields, nil
		}
		if _, err := f.ReadAt(block, off); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("%w: truncated column descriptor", ErrFormat)
			}
			return nil, fmt.Errorf("read descriptor at %d: %w", off, err)
		}
		fields = append(fields, parseDescriptor(block))
	}
}

// readHeader runs the full open-time parse: preamble, then the column
// table under the selected strategy. In ScanTerminator mode the
// declared header length is reconciled against the scanned one; a
// discrepancy above one byte is always corrected, an off-by-one is
// corrected unless allowOffByOne keeps the declared value.
func readHeader(f *os.File, mode HeaderMode, allowOffByOne bool, log logrus.FieldLogger) (*header, []codec.FieldDescriptor, error) {
	hdr, err := readPreamble(f)
	if err != nil {
		return nil, nil, err
	}

	var fields []codec.FieldDescriptor
	switch mode {
	case TrustDeclared:
		fields, err = readFieldsTrusted(f, hdr.headerSize)
	case ScanTerminator:
		fields, err = readFieldsScan(f)
	default:
		return nil, nil, fmt.Errorf("unknown header mode %d", mode)
	}
	if err != nil {
		return nil, nil, err
	}

	if mode == ScanTerminator {
		scanned := uint16(trueHeaderSize(len(fields)))
		diff := int(scanned) - int(hdr.headerSize)
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 || (diff == 1 && !allowOffByOne) {
			log.WithFields(logrus.Fields{
				"declared": hdr.headerSize,
				"scanned":  scanned,
			}).Info("correcting declared header length")
			hdr.headerSize = scanned
		}
	}
	return hdr, fields, nil
}

// writeHeader truncates the file and writes a complete header:
// preamble, one descriptor block per field, and the terminator. This
// is a full rewrite, never an in-place patch; it destroys the data
// region, so callers must reconstruct any records that mattered.
func writeHeader(f *os.File, hdr *header, fields []codec.FieldDescriptor) error {
	buf := make([]byte, trueHeaderSize(len(fields)))
	buf[0] = hdr.valid
	buf[1] = byte(hdr.year % 100)
	buf[2] = byte(hdr.month)
	buf[3] = byte(hdr.day)
	binary.LittleEndian.PutUint32(buf[offRecordCount:], hdr.recordCount)
	binary.LittleEndian.PutUint16(buf[offHeaderSize:], hdr.headerSize)
	binary.LittleEndian.PutUint16(buf[offRecordSize:], hdr.recordSize)

	for i, fd := range fields {
		block := buf[preambleSize+i*descriptorSize:]
		name := fd.Name
		if len(name) > codec.MaxFieldNameLength {
			name = name[:codec.MaxFieldNameLength]
		}
		copy(block[:codec.MaxFieldNameLength], name)
		block[11] = byte(fd.Type)
		block[16] = byte(fd.Length)
		block[17] = byte(fd.Decimals)
	}
	buf[len(buf)-1] = headerTerminator

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	if _, err := f.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// patchRecordCount overwrites only the four record-count bytes in the
// preamble, leaving the rest of the header and the data region alone.
func patchRecordCount(f *os.File, count uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], count)
	if _, err := f.WriteAt(buf[:], offRecordCount); err != nil {
		return fmt.Errorf("write record count: %w", err)
	}
	return nil
}

// newHeader builds a fresh preamble image for a table created now.
func newHeader(fields []codec.FieldDescriptor, recordSize int, now time.Time) *header {
	return &header{
		valid:       magicPlain,
		year:        now.Year(),
		month:       int(now.Month()),
		day:         now.Day(),
		recordCount: 0,
		headerSize:  uint16(trueHeaderSize(len(fields))),
		recordSize:  uint16(recordSize),
	}
}

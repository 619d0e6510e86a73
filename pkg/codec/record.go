package codec

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
)

// Delete-flag bytes at offset 0 of every record.
const (
	flagLive    = ' '
	flagDeleted = '*'
)

// RecordCodec converts one row between typed field values and the
// fixed-width byte buffer stored in the data region.
type RecordCodec struct {
	fields []FieldDescriptor
	size   int
	enc    *encoding.Encoder
	dec    *encoding.Decoder
}

// NewRecordCodec validates the field list and builds a codec for it.
// cp optionally selects the code page used for Character fields; nil
// passes bytes through untranslated.
func NewRecordCodec(fields []FieldDescriptor, cp encoding.Encoding) (*RecordCodec, error) {
	fields, err := ValidateFields(fields)
	if err != nil {
		return nil, err
	}
	return NewRecordCodecLax(fields, cp), nil
}

// NewRecordCodecLax builds a codec without validating the field list.
// Open paths use it so files with damaged descriptor tables can still
// be inspected and repaired; an unrecognized type surfaces as
// ErrFormat only when a record is actually encoded or decoded.
func NewRecordCodecLax(fields []FieldDescriptor, cp encoding.Encoding) *RecordCodec {
	c := &RecordCodec{fields: fields, size: 1}
	for _, f := range fields {
		c.size += f.Length
	}
	if cp != nil {
		// Unmappable runes degrade to a replacement byte rather than
		// failing the whole record.
		c.enc = encoding.ReplaceUnsupported(cp.NewEncoder())
		c.dec = cp.NewDecoder()
	}
	return c
}

// Fields returns the field list the codec was built from.
func (c *RecordCodec) Fields() []FieldDescriptor {
	return c.fields
}

// RecordSize returns the encoded width of one record: the delete flag
// plus the sum of the field widths.
func (c *RecordCodec) RecordSize() int {
	return c.size
}

// Encode packs one row into a fresh RecordSize byte buffer. values
// must carry exactly one entry per field, in declared order. Values
// wider than their field are truncated, never rejected.
func (c *RecordCodec) Encode(deleted bool, values []any) ([]byte, error) {
	if len(values) != len(c.fields) {
		return nil, fmt.Errorf("encode: got %d values for %d fields", len(values), len(c.fields))
	}

	buf := make([]byte, c.size)
	buf[0] = flagLive
	if deleted {
		buf[0] = flagDeleted
	}

	off := 1
	for i, f := range c.fields {
		field := buf[off : off+f.Length]
		switch f.Type {
		case Character, Date:
			c.encodeText(field, values[i], f.Type == Character)
		case Numeric:
			encodeNumeric(field, values[i], f.Length, f.Decimals)
		case Logical:
			if len(field) > 0 {
				field[0] = encodeLogical(values[i])
			}
		default:
			return nil, fmt.Errorf("%w: field %q has unrecognized type code %q", ErrFormat, f.Name, string(rune(f.Type)))
		}
		off += f.Length
	}
	return buf, nil
}

// Decode splits a raw record buffer into its delete flag and typed
// field values. Tombstoned rows decode no fields: deleted is true and
// values is nil. The buffer may be longer than the schema requires;
// trailing bytes are ignored.
func (c *RecordCodec) Decode(buf []byte) (deleted bool, values []any, err error) {
	if len(buf) < c.size {
		return false, nil, fmt.Errorf("%w: record is %d bytes, schema needs %d", ErrFormat, len(buf), c.size)
	}
	if buf[0] != flagLive {
		return true, nil, nil
	}

	values = make([]any, len(c.fields))
	off := 1
	for i, f := range c.fields {
		field := buf[off : off+f.Length]
		switch f.Type {
		case Character:
			s, derr := c.decodeText(bytes.TrimRight(field, " "))
			if derr != nil {
				return false, nil, fmt.Errorf("decode field %q: %w", f.Name, derr)
			}
			values[i] = s
		case Numeric:
			values[i] = strings.TrimLeft(string(field), " ")
		case Date:
			values[i] = string(field)
		case Logical:
			values[i] = false
			if len(field) > 0 {
				values[i] = decodeLogical(field[0])
			}
		default:
			return false, nil, fmt.Errorf("%w: field %q has unrecognized type code %q", ErrFormat, f.Name, string(rune(f.Type)))
		}
		off += f.Length
	}
	return false, values, nil
}

// encodeText left-justifies and space-pads the value, truncating at
// the field width. translate selects code-page encoding (Character
// fields); Date fields pass through verbatim.
func (c *RecordCodec) encodeText(field []byte, v any, translate bool) {
	raw := []byte(stringify(v))
	if translate && c.enc != nil {
		if out, err := c.enc.Bytes(raw); err == nil {
			raw = out
		}
	}
	n := copy(field, raw)
	for ; n < len(field); n++ {
		field[n] = ' '
	}
}

func (c *RecordCodec) decodeText(raw []byte) (string, error) {
	if c.dec == nil {
		return string(raw), nil
	}
	out, err := c.dec.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeNumeric renders a fixed-point, right-justified number. Values
// without a single digit, and digit-bearing text that still fails to
// parse, blank-fill the field.
func encodeNumeric(field []byte, v any, width, decimals int) {
	for i := range field {
		field[i] = ' '
	}
	s := strings.TrimSpace(stringify(v))
	if !strings.ContainsAny(s, "0123456789") {
		return
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return
	}
	out := fmt.Sprintf("%*.*f", width, decimals, f)
	if len(out) > width {
		out = out[:width]
	}
	copy(field[width-len(out):], out)
}

// encodeLogical maps anything matching a false/no pattern to 'F' and
// everything else to 'T'.
func encodeLogical(v any) byte {
	switch x := v.(type) {
	case nil:
		return 'F'
	case bool:
		if x {
			return 'T'
		}
		return 'F'
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" || s == "0" {
		return 'F'
	}
	switch s[0] {
	case 'n', 'N', 'f', 'F':
		return 'F'
	}
	return 'T'
}

// decodeLogical maps the stored byte onto a bool. '?' (unknown) and
// any unrecognized byte read as false.
func decodeLogical(b byte) bool {
	switch b {
	case 'y', 'Y', 't', 'T', '1':
		return true
	}
	return false
}

// stringify renders an arbitrary field value as text for packing.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "T"
		}
		return "F"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

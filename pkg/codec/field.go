package codec

import (
	"errors"
	"fmt"
)

// FieldType is the single-byte type code stored in a field descriptor.
type FieldType byte

// Field type codes from the dBASE III PLUS layout.
const (
	Character FieldType = 'C' // text, space padded
	Numeric   FieldType = 'N' // fixed-point number, right justified
	Date      FieldType = 'D' // 8-byte MM/DD/YY string, stored verbatim
	Logical   FieldType = 'L' // single byte T/F
)

// MaxFieldNameLength is the fixed width of the name slot in a
// descriptor block.
const MaxFieldNameLength = 11

// Errors
var (
	// ErrFormat indicates a file or record that cannot be safely
	// interpreted as dBASE III data.
	ErrFormat = errors.New("invalid dbase III format")

	// ErrValidation indicates a field list that violates the layout
	// rules. The wrapping error names the field and the rule.
	ErrValidation = errors.New("invalid field definition")
)

// FieldDescriptor describes one fixed-width column: its name, type
// code, byte width, and (for Numeric fields) decimal places.
type FieldDescriptor struct {
	Name     string
	Type     FieldType
	Length   int
	Decimals int
}

func (t FieldType) known() bool {
	switch t {
	case Character, Numeric, Date, Logical:
		return true
	}
	return false
}

// String returns the type code as text, e.g. "C".
func (t FieldType) String() string {
	return string(rune(t))
}

// ValidateFields checks a candidate field list against the layout
// rules and returns it unchanged on success. Validation stops at the
// first violation, reporting the offending field and rule.
func ValidateFields(fields []FieldDescriptor) ([]FieldDescriptor, error) {
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field %d has a blank name", ErrValidation, i)
		}
		if len(f.Name) > MaxFieldNameLength {
			return nil, fmt.Errorf("%w: field %q: name exceeds %d bytes", ErrValidation, f.Name, MaxFieldNameLength)
		}
		if !f.Type.known() {
			return nil, fmt.Errorf("%w: field %q: unknown type code %q", ErrValidation, f.Name, string(rune(f.Type)))
		}
		if f.Length <= 0 {
			return nil, fmt.Errorf("%w: field %q: length must be positive", ErrValidation, f.Name)
		}
		if f.Decimals < 0 {
			return nil, fmt.Errorf("%w: field %q: decimals must not be negative", ErrValidation, f.Name)
		}
		if f.Type == Logical && f.Length != 1 {
			return nil, fmt.Errorf("%w: field %q: logical fields must have length 1", ErrValidation, f.Name)
		}
		if f.Type == Date && f.Length != 8 {
			return nil, fmt.Errorf("%w: field %q: date fields must have length 8", ErrValidation, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("%w: field %q: duplicate name", ErrValidation, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return fields, nil
}

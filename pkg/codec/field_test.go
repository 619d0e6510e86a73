package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() []FieldDescriptor {
	return []FieldDescriptor{
		{Name: "ID", Type: Numeric, Length: 8},
		{Name: "NAME", Type: Character, Length: 20},
		{Name: "BORN", Type: Date, Length: 8},
		{Name: "ACTIVE", Type: Logical, Length: 1},
	}
}

func TestValidateFields_Accepts(t *testing.T) {
	fields, err := ValidateFields(validFields())
	require.NoError(t, err)
	assert.Len(t, fields, 4)
}

func TestValidateFields_Rejects(t *testing.T) {
	testCases := []struct {
		name   string
		fields []FieldDescriptor
		want   string
	}{
		{
			name:   "blank name",
			fields: []FieldDescriptor{{Name: "", Type: Character, Length: 5}},
			want:   "blank name",
		},
		{
			name:   "name too long",
			fields: []FieldDescriptor{{Name: "TWELVE_BYTES", Type: Character, Length: 5}},
			want:   "exceeds 11 bytes",
		},
		{
			name:   "unknown type",
			fields: []FieldDescriptor{{Name: "X", Type: 'M', Length: 10}},
			want:   "unknown type",
		},
		{
			name:   "zero length",
			fields: []FieldDescriptor{{Name: "X", Type: Character, Length: 0}},
			want:   "length must be positive",
		},
		{
			name:   "negative decimals",
			fields: []FieldDescriptor{{Name: "X", Type: Numeric, Length: 8, Decimals: -1}},
			want:   "decimals must not be negative",
		},
		{
			name: "duplicate names",
			fields: []FieldDescriptor{
				{Name: "X", Type: Character, Length: 5},
				{Name: "X", Type: Numeric, Length: 8},
			},
			want: "duplicate name",
		},
		{
			name:   "logical with wrong length",
			fields: []FieldDescriptor{{Name: "X", Type: Logical, Length: 2}},
			want:   "length 1",
		},
		{
			name:   "date with wrong length",
			fields: []FieldDescriptor{{Name: "X", Type: Date, Length: 10}},
			want:   "length 8",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateFields(tc.fields)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateFields_NamesAreCaseSensitive(t *testing.T) {
	_, err := ValidateFields([]FieldDescriptor{
		{Name: "Name", Type: Character, Length: 5},
		{Name: "NAME", Type: Character, Length: 5},
	})
	assert.NoError(t, err, "differently cased names are distinct")
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/dbf3/pkg/codec"
)

func TestParseFieldSpec(t *testing.T) {
	testCases := []struct {
		spec string
		want codec.FieldDescriptor
	}{
		{"id,N,8", codec.FieldDescriptor{Name: "id", Type: codec.Numeric, Length: 8}},
		{"amount,n,10,2", codec.FieldDescriptor{Name: "amount", Type: codec.Numeric, Length: 10, Decimals: 2}},
		{"name, C, 20", codec.FieldDescriptor{Name: "name", Type: codec.Character, Length: 20}},
		{"born,D,8", codec.FieldDescriptor{Name: "born", Type: codec.Date, Length: 8}},
		{"active,L,1", codec.FieldDescriptor{Name: "active", Type: codec.Logical, Length: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.spec, func(t *testing.T) {
			fd, err := parseFieldSpec(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, fd)
		})
	}
}

func TestParseFieldSpecErrors(t *testing.T) {
	for _, spec := range []string{
		"",
		"id",
		"id,N",
		"id,N,8,2,extra",
		"id,NN,8",
		"id,N,eight",
		"id,N,8,two",
	} {
		t.Run(spec, func(t *testing.T) {
			_, err := parseFieldSpec(spec)
			assert.Error(t, err)
		})
	}
}

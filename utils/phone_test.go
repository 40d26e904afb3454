package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"domestic mobile", "09123456789", "989123456789"},
		{"domestic without trunk zero", "9123456789", "989123456789"},
		{"formatted with separators", "0912-345-6789", "989123456789"},
		{"formatted with spaces", "0912 345 6789", "989123456789"},
		{"already international", "989123456789", "989123456789"},
		{"plus prefix stripped", "+989123456789", "989123456789"},
		{"empty", "", ""},
		{"letters stripped", "tel:09123456789", "989123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"09123456789", "9123456789", "+989123456789", "0912 345 6789"}
	for _, phone := range valid {
		assert.True(t, ValidatePhone(phone), "expected %q to validate", phone)
	}

	invalid := []string{"", "12345", "0098912345678901234", "000000000000"}
	for _, phone := range invalid {
		assert.False(t, ValidatePhone(phone), "expected %q to be rejected", phone)
	}
}

package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Products", "Products"},
		{"PetStore", "PetStore"},
		{"pet", "pet"},
		{"iOS", "iOS"},
		{"pet store", "petStore"},
		{"user-admin", "userAdmin"},
		{"Pet Store", "PetStore"},
		{"  orders ", "orders"},
		{"2fa", "_2fa"},
		{"-", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Identifier(tt.in), "Identifier(%q)", tt.in)
	}
}

func TestCamelTail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"CreateOrderRequest", "request"},
		{"Product", "product"},
		{"Product[]", "product"},
		{"HTTPRequest", "request"},
		{"GetURL", "l"},
		{"string", "string"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CamelTail(tt.in), "CamelTail(%q)", tt.in)
	}
}

func TestEnumMember(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_Active", EnumMember("Active"))
	assert.Equal(t, "_in_stock", EnumMember("in stock"))
	assert.Equal(t, "_2", EnumMember("2"))
	assert.Equal(t, "_1_5", EnumMember("1.5"))
	assert.Equal(t, "_", EnumMember(""))
}

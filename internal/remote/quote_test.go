package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidName(t *testing.T) {
	valid := []string{"shop", "shop_v2", "Analytics", "db01", "_private"}
	for _, name := range valid {
		assert.True(t, ValidName(name), "name %q", name)
	}

	invalid := []string{
		"",
		"shop-prod",
		"shop.prod",
		"shop prod",
		"shop;drop table users",
		"$(whoami)",
		"`id`",
		"shop'",
	}
	for _, name := range invalid {
		assert.False(t, ValidName(name), "name %q", name)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/var/www", "'/var/www'"},
		{"", "''"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
		{"$(whoami)", "'$(whoami)'"},
		{"a;b", "'a;b'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShellQuote(tt.in), "input %q", tt.in)
	}
}

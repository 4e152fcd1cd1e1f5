package superbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens []byte
		want   string
	}{
		{"empty", nil, ""},
		{"digits", []byte{0x01, 0x02}, "12"},
		{"letters", []byte{0x16, 0x22, 0x1f, 0x1e, 0x24}, "FRONT"},
		{"words get spaced", []byte{0x6e, 0x57}, "FRONT DOOR"},
		{"trailing word has no space", []byte{0x57}, "DOOR"},
		{"mixed word and digit", []byte{0x9e, 0x02}, "PARTITION 2"},
		{"backspace erases", []byte{0x11, 0x12, 0xfd}, "A"},
		{"backspace on empty", []byte{0xfd, 0x11}, "A"},
		{"unassigned token", []byte{0x0a}, "@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeTokens(tt.tokens))
		})
	}
}

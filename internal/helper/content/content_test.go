package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "single line LF", input: "line1", expected: []string{"line1"}},
		{name: "multiple lines LF", input: "line1\nline2\nline3", expected: []string{"line1", "line2", "line3"}},
		{name: "trailing newline LF", input: "line1\n", expected: []string{"line1"}},
		{name: "empty string", input: "", expected: nil},
		{name: "only newline LF", input: "\n", expected: []string{""}},
		{name: "multiple lines CRLF", input: "a\r\nb\r\n", expected: []string{"a", "b"}},
		{name: "mixed endings", input: "a\r\nb\nc", expected: []string{"a", "b", "c"}},
		{name: "bare CR kept", input: "a\rb\n", expected: []string{"a\rb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitLines(tt.input))
		})
	}
}

func TestTrimEOL(t *testing.T) {
	assert.Equal(t, "x", TrimEOL("x\n"))
	assert.Equal(t, "x", TrimEOL("x\r\n"))
	assert.Equal(t, "x\r", TrimEOL("x\r"))
	assert.Equal(t, "", TrimEOL("\n"))
	assert.Equal(t, "", TrimEOL(""))
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary([]byte("plain text\n")))
	assert.False(t, IsBinary(nil))
	assert.True(t, IsBinary([]byte("abc\x00def")))
	assert.False(t, IsBinary([]byte{0xFF, 0xFE, 'a', 0x00}), "UTF-16LE BOM")
	assert.False(t, IsBinary([]byte{0x00, 0x00, 0xFE, 0xFF, 'a'}), "UTF-32BE BOM")

	late := make([]byte, sniffSize+10)
	for i := range late {
		late[i] = 'a'
	}
	late[sniffSize+5] = 0
	assert.False(t, IsBinary(late), "NUL beyond the sniff window is ignored")
}

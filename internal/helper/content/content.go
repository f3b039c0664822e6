// Package content holds byte-level helpers shared by the parser, the
// preview and the process output collector.
package content

import "bytes"

// sniffSize is the number of bytes scanned for NUL when detecting binary data.
// Git uses the same 8000-byte window.
const sniffSize = 8000

// IsBinary reports whether data looks binary: a NUL byte within the first
// sniffSize bytes. UTF-16 and UTF-32 BOMs are treated as text.
func IsBinary(data []byte) bool {
	if hasWideBOM(data) {
		return false
	}
	return bytes.IndexByte(data[:min(len(data), sniffSize)], 0) >= 0
}

func hasWideBOM(data []byte) bool {
	switch {
	case len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0xFE && data[3] == 0xFF:
		return true
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return true // also covers the UTF-32LE BOM
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return true
	}
	return false
}

// SplitLines splits content into lines, handling both \n and \r\n line endings.
// If the content ends with a newline sequence, no trailing empty string is returned.
func SplitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] != '\n' {
			continue
		}
		lines = append(lines, TrimEOL(content[start:i+1]))
		start = i + 1
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

// TrimEOL strips one trailing "\n" or "\r\n".
func TrimEOL(line string) string {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}

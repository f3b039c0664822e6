package executor

import (
	"bytes"

	"github.com/Cyclone1070/greplace/internal/helper/content"
)

// Collector captures process output up to a byte limit. Once binary content
// is seen in the leading sample, the rest is discarded.
type Collector struct {
	buffer    bytes.Buffer
	maxBytes  int
	truncated bool
	isBinary  bool

	bytesChecked int
	sampleSize   int
}

// NewCollector creates a Collector keeping at most maxBytes and sniffing the
// first sampleSize bytes for binary data.
func NewCollector(maxBytes int, sampleSize int) *Collector {
	return &Collector{
		maxBytes:   maxBytes,
		sampleSize: sampleSize,
	}
}

func (c *Collector) Write(p []byte) (n int, err error) {
	if c.isBinary {
		return len(p), nil
	}

	if c.bytesChecked < c.sampleSize {
		toCheck := p[:min(len(p), c.sampleSize-c.bytesChecked)]
		if content.IsBinary(toCheck) {
			c.isBinary = true
			c.truncated = true
			return len(p), nil
		}
		c.bytesChecked += len(toCheck)
	}

	remainingSpace := c.maxBytes - c.buffer.Len()
	if remainingSpace <= 0 {
		c.truncated = true
		return len(p), nil
	}

	toWrite := p
	if len(toWrite) > remainingSpace {
		toWrite = toWrite[:remainingSpace]
		c.truncated = true
	}

	written, err := c.buffer.Write(toWrite)
	if err != nil {
		return written, err
	}

	return len(p), nil
}

func (c *Collector) String() string {
	if c.isBinary {
		return "[Binary Content]"
	}
	return c.buffer.String()
}

// FirstLine returns the first non-empty line collected, trimmed.
func (c *Collector) FirstLine() string {
	for _, line := range bytes.Split(c.buffer.Bytes(), []byte("\n")) {
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			return string(trimmed)
		}
	}
	return ""
}

func (c *Collector) Truncated() bool {
	return c.truncated
}

// Reset empties the collector for reuse.
func (c *Collector) Reset() {
	c.buffer.Reset()
	c.truncated = false
	c.isBinary = false
	c.bytesChecked = 0
}

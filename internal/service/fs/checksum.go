package fs

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns the xxhash digest of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ChecksumFile returns the digest of the file's current content.
func (r *OSFileSystem) ChecksumFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

// Package fileio reads whole input files with a size cap and drops them from
// the page cache afterwards.
package fileio

import (
	"fmt"
	"io"
	"os"
)

// ReadAll reads path into memory, up to limit bytes. It also returns the
// size reported by stat, which may exceed len(data) when the file is capped.
func ReadAll(path string, limit int64) (data []byte, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	if stat.IsDir() {
		return nil, 0, fmt.Errorf("%s: is a directory", path)
	}

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit)
	}
	data, err = io.ReadAll(r)
	dropCache(f)
	if err != nil {
		return nil, stat.Size(), fmt.Errorf("read %s: %w", path, err)
	}
	return data, stat.Size(), nil
}

// TruncationWarning describes a capped read, or returns "" when all size
// bytes were read.
func TruncationWarning(size int64, read int) string {
	if size <= int64(read) {
		return ""
	}
	return fmt.Sprintf("truncated at %d bytes (file is %d bytes)", read, size)
}

// ReadHead returns up to n leading bytes of path.
func ReadHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}

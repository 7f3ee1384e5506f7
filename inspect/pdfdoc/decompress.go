package pdfdoc

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"io"
)

// inflater opens a decompressing reader over a compressed blob.
type inflater func(r io.Reader) (io.ReadCloser, error)

// Candidates are tried in order; the first that decodes the whole blob wins.
var inflaters = []inflater{
	zlib.NewReader,
	func(r io.Reader) (io.ReadCloser, error) { return flate.NewReader(r), nil },
}

// Inflate decompresses blob as zlib, then as raw deflate. Output is capped at
// limit bytes when limit > 0; a capped result still counts as success. When
// every candidate fails Inflate returns nil.
func Inflate(blob []byte, limit int64) []byte {
	if len(blob) == 0 {
		return nil
	}
	for _, open := range inflaters {
		if out, ok := tryInflate(open, blob, limit); ok {
			return out
		}
	}
	return nil
}

func tryInflate(open inflater, blob []byte, limit int64) ([]byte, bool) {
	rc, err := open(bytes.NewReader(blob))
	if err != nil {
		return nil, false
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit)
	}
	out, err := io.ReadAll(r)
	if err != nil || len(out) == 0 {
		return nil, false
	}
	return out, true
}

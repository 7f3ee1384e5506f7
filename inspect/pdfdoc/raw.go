package pdfdoc

import (
	"bytes"

	"doc-inspector/inspect/urls"
	"doc-inspector/logger"
)

var (
	streamKeyword    = []byte("stream")
	endstreamKeyword = []byte("endstream")
)

// StreamRegions returns the bytes between every "stream" keyword and the
// following "endstream". The search is textual and ignores the object graph.
func StreamRegions(data []byte) [][]byte {
	var regions [][]byte
	pos := 0
	for pos < len(data) {
		i := bytes.Index(data[pos:], streamKeyword)
		if i < 0 {
			break
		}
		start := pos + i
		if start >= 3 && bytes.Equal(data[start-3:start], []byte("end")) {
			pos = start + len(streamKeyword)
			continue
		}
		body := start + len(streamKeyword)
		if body < len(data) && data[body] == '\r' {
			body++
		}
		if body < len(data) && data[body] == '\n' {
			body++
		}
		j := bytes.Index(data[body:], endstreamKeyword)
		if j < 0 {
			break
		}
		regions = append(regions, data[body:body+j])
		pos = body + j + len(endstreamKeyword)
	}
	return regions
}

// ScanRaw returns the sorted union of URLs found in data itself and in every
// stream region that inflates.
func ScanRaw(data []byte, inflateLimit int64) []string {
	set := urls.Set{}
	set.Add(urls.Scan(data)...)
	inflated := 0
	for _, region := range StreamRegions(data) {
		out := Inflate(region, inflateLimit)
		if out == nil {
			continue
		}
		inflated++
		set.Add(urls.Scan(out)...)
	}
	logger.Debug("pdf raw scan", "streams_inflated", inflated, "urls", len(set))
	return set.Sorted()
}

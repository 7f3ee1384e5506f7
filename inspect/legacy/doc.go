// Package legacy inspects binary Word documents stored as OLE compound
// files.
package legacy

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
	xunicode "golang.org/x/text/encoding/unicode"

	"doc-inspector/config"
	"doc-inspector/fileio"
	"doc-inspector/inspect/urls"
	"doc-inspector/logger"
	"doc-inspector/record"
)

const wordStream = "WordDocument"

// macroStorages name the storages that hold VBA projects.
var macroStorages = []string{"Macros", "_VBA_PROJECT_CUR"}

// propertySetPrefixes maps property-set stream names to key prefixes.
var propertySetPrefixes = map[string]string{
	"SummaryInformation":         "summary_",
	"DocumentSummaryInformation": "doc_summary_",
}

var utf16LE = xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM)

// Result holds what could be read from a compound file.
type Result struct {
	Properties record.Props
	Links      []string
	HasMacros  bool
	Warnings   []string
	Err        error
}

// Inspect walks the compound file at path. Failures leave the defaults in
// place and are reported through Err.
func Inspect(path string, opts config.Options) Result {
	data, size, err := fileio.ReadAll(path, opts.MaxFileBytes)
	if err != nil {
		return finish(nil, err)
	}
	res := finish(walk(data, opts.MaxPartBytes))
	if w := fileio.TruncationWarning(size, len(data)); w != "" {
		res.Warnings = append(res.Warnings, w)
	}
	return res
}

type walkState struct {
	streams   int
	hasMacros bool
	props     []record.Property
	links     urls.Set
}

func finish(st *walkState, err error) Result {
	if st == nil {
		st = &walkState{}
	}
	var res Result
	res.Properties.AddInt("num_streams", int64(st.streams))
	res.Properties.AddBool("has_macros", st.hasMacros)
	res.Properties = append(res.Properties, st.props...)
	res.Links = st.links.Sorted()
	res.HasMacros = st.hasMacros
	res.Err = err
	return res
}

// walk visits every directory entry. mscfb is not hardened against every
// malformed layout, so panics are recovered into errors.
func walk(data []byte, maxPart int64) (st *walkState, err error) {
	st = &walkState{links: urls.Set{}}
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("compound file walk panicked", "panic", r)
			err = fmt.Errorf("compound file: %v", r)
		}
	}()

	cf, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return st, fmt.Errorf("compound file: %w", err)
	}

	for entry, nerr := cf.Next(); nerr == nil; entry, nerr = cf.Next() {
		if slices.Contains(macroStorages, entry.Name) || containsAny(entry.Path, macroStorages) {
			st.hasMacros = true
		}
		if entry.FileInfo().IsDir() {
			continue
		}
		st.streams++

		switch {
		case msoleps.IsMSOLEPS(entry.Initial):
			prefix, ok := propertySetPrefixes[entry.Name]
			if !ok || len(entry.Path) > 0 {
				continue
			}
			st.props = append(st.props, propertySet(entry, prefix)...)
		case entry.Name == wordStream && len(entry.Path) == 0:
			body, rerr := io.ReadAll(io.LimitReader(entry, maxPart))
			if rerr != nil {
				logger.Debug("word stream truncated", "err", rerr)
			}
			for _, u := range streamURLs(body) {
				st.links.Add(u)
			}
		}
	}
	return st, nil
}

func containsAny(path, names []string) bool {
	for _, p := range path {
		if slices.Contains(names, p) {
			return true
		}
	}
	return false
}

// propertySet reads one OLE property set stream into prefixed properties.
func propertySet(r io.Reader, prefix string) []record.Property {
	ps, err := msoleps.NewFrom(r)
	if err != nil {
		logger.Debug("property set unreadable", "prefix", prefix, "err", err)
		return nil
	}
	var props []record.Property
	for _, p := range ps.Property {
		if p == nil || p.T == nil || p.Name == "" || p.Name == "Dictionary" {
			continue
		}
		value := strings.TrimSpace(p.String())
		if value == "" {
			continue
		}
		props = append(props, record.Property{Key: propertyKey(prefix, p.Name), Value: value})
	}
	return props
}

// propertyKey turns "Last Author" into prefix+"last_author".
func propertyKey(prefix, name string) string {
	return prefix + strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// streamURLs finds URLs in a Word text stream, which may hold 8-bit or
// UTF-16LE text.
func streamURLs(body []byte) []string {
	set := urls.Set{}
	for _, u := range urls.Scan(body) {
		set.Add(u)
	}
	if wide, err := utf16LE.NewDecoder().Bytes(body); err == nil {
		text := strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return ' '
			}
			return r
		}, string(wide))
		for _, u := range urls.Scan([]byte(text)) {
			set.Add(u)
		}
	}
	return set.Sorted()
}

// Package ooxml walks zip-based Office Open XML packages (word-processing,
// presentation and spreadsheet) and extracts properties, links, media,
// comments, custom XML parts and the macro flag.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"doc-inspector/logger"
)

// Namespaces used by the walkers.
const (
	nsWord         = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsPresentation = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsSpreadsheet  = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRel          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// ErrPartMissing is returned by Read for names the archive does not contain.
var ErrPartMissing = errors.New("part not present")

// Package is an opened OOXML archive. A Package that failed to open is
// empty: every lookup reports the part as missing.
type Package struct {
	zr      *zip.ReadCloser
	files   map[string]*zip.File
	order   []*zip.File
	maxPart int64
}

// Open opens the archive at filename. On failure it still returns an empty,
// usable Package alongside the error.
func Open(filename string, maxPart int64) (*Package, error) {
	p := &Package{files: map[string]*zip.File{}, maxPart: maxPart}
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return p, fmt.Errorf("open package: %w", err)
	}
	p.zr = zr
	for _, f := range zr.File {
		p.order = append(p.order, f)
		if _, dup := p.files[f.Name]; !dup {
			p.files[f.Name] = f
		}
	}
	return p, nil
}

// Close releases the underlying file.
func (p *Package) Close() error {
	if p.zr == nil {
		return nil
	}
	return p.zr.Close()
}

// Has reports whether the archive holds an entry called name.
func (p *Package) Has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// Names lists entry names with the given prefix and suffix, in archive order.
func (p *Package) Names(prefix, suffix string) []string {
	var names []string
	for _, f := range p.order {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, suffix) && !strings.HasSuffix(f.Name, "/") {
			names = append(names, f.Name)
		}
	}
	return names
}

// Read returns the (size-capped) content of a part.
func (p *Package) Read(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, ErrPartMissing
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if p.maxPart > 0 {
		r = io.LimitReader(rc, p.maxPart)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Decoder returns a lenient XML decoder over a part, or false when the part
// is missing or unreadable.
func (p *Package) Decoder(name string) (*xml.Decoder, bool) {
	data, err := p.Read(name)
	if err != nil {
		if !errors.Is(err, ErrPartMissing) {
			logger.Debug("part unreadable", "part", name, "err", err)
		}
		return nil, false
	}
	return newDecoder(data), true
}

// Decode unmarshals a part into v. Missing or malformed parts report false
// and leave v in whatever state decoding reached.
func (p *Package) Decode(name string, v any) bool {
	dec, ok := p.Decoder(name)
	if !ok {
		return false
	}
	if err := dec.Decode(v); err != nil {
		logger.Debug("part malformed", "part", name, "err", err)
		return false
	}
	return true
}

// Relationship is one entry of a part's .rels file.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// Rels returns the relationships of part keyed by id.
func (p *Package) Rels(part string) map[string]Relationship {
	relsName := path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
	var doc struct {
		Relationships []Relationship `xml:"Relationship"`
	}
	p.Decode(relsName, &doc)
	rels := make(map[string]Relationship, len(doc.Relationships))
	for _, r := range doc.Relationships {
		rels[r.ID] = r
	}
	return rels
}

// resolvePart turns a relationship target into an archive name relative to
// the part that owns the relationship.
func resolvePart(owner, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(owner), target)
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF8) || bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE)
}

// decodeText decodes data as UTF-8 (or BOM-marked UTF-16), replacing
// invalid sequences.
func decodeText(data []byte) string {
	var dec transform.Transformer = unicode.UTF8.NewDecoder()
	if hasBOM(data) {
		dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(out)
}

func newDecoder(data []byte) *xml.Decoder {
	if hasBOM(data) {
		if out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data); err == nil {
			data = out
		}
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charsetReader
	return dec
}

// charsetReader handles declared encodings other than UTF-8. UTF-16 content
// has already been transcoded by newDecoder.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	l := strings.ToLower(strings.TrimSpace(label))
	if strings.HasPrefix(l, "utf-16") || l == "unicode" {
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(l)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// attr returns the value of the attribute space:local, or "".
func attr(se xml.StartElement, space, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value
		}
	}
	return ""
}

// elementText consumes tokens up to the end of the element just started and
// returns the character data of descendants whose local name is in textLocals.
// Paragraph ends become newlines.
func elementText(dec *xml.Decoder, textLocals ...string) string {
	var sb strings.Builder
	depth, inText := 1, 0
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if slices.Contains(textLocals, t.Name.Local) {
				inText++
			}
		case xml.EndElement:
			depth--
			if slices.Contains(textLocals, t.Name.Local) && inText > 0 {
				inText--
			}
			if t.Name.Local == "p" && sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText > 0 {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// sortByNumber orders part names like slide2.xml before slide10.xml.
func sortByNumber(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := trailingNumber(names[i]), trailingNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
}

func trailingNumber(name string) int {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	n, mul := 0, 1
	for i := len(base) - 1; i >= 0 && base[i] >= '0' && base[i] <= '9'; i-- {
		n += int(base[i]-'0') * mul
		mul *= 10
	}
	return n
}

// Package pdfdoc inspects PDF files twice: through the object graph for
// structure and metadata, and through a raw byte scan that survives broken or
// encrypted files.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"doc-inspector/config"
	"doc-inspector/logger"
	"doc-inspector/record"
)

// UnknownVersion is reported when the header carries no version.
const UnknownVersion = "unknown"

// Structure is what the object graph reader reports. Fields keep their
// defaults when the graph could not be read.
type Structure struct {
	Version   string
	Encrypted bool
	Pages     int
	Sizes     PageSizeSummary
	Metadata  []record.Property
}

var headerVersionPattern = regexp.MustCompile(`%PDF-(\d+\.\d+)`)

// HeaderVersion returns the version declared in the first KiB of data.
func HeaderVersion(data []byte) string {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if m := headerVersionPattern.FindSubmatch(head); m != nil {
		return string(m[1])
	}
	return UnknownVersion
}

// ReadStructure reads version, encryption, pages, page sizes and the
// information dictionary. It always returns a usable Structure; the error
// reports why the object graph could not be (fully) read.
func ReadStructure(data []byte) (st *Structure, err error) {
	st = &Structure{
		Version:   HeaderVersion(data),
		Encrypted: bytes.Contains(data, []byte("/Encrypt")),
		Metadata:  emptyMetadata(),
	}

	// Guard against any panics from the PDF library.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf object graph: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			st.Encrypted = true
		}
		return st, fmt.Errorf("open pdf: %w", err)
	}

	trailer := reader.Trailer()
	st.Encrypted = trailer.Key("Encrypt").Kind() == pdf.Dict
	st.Metadata = readInfo(trailer.Key("Info"))

	leaves := pageLeaves(reader, len(data))
	st.Pages = len(leaves)
	for i, page := range leaves {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Debug("pdf page unreadable", "page", i+1, "panic", r)
				}
			}()
			w, h := mediaBox(page)
			st.Sizes.Add(w, h)
		}()
	}
	return st, nil
}

func emptyMetadata() []record.Property {
	props := make([]record.Property, 0, len(config.PDFMetaFields))
	for _, field := range config.PDFMetaFields {
		props = append(props, record.Property{Key: field})
	}
	return props
}

func readInfo(info pdf.Value) []record.Property {
	var props record.Props
	for _, field := range config.PDFMetaFields {
		value := valueString(info.Key(field))
		if strings.HasSuffix(strings.ToLower(field), "date") {
			value = ParseDate(value)
		}
		props.Add(field, value)
	}
	return props
}

func valueString(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return v.Text()
	case pdf.Name:
		return v.Name()
	case pdf.Integer:
		return strconv.FormatInt(v.Int64(), 10)
	case pdf.Real:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case pdf.Bool:
		return strconv.FormatBool(v.Bool())
	}
	return ""
}

// mediaBox resolves the page's MediaBox, inherited through /Parent, and
// falls back to US Letter.
func mediaBox(page pdf.Value) (width, height float64) {
	v := page
	for depth := 0; depth < 32 && v.Kind() == pdf.Dict; depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			width = math.Abs(box.Index(2).Float64() - box.Index(0).Float64())
			height = math.Abs(box.Index(3).Float64() - box.Index(1).Float64())
			return width, height
		}
		v = v.Key("Parent")
	}
	return 612, 792
}

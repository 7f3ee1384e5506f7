// Package record holds the normalized result of inspecting one file.
package record

import "strconv"

// Format identifies the container detected for a file.
type Format int

const (
	Unsupported Format = iota
	PDF
	Word
	Presentation
	Spreadsheet
	LegacyWord
)

func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case Word:
		return "WORD"
	case Presentation:
		return "PRESENTATION"
	case Spreadsheet:
		return "SPREADSHEET"
	case LegacyWord:
		return "LEGACY_WORD"
	}
	return "UNSUPPORTED"
}

// MarshalText renders the format by name in JSON output.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Property is one key/value row of the property table.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Comment is a reviewer comment. Location is a date for word and slide
// formats and a cell reference for spreadsheets.
type Comment struct {
	Author   string `json:"author"`
	Location string `json:"location"`
	Text     string `json:"text"`
}

// CustomXMLPart is an entry under customXml/ with its decoded content.
type CustomXMLPart struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Readable bool   `json:"readable"`
}

// DocumentRecord is the unified result for one inspected file. It is not
// modified after Inspect returns.
type DocumentRecord struct {
	Path       string          `json:"path"`
	Format     Format          `json:"format"`
	FileSize   int64           `json:"file_size_bytes"`
	Properties []Property      `json:"properties"`
	Links      []string        `json:"links"`
	Indicators []string        `json:"indicators"`
	Images     []string        `json:"images"`
	Comments   []Comment       `json:"comments"`
	CustomXML  []CustomXMLPart `json:"custom_xml"`
	Sheets     []string        `json:"sheets,omitempty"`
	HasMacros  bool            `json:"has_macros"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// Property returns the first value stored under key.
func (r *DocumentRecord) Property(key string) (string, bool) {
	return Props(r.Properties).Get(key)
}

// Props is an ordered property list builder.
type Props []Property

// Add appends a string property.
func (p *Props) Add(key, value string) {
	*p = append(*p, Property{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (p Props) Get(key string) (string, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// AddInt appends an integer property.
func (p *Props) AddInt(key string, value int64) {
	p.Add(key, strconv.FormatInt(value, 10))
}

// AddBool appends a boolean property.
func (p *Props) AddBool(key string, value bool) {
	p.Add(key, strconv.FormatBool(value))
}

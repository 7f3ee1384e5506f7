package ooxml

import (
	"strings"
	"time"

	"doc-inspector/record"
)

const (
	corePart   = "docProps/core.xml"
	appPart    = "docProps/app.xml"
	customPart = "docProps/custom.xml"
)

// coreProperties mirrors docProps/core.xml.
type coreProperties struct {
	Title          string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Subject        string `xml:"http://purl.org/dc/elements/1.1/ subject"`
	Creator        string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Keywords       string `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties keywords"`
	Description    string `xml:"http://purl.org/dc/elements/1.1/ description"`
	LastModifiedBy string `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties lastModifiedBy"`
	Revision       string `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties revision"`
	Created        string `xml:"http://purl.org/dc/terms/ created"`
	Modified       string `xml:"http://purl.org/dc/terms/ modified"`
	Category       string `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties category"`
	ContentStatus  string `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties contentStatus"`
	Identifier     string `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Language       string `xml:"http://purl.org/dc/elements/1.1/ language"`
	Version        string `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties version"`
}

// appProperties mirrors the fields of docProps/app.xml that are reported.
type appProperties struct {
	Template    string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Template"`
	Pages       string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Pages"`
	Application string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Application"`
	AppVersion  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties AppVersion"`
	DocSecurity string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties DocSecurity"`
	Company     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Company"`
	Manager     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Manager"`
}

type customProperties struct {
	Properties []struct {
		Name   string `xml:"name,attr"`
		Values []struct {
			Text string `xml:",chardata"`
		} `xml:",any"`
	} `xml:"property"`
}

func readCore(p *Package) coreProperties {
	var core coreProperties
	p.Decode(corePart, &core)
	return core
}

func readApp(p *Package) appProperties {
	var app appProperties
	p.Decode(appPart, &app)
	return app
}

// readCustom returns docProps/custom.xml entries as custom_<name> properties.
func readCustom(p *Package) []record.Property {
	var custom customProperties
	if !p.Decode(customPart, &custom) {
		return nil
	}
	var props []record.Property
	for _, prop := range custom.Properties {
		if prop.Name == "" {
			continue
		}
		value := ""
		if len(prop.Values) > 0 {
			value = strings.TrimSpace(prop.Values[0].Text)
		}
		props = append(props, record.Property{Key: "custom_" + prop.Name, Value: value})
	}
	return props
}

// documentProperties is the core property block shared by word-processing
// and presentation files, timestamps normalized.
func documentProperties(core coreProperties) record.Props {
	var props record.Props
	props.Add("title", clean(core.Title))
	props.Add("subject", clean(core.Subject))
	props.Add("creator", clean(core.Creator))
	props.Add("keywords", clean(core.Keywords))
	props.Add("description", clean(core.Description))
	props.Add("last_modified_by", clean(core.LastModifiedBy))
	props.Add("revision", clean(core.Revision))
	props.Add("created", formatTimestamp(core.Created))
	props.Add("modified", formatTimestamp(core.Modified))
	props.Add("category", clean(core.Category))
	props.Add("content_status", clean(core.ContentStatus))
	props.Add("identifier", clean(core.Identifier))
	props.Add("language", clean(core.Language))
	props.Add("version", clean(core.Version))
	return props
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// formatTimestamp renders a W3CDTF timestamp as "YYYY-MM-DD HH:MM:SS" in
// UTC. Unparseable values are returned trimmed but otherwise unchanged.
func formatTimestamp(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.DateTime)
		}
	}
	return s
}

package ooxml

import (
	"doc-inspector/config"
	"doc-inspector/logger"
	"doc-inspector/record"
)

// Result is what every format walker produces. Fields default to empty when
// the corresponding parts are missing or malformed; Err only carries a
// failure to open the archive at all.
type Result struct {
	Properties record.Props
	Links      []string
	Images     []string
	Comments   []record.Comment
	CustomXML  []record.CustomXMLPart
	Sheets     []string
	HasMacros  bool
	Err        error
}

// Walker extracts one OOXML flavour from an opened package.
type Walker func(p *Package) Result

// Walk opens the archive at filename and runs w over it. An archive that
// cannot be opened yields w's empty-package result with Err set.
func Walk(filename string, opts config.Options, w Walker) Result {
	p, err := Open(filename, opts.MaxPartBytes)
	defer p.Close()
	if err != nil {
		logger.Warn("package unreadable, using empty defaults", "file", filename, "err", err)
	}
	res := w(p)
	res.Err = err
	return res
}

// images lists the media parts of the package rooted at root ("word", "ppt", "xl").
func images(p *Package, root string) []string {
	return p.Names(config.MediaPrefixes[root], "")
}

// hasMacros reports whether root/vbaProject.bin exists.
func hasMacros(p *Package, root string) bool {
	return p.Has(root + "/vbaProject.bin")
}

// customXMLParts decodes every customXml/*.xml entry. Entries that cannot be
// read keep their name with the unreadable sentinel.
func customXMLParts(p *Package) []record.CustomXMLPart {
	var parts []record.CustomXMLPart
	for _, name := range p.Names("customXml/", ".xml") {
		data, err := p.Read(name)
		if err != nil {
			logger.Debug("custom xml unreadable", "part", name, "err", err)
			parts = append(parts, record.CustomXMLPart{Name: name, Content: config.UnreadablePart})
			continue
		}
		parts = append(parts, record.CustomXMLPart{Name: name, Content: decodeText(data), Readable: true})
	}
	return parts
}

// common fills the sub-operations shared by all flavours.
func common(p *Package, root string, res *Result) {
	res.Images = images(p, root)
	res.HasMacros = hasMacros(p, root)
	res.CustomXML = customXMLParts(p)
}

package ooxml

import (
	"encoding/xml"
	"strings"

	"doc-inspector/inspect/urls"
	"doc-inspector/record"
)

const notesSlideRelType = "/notesSlide"

// Presentation walks a presentation package.
func Presentation(p *Package) Result {
	var res Result
	common(p, "ppt", &res)

	slides := p.Names("ppt/slides/slide", ".xml")
	sortByNumber(slides)

	links := urls.Set{}
	withNotes := 0
	for _, slide := range slides {
		rels := p.Rels(slide)
		slideLinks(p, slide, rels, links)
		if slideHasNotes(p, slide, rels) {
			withNotes++
		}
	}

	core := readCore(p)
	app := readApp(p)

	res.Properties.AddInt("num_slides", int64(len(slides)))
	res.Properties.AddInt("num_slides_with_notes", int64(withNotes))
	res.Properties.AddBool("has_macros", res.HasMacros)
	res.Properties.AddInt("num_custom_xml", int64(len(res.CustomXML)))
	res.Properties = append(res.Properties, documentProperties(core)...)
	res.Properties = append(res.Properties, readCustom(p)...)
	if t := clean(app.Template); t != "" {
		res.Properties.Add("template", t)
	}
	if themes := themeNames(p); len(themes) > 0 {
		res.Properties.Add("themes", strings.Join(themes, ", "))
	}

	res.Links = links.Sorted()
	res.Comments = presentationComments(p)
	return res
}

// slideLinks collects hyperlink targets from the top-level shapes of a
// slide: run hyperlinks in text frames and shape click actions. Group shapes
// are skipped entirely, their click actions included.
func slideLinks(p *Package, slide string, rels map[string]Relationship, set urls.Set) {
	dec, ok := p.Decoder(slide)
	if !ok {
		return
	}
	resolve := func(se xml.StartElement) {
		if id := attr(se, nsRel, "id"); id != "" {
			if rel, ok := rels[id]; ok {
				set.Add(rel.Target)
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Space == nsPresentation && se.Name.Local == "spTree" {
			break
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return
		case xml.StartElement:
			if t.Name.Space == nsPresentation && t.Name.Local == "grpSp" {
				if err := dec.Skip(); err != nil {
					return
				}
				continue
			}
			walkShape(dec, t, resolve)
		}
	}
}

// walkShape consumes one shape element. Click actions hang off the shape's
// non-visual properties (cNvPr); run hyperlinks hang off a:r/a:rPr and only
// text-bearing shapes (p:sp) carry them.
func walkShape(dec *xml.Decoder, shape xml.StartElement, resolve func(xml.StartElement)) {
	hasText := shape.Name.Space == nsPresentation && shape.Name.Local == "sp"
	stack := []string{shape.Name.Local}
	for len(stack) > 0 {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == nsDrawing && t.Name.Local == "hlinkClick" {
				parent := stack[len(stack)-1]
				switch {
				case parent == "cNvPr":
					resolve(t)
				case hasText && parent == "rPr" && len(stack) >= 2 && stack[len(stack)-2] == "r":
					resolve(t)
				}
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
}

// notesSlide mirrors the parts of a notes slide needed to find its body text.
type notesSlide struct {
	Shapes []struct {
		Placeholder struct {
			Type string `xml:"type,attr"`
		} `xml:"nvSpPr>nvPr>ph"`
		Paragraphs []struct {
			Runs []string `xml:"r>t"`
		} `xml:"txBody>p"`
	} `xml:"cSld>spTree>sp"`
}

// slideHasNotes reports whether the slide's notes body placeholder has
// non-blank text.
func slideHasNotes(p *Package, slide string, rels map[string]Relationship) bool {
	for _, rel := range rels {
		if !strings.HasSuffix(rel.Type, notesSlideRelType) {
			continue
		}
		var notes notesSlide
		if !p.Decode(resolvePart(slide, rel.Target), &notes) {
			continue
		}
		for _, sh := range notes.Shapes {
			if sh.Placeholder.Type != "body" {
				continue
			}
			for _, para := range sh.Paragraphs {
				if strings.TrimSpace(strings.Join(para.Runs, "")) != "" {
					return true
				}
			}
		}
	}
	return false
}

func themeNames(p *Package) []string {
	parts := p.Names("ppt/theme/theme", ".xml")
	sortByNumber(parts)
	var names []string
	for _, part := range parts {
		var theme struct {
			Name string `xml:"name,attr"`
		}
		if p.Decode(part, &theme) && theme.Name != "" {
			names = append(names, theme.Name)
		}
	}
	return names
}

// presentationComments reads every ppt/comments*.xml part. Both the legacy
// p:cm (dt, p:text) and the modern comment layout (created, a:t runs) are
// understood.
func presentationComments(p *Package) []record.Comment {
	var comments []record.Comment
	for _, part := range p.Names("ppt/comments", ".xml") {
		dec, ok := p.Decoder(part)
		if !ok {
			continue
		}
		for {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != "cm" {
				continue
			}
			when := attr(se, "", "dt")
			if when == "" {
				when = attr(se, "", "created")
			}
			comments = append(comments, record.Comment{
				Author:   attr(se, "", "authorId"),
				Location: when,
				Text:     elementText(dec, "text", "t"),
			})
		}
	}
	return comments
}

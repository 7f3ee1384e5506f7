package ooxml

import (
	"encoding/xml"
	"regexp"
	"strings"

	"doc-inspector/inspect/urls"
	"doc-inspector/record"
)

const (
	wordDocumentPart = "word/document.xml"
	wordCommentsPart = "word/comments.xml"
)

var hyperlinkField = regexp.MustCompile(`HYPERLINK\s+"([^"]+)"`)

// wordBody is what one pass over word/document.xml yields.
type wordBody struct {
	paragraphs int
	tables     int
	revisions  bool
	links      urls.Set
}

// Word walks a word-processing package.
func Word(p *Package) Result {
	var res Result
	common(p, "word", &res)

	body := scanWordBody(p)
	core := readCore(p)
	app := readApp(p)

	res.Properties.Add("num_pages", clean(app.Pages))
	res.Properties.AddBool("has_revision_marks", body.revisions)
	res.Properties.AddInt("num_paragraphs", int64(body.paragraphs))
	res.Properties.AddInt("num_tables", int64(body.tables))
	res.Properties.AddBool("has_macros", res.HasMacros)
	res.Properties.AddInt("num_custom_xml", int64(len(res.CustomXML)))
	res.Properties = append(res.Properties, documentProperties(core)...)
	res.Properties = append(res.Properties, readCustom(p)...)
	if t := clean(app.Template); t != "" {
		res.Properties.Add("template", t)
	}

	res.Links = body.links.Sorted()
	res.Comments = wordComments(p)
	return res
}

// scanWordBody counts top-level paragraphs and tables, detects tracked
// changes and collects hyperlink targets at any depth (paragraphs, table
// cells, nested tables).
func scanWordBody(p *Package) wordBody {
	body := wordBody{links: urls.Set{}}
	dec, ok := p.Decoder(wordDocumentPart)
	if !ok {
		return body
	}
	rels := p.Rels(wordDocumentPart)

	var (
		stack   []string
		instr   strings.Builder
		inInstr bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			local := ""
			if t.Name.Space == nsWord {
				local = t.Name.Local
				parent := ""
				if len(stack) > 0 {
					parent = stack[len(stack)-1]
				}
				switch local {
				case "p":
					if parent == "body" {
						body.paragraphs++
					}
				case "tbl":
					if parent == "body" {
						body.tables++
					}
				case "ins", "del", "moveFrom", "moveTo":
					body.revisions = true
				case "hyperlink":
					if id := attr(t, nsRel, "id"); id != "" {
						if rel, ok := rels[id]; ok {
							body.links.Add(rel.Target)
						}
					}
				case "fldSimple":
					instr.WriteString(attr(t, nsWord, "instr"))
				case "instrText":
					inInstr = true
				}
			}
			stack = append(stack, local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if t.Name.Space == nsWord && t.Name.Local == "instrText" {
				inInstr = false
			}
		case xml.CharData:
			if inInstr {
				instr.Write(t)
			}
		}
	}

	for _, m := range hyperlinkField.FindAllStringSubmatch(instr.String(), -1) {
		body.links.Add(m[1])
	}
	return body
}

func wordComments(p *Package) []record.Comment {
	dec, ok := p.Decoder(wordCommentsPart)
	if !ok {
		return nil
	}
	var comments []record.Comment
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Space != nsWord || se.Name.Local != "comment" {
			continue
		}
		comments = append(comments, record.Comment{
			Author:   attr(se, nsWord, "author"),
			Location: attr(se, nsWord, "date"),
			Text:     elementText(dec, "t"),
		})
	}
	return comments
}

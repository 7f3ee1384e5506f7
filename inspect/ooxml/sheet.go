package ooxml

import (
	"encoding/xml"
	"strings"

	"doc-inspector/inspect/urls"
	"doc-inspector/record"
)

const workbookPart = "xl/workbook.xml"

type workbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
	} `xml:"sheets>sheet"`
}

type worksheetLinks struct {
	Hyperlinks []struct {
		Ref      string `xml:"ref,attr"`
		Location string `xml:"location,attr"`
		Tooltip  string `xml:"tooltip,attr"`
		Display  string `xml:"display,attr"`
		ID       string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"hyperlinks>hyperlink"`
}

type threadedComments struct {
	Comments []struct {
		Ref      string `xml:"ref,attr"`
		PersonID string `xml:"personId,attr"`
		TextAttr string `xml:"text,attr"`
		Text     string `xml:"http://schemas.microsoft.com/office/spreadsheetml/2018/threadedcomments text"`
	} `xml:"http://schemas.microsoft.com/office/spreadsheetml/2018/threadedcomments threadedComment"`
}

// Spreadsheet walks a spreadsheet package. Property values are reported
// as stored, without timestamp normalization.
func Spreadsheet(p *Package) Result {
	var res Result
	common(p, "xl", &res)

	var wb workbook
	p.Decode(workbookPart, &wb)
	for _, s := range wb.Sheets {
		res.Sheets = append(res.Sheets, s.Name)
	}

	core := readCore(p)
	app := readApp(p)

	res.Properties.AddInt("sheet_count", int64(len(res.Sheets)))
	res.Properties.AddBool("has_macros", res.HasMacros)
	res.Properties.AddInt("num_custom_xml", int64(len(res.CustomXML)))
	res.Properties.Add("core_title", clean(core.Title))
	res.Properties.Add("core_subject", clean(core.Subject))
	res.Properties.Add("core_creator", clean(core.Creator))
	res.Properties.Add("core_description", clean(core.Description))
	res.Properties.Add("core_keywords", clean(core.Keywords))
	res.Properties.Add("core_lastModifiedBy", clean(core.LastModifiedBy))
	res.Properties.Add("core_revision", clean(core.Revision))
	res.Properties.Add("core_created", clean(core.Created))
	res.Properties.Add("core_modified", clean(core.Modified))
	res.Properties.Add("app_application", clean(app.Application))
	res.Properties.Add("app_appVersion", clean(app.AppVersion))
	res.Properties.Add("app_docSecurity", clean(app.DocSecurity))
	res.Properties.Add("app_company", clean(app.Company))
	res.Properties.Add("app_manager", clean(app.Manager))
	res.Properties = append(res.Properties, readCustom(p)...)

	res.Links = sheetLinks(p)
	res.Comments = append(legacySheetComments(p), threadedSheetComments(p)...)
	return res
}

// sheetLinks reports each hyperlink by its location, else tooltip, else
// display text, cell reference or relationship id. Relationship targets are
// not followed, so external links show up by their cell label.
func sheetLinks(p *Package) []string {
	set := urls.Set{}
	for _, part := range p.Names("xl/worksheets/", ".xml") {
		var ws worksheetLinks
		p.Decode(part, &ws)
		for _, h := range ws.Hyperlinks {
			set.Add(firstNonEmpty(h.Location, h.Tooltip, h.Display, h.Ref, h.ID))
		}
	}
	return set.Sorted()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// legacySheetComments reads xl/comments*.xml: author id, cell, and the
// concatenated text runs.
func legacySheetComments(p *Package) []record.Comment {
	var comments []record.Comment
	for _, part := range p.Names("xl/comments", ".xml") {
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
			if !ok || se.Name.Space != nsSpreadsheet || se.Name.Local != "comment" {
				continue
			}
			comments = append(comments, record.Comment{
				Author:   attr(se, "", "authorId"),
				Location: attr(se, "", "ref"),
				Text:     elementText(dec, "t"),
			})
		}
	}
	return comments
}

// threadedSheetComments reads xl/threadedComments*.xml: person id, cell and
// the text attribute, falling back to the text element.
func threadedSheetComments(p *Package) []record.Comment {
	var comments []record.Comment
	for _, part := range p.Names("xl/threadedComments", ".xml") {
		var tc threadedComments
		p.Decode(part, &tc)
		for _, c := range tc.Comments {
			text := c.TextAttr
			if text == "" {
				text = c.Text
			}
			comments = append(comments, record.Comment{
				Author:   c.PersonID,
				Location: c.Ref,
				Text:     strings.TrimSpace(text),
			})
		}
	}
	return comments
}

package app

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-inspector/config"
	"doc-inspector/record"
)

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, a *Arguments)
	}{
		{
			name: "path only",
			args: []string{"report.pdf"},
			check: func(t *testing.T, a *Arguments) {
				assert.Equal(t, "report.pdf", a.Path)
				assert.Equal(t, config.Default(), a.Options)
				assert.False(t, a.JSON)
			},
		},
		{
			name: "flags and limits",
			args: []string{"--json", "--debug", "--max-inflate", "2048", "--max-part", "4096", "deck.pptx"},
			check: func(t *testing.T, a *Arguments) {
				assert.True(t, a.JSON)
				assert.True(t, a.Debug)
				assert.Equal(t, int64(2048), a.Options.MaxInflateBytes)
				assert.Equal(t, int64(4096), a.Options.MaxPartBytes)
				assert.Equal(t, "deck.pptx", a.Path)
			},
		},
		{
			name: "help",
			args: []string{"-h"},
			check: func(t *testing.T, a *Arguments) {
				assert.True(t, a.ShowHelp)
			},
		},
		{name: "limit below minimum", args: []string{"--max-part", "10", "a.docx"}, wantErr: true},
		{name: "limit not a number", args: []string{"--max-inflate", "lots", "a.pdf"}, wantErr: true},
		{name: "dangling flag", args: []string{"a.pdf", "--max-part"}, wantErr: true},
		{name: "unknown flag", args: []string{"--fast", "a.pdf"}, wantErr: true},
		{name: "two files", args: []string{"a.pdf", "b.pdf"}, wantErr: true},
		{name: "json and tui", args: []string{"--json", "--tui", "a.pdf"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseArguments(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, a)
		})
	}
}

func writeDocx(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := map[string]string{
		"word/document.xml": `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>` +
			`<w:p><w:hyperlink r:id="rId1"><w:r><w:t>x</w:t></w:r></w:hyperlink></w:p></w:body></w:document>`,
		"word/_rels/document.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://webhook.site/abc" TargetMode="External"/></Relationships>`,
	}
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	p := filepath.Join(t.TempDir(), "memo.docx")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}

func TestRunJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--json", writeDocx(t)}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var got struct {
		Format     string   `json:"format"`
		Links      []string `json:"links"`
		Indicators []string `json:"indicators"`
		Properties []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "WORD", got.Format)
	assert.Equal(t, []string{"https://webhook.site/abc"}, got.Links)
	assert.Equal(t, []string{"https://webhook.site/abc"}, got.Indicators)
	require.NotEmpty(t, got.Properties)
	assert.Equal(t, "file_size_bytes", got.Properties[0].Key)
}

func TestRunReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{writeDocx(t)}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "PROPERTIES")
	assert.Contains(t, out, "https://webhook.site/abc")
	assert.Contains(t, out, "[CANARY]")
	assert.Contains(t, out, "1 canary/tracking indicator found")
	assert.Contains(t, out, config.NoneFound)
}

func TestRunExitCodes(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run([]string{"--version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "doc-inspector v"+version)

	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"--nope"}, &stdout, &stderr))

	txt := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain"), 0o644))
	stderr.Reset()
	assert.Equal(t, 3, run([]string{txt}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unsupported")

	assert.Equal(t, 1, run([]string{filepath.Join(t.TempDir(), "gone.pdf")}, &stdout, &stderr))
}

func TestRunDebugLogs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(p, []byte("PK not a zip"), 0o644))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"--debug", p}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "WARN")
	assert.Contains(t, stderr.String(), "package unreadable")
	assert.Contains(t, stdout.String(), "WARNINGS")

	stderr.Reset()
	missing := filepath.Join(t.TempDir(), "gone.pdf")
	require.Equal(t, 1, run([]string{"--debug", missing}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "ERROR inspection failed file="+missing)
}

func TestBuildSections(t *testing.T) {
	rec := &record.DocumentRecord{
		Path:   "book.xlsx",
		Format: record.Spreadsheet,
		Properties: []record.Property{
			{Key: "sheet_count", Value: "1"},
		},
		Links: []string{
			"http://purl.org/dc/elements/1.1/",
			"https://go.microsoft.com/fwlink",
			"https://canarytokens.com/x",
		},
		Indicators: []string{"https://canarytokens.com/x"},
		Comments:   []record.Comment{{Author: "0", Location: "B2", Text: "check\ntotals"}},
		CustomXML:  []record.CustomXMLPart{{Name: "customXml/item1.xml", Content: config.UnreadablePart}},
		Sheets:     []string{"Data"},
	}

	secs := buildSections(rec, 100)
	var titles []string
	for _, s := range secs {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Properties", "URLs", "Images", "Comments", "Custom XML", "Sheets"}, titles)

	assert.Contains(t, secs[0].Body, "sheet_count")
	assert.NotContains(t, secs[1].Body, "purl.org")
	assert.Contains(t, secs[1].Body, "[MICROSOFT]")
	assert.Contains(t, secs[1].Body, "https://canarytokens.com/x")
	assert.Contains(t, secs[1].Body, "[CANARY]")
	assert.Contains(t, secs[2].Body, config.NoneFound)
	assert.Contains(t, secs[3].Body, "B2")
	assert.Contains(t, secs[3].Body, "totals")
	assert.Contains(t, secs[4].Body, config.UnreadablePart)
	assert.Contains(t, secs[5].Body, "Data")
}

func TestBuildSectionsPDF(t *testing.T) {
	rec := &record.DocumentRecord{Path: "a.pdf", Format: record.PDF, Warnings: []string{"structure: broken"}}
	secs := buildSections(rec, 100)
	var titles []string
	for _, s := range secs {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Properties", "URLs", "Images", "Comments", "Warnings"}, titles)
	assert.Contains(t, secs[1].Body, config.NoneFound)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 5))
	assert.Equal(t, "hé…", truncateRunes("héllo", 2))
}

func TestScrollWindow(t *testing.T) {
	content := "1\n2\n3\n4\n5"
	assert.Equal(t, "1\n2", scrollWindow(content, -3, 2))
	assert.Equal(t, "3\n4", scrollWindow(content, 2, 2))
	assert.Equal(t, "4\n5", scrollWindow(content, 99, 2))
	assert.Equal(t, content, scrollWindow(content, 1, 10))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelPaging(t *testing.T) {
	rec := &record.DocumentRecord{Path: "a.pdf", Format: record.PDF}
	var m tea.Model = newModel("a.pdf", config.Default())

	m, _ = m.Update(key("n"))
	assert.Equal(t, 0, m.(model).currentPage, "keys other than quit are ignored while loading")

	m, _ = m.Update(inspectResultMsg{rec: rec})
	mm := m.(model)
	assert.False(t, mm.loading)
	require.Len(t, mm.sections, 4)
	assert.Contains(t, mm.View(), "Properties (1 of 4)")

	m, _ = m.Update(key("n"))
	m, _ = m.Update(key("n"))
	assert.Equal(t, 2, m.(model).currentPage)
	m, _ = m.Update(key("p"))
	assert.Equal(t, 1, m.(model).currentPage)

	m, _ = m.Update(key("j"))
	assert.Equal(t, 1, m.(model).contentScroll)
	m, _ = m.Update(key("n"))
	assert.Equal(t, 0, m.(model).contentScroll)

	m, _ = m.Update(key("n"))
	m, _ = m.Update(key("n"))
	assert.Equal(t, 3, m.(model).currentPage)

	m, cmd := m.Update(key("enter"))
	assert.True(t, m.(model).quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelError(t *testing.T) {
	var m tea.Model = newModel("x.bin", config.Default())
	m, _ = m.Update(inspectResultMsg{err: errors.New("unsupported file type")})
	view := m.View()
	assert.True(t, strings.Contains(view, "Error: unsupported file type"))
}

func TestTerminalWidthFallsBackForNonTerminals(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, defaultReportWidth, terminalWidth(&buf))
}

func TestRenderReportRules(t *testing.T) {
	rec := &record.DocumentRecord{Path: "a.pdf", Format: record.PDF}
	out := renderReport(rec, 12)
	assert.Contains(t, out, strings.Repeat("━", 12))
	assert.Equal(t, 4, strings.Count(out, strings.Repeat("━", 12)))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "plain text", sanitize("plain text", false))
	assert.Equal(t, "a�[2J", sanitize("a\x1b[2J", false))
	assert.Equal(t, "x��y", sanitize("x\u009b\x7fy", false))
	assert.Equal(t, "one�two", sanitize("one\ntwo", false))
	assert.Equal(t, "one\ntwo three", sanitize("one\ntwo\tthree", true))
}

func TestRenderReportEscapesControlSequences(t *testing.T) {
	rec := &record.DocumentRecord{
		Path:       "evil\x1b]2;title\x07.docx",
		Format:     record.Word,
		Properties: []record.Property{{Key: "title", Value: "\x1b[31mred"}},
		Links:      []string{"http://evil.example/\x1b]0;pwned\x07"},
		Comments:   []record.Comment{{Author: "a\x1b[2J", Location: "B\x1b[H", Text: "line\x1b[1A\nnext"}},
		CustomXML:  []record.CustomXMLPart{{Name: "customXml/item1.xml", Content: "<x>\x1b[?1049h</x>", Readable: true}},
		Images:     []string{"word/media/\x1bimage.png"},
		Warnings:   []string{"package: \x1b[K"},
	}

	out := renderReport(rec, 100)
	for _, seq := range []string{"\x1b]0;pwned", "\x1b]2;", "\x07", "\x1b[2J", "\x1b[31mred", "\x1b[H", "\x1b[1A", "\x1b[?1049h", "\x1b[K", "\x1bimage"} {
		assert.NotContains(t, out, seq)
	}
	assert.Contains(t, out, "http://evil.example/�]0;pwned�")
	assert.Contains(t, out, "next")
}

func TestModelViewEscapesError(t *testing.T) {
	var m tea.Model = newModel("x\x1b[2J.bin", config.Default())
	m, _ = m.Update(inspectResultMsg{err: errors.New("bad \x1b]0;t\x07 file")})
	view := m.View()
	assert.NotContains(t, view, "\x1b]0;t")
	assert.NotContains(t, view, "\x1b[2J")
}

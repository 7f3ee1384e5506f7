package config

import (
	"path/filepath"
	"slices"
	"strings"
)

// PaperSize is a named standard page size in PDF points (portrait).
type PaperSize struct {
	Name   string
	Width  int
	Height int
}

// StandardSizes is the lookup table used for page size labels. Order matters:
// the first entry within tolerance wins.
var StandardSizes = []PaperSize{
	{"A0", 2384, 3370},
	{"A1", 1684, 2384},
	{"A2", 1191, 1684},
	{"A3", 842, 1191},
	{"A4", 595, 842},
	{"A5", 420, 595},
	{"A6", 298, 420},
	{"Letter", 612, 792},
	{"Legal", 612, 1008},
	{"Tabloid", 792, 1224},
}

// SizeTolerance is the allowed deviation, in points, for a standard size match.
const SizeTolerance = 3

// PDFMetaFields lists the document information dictionary keys reported for
// every PDF, in display order.
var PDFMetaFields = []string{
	"Title", "Author", "Subject", "Keywords", "Creator", "Producer",
	"CreationDate", "ModDate", "Trapped", "Custom", "Company", "SourceModified",
	"Category", "ContentType", "Language", "Identifier", "Format",
	"LastModifiedBy", "Revision", "Description",
}

// CanaryPatterns match hosts of canary tokens and common callback/tracking
// services. Matching is case-insensitive.
var CanaryPatterns = []string{
	`canarytokens\.(com|org|net)`,
	`(^|\.)canary\.tools$`,
	`(^|\.)webhook\.site$`,
	`(^|\.)interact\.sh$`,
	`(^|\.)oast\.(pro|live|site|online|fun|me)$`,
	`(^|\.)burpcollaborator\.net$`,
	`requestbin`,
	`(^|\.)pipedream\.net$`,
	`(^|\.)dnslog\.cn$`,
	`(^|\.)grabify\.link$`,
	`(^|\.)iplogger\.(org|com|ru|co)$`,
}

// TrailingURLJunk is trimmed from the end of a URL before classification.
const TrailingURLJunk = `)>.,;"'`

// VendorLabel annotates URLs containing Needle with Label.
type VendorLabel struct {
	Needle string
	Label  string
}

// VendorLabels are the well-known domains annotated in URL listings.
var VendorLabels = []VendorLabel{
	{"microsoft.com", "MICROSOFT"},
	{"adobe.com", "ADOBE"},
	{"w3.org", "W3 Org"},
}

// CanaryLabel is appended to URLs that look like canary tokens.
const CanaryLabel = "CANARY"

// IgnoredURLHosts are XML namespace hosts that never point at real content.
var IgnoredURLHosts = []string{"purl.org"}

// Signatures
var (
	PDFSignature = []byte("%PDF-")
	ZipSignature = []byte("PK")
	OLESignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Extensions per zip-based format, macro-enabled variants included.
var (
	WordExtensions         = []string{"docx", "docm"}
	PresentationExtensions = []string{"pptx", "pptm"}
	SpreadsheetExtensions  = []string{"xlsx", "xlsm"}
	LegacyWordExtensions   = []string{"doc"}
)

// MediaPrefixes maps an OOXML root folder to the archive prefix holding its
// embedded media.
var MediaPrefixes = map[string]string{
	"word": "word/media/",
	"ppt":  "ppt/media/",
	"xl":   "xl/media/",
}

// UnreadablePart is stored in place of custom XML content that could not be read.
const UnreadablePart = "(unreadable)"

// NoneFound marks an empty listing in reports.
const NoneFound = "(none found)"

// HasExtension reports whether filename ends in one of exts (without dot),
// case-insensitively.
func HasExtension(filename string, exts []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return slices.Contains(exts, ext)
}

// GetSupportedDescription returns a human-readable list of accepted inputs.
func GetSupportedDescription() string {
	var all []string
	all = append(all, "pdf")
	all = append(all, WordExtensions...)
	all = append(all, PresentationExtensions...)
	all = append(all, SpreadsheetExtensions...)
	all = append(all, LegacyWordExtensions...)
	return strings.Join(all, ", ")
}

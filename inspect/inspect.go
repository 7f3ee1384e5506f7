// Package inspect detects a file's container format and assembles the
// per-format extraction into one DocumentRecord.
package inspect

import (
	"errors"
	"fmt"
	"os"

	"doc-inspector/config"
	"doc-inspector/fileio"
	"doc-inspector/inspect/legacy"
	"doc-inspector/inspect/ooxml"
	"doc-inspector/inspect/pdfdoc"
	"doc-inspector/inspect/urls"
	"doc-inspector/logger"
	"doc-inspector/record"
)

// ErrUnsupported is returned when the file matches no known container.
var ErrUnsupported = errors.New("unsupported file type")

// Inspect detects the format of path and extracts everything it can. Only
// unsupported input and failures to read path itself are errors; everything
// else degrades to defaults and is listed in Warnings.
func Inspect(path string, opts config.Options) (*record.DocumentRecord, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}

	format := Detect(path)
	logger.Debug("format detected", "file", path, "format", format)

	rec := &record.DocumentRecord{Path: path, Format: format, FileSize: stat.Size()}
	rec.Properties = sizeProperties(stat.Size())

	switch format {
	case record.PDF:
		err = inspectPDF(path, opts, rec)
	case record.Word:
		fromPackage(rec, ooxml.Walk(path, opts, ooxml.Word))
	case record.Presentation:
		fromPackage(rec, ooxml.Walk(path, opts, ooxml.Presentation))
	case record.Spreadsheet:
		fromPackage(rec, ooxml.Walk(path, opts, ooxml.Spreadsheet))
	case record.LegacyWord:
		fromLegacy(rec, legacy.Inspect(path, opts))
	default:
		return nil, fmt.Errorf("%s: %w (supported: %s)", path, ErrUnsupported, config.GetSupportedDescription())
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func sizeProperties(size int64) []record.Property {
	var props record.Props
	props.AddInt("file_size_bytes", size)
	props.Add("file_size_human", HumanSize(size))
	return props
}

// inspectPDF runs the raw scan unconditionally and the object graph reader
// alongside it. A broken graph costs structure and metadata, never URLs.
func inspectPDF(path string, opts config.Options, rec *record.DocumentRecord) error {
	data, size, err := fileio.ReadAll(path, opts.MaxFileBytes)
	if err != nil {
		return err
	}
	if w := fileio.TruncationWarning(size, len(data)); w != "" {
		logger.Warn("pdf read capped", "file", path, "size", size, "read", len(data))
		rec.Warnings = append(rec.Warnings, w)
	}

	raw := pdfdoc.ScanRaw(data, opts.MaxInflateBytes)

	st, err := pdfdoc.ReadStructure(data)
	if err != nil {
		logger.Debug("pdf structure unreadable", "file", path, "err", err)
		rec.Warnings = append(rec.Warnings, "structure: "+err.Error())
	}
	annots := pdfdoc.LinkAnnotations(data)

	var props record.Props
	props.Add("pdf_version", st.Version)
	props.AddBool("is_encrypted", st.Encrypted)
	props.AddInt("num_pages", int64(st.Pages))
	props.Add("page_size", st.Sizes.String())
	rec.Properties = append(rec.Properties, props...)
	rec.Properties = append(rec.Properties, st.Metadata...)

	links := urls.Set{}
	links.Add(raw...)
	links.Add(annots...)
	rec.Links = links.Sorted()
	rec.Indicators = urls.Classify(rec.Links)
	return nil
}

func fromPackage(rec *record.DocumentRecord, res ooxml.Result) {
	rec.Properties = append(rec.Properties, res.Properties...)
	rec.Links = res.Links
	rec.Indicators = urls.Classify(res.Links)
	rec.Images = res.Images
	rec.Comments = res.Comments
	rec.CustomXML = res.CustomXML
	rec.Sheets = res.Sheets
	rec.HasMacros = res.HasMacros
	if res.Err != nil {
		rec.Warnings = append(rec.Warnings, "package: "+res.Err.Error())
	}
}

func fromLegacy(rec *record.DocumentRecord, res legacy.Result) {
	rec.Properties = append(rec.Properties, res.Properties...)
	rec.Links = res.Links
	rec.Indicators = urls.Classify(res.Links)
	rec.HasMacros = res.HasMacros
	rec.Warnings = append(rec.Warnings, res.Warnings...)
	if res.Err != nil {
		rec.Warnings = append(rec.Warnings, "compound file: "+res.Err.Error())
	}
}

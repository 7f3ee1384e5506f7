package inspect

import (
	"bytes"

	"doc-inspector/config"
	"doc-inspector/fileio"
	"doc-inspector/record"
)

const signatureLen = 8

// Detect classifies the file at path from its leading bytes and, for zip
// and compound files, its extension. Unreadable and empty files are
// Unsupported.
func Detect(path string) record.Format {
	head, err := fileio.ReadHead(path, signatureLen)
	if err != nil {
		return record.Unsupported
	}
	return detect(path, head)
}

func detect(path string, head []byte) record.Format {
	switch {
	case bytes.HasPrefix(head, config.PDFSignature):
		return record.PDF
	case bytes.HasPrefix(head, config.ZipSignature):
		switch {
		case config.HasExtension(path, config.WordExtensions):
			return record.Word
		case config.HasExtension(path, config.PresentationExtensions):
			return record.Presentation
		case config.HasExtension(path, config.SpreadsheetExtensions):
			return record.Spreadsheet
		}
	case bytes.HasPrefix(head, config.OLESignature):
		if config.HasExtension(path, config.LegacyWordExtensions) {
			return record.LegacyWord
		}
	}
	return record.Unsupported
}

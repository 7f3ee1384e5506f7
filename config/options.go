package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Options bound the amount of data a single inspection may read or inflate.
type Options struct {
	// MaxFileBytes caps whole-file reads (PDF raw scan, legacy streams).
	MaxFileBytes int64 `validate:"min=1024"`
	// MaxInflateBytes caps the output of a single decompressed stream.
	MaxInflateBytes int64 `validate:"min=1024"`
	// MaxPartBytes caps a single archive part read from an OOXML package.
	MaxPartBytes int64 `validate:"min=1024"`
}

// Default returns the options used by the CLI when no flag overrides them.
func Default() Options {
	return Options{
		MaxFileBytes:    512 << 20,
		MaxInflateBytes: 64 << 20,
		MaxPartBytes:    32 << 20,
	}
}

var validate = validator.New()

// Validate checks every bound against its tag.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

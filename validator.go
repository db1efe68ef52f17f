package delimtools

import (
	"fmt"

	"github.com/nao1215/delimtools/domain/model"
)

// validator checks operation parameters before any stream is opened
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validateReadOptions checks the dialect, page and row limit of a read
func (v *validator) validateReadOptions(opts ReadOptions) (model.Dialect, error) {
	dialect, err := opts.Dialect()
	if err != nil {
		return model.Dialect{}, err
	}
	if opts.Page != nil {
		if err := opts.Page.Validate(); err != nil {
			return model.Dialect{}, err
		}
	}
	if opts.RowLimit < 0 {
		return model.Dialect{}, fmt.Errorf("%w: the row limit must not be negative", ErrInvalidPageRequest)
	}
	return dialect, nil
}

// validateWrite checks the target and the dialect of a write
func (v *validator) validateWrite(target WriteTarget, opts WriteOptions) (model.Dialect, error) {
	if target.AppendToExisting {
		return model.Dialect{}, ErrAppendUnsupported
	}
	dialect, err := opts.Dialect()
	if err != nil {
		return model.Dialect{}, err
	}
	switch opts.Format {
	case OutputFormatDelimited, OutputFormatXLSX, OutputFormatParquet:
	default:
		return model.Dialect{}, fmt.Errorf("%w: output format %v", ErrUnsupportedFormat, opts.Format)
	}
	if opts.Compression == CompressionBZ2 {
		return model.Dialect{}, fmt.Errorf("%w: bzip2 compression is not supported for writing", ErrUnsupportedFormat)
	}
	return dialect, nil
}

package delimtools

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/delimtools/domain/model"
)

// HeaderMode selects where field names come from.
type HeaderMode int

const (
	// HeaderNone uses synthetic names c1..cN and treats every row as data
	HeaderNone HeaderMode = iota
	// HeaderAuto takes the names from the first row, normalized by model.NormalizeFieldName
	HeaderAuto
	// HeaderExplicit uses caller supplied names verbatim
	HeaderExplicit
)

// String returns the string representation of HeaderMode
func (m HeaderMode) String() string {
	switch m {
	case HeaderNone:
		return "none"
	case HeaderAuto:
		return "auto"
	case HeaderExplicit:
		return "explicit"
	default:
		return "none"
	}
}

// HeaderResolver determines the header of a read.
type HeaderResolver struct {
	Mode  HeaderMode
	Names []string
}

// Resolve reads from src as far as the mode needs and returns the header.
// In HeaderNone mode the first row is still data and is returned as pending;
// callers must yield it before the remaining rows of src.
func (h HeaderResolver) Resolve(src RowSource) (header model.Header, pending model.Row, err error) {
	switch h.Mode {
	case HeaderExplicit:
		return model.NewHeader(append([]string(nil), h.Names...)), nil, nil
	case HeaderAuto:
		first, err := src.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: no header row", ErrEmptySource)
		}
		if err != nil {
			return nil, nil, err
		}
		return model.NormalizeHeader(first), nil, nil
	default:
		first, err := src.Read()
		if errors.Is(err, io.EOF) {
			return model.Header{}, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return model.SyntheticHeader(len(first)), first, nil
	}
}

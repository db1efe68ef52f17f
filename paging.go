package delimtools

import (
	"io"

	"github.com/nao1215/delimtools/domain/model"
)

// skipper is implemented by sources that can discard rows without building them.
type skipper interface {
	Skip(n int) (int, error)
}

// PagingWindow restricts a RowSource to the rows selected by a PageRequest.
type PagingWindow struct {
	src       RowSource
	skip      int
	remaining int // negative means unbounded
	started   bool
}

// Window returns a PagingWindow over src. A nil page selects every row. limit caps an
// unbounded window when positive; an explicit batch size is never capped.
func Window(src RowSource, page *model.PageRequest, limit int) *PagingWindow {
	w := &PagingWindow{src: src, remaining: -1}
	if page != nil {
		w.skip = page.Skip()
		if !page.Unbounded() {
			w.remaining = page.BatchSize
		}
	}
	if w.remaining < 0 && limit > 0 {
		w.remaining = limit
	}
	return w
}

// Read returns the next row inside the window, or io.EOF after the last one.
func (w *PagingWindow) Read() (model.Row, error) {
	if !w.started {
		w.started = true
		if err := w.discard(); err != nil {
			return nil, err
		}
	}
	if w.remaining == 0 {
		return nil, io.EOF
	}
	row, err := w.src.Read()
	if err != nil {
		return nil, err
	}
	if w.remaining > 0 {
		w.remaining--
	}
	return row, nil
}

func (w *PagingWindow) discard() error {
	if w.skip == 0 {
		return nil
	}
	if s, ok := w.src.(skipper); ok {
		_, err := s.Skip(w.skip)
		return err
	}
	for range w.skip {
		if _, err := w.src.Read(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}

// prependRow yields row before the rows of src.
type prependRow struct {
	row  model.Row
	src  RowSource
	used bool
}

func (s *prependRow) Read() (model.Row, error) {
	if !s.used {
		s.used = true
		return s.row, nil
	}
	return s.src.Read()
}

// Skip implements skipper so a pending first row counts toward the offset.
func (s *prependRow) Skip(n int) (int, error) {
	skipped := 0
	if n > 0 && !s.used {
		s.used = true
		skipped = 1
	}
	if n-skipped <= 0 {
		return skipped, nil
	}
	if sk, ok := s.src.(skipper); ok {
		m, err := sk.Skip(n - skipped)
		return skipped + m, err
	}
	for skipped < n {
		if _, err := s.src.Read(); err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, err
		}
		skipped++
	}
	return skipped, nil
}

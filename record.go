package delimtools

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/nao1215/delimtools/domain/model"
)

// Projector is implemented by values that can be written as a row.
// Project returns the value's fields in their natural order.
type Projector interface {
	Project() ([]model.Field, error)
}

var _ Projector = model.Record{}

// Pair is a named value of a Pairs projection.
type Pair struct {
	Name  string
	Value any
}

// Pairs is an ordered list of name/value pairs. Values are converted with Stringify.
type Pairs []Pair

// Project implements Projector.
func (p Pairs) Project() ([]model.Field, error) {
	fields := make([]model.Field, len(p))
	for i, pair := range p {
		s, err := Stringify(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", pair.Name, err)
		}
		fields[i] = model.Field{Name: pair.Name, Value: s}
	}
	return fields, nil
}

// Values is a raw array of values. Its fields are named c1..cN.
type Values []any

// Project implements Projector.
func (v Values) Project() ([]model.Field, error) {
	names := model.SyntheticHeader(len(v))
	fields := make([]model.Field, len(v))
	for i, value := range v {
		s, err := Stringify(value)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		fields[i] = model.Field{Name: names[i], Value: s}
	}
	return fields, nil
}

// Stringify converts a scalar to its field text. nil becomes the empty string.
// Maps, slices, arrays and structs other than time.Time fail with ErrNestedValue.
func Stringify(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return x.String(), nil
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", nil
		}
		return Stringify(rv.Elem().Interface())
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Interface, reflect.Func, reflect.Chan:
		return "", fmt.Errorf("%w: %T", ErrNestedValue, v)
	default:
		return fmt.Sprint(v), nil
	}
}

// projection is the header and rows derived from a set of projectors.
type projection struct {
	header model.Header
	rows   []model.Row
}

// project converts sources to rows under the header policy of opts.
func project(sources []Projector, opts WriteOptions) (projection, error) {
	fields := make([][]model.Field, len(sources))
	for i, src := range sources {
		if src == nil {
			return projection{}, fmt.Errorf("%w: source object %d is nil", ErrNestedValue, i+1)
		}
		f, err := src.Project()
		if err != nil {
			return projection{}, fmt.Errorf("source object %d: %w", i+1, err)
		}
		fields[i] = f
	}

	var keys []string
	var p projection
	switch opts.HeaderMode {
	case HeaderExplicit:
		keys = opts.Header
		p.header = model.NewHeader(append([]string(nil), opts.Header...))
	case HeaderAuto:
		if len(fields) == 0 {
			return projection{}, ErrNoSourceObjects
		}
		keys = make([]string, len(fields[0]))
		p.header = make(model.Header, len(fields[0]))
		for i, f := range fields[0] {
			keys[i] = f.Name
			p.header[i] = f.Name
			if opts.AutoHeaderSpacing {
				p.header[i] = spaceFieldName(f.Name)
			}
		}
	}

	p.rows = make([]model.Row, len(fields))
	for i, f := range fields {
		p.rows[i] = rowFor(keys, f)
	}
	return p, nil
}

// rowFor extracts the values of keys from fields, first match wins and missing names
// become empty fields. A nil keys keeps the fields' own order.
func rowFor(keys []string, fields []model.Field) model.Row {
	if keys == nil {
		row := make(model.Row, len(fields))
		for i, f := range fields {
			row[i] = f.Value
		}
		return row
	}
	row := make(model.Row, len(keys))
	for i, key := range keys {
		for _, f := range fields {
			if f.Name == key {
				row[i] = f.Value
				break
			}
		}
	}
	return row
}

// spaceFieldName turns underscores into spaces for display headers.
func spaceFieldName(name string) string {
	b := []byte(name)
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}

package delimtools

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/delimtools/domain/model"
)

type celsius float64

type point struct{ X, Y int }

func TestStringify(t *testing.T) {
	t.Parallel()

	name := "alice"
	var nilPtr *int
	ts := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)

	tests := []struct {
		name    string
		value   any
		want    string
		wantErr error
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "a,b", want: "a,b"},
		{name: "bytes", value: []byte("raw"), want: "raw"},
		{name: "bool", value: true, want: "true"},
		{name: "int", value: 42, want: "42"},
		{name: "int64", value: int64(-7), want: "-7"},
		{name: "uint8", value: uint8(255), want: "255"},
		{name: "float64", value: 1.5, want: "1.5"},
		{name: "float32", value: float32(0.25), want: "0.25"},
		{name: "named float", value: celsius(21.5), want: "21.5"},
		{name: "time", value: ts, want: "2024-03-01T12:30:00.0000005Z"},
		{name: "stringer", value: netip.MustParseAddr("10.0.0.1"), want: "10.0.0.1"},
		{name: "pointer", value: &name, want: "alice"},
		{name: "nil pointer", value: nilPtr, want: ""},
		{name: "map", value: map[string]int{"a": 1}, wantErr: ErrNestedValue},
		{name: "slice", value: []int{1, 2}, wantErr: ErrNestedValue},
		{name: "struct", value: point{1, 2}, wantErr: ErrNestedValue},
		{name: "pointer to struct", value: &point{1, 2}, wantErr: ErrNestedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Stringify(tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPairsAndValues_Project(t *testing.T) {
	t.Parallel()

	fields, err := Pairs{{Name: "id", Value: 1}, {Name: "name", Value: "bob"}}.Project()
	require.NoError(t, err)
	assert.Equal(t, []model.Field{{Name: "id", Value: "1"}, {Name: "name", Value: "bob"}}, fields)

	fields, err = Values{"x", nil, 2.5}.Project()
	require.NoError(t, err)
	assert.Equal(t, []model.Field{{Name: "c1", Value: "x"}, {Name: "c2", Value: ""}, {Name: "c3", Value: "2.5"}}, fields)

	_, err = Pairs{{Name: "tags", Value: []string{"a"}}}.Project()
	assert.ErrorIs(t, err, ErrNestedValue)
	assert.ErrorContains(t, err, `field "tags"`)

	_, err = Values{map[string]any{}}.Project()
	assert.ErrorIs(t, err, ErrNestedValue)
}

type failingProjector struct{}

func (failingProjector) Project() ([]model.Field, error) {
	return nil, errors.New("cannot project")
}

func TestProject(t *testing.T) {
	t.Parallel()

	sources := []Projector{
		Pairs{{Name: "first_name", Value: "ann"}, {Name: "age", Value: 30}},
		Pairs{{Name: "age", Value: 41}, {Name: "extra", Value: "x"}},
		model.NewRecord(model.Field{Name: "first_name", Value: "cy"}, model.Field{Name: "first_name", Value: "dup"}),
	}

	t.Run("no header keeps each record's own order", func(t *testing.T) {
		t.Parallel()

		p, err := project(sources, NewWriteOptions())
		require.NoError(t, err)
		assert.Nil(t, p.header)
		assert.Equal(t, []model.Row{{"ann", "30"}, {"41", "x"}, {"cy", "dup"}}, p.rows)
	})

	t.Run("auto header takes the first record's names", func(t *testing.T) {
		t.Parallel()

		p, err := project(sources, NewWriteOptions().WithAutoHeader(true))
		require.NoError(t, err)
		assert.Equal(t, model.Header{"first_name", "age"}, p.header)
		assert.Equal(t, []model.Row{{"ann", "30"}, {"", "41"}, {"cy", ""}}, p.rows)
	})

	t.Run("auto header spacing changes only the header", func(t *testing.T) {
		t.Parallel()

		p, err := project(sources, NewWriteOptions().WithAutoHeader(true).WithAutoHeaderSpacing(true))
		require.NoError(t, err)
		assert.Equal(t, model.Header{"first name", "age"}, p.header)
		assert.Equal(t, model.Row{"ann", "30"}, p.rows[0])
	})

	t.Run("explicit header extracts by name", func(t *testing.T) {
		t.Parallel()

		p, err := project(sources, NewWriteOptions().WithHeader("extra", "age"))
		require.NoError(t, err)
		assert.Equal(t, model.Header{"extra", "age"}, p.header)
		assert.Equal(t, []model.Row{{"", "30"}, {"x", "41"}, {"", ""}}, p.rows)
	})

	t.Run("auto header needs a record", func(t *testing.T) {
		t.Parallel()

		_, err := project(nil, NewWriteOptions().WithAutoHeader(true))
		assert.ErrorIs(t, err, ErrNoSourceObjects)
	})

	t.Run("nil source", func(t *testing.T) {
		t.Parallel()

		_, err := project([]Projector{nil}, NewWriteOptions())
		assert.ErrorIs(t, err, ErrNestedValue)
	})

	t.Run("projection failure", func(t *testing.T) {
		t.Parallel()

		_, err := project([]Projector{failingProjector{}}, NewWriteOptions())
		assert.ErrorContains(t, err, "source object 1: cannot project")
	})
}

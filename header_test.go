package delimtools

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/delimtools/domain/model"
)

func TestHeaderResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		resolver    HeaderResolver
		input       string
		wantHeader  model.Header
		wantPending model.Row
		wantNext    model.Row
		wantErr     error
	}{
		{
			name:       "auto normalizes the first row",
			resolver:   HeaderResolver{Mode: HeaderAuto},
			input:      "First Name!,id\nbob,1\n",
			wantHeader: model.Header{"First_Name_", "id"},
			wantNext:   model.Row{"bob", "1"},
		},
		{
			name:     "auto on an empty source",
			resolver: HeaderResolver{Mode: HeaderAuto},
			input:    "",
			wantErr:  ErrEmptySource,
		},
		{
			name:       "explicit consumes nothing",
			resolver:   HeaderResolver{Mode: HeaderExplicit, Names: []string{"x y", "z"}},
			input:      "1,2\n",
			wantHeader: model.Header{"x y", "z"},
			wantNext:   model.Row{"1", "2"},
		},
		{
			name:        "none synthesizes names from the first row",
			resolver:    HeaderResolver{Mode: HeaderNone},
			input:       "a,b,c\nd\n",
			wantHeader:  model.Header{"c1", "c2", "c3"},
			wantPending: model.Row{"a", "b", "c"},
			wantNext:    model.Row{"d"},
		},
		{
			name:       "none on an empty source",
			resolver:   HeaderResolver{Mode: HeaderNone},
			input:      "",
			wantHeader: model.Header{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewRowParser(strings.NewReader(tt.input), defaultDialect(t))
			header, pending, err := tt.resolver.Resolve(p)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, header)
			assert.Equal(t, tt.wantPending, pending)

			next, err := p.Read()
			if tt.wantNext == nil {
				assert.ErrorIs(t, err, io.EOF)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNext, next)
		})
	}
}

func TestHeaderMode_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", HeaderNone.String())
	assert.Equal(t, "auto", HeaderAuto.String())
	assert.Equal(t, "explicit", HeaderExplicit.String())
}

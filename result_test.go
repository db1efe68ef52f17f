package delimtools

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/delimtools/domain/model"
)

func TestParseResult_JSON(t *testing.T) {
	t.Parallel()

	total := 7
	result := newParseResult([]model.Record{rec("b", "1", "a", "2")}, &total)
	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"values":[{"b":"1","a":"2"}],"linesParsed":1,"totalLines":7}`, string(b))

	result = newParseResult(nil, nil)
	b, err = json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"values":[],"linesParsed":0}`, string(b))

	failed := failedParse(ErrEmptySource, errors.New("wrapped"))
	b, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"errorMessage":"delimtools: empty data source"}`, string(b))
}

func TestRecord_JSONKeepsFieldOrder(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(rec("z", "1", "a", "2"))
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"2"}`, string(b))
}

func TestResults_ToMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  map[string]any
		want map[string]any
	}{
		{
			name: "write success",
			got:  (&WriteResult{Success: true, OutputDocument: "a.csv"}).ToMap(),
			want: map[string]any{"success": true, "outputDocument": "a.csv"},
		},
		{
			name: "write failure",
			got:  failedWrite(ErrAppendUnsupported, ErrAppendUnsupported).ToMap(),
			want: map[string]any{"success": false, "errorMessage": ErrAppendUnsupported.Error()},
		},
		{
			name: "text success",
			got:  (&TextResult{Success: true, Value: "a,b\n"}).ToMap(),
			want: map[string]any{"success": true, "value": "a,b\n"},
		},
		{
			name: "lines success",
			got:  (&LinesResult{Success: true, Values: []string{"x"}}).ToMap(),
			want: map[string]any{"success": true, "values": []string{"x"}},
		},
		{
			name: "lines failure",
			got:  (&LinesResult{ErrorMessage: "boom"}).ToMap(),
			want: map[string]any{"success": false, "errorMessage": "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDescribeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		prefix string
	}{
		{err: ErrStorageLimit, prefix: "storage limit exceeded: "},
		{err: ErrPermissionDenied, prefix: "permission denied: "},
		{err: ErrNameConflict, prefix: "name conflict: "},
		{err: ErrDuplicateIdentity, prefix: "duplicate document identity: "},
		{err: ErrNotFound, prefix: "invalid document: "},
		{err: ErrMalformedRow, prefix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.prefix+tt.err.Error(), describeError(tt.err))
		})
	}
}

func TestIOError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ioError(nil))

	raw := errors.New("broken pipe")
	assert.ErrorIs(t, ioError(raw), ErrIO)
	assert.ErrorIs(t, ioError(raw), raw)

	perr := &ParseError{Line: 3, Column: 1, Err: ErrMalformedRow}
	assert.Same(t, perr, ioError(perr))
	assert.Equal(t, ErrNotFound, ioError(ErrNotFound))
}

package delimtools

import (
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/delimtools/domain/model"
)

// alphabet is biased toward characters with a meaning in at least one dialect below.
var alphabet = []rune{'a', 'b', ' ', '\t', ',', ';', '|', '"', '\'', '\\', '~', '\n', '\r', 'é', '│'}

func randomRows(rng *rand.Rand) []model.Row {
	rows := make([]model.Row, 1+rng.IntN(8))
	for i := range rows {
		row := make(model.Row, 1+rng.IntN(5))
		for j := range row {
			var sb strings.Builder
			for range rng.IntN(7) {
				sb.WriteRune(alphabet[rng.IntN(len(alphabet))])
			}
			row[j] = sb.String()
		}
		rows[i] = row
	}
	return rows
}

func roundTrip(t *testing.T, d model.Dialect, rows []model.Row) []model.Row {
	t.Helper()

	var sb strings.Builder
	require.NoError(t, NewRowWriter(&sb, d).WriteAll(rows))

	var got []model.Row
	for row, err := range NewRowParser(strings.NewReader(sb.String()), d).All() {
		require.NoError(t, err, "encoded as %q", sb.String())
		got = append(got, row)
	}
	return got
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	dialects := map[string]model.Dialect{
		"comma with backslash escape": {Separator: ',', Quote: '"', Escape: '\\', QuoteMode: model.QuoteSelective},
		"rfc4180":                     model.RFC4180Dialect(),
		"quote all":                   {Separator: ';', Quote: '"', Escape: '\\', QuoteMode: model.QuoteAll},
		"tab with single quote":       {Separator: '\t', Quote: '\'', Escape: '~', QuoteMode: model.QuoteSelective},
		"multibyte separator":         {Separator: '│', Quote: '"', Escape: '"', QuoteMode: model.QuoteSelective, LineEnding: model.LineEndingDOS},
	}

	for name, d := range dialects {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewPCG(42, uint64(len(name))))
			for range 200 {
				rows := randomRows(rng)
				assert.Equal(t, rows, roundTrip(t, d, rows))
			}
		})
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add("a", "b,c", `"q"`)
	f.Add("", "\r\n", `\`)
	f.Add("x\ny", "é", "\"\"")

	d := model.Dialect{Separator: ',', Quote: '"', Escape: '\\', QuoteMode: model.QuoteSelective}
	f.Fuzz(func(t *testing.T, a, b, c string) {
		if !utf8.ValidString(a + b + c) {
			t.Skip("fields are text")
		}
		rows := []model.Row{{a, b}, {c}}
		var sb strings.Builder
		if err := NewRowWriter(&sb, d).WriteAll(rows); err != nil {
			t.Fatal(err)
		}

		p := NewRowParser(strings.NewReader(sb.String()), d)
		for i, want := range rows {
			got, err := p.Read()
			if err != nil {
				t.Fatalf("row %d of %q: %v", i, sb.String(), err)
			}
			if !got.Equal(want) {
				t.Fatalf("row %d of %q: got %q, want %q", i, sb.String(), got, want)
			}
		}
	})
}

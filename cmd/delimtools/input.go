package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/delimtools"
)

// decodeSources reads a JSON array of records. An object becomes Pairs in key order
// and an array becomes Values. Numbers keep their literal text.
func decodeSources(r io.Reader) ([]delimtools.Projector, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var sources []delimtools.Projector
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid input record %d: %w", len(sources)+1, err)
		}
		switch tok {
		case json.Delim('{'):
			pairs, err := decodePairs(dec)
			if err != nil {
				return nil, fmt.Errorf("invalid input record %d: %w", len(sources)+1, err)
			}
			sources = append(sources, pairs)
		case json.Delim('['):
			values, err := decodeValues(dec)
			if err != nil {
				return nil, fmt.Errorf("invalid input record %d: %w", len(sources)+1, err)
			}
			sources = append(sources, values)
		default:
			return nil, fmt.Errorf("invalid input record %d: expected an object or an array, got %v", len(sources)+1, tok)
		}
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return sources, nil
}

// decodePairs reads the members of an object whose opening brace was consumed.
func decodePairs(dec *json.Decoder) (delimtools.Pairs, error) {
	pairs := delimtools.Pairs{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		pairs = append(pairs, delimtools.Pair{Name: name, Value: value})
	}
	return pairs, expectDelim(dec, '}')
}

// decodeValues reads the elements of an array whose opening bracket was consumed.
func decodeValues(dec *json.Decoder) (delimtools.Values, error) {
	values := delimtools.Values{}
	for dec.More() {
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, expectDelim(dec, ']')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	if tok != want {
		return fmt.Errorf("invalid input: expected %v, got %v", want, tok)
	}
	return nil
}

package family

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// =============================================================================
// Record Serialization API
// =============================================================================

// MarshalPeople converts people to the persisted JSON array format.
func MarshalPeople(people []Person) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePeople(people, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePeople writes people as an indented JSON array to w.
// A nil slice is written as an empty array.
func WritePeople(people []Person, w io.Writer) error {
	if people == nil {
		people = []Person{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(people); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// UnmarshalPeople decodes a persisted JSON array of people.
func UnmarshalPeople(data []byte) ([]Person, error) {
	return ReadPeople(bytes.NewReader(data))
}

// ReadPeople decodes a persisted JSON array of people from r.
// Empty input decodes to an empty collection. Anything but whitespace after
// the array is an error, so a truncated or overwritten file never loads.
func ReadPeople(r io.Reader) ([]Person, error) {
	dec := json.NewDecoder(r)
	var people []Person
	if err := dec.Decode(&people); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode: unexpected data after people array (offset %d)", dec.InputOffset())
	}
	return people, nil
}

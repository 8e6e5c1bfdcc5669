package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a dataset from JSON. Unknown fields are rejected so typos in
// hand-edited files surface at load time.
func (c *JSONCodec) Parse(r io.Reader) (*Dataset, error) {
	var ds Dataset
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &ds, nil
}

// Export writes the dataset as indented JSON
func (c *JSONCodec) Export(ds *Dataset, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(ds); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

package codec

import (
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml/v2"
)

// TOMLCodec handles TOML import/export
type TOMLCodec struct{}

// NewTOMLCodec creates a new TOML codec
func NewTOMLCodec() *TOMLCodec {
	return &TOMLCodec{}
}

// Format returns the codec format identifier
func (c *TOMLCodec) Format() string {
	return "toml"
}

// Parse reads a dataset from TOML, rejecting unknown keys
func (c *TOMLCodec) Parse(r io.Reader) (*Dataset, error) {
	var ds Dataset
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &ds, nil
}

// Export writes the dataset as TOML
func (c *TOMLCodec) Export(ds *Dataset, w io.Writer) error {
	encoder := toml.NewEncoder(w)
	encoder.SetIndentTables(true)

	if err := encoder.Encode(ds); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}

	return nil
}

package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Importer interface for reading a dataset from one wire format
type Importer interface {
	Parse(r io.Reader) (*Dataset, error)
	Format() string
}

// Exporter interface for writing a dataset to one wire format
type Exporter interface {
	Export(ds *Dataset, w io.Writer) error
	Format() string
}

// Codec reads and writes the same format
type Codec interface {
	Importer
	Exporter
}

// Formats lists the supported format identifiers
func Formats() []string {
	return []string{"yaml", "json", "toml"}
}

// ForFormat returns the codec for a format identifier
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	case "toml":
		return NewTOMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}

// ForPath picks the codec from a file extension
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot infer dataset format from %q", path)
	}
	return ForFormat(ext)
}

package circuitfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

// Format is an on-disk snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*circuit.Graph, *Snapshot, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, nil, fmt.Errorf("unsupported format %q", format)
}

// Encode serializes a snapshot in the given format. JSON output is indented.
func Encode(s *Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(s, true)
	case FormatYAML:
		return ToYAML(s)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// ReadFile loads a snapshot file, choosing the format by extension.
func ReadFile(path string) (*circuit.Graph, *Snapshot, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Decode(data, format)
}

// WriteFile exports g to path, choosing the format by extension.
func WriteFile(path string, g *circuit.Graph, name string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(Export(g, name, time.Now()), format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// NameFromPath derives a circuit name from a file name.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

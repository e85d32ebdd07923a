package manifest

import (
	"encoding/json"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/reqstack/pkg/errors"
)

// Machine-readable output formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// ValidFormats is the set of formats accepted by Encode.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatTOML: true,
	FormatYAML: true,
}

// Encode writes v (usually a *Result) to w in the given format. TOML needs v
// to encode as a table.
func Encode(w io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, toml, yaml)", format)
	}
}

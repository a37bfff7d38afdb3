package overlay

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/skekre98/bundlecfg/config"
)

// Output formats accepted by Encode and EncodeValue.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes m to w as indented JSON or YAML. Keys are sorted in both
// formats, so equal mappings always encode to the same bytes.
func Encode(w io.Writer, m config.Mapping, format string) error {
	return EncodeValue(w, m.ToMap(), format)
}

// EncodeValue writes v to w in format using the same encoder settings as
// Encode: two-space indentation and no HTML escaping in JSON. An empty
// format means JSON.
func EncodeValue(w io.Writer, v any, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

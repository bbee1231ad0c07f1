package vex

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ortelius/guac-vex/model"
	"gopkg.in/yaml.v2"
)

// Output formats understood by Encode
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes doc to w as indented JSON or YAML
func Encode(w io.Writer, doc *model.VexDocument, format string) error {
	switch format {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// printStructured writes v as indented JSON or YAML. YAML keys follow the
// JSON field names.
func printStructured(out io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	switch format {
	case outputJSON:
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	case outputYAML:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		y, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = out.Write(y)
		return err
	default:
		return fmt.Errorf("unknown output format %q (text, json, yaml)", format)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decisionlab/dagraph/internal/graph"
)

// render writes v to w in the selected output format.
func render(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (expected json or yaml)", format)
	}
}

// parseProperties turns key=value arguments into an ordered property bag.
// "key=" sets an empty value; "key" alone sets nil.
func parseProperties(args []string) (graph.Properties, error) {
	props := make(graph.Properties, 0, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid property %q (expected key=value)", arg)
		}
		if !found {
			props = props.Set(key, nil)
			continue
		}
		props = props.Set(key, parseValue(value))
	}
	return props, nil
}

// parseValue decodes JSON lists and objects; everything else stays a string.
func parseValue(s string) any {
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

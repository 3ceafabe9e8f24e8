package scaffold

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// MergeSettings deep-merges incoming JSON settings into existing ones.
// Objects merge key by key and recursively; any other value in incoming
// replaces the existing one. When existing is not a JSON object, incoming
// is returned unchanged.
func MergeSettings(existing, incoming []byte) ([]byte, error) {
	var update map[string]any
	if err := json.Unmarshal(incoming, &update); err != nil {
		return nil, fmt.Errorf("parsing template settings: %w", err)
	}

	var base map[string]any
	if err := json.Unmarshal(existing, &base); err != nil || base == nil {
		return incoming, nil
	}

	merged := deepMerge(base, update)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(merged); err != nil {
		return nil, fmt.Errorf("encoding merged settings: %w", err)
	}
	return buf.Bytes(), nil
}

func deepMerge(base, update map[string]any) map[string]any {
	for k, v := range update {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := base[k].(map[string]any); ok {
				base[k] = deepMerge(existing, sub)
				continue
			}
		}
		base[k] = v
	}
	return base
}

// mergedSettings returns the template settings at from merged over the
// existing settings at to.
func mergedSettings(from, to string) ([]byte, error) {
	incoming, err := os.ReadFile(from)
	if err != nil {
		return nil, err
	}
	existing, err := os.ReadFile(to)
	if err != nil {
		return nil, err
	}
	return MergeSettings(existing, incoming)
}

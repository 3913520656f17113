// Package content decodes decrypted vault plaintext into structured data.
package content

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

// Format names the plaintext encoding of a vault.
type Format string

const (
	// FormatYAML decodes YAML, and JSON as a subset of it.
	FormatYAML Format = "yaml"
	// FormatDotenv decodes KEY=VALUE lines.
	FormatDotenv Format = "dotenv"
	// FormatTOML decodes TOML documents.
	FormatTOML Format = "toml"
	// FormatAuto picks a format from the vault file name.
	FormatAuto Format = "auto"
)

// extensionFormats maps file extensions to formats for FormatAuto
var extensionFormats = map[string]Format{
	".yaml":   FormatYAML,
	".yml":    FormatYAML,
	".json":   FormatYAML,
	".env":    FormatDotenv,
	".dotenv": FormatDotenv,
	".toml":   FormatTOML,
}

// FormatForPath picks a format from the extension of path, ignoring a trailing
// ".vault" so that "secrets.env.vault" decodes as dotenv. Unknown extensions are YAML.
func FormatForPath(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, ".vault")

	if format, ok := extensionFormats[filepath.Ext(name)]; ok {
		return format
	}
	return FormatYAML
}

// ParseFormat maps a user supplied name to a Format. Empty selects YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yaml", "yml", "json":
		return FormatYAML, nil
	case "dotenv", "env":
		return FormatDotenv, nil
	case "toml":
		return FormatTOML, nil
	case "auto":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("unsupported content format: %s", name)
	}
}

// Decode turns plaintext into a mapping. Empty plaintext yields an empty map.
// Nested values are normalized so the result always marshals to JSON.
func Decode(plaintext []byte, format Format) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(plaintext)) == 0 {
		return map[string]interface{}{}, nil
	}

	switch format {
	case FormatYAML, "":
		return decodeYAML(plaintext)
	case FormatDotenv:
		return decodeDotenv(plaintext)
	case FormatTOML:
		return decodeTOML(plaintext)
	default:
		return nil, fmt.Errorf("unsupported content format: %s", format)
	}
}

// decodeYAML decodes YAML content and requires a mapping at the top level
func decodeYAML(plaintext []byte) (map[string]interface{}, error) {
	var raw interface{}
	if err := yaml.Unmarshal(plaintext, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if raw == nil {
		return map[string]interface{}{}, nil
	}

	m, ok := Normalize(raw).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("top-level value is %T, not a mapping", raw)
	}
	return m, nil
}

// decodeDotenv decodes KEY=VALUE content into a flat map of strings
func decodeDotenv(plaintext []byte) (map[string]interface{}, error) {
	envMap, err := godotenv.Unmarshal(string(plaintext))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dotenv: %w", err)
	}

	out := make(map[string]interface{}, len(envMap))
	for k, v := range envMap {
		out[k] = v
	}
	return out, nil
}

// decodeTOML decodes TOML content; TOML documents are always tables
func decodeTOML(plaintext []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(plaintext, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if raw == nil {
		return map[string]interface{}{}, nil
	}
	return Normalize(raw).(map[string]interface{}), nil
}

// Normalize converts map[interface{}]interface{} values produced by yaml.v2
// into map[string]interface{} recursively. Other values are returned as is.
func Normalize(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, val := range typed {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, val := range typed {
			out[k] = Normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, val := range typed {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

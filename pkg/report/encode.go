package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shamaton/msgpack/v2"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatYAML, FormatMsgpack}
}

// Write renders s to w in the named format.
func Write(w io.Writer, format string, s *Summary) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, s)
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatYAML:
		return WriteYAML(w, s)
	case FormatMsgpack:
		return WriteMsgpack(w, s)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// WriteJSON writes s as indented JSON.
func WriteJSON(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(s)
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// WriteYAML writes s as a YAML document.
func WriteYAML(w io.Writer, s *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(s)
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("flush yaml report: %w", err)
	}

	return nil
}

// WriteMsgpack writes s as MessagePack. Undefined values keep their NaN
// representation.
func WriteMsgpack(w io.Writer, s *Summary) error {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode msgpack report: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write msgpack report: %w", err)
	}

	return nil
}

// ReadMsgpack decodes a report written by [WriteMsgpack].
func ReadMsgpack(data []byte) (*Summary, error) {
	var s Summary

	err := msgpack.Unmarshal(data, &s)
	if err != nil {
		return nil, fmt.Errorf("decode msgpack report: %w", err)
	}

	return &s, nil
}

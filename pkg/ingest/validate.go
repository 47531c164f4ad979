package ingest

import (
	_ "embed"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})

	return schema, schemaErr
}

// validate checks a generically decoded document against the embedded schema.
func validate(raw any) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load ensemble schema: %w", err)
	}

	result, err := sch.Validate(gojsonschema.NewGoLoader(normalize(raw)))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, verr.String())
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
}

// normalize rewrites YAML-decoded values into a JSON-encodable tree.
// Non-finite floats become null and map keys become strings.
func normalize(node any) any {
	switch typed := node.(type) {
	case float64:
		if math.IsInf(typed, 0) || math.IsNaN(typed) {
			return nil
		}

		return typed
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalize(v)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalize(v)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalize(v)
		}

		return out
	default:
		return typed
	}
}

// Package ingest decodes ensemble documents: a named set of realization
// series in YAML or JSON, optionally LZ4 compressed.
//
//	name: FOPT
//	series:
//	  - name: realization-0
//	    values: [1.0, .inf, 3.5, null]
//
// Missing values (null, ~ or .inf) are translated at ingestion into undefined
// [ensemble.Sample] values, so the legacy sentinel never reaches arithmetic.
// A bare sequence of numbers is accepted as a single anonymous series.
package ingest

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
)

// Sentinel errors for document decoding.
var (
	ErrEmptyDocument   = errors.New("ensemble document has no series")
	ErrSchemaViolation = errors.New("ensemble document violates schema")
)

// defaultSeriesName names the series of a bare value sequence.
const defaultSeriesName = "values"

// Series is one realization vector.
type Series struct {
	Name   string     `json:"name"   yaml:"name"`
	Values []*float64 `json:"values" yaml:"values"`
}

// Samples translates the series through [ensemble.Ingest]. Missing entries
// and non-finite values become undefined samples.
func (s Series) Samples() []ensemble.Sample {
	raw := make([]float64, len(s.Values))

	for i, v := range s.Values {
		if v == nil {
			raw[i] = ensemble.Undefined

			continue
		}

		raw[i] = *v
	}

	return ensemble.Ingest(raw)
}

// Document is a decoded ensemble.
type Document struct {
	Name   string   `json:"name"   yaml:"name"`
	Series []Series `json:"series" yaml:"series"`
}

// Flatten pools every series into a single sample set.
func (d *Document) Flatten() []ensemble.Sample {
	total := 0
	for _, s := range d.Series {
		total += len(s.Values)
	}

	out := make([]ensemble.Sample, 0, total)
	for _, s := range d.Series {
		out = append(out, s.Samples()...)
	}

	return out
}

// Realizations returns one sample vector per series, in document order.
func (d *Document) Realizations() [][]ensemble.Sample {
	out := make([][]ensemble.Sample, len(d.Series))

	for i, s := range d.Series {
		out[i] = s.Samples()
	}

	return out
}

// SampleCount returns the total and undefined sample counts across all series.
func (d *Document) SampleCount() (total, undefined int) {
	for _, s := range d.Series {
		for _, v := range s.Values {
			total++

			if v == nil || !ensemble.IsValid(*v) {
				undefined++
			}
		}
	}

	return total, undefined
}

// Parse validates and decodes an uncompressed YAML or JSON document.
func Parse(data []byte) (*Document, error) {
	var raw any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse ensemble document: %w", err)
	}

	switch raw.(type) {
	case nil:
		return nil, ErrEmptyDocument
	case []any:
		return parseSequence(data)
	}

	err = validate(raw)
	if err != nil {
		return nil, err
	}

	var doc Document

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode ensemble document: %w", err)
	}

	if len(doc.Series) == 0 {
		return nil, ErrEmptyDocument
	}

	return &doc, nil
}

func parseSequence(data []byte) (*Document, error) {
	var values []*float64

	err := yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	return &Document{Series: []Series{{Name: defaultSeriesName, Values: values}}}, nil
}

// FromValues wraps raw samples as a single-series document. Non-finite
// values are stored as missing.
func FromValues(name string, values []float64) *Document {
	ptrs := make([]*float64, len(values))

	for i := range values {
		if math.IsInf(values[i], 0) || math.IsNaN(values[i]) {
			continue
		}

		ptrs[i] = &values[i]
	}

	return &Document{Name: name, Series: []Series{{Name: defaultSeriesName, Values: ptrs}}}
}

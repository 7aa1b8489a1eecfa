// Package render writes graph artifacts for downstream consumption: a
// deterministic JSON form for snapshot comparison and a Graphviz DOT form
// for visualization.
package render

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/exmap-dev/exmap/internal/graph"
)

// EncodeJSON writes the artifacts as indented JSON. Field order is fixed by
// the struct definitions and every array order is fixed by the builder, so
// identical inputs produce byte-identical output.
func EncodeJSON(w io.Writer, res *graph.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// MarshalJSON returns the same bytes EncodeJSON writes.
func MarshalJSON(res *graph.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package reporting

import (
	"encoding/json"
	"io"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/analysis"
)

// Document is the JSON shape of a report.
type Document struct {
	*cachesim.Result
	Analysis *analysis.Metrics  `json:"analysis,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// WriteJSON writes res, and m when non-nil, as indented JSON.
func WriteJSON(w io.Writer, res *cachesim.Result, m *analysis.Metrics) error {
	return WriteDocument(w, Document{Result: res, Analysis: m})
}

// WriteDocument writes doc as indented JSON.
func WriteDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

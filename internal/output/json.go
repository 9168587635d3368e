package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/davetashner/gloss/internal/langdetect"
	"github.com/davetashner/gloss/internal/orchestrator"
)

func init() {
	RegisterFormatter(NewJSONFormatter())
}

// JSONDocument is the json format: the analysis plus the language's display
// name.
type JSONDocument struct {
	*orchestrator.Analysis
	LanguageName string `json:"languageName"`
}

// JSONFormatter writes an analysis as a JSON document.
type JSONFormatter struct {
	// Compact controls whether output is compact (single line) or pretty-printed.
	// When false (default), output is indented with two spaces.
	Compact bool
}

var _ Formatter = (*JSONFormatter)(nil)

// NewJSONFormatter returns a new JSONFormatter with default settings.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes a as a JSON document to w.
func (f *JSONFormatter) Format(a *orchestrator.Analysis, w io.Writer) error {
	doc := JSONDocument{Analysis: a, LanguageName: langdetect.Name(a.Language)}
	enc := json.NewEncoder(w)
	if !f.Compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}
	return nil
}

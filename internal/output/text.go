package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/davetashner/gloss/internal/orchestrator"
	"github.com/davetashner/gloss/internal/prompt"
)

func init() {
	RegisterFormatter(NewTextFormatter())
}

// TextFormatter writes the localized title followed by the answer, as shown
// in the extension's panel.
type TextFormatter struct {
	title *color.Color
}

var _ Formatter = (*TextFormatter)(nil)

// NewTextFormatter returns a TextFormatter with a bold title.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{title: color.New(color.Bold)}
}

// Name returns the format name.
func (f *TextFormatter) Name() string { return "text" }

// Format writes a's title and result to w.
func (f *TextFormatter) Format(a *orchestrator.Analysis, w io.Writer) error {
	if _, err := f.title.Fprintln(w, prompt.Title(a.Language)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", a.Result)
	return err
}

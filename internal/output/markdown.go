// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/davetashner/gloss/internal/orchestrator"
	"github.com/davetashner/gloss/internal/prompt"
)

func init() {
	RegisterFormatter(NewMarkdownFormatter())
}

// MarkdownFormatter writes an analysis as a note suitable for pasting into a
// notebook: heading, quoted source text, answer, provenance.
type MarkdownFormatter struct{}

var _ Formatter = (*MarkdownFormatter)(nil)

// NewMarkdownFormatter returns a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Name returns the format name.
func (m *MarkdownFormatter) Name() string {
	return "markdown"
}

// Format writes a as Markdown to w.
func (m *MarkdownFormatter) Format(a *orchestrator.Analysis, w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", prompt.Title(a.Language))
	for _, line := range strings.Split(strings.TrimSpace(a.OriginalText), "\n") {
		fmt.Fprintf(&b, "> %s\n", line)
	}
	fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(a.Result))

	var meta []string
	if a.URL != "" {
		meta = append(meta, fmt.Sprintf("[source](%s)", a.URL))
	}
	if !a.Timestamp.IsZero() {
		meta = append(meta, a.Timestamp.UTC().Format(time.RFC3339))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "\n---\n%s\n", strings.Join(meta, " · "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

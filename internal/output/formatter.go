// Package output defines the Formatter interface for writing analyses in
// various formats.
package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/davetashner/gloss/internal/orchestrator"
)

// Formatter writes an analysis to the given writer in a specific format.
type Formatter interface {
	// Name returns the format name (e.g., "text", "json", "markdown").
	Name() string

	// Format writes a to w.
	Format(a *orchestrator.Analysis, w io.Writer) error
}

var (
	fmtMu       sync.RWMutex
	fmtRegistry = make(map[string]Formatter)
)

// RegisterFormatter adds a formatter to the global registry.
func RegisterFormatter(f Formatter) {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry[f.Name()] = f
}

// GetFormatter returns the formatter with the given name, or an error if not found.
func GetFormatter(name string) (Formatter, error) {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	f, ok := fmtRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %q (available: %s)", name, formatNames())
	}
	return f, nil
}

// Names returns the registered format names, sorted.
func Names() []string {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	return sortedNames()
}

// resetFmtForTesting clears the formatter registry. Only for use in tests.
func resetFmtForTesting() {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry = make(map[string]Formatter)
}

// formatNames returns a comma-separated sorted list of registered format
// names. Callers hold fmtMu.
func formatNames() string {
	return strings.Join(sortedNames(), ", ")
}

func sortedNames() []string {
	names := make([]string, 0, len(fmtRegistry))
	for name := range fmtRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

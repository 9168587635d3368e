package bootstrap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// mcpServerName is the key gloss registers under mcpServers.
const mcpServerName = "gloss"

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// mcpServerEntry is the gloss MCP server configuration.
type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// GenerateMCPConfig creates or updates <dir>/.mcp.json with a gloss server
// entry. It only acts when an agent workspace (.claude/) is present, and it
// keeps every other server entry as is.
func GenerateMCPConfig(dir string) (Action, error) {
	if _, err := FS.Stat(filepath.Join(dir, ".claude")); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Action{
				File:        ".mcp.json",
				Operation:   "skipped",
				Description: "no .claude/ directory found",
			}, nil
		}
		return Action{}, fmt.Errorf("checking .claude directory: %w", err)
	}

	mcpPath := filepath.Join(dir, ".mcp.json")
	cfg := mcpConfig{MCPServers: map[string]json.RawMessage{}}
	op := "created"

	existing, err := FS.ReadFile(mcpPath)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(existing, &cfg); jsonErr != nil {
			return Action{}, fmt.Errorf("parsing .mcp.json: %w", jsonErr)
		}
		if _, ok := cfg.MCPServers[mcpServerName]; ok {
			return Action{
				File:        ".mcp.json",
				Operation:   "skipped",
				Description: "gloss MCP server already configured",
			}, nil
		}
		if cfg.MCPServers == nil {
			cfg.MCPServers = map[string]json.RawMessage{}
		}
		op = "updated"
	case !errors.Is(err, fs.ErrNotExist):
		return Action{}, fmt.Errorf("reading .mcp.json: %w", err)
	}

	entry, err := json.Marshal(mcpServerEntry{
		Command: "gloss",
		Args:    []string{"mcp", "serve"},
	})
	if err != nil {
		return Action{}, fmt.Errorf("marshaling MCP server entry: %w", err)
	}
	cfg.MCPServers[mcpServerName] = entry

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return Action{}, fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	data = append(data, '\n')

	if err := FS.WriteFile(mcpPath, data, 0o644); err != nil {
		return Action{}, fmt.Errorf("writing .mcp.json: %w", err)
	}

	return Action{
		File:        ".mcp.json",
		Operation:   op,
		Description: "registered gloss MCP server",
	}, nil
}

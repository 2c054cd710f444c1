package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MCPConfigFile is the project-level MCP server list read by Claude Code.
const MCPConfigFile = ".mcp.json"

// mcpServerName is the key of this tool's entry under "mcpServers".
const mcpServerName = "dontreadme"

var mcpEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "dontreadme",
  "args": ["serve-mcp"]
}`)

// RegisterMCP adds the dontreadme server to root/.mcp.json, creating the
// file if needed. Other servers and top-level keys are kept. An existing
// entry is only replaced when force is set.
func RegisterMCP(root string, force bool) (Action, error) {
	p := filepath.Join(root, MCPConfigFile)

	top := map[string]json.RawMessage{}
	servers := map[string]json.RawMessage{}
	data, err := os.ReadFile(p)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if exists {
		if err := json.Unmarshal(data, &top); err != nil {
			return "", fmt.Errorf("parse %s: %w", MCPConfigFile, err)
		}
		if raw, ok := top["mcpServers"]; ok {
			if err := json.Unmarshal(raw, &servers); err != nil {
				return "", fmt.Errorf("parse %s mcpServers: %w", MCPConfigFile, err)
			}
		}
	}
	// a literal null decodes to a nil map
	if top == nil {
		top = map[string]json.RawMessage{}
	}
	if servers == nil {
		servers = map[string]json.RawMessage{}
	}
	if _, ok := servers[mcpServerName]; ok && !force {
		return ActionUnchanged, nil
	}
	servers[mcpServerName] = mcpEntry

	raw, err := json.Marshal(servers)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", MCPConfigFile, err)
	}
	top["mcpServers"] = raw
	out, err := json.MarshalIndent(top, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", MCPConfigFile, err)
	}
	if err := os.WriteFile(p, append(out, '\n'), 0o644); err != nil {
		return "", err
	}
	if exists {
		return ActionUpdated, nil
	}
	return ActionAdded, nil
}

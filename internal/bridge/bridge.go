// Package bridge points AI assistant instruction files at the generated
// artifacts. A delimited block is kept in each instruction file that already
// exists in the project; files are never created.
package bridge

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
)

// Tool names an AI assistant.
type Tool string

const (
	ToolClaudeCode Tool = "claude-code"
	ToolCursor     Tool = "cursor"
	ToolCopilot    Tool = "copilot"
	ToolWindsurf   Tool = "windsurf"
	ToolCodex      Tool = "codex"
)

// Target lists the instruction files an assistant reads, relative to the
// project root.
type Target struct {
	Tool  Tool
	Files []string
}

// Targets are checked in this order.
var Targets = []Target{
	{ToolClaudeCode, []string{"CLAUDE.md", ".claude/CLAUDE.md"}},
	{ToolCursor, []string{".cursorrules"}},
	{ToolCopilot, []string{".github/copilot-instructions.md"}},
	{ToolWindsurf, []string{".windsurfrules"}},
	{ToolCodex, []string{"AGENTS.md"}},
}

// Block delimiters. Everything between them, inclusive, belongs to the tool.
const (
	BeginMarker = "<!-- dontreadme:begin -->"
	EndMarker   = "<!-- dontreadme:end -->"
)

var errUnterminated = errors.New("block start marker without end marker")

// File is a detected instruction file.
type File struct {
	Tool Tool
	Path string // slash path relative to the project root
}

// Detect returns the instruction files present under root.
func Detect(root string) ([]File, error) {
	var out []File
	for _, t := range Targets {
		for _, name := range t.Files {
			info, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if info.Mode().IsRegular() {
				out = append(out, File{Tool: t.Tool, Path: name})
			}
		}
	}
	return out, nil
}

var descriptions = map[pipeline.Analysis]string{
	pipeline.AnalysisArchitecture:    "components, their types, dependencies and layers",
	pipeline.AnalysisDependencyGraph: "file-level imports, hubs and circular dependencies",
	pipeline.AnalysisAPISurface:      "HTTP routes and public exports",
	pipeline.AnalysisDecisions:       "related commits grouped into decisions",
	pipeline.AnalysisHotspots:        "files that change most often, by most authors",
	pipeline.AnalysisRisk:            "per-file risk scores and severities",
}

// Block renders the pointer block for an output directory given relative
// to the project root.
func Block(outDir string) string {
	dir := path.Clean(filepath.ToSlash(outDir))

	var sb strings.Builder
	sb.WriteString(BeginMarker + "\n")
	sb.WriteString("## Codebase context\n\n")
	fmt.Fprintf(&sb, "Generated analysis of this codebase is in `%s/`. Read it before exploring the source:\n\n", dir)
	for _, a := range export.Artifacts {
		fmt.Fprintf(&sb, "- `%s/%s`: %s\n", dir, a.Path, descriptions[a.Name])
	}
	fmt.Fprintf(&sb, "- `%s/%s`: Mermaid diagram of the architecture\n", dir, export.DiagramFile)
	sb.WriteString("\nRegenerate with `dontreadme generate`.\n")
	sb.WriteString(EndMarker)
	return sb.String()
}

// Action is what Inject did to a file.
type Action string

const (
	ActionAdded     Action = "added"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Render returns content with block in place: the existing block is
// replaced, or block is appended after a blank line.
func Render(content, block string) (string, Action, error) {
	start, end, err := find(content)
	if err != nil {
		return "", "", err
	}
	if start < 0 {
		trimmed := strings.TrimRight(content, "\n")
		if trimmed == "" {
			return block + "\n", ActionAdded, nil
		}
		return trimmed + "\n\n" + block + "\n", ActionAdded, nil
	}
	if content[start:end] == block {
		return content, ActionUnchanged, nil
	}
	return content[:start] + block + content[end:], ActionUpdated, nil
}

// Strip returns content without the block and the blank line before it.
// ok is false when there was no block.
func Strip(content string) (string, bool, error) {
	start, end, err := find(content)
	if err != nil || start < 0 {
		return content, false, err
	}
	before := strings.TrimRight(content[:start], "\n")
	after := strings.TrimLeft(content[end:], "\n")
	switch {
	case before == "":
		return after, true, nil
	case after == "":
		return before + "\n", true, nil
	}
	return before + "\n\n" + after, true, nil
}

// find returns the byte range of the block, end exclusive, or -1 when
// content has none.
func find(content string) (int, int, error) {
	start := strings.Index(content, BeginMarker)
	if start < 0 {
		return -1, -1, nil
	}
	n := strings.Index(content[start:], EndMarker)
	if n < 0 {
		return -1, -1, errUnterminated
	}
	return start, start + n + len(EndMarker), nil
}

// Inject puts block into the file at path, writing only when the content
// changes. The file keeps its permissions.
func Inject(path, block string) (Action, error) {
	data, info, err := read(path)
	if err != nil {
		return "", err
	}
	out, action, err := Render(string(data), block)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if action == ActionUnchanged {
		return action, nil
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return "", err
	}
	return action, nil
}

// Remove deletes the block from the file at path. It reports whether there
// was one.
func Remove(path string) (bool, error) {
	data, info, err := read(path)
	if err != nil {
		return false, err
	}
	out, ok, err := Strip(string(data))
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if !ok {
		return false, nil
	}
	return true, os.WriteFile(path, []byte(out), info.Mode().Perm())
}

func read(path string) ([]byte, fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, info, nil
}

// Result is the outcome for one instruction file.
type Result struct {
	File
	Action Action
}

// Sync injects or refreshes the block in every detected instruction file
// under root. A file that cannot be updated is logged and skipped.
func Sync(root, outDir string, logger *slog.Logger) ([]Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := Detect(root)
	if err != nil {
		return nil, fmt.Errorf("detect instruction files: %w", err)
	}
	block := Block(displayDir(root, outDir))
	var out []Result
	for _, f := range files {
		action, err := Inject(filepath.Join(root, filepath.FromSlash(f.Path)), block)
		if err != nil {
			logger.Warn("updating instruction file failed", "tool", f.Tool, "file", f.Path, "err", err)
			continue
		}
		logger.Debug("instruction file synced", "tool", f.Tool, "file", f.Path, "action", action)
		out = append(out, Result{File: f, Action: action})
	}
	return out, nil
}

// Unsync removes the block from every detected instruction file under root
// and returns the files that had one.
func Unsync(root string) ([]File, error) {
	files, err := Detect(root)
	if err != nil {
		return nil, fmt.Errorf("detect instruction files: %w", err)
	}
	var out []File
	for _, f := range files {
		ok, err := Remove(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			return out, err
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// displayDir returns outDir relative to root when it lies inside it.
func displayDir(root, outDir string) string {
	if !filepath.IsAbs(outDir) {
		return outDir
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return outDir
	}
	rel, err := filepath.Rel(absRoot, outDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return outDir
	}
	return rel
}

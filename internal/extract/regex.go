package extract

import (
	"regexp"
	"sort"
)

var (
	importRe   = regexp.MustCompile(`import\s+(?:([\w*{}\s,]+)\s+from\s+)?['"]([^'"\n]+)['"]`)
	requireRe  = regexp.MustCompile(`require\(['"]([^'"\n]+)['"]\)`)
	reexportRe = regexp.MustCompile(`export\s+(?:\{[^}]+\}|\*(?:\s+as\s+\w+)?)\s+from\s+['"]([^'"\n]+)['"]`)
)

// exportPatterns are tried in order; each yields one export per match.
var exportPatterns = []struct {
	re   *regexp.Regexp
	kind ExportKind
}{
	{regexp.MustCompile(`export\s+(?:async\s+)?function\s+(\w+)`), ExportFunction},
	{regexp.MustCompile(`export\s+class\s+(\w+)`), ExportClass},
	{regexp.MustCompile(`export\s+(?:const|let|var)\s+(\w+)`), ExportConst},
	{regexp.MustCompile(`export\s+type\s+(\w+)`), ExportType},
	{regexp.MustCompile(`export\s+interface\s+(\w+)`), ExportInterface},
	{regexp.MustCompile(`export\s+(?:const\s+)?enum\s+(\w+)`), ExportEnum},
	{regexp.MustCompile(`export\s+default\s+(?:async\s+)?(?:function|class)\s+(\w+)`), ExportDefault},
}

// RegexScanner is the default Scanner. It recognizes declarations with
// regular expressions, trading precision for speed and zero toolchain
// dependencies.
type RegexScanner struct{}

var _ Scanner = RegexScanner{}

// Scan implements Scanner.
func (RegexScanner) Scan(path, text string) Facts {
	lines := newLineIndex(text)
	return Facts{
		Imports: scanImports(text, lines),
		Exports: scanExports(path, text, lines),
	}
}

func scanImports(text string, lines lineIndex) []Import {
	var out []Import
	for _, m := range importRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Import{
			Specifier: text[m[4]:m[5]],
			Kind:      ImportStatic,
			From:      m[2] >= 0,
			Line:      lines.line(m[0]),
		})
	}
	for _, m := range requireRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Import{
			Specifier: text[m[2]:m[3]],
			Kind:      ImportRequire,
			Line:      lines.line(m[0]),
		})
	}
	for _, m := range reexportRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Import{
			Specifier: text[m[2]:m[3]],
			Kind:      ImportReexport,
			Line:      lines.line(m[0]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

func scanExports(path, text string, lines lineIndex) []Export {
	var out []Export
	for _, p := range exportPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			name := text[m[2]:m[3]]
			// "export const enum X" is an enum, not a const named "enum".
			if p.kind == ExportConst && name == "enum" {
				continue
			}
			out = append(out, Export{
				Name: name,
				Kind: p.kind,
				File: path,
				Line: lines.line(m[0]),
			})
		}
	}
	return finishExports(out)
}

//go:build cgo

package extract

import (
	"path"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TreeSitterScanner is a Scanner backed by the tree-sitter TypeScript and
// TSX grammars. It produces the same Facts shape as RegexScanner but reads
// declarations from the syntax tree, so commented-out code and string
// contents are never mistaken for imports or exports.
//
// A new tree-sitter parser is created per Scan call, which makes the scanner
// safe for concurrent use.
type TreeSitterScanner struct {
	ts  *tree_sitter.Language
	tsx *tree_sitter.Language
}

var _ Scanner = (*TreeSitterScanner)(nil)

// NewTreeSitterScanner loads both grammars.
func NewTreeSitterScanner() *TreeSitterScanner {
	return &TreeSitterScanner{
		ts:  tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		tsx: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
	}
}

// Scan implements Scanner. Files the grammar cannot load yield empty Facts.
func (s *TreeSitterScanner) Scan(filePath, text string) Facts {
	lang := s.ts
	switch path.Ext(filePath) {
	case ".tsx", ".jsx":
		lang = s.tsx
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return Facts{}
	}

	src := []byte(text)
	tree := parser.Parse(src, nil)
	if tree == nil {
		return Facts{}
	}
	defer tree.Close()

	w := &tsWalker{src: src, file: filePath}
	cursor := tree.RootNode().Walk()
	defer cursor.Close()
	w.walk(cursor)

	return Facts{Imports: w.imports, Exports: finishExports(w.exports)}
}

type tsWalker struct {
	src     []byte
	file    string
	imports []Import
	exports []Export
}

func (w *tsWalker) walk(cursor *tree_sitter.TreeCursor) {
	node := cursor.Node()
	switch node.Kind() {
	case "import_statement":
		w.importStatement(node)
	case "export_statement":
		w.exportStatement(node)
	case "call_expression":
		w.requireCall(node)
	}

	if cursor.GotoFirstChild() {
		w.walk(cursor)
		for cursor.GotoNextSibling() {
			w.walk(cursor)
		}
		cursor.GotoParent()
	}
}

func (w *tsWalker) importStatement(node *tree_sitter.Node) {
	spec := w.stringField(node, "source")
	if spec == "" {
		return
	}
	hasClause := false
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == "import_clause" {
			hasClause = true
			break
		}
	}
	w.imports = append(w.imports, Import{
		Specifier: spec,
		Kind:      ImportStatic,
		From:      hasClause,
		Line:      line(node),
	})
}

func (w *tsWalker) exportStatement(node *tree_sitter.Node) {
	if spec := w.stringField(node, "source"); spec != "" {
		w.imports = append(w.imports, Import{
			Specifier: spec,
			Kind:      ImportReexport,
			Line:      line(node),
		})
		return
	}

	decl := node.ChildByFieldName("declaration")
	if decl == nil {
		return
	}
	isDefault := false
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == "default" {
			isDefault = true
			break
		}
	}

	var kind ExportKind
	switch decl.Kind() {
	case "function_declaration", "generator_function_declaration":
		kind = ExportFunction
	case "class_declaration", "abstract_class_declaration":
		kind = ExportClass
	case "type_alias_declaration":
		kind = ExportType
	case "interface_declaration":
		kind = ExportInterface
	case "enum_declaration":
		kind = ExportEnum
	case "lexical_declaration", "variable_declaration":
		w.exportDeclarators(decl)
		return
	default:
		return
	}
	if isDefault {
		if kind != ExportFunction && kind != ExportClass {
			return
		}
		kind = ExportDefault
	}

	name := decl.ChildByFieldName("name")
	if name == nil {
		return
	}
	w.exports = append(w.exports, Export{
		Name: name.Utf8Text(w.src),
		Kind: kind,
		File: w.file,
		Line: line(node),
	})
}

func (w *tsWalker) exportDeclarators(decl *tree_sitter.Node) {
	for i := uint(0); i < decl.ChildCount(); i++ {
		child := decl.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		name := child.ChildByFieldName("name")
		if name == nil || name.Kind() != "identifier" {
			continue
		}
		w.exports = append(w.exports, Export{
			Name: name.Utf8Text(w.src),
			Kind: ExportConst,
			File: w.file,
			Line: line(child),
		})
	}
}

// requireCall records require('<x>') calls with a literal argument.
func (w *tsWalker) requireCall(node *tree_sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" || fn.Utf8Text(w.src) != "require" {
		return
	}
	args := node.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg == nil || arg.Kind() != "string" {
			continue
		}
		if spec := unquote(arg.Utf8Text(w.src)); spec != "" {
			w.imports = append(w.imports, Import{
				Specifier: spec,
				Kind:      ImportRequire,
				Line:      line(node),
			})
		}
		return
	}
}

func (w *tsWalker) stringField(node *tree_sitter.Node, field string) string {
	n := node.ChildByFieldName(field)
	if n == nil {
		return ""
	}
	return unquote(n.Utf8Text(w.src))
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}

func line(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

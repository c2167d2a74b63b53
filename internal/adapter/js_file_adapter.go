package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

// Syntax extension identifiers understood by the parser facade.
const (
	SyntaxAsyncGenerators  = "asyncGenerators"
	SyntaxBigInt           = "bigInt"
	SyntaxClassProperties  = "classProperties"
	SyntaxDecorators       = "decorators"
	SyntaxDynamicImport    = "dynamicImport"
	SyntaxFlow             = "flow"
	SyntaxJSX              = "jsx"
	SyntaxObjectRestSpread = "objectRestSpread"
	SyntaxTypeScript       = "typescript"
)

// DefaultSyntax is the extension set used when no override is configured.
var DefaultSyntax = []string{
	SyntaxAsyncGenerators,
	SyntaxBigInt,
	SyntaxClassProperties,
	SyntaxDynamicImport,
	SyntaxFlow,
	SyntaxJSX,
	SyntaxObjectRestSpread,
	SyntaxDecorators,
}

var knownSyntax = []string{
	SyntaxAsyncGenerators,
	SyntaxBigInt,
	SyntaxClassProperties,
	SyntaxDecorators,
	SyntaxDynamicImport,
	SyntaxFlow,
	SyntaxJSX,
	SyntaxObjectRestSpread,
	SyntaxTypeScript,
}

// Grammar names.
const (
	GrammarJavaScript = "javascript"
	GrammarTypeScript = "typescript"
	GrammarTSX        = "tsx"
)

// ParsedFile is a syntax tree together with the source bytes it was built from.
type ParsedFile struct {
	Filename string
	Grammar  string
	Source   []byte
	tree     *sitter.Tree
}

// Root returns the root node of the tree.
func (p *ParsedFile) Root() *sitter.Node {
	return p.tree.RootNode()
}

// Close releases the native tree.
func (p *ParsedFile) Close() {
	if p != nil && p.tree != nil {
		p.tree.Close()
	}
}

// JSFileAdapter converts JavaScript/TypeScript source text to a syntax tree
// and back, so the domain layer never talks to the parser runtime directly.
type JSFileAdapter interface {
	// Parse builds a syntax tree for src. A tree containing syntax errors is
	// reported as model.ErrParse.
	Parse(ctx context.Context, filename string, src []byte) (*ParsedFile, error)

	// Generate returns the source text for a parsed file.
	Generate(file *ParsedFile) []byte

	// Syntax returns the active syntax extension set.
	Syntax() []string
}

// LocalJSFileAdapter is a JSFileAdapter backed by tree-sitter grammars.
type LocalJSFileAdapter struct {
	syntax []string
}

// NewLocalJSFileAdapter constructs a LocalJSFileAdapter. A nil or empty
// syntax list selects DefaultSyntax.
func NewLocalJSFileAdapter(syntax []string) (*LocalJSFileAdapter, error) {
	if len(syntax) == 0 {
		syntax = DefaultSyntax
	}

	for _, ext := range syntax {
		if !slices.Contains(knownSyntax, ext) {
			return nil, fmt.Errorf("unknown syntax extension %q", ext)
		}
	}

	slog.Debug("Using syntax extensions", "syntax", syntax)

	return &LocalJSFileAdapter{syntax: slices.Clone(syntax)}, nil
}

// Syntax returns a copy of the configured extension set.
func (a *LocalJSFileAdapter) Syntax() []string {
	return slices.Clone(a.syntax)
}

// Parse builds a syntax tree for the provided filename/source pair.
func (a *LocalJSFileAdapter) Parse(ctx context.Context, filename string, src []byte) (*ParsedFile, error) {
	grammar := a.grammarFor(filename)

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(languageFor(grammar))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", m.ErrParse, filename, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		pos := firstErrorPoint(root)
		tree.Close()

		return nil, fmt.Errorf("%w: %s:%d:%d: unexpected syntax", m.ErrParse, filename, pos.Line, pos.Column+1)
	}

	return &ParsedFile{
		Filename: filename,
		Grammar:  grammar,
		Source:   src,
		tree:     tree,
	}, nil
}

// Generate returns the source text the tree covers.
func (a *LocalJSFileAdapter) Generate(file *ParsedFile) []byte {
	root := file.Root()

	return []byte(root.Content(file.Source))
}

func (a *LocalJSFileAdapter) grammarFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tsx":
		return GrammarTSX
	case ".ts", ".mts", ".cts":
		return GrammarTypeScript
	}

	if slices.Contains(a.syntax, SyntaxTypeScript) {
		if slices.Contains(a.syntax, SyntaxJSX) {
			return GrammarTSX
		}

		return GrammarTypeScript
	}

	return GrammarJavaScript
}

func languageFor(grammar string) *sitter.Language {
	switch grammar {
	case GrammarTSX:
		return tsx.GetLanguage()
	case GrammarTypeScript:
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// firstErrorPoint returns the position of the first ERROR or MISSING node in
// document order.
func firstErrorPoint(node *sitter.Node) m.Point {
	if node.Type() == "ERROR" || node.IsMissing() {
		return PointOf(node.StartPoint())
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}

		return firstErrorPoint(child)
	}

	return PointOf(node.StartPoint())
}

// PointOf converts a tree-sitter point into a model.Point.
func PointOf(p sitter.Point) m.Point {
	return m.Point{Line: int(p.Row) + 1, Column: int(p.Column)}
}

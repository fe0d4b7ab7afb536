//go:build cgo

package extract

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"repomind/internal/errors"
)

// Extractor wraps tree-sitter for multi-language extraction.
// An Extractor is not safe for concurrent use; create one per goroutine.
type Extractor struct {
	parser *sitter.Parser
}

// NewExtractor creates a new tree-sitter extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		parser: sitter.NewParser(),
	}
}

// ExtractFile reads and extracts one source file. The returned record
// carries relPath, the canonical root-relative path used in the digest.
func (e *Extractor) ExtractFile(ctx context.Context, absPath string, relPath string) (*FileRecord, error) {
	lang, ok := LanguageForPath(absPath)
	if !ok {
		return nil, errors.New(errors.ParseFailed, "unsupported file extension", nil).
			WithDetails(map[string]string{"path": relPath})
	}

	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.New(errors.ParseFailed, "failed to read file", err).
			WithDetails(map[string]string{"path": relPath})
	}

	return e.ExtractSource(ctx, relPath, source, lang)
}

// ExtractSource extracts defined and called names from source code.
// Files with syntax errors are rejected whole rather than half-read,
// matching the per-file skip posture of the pipeline.
func (e *Extractor) ExtractSource(ctx context.Context, path string, source []byte, lang Language) (*FileRecord, error) {
	if !utf8.Valid(source) {
		return nil, errors.New(errors.ParseFailed, "source is not valid UTF-8", nil).
			WithDetails(map[string]string{"path": path})
	}

	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, errors.New(errors.ParseFailed, "no grammar for language", err).
			WithDetails(map[string]string{"path": path})
	}

	e.parser.SetLanguage(tsLang)
	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ParseFailed, "parse error", err).
			WithDetails(map[string]string{"path": path})
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, errors.New(errors.ParseFailed, "syntax errors in source", nil).
			WithDetails(map[string]string{"path": path})
	}

	var defined []string
	for _, node := range findNodes(root, definitionNodeTypes(lang)) {
		if name := definitionName(node, source, lang); name != "" {
			defined = append(defined, name)
		}
	}

	var called []string
	for _, node := range findNodes(root, callNodeTypes(lang)) {
		if name := calleeName(node, source, lang); name != "" {
			called = append(called, name)
		}
	}

	return NewFileRecord(path, defined, called), nil
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// definitionNodeTypes returns the node types that declare a named function
// or method for a language. Anonymous forms (lambdas, closures, func
// literals) have no simple name and contribute nothing to the defined set.
func definitionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"function_declaration", "generator_function_declaration", "method_definition"}
	case LangPython:
		return []string{"function_definition"}
	case LangRust:
		return []string{"function_item"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case LangKotlin:
		return []string{"function_declaration"}
	default:
		return nil
	}
}

// callNodeTypes returns the node types that represent call expressions.
func callNodeTypes(lang Language) []string {
	switch lang {
	case LangGo, LangJavaScript, LangTypeScript, LangTSX, LangRust, LangKotlin:
		return []string{"call_expression"}
	case LangPython:
		return []string{"call"}
	case LangJava:
		return []string{"method_invocation"}
	default:
		return nil
	}
}

// definitionName extracts the simple name from a definition node.
func definitionName(node *sitter.Node, source []byte, lang Language) string {
	if lang == LangKotlin {
		// The Kotlin grammar exposes no name field; the name is the first
		// simple_identifier child.
		for i := uint32(0); i < node.ChildCount(); i++ {
			child := node.Child(int(i))
			if child != nil && child.Type() == "simple_identifier" {
				return nodeText(child, source)
			}
		}
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return nodeText(nameNode, source)
}

// calleeName reduces a call node to the callee's simple name. Direct calls
// yield the identifier; member calls yield the trailing member name; any
// other callee shape (subscripts, call results, parenthesized expressions)
// yields nothing.
func calleeName(node *sitter.Node, source []byte, lang Language) string {
	switch lang {
	case LangGo:
		fn := node.ChildByFieldName("function")
		if fn == nil {
			return ""
		}
		switch fn.Type() {
		case "identifier":
			return nodeText(fn, source)
		case "selector_expression":
			if field := fn.ChildByFieldName("field"); field != nil {
				return nodeText(field, source)
			}
		}

	case LangJavaScript, LangTypeScript, LangTSX:
		fn := node.ChildByFieldName("function")
		if fn == nil {
			return ""
		}
		switch fn.Type() {
		case "identifier":
			return nodeText(fn, source)
		case "member_expression":
			if prop := fn.ChildByFieldName("property"); prop != nil {
				return nodeText(prop, source)
			}
		}

	case LangPython:
		fn := node.ChildByFieldName("function")
		if fn == nil {
			return ""
		}
		switch fn.Type() {
		case "identifier":
			return nodeText(fn, source)
		case "attribute":
			if attr := fn.ChildByFieldName("attribute"); attr != nil {
				return nodeText(attr, source)
			}
		}

	case LangRust:
		fn := node.ChildByFieldName("function")
		if fn == nil {
			return ""
		}
		switch fn.Type() {
		case "identifier":
			return nodeText(fn, source)
		case "field_expression":
			if field := fn.ChildByFieldName("field"); field != nil {
				return nodeText(field, source)
			}
		case "scoped_identifier":
			if name := fn.ChildByFieldName("name"); name != nil {
				return nodeText(name, source)
			}
		}

	case LangJava:
		// method_invocation carries the name directly, for both f() and x.f().
		if name := node.ChildByFieldName("name"); name != nil {
			return nodeText(name, source)
		}

	case LangKotlin:
		callee := node.NamedChild(0)
		if callee == nil {
			return ""
		}
		switch callee.Type() {
		case "simple_identifier":
			return nodeText(callee, source)
		case "navigation_expression":
			return kotlinNavigationName(callee, source)
		}
	}

	return ""
}

// kotlinNavigationName returns the trailing member name of a Kotlin
// navigation expression such as a.b.c.
func kotlinNavigationName(node *sitter.Node, source []byte) string {
	var lastSuffix *sitter.Node
	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if child != nil && child.Type() == "navigation_suffix" {
			lastSuffix = child
		}
	}
	if lastSuffix == nil {
		return ""
	}
	for i := uint32(0); i < lastSuffix.ChildCount(); i++ {
		child := lastSuffix.Child(int(i))
		if child != nil && child.Type() == "simple_identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

// findNodes finds all nodes of the given types in the AST.
func findNodes(root *sitter.Node, types []string) []*sitter.Node {
	var result []*sitter.Node

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}

		if contains(types, node.Type()) {
			result = append(result, node)
		}

		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)))
		}
	}

	walk(root)
	return result
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// IsAvailable returns whether extraction is available.
// Returns true when CGO is enabled.
func IsAvailable() bool {
	return true
}

//go:build cgo

package doccheck

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
	"repomind/internal/extract"
)

// Checker inspects source files for undocumented definitions.
// A Checker is not safe for concurrent use; create one per goroutine.
type Checker struct {
	parser *sitter.Parser
}

// NewChecker creates a new tree-sitter checker.
func NewChecker() *Checker {
	return &Checker{
		parser: sitter.NewParser(),
	}
}

// CheckFile reads and checks one source file. The returned report carries
// relPath, the canonical root-relative path.
func (c *Checker) CheckFile(ctx context.Context, absPath string, relPath string) (*FileReport, error) {
	lang, ok := extract.LanguageForPath(absPath)
	if !ok {
		return nil, errors.New(errors.ParseFailed, "unsupported file extension", nil).
			WithDetails(map[string]string{"path": relPath})
	}

	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.New(errors.ParseFailed, "failed to read file", err).
			WithDetails(map[string]string{"path": relPath})
	}

	return c.CheckSource(ctx, relPath, source, lang)
}

// CheckSource checks source code for undocumented definitions. Files with
// syntax errors are rejected whole, matching the extraction posture.
func (c *Checker) CheckSource(ctx context.Context, path string, source []byte, lang extract.Language) (*FileReport, error) {
	if !utf8.Valid(source) {
		return nil, errors.New(errors.ParseFailed, "source is not valid UTF-8", nil).
			WithDetails(map[string]string{"path": path})
	}

	tsLang, err := languageFor(lang)
	if err != nil {
		return nil, errors.New(errors.ParseFailed, "no grammar for language", err).
			WithDetails(map[string]string{"path": path})
	}

	c.parser.SetLanguage(tsLang)
	tree, err := c.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ParseFailed, "parse error", err).
			WithDetails(map[string]string{"path": path})
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, errors.New(errors.ParseFailed, "syntax errors in source", nil).
			WithDetails(map[string]string{"path": path})
	}

	fr := &FileReport{Path: path}
	for _, node := range collectNodes(root, checkedNodeTypes(lang)) {
		name := definitionName(node, source, lang)
		if name == "" {
			continue
		}
		fr.Checked++
		if !isDocumented(node, lang) {
			fr.Missing = append(fr.Missing, name)
		}
	}

	return fr, nil
}

// languageFor returns the tree-sitter Language for a language identifier.
func languageFor(lang extract.Language) (*sitter.Language, error) {
	switch lang {
	case extract.LangGo:
		return golang.GetLanguage(), nil
	case extract.LangJavaScript:
		return javascript.GetLanguage(), nil
	case extract.LangTypeScript:
		return typescript.GetLanguage(), nil
	case extract.LangTSX:
		return tsx.GetLanguage(), nil
	case extract.LangPython:
		return python.GetLanguage(), nil
	case extract.LangRust:
		return rust.GetLanguage(), nil
	case extract.LangJava:
		return java.GetLanguage(), nil
	case extract.LangKotlin:
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// checkedNodeTypes returns the definition node types subject to the doc
// check: named functions and methods, plus class declarations where the
// grammar names them the same way.
func checkedNodeTypes(lang extract.Language) []string {
	switch lang {
	case extract.LangGo:
		return []string{"function_declaration", "method_declaration"}
	case extract.LangJavaScript, extract.LangTypeScript, extract.LangTSX:
		return []string{"function_declaration", "generator_function_declaration", "method_definition", "class_declaration"}
	case extract.LangPython:
		return []string{"function_definition", "class_definition"}
	case extract.LangRust:
		return []string{"function_item"}
	case extract.LangJava:
		return []string{"method_declaration", "constructor_declaration", "class_declaration"}
	case extract.LangKotlin:
		return []string{"function_declaration", "class_declaration"}
	default:
		return nil
	}
}

// definitionName extracts the simple name from a definition node.
func definitionName(node *sitter.Node, source []byte, lang extract.Language) string {
	if lang == extract.LangKotlin {
		// The Kotlin grammar exposes no name field; the name is the first
		// simple_identifier child.
		for i := uint32(0); i < node.ChildCount(); i++ {
			child := node.Child(int(i))
			if child != nil && child.Type() == "simple_identifier" {
				return string(source[child.StartByte():child.EndByte()])
			}
		}
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return string(source[nameNode.StartByte():nameNode.EndByte()])
}

// isDocumented decides whether a definition carries documentation.
// Python uses the docstring convention; everything else expects a comment
// ending on the line directly above the definition.
func isDocumented(node *sitter.Node, lang extract.Language) bool {
	if lang == extract.LangPython {
		return hasDocstring(node)
	}
	return hasLeadingComment(node)
}

// hasDocstring reports whether the first statement in the body is a string
// literal.
func hasDocstring(node *sitter.Node) bool {
	body := node.ChildByFieldName("body")
	if body == nil {
		return false
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" {
		return false
	}
	expr := first.NamedChild(0)
	return expr != nil && expr.Type() == "string"
}

// hasLeadingComment reports whether a comment node ends on the line
// directly above the definition (or on the same line, for inline block
// comments). Grammars disagree on the comment node name, so any type
// containing "comment" counts.
func hasLeadingComment(node *sitter.Node) bool {
	prev := node.PrevNamedSibling()
	if prev == nil || !isCommentType(prev.Type()) {
		return false
	}
	return node.StartPoint().Row-prev.EndPoint().Row <= 1
}

func isCommentType(nodeType string) bool {
	switch nodeType {
	case "comment", "line_comment", "block_comment", "multiline_comment":
		return true
	}
	return false
}

// collectNodes finds all nodes of the given types in the AST.
func collectNodes(root *sitter.Node, types []string) []*sitter.Node {
	var result []*sitter.Node

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}

		for _, t := range types {
			if node.Type() == t {
				result = append(result, node)
				break
			}
		}

		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)))
		}
	}

	walk(root)
	return result
}

// IsAvailable returns whether the doc check is available.
// Returns true when CGO is enabled.
func IsAvailable() bool {
	return true
}

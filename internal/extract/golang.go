package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

type goExtractor struct{}

func (goExtractor) Extract(result *parser.ParseResult) (*FileExtraction, error) {
	fx := &FileExtraction{
		File: models.FileNode{Path: result.Path, Language: result.Language},
	}

	root := result.Tree.RootNode()
	parser.Walk(root, result.Source, func(node *sitter.Node, src []byte) bool {
		switch node.Type() {
		case "import_spec":
			if path := node.ChildByFieldName("path"); path != nil {
				fx.File.Imports = append(fx.File.Imports, models.Import{
					Spec: trimQuotes(parser.NodeText(path, src)),
					Line: node.StartPoint().Row + 1,
				})
			}

		case "function_declaration":
			name := parser.NodeText(node.ChildByFieldName("name"), src)
			if name == "" {
				return true
			}
			sym := newGoSymbol(result, node, name, "")
			sym.Kind = models.KindFunction
			fx.Symbols = append(fx.Symbols, sym)
			return false

		case "method_declaration":
			name := parser.NodeText(node.ChildByFieldName("name"), src)
			if name == "" {
				return true
			}
			recv := receiverType(node, src)
			sym := newGoSymbol(result, node, name, recv)
			sym.Kind = models.KindMethod
			fx.Symbols = append(fx.Symbols, sym)
			return false

		case "type_spec":
			// Struct and interface types stand in for classes.
			inner := node.ChildByFieldName("type")
			if inner == nil {
				return true
			}
			switch inner.Type() {
			case "struct_type", "interface_type":
				name := parser.NodeText(node.ChildByFieldName("name"), src)
				if name == "" {
					return true
				}
				fx.Symbols = append(fx.Symbols, &models.Symbol{
					Name:          name,
					QualifiedName: qualify(moduleName(result.Path), "", name),
					Kind:          models.KindClass,
					Language:      result.Language,
					File:          result.Path,
					StartLine:     node.StartPoint().Row + 1,
					EndLine:       node.EndPoint().Row + 1,
					Exported:      isCapitalized(name),
				})
			}
			return false
		}
		return true
	})

	return finish(fx)
}

func newGoSymbol(result *parser.ParseResult, node *sitter.Node, name, recv string) *models.Symbol {
	src := result.Source
	body := node.ChildByFieldName("body")

	sym := &models.Symbol{
		Name:          name,
		QualifiedName: qualify(moduleName(result.Path), recv, name),
		Language:      result.Language,
		File:          result.Path,
		StartLine:     node.StartPoint().Row + 1,
		EndLine:       node.EndPoint().Row + 1,
		Signature:     goSignature(node, src),
		Body:          parser.NodeText(body, src),
		CallRefs:      collectCallRefs(body, src),
		Exported:      isCapitalized(name),
		Class:         recv,
	}
	return sym
}

// receiverType extracts the receiver base type of a method declaration,
// stripping any pointer star.
func receiverType(node *sitter.Node, src []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var typ string
	parser.Walk(recv, src, func(n *sitter.Node, s []byte) bool {
		if n.Type() == "type_identifier" && typ == "" {
			typ = parser.NodeText(n, s)
			return false
		}
		return true
	})
	return typ
}

func goSignature(node *sitter.Node, src []byte) models.Signature {
	var sig models.Signature
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.NamedChildCount()) {
			decl := params.NamedChild(i)
			if decl.Type() != "parameter_declaration" && decl.Type() != "variadic_parameter_declaration" {
				continue
			}
			typ := parser.NodeText(decl.ChildByFieldName("type"), src)
			named := false
			for j := range int(decl.NamedChildCount()) {
				child := decl.NamedChild(j)
				if child.Type() == "identifier" {
					sig.Params = append(sig.Params, models.Param{Name: parser.NodeText(child, src), Type: typ})
					named = true
				}
			}
			if !named && typ != "" {
				sig.Params = append(sig.Params, models.Param{Type: typ})
			}
		}
	}
	if ret := node.ChildByFieldName("result"); ret != nil {
		sig.Return = strings.TrimSpace(parser.NodeText(ret, src))
	}
	return sig
}

func isCapitalized(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

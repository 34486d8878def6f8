package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

// cExtractor covers C and C++.
type cExtractor struct{}

func (cExtractor) Extract(result *parser.ParseResult) (*FileExtraction, error) {
	fx := &FileExtraction{
		File: models.FileNode{Path: result.Path, Language: result.Language},
	}
	module := moduleName(result.Path)
	src := result.Source
	root := result.Tree.RootNode()

	parser.Walk(root, src, func(node *sitter.Node, s []byte) bool {
		switch node.Type() {
		case "preproc_include":
			if path := node.ChildByFieldName("path"); path != nil {
				fx.File.Imports = append(fx.File.Imports, models.Import{
					Spec: trimQuotes(parser.NodeText(path, s)),
					Line: node.StartPoint().Row + 1,
				})
			}

		case "function_definition":
			name := cDeclaratorName(node, s)
			if name == "" {
				return true
			}
			body := node.ChildByFieldName("body")
			fx.Symbols = append(fx.Symbols, &models.Symbol{
				Name:          name,
				QualifiedName: qualify(module, "", name),
				Kind:          models.KindFunction,
				Language:      result.Language,
				File:          result.Path,
				StartLine:     node.StartPoint().Row + 1,
				EndLine:       node.EndPoint().Row + 1,
				Signature:     cSignature(node, s),
				Body:          parser.NodeText(body, s),
				CallRefs:      collectCallRefs(body, s),
			})
			return false

		case "class_specifier", "struct_specifier":
			name := parser.NodeText(node.ChildByFieldName("name"), s)
			// Anonymous and forward declarations carry no body.
			if name == "" || node.ChildByFieldName("body") == nil {
				return true
			}
			fx.Symbols = append(fx.Symbols, &models.Symbol{
				Name:          name,
				QualifiedName: qualify(module, "", name),
				Kind:          models.KindClass,
				Language:      result.Language,
				File:          result.Path,
				StartLine:     node.StartPoint().Row + 1,
				EndLine:       node.EndPoint().Row + 1,
				Bases:         cppBases(node, s),
			})
			// Descend for member function definitions.
		}
		return true
	})

	return finish(fx)
}

// cDeclaratorName digs through nested declarators to the function identifier.
func cDeclaratorName(node *sitter.Node, src []byte) string {
	decl := node.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Type() {
		case "identifier", "field_identifier":
			return parser.NodeText(decl, src)
		case "qualified_identifier": // C++ Class::method out-of-line
			if name := decl.ChildByFieldName("name"); name != nil {
				decl = name
				continue
			}
			return lastSegment(parser.NodeText(decl, src))
		}
		next := decl.ChildByFieldName("declarator")
		if next == nil {
			return ""
		}
		decl = next
	}
	return ""
}

func cppBases(node *sitter.Node, src []byte) []string {
	var bases []string
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if child.Type() != "base_class_clause" {
			continue
		}
		for j := range int(child.NamedChildCount()) {
			b := child.NamedChild(j)
			if b.Type() == "type_identifier" || b.Type() == "qualified_identifier" {
				bases = append(bases, lastSegment(parser.NodeText(b, src)))
			}
		}
	}
	return bases
}

func cSignature(node *sitter.Node, src []byte) models.Signature {
	var sig models.Signature
	sig.Return = parser.NodeText(node.ChildByFieldName("type"), src)

	var params *sitter.Node
	parser.Walk(node, src, func(n *sitter.Node, s []byte) bool {
		if n.Type() == "parameter_list" && params == nil {
			params = n
			return false
		}
		return n.Type() != "compound_statement"
	})
	if params == nil {
		return sig
	}
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		param := models.Param{Type: parser.NodeText(p.ChildByFieldName("type"), src)}
		if decl := p.ChildByFieldName("declarator"); decl != nil {
			param.Name = lastSegment(parser.NodeText(decl, src))
		}
		sig.Params = append(sig.Params, param)
	}
	return sig
}

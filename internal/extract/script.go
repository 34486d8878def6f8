package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

// scriptExtractor covers JavaScript and TypeScript, whose grammars share the
// relevant node shapes.
type scriptExtractor struct{}

func (scriptExtractor) Extract(result *parser.ParseResult) (*FileExtraction, error) {
	fx := &FileExtraction{
		File: models.FileNode{Path: result.Path, Language: result.Language},
	}
	module := moduleName(result.Path)
	src := result.Source
	root := result.Tree.RootNode()

	var walk func(node *sitter.Node, class string, exported bool)
	walk = func(node *sitter.Node, class string, exported bool) {
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			switch child.Type() {
			case "import_statement":
				if srcNode := child.ChildByFieldName("source"); srcNode != nil {
					fx.File.Imports = append(fx.File.Imports, models.Import{
						Spec: trimQuotes(parser.NodeText(srcNode, src)),
						Line: child.StartPoint().Row + 1,
					})
				}

			case "export_statement":
				walk(child, class, true)

			case "function_declaration", "generator_function_declaration":
				name := parser.NodeText(child.ChildByFieldName("name"), src)
				if name == "" {
					continue
				}
				body := child.ChildByFieldName("body")
				fx.Symbols = append(fx.Symbols, &models.Symbol{
					Name:          name,
					QualifiedName: qualify(module, "", name),
					Kind:          models.KindFunction,
					Language:      result.Language,
					File:          result.Path,
					StartLine:     child.StartPoint().Row + 1,
					EndLine:       child.EndPoint().Row + 1,
					Signature:     scriptSignature(child, src),
					Body:          parser.NodeText(body, src),
					CallRefs:      collectCallRefs(body, src),
					Exported:      exported,
				})

			case "class_declaration":
				name := parser.NodeText(child.ChildByFieldName("name"), src)
				if name == "" {
					continue
				}
				fx.Symbols = append(fx.Symbols, &models.Symbol{
					Name:          name,
					QualifiedName: qualify(module, "", name),
					Kind:          models.KindClass,
					Language:      result.Language,
					File:          result.Path,
					StartLine:     child.StartPoint().Row + 1,
					EndLine:       child.EndPoint().Row + 1,
					Exported:      exported,
					Bases:         scriptBases(child, src),
				})
				if body := child.ChildByFieldName("body"); body != nil {
					walk(body, name, exported)
				}

			case "method_definition":
				name := parser.NodeText(child.ChildByFieldName("name"), src)
				if name == "" {
					continue
				}
				body := child.ChildByFieldName("body")
				kind := models.KindMethod
				if name == "constructor" {
					kind = models.KindConstructor
				}
				fx.Symbols = append(fx.Symbols, &models.Symbol{
					Name:          name,
					QualifiedName: qualify(module, class, name),
					Kind:          kind,
					Language:      result.Language,
					File:          result.Path,
					StartLine:     child.StartPoint().Row + 1,
					EndLine:       child.EndPoint().Row + 1,
					Signature:     scriptSignature(child, src),
					Body:          parser.NodeText(body, src),
					CallRefs:      collectCallRefs(body, src),
					Exported:      exported,
					Class:         class,
				})

			case "lexical_declaration", "variable_declaration":
				// const f = () => {...} / function expressions assigned to
				// names count as function symbols.
				scriptVarFunctions(fx, child, module, result, exported)

			default:
				walk(child, class, exported)
			}
		}
	}
	walk(root, "", false)

	return finish(fx)
}

// scriptVarFunctions extracts named arrow/function expressions bound by
// variable declarators.
func scriptVarFunctions(fx *FileExtraction, node *sitter.Node, module string, result *parser.ParseResult, exported bool) {
	src := result.Source
	for i := range int(node.NamedChildCount()) {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		value := decl.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch value.Type() {
		case "arrow_function", "function_expression", "function":
		default:
			continue
		}
		name := parser.NodeText(decl.ChildByFieldName("name"), src)
		if name == "" {
			continue
		}
		body := value.ChildByFieldName("body")
		fx.Symbols = append(fx.Symbols, &models.Symbol{
			Name:          name,
			QualifiedName: qualify(module, "", name),
			Kind:          models.KindFunction,
			Language:      result.Language,
			File:          result.Path,
			StartLine:     decl.StartPoint().Row + 1,
			EndLine:       decl.EndPoint().Row + 1,
			Signature:     scriptSignature(value, src),
			Body:          parser.NodeText(body, src),
			CallRefs:      collectCallRefs(body, src),
			Exported:      exported,
		})
	}
}

func scriptBases(node *sitter.Node, src []byte) []string {
	var bases []string
	parser.Walk(node, src, func(n *sitter.Node, s []byte) bool {
		if n.Type() == "class_heritage" || n.Type() == "extends_clause" {
			for i := range int(n.NamedChildCount()) {
				c := n.NamedChild(i)
				if c.Type() == "identifier" {
					bases = append(bases, parser.NodeText(c, s))
				}
			}
			return false
		}
		// Don't descend into the class body looking for heritage.
		return n.Type() != "class_body"
	})
	return bases
}

func scriptSignature(node *sitter.Node, src []byte) models.Signature {
	var sig models.Signature
	params := node.ChildByFieldName("parameters")
	if params == nil {
		params = node.ChildByFieldName("parameter")
	}
	if params != nil {
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			switch p.Type() {
			case "identifier":
				sig.Params = append(sig.Params, models.Param{Name: parser.NodeText(p, src)})
			case "required_parameter", "optional_parameter":
				param := models.Param{}
				if pat := p.ChildByFieldName("pattern"); pat != nil {
					param.Name = parser.NodeText(pat, src)
				}
				if typ := p.ChildByFieldName("type"); typ != nil {
					param.Type = parser.NodeText(typ, src)
				}
				sig.Params = append(sig.Params, param)
			case "assignment_pattern":
				if left := p.ChildByFieldName("left"); left != nil {
					sig.Params = append(sig.Params, models.Param{Name: parser.NodeText(left, src)})
				}
			}
		}
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig.Return = parser.NodeText(ret, src)
	}
	return sig
}

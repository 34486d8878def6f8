package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

type pythonExtractor struct{}

func (pythonExtractor) Extract(result *parser.ParseResult) (*FileExtraction, error) {
	fx := &FileExtraction{
		File: models.FileNode{Path: result.Path, Language: result.Language},
	}
	module := moduleName(result.Path)
	src := result.Source
	root := result.Tree.RootNode()

	var walk func(node *sitter.Node, class string, depth int)
	walk = func(node *sitter.Node, class string, depth int) {
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			switch child.Type() {
			case "import_statement":
				for _, spec := range pythonImportSpecs(child, src) {
					fx.File.Imports = append(fx.File.Imports, models.Import{
						Spec: spec,
						Line: child.StartPoint().Row + 1,
					})
				}

			case "import_from_statement":
				if spec := pythonFromImportSpec(child, src); spec != "" {
					fx.File.Imports = append(fx.File.Imports, models.Import{
						Spec: spec,
						Line: child.StartPoint().Row + 1,
					})
				}

			case "class_definition":
				name := parser.NodeText(child.ChildByFieldName("name"), src)
				if name == "" {
					continue
				}
				fx.Symbols = append(fx.Symbols, &models.Symbol{
					Name:          name,
					QualifiedName: qualify(module, class, name),
					Kind:          models.KindClass,
					Language:      result.Language,
					File:          result.Path,
					StartLine:     child.StartPoint().Row + 1,
					EndLine:       child.EndPoint().Row + 1,
					Exported:      depth == 0 && !strings.HasPrefix(name, "_"),
					Bases:         pythonBases(child, src),
				})
				if body := child.ChildByFieldName("body"); body != nil {
					walk(body, name, depth+1)
				}

			case "function_definition":
				name := parser.NodeText(child.ChildByFieldName("name"), src)
				if name == "" {
					continue
				}
				body := child.ChildByFieldName("body")
				kind := models.KindFunction
				if class != "" {
					kind = models.KindMethod
					if name == "__init__" || name == "__new__" {
						kind = models.KindConstructor
					}
				}
				fx.Symbols = append(fx.Symbols, &models.Symbol{
					Name:          name,
					QualifiedName: qualify(module, class, name),
					Kind:          kind,
					Language:      result.Language,
					File:          result.Path,
					StartLine:     child.StartPoint().Row + 1,
					EndLine:       child.EndPoint().Row + 1,
					Signature:     pythonSignature(child, src),
					Body:          parser.NodeText(body, src),
					CallRefs:      collectCallRefs(body, src),
					Exported:      depth == 0 && !strings.HasPrefix(name, "_"),
					Class:         class,
				})
				// Nested defs are deliberately not descended into as
				// separate symbols; their calls belong to the enclosing
				// function body already.

			case "decorated_definition":
				walk(child, class, depth)

			default:
				// Module-level statements other than defs carry no symbols.
			}
		}
	}
	walk(root, "", 0)

	return finish(fx)
}

// pythonImportSpecs handles `import a.b, c` and `import a.b as x`.
func pythonImportSpecs(node *sitter.Node, src []byte) []string {
	var specs []string
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			specs = append(specs, parser.NodeText(child, src))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				specs = append(specs, parser.NodeText(name, src))
			}
		}
	}
	return specs
}

// pythonFromImportSpec returns the module part of `from X import ...`,
// including leading dots for relative imports.
func pythonFromImportSpec(node *sitter.Node, src []byte) string {
	if mod := node.ChildByFieldName("module_name"); mod != nil {
		return parser.NodeText(mod, src)
	}
	return ""
}

func pythonBases(node *sitter.Node, src []byte) []string {
	supers := node.ChildByFieldName("superclasses")
	if supers == nil {
		return nil
	}
	var bases []string
	for i := range int(supers.NamedChildCount()) {
		arg := supers.NamedChild(i)
		switch arg.Type() {
		case "identifier":
			bases = append(bases, parser.NodeText(arg, src))
		case "attribute":
			if attr := arg.ChildByFieldName("attribute"); attr != nil {
				bases = append(bases, parser.NodeText(attr, src))
			}
		}
	}
	return bases
}

func pythonSignature(node *sitter.Node, src []byte) models.Signature {
	var sig models.Signature
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			switch p.Type() {
			case "identifier":
				sig.Params = append(sig.Params, models.Param{Name: parser.NodeText(p, src)})
			case "typed_parameter", "typed_default_parameter":
				var name string
				if n := p.ChildByFieldName("name"); n != nil {
					name = parser.NodeText(n, src)
				} else if p.NamedChildCount() > 0 && p.NamedChild(0).Type() == "identifier" {
					name = parser.NodeText(p.NamedChild(0), src)
				}
				sig.Params = append(sig.Params, models.Param{
					Name: name,
					Type: parser.NodeText(p.ChildByFieldName("type"), src),
				})
			case "default_parameter":
				if n := p.ChildByFieldName("name"); n != nil {
					sig.Params = append(sig.Params, models.Param{Name: parser.NodeText(n, src)})
				}
			}
		}
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig.Return = parser.NodeText(ret, src)
	}
	return sig
}

package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

type javaExtractor struct{}

func (javaExtractor) Extract(result *parser.ParseResult) (*FileExtraction, error) {
	fx := &FileExtraction{
		File: models.FileNode{Path: result.Path, Language: result.Language},
	}
	module := moduleName(result.Path)
	src := result.Source
	root := result.Tree.RootNode()

	var walk func(node *sitter.Node, class string)
	walk = func(node *sitter.Node, class string) {
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			switch child.Type() {
			case "import_declaration":
				spec := javaImportSpec(child, src)
				if spec != "" {
					fx.File.Imports = append(fx.File.Imports, models.Import{
						Spec: spec,
						Line: child.StartPoint().Row + 1,
					})
				}

			case "class_declaration", "interface_declaration", "enum_declaration":
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
					Exported:      javaIsPublic(child, src),
					Bases:         javaBases(child, src),
				})
				if body := child.ChildByFieldName("body"); body != nil {
					walk(body, name)
				}

			case "method_declaration", "constructor_declaration":
				name := parser.NodeText(child.ChildByFieldName("name"), src)
				if name == "" {
					continue
				}
				body := child.ChildByFieldName("body")
				kind := models.KindMethod
				if child.Type() == "constructor_declaration" {
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
					Signature:     javaSignature(child, src),
					Body:          parser.NodeText(body, src),
					CallRefs:      collectCallRefs(body, src),
					Exported:      javaIsPublic(child, src),
					Class:         class,
				})

			default:
				walk(child, class)
			}
		}
	}
	walk(root, "")

	return finish(fx)
}

// javaImportSpec keeps the trailing wildcard: `import a.b.*;` yields "a.b.*".
func javaImportSpec(node *sitter.Node, src []byte) string {
	var spec string
	wildcard := false
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		switch child.Type() {
		case "scoped_identifier", "identifier":
			spec = parser.NodeText(child, src)
		case "asterisk":
			wildcard = true
		}
	}
	if spec != "" && wildcard {
		spec += ".*"
	}
	return spec
}

func javaIsPublic(node *sitter.Node, src []byte) bool {
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if child.Type() == "modifiers" {
			return strings.Contains(parser.NodeText(child, src), "public")
		}
	}
	return false
}

func javaBases(node *sitter.Node, src []byte) []string {
	var bases []string
	collect := func(n *sitter.Node) {
		parser.Walk(n, src, func(c *sitter.Node, s []byte) bool {
			if c.Type() == "type_identifier" {
				bases = append(bases, parser.NodeText(c, s))
			}
			return true
		})
	}
	if super := node.ChildByFieldName("superclass"); super != nil {
		collect(super)
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		collect(ifaces)
	}
	return bases
}

func javaSignature(node *sitter.Node, src []byte) models.Signature {
	var sig models.Signature
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
				continue
			}
			sig.Params = append(sig.Params, models.Param{
				Name: parser.NodeText(p.ChildByFieldName("name"), src),
				Type: parser.NodeText(p.ChildByFieldName("type"), src),
			})
		}
	}
	if ret := node.ChildByFieldName("type"); ret != nil {
		sig.Return = parser.NodeText(ret, src)
	}
	return sig
}

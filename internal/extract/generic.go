package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

// genericExtractor covers rust and ruby through per-language node tables.
type genericExtractor struct{}

type nodeTables struct {
	function map[string]bool
	class    map[string]bool
	imports  map[string]bool
}

var langTables = map[models.Language]nodeTables{
	models.LangRust: {
		function: map[string]bool{"function_item": true},
		class:    map[string]bool{"struct_item": true, "enum_item": true, "trait_item": true},
		imports:  map[string]bool{"use_declaration": true},
	},
	models.LangRuby: {
		function: map[string]bool{"method": true, "singleton_method": true},
		class:    map[string]bool{"class": true, "module": true},
	},
}

func (genericExtractor) Extract(result *parser.ParseResult) (*FileExtraction, error) {
	fx := &FileExtraction{
		File: models.FileNode{Path: result.Path, Language: result.Language},
	}
	tables := langTables[result.Language]
	module := moduleName(result.Path)
	src := result.Source
	root := result.Tree.RootNode()

	var walk func(node *sitter.Node, class string)
	walk = func(node *sitter.Node, class string) {
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			typ := child.Type()

			switch {
			case tables.imports[typ]:
				fx.File.Imports = append(fx.File.Imports, models.Import{
					Spec: rustUseSpec(child, src),
					Line: child.StartPoint().Row + 1,
				})

			case result.Language == models.LangRuby && typ == "call":
				if spec, ok := rubyRequireSpec(child, src); ok {
					fx.File.Imports = append(fx.File.Imports, models.Import{
						Spec: spec,
						Line: child.StartPoint().Row + 1,
					})
				}

			case tables.function[typ]:
				name := parser.NodeText(child.ChildByFieldName("name"), src)
				if name == "" {
					continue
				}
				kind := models.KindFunction
				if class != "" {
					kind = models.KindMethod
					if name == "initialize" || name == "new" {
						kind = models.KindConstructor
					}
				}
				body := child.ChildByFieldName("body")
				fx.Symbols = append(fx.Symbols, &models.Symbol{
					Name:          name,
					QualifiedName: qualify(module, class, name),
					Kind:          kind,
					Language:      result.Language,
					File:          result.Path,
					StartLine:     child.StartPoint().Row + 1,
					EndLine:       child.EndPoint().Row + 1,
					Signature:     genericSignature(child, src),
					Body:          parser.NodeText(body, src),
					CallRefs:      collectCallRefs(body, src),
					Exported:      genericExported(child, name, result.Language, src),
					Class:         class,
				})

			case tables.class[typ]:
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
					Bases:         rubyBases(child, src),
					Exported:      genericExported(child, name, result.Language, src),
				})
				walk(child, name)
				continue
			}
			walk(child, class)
		}
	}
	walk(root, "")

	return finish(fx)
}

// rustUseSpec reduces a use declaration to its path text without the keyword.
func rustUseSpec(node *sitter.Node, src []byte) string {
	if arg := node.ChildByFieldName("argument"); arg != nil {
		return parser.NodeText(arg, src)
	}
	text := strings.TrimPrefix(parser.NodeText(node, src), "use ")
	return strings.TrimSuffix(strings.TrimSpace(text), ";")
}

// rubyRequireSpec recognizes require and require_relative calls at any depth.
func rubyRequireSpec(node *sitter.Node, src []byte) (string, bool) {
	method := parser.NodeText(node.ChildByFieldName("method"), src)
	if method != "require" && method != "require_relative" {
		return "", false
	}
	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	spec := trimQuotes(parser.NodeText(args.NamedChild(0), src))
	if method == "require_relative" {
		spec = "./" + spec
	}
	return spec, true
}

// rubyBases reads the superclass clause of a ruby class node.
func rubyBases(node *sitter.Node, src []byte) []string {
	if sup := node.ChildByFieldName("superclass"); sup != nil {
		name := strings.TrimPrefix(parser.NodeText(sup, src), "<")
		return []string{lastSegment(strings.TrimSpace(name))}
	}
	return nil
}

// genericExported: rust exports via `pub`, ruby methods are public unless
// conventionally underscore-prefixed.
func genericExported(node *sitter.Node, name string, lang models.Language, src []byte) bool {
	if lang == models.LangRust {
		for i := range int(node.NamedChildCount()) {
			if node.NamedChild(i).Type() == "visibility_modifier" {
				return true
			}
		}
		return false
	}
	return !strings.HasPrefix(name, "_")
}

func genericSignature(node *sitter.Node, src []byte) models.Signature {
	var sig models.Signature
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig.Return = parser.NodeText(ret, src)
	}
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return sig
	}
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		switch p.Type() {
		case "parameter", "identifier", "optional_parameter", "keyword_parameter":
			param := models.Param{}
			if pat := p.ChildByFieldName("pattern"); pat != nil {
				param.Name = parser.NodeText(pat, src)
				param.Type = parser.NodeText(p.ChildByFieldName("type"), src)
			} else if name := p.ChildByFieldName("name"); name != nil {
				param.Name = parser.NodeText(name, src)
			} else {
				param.Name = parser.NodeText(p, src)
			}
			sig.Params = append(sig.Params, param)
		case "self_parameter":
			// receiver, not a caller-supplied argument
		}
	}
	return sig
}

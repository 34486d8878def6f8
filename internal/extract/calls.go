package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/auspexlab/auspex/pkg/models"
	"github.com/auspexlab/auspex/pkg/parser"
)

// callNodeTypes covers call expressions across the supported grammars.
var callNodeTypes = map[string]bool{
	"call_expression":   true, // go, js/ts, c, cpp, rust
	"call":              true, // python, ruby
	"method_invocation": true, // java
	"object_creation_expression": true, // java `new T(...)`
	"new_expression":             true, // js/ts `new T(...)`
}

// collectCallRefs walks a function body and records every callee-name
// reference with the line it occurs at, in source order. Names are reduced
// to their final identifier; resolution happens later against the symbol
// table.
func collectCallRefs(body *sitter.Node, source []byte) []models.CallRef {
	if body == nil {
		return nil
	}

	var refs []models.CallRef
	parser.Walk(body, source, func(node *sitter.Node, src []byte) bool {
		if !callNodeTypes[node.Type()] {
			return true
		}
		name := calleeName(node, src)
		if name != "" {
			refs = append(refs, models.CallRef{
				Name: name,
				Line: node.StartPoint().Row + 1,
			})
		}
		return true
	})
	return refs
}

// calleeName extracts the called identifier from a call node.
func calleeName(node *sitter.Node, source []byte) string {
	// Most grammars expose the callee under "function"; java method
	// invocations and object creation use "name"/"type".
	for _, field := range []string{"function", "name", "type", "constructor"} {
		if fn := node.ChildByFieldName(field); fn != nil {
			return calleeIdentifier(fn, source)
		}
	}
	return ""
}

// calleeIdentifier reduces a callee expression node to a bare identifier.
func calleeIdentifier(fn *sitter.Node, source []byte) string {
	switch fn.Type() {
	case "identifier", "type_identifier", "field_identifier", "property_identifier":
		return parser.NodeText(fn, source)
	case "attribute": // python obj.method
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return parser.NodeText(attr, source)
		}
	case "member_expression": // js obj.method
		if prop := fn.ChildByFieldName("property"); prop != nil {
			return parser.NodeText(prop, source)
		}
	case "selector_expression": // go pkg.Fn / recv.Method
		if field := fn.ChildByFieldName("field"); field != nil {
			return parser.NodeText(field, source)
		}
	case "field_expression": // c/cpp ptr->fn, obj.fn
		if field := fn.ChildByFieldName("field"); field != nil {
			return parser.NodeText(field, source)
		}
	case "scoped_identifier", "scoped_type_identifier": // rust a::b, java a.B
		if name := fn.ChildByFieldName("name"); name != nil {
			return parser.NodeText(name, source)
		}
	case "parenthesized_expression":
		if fn.NamedChildCount() == 1 {
			return calleeIdentifier(fn.NamedChild(0), source)
		}
	}
	return lastSegment(parser.NodeText(fn, source))
}

// Package resolve maps raw import specifiers to project files. Each language
// gets its own module-naming convention; specifiers that match no project
// file are marked external and contribute no import edge.
package resolve

import (
	"path"
	"sort"
	"strings"

	"github.com/auspexlab/auspex/pkg/models"
)

// Resolver resolves import specifiers against a fixed project file set.
// It is read-only after New and safe for concurrent use.
type Resolver struct {
	files map[string]models.Language
	dirs  map[string][]string // dir -> files in it, sorted
}

// New indexes the project's file set. Paths are slash-separated and relative
// to the analysis root, matching FileNode.Path.
func New(files []models.FileNode) *Resolver {
	r := &Resolver{
		files: make(map[string]models.Language, len(files)),
		dirs:  make(map[string][]string),
	}
	for _, f := range files {
		r.files[f.Path] = f.Language
		dir := path.Dir(f.Path)
		r.dirs[dir] = append(r.dirs[dir], f.Path)
	}
	for dir := range r.dirs {
		sort.Strings(r.dirs[dir])
	}
	return r
}

// File resolves every import of node in place, setting Resolved and Target,
// and returns the resulting edges plus diagnostics for relative specifiers
// that should have matched a project file but did not. Bare specifiers that
// miss are presumed external packages and stay silent.
func (r *Resolver) File(node *models.FileNode) ([]models.ImportEdge, []models.Diagnostic) {
	var edges []models.ImportEdge
	var diags []models.Diagnostic

	for i := range node.Imports {
		imp := &node.Imports[i]
		targets, relative := r.resolve(node, imp.Spec)
		if len(targets) == 0 {
			imp.Resolved = false
			if relative {
				diags = append(diags, models.Diagnostic{
					Kind:    models.DiagUnresolvedImport,
					File:    node.Path,
					Line:    imp.Line,
					Message: "relative import " + imp.Spec + " matches no project file",
				})
			}
			continue
		}
		imp.Resolved = true
		imp.Target = targets[0]
		for _, t := range targets {
			edges = append(edges, models.ImportEdge{From: node.Path, To: t})
		}
	}
	return edges, diags
}

// resolve returns the project files a specifier names, and whether the
// specifier was relative (so a miss is worth a diagnostic).
func (r *Resolver) resolve(node *models.FileNode, spec string) ([]string, bool) {
	switch node.Language {
	case models.LangPython:
		return r.resolvePython(node.Path, spec)
	case models.LangJavaScript, models.LangTypeScript:
		return r.resolveScript(node.Path, spec)
	case models.LangC, models.LangCPP:
		return r.resolveInclude(node.Path, spec)
	case models.LangJava:
		return r.resolveJava(spec), false
	case models.LangGo:
		return r.resolveGo(spec), false
	case models.LangRust:
		return r.resolveRust(node.Path, spec)
	case models.LangRuby:
		return r.resolveRuby(node.Path, spec)
	}
	return nil, false
}

// pick returns the first candidate that exists in the project.
func (r *Resolver) pick(candidates ...string) []string {
	for _, c := range candidates {
		c = path.Clean(c)
		if _, ok := r.files[c]; ok {
			return []string{c}
		}
	}
	return nil
}

// resolvePython handles dotted absolute imports (a.b -> a/b.py or
// a/b/__init__.py) and dot-relative imports, where n leading dots climb
// n-1 directories from the importing file's package.
func (r *Resolver) resolvePython(from, spec string) ([]string, bool) {
	dots := 0
	for dots < len(spec) && spec[dots] == '.' {
		dots++
	}
	rest := strings.ReplaceAll(spec[dots:], ".", "/")

	if dots == 0 {
		return r.pick(rest+".py", rest+"/__init__.py"), false
	}

	base := path.Dir(from)
	for range dots - 1 {
		base = path.Dir(base)
	}
	if rest == "" {
		return r.pick(path.Join(base, "__init__.py")), true
	}
	return r.pick(
		path.Join(base, rest)+".py",
		path.Join(base, rest, "__init__.py"),
	), true
}

var scriptExts = []string{"", ".js", ".jsx", ".ts", ".tsx", ".mjs"}

// resolveScript handles relative js/ts specifiers, trying the raw path,
// known extensions, and directory index files. Bare specifiers are package
// imports and stay external.
func (r *Resolver) resolveScript(from, spec string) ([]string, bool) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") && spec != "." && spec != ".." {
		return nil, false
	}
	base := path.Join(path.Dir(from), spec)
	candidates := make([]string, 0, 2*len(scriptExts))
	for _, ext := range scriptExts {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range scriptExts[1:] {
		candidates = append(candidates, path.Join(base, "index"+ext))
	}
	return r.pick(candidates...), true
}

// resolveInclude tries the include path relative to the including file's
// directory, then relative to the analysis root.
func (r *Resolver) resolveInclude(from, spec string) ([]string, bool) {
	return r.pick(path.Join(path.Dir(from), spec), spec), true
}

// resolveJava maps a.b.C to a/b/C.java. A trailing wildcard imports every
// java file in the package directory.
func (r *Resolver) resolveJava(spec string) []string {
	if pkg, ok := strings.CutSuffix(spec, ".*"); ok {
		dir := strings.ReplaceAll(pkg, ".", "/")
		var out []string
		for _, f := range r.dirs[dir] {
			if strings.HasSuffix(f, ".java") {
				out = append(out, f)
			}
		}
		return out
	}
	return r.pick(strings.ReplaceAll(spec, ".", "/") + ".java")
}

// resolveGo matches the longest path suffix of the import path against a
// project directory and imports every go file in it. Module prefixes are
// unknown here, so suffix matching is the best available mapping.
func (r *Resolver) resolveGo(spec string) []string {
	segs := strings.Split(spec, "/")
	for i := range segs {
		dir := strings.Join(segs[i:], "/")
		files, ok := r.dirs[dir]
		if !ok {
			continue
		}
		var out []string
		for _, f := range files {
			if strings.HasSuffix(f, ".go") {
				out = append(out, f)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// resolveRust maps use paths: crate:: from the source root, self:: and
// super:: relative to the importing file's directory. Only the module file
// itself (m.rs or m/mod.rs) becomes the target.
func (r *Resolver) resolveRust(from, spec string) ([]string, bool) {
	spec = strings.TrimSuffix(spec, ";")
	if i := strings.Index(spec, " as "); i >= 0 {
		spec = spec[:i]
	}
	if i := strings.IndexAny(spec, "{*"); i >= 0 {
		spec = strings.TrimSuffix(spec[:i], "::")
	}

	segs := strings.Split(spec, "::")
	base := ""
	relative := false
	switch segs[0] {
	case "crate":
		segs = segs[1:]
	case "self":
		base = path.Dir(from)
		segs = segs[1:]
		relative = true
	case "super":
		base = path.Dir(from)
		for len(segs) > 0 && segs[0] == "super" {
			base = path.Dir(base)
			segs = segs[1:]
		}
		relative = true
	default:
		return nil, false // external crate
	}

	// Try progressively shorter prefixes: use a::b::Item names Item inside
	// module a::b, so the file may be a/b.rs, a/b/mod.rs, or a.rs.
	for end := len(segs); end > 0; end-- {
		p := path.Join(base, path.Join(segs[:end]...))
		if found := r.pick(p+".rs", path.Join(p, "mod.rs")); found != nil {
			return found, relative
		}
	}
	return nil, relative
}

// resolveRuby handles require_relative (extractor prefixes "./") against the
// requiring file's directory and require against the root and lib/.
func (r *Resolver) resolveRuby(from, spec string) ([]string, bool) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return r.pick(path.Join(path.Dir(from), spec) + ".rb"), true
	}
	return r.pick(spec+".rb", path.Join("lib", spec)+".rb"), false
}

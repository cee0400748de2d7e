package grammar

import (
	"fmt"
	"path/filepath"

	devtools "github.com/wpbonelli/modflow-devtools"
	"github.com/wpbonelli/modflow-devtools/dfn"
)

// Generator renders grammar descriptions to their text artifact, a
// Lark-style grammar consumed by an external parsing engine.
type Generator struct {
	devtools.Generator
}

const grammarTemplate = `// Input file grammar for the {{.Component}} component.
// Generated from the component definition; do not edit.

?start: _NL* (block _NL*)*

block: {{range $i, $r := .Rules}}{{if $i}}
     | {{end}}{{$r.Name}}_block{{end}}

{{range .Rules}}{{template "block" .}}
{{end}}line: item+ _NL
item: NUMBER | WORD

_BEGIN: "BEGIN"i
_END: "END"i
INT: /[0-9]+/
NUMBER: /[+-]?[0-9]+(\.[0-9]*)?([eE][+-]?[0-9]+)?/
WORD: /[^\s]+/
_NL: /(\r?\n)+/

%import common.WS_INLINE
%ignore WS_INLINE
{{define "block"}}{{if .Rows}}{{.Name}}_block: _BEGIN "{{.Name}}"i [INT] _NL {{.Name}}_row* _END "{{.Name}}"i [INT]
{{.Name}}_row: {{range .Columns}}{{.Terminal}}{{if .Repeated}}+{{end}} {{end}}_NL
{{else if .Opaque}}// free-form array data, recognized by the delimiters only: the
// element count depends on runtime dimension values
{{.Name}}_block: _BEGIN "{{.Name}}"i [INT] _NL line* _END "{{.Name}}"i [INT]
{{else}}{{.Name}}_block: _BEGIN "{{.Name}}"i [INT] _NL {{.Name}}_item* _END "{{.Name}}"i [INT]
{{.Name}}_item:{{range $i, $f := .Fields}}{{if $i}}
     |{{end}} "{{$f.Name}}"i{{if not $f.Keyword}} {{$f.Terminal}}{{if $f.Repeated}}+{{end}}{{end}}{{end}} _NL
{{end}}{{end}}`

// templateRule adapts a Rule for template rendering.
type templateRule struct {
	Rule
}

func (r templateRule) Rows() bool   { return r.Kind == KindRows }
func (r templateRule) Opaque() bool { return r.Kind == KindOpaque }

// Generate renders the grammar text for one component description.
func (gen *Generator) Generate(g *Grammar) string {
	rules := make([]templateRule, 0, len(g.Rules))
	for _, r := range g.Rules {
		rules = append(rules, templateRule{r})
	}
	gen.Begin()
	gen.EmitTemplate("grammar", grammarTemplate, struct {
		Component string
		Rules     []templateRule
	}{g.Component, rules}, nil)
	return gen.End()
}

// WriteAll generates and writes one grammar file per component.
func WriteAll(dfns dfn.Dfns, outdir string, config *devtools.Data) (map[string]string, error) {
	gen := &Generator{}
	gen.Config = config
	gen.OutDir = outdir
	grammars := make(map[string]string, len(dfns))
	for name, d := range dfns {
		text := gen.Generate(Describe(d))
		if gen.Err != nil {
			return nil, fmt.Errorf("cannot generate grammar for %s: %w", name, gen.Err)
		}
		grammars[name] = text
		gen.WriteFile(filepath.Join(outdir, name+".lark"), text)
		if gen.Err != nil {
			return nil, gen.Err
		}
	}
	return grammars, nil
}

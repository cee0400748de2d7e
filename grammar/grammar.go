// Package grammar derives context-free grammars from resolved MF6
// component definitions and parses simulation input files against
// them.
package grammar

import (
	"strings"

	"github.com/wpbonelli/modflow-devtools/dfn"
)

// Terminal classifies the token matched by a grammar position.
type Terminal int

const (
	// Word matches any bare token.
	Word Terminal = iota
	// Number matches an integer or floating point literal.
	Number
)

func (t Terminal) String() string {
	if t == Number {
		return "NUMBER"
	}
	return "WORD"
}

// BlockKind classifies how a block's body is recognized.
type BlockKind int

const (
	// KindFields recognizes named single-token field lines.
	KindFields BlockKind = iota
	// KindRows recognizes repeated typed row records.
	KindRows
	// KindOpaque recognizes the BEGIN/END markers only. Free-form
	// grid/array data has an element count that depends on runtime
	// dimension values the grammar cannot see.
	KindOpaque
)

// Column is one terminal position in a field or row rule.
type Column struct {
	Name     string
	Terminal Terminal
	Repeated bool
	Keyword  bool // a bare keyword field, recognized by its name alone
}

// Rule describes how one block is recognized.
type Rule struct {
	Name    string
	Kind    BlockKind
	Fields  []Column // KindFields: one entry per scalar field
	Columns []Column // KindRows: flattened leaf columns of the row type
}

// Grammar is a context-free grammar description for one component's
// input files. The zero Component with no rules is the generic
// grammar, which recognizes the bare block/line/item shape without
// per-field typing.
type Grammar struct {
	Component string
	Rules     []Rule
}

// Generic returns the component-independent grammar.
func Generic() *Grammar {
	return &Grammar{}
}

// Rule looks up the rule for a block name, case-insensitively.
// Returns nil for the generic grammar or an unknown block.
func (g *Grammar) Rule(blockName string) *Rule {
	name := strings.ToLower(blockName)
	for i := range g.Rules {
		if g.Rules[i].Name == name {
			return &g.Rules[i]
		}
	}
	return nil
}

// Describe derives a grammar description from a resolved component.
// Works on either schema version: a block holding a list field uses
// the list's flattened leaf columns as its row rule; a period-style
// block already migrated to array columns uses those columns
// directly. Leaf positions whose concrete type cannot be determined
// default to the numeric terminal.
func Describe(d *dfn.Dfn) *Grammar {
	g := &Grammar{Component: d.Name}
	if d.Blocks == nil {
		return g
	}
	for _, name := range d.Blocks.Names() {
		block := d.Blocks.Get(name)
		rule := Rule{Name: strings.ToLower(name)}
		switch {
		case strings.Contains(name, "griddata"):
			rule.Kind = KindOpaque
		case rowBlock(name, block):
			rule.Kind = KindRows
			rule.Columns = rowColumns(block)
		default:
			rule.Kind = KindFields
			for _, f := range block.Values() {
				rule.Fields = append(rule.Fields, fieldColumn(f))
			}
		}
		g.Rules = append(g.Rules, rule)
	}
	return g
}

// rowBlock reports whether a block holds repeated row data: it
// contains a list field, or it is a conventional row block (period,
// connectiondata, vertices) whose fields are row columns.
func rowBlock(name string, block *dfn.Fields) bool {
	for _, f := range block.Values() {
		if f.Type == dfn.TypeList {
			return true
		}
	}
	for _, marker := range []string{"period", "connectiondata", "vertices", "cell2d"} {
		if strings.Contains(strings.ToLower(name), marker) {
			return true
		}
	}
	return false
}

// rowColumns flattens a row block to its terminal sequence. For a
// list field, the row type's children are flattened depth-first;
// otherwise every block field is one column.
func rowColumns(block *dfn.Fields) []Column {
	for _, f := range block.Values() {
		if f.Type == dfn.TypeList {
			if row := f.Row(); row != nil {
				if row.Children.Len() > 0 {
					return leafColumns(row.Children)
				}
				return []Column{leafColumn(row)}
			}
			return nil
		}
	}
	var columns []Column
	for _, f := range block.Values() {
		columns = append(columns, leafColumn(f))
	}
	return columns
}

// leafColumns flattens nested composites depth-first to their leaf
// terminal positions.
func leafColumns(fields *dfn.Fields) []Column {
	var columns []Column
	for _, f := range fields.Values() {
		switch {
		case f.Type == dfn.TypeRecord:
			columns = append(columns, leafColumns(f.Children)...)
		default:
			columns = append(columns, leafColumn(f))
		}
	}
	return columns
}

func leafColumn(f *dfn.Field) Column {
	return Column{Name: f.Name, Terminal: terminalFor(f), Repeated: len(f.Shape) > 0}
}

// terminalFor maps a field to its terminal. Numeric scalars bind the
// numeric terminal, keyword and string fields the generic token, and
// anything unresolvable defaults to numeric as the conservative
// choice over a hard failure.
func terminalFor(f *dfn.Field) Terminal {
	switch f.Type {
	case dfn.TypeInteger, dfn.TypeDouble:
		return Number
	case dfn.TypeKeyword, dfn.TypeString:
		return Word
	}
	return Number
}

func fieldColumn(f *dfn.Field) Column {
	return Column{
		Name:     f.Name,
		Terminal: terminalFor(f),
		Repeated: len(f.Shape) > 0,
		Keyword:  f.Type == dfn.TypeKeyword,
	}
}

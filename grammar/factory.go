package grammar

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wpbonelli/modflow-devtools/dfn"
)

// Factory hands out parsers for loaded component definitions, caching
// derived grammars so repeated requests for the same component do not
// re-derive them.
type Factory struct {
	dfns  dfn.Dfns
	cache *lru.Cache[string, *Grammar]
}

func NewFactory(dfns dfn.Dfns) (*Factory, error) {
	cache, err := lru.New[string, *Grammar](128)
	if err != nil {
		return nil, err
	}
	return &Factory{dfns: dfns, cache: cache}, nil
}

// Grammar returns the grammar for a component, or the generic grammar
// for the empty name. An unregistered component name is fatal.
func (f *Factory) Grammar(component string) (*Grammar, error) {
	if component == "" {
		return Generic(), nil
	}
	if g, ok := f.cache.Get(component); ok {
		return g, nil
	}
	d, ok := f.dfns[component]
	if !ok {
		return nil, &dfn.UnknownComponentError{Name: component}
	}
	g := Describe(d)
	f.cache.Add(component, g)
	return g, nil
}

// Parser returns a parser bound to a component's grammar, or a
// generic parser for the empty name.
func (f *Factory) Parser(component string) (*Parser, error) {
	g, err := f.Grammar(component)
	if err != nil {
		return nil, err
	}
	return NewParser(g), nil
}

// Parse parses and transforms input text in one step.
func (f *Factory) Parse(component, src string) (*Document, error) {
	g, err := f.Grammar(component)
	if err != nil {
		return nil, err
	}
	tree, err := NewParser(g).Parse(src)
	if err != nil {
		return nil, err
	}
	return NewTransformer(g).Transform(tree)
}
